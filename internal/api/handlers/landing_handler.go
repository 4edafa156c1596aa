package handlers

import (
	"net/http"

	"github.com/kinesiogame/encuesta/internal/web"
)

// LandingHandler serves the landing page.
type LandingHandler struct {
	renderer *web.Renderer
	page     web.IndexPage
}

// NewLandingHandler creates a landing handler linking to surveyURL, or to the
// local survey form when surveyURL is empty.
func NewLandingHandler(renderer *web.Renderer, surveyURL string) *LandingHandler {
	if surveyURL == "" {
		surveyURL = surveyPath
	}
	return &LandingHandler{
		renderer: renderer,
		page:     web.IndexPage{SurveyURL: surveyURL},
	}
}

// Home handles GET /
func (h *LandingHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	renderPage(w, r, h.renderer, web.PageIndex, h.page)
}
