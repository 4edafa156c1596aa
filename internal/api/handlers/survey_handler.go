package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/kinesiogame/encuesta/internal/application/services"
	"github.com/kinesiogame/encuesta/internal/domain/entities"
	"github.com/kinesiogame/encuesta/internal/infrastructure/observability"
	"github.com/kinesiogame/encuesta/internal/web"
)

const (
	maxFormBytes = 1 << 20

	surveyPath = "/encuesta"
	thanksPath = "/gracias"
)

// SurveySubmitter runs the submission pipeline for one posted form.
type SurveySubmitter interface {
	Submit(ctx context.Context, form services.FormValues) (*services.SubmissionOutcome, error)
}

// SurveyHandler serves the survey form, its submission and the thank-you page.
type SurveyHandler struct {
	submitter SurveySubmitter
	renderer  *web.Renderer
	page      web.SurveyPage
	limiter   *SubmissionRateLimiter
}

// NewSurveyHandler creates a new survey handler. limiter may be nil.
func NewSurveyHandler(
	submitter SurveySubmitter,
	renderer *web.Renderer,
	definition *entities.SurveyDefinition,
	limiter *SubmissionRateLimiter,
) *SurveyHandler {
	return &SurveyHandler{
		submitter: submitter,
		renderer:  renderer,
		page:      web.NewSurveyPage(definition),
		limiter:   limiter,
	}
}

// ShowForm handles GET /encuesta
func (h *SurveyHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, web.PageSurvey, h.page)
}

// Submit handles POST /encuesta
func (h *SurveyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		logger.Info().Err(err).Msg("Unreadable survey form")
		http.Redirect(w, r, surveyPath, http.StatusSeeOther)
		return
	}

	if allowed, retryAfter := h.limiter.Allow(r.Context(), clientIP(r)); !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		http.Error(w, "Demasiados envíos, intente más tarde.", http.StatusTooManyRequests)
		return
	}

	outcome, err := h.submitter.Submit(r.Context(), r.PostForm)
	if err != nil {
		http.Error(w, "No pudimos guardar su respuesta. Intente nuevamente.", http.StatusInternalServerError)
		return
	}

	if outcome.State == services.StateRejected {
		http.Redirect(w, r, surveyPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, thanksPath, http.StatusSeeOther)
}

// Thanks handles GET /gracias
func (h *SurveyHandler) Thanks(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, web.PageThanks, nil)
}

func renderPage(w http.ResponseWriter, r *http.Request, renderer *web.Renderer, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderer.Render(w, page, data); err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
