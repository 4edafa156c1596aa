package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

//go:embed assets/favicon.png
var favicon []byte

// Page template names
const (
	PageIndex  = "index.html"
	PageSurvey = "survey.html"
	PageThanks = "thanks.html"
)

// IndexPage is the landing page view model.
type IndexPage struct {
	SurveyURL string
}

// SurveyItem is one likert statement as rendered in the form.
type SurveyItem struct {
	Index int
	Field string
	Text  string
}

// SurveyPage is the survey form view model.
type SurveyPage struct {
	Title         string
	Intro         string
	Scale         []entities.ScaleOption
	Items         []SurveyItem
	OpenQuestions entities.OpenQuestions
}

// NewSurveyPage builds the form view model from a survey definition.
func NewSurveyPage(def *entities.SurveyDefinition) SurveyPage {
	items := make([]SurveyItem, len(def.Items))
	for i, text := range def.Items {
		items[i] = SurveyItem{
			Index: i + 1,
			Field: entities.LikertFieldName(i + 1),
			Text:  text,
		}
	}
	return SurveyPage{
		Title:         def.Title,
		Intro:         def.Intro,
		Scale:         def.Scale,
		Items:         items,
		OpenQuestions: def.OpenQuestions,
	}
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageIndex, PageSurvey, PageThanks} {
		tmpl, err := template.New(page).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes a page. Output is buffered so a template error never leaves
// a half written response.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static returns the stylesheet tree rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Favicon returns the PNG favicon.
func Favicon() []byte {
	return favicon
}
