package routes

import (
	"io/fs"
	"net/http"

	"github.com/kinesiogame/encuesta/internal/api/handlers"
	"github.com/kinesiogame/encuesta/internal/api/middleware"
	"github.com/kinesiogame/encuesta/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	landingHandler *handlers.LandingHandler
	surveyHandler  *handlers.SurveyHandler
	faviconHandler *handlers.FaviconHandler
	debugHandler   *handlers.DebugHandler

	static  fs.FS
	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	landingHandler *handlers.LandingHandler,
	surveyHandler *handlers.SurveyHandler,
	faviconHandler *handlers.FaviconHandler,
	debugHandler *handlers.DebugHandler,
	static fs.FS,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		landingHandler: landingHandler,
		surveyHandler:  surveyHandler,
		faviconHandler: faviconHandler,
		debugHandler:   debugHandler,
		static:         static,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Pages
	r.mux.HandleFunc("GET /{$}", r.landingHandler.Home)
	r.mux.HandleFunc("GET /encuesta", r.surveyHandler.ShowForm)
	r.mux.HandleFunc("POST /encuesta", r.surveyHandler.Submit)
	r.mux.HandleFunc("GET /gracias", r.surveyHandler.Thanks)

	// Assets
	r.mux.HandleFunc("GET /favicon.png", r.faviconHandler.Serve)
	r.mux.HandleFunc("GET /favicon.ico", r.faviconHandler.Serve)
	r.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(r.static)))

	// Diagnostics
	r.mux.HandleFunc("GET /debug/sheets", r.debugHandler.SheetsCheck)

	handler := middleware.RouteRecorder(r.mux)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)

	return handler
}
