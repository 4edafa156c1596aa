package handlers

import (
	"net/http"
	"strconv"
)

// FaviconHandler serves the PNG favicon for both favicon routes.
type FaviconHandler struct {
	data []byte
}

// NewFaviconHandler creates a favicon handler
func NewFaviconHandler(data []byte) *FaviconHandler {
	return &FaviconHandler{data: data}
}

// Serve handles GET /favicon.png and GET /favicon.ico
func (h *FaviconHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if len(h.data) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(h.data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(h.data)
	}
}
