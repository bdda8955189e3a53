// internal/server/handlers/figure.go

package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripdash/internal/domain/chart"
)

// Renderer draws a figure as a PNG image
type Renderer interface {
	PNG(fig *chart.Figure, w io.Writer) error
}

// FigureHandler handles figure-related HTTP requests
type FigureHandler struct {
	charts   chart.Service
	renderer Renderer
}

// NewFigureHandler creates a new figure handler
func NewFigureHandler(charts chart.Service, renderer Renderer) *FigureHandler {
	return &FigureHandler{
		charts:   charts,
		renderer: renderer,
	}
}

// GetFigures returns every dashboard figure for the requested filters
func (h *FigureHandler) GetFigures(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, badRequestMessage(err), nil)
		return
	}

	figures, err := h.charts.Figures(r.Context(), filters)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to build figures", err)
		return
	}

	respondWithJSON(w, http.StatusOK, figures)
}

// GetFigure returns a single figure by ID
func (h *FigureHandler) GetFigure(w http.ResponseWriter, r *http.Request) {
	id := chart.ID(chi.URLParam(r, "id"))
	if !id.Known() {
		respondWithError(w, http.StatusNotFound, "Figure not found", nil)
		return
	}

	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, badRequestMessage(err), nil)
		return
	}

	fig, err := h.charts.Figure(r.Context(), id, filters)
	if err != nil {
		if errors.Is(err, chart.ErrUnknownFigure) {
			respondWithError(w, http.StatusNotFound, "Figure not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to build figure", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, fig)
}

// GetChartPNG renders a single figure as a PNG image
func (h *FigureHandler) GetChartPNG(w http.ResponseWriter, r *http.Request) {
	id := chart.ID(chi.URLParam(r, "id"))
	if !id.Known() {
		respondWithError(w, http.StatusNotFound, "Figure not found", nil)
		return
	}

	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, badRequestMessage(err), nil)
		return
	}

	fig, err := h.charts.Figure(r.Context(), id, filters)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to build figure", err)
		return
	}

	// Render into a buffer so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.renderer.PNG(fig, &buf); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to render chart", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
