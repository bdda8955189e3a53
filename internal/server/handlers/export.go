// internal/server/handlers/export.go

package handlers

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strconv"

	"tripdash/internal/domain/trip"
	"tripdash/internal/service/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Exporter writes a selection of trips as a workbook
type Exporter interface {
	WriteXLSX(ctx context.Context, q trip.Query, w io.Writer) (export.Result, error)
}

// ExportHandler handles trip download requests
type ExportHandler struct {
	exporter Exporter
}

// NewExportHandler creates a new export handler
func NewExportHandler(exporter Exporter) *ExportHandler {
	return &ExportHandler{
		exporter: exporter,
	}
}

// ExportTrips streams the filtered trips as an XLSX workbook
func (h *ExportHandler) ExportTrips(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, badRequestMessage(err), nil)
		return
	}

	var buf bytes.Buffer
	res, err := h.exporter.WriteXLSX(r.Context(), q, &buf)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export trips", err)
		return
	}

	log.Printf("Exported %d trips (%s), truncated=%t", res.Rows, q, res.Truncated)
	if res.Truncated {
		w.Header().Set("X-Export-Truncated", "true")
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="trips.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
