// internal/server/handlers/page.go

package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"tripdash/internal/domain/chart"
	"tripdash/internal/domain/trip"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// ExportPath is where the dashboard downloads trip workbooks from
const ExportPath = "/api/v1/export/trips.xlsx"

// Option is one entry of a dashboard dropdown
type Option struct {
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

// Control describes a dashboard dropdown
type Control struct {
	ID          string      `json:"id"`
	Input       chart.Input `json:"input"`
	Prompt      string      `json:"prompt"`
	Placeholder string      `json:"placeholder"`
	Options     []Option    `json:"options"`
	Value       interface{} `json:"value"`
}

// Options is the catalog served to the dashboard page
type Options struct {
	Title     string       `json:"title"`
	Controls  []Control    `json:"controls"`
	Figures   []chart.ID   `json:"figures"`
	Defaults  trip.Filters `json:"defaults"`
	ExportURL string       `json:"exportUrl"`
}

// DashboardOptions returns the dropdown catalogs with their initial values
func DashboardOptions() Options {
	defaults := trip.DefaultFilters()

	months := make([]Option, len(trip.Months))
	for i, m := range trip.Months {
		months[i] = Option{Label: m.Label(), Value: int(m)}
	}

	weekdays := make([]Option, len(trip.Weekdays))
	for i, w := range trip.Weekdays {
		weekdays[i] = Option{Label: string(w), Value: string(w)}
	}

	bases := make([]Option, len(trip.Bases))
	for i, b := range trip.Bases {
		bases[i] = Option{Label: string(b), Value: string(b)}
	}

	hours := make([]Option, trip.HoursPerDay)
	for h := range hours {
		hours[h] = Option{Label: strconv.Itoa(h), Value: h}
	}

	return Options{
		Title: "NYC Uber Trips Analysis",
		Controls: []Control{
			{ID: "month-dropdown", Input: chart.InputMonth, Prompt: "Select a month:", Placeholder: "Select a Month here", Options: months, Value: int(defaults.Month)},
			{ID: "weekday-dropdown", Input: chart.InputWeekday, Prompt: "Select a day of the week:", Placeholder: "Select a Weekday here", Options: weekdays, Value: string(defaults.Weekday)},
			{ID: "base-dropdown", Input: chart.InputBase, Prompt: "Select a base:", Placeholder: "Select a Base here", Options: bases, Value: string(defaults.Base)},
			{ID: "hour-dropdown", Input: chart.InputHour, Prompt: "Select an hour:", Placeholder: "Select an Hour here", Options: hours, Value: defaults.Hour},
		},
		Figures:   chart.IDs,
		Defaults:  defaults,
		ExportURL: ExportPath + "?" + filterValues(defaults).Encode(),
	}
}

// PageHandler serves the dashboard page and its control catalog
type PageHandler struct {
	options Options
}

// NewPageHandler creates a new page handler
func NewPageHandler() *PageHandler {
	return &PageHandler{
		options: DashboardOptions(),
	}
}

// GetOptions returns the dropdown catalogs and defaults
func (h *PageHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.options)
}

// GetIndex renders the dashboard page
func (h *PageHandler) GetIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, h.options); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to render page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
