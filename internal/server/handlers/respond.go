// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tripdash/internal/domain/trip"
)

// Common errors
var (
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidHour  = errors.New("invalid hour")
)

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		log.Printf("HTTP %d %s: %v", code, message, err)
	}

	respondWithJSON(w, code, map[string]string{"error": message})
}

// badRequestMessage returns the client-facing message for a parse error
func badRequestMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidMonth):
		return "Invalid month"
	case errors.Is(err, ErrInvalidHour):
		return "Invalid hour"
	default:
		return "Invalid request"
	}
}

// parseFilters reads the dashboard controls from query parameters. Absent
// values keep their defaults; unknown weekdays and bases pass through and
// select nothing.
func parseFilters(values url.Values) (trip.Filters, error) {
	filters := trip.DefaultFilters()

	if s := strings.TrimSpace(values.Get("month")); s != "" {
		month, err := trip.ParseMonth(s)
		if err != nil {
			return filters, ErrInvalidMonth
		}
		filters.Month = month
	}

	if s := strings.TrimSpace(values.Get("weekday")); s != "" {
		filters.Weekday, _ = trip.ParseWeekday(s)
	}

	if s := strings.TrimSpace(values.Get("base")); s != "" {
		filters.Base, _ = trip.ParseBase(s)
	}

	if s := strings.TrimSpace(values.Get("hour")); s != "" {
		hour, err := strconv.Atoi(s)
		if err != nil {
			return filters, ErrInvalidHour
		}
		filters.Hour = hour
	}

	return filters, nil
}

// filterValues is the inverse of parseFilters
func filterValues(f trip.Filters) url.Values {
	return url.Values{
		"month":   {strconv.Itoa(int(f.Month))},
		"weekday": {string(f.Weekday)},
		"base":    {string(f.Base)},
		"hour":    {strconv.Itoa(f.Hour)},
	}
}

// parseQuery reads an export selection from query parameters. Absent values
// do not restrict the selection.
func parseQuery(values url.Values) (trip.Query, error) {
	var q trip.Query

	if s := strings.TrimSpace(values.Get("month")); s != "" {
		month, err := trip.ParseMonth(s)
		if err != nil {
			return q, ErrInvalidMonth
		}
		q.Month = &month
	}

	if s := strings.TrimSpace(values.Get("weekday")); s != "" {
		weekday, _ := trip.ParseWeekday(s)
		q.Weekday = &weekday
	}

	if s := strings.TrimSpace(values.Get("base")); s != "" {
		base, _ := trip.ParseBase(s)
		q.Base = &base
	}

	if s := strings.TrimSpace(values.Get("hour")); s != "" {
		hour, err := strconv.Atoi(s)
		if err != nil {
			return q, ErrInvalidHour
		}
		q.Hour = &hour
	}

	return q, nil
}
