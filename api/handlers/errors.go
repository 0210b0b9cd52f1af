package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// errorResponse is the JSON envelope for all handler errors.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// parseInstant accepts RFC3339 or the datetime-local format sent by browser
// inputs (YYYY-MM-DDTHH:MM, taken as UTC).
func parseInstant(s string) (time.Time, bool) {
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		return parsed.UTC(), true
	}
	if parsed, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return parsed.UTC(), true
	}
	return time.Time{}, false
}

// instantParam parses the named query parameter as an instant, defaulting to
// now when absent. The bool is false when the parameter is present but
// malformed.
func instantParam(r *http.Request, name string, now time.Time) (time.Time, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return now, true
	}
	return parseInstant(s)
}
