package handlers

import (
	"net/http"
	"time"

	"github.com/skyfold/flightgraph/api/config"
	"github.com/skyfold/flightgraph/builder/pkg/graph"
)

// EventsResponse lists airport snapshots inside a query window.
type EventsResponse struct {
	Start  string              `json:"start"`
	End    string              `json:"end"`
	Count  int                 `json:"count"`
	Events []graph.WindowEvent `json:"events"`
}

// GetEvents returns every flight event with start <= instant <= end. Both
// parameters are required.
func GetEvents(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		writeError(w, http.StatusBadRequest, "'start' and 'end' are required")
		return
	}
	start, ok := parseInstant(startStr)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid 'start' timestamp")
		return
	}
	end, ok := parseInstant(endStr)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid 'end' timestamp")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "'end' must not be before 'start'")
		return
	}

	events := g.EventsInWindow(start, end)
	if events == nil {
		events = []graph.WindowEvent{}
	}

	writeJSON(w, http.StatusOK, EventsResponse{
		Start:  start.Format(time.RFC3339),
		End:    end.Format(time.RFC3339),
		Count:  len(events),
		Events: events,
	})
}
