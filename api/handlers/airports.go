package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skyfold/flightgraph/api/config"
	"github.com/skyfold/flightgraph/builder/pkg/graph"
)

// AirportSummary is one row of the airport list.
type AirportSummary struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	Events      int    `json:"events"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// GetAirports returns all airports sorted by code.
func GetAirports(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph

	codes := g.AirportCodes()
	sort.Strings(codes)

	out := make([]AirportSummary, 0, len(codes))
	for _, code := range codes {
		a, _ := g.Airport(code)
		s := AirportSummary{
			Code:    a.Code,
			Name:    a.Name,
			City:    a.City,
			State:   a.State,
			Country: a.Country,
			Events:  len(a.Snapshots),
		}
		if !a.LastUpdated.IsZero() {
			s.LastUpdated = a.LastUpdated.Format(time.RFC3339)
		}
		out = append(out, s)
	}

	writeJSON(w, http.StatusOK, out)
}

// AirportStateResponse is the point-in-time state of an airport.
type AirportStateResponse struct {
	Airport string                `json:"airport"`
	At      string                `json:"at"`
	State   graph.CumulativeState `json:"state"`
}

// GetAirportState returns the airport's cumulative state as of the "at"
// query instant, defaulting to now.
func GetAirportState(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph
	code := strings.ToUpper(chi.URLParam(r, "code"))

	at, ok := instantParam(r, "at", config.Clock.Now().UTC())
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid 'at' timestamp")
		return
	}

	state, ok := g.StateAt(code, at)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown airport: "+code)
		return
	}

	writeJSON(w, http.StatusOK, AirportStateResponse{
		Airport: code,
		At:      at.Format(time.RFC3339),
		State:   state,
	})
}
