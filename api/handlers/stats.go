package handlers

import (
	"net/http"
	"time"

	"github.com/skyfold/flightgraph/api/config"
)

// StatsResponse summarizes the loaded graph.
type StatsResponse struct {
	Name      string `json:"name"`
	Model     string `json:"model"`
	BuildID   string `json:"build_id,omitempty"`
	BuiltAt   string `json:"created_utc"`
	Airports  int    `json:"airports"`
	Flights   int    `json:"flights"`
	Edges     int    `json:"edges"`
	Warnings  int    `json:"warnings"`
	FirstDep  string `json:"first_departure,omitempty"`
	LastArr   string `json:"last_arrival,omitempty"`
	FetchedAt string `json:"fetched_at"`
}

// GetStats returns graph metadata and entity counts.
func GetStats(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph

	resp := StatsResponse{
		Name:      g.Meta.Name,
		Model:     g.Meta.Model,
		BuildID:   g.Meta.BuildID,
		BuiltAt:   g.Meta.BuiltAt.Format(time.RFC3339),
		Airports:  g.NumAirports(),
		Flights:   g.NumFlights(),
		Edges:     g.NumEdges(),
		Warnings:  len(g.Warnings),
		FetchedAt: config.Clock.Now().UTC().Format(time.RFC3339),
	}
	if first, last, ok := g.TimeRange(); ok {
		resp.FirstDep = first.Format(time.RFC3339)
		resp.LastArr = last.Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, resp)
}
