package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skyfold/flightgraph/api/config"
	"github.com/skyfold/flightgraph/builder/pkg/graph"
)

// ActiveFlightsResponse lists flights enroute at the query instant.
type ActiveFlightsResponse struct {
	At      string               `json:"at"`
	Count   int                  `json:"count"`
	Flights []graph.ActiveFlight `json:"flights"`
}

// GetActiveFlights returns flights enroute at the "at" query instant,
// defaulting to now.
func GetActiveFlights(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph

	at, ok := instantParam(r, "at", config.Clock.Now().UTC())
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid 'at' timestamp")
		return
	}

	flights := g.ActiveFlightsAt(at)
	if flights == nil {
		flights = []graph.ActiveFlight{}
	}

	writeJSON(w, http.StatusOK, ActiveFlightsResponse{
		At:      at.Format(time.RFC3339),
		Count:   len(flights),
		Flights: flights,
	})
}

// FlightConnectionsResponse holds a flight's resource edges in both
// directions.
type FlightConnectionsResponse struct {
	FlightID    string                  `json:"flight_id"`
	Connections graph.FlightConnections `json:"connections"`
}

// GetFlightConnections returns the inbound and outbound resource edges of a
// flight.
func GetFlightConnections(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph
	id := chi.URLParam(r, "id")

	fc, ok := g.ConnectionsForFlight(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown flight: "+id)
		return
	}

	writeJSON(w, http.StatusOK, FlightConnectionsResponse{
		FlightID:    id,
		Connections: fc,
	})
}
