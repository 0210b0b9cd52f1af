package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skyfold/flightgraph/api/config"
	"github.com/skyfold/flightgraph/builder/pkg/graph"
)

// ActiveConnectionsResponse lists resource connections live at the query
// instant.
type ActiveConnectionsResponse struct {
	At          string                   `json:"at"`
	Count       int                      `json:"count"`
	Connections []graph.ActiveConnection `json:"connections"`
}

// GetActiveConnections returns connections whose source flight has arrived
// and whose target flight has not yet departed at the "at" query instant.
func GetActiveConnections(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph

	at, ok := instantParam(r, "at", config.Clock.Now().UTC())
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid 'at' timestamp")
		return
	}

	conns := g.ActiveConnectionsAt(at)
	if conns == nil {
		conns = []graph.ActiveConnection{}
	}

	writeJSON(w, http.StatusOK, ActiveConnectionsResponse{
		At:          at.Format(time.RFC3339),
		Count:       len(conns),
		Connections: conns,
	})
}

// ResourceFlightsResponse lists the flights connected through one resource
// type.
type ResourceFlightsResponse struct {
	ResourceType string   `json:"resource_type"`
	Label        string   `json:"label,omitempty"`
	Count        int      `json:"count"`
	Flights      []string `json:"flights"`
}

// GetResourceFlights returns the flight IDs connected through edges of the
// given resource type, optionally narrowed by the "label" query parameter.
func GetResourceFlights(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph
	resourceType := strings.ToUpper(chi.URLParam(r, "type"))
	label := r.URL.Query().Get("label")

	flights := g.FlightsByResource(resourceType, label)
	if flights == nil {
		flights = []string{}
	}

	writeJSON(w, http.StatusOK, ResourceFlightsResponse{
		ResourceType: resourceType,
		Label:        label,
		Count:        len(flights),
		Flights:      flights,
	})
}

// DisruptionsResponse lists delayed flights and their downstream impact.
type DisruptionsResponse struct {
	ThresholdMin float64            `json:"threshold_minutes"`
	Count        int                `json:"count"`
	Disruptions  []graph.Disruption `json:"disruptions"`
}

const defaultDisruptionThresholdMin = 60.0

// GetDisruptions returns flights whose arrival delay exceeds the "threshold"
// query parameter (minutes, default 60) and which feed downstream flights.
func GetDisruptions(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph

	threshold := defaultDisruptionThresholdMin
	if s := r.URL.Query().Get("threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid 'threshold' value")
			return
		}
		threshold = v
	}

	disruptions := g.Disruptions(threshold)
	if disruptions == nil {
		disruptions = []graph.Disruption{}
	}

	writeJSON(w, http.StatusOK, DisruptionsResponse{
		ThresholdMin: threshold,
		Count:        len(disruptions),
		Disruptions:  disruptions,
	})
}
