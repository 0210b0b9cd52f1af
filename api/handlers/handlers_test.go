package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyfold/flightgraph/api/handlers"
)

func decode(t *testing.T, body io.Reader, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func TestGetVersion(t *testing.T) {
	setupTestGraph(t)
	rr := get(t, testRouter(), "/api/version")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp handlers.VersionResponse
	decode(t, rr.Body, &resp)
	assert.Equal(t, "dev", resp.Version)
}

func TestGetStats(t *testing.T) {
	setupTestGraph(t)
	rr := get(t, testRouter(), "/api/stats")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.StatsResponse
	decode(t, rr.Body, &resp)
	assert.Equal(t, 3, resp.Airports)
	assert.Equal(t, 2, resp.Flights)
	assert.Equal(t, 1, resp.Edges)
	assert.Equal(t, "2026-01-01T10:05:00Z", resp.FirstDep)
	assert.Equal(t, "2026-01-01T15:00:00Z", resp.LastArr)
}

func TestGetAirports(t *testing.T) {
	setupTestGraph(t)
	rr := get(t, testRouter(), "/api/airports")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp []handlers.AirportSummary
	decode(t, rr.Body, &resp)
	require.Len(t, resp, 3)
	assert.Equal(t, "ATL", resp[0].Code)
	assert.Equal(t, 1, resp[0].Events)
	assert.Equal(t, "LGA", resp[1].Code)
	assert.Equal(t, 2, resp[1].Events)
}

func TestGetAirportState(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	rr := get(t, r, "/api/airports/lga/state?at=2026-01-01T12:30:00Z")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.AirportStateResponse
	decode(t, rr.Body, &resp)
	assert.Equal(t, "LGA", resp.Airport)
	assert.Equal(t, 1, resp.State.TotalArrivals)
	assert.Equal(t, 0, resp.State.TotalDepartures)
	assert.Equal(t, 20.0, resp.State.AvgArrivalDelay)

	// Before any event: zero state, still 200.
	rr = get(t, r, "/api/airports/LGA/state?at=2026-01-01T00:00:00Z")
	assert.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr.Body, &resp)
	assert.Equal(t, 0, resp.State.TotalArrivals)

	// Default "at" is the configured clock (12:30).
	rr = get(t, r, "/api/airports/LGA/state")
	assert.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr.Body, &resp)
	assert.Equal(t, "2026-01-01T12:30:00Z", resp.At)
	assert.Equal(t, 1, resp.State.TotalArrivals)
}

func TestGetAirportState_Errors(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	rr := get(t, r, "/api/airports/XXX/state?at=2026-01-01T12:30:00Z")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown airport")

	rr = get(t, r, "/api/airports/LGA/state?at=yesterday")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid 'at'")
}

func TestGetActiveFlights(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	// 11:00 is between WN1's departure (10:05) and arrival (12:20).
	rr := get(t, r, "/api/flights/active?at=2026-01-01T11:00:00Z")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.ActiveFlightsResponse
	decode(t, rr.Body, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, flightATLLGA, resp.Flights[0].FlightID)

	// Arrival instant is exclusive.
	rr = get(t, r, "/api/flights/active?at=2026-01-01T12:20:00Z")
	decode(t, rr.Body, &resp)
	assert.Equal(t, 0, resp.Count)

	rr = get(t, r, "/api/flights/active?at=bogus")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetEvents(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	rr := get(t, r, "/api/events?start=2026-01-01T10:00:00Z&end=2026-01-01T13:00:00Z")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.EventsResponse
	decode(t, rr.Body, &resp)
	// WN1 dep + WN1 arr + WN2 dep, window ends inclusive at 13:00.
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, "ATL", resp.Events[0].Airport)

	rr = get(t, r, "/api/events?start=2026-01-01T10:00:00Z")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "required")

	rr = get(t, r, "/api/events?start=2026-01-01T13:00:00Z&end=2026-01-01T10:00:00Z")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetVolumeTimeline(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	rr := get(t, r, "/api/timeline/volume?start=2026-01-01T10:00:00Z&end=2026-01-01T16:00:00Z&step=1h")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.VolumeTimelineResponse
	decode(t, rr.Body, &resp)
	require.Len(t, resp.Points, 7)
	// At 11:00 WN1 has departed and not arrived.
	assert.Equal(t, 1, resp.Points[1].Departures)
	assert.Equal(t, 0, resp.Points[1].Arrivals)
	assert.Equal(t, 1, resp.Points[1].Enroute)
	// By 16:00 both flights are complete.
	assert.Equal(t, 2, resp.Points[6].Departures)
	assert.Equal(t, 2, resp.Points[6].Arrivals)
	assert.Equal(t, 0, resp.Points[6].Enroute)

	// Default window covers the whole graph.
	rr = get(t, r, "/api/timeline/volume")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, r, "/api/timeline/volume?step=0s")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetDelayTimeline(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	rr := get(t, r, "/api/timeline/delay?start=2026-01-01T10:00:00Z&end=2026-01-01T14:00:00Z&step=1h")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.DelayTimelineResponse
	decode(t, rr.Body, &resp)
	require.Len(t, resp.Points, 5)
	// After WN1's 10:05 departure (+5 min) the outbound total is 5.
	assert.Equal(t, 5.0, resp.Points[1].OutboundDelay)
	assert.Equal(t, 0.0, resp.Points[1].InboundDelay)
	// After the 12:20 arrival (+20 min) the inbound total is 20.
	assert.Equal(t, 20.0, resp.Points[3].InboundDelay)
}

func TestGetTimelineBounds(t *testing.T) {
	setupTestGraph(t)
	rr := get(t, testRouter(), "/api/timeline/bounds")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.TimelineBoundsResponse
	decode(t, rr.Body, &resp)
	assert.Equal(t, "2026-01-01T10:05:00Z", resp.EarliestData)
	assert.Equal(t, "2026-01-01T15:00:00Z", resp.LatestData)
}

func TestGetActiveConnections(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	// 12:30: WN1 has arrived (12:20), WN2 has not yet departed (13:00).
	rr := get(t, r, "/api/connections/active?at=2026-01-01T12:30:00Z")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.ActiveConnectionsResponse
	decode(t, rr.Body, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, flightATLLGA, resp.Connections[0].Edge.Source)

	// Target departure instant is exclusive.
	rr = get(t, r, "/api/connections/active?at=2026-01-01T13:00:00Z")
	decode(t, rr.Body, &resp)
	assert.Equal(t, 0, resp.Count)
}

func TestGetResourceFlights(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	rr := get(t, r, "/api/resources/AIRCRAFT_TURN/flights")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.ResourceFlightsResponse
	decode(t, rr.Body, &resp)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{flightATLLGA, flightLGASLC}, resp.Flights)

	rr = get(t, r, "/api/resources/AIRCRAFT_TURN/flights?label=9999")
	decode(t, rr.Body, &resp)
	assert.Equal(t, 0, resp.Count)

	rr = get(t, r, "/api/resources/CREW_PILOT/flights")
	decode(t, rr.Body, &resp)
	assert.Equal(t, 0, resp.Count)
}

func TestGetFlightConnections(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	rr := get(t, r, "/api/flights/"+flightLGASLC+"/connections")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.FlightConnectionsResponse
	decode(t, rr.Body, &resp)
	require.Len(t, resp.Connections.Incoming, 1)
	assert.Equal(t, flightATLLGA, resp.Connections.Incoming[0].Flight)
	assert.Equal(t, "AIRCRAFT_TURN", resp.Connections.Incoming[0].ResourceType)
	assert.Empty(t, resp.Connections.Outgoing)

	rr = get(t, r, "/api/flights/NOPE/connections")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown flight")
}

func TestGetDisruptions(t *testing.T) {
	setupTestGraph(t)
	r := testRouter()

	// WN1 arrived 20 minutes late and feeds WN2 through the aircraft turn.
	rr := get(t, r, "/api/disruptions?threshold=15")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.DisruptionsResponse
	decode(t, rr.Body, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, flightATLLGA, resp.Disruptions[0].FlightID)
	assert.Equal(t, 20.0, resp.Disruptions[0].DelayMin)
	require.Len(t, resp.Disruptions[0].Downstream, 1)
	assert.Equal(t, flightLGASLC, resp.Disruptions[0].Downstream[0].Flight)

	// Threshold is strictly greater-than.
	rr = get(t, r, "/api/disruptions?threshold=20")
	decode(t, rr.Body, &resp)
	assert.Equal(t, 0, resp.Count)

	rr = get(t, r, "/api/disruptions?threshold=-1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
