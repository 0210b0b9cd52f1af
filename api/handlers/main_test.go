package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/skyfold/flightgraph/api/config"
	"github.com/skyfold/flightgraph/api/handlers"
	"github.com/skyfold/flightgraph/builder/pkg/graph"
	"github.com/skyfold/flightgraph/builder/pkg/ingest"
	"github.com/skyfold/flightgraph/utils/pkg/logger"
)

const (
	flightATLLGA = "WN1_2026-01-01_ATL_LGA"
	flightLGASLC = "WN2_2026-01-01_LGA_SLC"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func testFlight(t *testing.T, carrier, number, date, origin, dest, schedDep, actDep, schedArr, actArr string) ingest.Flight {
	t.Helper()
	f := ingest.Flight{
		Carrier:     carrier,
		Number:      number,
		Date:        date,
		Origin:      origin,
		Destination: dest,
		SchedDep:    ts(t, schedDep),
		SchedArr:    ts(t, schedArr),
	}
	if actDep != "" {
		f.ActualDep = ts(t, actDep)
		d := int(f.ActualDep.Sub(f.SchedDep).Minutes())
		f.DepDelayMin = &d
	}
	if actArr != "" {
		f.ActualArr = ts(t, actArr)
		d := int(f.ActualArr.Sub(f.SchedArr).Minutes())
		f.ArrDelayMin = &d
	}
	return f
}

// setupTestGraph installs the two-flight reference scenario: WN1 ATL->LGA
// (dep 10:00 sched / 10:05 actual, arr 12:00 sched / 12:20 actual), WN2
// LGA->SLC (dep 13:00 on time), and an aircraft turn connecting them.
func setupTestGraph(t *testing.T) *graph.Graph {
	t.Helper()

	g, err := graph.New(graph.Config{
		Log:   logger.NewTest(),
		Clock: clockwork.NewFakeClockAt(ts(t, "2026-01-02T00:00:00Z")),
	})
	require.NoError(t, err)

	for _, code := range []string{"ATL", "LGA", "SLC"} {
		g.AddAirport(graph.AirportNode{Code: code, Name: code + " Intl"})
	}
	g.BuildTimelines([]ingest.Flight{
		testFlight(t, "WN", "1", "2026-01-01", "ATL", "LGA",
			"2026-01-01T10:00:00Z", "2026-01-01T10:05:00Z",
			"2026-01-01T12:00:00Z", "2026-01-01T12:20:00Z"),
		testFlight(t, "WN", "2", "2026-01-01", "LGA", "SLC",
			"2026-01-01T13:00:00Z", "2026-01-01T13:00:00Z",
			"2026-01-01T15:00:00Z", "2026-01-01T15:00:00Z"),
	})
	require.NoError(t, g.AddConnection(ingest.Connection{
		SourceFlight:    flightATLLGA,
		TargetFlight:    flightLGASLC,
		EdgeCode:        "AC",
		EdgeLabel:       "8231",
		EdgeActivity:    "TURN",
		SourceSchedDep:  ts(t, "2026-01-01T10:00:00Z"),
		SourceSchedArr:  ts(t, "2026-01-01T12:00:00Z"),
		SourceActualArr: ts(t, "2026-01-01T12:20:00Z"),
		TargetSchedDep:  ts(t, "2026-01-01T13:00:00Z"),
		TargetSchedArr:  ts(t, "2026-01-01T15:00:00Z"),
		TargetActualArr: ts(t, "2026-01-01T15:00:00Z"),
	}))

	config.SetGraph(g)
	config.Clock = clockwork.NewFakeClockAt(ts(t, "2026-01-01T12:30:00Z"))
	return g
}

// testRouter mirrors the route layout in main so URL parameters resolve.
func testRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/version", handlers.GetVersion)
	r.Get("/api/stats", handlers.GetStats)
	r.Get("/api/airports", handlers.GetAirports)
	r.Get("/api/airports/{code}/state", handlers.GetAirportState)
	r.Get("/api/flights/active", handlers.GetActiveFlights)
	r.Get("/api/flights/{id}/connections", handlers.GetFlightConnections)
	r.Get("/api/events", handlers.GetEvents)
	r.Get("/api/timeline/volume", handlers.GetVolumeTimeline)
	r.Get("/api/timeline/delay", handlers.GetDelayTimeline)
	r.Get("/api/timeline/bounds", handlers.GetTimelineBounds)
	r.Get("/api/connections/active", handlers.GetActiveConnections)
	r.Get("/api/resources/{type}/flights", handlers.GetResourceFlights)
	r.Get("/api/disruptions", handlers.GetDisruptions)
	return r
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
