package graph

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/skyfold/flightgraph/builder/pkg/ingest"
	"github.com/skyfold/flightgraph/utils/pkg/logger"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New(Config{
		Log:   logger.NewTest(),
		Clock: clockwork.NewFakeClockAt(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	return g
}

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

// testFlight builds a flight record the way the ingest layer would,
// including delay computation. Empty actual times stay absent.
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

func addTestAirports(g *Graph, codes ...string) {
	for _, code := range codes {
		g.AddAirport(AirportNode{Code: code, Name: code + " Intl"})
	}
}

// scenarioGraph builds the two-flight reference scenario: W1 ATL->LGA
// (dep 10:00 sched / 10:05 actual, arr 12:00 sched / 12:20 actual) and
// W2 LGA->SLC (dep 13:00 on time).
func scenarioGraph(t *testing.T) *Graph {
	t.Helper()
	g := newTestGraph(t)
	addTestAirports(g, "ATL", "LGA", "SLC")
	g.BuildTimelines([]ingest.Flight{
		testFlight(t, "WN", "1", "2026-01-01", "ATL", "LGA",
			"2026-01-01T10:00:00Z", "2026-01-01T10:05:00Z",
			"2026-01-01T12:00:00Z", "2026-01-01T12:20:00Z"),
		testFlight(t, "WN", "2", "2026-01-01", "LGA", "SLC",
			"2026-01-01T13:00:00Z", "2026-01-01T13:00:00Z",
			"2026-01-01T15:00:00Z", "2026-01-01T15:00:00Z"),
	})
	return g
}
