package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skyfold/flightgraph/builder/pkg/ingest"
)

func TestBuildTimelines_Scenario(t *testing.T) {
	g := scenarioGraph(t)

	atl, ok := g.Airport("ATL")
	require.True(t, ok)
	require.Len(t, atl.Snapshots, 1)

	dep := atl.Snapshots[0]
	require.Equal(t, EventDeparture, dep.EventKind)
	require.Equal(t, ts(t, "2026-01-01T10:05:00Z"), dep.Instant)
	require.Equal(t, "WN1_2026-01-01_ATL_LGA", dep.FlightID)
	require.Equal(t, 1, dep.Incremental.Departures)
	require.NotNil(t, dep.Incremental.DelayMin)
	require.Equal(t, 5, *dep.Incremental.DelayMin)
	require.Equal(t, 1, dep.State.TotalDepartures)
	require.Equal(t, 5.0, dep.State.AvgDepartureDelay)
	require.Equal(t, 100.0, dep.State.OnTimeDeparturePct)
	require.Equal(t, dep.Instant, atl.LastUpdated)

	lga, ok := g.Airport("LGA")
	require.True(t, ok)
	require.Len(t, lga.Snapshots, 2)

	// Arrival of W1 at 12:20, 20 minutes late: not on time.
	arr := lga.Snapshots[0]
	require.Equal(t, EventArrival, arr.EventKind)
	require.Equal(t, 1, arr.State.TotalArrivals)
	require.Equal(t, 20.0, arr.State.AvgArrivalDelay)
	require.Equal(t, 0.0, arr.State.OnTimeArrivalPct)

	// Departure of W2 at 13:00, on time.
	dep2 := lga.Snapshots[1]
	require.Equal(t, EventDeparture, dep2.EventKind)
	require.Equal(t, 1, dep2.State.TotalDepartures)
	require.Equal(t, 0.0, dep2.State.AvgDepartureDelay)
	require.Equal(t, 100.0, dep2.State.OnTimeDeparturePct)
	// Cumulative arrival state carries forward.
	require.Equal(t, 1, dep2.State.TotalArrivals)
	require.Equal(t, 20.0, dep2.State.AvgArrivalDelay)
}

func TestBuildTimelines_OnTimeBoundaryStrict(t *testing.T) {
	g := newTestGraph(t)
	addTestAirports(g, "AAA", "BBB")

	// Four departures: delays +15 (late), +14 (on time), -14 (on time),
	// -15 (not on time). Exactly 15 either way is NOT on time.
	flights := []ingest.Flight{
		testFlight(t, "WN", "1", "2026-01-01", "AAA", "BBB",
			"2026-01-01T08:00:00Z", "2026-01-01T08:15:00Z", "2026-01-01T10:00:00Z", ""),
		testFlight(t, "WN", "2", "2026-01-01", "AAA", "BBB",
			"2026-01-01T09:00:00Z", "2026-01-01T09:14:00Z", "2026-01-01T11:00:00Z", ""),
		testFlight(t, "WN", "3", "2026-01-01", "AAA", "BBB",
			"2026-01-01T10:00:00Z", "2026-01-01T09:46:00Z", "2026-01-01T12:00:00Z", ""),
		testFlight(t, "WN", "4", "2026-01-01", "AAA", "BBB",
			"2026-01-01T11:00:00Z", "2026-01-01T10:45:00Z", "2026-01-01T13:00:00Z", ""),
	}
	g.BuildTimelines(flights)

	aaa, _ := g.Airport("AAA")
	require.Len(t, aaa.Snapshots, 4)
	final := aaa.Snapshots[3].State
	require.Equal(t, 4, final.TotalDepartures)
	require.Equal(t, 50.0, final.OnTimeDeparturePct)
	require.Equal(t, 0.0, final.AvgDepartureDelay) // +15 +14 -14 -15
}

func TestBuildTimelines_ScheduledFallback(t *testing.T) {
	g := newTestGraph(t)
	addTestAirports(g, "AAA", "BBB")

	// No actual times: events land on the scheduled instants and carry no
	// delay sample, so averages stay 0.0 and nothing counts as on time.
	g.BuildTimelines([]ingest.Flight{
		testFlight(t, "WN", "1", "2026-01-01", "AAA", "BBB",
			"2026-01-01T08:00:00Z", "", "2026-01-01T10:00:00Z", ""),
	})

	aaa, _ := g.Airport("AAA")
	require.Len(t, aaa.Snapshots, 1)
	s := aaa.Snapshots[0]
	require.Equal(t, ts(t, "2026-01-01T08:00:00Z"), s.Instant)
	require.Nil(t, s.Incremental.DelayMin)
	require.Equal(t, 1, s.State.TotalDepartures)
	require.Equal(t, 0.0, s.State.AvgDepartureDelay)
	require.Equal(t, 0.0, s.State.OnTimeDeparturePct)
}

func TestBuildTimelines_SnapshotsChronologicalAndMonotone(t *testing.T) {
	g := newTestGraph(t)
	addTestAirports(g, "AAA", "BBB")

	// Deliberately out of input order.
	g.BuildTimelines([]ingest.Flight{
		testFlight(t, "WN", "3", "2026-01-01", "AAA", "BBB",
			"2026-01-01T12:00:00Z", "2026-01-01T12:00:00Z", "2026-01-01T14:00:00Z", "2026-01-01T14:00:00Z"),
		testFlight(t, "WN", "1", "2026-01-01", "AAA", "BBB",
			"2026-01-01T08:00:00Z", "2026-01-01T08:00:00Z", "2026-01-01T10:00:00Z", "2026-01-01T10:00:00Z"),
		testFlight(t, "WN", "2", "2026-01-01", "AAA", "BBB",
			"2026-01-01T10:00:00Z", "2026-01-01T10:00:00Z", "2026-01-01T12:00:00Z", "2026-01-01T12:00:00Z"),
	})

	for _, code := range []string{"AAA", "BBB"} {
		node, _ := g.Airport(code)
		prev := node.Snapshots[0]
		for _, s := range node.Snapshots[1:] {
			require.False(t, s.Instant.Before(prev.Instant), "%s snapshots must be chronological", code)
			require.GreaterOrEqual(t, s.State.TotalDepartures, prev.State.TotalDepartures)
			require.GreaterOrEqual(t, s.State.TotalArrivals, prev.State.TotalArrivals)
			prev = s
		}
	}
}

func TestBuildTimelines_UnknownAirportSkipped(t *testing.T) {
	g := newTestGraph(t)
	addTestAirports(g, "AAA")

	stats := g.BuildTimelines([]ingest.Flight{
		testFlight(t, "WN", "1", "2026-01-01", "AAA", "ZZZ",
			"2026-01-01T08:00:00Z", "", "2026-01-01T10:00:00Z", ""),
	})

	aaa, _ := g.Airport("AAA")
	require.Len(t, aaa.Snapshots, 1)
	_, ok := g.Airport("ZZZ")
	require.False(t, ok)

	// The arrival at ZZZ produced no snapshot and is counted for the caller.
	require.Equal(t, 2, stats.Events)
	require.Equal(t, 1, stats.Airports)
	require.Equal(t, 1, stats.SkippedEvents)
}

func TestBuildTimelines_FlightEdges(t *testing.T) {
	g := scenarioGraph(t)
	require.Equal(t, 2, g.NumFlightEdges())

	e, ok := g.FlightEdge("WN1_2026-01-01_ATL_LGA")
	require.True(t, ok)
	require.Equal(t, "ATL", e.Source)
	require.Equal(t, "LGA", e.Target)
	require.Equal(t, ts(t, "2026-01-01T10:00:00Z"), e.SchedDep)
	require.Equal(t, ts(t, "2026-01-01T10:05:00Z"), e.ActualDep)
	require.Equal(t, ts(t, "2026-01-01T12:20:00Z"), e.ActualArr)
	require.NotNil(t, e.DepDelayMin)
	require.Equal(t, 5, *e.DepDelayMin)
	require.NotNil(t, e.ArrDelayMin)
	require.Equal(t, 20, *e.ArrDelayMin)

	edges := g.FlightEdges()
	require.Len(t, edges, 2)
	require.Equal(t, "WN1_2026-01-01_ATL_LGA", edges[0].FlightID)
	require.Equal(t, "WN2_2026-01-01_LGA_SLC", edges[1].FlightID)
	require.Equal(t, 2, g.Meta.Legs)
}

func TestBuildTimelines_EqualInstantsOrderedByFlightID(t *testing.T) {
	g := newTestGraph(t)
	addTestAirports(g, "AAA", "BBB")

	g.BuildTimelines([]ingest.Flight{
		testFlight(t, "WN", "9", "2026-01-01", "AAA", "BBB",
			"2026-01-01T08:00:00Z", "", "2026-01-01T10:00:00Z", ""),
		testFlight(t, "WN", "1", "2026-01-01", "AAA", "BBB",
			"2026-01-01T08:00:00Z", "", "2026-01-01T10:00:00Z", ""),
	})

	aaa, _ := g.Airport("AAA")
	require.Len(t, aaa.Snapshots, 2)
	require.Equal(t, "WN1_2026-01-01_AAA_BBB", aaa.Snapshots[0].FlightID)
	require.Equal(t, "WN9_2026-01-01_AAA_BBB", aaa.Snapshots[1].FlightID)
}
