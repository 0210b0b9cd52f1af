package graph

import (
	"math"
	"sort"
	"time"

	"github.com/skyfold/flightgraph/builder/pkg/ingest"
)

type timelineEvent struct {
	airport  string
	kind     EventKind
	instant  time.Time
	flightID string
	delayMin *int
}

// TimelineStats summarizes one BuildTimelines pass.
type TimelineStats struct {
	Events        int
	Airports      int
	SkippedEvents int // events at airports missing from the graph
}

// BuildTimelines folds flight movements into per-airport cumulative
// snapshot timelines, stores one movement edge per flight leg, and prepares
// the sweep indexes used by the timeline queries. Departure events use the
// actual departure instant (falling back to scheduled) at the origin;
// arrival events use the actual arrival instant (falling back to scheduled)
// at the destination. Movements with no usable instant are skipped, as are
// snapshot events at airports missing from the graph; the returned stats
// carry the skipped-event count.
func (g *Graph) BuildTimelines(flights []ingest.Flight) TimelineStats {
	var events []timelineEvent

	for _, f := range flights {
		id := f.ID()
		dep, depOK := f.DepartureInstant()
		arr, arrOK := f.ArrivalInstant()

		g.flightEdges[id] = &FlightEdge{
			Source:      f.Origin,
			Target:      f.Destination,
			FlightID:    id,
			SchedDep:    f.SchedDep,
			ActualDep:   f.ActualDep,
			SchedArr:    f.SchedArr,
			ActualArr:   f.ActualArr,
			DepDelayMin: f.DepDelayMin,
			ArrDelayMin: f.ArrDelayMin,
			Equipment:   f.Equipment,
			EquipClass:  f.EquipClass,
		}

		if depOK {
			events = append(events, timelineEvent{
				airport:  f.Origin,
				kind:     EventDeparture,
				instant:  dep,
				flightID: id,
				delayMin: f.DepDelayMin,
			})
		}
		if arrOK {
			events = append(events, timelineEvent{
				airport:  f.Destination,
				kind:     EventArrival,
				instant:  arr,
				flightID: id,
				delayMin: f.ArrDelayMin,
			})
		}
	}
	g.Meta.Legs = len(g.flightEdges)

	sort.Slice(events, func(i, j int) bool {
		if !events[i].instant.Equal(events[j].instant) {
			return events[i].instant.Before(events[j].instant)
		}
		return events[i].flightID < events[j].flightID
	})

	type accumulator struct {
		totalDep, totalArr   int
		depDelaySum          float64
		arrDelaySum          float64
		depDelayN, arrDelayN int
		onTimeDep, onTimeArr int
	}
	acc := make(map[string]*accumulator)

	skipped := 0
	for _, ev := range events {
		node, ok := g.airports[ev.airport]
		if !ok {
			skipped++
			continue
		}

		a := acc[ev.airport]
		if a == nil {
			a = &accumulator{}
			acc[ev.airport] = a
		}

		switch ev.kind {
		case EventDeparture:
			a.totalDep++
			if ev.delayMin != nil {
				a.depDelaySum += float64(*ev.delayMin)
				a.depDelayN++
				if abs(*ev.delayMin) < OnTimeThresholdMin {
					a.onTimeDep++
				}
			}
		case EventArrival:
			a.totalArr++
			if ev.delayMin != nil {
				a.arrDelaySum += float64(*ev.delayMin)
				a.arrDelayN++
				if abs(*ev.delayMin) < OnTimeThresholdMin {
					a.onTimeArr++
				}
			}
		}

		state := CumulativeState{
			TotalDepartures: a.totalDep,
			TotalArrivals:   a.totalArr,
		}
		if a.depDelayN > 0 {
			state.AvgDepartureDelay = round2(a.depDelaySum / float64(a.depDelayN))
		}
		if a.arrDelayN > 0 {
			state.AvgArrivalDelay = round2(a.arrDelaySum / float64(a.arrDelayN))
		}
		if a.totalDep > 0 {
			state.OnTimeDeparturePct = round2(float64(a.onTimeDep) / float64(a.totalDep) * 100)
		}
		if a.totalArr > 0 {
			state.OnTimeArrivalPct = round2(float64(a.onTimeArr) / float64(a.totalArr) * 100)
		}

		delta := Delta{DelayMin: ev.delayMin}
		if ev.kind == EventDeparture {
			delta.Departures = 1
		} else {
			delta.Arrivals = 1
		}

		node.Snapshots = append(node.Snapshots, Snapshot{
			Instant:     ev.instant,
			EventKind:   ev.kind,
			FlightID:    ev.flightID,
			Incremental: delta,
			State:       state,
		})
		node.LastUpdated = ev.instant
	}

	g.rebuildIndexes()

	stats := TimelineStats{
		Events:        len(events),
		Airports:      len(acc),
		SkippedEvents: skipped,
	}
	g.log.Info("graph: timelines built",
		"events", stats.Events,
		"airports", stats.Airports,
		"flight_edges", len(g.flightEdges),
		"skipped_unknown_airport", stats.SkippedEvents)
	return stats
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
