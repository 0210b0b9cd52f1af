package graph

import (
	"sort"
	"time"
)

// StateAt returns the airport's cumulative state as of t: the state of the
// latest snapshot at or before t, found by binary search. An airport with
// no snapshot at or before t has the zero state. The bool is false when the
// airport is unknown.
func (g *Graph) StateAt(code string, t time.Time) (CumulativeState, bool) {
	node, ok := g.airports[code]
	if !ok {
		return CumulativeState{}, false
	}

	snaps := node.Snapshots
	// First snapshot strictly after t; the predecessor is idx-1.
	idx := sort.Search(len(snaps), func(i int) bool {
		return snaps[i].Instant.After(t)
	})
	if idx == 0 {
		return CumulativeState{}, true
	}
	return snaps[idx-1].State, true
}

// SnapshotAt returns the latest snapshot at or before t, if any.
func (g *Graph) SnapshotAt(code string, t time.Time) (Snapshot, bool) {
	node, ok := g.airports[code]
	if !ok {
		return Snapshot{}, false
	}
	snaps := node.Snapshots
	idx := sort.Search(len(snaps), func(i int) bool {
		return snaps[i].Instant.After(t)
	})
	if idx == 0 {
		return Snapshot{}, false
	}
	return snaps[idx-1], true
}

// ActiveFlight is a flight enroute at the query instant.
type ActiveFlight struct {
	FlightID  string    `json:"flight_id"`
	Departure time.Time `json:"departure"`
	Arrival   time.Time `json:"arrival"`
}

// ActiveFlightsAt returns flights enroute at t: departed at or before t and
// not yet arrived (dep <= t < arr). Flights missing either instant are
// never considered active.
func (g *Graph) ActiveFlightsAt(t time.Time) []ActiveFlight {
	var active []ActiveFlight
	for _, iv := range g.intervals {
		if iv.dep.After(t) {
			break // intervals are sorted by departure
		}
		if t.Before(iv.arr) {
			active = append(active, ActiveFlight{FlightID: iv.flightID, Departure: iv.dep, Arrival: iv.arr})
		}
	}
	return active
}

// WindowEvent is one airport snapshot inside a query window.
type WindowEvent struct {
	Airport  string   `json:"airport"`
	Snapshot Snapshot `json:"snapshot"`
}

// EventsInWindow returns every snapshot with start <= instant <= end across
// all airports, sorted by instant (ties broken by airport then flight).
func (g *Graph) EventsInWindow(start, end time.Time) []WindowEvent {
	var out []WindowEvent
	for code, node := range g.airports {
		snaps := node.Snapshots
		lo := sort.Search(len(snaps), func(i int) bool {
			return !snaps[i].Instant.Before(start)
		})
		for i := lo; i < len(snaps) && !snaps[i].Instant.After(end); i++ {
			out = append(out, WindowEvent{Airport: code, Snapshot: snaps[i]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Snapshot.Instant.Equal(b.Snapshot.Instant) {
			return a.Snapshot.Instant.Before(b.Snapshot.Instant)
		}
		if a.Airport != b.Airport {
			return a.Airport < b.Airport
		}
		return a.Snapshot.FlightID < b.Snapshot.FlightID
	})
	return out
}

// VolumePoint is one sample of the volume timeline.
type VolumePoint struct {
	At         time.Time `json:"timestamp"`
	Departures int       `json:"departures"`
	Arrivals   int       `json:"arrivals"`
	Enroute    int       `json:"enroute"`
}

// VolumeTimeline samples cumulative departure/arrival counts and the
// enroute count from start to end (inclusive) every step. Events at exactly
// a sample instant are counted. The sweep is a two-pointer walk over the
// pre-sorted event instants, O(events + samples).
func (g *Graph) VolumeTimeline(start, end time.Time, step time.Duration) []VolumePoint {
	if step <= 0 || end.Before(start) {
		return nil
	}

	var points []VolumePoint
	depIdx, arrIdx := 0, 0
	ivDepIdx, doneIdx := 0, 0

	// Arrival instants sorted independently for the enroute count.
	arrSorted := make([]time.Time, len(g.intervals))
	for i, iv := range g.intervals {
		arrSorted[i] = iv.arr
	}
	sort.Slice(arrSorted, func(i, j int) bool { return arrSorted[i].Before(arrSorted[j]) })

	for t := start; !t.After(end); t = t.Add(step) {
		for depIdx < len(g.depEvents) && !g.depEvents[depIdx].at.After(t) {
			depIdx++
		}
		for arrIdx < len(g.arrEvents) && !g.arrEvents[arrIdx].at.After(t) {
			arrIdx++
		}
		for ivDepIdx < len(g.intervals) && !g.intervals[ivDepIdx].dep.After(t) {
			ivDepIdx++
		}
		for doneIdx < len(arrSorted) && !arrSorted[doneIdx].After(t) {
			doneIdx++
		}

		points = append(points, VolumePoint{
			At:         t,
			Departures: depIdx,
			Arrivals:   arrIdx,
			Enroute:    ivDepIdx - doneIdx,
		})
	}
	return points
}

// DelayPoint is one sample of the cumulative delay timeline. Delays are
// total minutes accumulated so far, not averages.
type DelayPoint struct {
	At            time.Time `json:"timestamp"`
	OutboundDelay float64   `json:"cumulative_outbound_delay"`
	InboundDelay  float64   `json:"cumulative_inbound_delay"`
}

// DelayTimeline samples cumulative departure (outbound) and arrival
// (inbound) delay minutes from start to end (inclusive) every step, using
// the same two-pointer sweep as VolumeTimeline. Movements without a known
// delay contribute nothing.
func (g *Graph) DelayTimeline(start, end time.Time, step time.Duration) []DelayPoint {
	if step <= 0 || end.Before(start) {
		return nil
	}

	var points []DelayPoint
	depIdx, arrIdx := 0, 0
	var outbound, inbound float64

	for t := start; !t.After(end); t = t.Add(step) {
		for depIdx < len(g.depEvents) && !g.depEvents[depIdx].at.After(t) {
			if d := g.depEvents[depIdx].delayMin; d != nil {
				outbound += float64(*d)
			}
			depIdx++
		}
		for arrIdx < len(g.arrEvents) && !g.arrEvents[arrIdx].at.After(t) {
			if d := g.arrEvents[arrIdx].delayMin; d != nil {
				inbound += float64(*d)
			}
			arrIdx++
		}
		points = append(points, DelayPoint{At: t, OutboundDelay: outbound, InboundDelay: inbound})
	}
	return points
}

// TimeRange returns the first departure and last arrival instants across
// all events. The bool is false when the graph has no events.
func (g *Graph) TimeRange() (first, last time.Time, ok bool) {
	if len(g.depEvents) == 0 && len(g.arrEvents) == 0 {
		return time.Time{}, time.Time{}, false
	}
	if len(g.depEvents) > 0 {
		first = g.depEvents[0].at
	} else {
		first = g.arrEvents[0].at
	}
	if len(g.arrEvents) > 0 {
		last = g.arrEvents[len(g.arrEvents)-1].at
	} else {
		last = g.depEvents[len(g.depEvents)-1].at
	}
	return first, last, true
}

// ActiveConnection is a resource connection live at the query instant: the
// source flight has arrived and the target has not yet departed.
type ActiveConnection struct {
	Edge           *Edge     `json:"edge"`
	SourceArrival  time.Time `json:"source_arrival"`
	TargetSchedDep time.Time `json:"target_scheduled_departure"`
}

// ActiveConnectionsAt returns connections where the source flight's arrival
// (actual, falling back to scheduled) is at or before t and the target's
// scheduled departure is after t. Connections missing either instant are
// skipped.
func (g *Graph) ActiveConnectionsAt(t time.Time) []ActiveConnection {
	var active []ActiveConnection
	for _, ref := range g.edgeSeq {
		e := g.edges[ref]
		src, ok := g.flights[e.Source]
		if !ok {
			continue
		}
		tgt, ok := g.flights[e.Target]
		if !ok {
			continue
		}
		srcArr, ok := src.ArrivalInstant()
		if !ok || tgt.SchedDep.IsZero() {
			continue
		}
		if !srcArr.After(t) && t.Before(tgt.SchedDep) {
			active = append(active, ActiveConnection{
				Edge:           e,
				SourceArrival:  srcArr,
				TargetSchedDep: tgt.SchedDep,
			})
		}
	}
	return active
}

// FlightsByResource returns the sorted unique flight IDs connected through
// edges of the given resource type, optionally narrowed to a single
// resource label (empty label matches all).
func (g *Graph) FlightsByResource(resourceType, label string) []string {
	seen := make(map[string]bool)
	for _, ref := range g.edgeSeq {
		e := g.edges[ref]
		if e.Type != resourceType {
			continue
		}
		if label != "" && e.Label != label {
			continue
		}
		seen[e.Source] = true
		seen[e.Target] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// FlightConnection is one resource edge seen from a flight's perspective.
type FlightConnection struct {
	Flight       string `json:"flight_id"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Activity     string `json:"activity,omitempty"`
}

// FlightConnections holds a flight's inbound and outbound resource edges.
type FlightConnections struct {
	Incoming []FlightConnection `json:"incoming"`
	Outgoing []FlightConnection `json:"outgoing"`
}

// ConnectionsForFlight returns the resource edges arriving at and departing
// from a flight. The bool is false when the flight is unknown.
func (g *Graph) ConnectionsForFlight(flightID string) (FlightConnections, bool) {
	if _, ok := g.flights[flightID]; !ok {
		return FlightConnections{}, false
	}
	var fc FlightConnections
	for _, ref := range g.edgeSeq {
		e := g.edges[ref]
		if e.Target == flightID {
			fc.Incoming = append(fc.Incoming, FlightConnection{
				Flight:       e.Source,
				ResourceType: e.Type,
				ResourceID:   e.Label,
				Activity:     e.Activity,
			})
		}
		if e.Source == flightID {
			fc.Outgoing = append(fc.Outgoing, FlightConnection{
				Flight:       e.Target,
				ResourceType: e.Type,
				ResourceID:   e.Label,
				Activity:     e.Activity,
			})
		}
	}
	return fc, true
}

// Disruption is a delayed flight together with the downstream flights its
// resources feed.
type Disruption struct {
	FlightID   string             `json:"flight_id"`
	DelayMin   float64            `json:"delay_minutes"`
	Downstream []FlightConnection `json:"downstream_flights"`
}

// Disruptions returns flights whose arrival delay (actual vs scheduled
// arrival, in minutes) exceeds the threshold and which have outbound
// resource edges, sorted by flight ID. Flights missing either arrival
// instant are skipped.
func (g *Graph) Disruptions(thresholdMin float64) []Disruption {
	byFlight := make(map[string][]FlightConnection)
	for _, ref := range g.edgeSeq {
		e := g.edges[ref]
		byFlight[e.Source] = append(byFlight[e.Source], FlightConnection{
			Flight:       e.Target,
			ResourceType: e.Type,
			ResourceID:   e.Label,
		})
	}

	var out []Disruption
	for id, node := range g.flights {
		if node.SchedArr.IsZero() || node.ActualArr.IsZero() {
			continue
		}
		delay := node.ActualArr.Sub(node.SchedArr).Minutes()
		if delay <= thresholdMin {
			continue
		}
		downstream := byFlight[id]
		if len(downstream) == 0 {
			continue
		}
		out = append(out, Disruption{FlightID: id, DelayMin: delay, Downstream: downstream})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FlightID < out[j].FlightID })
	return out
}
