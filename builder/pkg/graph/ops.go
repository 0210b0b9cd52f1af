package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/skyfold/flightgraph/builder/pkg/ingest"
)

// Resource connection types.
const (
	TypeAircraftTurn = "AIRCRAFT_TURN"
	TypeCrewPilot    = "CREW_PILOT"
	TypeCrewFA       = "CREW_FA"
)

// ConnectionType maps a feed edge code to its connection type. Unknown
// codes are preserved as UNKNOWN_<code> rather than rejected.
func ConnectionType(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "AC":
		return TypeAircraftTurn
	case "P":
		return TypeCrewPilot
	case "F":
		return TypeCrewFA
	default:
		return "UNKNOWN_" + strings.ToUpper(strings.TrimSpace(code))
	}
}

// AddConnection materializes the flight nodes on both ends of a connection
// row and adds the resource edge between them. The edge key is
// "<TYPE>_<label>"; a duplicate key on the same flight pair overwrites the
// previous edge attributes.
//
// When the source flight arrives (actual, falling back to scheduled) after
// the target's scheduled departure, the edge is still added and an advisory
// warning is recorded.
func (g *Graph) AddConnection(c ingest.Connection) error {
	srcRef, ok := ingest.ParseFlightID(c.SourceFlight)
	if !ok {
		return fmt.Errorf("invalid source flight ID: %q", c.SourceFlight)
	}
	tgtRef, ok := ingest.ParseFlightID(c.TargetFlight)
	if !ok {
		return fmt.Errorf("invalid target flight ID: %q", c.TargetFlight)
	}

	src := g.ensureFlightNode(c.SourceFlight, srcRef)
	if src.SchedDep.IsZero() {
		src.SchedDep = c.SourceSchedDep
	}
	if src.SchedArr.IsZero() {
		src.SchedArr = c.SourceSchedArr
	}
	if src.ActualArr.IsZero() {
		src.ActualArr = c.SourceActualArr
	}

	tgt := g.ensureFlightNode(c.TargetFlight, tgtRef)
	if tgt.SchedDep.IsZero() {
		tgt.SchedDep = c.TargetSchedDep
	}
	if tgt.SchedArr.IsZero() {
		tgt.SchedArr = c.TargetSchedArr
	}
	if tgt.ActualArr.IsZero() {
		tgt.ActualArr = c.TargetActualArr
	}

	connType := ConnectionType(c.EdgeCode)
	key := connType + "_" + c.EdgeLabel

	if srcArr, ok := src.ArrivalInstant(); ok && !tgt.SchedDep.IsZero() {
		if srcArr.After(tgt.SchedDep) {
			gap := srcArr.Sub(tgt.SchedDep)
			w := fmt.Sprintf("temporal inconsistency %s -> %s: source arrives %s, %s after target's scheduled departure %s",
				c.SourceFlight, c.TargetFlight,
				srcArr.Format(time.RFC3339), gap, tgt.SchedDep.Format(time.RFC3339))
			g.Warnings = append(g.Warnings, w)
			g.log.Warn("graph: temporal inconsistency on connection",
				"source", c.SourceFlight, "target", c.TargetFlight, "key", key, "gap", gap)
		}
	}

	ref := edgeRef{src: c.SourceFlight, dst: c.TargetFlight, key: key}
	if _, exists := g.edges[ref]; exists {
		g.log.Warn("graph: duplicate edge key, overwriting",
			"source", c.SourceFlight, "target", c.TargetFlight, "key", key)
	} else {
		g.edgeSeq = append(g.edgeSeq, ref)
	}
	g.edges[ref] = &Edge{
		Source:   c.SourceFlight,
		Target:   c.TargetFlight,
		Key:      key,
		Type:     connType,
		Code:     strings.ToUpper(strings.TrimSpace(c.EdgeCode)),
		Label:    c.EdgeLabel,
		Activity: c.EdgeActivity,
	}
	g.Meta.Edges = len(g.edges)

	return nil
}

func (g *Graph) ensureFlightNode(id string, ref ingest.FlightRef) *FlightNode {
	if n, ok := g.flights[id]; ok {
		return n
	}
	n := &FlightNode{
		ID:          id,
		Carrier:     ref.Carrier,
		Number:      ref.Number,
		Date:        ref.Date,
		Origin:      ref.Origin,
		Destination: ref.Destination,
	}
	g.flights[id] = n
	g.Meta.Flights = len(g.flights)
	return n
}
