// Package graph holds the temporal flight-event graph: airport nodes with
// cumulative state timelines, flight nodes, and resource-connection edges
// in a directed multigraph.
package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
)

// OnTimeThresholdMin bounds the on-time window. A movement is on time when
// the absolute delay is strictly below this many minutes.
const OnTimeThresholdMin = 15

// EventKind discriminates timeline events.
type EventKind string

const (
	EventDeparture EventKind = "departure"
	EventArrival   EventKind = "arrival"
)

// CumulativeState is an airport's state as of a snapshot instant. Averages
// and percentages are rounded to 2 decimals and are 0.0 when no samples
// exist.
type CumulativeState struct {
	TotalDepartures    int     `json:"total_departures"`
	TotalArrivals      int     `json:"total_arrivals"`
	AvgDepartureDelay  float64 `json:"avg_departure_delay"`
	AvgArrivalDelay    float64 `json:"avg_arrival_delay"`
	OnTimeDeparturePct float64 `json:"on_time_departure_pct"`
	OnTimeArrivalPct   float64 `json:"on_time_arrival_pct"`
}

// Delta is the per-event increment: only the fields this single event
// changed.
type Delta struct {
	Departures int  `json:"departures,omitempty"`
	Arrivals   int  `json:"arrivals,omitempty"`
	DelayMin   *int `json:"delay_minutes,omitempty"`
}

// Snapshot records one flight event at an airport together with the
// airport's cumulative state immediately after it.
type Snapshot struct {
	Instant     time.Time       `json:"timestamp"`
	EventKind   EventKind       `json:"event_type"`
	FlightID    string          `json:"flight"`
	Incremental Delta           `json:"incremental"`
	State       CumulativeState `json:"cumulative_state"`
}

// AirportNode is an airport with its chronological snapshot timeline.
// LastUpdated is the instant of the newest snapshot.
type AirportNode struct {
	Code        string
	Name        string
	City        string
	State       string
	Country     string
	LastUpdated time.Time
	Snapshots   []Snapshot
}

// FlightNode is a flight materialized from connection rows. Zero times mean
// the feed carried no usable instant.
type FlightNode struct {
	ID          string
	Carrier     string
	Number      string
	Date        string
	Origin      string
	Destination string
	SchedDep    time.Time
	SchedArr    time.Time
	ActualArr   time.Time
}

// ArrivalInstant returns the actual arrival, falling back to scheduled.
func (f *FlightNode) ArrivalInstant() (time.Time, bool) {
	if !f.ActualArr.IsZero() {
		return f.ActualArr, true
	}
	if !f.SchedArr.IsZero() {
		return f.SchedArr, true
	}
	return time.Time{}, false
}

// FlightEdge is a flight movement between two airport nodes. The multigraph
// key is the flight ID, so one edge exists per flight leg. Zero times mean
// the feed carried no usable instant.
type FlightEdge struct {
	Source      string // origin airport code
	Target      string // destination airport code
	FlightID    string
	SchedDep    time.Time
	ActualDep   time.Time
	SchedArr    time.Time
	ActualArr   time.Time
	DepDelayMin *int
	ArrDelayMin *int
	Equipment   string
	EquipClass  string
}

// DepartureInstant returns the actual departure, falling back to scheduled.
func (e *FlightEdge) DepartureInstant() (time.Time, bool) {
	if !e.ActualDep.IsZero() {
		return e.ActualDep, true
	}
	if !e.SchedDep.IsZero() {
		return e.SchedDep, true
	}
	return time.Time{}, false
}

// ArrivalInstant returns the actual arrival, falling back to scheduled.
func (e *FlightEdge) ArrivalInstant() (time.Time, bool) {
	if !e.ActualArr.IsZero() {
		return e.ActualArr, true
	}
	if !e.SchedArr.IsZero() {
		return e.SchedArr, true
	}
	return time.Time{}, false
}

// Edge is a resource connection between two flight nodes. Key is
// "<TYPE>_<label>" and is unique per (Source, Target) pair.
type Edge struct {
	Source   string
	Target   string
	Key      string
	Type     string // AIRCRAFT_TURN, CREW_PILOT, CREW_FA, UNKNOWN_*
	Code     string // raw feed code: AC, P, F, ...
	Label    string // resource identifier
	Activity string
}

// Metadata describes how and when the graph was built.
type Metadata struct {
	Name     string    `json:"name"`
	Model    string    `json:"model"`
	BuildID  string    `json:"build_id"`
	BuiltAt  time.Time `json:"created_utc"`
	Airports int       `json:"airport_count"`
	Flights  int       `json:"flight_count"`
	Edges    int       `json:"edge_count"`
	Legs     int       `json:"flight_edge_count"`
}

type edgeRef struct {
	src, dst, key string
}

// Config configures a Graph.
type Config struct {
	Log   *slog.Logger
	Clock clockwork.Clock
	Name  string
	Model string
}

// Validate checks the config and applies defaults.
func (c *Config) Validate() error {
	if c.Log == nil {
		return errors.New("logger is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Name == "" {
		c.Name = "FlightEvents"
	}
	if c.Model == "" {
		c.Model = "flights-only"
	}
	return nil
}

// Graph is the in-memory temporal multigraph. It is built once by the
// builder and treated as immutable by readers; query methods are safe for
// concurrent use after the build completes.
type Graph struct {
	log  *slog.Logger
	Meta Metadata

	airports    map[string]*AirportNode
	flights     map[string]*FlightNode
	flightEdges map[string]*FlightEdge // keyed by flight ID
	edges       map[edgeRef]*Edge
	edgeSeq     []edgeRef // insertion order, skipping overwrites

	// Advisory temporal-consistency findings collected during the build.
	Warnings []string

	// Sweep indexes populated by BuildTimelines.
	depEvents []delayEvent
	arrEvents []delayEvent
	intervals []flightInterval
}

// delayEvent is one movement instant with its optional delay, pre-sorted
// for the two-pointer timeline sweeps.
type delayEvent struct {
	at       time.Time
	flightID string
	delayMin *int
}

// flightInterval is a flight's enroute window [dep, arr).
type flightInterval struct {
	flightID string
	dep      time.Time
	arr      time.Time
}

// New creates an empty graph.
func New(cfg Config) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Graph{
		log: cfg.Log,
		Meta: Metadata{
			Name:    cfg.Name,
			Model:   cfg.Model,
			BuiltAt: cfg.Clock.Now().UTC(),
		},
		airports:    make(map[string]*AirportNode),
		flights:     make(map[string]*FlightNode),
		flightEdges: make(map[string]*FlightEdge),
		edges:       make(map[edgeRef]*Edge),
	}, nil
}

// AddAirport registers an airport node. Re-adding a code overwrites the
// descriptive attributes but keeps any existing timeline.
func (g *Graph) AddAirport(a AirportNode) {
	if existing, ok := g.airports[a.Code]; ok {
		a.Snapshots = existing.Snapshots
	}
	node := a
	g.airports[a.Code] = &node
	g.Meta.Airports = len(g.airports)
}

// Airport returns the node for a code.
func (g *Graph) Airport(code string) (*AirportNode, bool) {
	n, ok := g.airports[code]
	return n, ok
}

// AirportCodes returns all airport codes in unspecified order.
func (g *Graph) AirportCodes() []string {
	codes := make([]string, 0, len(g.airports))
	for code := range g.airports {
		codes = append(codes, code)
	}
	return codes
}

// FlightIDs returns all flight node IDs in sorted order.
func (g *Graph) FlightIDs() []string {
	ids := make([]string, 0, len(g.flights))
	for id := range g.flights {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Flight returns the flight node for an ID.
func (g *Graph) Flight(id string) (*FlightNode, bool) {
	n, ok := g.flights[id]
	return n, ok
}

// FlightEdge returns the movement edge for a flight ID.
func (g *Graph) FlightEdge(id string) (*FlightEdge, bool) {
	e, ok := g.flightEdges[id]
	return e, ok
}

// FlightEdges returns all movement edges sorted by flight ID.
func (g *Graph) FlightEdges() []*FlightEdge {
	ids := make([]string, 0, len(g.flightEdges))
	for id := range g.flightEdges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*FlightEdge, len(ids))
	for i, id := range ids {
		out[i] = g.flightEdges[id]
	}
	return out
}

// Edges returns all connection edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeSeq))
	for _, ref := range g.edgeSeq {
		out = append(out, g.edges[ref])
	}
	return out
}

// NumAirports returns the airport node count.
func (g *Graph) NumAirports() int { return len(g.airports) }

// NumFlights returns the flight node count.
func (g *Graph) NumFlights() int { return len(g.flights) }

// NumEdges returns the connection edge count.
func (g *Graph) NumEdges() int { return len(g.edges) }

// NumFlightEdges returns the movement edge count.
func (g *Graph) NumFlightEdges() int { return len(g.flightEdges) }
