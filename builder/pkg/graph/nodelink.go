package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// Node-link JSON document, compatible with the usual node-link layout:
// nodes carry their attributes inline, links reference nodes by ID and
// carry the multigraph key.
type document struct {
	Directed   bool       `json:"directed"`
	Multigraph bool       `json:"multigraph"`
	Graph      graphJSON  `json:"graph"`
	Nodes      []nodeJSON `json:"nodes"`
	Links      []linkJSON `json:"links"`
}

// graphJSON is the graph-level attribute object: the build metadata plus the
// advisory warnings collected during the build.
type graphJSON struct {
	Metadata
	Warnings []string `json:"warnings,omitempty"`
}

type nodeJSON struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	// Airport attributes
	Name        string     `json:"airport_name,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	Country     string     `json:"country,omitempty"`
	LastUpdated string     `json:"last_updated,omitempty"`
	Snapshots   []Snapshot `json:"time_snapshots,omitempty"`

	// Flight attributes
	Carrier     string `json:"carrier,omitempty"`
	Number      string `json:"flight_number,omitempty"`
	Date        string `json:"flight_date,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	SchedDep    string `json:"sch_dep_gmt,omitempty"`
	SchedArr    string `json:"sch_arr_gmt,omitempty"`
	ActualArr   string `json:"act_arr_gmt,omitempty"`
}

type linkJSON struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Key    string `json:"key"`
	Kind   string `json:"kind"`

	// Resource-connection attributes
	Type     string `json:"type,omitempty"`
	Code     string `json:"edge_code,omitempty"`
	Label    string `json:"edge_label,omitempty"`
	Activity string `json:"edge_activity,omitempty"`

	// Flight-movement attributes
	SchedDep    string `json:"sch_dep_gmt,omitempty"`
	ActualDep   string `json:"act_dep_gmt,omitempty"`
	SchedArr    string `json:"sch_arr_gmt,omitempty"`
	ActualArr   string `json:"act_arr_gmt,omitempty"`
	DepDelayMin *int   `json:"dep_delay,omitempty"`
	ArrDelayMin *int   `json:"arr_delay,omitempty"`
	Equipment   string `json:"equipment,omitempty"`
	EquipClass  string `json:"equipment_class,omitempty"`
}

const (
	linkKindFlight   = "flight"
	linkKindResource = "resource"
)

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseInstant(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Encode writes the graph as node-link JSON. Nodes and flight-movement
// links are emitted in sorted ID order so output is deterministic.
func (g *Graph) Encode(w io.Writer) error {
	doc := document{
		Directed:   true,
		Multigraph: true,
		Graph: graphJSON{
			Metadata: g.Meta,
			Warnings: g.Warnings,
		},
	}

	airportCodes := g.AirportCodes()
	sort.Strings(airportCodes)
	for _, code := range airportCodes {
		a := g.airports[code]
		doc.Nodes = append(doc.Nodes, nodeJSON{
			ID:          a.Code,
			Kind:        "airport",
			Name:        a.Name,
			City:        a.City,
			State:       a.State,
			Country:     a.Country,
			LastUpdated: formatInstant(a.LastUpdated),
			Snapshots:   a.Snapshots,
		})
	}

	for _, id := range g.FlightIDs() {
		f := g.flights[id]
		doc.Nodes = append(doc.Nodes, nodeJSON{
			ID:          f.ID,
			Kind:        "flight",
			Carrier:     f.Carrier,
			Number:      f.Number,
			Date:        f.Date,
			Origin:      f.Origin,
			Destination: f.Destination,
			SchedDep:    formatInstant(f.SchedDep),
			SchedArr:    formatInstant(f.SchedArr),
			ActualArr:   formatInstant(f.ActualArr),
		})
	}

	for _, e := range g.FlightEdges() {
		doc.Links = append(doc.Links, linkJSON{
			Source:      e.Source,
			Target:      e.Target,
			Key:         e.FlightID,
			Kind:        linkKindFlight,
			SchedDep:    formatInstant(e.SchedDep),
			ActualDep:   formatInstant(e.ActualDep),
			SchedArr:    formatInstant(e.SchedArr),
			ActualArr:   formatInstant(e.ActualArr),
			DepDelayMin: e.DepDelayMin,
			ArrDelayMin: e.ArrDelayMin,
			Equipment:   e.Equipment,
			EquipClass:  e.EquipClass,
		})
	}

	for _, ref := range g.edgeSeq {
		e := g.edges[ref]
		doc.Links = append(doc.Links, linkJSON{
			Source:   e.Source,
			Target:   e.Target,
			Key:      e.Key,
			Kind:     linkKindResource,
			Type:     e.Type,
			Code:     e.Code,
			Label:    e.Label,
			Activity: e.Activity,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Decode reads node-link JSON into the graph, replacing its contents and
// rebuilding the timeline sweep indexes from the flight-movement links.
func (g *Graph) Decode(r io.Reader) error {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode node-link JSON: %w", err)
	}
	if !doc.Directed || !doc.Multigraph {
		return fmt.Errorf("node-link document must be directed and multigraph")
	}

	g.Meta = doc.Graph.Metadata
	g.Warnings = doc.Graph.Warnings
	g.airports = make(map[string]*AirportNode)
	g.flights = make(map[string]*FlightNode)
	g.flightEdges = make(map[string]*FlightEdge)
	g.edges = make(map[edgeRef]*Edge)
	g.edgeSeq = nil

	for _, n := range doc.Nodes {
		switch n.Kind {
		case "airport":
			g.airports[n.ID] = &AirportNode{
				Code:        n.ID,
				Name:        n.Name,
				City:        n.City,
				State:       n.State,
				Country:     n.Country,
				LastUpdated: parseInstant(n.LastUpdated),
				Snapshots:   n.Snapshots,
			}
		case "flight":
			g.flights[n.ID] = &FlightNode{
				ID:          n.ID,
				Carrier:     n.Carrier,
				Number:      n.Number,
				Date:        n.Date,
				Origin:      n.Origin,
				Destination: n.Destination,
				SchedDep:    parseInstant(n.SchedDep),
				SchedArr:    parseInstant(n.SchedArr),
				ActualArr:   parseInstant(n.ActualArr),
			}
		default:
			return fmt.Errorf("unknown node kind %q for node %s", n.Kind, n.ID)
		}
	}

	for _, l := range doc.Links {
		switch l.Kind {
		case linkKindFlight:
			g.flightEdges[l.Key] = &FlightEdge{
				Source:      l.Source,
				Target:      l.Target,
				FlightID:    l.Key,
				SchedDep:    parseInstant(l.SchedDep),
				ActualDep:   parseInstant(l.ActualDep),
				SchedArr:    parseInstant(l.SchedArr),
				ActualArr:   parseInstant(l.ActualArr),
				DepDelayMin: l.DepDelayMin,
				ArrDelayMin: l.ArrDelayMin,
				Equipment:   l.Equipment,
				EquipClass:  l.EquipClass,
			}
		case linkKindResource:
			ref := edgeRef{src: l.Source, dst: l.Target, key: l.Key}
			if _, exists := g.edges[ref]; !exists {
				g.edgeSeq = append(g.edgeSeq, ref)
			}
			g.edges[ref] = &Edge{
				Source:   l.Source,
				Target:   l.Target,
				Key:      l.Key,
				Type:     l.Type,
				Code:     l.Code,
				Label:    l.Label,
				Activity: l.Activity,
			}
		default:
			return fmt.Errorf("unknown link kind %q for edge %s -> %s", l.Kind, l.Source, l.Target)
		}
	}

	g.Meta.Airports = len(g.airports)
	g.Meta.Flights = len(g.flights)
	g.Meta.Edges = len(g.edges)
	g.Meta.Legs = len(g.flightEdges)
	g.rebuildIndexes()

	return nil
}

// rebuildIndexes reconstructs the sweep indexes from the flight-movement
// edges. Event instants and delays come straight off the edge attributes,
// so the indexes survive a Decode byte-for-byte.
func (g *Graph) rebuildIndexes() {
	g.depEvents = nil
	g.arrEvents = nil
	g.intervals = nil

	for _, e := range g.flightEdges {
		dep, depOK := e.DepartureInstant()
		arr, arrOK := e.ArrivalInstant()
		if depOK {
			g.depEvents = append(g.depEvents, delayEvent{at: dep, flightID: e.FlightID, delayMin: e.DepDelayMin})
		}
		if arrOK {
			g.arrEvents = append(g.arrEvents, delayEvent{at: arr, flightID: e.FlightID, delayMin: e.ArrDelayMin})
		}
		if depOK && arrOK {
			g.intervals = append(g.intervals, flightInterval{flightID: e.FlightID, dep: dep, arr: arr})
		}
	}

	sortDelayEvents(g.depEvents)
	sortDelayEvents(g.arrEvents)
	sort.Slice(g.intervals, func(i, j int) bool {
		if !g.intervals[i].dep.Equal(g.intervals[j].dep) {
			return g.intervals[i].dep.Before(g.intervals[j].dep)
		}
		return g.intervals[i].flightID < g.intervals[j].flightID
	})
}

func sortDelayEvents(events []delayEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].flightID < events[j].flightID
	})
}

// Save writes the graph to a file as node-link JSON.
func (g *Graph) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := g.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Load reads a node-link JSON file into a new graph.
func Load(path string, cfg Config) (*Graph, error) {
	g, err := New(cfg)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := g.Decode(f); err != nil {
		return nil, err
	}
	g.log.Info("graph: loaded",
		"path", path,
		"airports", g.NumAirports(),
		"flights", g.NumFlights(),
		"flight_edges", g.NumFlightEdges(),
		"edges", g.NumEdges())
	return g, nil
}
