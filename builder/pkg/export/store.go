// Package export mirrors the in-memory flight graph into Neo4j so the
// timelines and resource connections can be queried with Cypher.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/skyfold/flightgraph/builder/pkg/graph"
	"github.com/skyfold/flightgraph/builder/pkg/neo4j"
)

const defaultBatchSize = 500

// StoreConfig holds configuration for the Store.
type StoreConfig struct {
	Logger    *slog.Logger
	Neo4j     neo4j.Client
	BatchSize int
}

func (cfg *StoreConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Neo4j == nil {
		return errors.New("neo4j client is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return nil
}

// Store manages the Neo4j representation of the flight graph. The in-memory
// graph is the source of truth; Sync replaces the Neo4j contents with it.
type Store struct {
	log *slog.Logger
	cfg StoreConfig
}

// NewStore creates a new Store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

// Sync replaces the Neo4j graph with the given flight graph. The full sync
// runs atomically within a single write transaction, so readers see either
// the old state or the new state, never an empty or partial one.
func (s *Store) Sync(ctx context.Context, g *graph.Graph) error {
	s.log.Debug("export: starting sync",
		"airports", g.NumAirports(),
		"flights", g.NumFlights(),
		"edges", g.NumEdges())

	session, err := s.cfg.Neo4j.Session(ctx)
	if err != nil {
		return fmt.Errorf("failed to create Neo4j session: %w", err)
	}
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.Transaction) (any, error) {
		// Delete all existing nodes and relationships
		if err := run(ctx, tx, "MATCH (n) DETACH DELETE n", nil); err != nil {
			return nil, fmt.Errorf("failed to clear graph: %w", err)
		}

		if err := s.batchCreateAirports(ctx, tx, g); err != nil {
			return nil, fmt.Errorf("failed to create airports: %w", err)
		}
		if err := s.batchCreateFlights(ctx, tx, g); err != nil {
			return nil, fmt.Errorf("failed to create flights: %w", err)
		}
		if err := s.batchCreateFlightLegs(ctx, tx, g); err != nil {
			return nil, fmt.Errorf("failed to create flight legs: %w", err)
		}
		if err := s.batchCreateConnections(ctx, tx, g); err != nil {
			return nil, fmt.Errorf("failed to create connections: %w", err)
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to sync graph: %w", err)
	}

	s.log.Info("export: sync completed",
		"airports", g.NumAirports(),
		"flights", g.NumFlights(),
		"edges", g.NumEdges())

	return nil
}

func run(ctx context.Context, tx neo4j.Transaction, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	if _, err := res.Consume(ctx); err != nil {
		return err
	}
	return nil
}

// batches splits items into batchSize-sized chunks.
func batches(items []map[string]any, size int) [][]map[string]any {
	var out [][]map[string]any
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

func instantOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func intOrNil(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func (s *Store) batchCreateAirports(ctx context.Context, tx neo4j.Transaction, g *graph.Graph) error {
	codes := g.AirportCodes()
	sort.Strings(codes)
	items := make([]map[string]any, 0, len(codes))
	for _, code := range codes {
		a, _ := g.Airport(code)
		items = append(items, map[string]any{
			"code":         a.Code,
			"name":         a.Name,
			"city":         a.City,
			"state":        a.State,
			"country":      a.Country,
			"last_updated": instantOrNil(a.LastUpdated),
			"snapshots":    len(a.Snapshots),
		})
	}

	cypher := `
		UNWIND $items AS item
		CREATE (a:Airport {
			code: item.code,
			name: item.name,
			city: item.city,
			state: item.state,
			country: item.country,
			last_updated: item.last_updated,
			snapshot_count: item.snapshots
		})
	`
	for _, batch := range batches(items, s.cfg.BatchSize) {
		if err := run(ctx, tx, cypher, map[string]any{"items": batch}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) batchCreateFlights(ctx context.Context, tx neo4j.Transaction, g *graph.Graph) error {
	ids := g.FlightIDs()
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		f, _ := g.Flight(id)
		items = append(items, map[string]any{
			"id":          f.ID,
			"carrier":     f.Carrier,
			"number":      f.Number,
			"date":        f.Date,
			"origin":      f.Origin,
			"destination": f.Destination,
			"sch_dep_gmt": instantOrNil(f.SchedDep),
			"sch_arr_gmt": instantOrNil(f.SchedArr),
			"act_arr_gmt": instantOrNil(f.ActualArr),
		})
	}

	cypher := `
		UNWIND $items AS item
		MERGE (f:Flight {id: item.id})
		SET f.carrier = item.carrier,
		    f.number = item.number,
		    f.date = item.date,
		    f.origin = item.origin,
		    f.destination = item.destination,
		    f.sch_dep_gmt = item.sch_dep_gmt,
		    f.sch_arr_gmt = item.sch_arr_gmt,
		    f.act_arr_gmt = item.act_arr_gmt
	`
	for _, batch := range batches(items, s.cfg.BatchSize) {
		if err := run(ctx, tx, cypher, map[string]any{"items": batch}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) batchCreateFlightLegs(ctx context.Context, tx neo4j.Transaction, g *graph.Graph) error {
	legs := g.FlightEdges()
	items := make([]map[string]any, 0, len(legs))
	for _, e := range legs {
		items = append(items, map[string]any{
			"source":          e.Source,
			"target":          e.Target,
			"flight_id":       e.FlightID,
			"sch_dep_gmt":     instantOrNil(e.SchedDep),
			"act_dep_gmt":     instantOrNil(e.ActualDep),
			"sch_arr_gmt":     instantOrNil(e.SchedArr),
			"act_arr_gmt":     instantOrNil(e.ActualArr),
			"dep_delay":       intOrNil(e.DepDelayMin),
			"arr_delay":       intOrNil(e.ArrDelayMin),
			"equipment":       e.Equipment,
			"equipment_class": e.EquipClass,
		})
	}

	// MERGE materializes airports the feed referenced but never described.
	cypher := `
		UNWIND $items AS item
		MERGE (o:Airport {code: item.source})
		MERGE (d:Airport {code: item.target})
		CREATE (o)-[:FLIGHT {
			flight_id: item.flight_id,
			sch_dep_gmt: item.sch_dep_gmt,
			act_dep_gmt: item.act_dep_gmt,
			sch_arr_gmt: item.sch_arr_gmt,
			act_arr_gmt: item.act_arr_gmt,
			dep_delay: item.dep_delay,
			arr_delay: item.arr_delay,
			equipment: item.equipment,
			equipment_class: item.equipment_class
		}]->(d)
	`
	for _, batch := range batches(items, s.cfg.BatchSize) {
		if err := run(ctx, tx, cypher, map[string]any{"items": batch}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) batchCreateConnections(ctx context.Context, tx neo4j.Transaction, g *graph.Graph) error {
	edges := g.Edges()
	items := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		items = append(items, map[string]any{
			"source":   e.Source,
			"target":   e.Target,
			"key":      e.Key,
			"type":     e.Type,
			"code":     e.Code,
			"label":    e.Label,
			"activity": e.Activity,
		})
	}

	cypher := `
		UNWIND $items AS item
		MATCH (s:Flight {id: item.source})
		MATCH (t:Flight {id: item.target})
		CREATE (s)-[:CONNECTS {
			key: item.key,
			type: item.type,
			edge_code: item.code,
			edge_label: item.label,
			edge_activity: item.activity
		}]->(t)
	`
	for _, batch := range batches(items, s.cfg.BatchSize) {
		if err := run(ctx, tx, cypher, map[string]any{"items": batch}); err != nil {
			return err
		}
	}
	return nil
}
