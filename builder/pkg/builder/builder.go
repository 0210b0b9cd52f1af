// Package builder orchestrates a full graph build: fetch the CSV datasets,
// validate them, fold the flight events into airport timelines, attach the
// resource connections, and persist the result.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skyfold/flightgraph/builder/pkg/export"
	"github.com/skyfold/flightgraph/builder/pkg/graph"
	"github.com/skyfold/flightgraph/builder/pkg/ingest"
	"github.com/skyfold/flightgraph/builder/pkg/metrics"
)

// Builder runs graph builds.
type Builder struct {
	log *slog.Logger
	cfg Config
}

// New creates a Builder.
func New(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

// Run performs one full build and returns the graph.
func (b *Builder) Run(ctx context.Context) (*graph.Graph, error) {
	buildID := uuid.NewString()
	start := time.Now()
	b.log.Info("builder: starting build", "build_id", buildID)

	var airportsRaw, flightsRaw, connectionsRaw []byte

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(3)
	eg.Go(func() error {
		var err error
		airportsRaw, err = b.cfg.Source.Fetch(egCtx, b.cfg.AirportsFile)
		if err != nil {
			return fmt.Errorf("failed to fetch airports: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		flightsRaw, err = b.cfg.Source.Fetch(egCtx, b.cfg.FlightsFile)
		if err != nil {
			return fmt.Errorf("failed to fetch flights: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		connectionsRaw, err = b.cfg.Source.Fetch(egCtx, b.cfg.ConnectionsFile)
		if err != nil {
			if b.cfg.ConnectionsOptional {
				b.log.Warn("builder: connections dataset unavailable, skipping", "error", err)
				return nil
			}
			return fmt.Errorf("failed to fetch connections: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	airports, airportProblems, err := ingest.LoadAirports(airportsRaw)
	if err != nil {
		return nil, err
	}
	for _, p := range airportProblems {
		b.log.Warn("builder: airport row skipped", "problem", p)
	}
	metrics.RowsIngested.WithLabelValues("airports").Add(float64(len(airports)))
	metrics.RowsRejected.WithLabelValues("airports").Add(float64(len(airportProblems)))

	flightsRes, err := ingest.LoadFlights(flightsRaw, airports)
	if err != nil {
		return nil, err
	}
	for _, e := range flightsRes.Errors {
		b.log.Warn("builder: flight row rejected", "error", e)
	}
	metrics.RowsIngested.WithLabelValues("flights").Add(float64(len(flightsRes.Flights)))
	metrics.RowsRejected.WithLabelValues("flights").Add(float64(len(flightsRes.Errors)))

	g, err := graph.New(graph.Config{
		Log:   b.log,
		Clock: b.cfg.Clock,
		Name:  b.cfg.GraphName,
		Model: b.cfg.GraphModel,
	})
	if err != nil {
		return nil, err
	}
	g.Meta.BuildID = buildID

	for _, a := range airports {
		g.AddAirport(graph.AirportNode{
			Code:    a.Code,
			Name:    a.Name,
			City:    a.City,
			State:   a.State,
			Country: a.Country,
		})
	}
	tl := g.BuildTimelines(flightsRes.Flights)
	if tl.SkippedEvents > 0 {
		b.log.Warn("builder: flight events at unknown airports skipped", "count", tl.SkippedEvents)
		metrics.RowsRejected.WithLabelValues("events").Add(float64(tl.SkippedEvents))
	}

	if connectionsRaw != nil {
		connRes, err := ingest.LoadConnections(connectionsRaw)
		if err != nil {
			return nil, err
		}
		rejected := len(connRes.Errors)
		for _, e := range connRes.Errors {
			b.log.Warn("builder: connection row rejected", "error", e)
		}
		for _, c := range connRes.Connections {
			if err := g.AddConnection(c); err != nil {
				b.log.Warn("builder: connection rejected", "error", err)
				rejected++
			}
		}
		metrics.RowsIngested.WithLabelValues("connections").Add(float64(g.NumEdges()))
		metrics.RowsRejected.WithLabelValues("connections").Add(float64(rejected))
	}
	metrics.TemporalWarnings.Add(float64(len(g.Warnings)))

	if b.cfg.OutputPath != "" {
		if err := g.Save(b.cfg.OutputPath); err != nil {
			return nil, err
		}
		b.log.Info("builder: graph saved", "path", b.cfg.OutputPath)
	}

	if b.cfg.Neo4j != nil {
		store, err := export.NewStore(export.StoreConfig{
			Logger: b.log,
			Neo4j:  b.cfg.Neo4j,
		})
		if err != nil {
			return nil, err
		}
		if err := store.Sync(ctx, g); err != nil {
			return nil, fmt.Errorf("failed to export graph: %w", err)
		}
	}

	metrics.GraphBuildDuration.Observe(time.Since(start).Seconds())
	b.log.Info("builder: build completed",
		"build_id", buildID,
		"airports", g.NumAirports(),
		"flights", g.NumFlights(),
		"edges", g.NumEdges(),
		"warnings", len(g.Warnings),
		"duration", time.Since(start))

	return g, nil
}
