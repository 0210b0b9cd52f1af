// Package config loads the flight graph the API serves. The graph is read
// once at startup from node-link JSON and treated as immutable afterwards,
// so handlers can query it concurrently without locking.
package config

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/skyfold/flightgraph/builder/pkg/graph"
	"github.com/skyfold/flightgraph/utils/pkg/logger"
)

const defaultGraphPath = "flight_graph.json"

// FlightGraph is the graph served by all handlers.
var FlightGraph *graph.Graph

// Clock is the time source for handlers that default to "now".
var Clock clockwork.Clock = clockwork.NewRealClock()

// Load reads the graph from the path in the GRAPH_PATH environment variable,
// falling back to flight_graph.json in the working directory.
func Load() error {
	path := os.Getenv("GRAPH_PATH")
	if path == "" {
		path = defaultGraphPath
	}

	g, err := graph.Load(path, graph.Config{Log: logger.New(false)})
	if err != nil {
		return fmt.Errorf("failed to load graph from %s: %w", path, err)
	}

	FlightGraph = g
	return nil
}

// SetGraph replaces the served graph (for testing).
func SetGraph(g *graph.Graph) {
	FlightGraph = g
}

// Ready reports whether a graph has been loaded.
func Ready() bool {
	return FlightGraph != nil
}
