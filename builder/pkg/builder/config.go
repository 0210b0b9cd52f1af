package builder

import (
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/skyfold/flightgraph/builder/pkg/ingest"
	"github.com/skyfold/flightgraph/builder/pkg/neo4j"
)

// Default dataset names resolved against the configured source.
const (
	DefaultAirportsFile    = "airports.csv"
	DefaultFlightsFile     = "flights.csv"
	DefaultConnectionsFile = "flight_connections.csv"
)

// Config holds configuration for the Builder.
type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	Source ingest.Source

	// Dataset names fetched from the source.
	AirportsFile    string
	FlightsFile     string
	ConnectionsFile string

	// ConnectionsOptional skips the connections dataset when the source
	// does not have it instead of failing the build.
	ConnectionsOptional bool

	// OutputPath is where the node-link JSON is written. Empty disables
	// persistence.
	OutputPath string

	// Neo4j enables the post-build graph export when set.
	Neo4j neo4j.Client

	GraphName  string
	GraphModel string
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Source == nil {
		return errors.New("source is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.AirportsFile == "" {
		c.AirportsFile = DefaultAirportsFile
	}
	if c.FlightsFile == "" {
		c.FlightsFile = DefaultFlightsFile
	}
	if c.ConnectionsFile == "" {
		c.ConnectionsFile = DefaultConnectionsFile
	}
	return nil
}
