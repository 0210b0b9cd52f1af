package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/skyfold/flightgraph/builder/pkg/builder"
	"github.com/skyfold/flightgraph/builder/pkg/ingest"
	"github.com/skyfold/flightgraph/builder/pkg/metrics"
	"github.com/skyfold/flightgraph/builder/pkg/neo4j"
	"github.com/skyfold/flightgraph/utils/pkg/logger"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultOutputPath  = "flight_graph.json"
	defaultMetricsAddr = ""
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	metricsAddrFlag := flag.String("metrics-addr", defaultMetricsAddr, "Address to listen on for prometheus metrics (empty disables)")

	// Data source configuration
	dataDirFlag := flag.String("data-dir", "", "Local directory containing the CSV datasets (or set DATA_DIR env var)")
	s3BucketFlag := flag.String("s3-bucket", "", "S3 bucket containing the CSV datasets (or set S3_BUCKET env var)")
	s3PrefixFlag := flag.String("s3-prefix", "", "Key prefix within the S3 bucket (or set S3_PREFIX env var)")
	s3RegionFlag := flag.String("s3-region", ingest.DefaultRegion, "AWS region for the S3 bucket (or set S3_REGION env var)")
	s3EndpointFlag := flag.String("s3-endpoint", "", "Custom S3 endpoint URL, e.g. a local MinIO (or set S3_ENDPOINT env var)")

	// Dataset names
	airportsFileFlag := flag.String("airports-file", builder.DefaultAirportsFile, "Airports dataset name")
	flightsFileFlag := flag.String("flights-file", builder.DefaultFlightsFile, "Flights dataset name")
	connectionsFileFlag := flag.String("connections-file", builder.DefaultConnectionsFile, "Connections dataset name")
	connectionsOptionalFlag := flag.Bool("connections-optional", false, "Continue without edges when the connections dataset is missing")

	// Output configuration
	outFlag := flag.String("out", defaultOutputPath, "Path for the node-link JSON output (empty disables)")
	graphNameFlag := flag.String("graph-name", "", "Graph name recorded in the output metadata")
	graphModelFlag := flag.String("graph-model", "", "Graph model recorded in the output metadata")

	// Neo4j configuration (optional)
	neo4jURIFlag := flag.String("neo4j-uri", "", "Neo4j server URI (e.g., bolt://localhost:7687, or set NEO4J_URI env var)")
	neo4jDatabaseFlag := flag.String("neo4j-database", neo4j.DefaultDatabase, "Neo4j database name (or set NEO4J_DATABASE env var)")
	neo4jUsernameFlag := flag.String("neo4j-username", "neo4j", "Neo4j username (or set NEO4J_USERNAME env var)")
	neo4jPasswordFlag := flag.String("neo4j-password", "", "Neo4j password (or set NEO4J_PASSWORD env var)")

	flag.Parse()

	// Load .env file. godotenv does not override existing env vars, so
	// process env and explicit exports take precedence.
	_ = godotenv.Load()

	// Override flags with environment variables if set
	if envDataDir := os.Getenv("DATA_DIR"); envDataDir != "" {
		*dataDirFlag = envDataDir
	}
	if envS3Bucket := os.Getenv("S3_BUCKET"); envS3Bucket != "" {
		*s3BucketFlag = envS3Bucket
	}
	if envS3Prefix := os.Getenv("S3_PREFIX"); envS3Prefix != "" {
		*s3PrefixFlag = envS3Prefix
	}
	if envS3Region := os.Getenv("S3_REGION"); envS3Region != "" {
		*s3RegionFlag = envS3Region
	}
	if envS3Endpoint := os.Getenv("S3_ENDPOINT"); envS3Endpoint != "" {
		*s3EndpointFlag = envS3Endpoint
	}
	if envNeo4jURI := os.Getenv("NEO4J_URI"); envNeo4jURI != "" {
		*neo4jURIFlag = envNeo4jURI
	}
	if envNeo4jDatabase := os.Getenv("NEO4J_DATABASE"); envNeo4jDatabase != "" {
		*neo4jDatabaseFlag = envNeo4jDatabase
	}
	if envNeo4jUsername := os.Getenv("NEO4J_USERNAME"); envNeo4jUsername != "" {
		*neo4jUsernameFlag = envNeo4jUsername
	}
	if envNeo4jPassword := os.Getenv("NEO4J_PASSWORD"); envNeo4jPassword != "" {
		*neo4jPasswordFlag = envNeo4jPassword
	}

	log := logger.New(*verboseFlag)

	log.Info("builder starting",
		"version", version,
		"commit", commit,
		"data_dir", *dataDirFlag,
		"s3_bucket", *s3BucketFlag,
		"neo4j_enabled", *neo4jURIFlag != "",
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigCh
		log.Info("builder: received signal", "signal", sig.String())
		cancel()
	}()

	if *metricsAddrFlag != "" {
		metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
		go func() {
			listener, err := net.Listen("tcp", *metricsAddrFlag)
			if err != nil {
				log.Error("failed to start prometheus metrics server listener", "error", err)
				return
			}
			log.Info("prometheus metrics server listening", "address", listener.Addr().String())
			http.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, nil); err != nil {
				log.Error("failed to start prometheus metrics server", "error", err)
			}
		}()
	}

	// Resolve the data source: exactly one of --data-dir or --s3-bucket.
	var source ingest.Source
	switch {
	case *dataDirFlag != "" && *s3BucketFlag != "":
		return fmt.Errorf("only one of --data-dir and --s3-bucket may be set")
	case *dataDirFlag != "":
		var err error
		source, err = ingest.NewLocalSource(*dataDirFlag)
		if err != nil {
			return fmt.Errorf("failed to create local source: %w", err)
		}
	case *s3BucketFlag != "":
		var err error
		source, err = ingest.NewS3Source(ctx, ingest.S3SourceConfig{
			Bucket:      *s3BucketFlag,
			Prefix:      *s3PrefixFlag,
			Region:      *s3RegionFlag,
			EndpointURL: *s3EndpointFlag,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 source: %w", err)
		}
	default:
		return fmt.Errorf("one of --data-dir or --s3-bucket is required")
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Warn("failed to close data source", "error", err)
		}
	}()

	// Initialize Neo4j client (optional)
	var neo4jClient neo4j.Client
	if *neo4jURIFlag != "" {
		var err error
		neo4jClient, err = neo4j.NewClient(ctx, log, neo4j.Config{
			URI:      *neo4jURIFlag,
			Database: *neo4jDatabaseFlag,
			Username: *neo4jUsernameFlag,
			Password: *neo4jPasswordFlag,
		})
		if err != nil {
			return fmt.Errorf("failed to create Neo4j client: %w", err)
		}
		defer func() {
			if closeErr := neo4jClient.Close(ctx); closeErr != nil {
				log.Warn("failed to close Neo4j client", "error", closeErr)
			}
		}()
	}

	b, err := builder.New(builder.Config{
		Logger:              log,
		Clock:               clockwork.NewRealClock(),
		Source:              source,
		AirportsFile:        *airportsFileFlag,
		FlightsFile:         *flightsFileFlag,
		ConnectionsFile:     *connectionsFileFlag,
		ConnectionsOptional: *connectionsOptionalFlag,
		OutputPath:          *outFlag,
		Neo4j:               neo4jClient,
		GraphName:           *graphNameFlag,
		GraphModel:          *graphModelFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to create builder: %w", err)
	}

	if _, err := b.Run(ctx); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}
