package export

import (
	"context"
	"strings"
	"testing"
	"time"

	driver "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/require"

	"github.com/skyfold/flightgraph/builder/pkg/graph"
	"github.com/skyfold/flightgraph/builder/pkg/ingest"
	"github.com/skyfold/flightgraph/builder/pkg/neo4j"
	"github.com/skyfold/flightgraph/utils/pkg/logger"
)

// fakeClient records every cypher statement run through it.
type fakeClient struct {
	queries []query
	closed  bool
}

type query struct {
	cypher string
	params map[string]any
}

func (f *fakeClient) Session(ctx context.Context) (neo4j.Session, error) {
	return &fakeSession{client: f}, nil
}

func (f *fakeClient) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakeSession struct {
	client *fakeClient
}

func (s *fakeSession) Run(ctx context.Context, cypher string, params map[string]any) (neo4j.Result, error) {
	s.client.queries = append(s.client.queries, query{cypher: cypher, params: params})
	return fakeResult{}, nil
}

func (s *fakeSession) ExecuteWrite(ctx context.Context, work neo4j.TransactionWork) (any, error) {
	return work(&fakeTransaction{client: s.client})
}

func (s *fakeSession) Close(ctx context.Context) error { return nil }

type fakeTransaction struct {
	client *fakeClient
}

func (t *fakeTransaction) Run(ctx context.Context, cypher string, params map[string]any) (neo4j.Result, error) {
	t.client.queries = append(t.client.queries, query{cypher: cypher, params: params})
	return fakeResult{}, nil
}

type fakeResult struct{}

func (fakeResult) Next(ctx context.Context) bool      { return false }
func (fakeResult) Record() *driver.Record             { return nil }
func (fakeResult) Err() error                         { return nil }
func (fakeResult) Consume(ctx context.Context) (driver.ResultSummary, error) {
	return nil, nil
}

func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(graph.Config{Log: logger.NewTest()})
	require.NoError(t, err)

	g.AddAirport(graph.AirportNode{Code: "ATL", Name: "Hartsfield-Jackson"})
	g.AddAirport(graph.AirportNode{Code: "LGA", Name: "LaGuardia"})

	dep := 5
	g.BuildTimelines([]ingest.Flight{{
		Carrier:     "WN",
		Number:      "1001",
		Date:        "2026-01-01",
		Origin:      "ATL",
		Destination: "LGA",
		SchedDep:    time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
		ActualDep:   time.Date(2026, 1, 1, 8, 5, 0, 0, time.UTC),
		SchedArr:    time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		DepDelayMin: &dep,
	}})

	require.NoError(t, g.AddConnection(ingest.Connection{
		SourceFlight:   "WN1001_2026-01-01_ATL_LGA",
		TargetFlight:   "WN1002_2026-01-01_LGA_BOS",
		EdgeCode:       "AC",
		EdgeLabel:      "8231",
		SourceSchedArr: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		TargetSchedDep: time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC),
	}))
	return g
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(StoreConfig{Neo4j: &fakeClient{}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "logger is required")

	_, err = NewStore(StoreConfig{Logger: logger.NewTest()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "neo4j client is required")
}

func TestSync(t *testing.T) {
	client := &fakeClient{}
	store, err := NewStore(StoreConfig{Logger: logger.NewTest(), Neo4j: client})
	require.NoError(t, err)

	g := buildTestGraph(t)
	require.NoError(t, store.Sync(context.Background(), g))

	// Clear, airports, flights, flight legs, connections.
	require.Len(t, client.queries, 5)
	require.Contains(t, client.queries[0].cypher, "DETACH DELETE")
	require.Contains(t, client.queries[1].cypher, "CREATE (a:Airport")
	require.Contains(t, client.queries[2].cypher, "MERGE (f:Flight")
	require.Contains(t, client.queries[3].cypher, "[:FLIGHT")
	require.Contains(t, client.queries[4].cypher, "CONNECTS")

	airports := client.queries[1].params["items"].([]map[string]any)
	require.Len(t, airports, 2)
	require.Equal(t, "ATL", airports[0]["code"])

	legs := client.queries[3].params["items"].([]map[string]any)
	require.Len(t, legs, 1)
	require.Equal(t, "WN1001_2026-01-01_ATL_LGA", legs[0]["flight_id"])
	require.Equal(t, "ATL", legs[0]["source"])
	require.Equal(t, 5, legs[0]["dep_delay"])
	require.Nil(t, legs[0]["arr_delay"])

	edges := client.queries[4].params["items"].([]map[string]any)
	require.Len(t, edges, 1)
	require.Equal(t, "AIRCRAFT_TURN_8231", edges[0]["key"])
}

func TestSync_Batching(t *testing.T) {
	client := &fakeClient{}
	store, err := NewStore(StoreConfig{Logger: logger.NewTest(), Neo4j: client, BatchSize: 1})
	require.NoError(t, err)

	g := buildTestGraph(t)
	require.NoError(t, store.Sync(context.Background(), g))

	// With batch size 1: 1 clear + 2 airport batches + 2 flight batches
	// (source and target of the single edge) + 1 connection batch.
	var airportBatches int
	for _, q := range client.queries {
		if strings.Contains(q.cypher, "CREATE (a:Airport") {
			airportBatches++
			require.Len(t, q.params["items"], 1)
		}
	}
	require.Equal(t, 2, airportBatches)
}
