// Package neo4j wraps the Neo4j driver behind small interfaces so the
// export layer can be tested against an in-process fake.
package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const DefaultDatabase = "neo4j"

// Client represents a Neo4j database connection.
type Client interface {
	Session(ctx context.Context) (Session, error)
	Close(ctx context.Context) error
}

// Session represents a Neo4j session for executing queries.
type Session interface {
	Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteWrite(ctx context.Context, work TransactionWork) (any, error)
	Close(ctx context.Context) error
}

// TransactionWork is a function that runs within a write transaction.
type TransactionWork func(tx Transaction) (any, error)

// Transaction represents a Neo4j transaction.
type Transaction interface {
	Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
}

// Result represents the result of a Neo4j query.
type Result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
	Consume(ctx context.Context) (neo4j.ResultSummary, error)
}

// Config holds connection settings for a Neo4j client.
type Config struct {
	URI      string
	Database string
	Username string
	Password string
}

type client struct {
	driver   neo4j.DriverWithContext
	database string
	log      *slog.Logger
}

type session struct {
	sess neo4j.SessionWithContext
}

type transaction struct {
	tx neo4j.ManagedTransaction
}

type result struct {
	res neo4j.ResultWithContext
}

// NewClient connects to Neo4j and verifies connectivity.
func NewClient(ctx context.Context, log *slog.Logger, cfg Config) (Client, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	log.Info("neo4j: client initialized", "uri", cfg.URI, "database", cfg.Database)

	return &client{driver: driver, database: cfg.Database, log: log}, nil
}

func (c *client) Session(ctx context.Context) (Session, error) {
	sess := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	return &session{sess: sess}, nil
}

func (c *client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (s *session) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	res, err := s.sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return &result{res: res}, nil
}

func (s *session) ExecuteWrite(ctx context.Context, work TransactionWork) (any, error) {
	return s.sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(&transaction{tx: tx})
	})
}

func (s *session) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}

func (t *transaction) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return &result{res: res}, nil
}

func (r *result) Next(ctx context.Context) bool {
	return r.res.Next(ctx)
}

func (r *result) Record() *neo4j.Record {
	return r.res.Record()
}

func (r *result) Err() error {
	return r.res.Err()
}

func (r *result) Consume(ctx context.Context) (neo4j.ResultSummary, error) {
	return r.res.Consume(ctx)
}
