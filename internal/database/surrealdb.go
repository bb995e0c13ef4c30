package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// SurrealDB implements Database over the SurrealDB WebSocket protocol.
type SurrealDB struct {
	db     *surrealdb.DB
	config Config
}

// NewSurrealDB creates an unconnected SurrealDB handle. Call Connect
// before issuing queries.
func NewSurrealDB(cfg Config) *SurrealDB {
	return &SurrealDB{config: cfg}
}

// Connect dials the server, signs in as the configured root user and
// selects the namespace and database.
func (s *SurrealDB) Connect(ctx context.Context) error {
	endpoint := fmt.Sprintf("ws://%s:%s", s.config.Host, s.config.Port)

	db, err := surrealdb.FromEndpointURLString(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if _, err := db.SignIn(ctx, &surrealdb.Auth{
		Username: s.config.User,
		Password: s.config.Password,
	}); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}

	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	s.db = db
	return nil
}

func (s *SurrealDB) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close(context.Background())
}

// Ping verifies the connection by asking the server for its version.
func (s *SurrealDB) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if _, err := s.db.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Query runs one or more statements and returns one entry per
// statement, each shaped as {"status": ..., "result": ...}. A failed
// statement aborts the whole call.
func (s *SurrealDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	results, err := surrealdb.Query[interface{}](ctx, s.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if results == nil {
		return nil, nil
	}

	statements := make([]interface{}, 0, len(*results))
	for _, r := range *results {
		if r.Status != "OK" {
			if r.Error != nil {
				return nil, fmt.Errorf("%w: %s", ErrQuery, r.Error.Message)
			}
			return nil, ErrQuery
		}
		statements = append(statements, map[string]interface{}{
			"status": r.Status,
			"result": r.Result,
		})
	}
	return statements, nil
}

// QueryOne runs a query and returns the first record of the first
// statement, or ErrNotFound when nothing matched.
func (s *SurrealDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	statements, err := s.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	if len(statements) == 0 {
		return nil, ErrNotFound
	}

	wrapper, ok := statements[0].(map[string]interface{})
	if !ok {
		return statements[0], nil
	}
	if status, ok := wrapper["status"].(string); !ok || status != "OK" {
		return statements[0], nil
	}

	switch rows := wrapper["result"].(type) {
	case []interface{}:
		if len(rows) == 0 {
			return nil, ErrNotFound
		}
		return rows[0], nil
	default:
		// Scalars, like count() results, come back unwrapped.
		return wrapper["result"], nil
	}
}

// Execute runs a query and discards its results.
func (s *SurrealDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := s.Query(ctx, query, vars)
	return err
}

// BeginTx returns a transaction that queues statements locally and
// submits them as a single BEGIN/COMMIT block. SurrealDB's protocol
// has no interactive transactions, so queued statements return no
// intermediate results.
func (s *SurrealDB) BeginTx(ctx context.Context) (Transaction, error) {
	if s.db == nil {
		return nil, ErrConnection
	}
	return &surrealTx{db: s.db, ctx: ctx}, nil
}

type surrealTx struct {
	db        *surrealdb.DB
	ctx       context.Context
	queued    []queuedStatement
	committed bool
}

type queuedStatement struct {
	query string
	vars  map[string]interface{}
}

func (t *surrealTx) enqueue(query string, vars map[string]interface{}) {
	t.queued = append(t.queued, queuedStatement{query: query, vars: vars})
}

func (t *surrealTx) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	t.enqueue(query, vars)
	return nil, nil
}

func (t *surrealTx) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	t.enqueue(query, vars)
	return nil, nil
}

func (t *surrealTx) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	t.enqueue(query, vars)
	return nil
}

func (t *surrealTx) Commit() error {
	if t.committed {
		return nil
	}

	var block strings.Builder
	block.WriteString("BEGIN TRANSACTION;\n")
	vars := make(map[string]interface{})
	for _, stmt := range t.queued {
		block.WriteString(stmt.query)
		block.WriteString(";\n")
		for k, v := range stmt.vars {
			vars[k] = v
		}
	}
	block.WriteString("COMMIT TRANSACTION;")

	if _, err := surrealdb.Query[interface{}](t.ctx, t.db, block.String(), vars); err != nil {
		return fmt.Errorf("%w: commit failed: %v", ErrQuery, err)
	}

	t.committed = true
	return nil
}

func (t *surrealTx) Rollback() error {
	t.queued = nil
	return nil
}
