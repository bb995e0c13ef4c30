package testdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stitch/cms/internal/database"
)

// TestDB is an isolated database environment. Every instance owns a
// unique namespace so parallel tests never see each other's data.
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string
	t         *testing.T
}

var (
	schemaOnce sync.Once
	schema     []string
	schemaErr  error

	namespaceSeq atomic.Int64
)

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func testConfig() database.Config {
	return database.Config{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "8000"),
		User:     envOr("TEST_DB_USER", "root"),
		Password: envOr("TEST_DB_PASSWORD", "root"),
	}
}

func nextNamespace() string {
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), namespaceSeq.Add(1))
}

// findMigrationsDir walks up from the working directory so testdb works
// from any package depth, with STITCH_ROOT as the escape hatch.
func findMigrationsDir() string {
	dir := "migrations"
	for depth := 0; depth < 5; depth++ {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		dir = filepath.Join("..", dir)
	}
	if root := os.Getenv("STITCH_ROOT"); root != "" {
		return filepath.Join(root, "migrations")
	}
	return ""
}

// loadSchema reads the ordered .surql migrations once per process.
// seed.surql carries demo content and is skipped.
func loadSchema() ([]string, error) {
	schemaOnce.Do(func() {
		dir := findMigrationsDir()
		if dir == "" {
			schemaErr = fmt.Errorf("could not find migrations directory")
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			schemaErr = fmt.Errorf("reading migrations dir: %w", err)
			return
		}

		var names []string
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".surql") && e.Name() != "seed.surql" {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			content, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				schemaErr = fmt.Errorf("reading %s: %w", name, err)
				return
			}
			schema = append(schema, string(content))
		}
	})
	return schema, schemaErr
}

// New connects to the test server, claims a fresh namespace and applies
// the schema. Call Close when done to drop the namespace.
func New(t *testing.T) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := testConfig()
	cfg.Namespace = nextNamespace()
	cfg.Database = "test"

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	migrations, err := loadSchema()
	if err != nil {
		db.Close()
		t.Fatalf("testdb: failed to load migrations: %v", err)
	}
	for i, migration := range migrations {
		if err := db.Execute(ctx, migration, nil); err != nil {
			db.Close()
			t.Fatalf("testdb: migration %d failed: %v", i+1, err)
		}
	}

	return &TestDB{
		DB:        db,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
		t:         t,
	}
}

// Close drops the test namespace and closes the connection.
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, "REMOVE NAMESPACE "+tdb.Namespace, nil)
	tdb.DB.Close()
}

// Reset deletes all rows while keeping the schema, which is cheaper
// than standing up a fresh namespace.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := tdb.DB.Query(ctx, "INFO FOR DB", nil)
	if err != nil {
		t.Fatalf("testdb: failed to get db info: %v", err)
	}
	if len(results) == 0 {
		return
	}

	wrapper, _ := results[0].(map[string]interface{})
	info, _ := wrapper["result"].(map[string]interface{})
	tables, _ := info["tables"].(map[string]interface{})
	for table := range tables {
		if err := tdb.DB.Execute(ctx, "DELETE FROM "+table, nil); err != nil {
			t.Logf("testdb: warning - failed to clear table %s: %v", table, err)
		}
	}
}

// Ctx returns a context with a 10 second timeout. Tests are expected
// to finish well inside it, so the cancel func is not surfaced.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	_ = cancel
	return ctx
}

// MustExec runs a statement and fails the test on error.
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// MustQuery runs a query and fails the test on error.
func (tdb *TestDB) MustQuery(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
	return results
}

// Shared wraps one TestDB for reuse across subtests.
type Shared struct {
	*TestDB
}

// NewShared creates a database meant to be shared by several subtests.
func NewShared(t *testing.T) *Shared {
	return &Shared{TestDB: New(t)}
}

// SetupSubtest rebinds the database to the subtest and wipes its data.
// Call it at the top of each t.Run block.
func (s *Shared) SetupSubtest(t *testing.T) *TestDB {
	t.Helper()
	s.TestDB.t = t
	s.TestDB.Reset(t)
	return s.TestDB
}
