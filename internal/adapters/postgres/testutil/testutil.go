// Package testutil opens a migrated scratch database for postgres adapter
// tests. Tests are skipped unless TEST_DATABASE_URL is set, so the default
// `go test ./...` run stays hermetic.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/snu-hive/hostel-desk-api/internal/adapters/postgres"
)

// EnvDatabaseURL names the environment variable carrying the test DSN.
const EnvDatabaseURL = "TEST_DATABASE_URL"

// OpenMigratedPool connects to the database named by TEST_DATABASE_URL,
// applies the schema, and truncates every table so each test starts from an
// empty state. The pool is closed via t.Cleanup.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set; skipping postgres tests", EnvDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{
		MaxConns:        8,
		ConnectTimeout:  5 * time.Second,
		HealthCheckWait: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("open test pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, postgres.Schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		TRUNCATE lost_found_reports, food_requests, complaints,
		         support_admins, students, wardens, hostels
	`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}
