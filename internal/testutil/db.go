// Package testutil holds helpers for tests that need a real PostgreSQL.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"hardware-management-api/internal/store"
	"hardware-management-api/internal/store/postgres"
)

const defaultDSN = "postgres://hw:hw@localhost:5432/hw_test?sslmode=disable"

// DSN returns TEST_DATABASE_URL or the local default
func DSN() string {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	return defaultDSN
}

// RequireIntegration skips the test unless INTEGRATION=1
func RequireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION") != "1" {
		t.Skip("Skipping integration test. Set INTEGRATION=1 to run.")
	}
}

// NewTestStore connects to the test database, resets it and loads the
// seed catalogue. The store is closed when the test ends.
func NewTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	RequireIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := postgres.Open(ctx, DSN())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	ResetSchema(t, st.DB())
	if _, err := store.Seed(ctx, st, time.Now()); err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return st
}

// ResetSchema drops every table and reapplies the embedded migrations
func ResetSchema(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "DROP SCHEMA public CASCADE"); err != nil {
		t.Fatalf("Failed to drop schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, "CREATE SCHEMA public"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := postgres.Migrate(db, nil); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
}
