// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"badgepress/internal/database"
	"badgepress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "badgepress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "badgepress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEvent inserts a throwaway event and returns it. The row is removed
// in t.Cleanup, which cascades to its ticket types and registrants.
func testEvent(t *testing.T, db *sql.DB) *models.Event {
	t.Helper()

	s := NewEventStore(db)
	ev, err := s.Create(context.Background(), &models.Event{
		Name:     "Store Test Event " + uuid.NewString()[:8],
		Slug:     "store-test-" + uuid.NewString()[:8],
		Venue:    "Test Hall",
		StartsAt: time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 9, 16, 18, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create test event: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM events WHERE id = $1", ev.ID) })
	return ev
}

// testTicketType inserts a ticket type for the given event.
func testTicketType(t *testing.T, db *sql.DB, eventID uuid.UUID, name string) *models.TicketType {
	t.Helper()

	s := NewEventStore(db)
	tt, err := s.CreateTicketType(context.Background(), &models.TicketType{
		EventID: eventID,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("create test ticket type: %v", err)
	}
	return tt
}

// cleanTemplates removes test templates by name. Call in t.Cleanup().
func cleanTemplates(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM badge_templates WHERE name = $1", name)
	}
}

// cleanAssets removes test asset rows by s3 key. Call in t.Cleanup().
func cleanAssets(t *testing.T, db *sql.DB, s3keys ...string) {
	t.Helper()
	for _, key := range s3keys {
		db.Exec("DELETE FROM assets WHERE s3_key = $1", key)
	}
}

// cleanPrintLogs removes audit rows for a template. Call in t.Cleanup().
func cleanPrintLogs(t *testing.T, db *sql.DB, templateID uuid.UUID) {
	t.Helper()
	db.Exec("DELETE FROM print_logs WHERE template_id = $1", templateID)
}
