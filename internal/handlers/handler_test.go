// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL is unavailable. The render cache,
// object storage, and metrics are left unset: all three are optional
// dependencies and the handlers must work without them.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"badgepress/internal/batch"
	"badgepress/internal/database"
	"badgepress/internal/designer"
	"badgepress/internal/models"
	"badgepress/internal/slug"
	"badgepress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "badgepress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "badgepress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB          *sql.DB
	Templates   *store.TemplateStore
	Events      *store.EventStore
	Registrants *store.RegistrantStore
	Assets      *store.AssetStore
	PrintLogs   *store.PrintLogStore
	Sessions    *designer.Manager
	Generator   *batch.Generator
	API         *API
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)

	templates := store.NewTemplateStore(db)
	events := store.NewEventStore(db)
	registrants := store.NewRegistrantStore(db)
	assets := store.NewAssetStore(db)
	printLogs := store.NewPrintLogStore(db)

	manager := designer.NewManager(designer.DefaultSessionTTL)
	t.Cleanup(manager.Stop)

	generator := batch.New(store.NewData(db), nil, nil, printLogs, nil)

	api := NewAPI(templates, events, registrants, assets, printLogs,
		manager, generator, nil, nil, nil, nil)

	return &testEnv{
		DB:          db,
		Templates:   templates,
		Events:      events,
		Registrants: registrants,
		Assets:      assets,
		PrintLogs:   printLogs,
		Sessions:    manager,
		Generator:   generator,
		API:         api,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// seedEvent creates an event with two ticket types and three registrants
// (two Attendee, one Speaker). Ticket types and registrants cascade with
// the event row; print logs have no FK and are cleaned up separately.
func seedEvent(t *testing.T, env *testEnv, name string) (*models.Event, []*models.TicketType, []*models.Registrant) {
	t.Helper()
	ctx := context.Background()

	// A crashed earlier run can leave a row behind; the slug is unique.
	env.DB.Exec("DELETE FROM events WHERE slug = $1", slug.Generate(name))

	starts := time.Now().AddDate(0, 1, 0)
	event, err := env.Events.Create(ctx, &models.Event{
		Name:     name,
		Slug:     slug.Generate(name),
		Venue:    "Convention Center",
		StartsAt: starts,
		EndsAt:   starts.AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM print_logs WHERE event_id = $1", event.ID)
		env.DB.Exec("DELETE FROM events WHERE id = $1", event.ID)
	})

	var types []*models.TicketType
	for _, n := range []string{"Attendee", "Speaker"} {
		tt, err := env.Events.CreateTicketType(ctx, &models.TicketType{EventID: event.ID, Name: n})
		if err != nil {
			t.Fatalf("create ticket type: %v", err)
		}
		types = append(types, tt)
	}

	specs := []struct {
		number string
		name   string
		tt     *models.TicketType
	}{
		{"REG-001", "Ada Lovelace", types[0]},
		{"REG-002", "Grace Hopper", types[0]},
		{"REG-003", "Alan Turing", types[1]},
	}
	var regs []*models.Registrant
	for _, s := range specs {
		reg, err := env.Registrants.Create(ctx, &models.Registrant{
			EventID:            event.ID,
			TicketTypeID:       s.tt.ID,
			RegistrationNumber: s.number,
			Name:               s.name,
			Institution:        "Example Corp",
		})
		if err != nil {
			t.Fatalf("create registrant: %v", err)
		}
		regs = append(regs, reg)
	}

	return event, types, regs
}

// seedTemplate creates a badge template with the starter layout.
func seedTemplate(t *testing.T, env *testEnv, name string, size models.SizeClass) *models.Template {
	t.Helper()
	ctx := context.Background()

	tpl := models.NewTemplate(name, size)
	tpl.Elements = models.StarterElements(size)
	tpl.Normalize()
	created, err := env.Templates.Create(ctx, tpl)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	t.Cleanup(func() { env.Templates.Delete(ctx, created.ID) })
	return created
}

// cleanTemplates removes test templates by name.
func cleanTemplates(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec("DELETE FROM badge_templates WHERE name = $1", n)
	}
}
