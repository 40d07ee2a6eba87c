package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"badgepress/internal/models"
)

// Seed populates the database with initial development data: a sample
// event with ticket types and registrants, plus a starter badge template.
// It does nothing when an event already exists.
func Seed(db *sql.DB) error {
	// Check if any events exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return fmt.Errorf("seed check events: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	eventID := uuid.New()
	starts := time.Date(2026, time.September, 14, 9, 0, 0, 0, time.UTC)
	ends := time.Date(2026, time.September, 16, 18, 0, 0, 0, time.UTC)

	_, err := db.Exec(`
		INSERT INTO events (id, name, slug, venue, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, eventID, "GopherConf 2026", "gopherconf-2026", "Palatul Parlamentului, Bucharest", starts, ends)
	if err != nil {
		return fmt.Errorf("seed insert event: %w", err)
	}

	ticketTypes := []struct {
		id   uuid.UUID
		name string
	}{
		{uuid.New(), "Attendee"},
		{uuid.New(), "Speaker"},
		{uuid.New(), "Crew"},
	}
	for _, tt := range ticketTypes {
		_, err := db.Exec(`
			INSERT INTO ticket_types (id, event_id, name)
			VALUES ($1, $2, $3)
		`, tt.id, eventID, tt.name)
		if err != nil {
			return fmt.Errorf("seed insert ticket type %q: %w", tt.name, err)
		}
	}

	registrants := []struct {
		ticketType  uuid.UUID
		number      string
		name        string
		email       string
		institution string
		designation string
		addons      []string
	}{
		{ticketTypes[0].id, "GC26-0001", "Ana Marinescu", "ana@example.com", "Cluj Systems", "Backend Engineer", []string{"Workshop: Generics", "Conference Dinner"}},
		{ticketTypes[0].id, "GC26-0002", "Bogdan Ilie", "bogdan@example.com", "Timisoara Labs", "SRE", []string{"Conference Dinner"}},
		{ticketTypes[0].id, "GC26-0003", "Corina Vlad", "corina@example.com", "Iasi Digital", "Tech Lead", nil},
		{ticketTypes[0].id, "GC26-0004", "Maria-Elena Constantinescu-Dragomirescu", "maria@example.com", "Universitatea Politehnica", "Research Assistant", []string{"Workshop: Profiling"}},
		{ticketTypes[1].id, "GC26-0005", "Dan Petrescu", "dan@example.com", "", "Keynote Speaker", nil},
		{ticketTypes[1].id, "GC26-0006", "Elena Radu", "elena@example.com", "Brasov Cloud", "Staff Engineer", []string{"Speaker Dinner"}},
		{ticketTypes[2].id, "GC26-0007", "Florin Nistor", "florin@example.com", "GopherConf", "Volunteer", nil},
		{ticketTypes[2].id, "GC26-0008", "Gabriela Sava", "gabriela@example.com", "GopherConf", "Registration Desk", nil},
	}
	for _, r := range registrants {
		addons := []byte("[]")
		if len(r.addons) > 0 {
			var err error
			addons, err = json.Marshal(r.addons)
			if err != nil {
				return fmt.Errorf("seed marshal addons: %w", err)
			}
		}
		_, err := db.Exec(`
			INSERT INTO registrants (id, event_id, ticket_type_id, registration_number, name, email, institution, designation, addons)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, uuid.New(), eventID, r.ticketType, r.number, r.name, r.email, r.institution, r.designation, addons)
		if err != nil {
			return fmt.Errorf("seed insert registrant %s: %w", r.number, err)
		}
	}

	// One starter template so the designer opens onto something usable.
	tpl := models.NewTemplate("GopherConf Attendee Badge", models.SizeA6)
	tpl.Elements = models.StarterElements(models.SizeA6)
	elements, err := json.Marshal(tpl.Elements)
	if err != nil {
		return fmt.Errorf("seed marshal template elements: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO badge_templates (id, name, size, background, elements, ticket_type_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, tpl.ID, tpl.Name, string(tpl.Size), tpl.Background, elements, []byte("[]"))
	if err != nil {
		return fmt.Errorf("seed insert template: %w", err)
	}

	slog.Info("database seeded with sample event",
		"event", "GopherConf 2026",
		"registrants", len(registrants),
	)

	return nil
}
