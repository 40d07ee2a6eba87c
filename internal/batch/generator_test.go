package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"badgepress/internal/models"
	"badgepress/internal/render"
	"badgepress/internal/tokens"
)

type stubData struct {
	tpl   *models.Template
	event *models.Event
	types []models.TicketType
	regs  []models.Registrant
}

func (s *stubData) TemplateByID(_ context.Context, id uuid.UUID) (*models.Template, error) {
	if s.tpl != nil && s.tpl.ID == id {
		return s.tpl, nil
	}
	return nil, nil
}

func (s *stubData) EventByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if s.event != nil && s.event.ID == id {
		return s.event, nil
	}
	return nil, nil
}

func (s *stubData) TicketTypesByEvent(_ context.Context, _ uuid.UUID) ([]models.TicketType, error) {
	return s.types, nil
}

func (s *stubData) RegistrantsByEvent(_ context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.Registrant, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Registrant
	for _, r := range s.regs {
		if r.EventID != eventID {
			continue
		}
		if len(want) > 0 && !want[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type memCache struct {
	store map[string][]byte
}

func newMemCache() *memCache { return &memCache{store: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	d, ok := c.store[key]
	return d, ok
}

func (c *memCache) Set(_ context.Context, key string, data []byte) {
	c.store[key] = data
}

type logStub struct {
	entries []*models.PrintLog
	err     error
}

func (l *logStub) Record(_ context.Context, e *models.PrintLog) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, e)
	return nil
}

// fixture builds a small event with one template, one ticket type, and
// three registrants. The template carries a name text and a shape so a
// render produces real ink.
func fixture(t *testing.T) *stubData {
	t.Helper()

	tpl := models.NewTemplate("Attendee Badge", models.SizeA7)
	txt, _ := models.NewElement(models.KindText, models.Frame{X: 20, Y: 20, W: 250, H: 40})
	txt.(*models.Text).Content = "{{name}}"
	tpl.Add(txt)
	shape, _ := models.NewElement(models.KindShape, models.Frame{X: 0, Y: 0, W: 296, H: 12})
	shape.(*models.Shape).Fill = "#1D4ED8"
	tpl.Add(shape)

	event := &models.Event{
		ID:       uuid.New(),
		Name:     "GopherConf 2026",
		StartsAt: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 9, 3, 18, 0, 0, 0, time.UTC),
	}
	tt := models.TicketType{ID: uuid.New(), EventID: event.ID, Name: "Attendee"}

	regs := make([]models.Registrant, 3)
	for i, num := range []string{"REG-001", "REG-002", "REG-003"} {
		regs[i] = models.Registrant{
			ID:                 uuid.New(),
			EventID:            event.ID,
			TicketTypeID:       tt.ID,
			RegistrationNumber: num,
			Name:               "Attendee " + num,
		}
	}

	return &stubData{tpl: tpl, event: event, types: []models.TicketType{tt}, regs: regs}
}

func request(d *stubData, format Format) Request {
	return Request{
		TemplateID: d.tpl.ID,
		EventID:    d.event.ID,
		PerPage:    2,
		Format:     format,
	}
}

func TestPerPageValid(t *testing.T) {
	for _, n := range []int{1, 2, 4, 6, 8} {
		if !PerPageValid(n) {
			t.Errorf("PerPageValid(%d) = false, want true", n)
		}
	}
	for _, n := range []int{0, 3, 5, 7, 9, 12, -1} {
		if PerPageValid(n) {
			t.Errorf("PerPageValid(%d) = true, want false", n)
		}
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		badges, perPage, want int
	}{
		{1, 1, 1},
		{3, 2, 2},
		{4, 4, 1},
		{5, 4, 2},
		{8, 8, 1},
		{9, 8, 2},
		{0, 4, 0},
	}
	for _, tt := range tests {
		if got := pageCount(tt.badges, tt.perPage); got != tt.want {
			t.Errorf("pageCount(%d, %d) = %d, want %d", tt.badges, tt.perPage, got, tt.want)
		}
	}
}

func TestSheetLayout(t *testing.T) {
	canvas := models.SizeA6.Canvas()

	for perPage, dims := range map[int][2]int{1: {1, 1}, 2: {1, 2}, 4: {2, 2}, 6: {2, 3}, 8: {2, 4}} {
		cells := sheetLayout(perPage, canvas)
		if len(cells) != perPage {
			t.Errorf("perPage %d: %d cells, want %d", perPage, len(cells), perPage)
			continue
		}

		cols, rows := dims[0], dims[1]
		slotW := (pageWidthMM - 2*marginMM - float64(cols-1)*gutterMM) / float64(cols)
		slotH := (pageHeightMM - 2*marginMM - float64(rows-1)*gutterMM) / float64(rows)

		for i, c := range cells {
			// Placement stays inside the margins.
			if c.X < marginMM-0.01 || c.Y < marginMM-0.01 ||
				c.X+c.W > pageWidthMM-marginMM+0.01 || c.Y+c.H > pageHeightMM-marginMM+0.01 {
				t.Errorf("perPage %d cell %d: %+v escapes the printable area", perPage, i, c)
			}
			// Aspect ratio of the badge is preserved.
			if ratio := c.W / c.H; ratio < canvas.WidthMM/canvas.HeightMM-0.001 ||
				ratio > canvas.WidthMM/canvas.HeightMM+0.001 {
				t.Errorf("perPage %d cell %d: aspect %v, want %v", perPage, i, ratio, canvas.WidthMM/canvas.HeightMM)
			}
			// Fits its slot.
			if c.W > slotW+0.01 || c.H > slotH+0.01 {
				t.Errorf("perPage %d cell %d: %vx%v exceeds slot %vx%v", perPage, i, c.W, c.H, slotW, slotH)
			}
		}
	}
}

func TestGeneratePDF(t *testing.T) {
	d := fixture(t)
	g := New(d, nil, nil, nil, nil)

	res, err := g.Generate(context.Background(), request(d, FormatPDF))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF")) {
		t.Error("output does not start with %PDF magic")
	}
	if res.BadgeCount != 3 {
		t.Errorf("BadgeCount = %d, want 3", res.BadgeCount)
	}
	// Three badges at two per sheet need two sheets.
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Pages)
	}
	if res.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q, want application/pdf", res.ContentType)
	}
	if res.Filename != "gopherconf-2026-badges.pdf" {
		t.Errorf("Filename = %q", res.Filename)
	}
}

func TestGenerateZip(t *testing.T) {
	d := fixture(t)
	g := New(d, nil, nil, nil, nil)

	res, err := g.Generate(context.Background(), request(d, FormatPNGZip))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if res.ContentType != "application/zip" {
		t.Errorf("ContentType = %q, want application/zip", res.ContentType)
	}

	zr, err := zip.NewReader(bytes.NewReader(res.Data), int64(len(res.Data)))
	if err != nil {
		t.Fatalf("output is not a readable zip: %v", err)
	}
	if len(zr.File) != 3 {
		t.Fatalf("zip holds %d entries, want 3", len(zr.File))
	}
	want := map[string]bool{"reg-001.png": true, "reg-002.png": true, "reg-003.png": true}
	for _, f := range zr.File {
		if !want[f.Name] {
			t.Errorf("unexpected zip entry %q", f.Name)
		}
	}
}

func TestGenerateZipNameCollision(t *testing.T) {
	d := fixture(t)
	d.regs[1].RegistrationNumber = d.regs[0].RegistrationNumber

	g := New(d, nil, nil, nil, nil)
	res, err := g.Generate(context.Background(), request(d, FormatPNGZip))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(res.Data), int64(len(res.Data)))
	if err != nil {
		t.Fatalf("zip read: %v", err)
	}
	seen := make(map[string]bool)
	for _, f := range zr.File {
		if seen[f.Name] {
			t.Fatalf("duplicate zip entry %q", f.Name)
		}
		seen[f.Name] = true
	}
	if len(seen) != 3 {
		t.Errorf("zip holds %d unique entries, want 3", len(seen))
	}
}

// TestGenerateMatchesPreviewRender verifies a batch badge is
// byte-identical to the same registrant rendered through the preview
// path at the same scale.
func TestGenerateMatchesPreviewRender(t *testing.T) {
	d := fixture(t)
	g := New(d, nil, nil, nil, nil)

	res, err := g.Generate(context.Background(), request(d, FormatPNGZip))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(res.Data), int64(len(res.Data)))
	if err != nil {
		t.Fatalf("zip read: %v", err)
	}
	var batched []byte
	for _, f := range zr.File {
		if f.Name != "reg-001.png" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open zip entry: %v", err)
		}
		batched, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read zip entry: %v", err)
		}
	}
	if batched == nil {
		t.Fatal("zip is missing reg-001.png")
	}

	direct, err := render.PNG(context.Background(), d.tpl, render.Options{
		Scale: render.PrintScale,
		Data: tokens.Context{
			Registrant: &d.regs[0],
			Event:      d.event,
			TicketType: d.types[0].Name,
		},
	})
	if err != nil {
		t.Fatalf("direct render error: %v", err)
	}
	if !bytes.Equal(batched, direct) {
		t.Error("batch badge bytes differ from a direct render at the same scale")
	}
}

func TestGenerateFiltersByTicketType(t *testing.T) {
	d := fixture(t)
	other := models.TicketType{ID: uuid.New(), EventID: d.event.ID, Name: "Speaker"}
	d.types = append(d.types, other)
	d.regs[2].TicketTypeID = other.ID
	// Restrict the template to the first ticket type only.
	d.tpl.TicketTypeIDs = []uuid.UUID{d.types[0].ID}

	g := New(d, nil, nil, nil, nil)
	res, err := g.Generate(context.Background(), request(d, FormatPNGZip))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if res.BadgeCount != 2 {
		t.Errorf("BadgeCount = %d, want 2 after ticket type filter", res.BadgeCount)
	}
}

func TestGenerateNarrowsToRequestedRegistrants(t *testing.T) {
	d := fixture(t)
	g := New(d, nil, nil, nil, nil)

	req := request(d, FormatPNGZip)
	req.RegistrantIDs = []uuid.UUID{d.regs[0].ID}
	res, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if res.BadgeCount != 1 {
		t.Errorf("BadgeCount = %d, want 1", res.BadgeCount)
	}
}

func TestGenerateNoEligibleRegistrants(t *testing.T) {
	d := fixture(t)
	// Restrict to a ticket type nobody holds.
	d.tpl.TicketTypeIDs = []uuid.UUID{uuid.New()}

	g := New(d, nil, nil, nil, nil)
	if _, err := g.Generate(context.Background(), request(d, FormatPDF)); !errors.Is(err, ErrNoEligibleRegistrants) {
		t.Errorf("Generate() = %v, want ErrNoEligibleRegistrants", err)
	}
}

func TestGenerateMissingRecords(t *testing.T) {
	d := fixture(t)
	g := New(d, nil, nil, nil, nil)

	req := request(d, FormatPDF)
	req.TemplateID = uuid.New()
	if _, err := g.Generate(context.Background(), req); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("unknown template: Generate() = %v, want ErrTemplateNotFound", err)
	}

	req = request(d, FormatPDF)
	req.EventID = uuid.New()
	if _, err := g.Generate(context.Background(), req); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event: Generate() = %v, want ErrEventNotFound", err)
	}
}

func TestGenerateRejectsBadRequest(t *testing.T) {
	d := fixture(t)
	g := New(d, nil, nil, nil, nil)

	req := request(d, FormatPDF)
	req.PerPage = 5
	if _, err := g.Generate(context.Background(), req); err == nil {
		t.Error("PerPage 5 accepted, want error")
	}

	req = request(d, "docx")
	if _, err := g.Generate(context.Background(), req); err == nil {
		t.Error("format docx accepted, want error")
	}
}

func TestGenerateDefaultsApplied(t *testing.T) {
	d := fixture(t)
	g := New(d, nil, nil, nil, nil)

	res, err := g.Generate(context.Background(), Request{TemplateID: d.tpl.ID, EventID: d.event.ID})
	if err != nil {
		t.Fatalf("Generate() with zero defaults error: %v", err)
	}
	if res.ContentType != "application/pdf" {
		t.Errorf("default format produced %q, want application/pdf", res.ContentType)
	}
	// Three badges at the default four per sheet fit one sheet.
	if res.Pages != 1 {
		t.Errorf("Pages = %d, want 1", res.Pages)
	}
}

func TestGenerateUsesCache(t *testing.T) {
	d := fixture(t)
	cache := newMemCache()
	g := New(d, nil, cache, nil, nil)

	first, err := g.Generate(context.Background(), request(d, FormatPDF))
	if err != nil {
		t.Fatalf("first Generate() error: %v", err)
	}
	if first.FromCache {
		t.Error("first run claims FromCache")
	}

	second, err := g.Generate(context.Background(), request(d, FormatPDF))
	if err != nil {
		t.Fatalf("second Generate() error: %v", err)
	}
	if !second.FromCache {
		t.Error("second run did not hit the cache")
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("cached bytes differ from the generated ones")
	}

	// Editing the template changes the fingerprint.
	d.tpl.Elements[0].(*models.Text).Content = "{{designation}}"
	third, err := g.Generate(context.Background(), request(d, FormatPDF))
	if err != nil {
		t.Fatalf("third Generate() error: %v", err)
	}
	if third.FromCache {
		t.Error("edited template still served from cache")
	}
}

func TestGenerateWritesPrintLog(t *testing.T) {
	d := fixture(t)
	logs := &logStub{}
	g := New(d, nil, nil, logs, nil)

	req := request(d, FormatPDF)
	req.RequestedBy = "front-desk"
	if _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if len(logs.entries) != 1 {
		t.Fatalf("%d print log entries, want 1", len(logs.entries))
	}
	entry := logs.entries[0]
	if entry.TemplateID != d.tpl.ID || entry.EventID != d.event.ID {
		t.Error("print log entry carries wrong ids")
	}
	if entry.RegistrantCount != 3 || entry.Pages != 2 || entry.Format != "pdf" {
		t.Errorf("print log entry = %+v", entry)
	}
	if entry.RequestedBy != "front-desk" {
		t.Errorf("RequestedBy = %q", entry.RequestedBy)
	}
}

func TestGenerateSurvivesPrintLogFailure(t *testing.T) {
	d := fixture(t)
	logs := &logStub{err: errors.New("connection refused")}
	g := New(d, nil, nil, logs, nil)

	res, err := g.Generate(context.Background(), request(d, FormatPDF))
	if err != nil {
		t.Fatalf("Generate() failed on a log error: %v", err)
	}
	if len(res.Data) == 0 {
		t.Error("no output despite successful generation")
	}
}

func TestGenerateCanceledContext(t *testing.T) {
	d := fixture(t)
	g := New(d, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Generate(ctx, request(d, FormatPDF)); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() with canceled context = %v, want context.Canceled", err)
	}
}
