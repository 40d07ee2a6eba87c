// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package batch turns one template and a set of registrants into print
// output: an A4 PDF with badges tiled per sheet, or a zip of per-badge
// PNGs. Badges render through the same pipeline as the designer preview,
// at print scale, in parallel.
package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/sync/errgroup"

	"badgepress/internal/metrics"
	"badgepress/internal/models"
	"badgepress/internal/render"
	"badgepress/internal/slug"
	"badgepress/internal/tokens"
)

// Format selects the output container.
type Format string

const (
	FormatPDF    Format = "pdf"
	FormatPNGZip Format = "png"
)

// DefaultPerPage is the badges-per-sheet used when a request leaves it
// unset.
const DefaultPerPage = 4

// maxParallelRenders bounds the errgroup; each render holds a full-page
// RGBA at print scale, so unbounded parallelism would trade speed for
// memory spikes.
const maxParallelRenders = 4

var (
	// ErrNoEligibleRegistrants means the filters left nothing to print.
	// Recoverable: the caller picked an empty selection, not a broken one.
	ErrNoEligibleRegistrants = errors.New("no eligible registrants for this template")

	ErrTemplateNotFound = errors.New("template not found")
	ErrEventNotFound    = errors.New("event not found")
)

// DataSource supplies the records a batch run reads. Lookups follow the
// store convention of (nil, nil) for not found.
type DataSource interface {
	TemplateByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
	EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	TicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]models.TicketType, error)
	// RegistrantsByEvent returns the event's registrants, narrowed to ids
	// when non-empty.
	RegistrantsByEvent(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.Registrant, error)
}

// ResultCache stores finished output bytes keyed by content fingerprint.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}

// PrintLogger records the audit row for a completed run.
type PrintLogger interface {
	Record(ctx context.Context, entry *models.PrintLog) error
}

// Request describes one batch run. Zero PerPage and Format take
// defaults; empty RegistrantIDs means every registrant of the event.
type Request struct {
	TemplateID    uuid.UUID
	EventID       uuid.UUID
	RegistrantIDs []uuid.UUID
	PerPage       int
	Format        Format
	RequestedBy   string
}

// Result is the finished artifact.
type Result struct {
	Data        []byte
	ContentType string
	Filename    string
	BadgeCount  int
	Pages       int
	FromCache   bool
}

// Generator runs batch generation. Cache, logs, and metrics are
// optional; a Generator with only data and assets is fully functional.
type Generator struct {
	data   DataSource
	assets render.AssetSource
	cache  ResultCache
	logs   PrintLogger
	m      *metrics.Metrics
}

func New(data DataSource, assets render.AssetSource, cache ResultCache, logs PrintLogger, m *metrics.Metrics) *Generator {
	return &Generator{data: data, assets: assets, cache: cache, logs: logs, m: m}
}

// Generate renders badges for every eligible registrant and assembles
// them into the requested container.
//
// Eligibility: the registrant belongs to the event, and when the
// template restricts ticket types, the registrant's type is among them.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.Format == "" {
		req.Format = FormatPDF
	}
	if req.Format != FormatPDF && req.Format != FormatPNGZip {
		return nil, fmt.Errorf("unknown output format %q", req.Format)
	}
	if req.PerPage == 0 {
		req.PerPage = DefaultPerPage
	}
	if !PerPageValid(req.PerPage) {
		return nil, fmt.Errorf("badges per page must be 1, 2, 4, 6 or 8, got %d", req.PerPage)
	}

	tpl, err := g.data.TemplateByID(ctx, req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	if tpl == nil {
		return nil, ErrTemplateNotFound
	}
	event, err := g.data.EventByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	regs, err := g.data.RegistrantsByEvent(ctx, req.EventID, req.RegistrantIDs)
	if err != nil {
		return nil, fmt.Errorf("load registrants: %w", err)
	}
	eligible := filterEligible(tpl, event.ID, regs)
	if len(eligible) == 0 {
		return nil, ErrNoEligibleRegistrants
	}

	key := cacheKey(tpl, event.ID, eligible, req.PerPage, req.Format)
	if g.cache != nil {
		if data, ok := g.cache.Get(ctx, key); ok {
			g.m.CacheEvent("hit")
			slog.Info("batch served from cache",
				"template_id", tpl.ID, "event_id", event.ID, "badges", len(eligible))
			return finishResult(req, event, len(eligible), data, true), nil
		}
		g.m.CacheEvent("miss")
	}

	typeNames, err := g.ticketTypeNames(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("load ticket types: %w", err)
	}

	pngs, err := g.renderAll(ctx, tpl, event, eligible, typeNames)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch req.Format {
	case FormatPNGZip:
		data, err = buildZip(eligible, pngs)
	default:
		data, err = buildPDF(tpl, eligible, pngs, req.PerPage)
	}
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		g.cache.Set(ctx, key, data)
	}

	res := finishResult(req, event, len(eligible), data, false)
	dur := time.Since(start)
	g.m.ObserveBatch(string(req.Format), res.BadgeCount, dur)
	slog.Info("batch generated",
		"template_id", tpl.ID, "event_id", event.ID,
		"badges", res.BadgeCount, "pages", res.Pages,
		"format", req.Format, "duration", dur)

	if g.logs != nil {
		entry := &models.PrintLog{
			TemplateID:      tpl.ID,
			EventID:         event.ID,
			RequestedBy:     req.RequestedBy,
			RegistrantCount: res.BadgeCount,
			Pages:           res.Pages,
			Format:          string(req.Format),
			Duration:        dur,
		}
		// The artifact is already built; a failed audit row must not
		// cost the caller their download.
		if err := g.logs.Record(ctx, entry); err != nil {
			slog.Warn("print log write failed", "template_id", tpl.ID, "error", err)
		}
	}

	return res, nil
}

func (g *Generator) ticketTypeNames(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]string, error) {
	types, err := g.data.TicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	return names, nil
}

// renderAll renders one badge per registrant at print scale, bounded
// parallel, preserving input order.
func (g *Generator) renderAll(ctx context.Context, tpl *models.Template, event *models.Event, regs []models.Registrant, typeNames map[uuid.UUID]string) ([][]byte, error) {
	pngs := make([][]byte, len(regs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelRenders)

	for i := range regs {
		eg.Go(func() error {
			reg := &regs[i]
			renderStart := time.Now()
			data, err := render.PNG(ctx, tpl, render.Options{
				Scale: render.PrintScale,
				Data: tokens.Context{
					Registrant: reg,
					Event:      event,
					TicketType: typeNames[reg.TicketTypeID],
				},
				Assets: g.assets,
			})
			if err != nil {
				return fmt.Errorf("render badge %s: %w", reg.RegistrationNumber, err)
			}
			g.m.ObserveRender("batch", time.Since(renderStart))
			pngs[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return pngs, nil
}

func filterEligible(tpl *models.Template, eventID uuid.UUID, regs []models.Registrant) []models.Registrant {
	allowed := make(map[uuid.UUID]bool, len(tpl.TicketTypeIDs))
	for _, id := range tpl.TicketTypeIDs {
		allowed[id] = true
	}
	out := make([]models.Registrant, 0, len(regs))
	for _, r := range regs {
		if r.EventID != eventID {
			continue
		}
		if len(allowed) > 0 && !allowed[r.TicketTypeID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// cacheKey fingerprints everything that shapes the output bytes. The
// template content is hashed whole, so edits invalidate implicitly.
func cacheKey(tpl *models.Template, eventID uuid.UUID, regs []models.Registrant, perPage int, format Format) string {
	h := sha256.New()
	if doc, err := json.Marshal(tpl); err == nil {
		h.Write(doc)
	}
	fmt.Fprintf(h, "|%s|%d|%s", eventID, perPage, format)
	for _, r := range regs {
		fmt.Fprintf(h, "|%s", r.ID)
	}
	return "batch:" + hex.EncodeToString(h.Sum(nil))
}

// buildPDF tiles the rendered badges onto A4 sheets.
func buildPDF(tpl *models.Template, regs []models.Registrant, pngs [][]byte, perPage int) ([]byte, error) {
	cells := sheetLayout(perPage, tpl.Size.Canvas())

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}

	for i, data := range pngs {
		slot := i % perPage
		if slot == 0 {
			pdf.AddPage()
		}
		name := fmt.Sprintf("badge-%s", regs[i].ID)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		c := cells[slot]
		pdf.ImageOptions(name, c.X, c.Y, c.W, c.H, false, opts, 0, "")
	}
	if pdf.Err() {
		return nil, fmt.Errorf("assemble pdf: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// buildZip packs one PNG per registrant, named by slugged registration
// number with the registrant id as fallback and a numeric suffix on
// collisions.
func buildZip(regs []models.Registrant, pngs [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]int, len(regs))

	for i, reg := range regs {
		name := slug.Generate(reg.RegistrationNumber)
		if name == "" {
			name = reg.ID.String()
		}
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		w, err := zw.Create(name + ".png")
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", name, err)
		}
		if _, err := w.Write(pngs[i]); err != nil {
			return nil, fmt.Errorf("zip write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

func finishResult(req Request, event *models.Event, badges int, data []byte, fromCache bool) *Result {
	res := &Result{
		Data:       data,
		BadgeCount: badges,
		FromCache:  fromCache,
	}
	base := slug.Generate(event.Name)
	if base == "" {
		base = "badges"
	}
	switch req.Format {
	case FormatPNGZip:
		res.ContentType = "application/zip"
		res.Filename = base + "-badges.zip"
	default:
		res.ContentType = "application/pdf"
		res.Filename = base + "-badges.pdf"
		res.Pages = pageCount(badges, req.PerPage)
	}
	return res
}
