// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SizeClass names a printable badge format. Every class maps to a fixed
// canvas in both pixels and millimetres; element coordinates are always
// expressed in canvas pixels.
type SizeClass string

const (
	SizeA6   SizeClass = "a6"
	SizeA7   SizeClass = "a7"
	SizeR4x6 SizeClass = "r4x6"
	SizeR3x4 SizeClass = "r3x4"
)

// Canvas holds the design-space dimensions of a size class. Pixel sizes
// are derived at 4 px per millimetre, so a scale factor of 1 previews at
// roughly 102 dpi and the print pipeline multiplies from there.
type Canvas struct {
	W        int
	H        int
	WidthMM  float64
	HeightMM float64
}

var canvases = map[SizeClass]Canvas{
	SizeA6:   {W: 420, H: 592, WidthMM: 105, HeightMM: 148},
	SizeA7:   {W: 296, H: 420, WidthMM: 74, HeightMM: 105},
	SizeR4x6: {W: 408, H: 608, WidthMM: 102, HeightMM: 152},
	SizeR3x4: {W: 304, H: 408, WidthMM: 76, HeightMM: 102},
}

func (s SizeClass) Valid() bool {
	_, ok := canvases[s]
	return ok
}

// Canvas returns the dimensions for the class. Unknown classes are
// rejected at the API boundary; anything that slips past falls back to a6.
func (s SizeClass) Canvas() Canvas {
	if c, ok := canvases[s]; ok {
		return c
	}
	return canvases[SizeA6]
}

// SizeClasses lists the supported classes in display order.
func SizeClasses() []SizeClass {
	return []SizeClass{SizeA6, SizeA7, SizeR4x6, SizeR3x4}
}

// Template is a badge design: a fixed-size canvas, a background, and an
// ordered set of elements. The element array is persisted as JSONB.
type Template struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	Size              SizeClass   `json:"size"`
	Background        string      `json:"background"`
	BackgroundAssetID string      `json:"background_asset_id,omitempty"`
	Elements          Elements    `json:"elements"`
	TicketTypeIDs     []uuid.UUID `json:"ticket_type_ids"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewTemplate builds an empty white-background template of the given size.
func NewTemplate(name string, size SizeClass) *Template {
	return &Template{
		ID:         uuid.New(),
		Name:       name,
		Size:       size,
		Background: "#FFFFFF",
		Elements:   Elements{},
	}
}

// Clone deep-copies the template, elements included, so a designer
// session can mutate its working copy without touching the stored one.
func (t *Template) Clone() *Template {
	c := *t
	c.Elements = make(Elements, len(t.Elements))
	for i, el := range t.Elements {
		c.Elements[i] = el.Clone()
	}
	if t.TicketTypeIDs != nil {
		c.TicketTypeIDs = append([]uuid.UUID(nil), t.TicketTypeIDs...)
	}
	return &c
}

// MaxZ returns the highest z-index in the document, 0 when empty.
func (t *Template) MaxZ() int {
	max := 0
	for _, el := range t.Elements {
		if z := el.Common().Z; z > max {
			max = z
		}
	}
	return max
}

// ElementByID returns the element with the given id, nil if absent.
func (t *Template) ElementByID(id string) Element {
	for _, el := range t.Elements {
		if el.Common().ID == id {
			return el
		}
	}
	return nil
}

// IndexOf returns the array position of an element id, -1 if absent.
func (t *Template) IndexOf(id string) int {
	for i, el := range t.Elements {
		if el.Common().ID == id {
			return i
		}
	}
	return -1
}

// Add appends el on top of the document: its z-index becomes the current
// maximum plus one regardless of what the caller left in it.
func (t *Template) Add(el Element) {
	el.Common().Z = t.MaxZ() + 1
	t.Elements = append(t.Elements, el)
}

// Remove deletes the element with the given id. It reports whether an
// element was removed.
func (t *Template) Remove(id string) bool {
	i := t.IndexOf(id)
	if i < 0 {
		return false
	}
	t.Elements = append(t.Elements[:i], t.Elements[i+1:]...)
	return true
}

// Duplicate clones the element with the given id, gives the copy a fresh
// id, offsets it by DuplicateOffset on both axes and appends it on top.
func (t *Template) Duplicate(id string) (Element, bool) {
	src := t.ElementByID(id)
	if src == nil {
		return nil, false
	}
	cp := src.Clone()
	b := cp.Common()
	b.ID = uuid.NewString()
	b.X += DuplicateOffset
	b.Y += DuplicateOffset
	t.Add(cp)
	return cp, true
}

// PaintOrder returns the elements sorted by ascending z-index. Elements
// with equal z keep their array order, so the sort must be stable.
func (t *Template) PaintOrder() []Element {
	out := make([]Element, len(t.Elements))
	copy(out, t.Elements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Common().Z < out[j].Common().Z
	})
	return out
}

// Normalize clamps every element into its legal ranges. Stored templates
// may predate a tightening of those ranges, so loads run this too.
func (t *Template) Normalize() {
	for _, el := range t.Elements {
		el.Common().Normalize()
	}
}

// Validate checks the template is storable: a usable name, a known size
// class, and elements with unique non-empty ids.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if len(t.Name) > 200 {
		return fmt.Errorf("template name exceeds 200 characters")
	}
	if !t.Size.Valid() {
		return fmt.Errorf("unknown size class %q", t.Size)
	}
	seen := make(map[string]bool, len(t.Elements))
	for i, el := range t.Elements {
		id := el.Common().ID
		if id == "" {
			return fmt.Errorf("element %d has no id", i)
		}
		if seen[id] {
			return fmt.Errorf("duplicate element id %q", id)
		}
		seen[id] = true
	}
	return nil
}
