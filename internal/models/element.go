// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the badge template document model: the template,
// its tagged element variants, and the supporting event/registrant/asset
// records. Elements are an explicit sum type keyed by kind — each variant
// carries only the fields that are meaningful for it, so invalid field
// combinations cannot be represented.
package models

import (
	"math"

	"github.com/google/uuid"
)

// Kind discriminates the element variants.
type Kind string

const (
	KindText    Kind = "text"
	KindShape   Kind = "shape"
	KindLine    Kind = "line"
	KindImage   Kind = "image"
	KindPhoto   Kind = "photo"
	KindQRCode  Kind = "qr_code"
	KindBarcode Kind = "barcode"
)

// Valid reports whether k is one of the seven element kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindShape, KindLine, KindImage, KindPhoto, KindQRCode, KindBarcode:
		return true
	}
	return false
}

// DuplicateOffset is the fixed x/y delta applied to duplicated and pasted
// elements so the copy does not sit exactly on top of its source.
const DuplicateOffset = 20

// Frame is an element's placed geometry in canvas units. Rotation is in
// degrees, applied about the frame's own center at paint time.
type Frame struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	Rotation float64 `json:"rotation"`
}

// Right returns the x coordinate of the frame's right edge.
func (f Frame) Right() float64 { return f.X + f.W }

// Bottom returns the y coordinate of the frame's bottom edge.
func (f Frame) Bottom() float64 { return f.Y + f.H }

// CenterX returns the x coordinate of the frame's center.
func (f Frame) CenterX() float64 { return f.X + f.W/2 }

// CenterY returns the y coordinate of the frame's center.
func (f Frame) CenterY() float64 { return f.Y + f.H/2 }

// Base carries the fields every element kind shares. It is embedded in each
// variant, which promotes Common, so any Element exposes its shared fields
// without a type switch.
type Base struct {
	ID string `json:"id"`
	Frame
	Z       int  `json:"z"`
	Opacity int  `json:"opacity"`
	Visible bool `json:"visible"`
	Locked  bool `json:"locked"`
}

// Common returns the shared fields of the element. The pointer aliases the
// element itself, so mutations through it are mutations of the element.
func (b *Base) Common() *Base { return b }

// Normalize applies the committed-state invariants: position clamped ≥ 0,
// size clamped ≥ 0, opacity clamped to [0,100], rotation wrapped to [0,360).
// Live drag state may violate these; commits may not.
func (b *Base) Normalize() {
	b.X = math.Max(0, b.X)
	b.Y = math.Max(0, b.Y)
	b.W = math.Max(0, b.W)
	b.H = math.Max(0, b.H)
	if b.Opacity < 0 {
		b.Opacity = 0
	}
	if b.Opacity > 100 {
		b.Opacity = 100
	}
	b.Rotation = math.Mod(b.Rotation, 360)
	if b.Rotation < 0 {
		b.Rotation += 360
	}
}

// RoundPosition rounds the frame origin to whole canvas units. Drag and
// resize stops round before committing so persisted geometry stays integral.
func (b *Base) RoundPosition() {
	b.X = math.Round(b.X)
	b.Y = math.Round(b.Y)
	b.W = math.Round(b.W)
	b.H = math.Round(b.H)
}

// Element is one visual object on a badge. Exactly the seven kind variants
// in this package implement it.
type Element interface {
	// Kind identifies the variant.
	Kind() Kind
	// Common gives mutable access to the shared fields.
	Common() *Base
	// Clone returns a deep, independent copy of the element.
	Clone() Element
}

// Align is the horizontal text alignment inside a text frame.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// TextCase is the post-substitution case transform for text elements.
type TextCase string

const (
	CaseNone       TextCase = "none"
	CaseUppercase  TextCase = "uppercase"
	CaseLowercase  TextCase = "lowercase"
	CaseCapitalize TextCase = "capitalize"
)

// ShapeKind is the geometric subtype of a shape element.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeRounded   ShapeKind = "rounded"
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
)

// DashStyle is the stroke pattern of a line element.
type DashStyle string

const (
	DashSolid  DashStyle = "solid"
	DashDashed DashStyle = "dashed"
	DashDotted DashStyle = "dotted"
)

// Symbology selects the barcode encoding for a barcode element.
type Symbology string

const (
	SymbologyCode128 Symbology = "code128"
	SymbologyCode39  Symbology = "code39"
	SymbologyEAN13   Symbology = "ean13"
	SymbologyCodabar Symbology = "codabar"
)

// Valid reports whether s is a supported barcode symbology.
func (s Symbology) Valid() bool {
	switch s {
	case SymbologyCode128, SymbologyCode39, SymbologyEAN13, SymbologyCodabar:
		return true
	}
	return false
}

// GradientKind selects between the two gradient geometries.
type GradientKind string

const (
	GradientLinear GradientKind = "linear"
	GradientRadial GradientKind = "radial"
)

// Border is an optional stroked outline.
type Border struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

func (b *Border) clone() *Border {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// Shadow is an optional offset copy painted behind text.
type Shadow struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Color   string  `json:"color"`
}

func (s *Shadow) clone() *Shadow {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Gradient is an optional two-stop fill. Angle applies to linear gradients
// only and is in degrees; 0 points right, 90 points down.
type Gradient struct {
	Kind  GradientKind `json:"kind"`
	From  string       `json:"from"`
	To    string       `json:"to"`
	Angle float64      `json:"angle"`
}

func (g *Gradient) clone() *Gradient {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}

// Text is a styled text block. Content may embed placeholder tokens which
// are resolved at render time; Case is applied after substitution.
type Text struct {
	Base
	Content       string   `json:"content"`
	FontFamily    string   `json:"font_family"`
	FontSize      float64  `json:"font_size"`
	Bold          bool     `json:"bold"`
	Italic        bool     `json:"italic"`
	Case          TextCase `json:"case"`
	LetterSpacing float64  `json:"letter_spacing"`
	LineHeight    float64  `json:"line_height"`
	Color         string   `json:"color"`
	Align         Align    `json:"align"`
	Background    string   `json:"background,omitempty"`
	Border        *Border  `json:"border,omitempty"`
	Shadow        *Shadow  `json:"shadow,omitempty"`
}

func (t *Text) Kind() Kind { return KindText }

func (t *Text) Clone() Element {
	c := *t
	c.Border = t.Border.clone()
	c.Shadow = t.Shadow.clone()
	return &c
}

// Shape is a filled geometric figure. A triangle fills its bounding box;
// a circle renders as the ellipse inscribed in it.
type Shape struct {
	Base
	Subtype      ShapeKind `json:"subtype"`
	Fill         string    `json:"fill"`
	CornerRadius float64   `json:"corner_radius"`
	Border       *Border   `json:"border,omitempty"`
	Gradient     *Gradient `json:"gradient,omitempty"`
}

func (s *Shape) Kind() Kind { return KindShape }

func (s *Shape) Clone() Element {
	c := *s
	c.Border = s.Border.clone()
	c.Gradient = s.Gradient.clone()
	return &c
}

// Line is a straight bar. The frame width is its length and the frame
// height its thickness.
type Line struct {
	Base
	Color string    `json:"color"`
	Dash  DashStyle `json:"dash"`
}

func (l *Line) Kind() Kind { return KindLine }

func (l *Line) Clone() Element {
	c := *l
	return &c
}

// Image shows an uploaded asset scaled to the frame. AssetID may be empty
// while an upload is still in flight.
type Image struct {
	Base
	AssetID string `json:"asset_id"`
}

func (i *Image) Kind() Kind { return KindImage }

func (i *Image) Clone() Element {
	c := *i
	return &c
}

// Photo is like Image but reserved for a registrant portrait; it renders a
// circular placeholder while unassigned.
type Photo struct {
	Base
	AssetID string `json:"asset_id"`
}

func (p *Photo) Kind() Kind { return KindPhoto }

func (p *Photo) Clone() Element {
	c := *p
	return &c
}

// QRCode encodes its substituted content as a QR symbol at medium error
// correction.
type QRCode struct {
	Base
	Content string `json:"content"`
}

func (q *QRCode) Kind() Kind { return KindQRCode }

func (q *QRCode) Clone() Element {
	c := *q
	return &c
}

// Barcode encodes its substituted content in the selected symbology and
// paints a human-readable label below the bars.
type Barcode struct {
	Base
	Content   string    `json:"content"`
	Symbology Symbology `json:"symbology"`
}

func (b *Barcode) Kind() Kind { return KindBarcode }

func (b *Barcode) Clone() Element {
	c := *b
	return &c
}

// NewElement creates a freshly-identified element of the given kind at the
// given frame, with that kind's default style. The zero Z is assigned by
// Template.Add, which stacks new elements above everything else.
func NewElement(kind Kind, frame Frame) (Element, bool) {
	base := Base{
		ID:      uuid.NewString(),
		Frame:   frame,
		Opacity: 100,
		Visible: true,
	}
	switch kind {
	case KindText:
		return &Text{
			Base:       base,
			Content:    "New text",
			FontFamily: "Go",
			FontSize:   16,
			Case:       CaseNone,
			LineHeight: 1.2,
			Color:      "#111827",
			Align:      AlignLeft,
		}, true
	case KindShape:
		return &Shape{
			Base:    base,
			Subtype: ShapeRectangle,
			Fill:    "#3B82F6",
		}, true
	case KindLine:
		return &Line{Base: base, Color: "#111827", Dash: DashSolid}, true
	case KindImage:
		return &Image{Base: base}, true
	case KindPhoto:
		return &Photo{Base: base}, true
	case KindQRCode:
		return &QRCode{Base: base, Content: "{{registration_number}}"}, true
	case KindBarcode:
		return &Barcode{Base: base, Content: "{{registration_number}}", Symbology: SymbologyCode128}, true
	}
	return nil, false
}

// DefaultFrame returns the initial frame used when the caller does not
// provide one, sized sensibly per kind.
func DefaultFrame(kind Kind) Frame {
	switch kind {
	case KindText:
		return Frame{X: 40, Y: 40, W: 200, H: 32}
	case KindShape:
		return Frame{X: 40, Y: 40, W: 120, H: 80}
	case KindLine:
		return Frame{X: 40, Y: 40, W: 160, H: 3}
	case KindQRCode:
		return Frame{X: 40, Y: 40, W: 96, H: 96}
	case KindBarcode:
		return Frame{X: 40, Y: 40, W: 180, H: 64}
	default: // image, photo
		return Frame{X: 40, Y: 40, W: 120, H: 120}
	}
}
