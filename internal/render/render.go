// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render paints badge documents to bitmaps. The same pipeline
// serves the interactive preview and the batch generator: callers differ
// only in scale factor and what they do with the pixels, never in
// per-element logic. A failing element (bad asset, unencodable code
// content) paints as a placeholder and the document carries on; renders
// fail only on cancellation.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"badgepress/internal/models"
	"badgepress/internal/tokens"
)

// AssetSource resolves asset references to decoded bitmaps. A nil
// source renders every image and photo as a placeholder.
type AssetSource interface {
	Image(ctx context.Context, assetID string) (image.Image, error)
}

// Options selects the render context.
type Options struct {
	// Scale multiplies canvas units into device pixels. The preview
	// renders at 1, print output at PrintScale. Zero means 1.
	Scale float64

	// Data is the substitution context. The zero value renders the
	// illustrative preview fallbacks.
	Data tokens.Context

	// Assets resolves image, photo, and background references.
	Assets AssetSource
}

// PrintScale is the device scale for print output: 12 px/mm, roughly
// 300 dpi on the physical badge.
const PrintScale = 3.0

// Badge renders the document to a bitmap in paint order.
func Badge(ctx context.Context, tpl *models.Template, opts Options) (*image.RGBA, error) {
	if tpl == nil {
		return nil, fmt.Errorf("render: nil template")
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	c := tpl.Size.Canvas()
	w := int(math.Round(float64(c.W) * scale))
	h := int(math.Round(float64(c.H) * scale))

	r := &renderer{
		scale: scale,
		w:     w,
		h:     h,
		main:  gg.NewContext(w, h),
		faces: newFaceCache(),
		opts:  opts,
	}

	if err := r.background(ctx, tpl); err != nil {
		return nil, err
	}

	for _, el := range tpl.PaintOrder() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render canceled: %w", err)
		}
		b := el.Common()
		if !b.Visible || b.Opacity <= 0 || b.W <= 0 || b.H <= 0 {
			continue
		}
		r.paintElement(ctx, el)
	}

	return r.main.Image().(*image.RGBA), nil
}

// PNG renders the document and encodes it. Batch output embeds these
// bytes directly, so preview and print stay pixel-identical at equal
// scale.
func PNG(ctx context.Context, tpl *models.Template, opts Options) ([]byte, error) {
	img, err := Badge(ctx, tpl, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type renderer struct {
	scale float64
	w, h  int
	main  *gg.Context
	faces *faceCache
	opts  Options
}

// px converts canvas units to device pixels.
func (r *renderer) px(v float64) float64 { return v * r.scale }

func (r *renderer) background(ctx context.Context, tpl *models.Template) error {
	r.main.SetColor(ParseHex(tpl.Background, white))
	r.main.Clear()

	if tpl.BackgroundAssetID == "" || r.opts.Assets == nil {
		return nil
	}
	img, err := r.opts.Assets.Image(ctx, tpl.BackgroundAssetID)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("render canceled: %w", ctx.Err())
		}
		slog.Warn("background asset unavailable, rendering color only",
			"asset_id", tpl.BackgroundAssetID, "error", err)
		return nil
	}
	r.drawCover(img)
	return nil
}

// drawCover scales the background to fill the page, cropping the
// overflowing axis around the center.
func (r *renderer) drawCover(src image.Image) {
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw <= 0 || sh <= 0 {
		return
	}
	scale := math.Max(float64(r.w)/sw, float64(r.h)/sh)
	cw := float64(r.w) / scale
	ch := float64(r.h) / scale
	cx := sb.Min.X + int(math.Round((sw-cw)/2))
	cy := sb.Min.Y + int(math.Round((sh-ch)/2))
	crop := image.Rect(cx, cy, cx+int(math.Round(cw)), cy+int(math.Round(ch)))

	dst := image.NewRGBA(image.Rect(0, 0, r.w, r.h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	r.main.DrawImage(dst, 0, 0)
}

// paintElement paints one element, routing through a scratch layer when
// it is partially transparent.
func (r *renderer) paintElement(ctx context.Context, el models.Element) {
	b := el.Common()
	if b.Opacity >= 100 {
		r.paintInto(ctx, r.main, el)
		return
	}

	scratch := gg.NewContext(r.w, r.h)
	r.paintInto(ctx, scratch, el)

	alpha := uint8(math.Round(float64(b.Opacity) / 100 * 255))
	dst := r.main.Image().(*image.RGBA)
	draw.DrawMask(dst, dst.Bounds(), scratch.Image(), image.Point{},
		image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)
}

func (r *renderer) paintInto(ctx context.Context, dc *gg.Context, el models.Element) {
	b := el.Common()
	dc.Push()
	defer dc.Pop()
	if b.Rotation != 0 {
		dc.RotateAbout(gg.Radians(b.Rotation), r.px(b.CenterX()), r.px(b.CenterY()))
	}

	switch e := el.(type) {
	case *models.Text:
		r.paintText(dc, e)
	case *models.Shape:
		r.paintShape(dc, e)
	case *models.Line:
		r.paintLine(dc, e)
	case *models.Image:
		r.paintImage(ctx, dc, e)
	case *models.Photo:
		r.paintPhoto(ctx, dc, e)
	case *models.QRCode:
		r.paintQR(dc, e)
	case *models.Barcode:
		r.paintBarcode(dc, e)
	}
}

func (r *renderer) paintShape(dc *gg.Context, e *models.Shape) {
	x, y, w, h := r.px(e.X), r.px(e.Y), r.px(e.W), r.px(e.H)

	trace := func() {
		switch e.Subtype {
		case models.ShapeRounded:
			radius := r.px(e.CornerRadius)
			if limit := math.Min(w, h) / 2; radius > limit {
				radius = limit
			}
			dc.DrawRoundedRectangle(x, y, w, h, radius)
		case models.ShapeCircle:
			// Inscribed ellipse of the box; a square box yields a circle.
			dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
		case models.ShapeTriangle:
			dc.MoveTo(x+w/2, y)
			dc.LineTo(x+w, y+h)
			dc.LineTo(x, y+h)
			dc.ClosePath()
		default:
			dc.DrawRectangle(x, y, w, h)
		}
	}

	trace()
	if e.Gradient != nil {
		dc.SetFillStyle(r.gradientPattern(e.Gradient, x, y, w, h))
	} else {
		dc.SetColor(ParseHex(e.Fill, color.RGBA{R: 59, G: 130, B: 246, A: 255}))
	}
	dc.Fill()

	if e.Border != nil && e.Border.Width > 0 {
		trace()
		dc.SetColor(ParseHex(e.Border.Color, black))
		dc.SetLineWidth(r.px(e.Border.Width))
		dc.Stroke()
	}
}

// gradientPattern builds a two-stop gradient spanning the box. Linear
// runs through the box center along the angle, 0 degrees pointing
// right; radial runs from the center to the far corner.
func (r *renderer) gradientPattern(g *models.Gradient, x, y, w, h float64) gg.Pattern {
	from := ParseHex(g.From, white)
	to := ParseHex(g.To, black)

	if g.Kind == models.GradientRadial {
		cx, cy := x+w/2, y+h/2
		radius := math.Hypot(w, h) / 2
		grad := gg.NewRadialGradient(cx, cy, 0, cx, cy, radius)
		grad.AddColorStop(0, from)
		grad.AddColorStop(1, to)
		return grad
	}

	rad := gg.Radians(g.Angle)
	dx, dy := math.Cos(rad), math.Sin(rad)
	cx, cy := x+w/2, y+h/2
	half := (math.Abs(dx)*w + math.Abs(dy)*h) / 2
	grad := gg.NewLinearGradient(cx-dx*half, cy-dy*half, cx+dx*half, cy+dy*half)
	grad.AddColorStop(0, from)
	grad.AddColorStop(1, to)
	return grad
}

func (r *renderer) paintLine(dc *gg.Context, e *models.Line) {
	// A line's box encodes length in W and thickness in H; the stroke
	// runs along the horizontal midline and rotation handles the rest.
	x, y, length, thick := r.px(e.X), r.px(e.Y), r.px(e.W), r.px(e.H)

	switch e.Dash {
	case models.DashDashed:
		dc.SetDash(r.px(8), r.px(5))
	case models.DashDotted:
		dc.SetDash(r.px(1.5), r.px(4))
	}
	dc.SetColor(ParseHex(e.Color, black))
	dc.SetLineWidth(thick)
	mid := y + thick/2
	dc.DrawLine(x, mid, x+length, mid)
	dc.Stroke()
}

func (r *renderer) paintImage(ctx context.Context, dc *gg.Context, e *models.Image) {
	x, y, w, h := r.px(e.X), r.px(e.Y), r.px(e.W), r.px(e.H)
	img, ok := r.fetchAsset(ctx, e.AssetID)
	if !ok {
		r.boxPlaceholder(dc, x, y, w, h)
		return
	}
	r.drawStretched(dc, img, x, y, w, h)
}

// paintPhoto draws the registrant portrait. An element-level asset pins
// one portrait (a sample in the designer); otherwise each badge shows
// its own registrant's photo.
func (r *renderer) paintPhoto(ctx context.Context, dc *gg.Context, e *models.Photo) {
	x, y, w, h := r.px(e.X), r.px(e.Y), r.px(e.W), r.px(e.H)
	ref := e.AssetID
	if ref == "" {
		if reg := r.opts.Data.Registrant; reg != nil && reg.PhotoAssetID != nil {
			ref = reg.PhotoAssetID.String()
		}
	}
	img, ok := r.fetchAsset(ctx, ref)
	if !ok {
		r.photoPlaceholder(dc, x, y, w, h)
		return
	}
	r.drawStretched(dc, img, x, y, w, h)
}

// fetchAsset resolves an asset reference, reporting false for anything
// that should paint as a placeholder instead.
func (r *renderer) fetchAsset(ctx context.Context, assetID string) (image.Image, bool) {
	if assetID == "" || r.opts.Assets == nil {
		return nil, false
	}
	img, err := r.opts.Assets.Image(ctx, assetID)
	if err != nil {
		slog.Warn("asset unavailable, rendering placeholder", "asset_id", assetID, "error", err)
		return nil, false
	}
	return img, true
}

// drawStretched scales a bitmap to exactly fill the element box.
func (r *renderer) drawStretched(dc *gg.Context, src image.Image, x, y, w, h float64) {
	dw, dh := int(math.Round(w)), int(math.Round(h))
	if dw <= 0 || dh <= 0 {
		return
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	dc.DrawImage(dst, int(math.Round(x)), int(math.Round(y)))
}

// boxPlaceholder marks an unresolved image slot: gray panel with a
// crossed diagonal.
func (r *renderer) boxPlaceholder(dc *gg.Context, x, y, w, h float64) {
	dc.SetColor(lightGray)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
	dc.SetColor(midGray)
	dc.SetLineWidth(r.px(1))
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
	dc.DrawLine(x, y, x+w, y+h)
	dc.Stroke()
	dc.DrawLine(x+w, y, x, y+h)
	dc.Stroke()
}

// photoPlaceholder is the unassigned-photo state: a circular avatar
// silhouette inscribed in the box.
func (r *renderer) photoPlaceholder(dc *gg.Context, x, y, w, h float64) {
	cx, cy := x+w/2, y+h/2
	radius := math.Min(w, h) / 2

	dc.SetColor(lightGray)
	dc.DrawCircle(cx, cy, radius)
	dc.Fill()

	dc.DrawCircle(cx, cy, radius)
	dc.Clip()
	dc.SetColor(midGray)
	dc.DrawCircle(cx, cy-radius*0.25, radius*0.32)
	dc.Fill()
	dc.DrawEllipse(cx, cy+radius*0.75, radius*0.6, radius*0.5)
	dc.Fill()
	dc.ResetClip()
}
