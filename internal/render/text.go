// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"image/color"
	"log/slog"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"badgepress/internal/models"
	"badgepress/internal/tokens"
)

const (
	defaultFontSize   = 16
	defaultLineHeight = 1.2
)

// paintText substitutes tokens, applies the case transform, wraps the
// result to the box width, and draws line by line. Glyphs are measured
// and placed rune by rune through the same advance function, so layout
// is identical whether a run is being measured or painted.
func (r *renderer) paintText(dc *gg.Context, e *models.Text) {
	x, y, w, h := r.px(e.X), r.px(e.Y), r.px(e.W), r.px(e.H)

	if e.Background != "" {
		dc.SetColor(ParseHex(e.Background, white))
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
	}
	if e.Border != nil && e.Border.Width > 0 {
		dc.SetColor(ParseHex(e.Border.Color, black))
		dc.SetLineWidth(r.px(e.Border.Width))
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()
	}

	content := tokens.Substitute(e.Content, r.opts.Data)
	content = tokens.ApplyCase(content, e.Case)
	if content == "" {
		return
	}

	size := e.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	face, err := r.faces.face(e.FontFamily, e.Bold, e.Italic, size*r.scale)
	if err != nil {
		slog.Warn("font unavailable, skipping text", "family", e.FontFamily, "error", err)
		return
	}
	spacing := r.px(e.LetterSpacing)

	lines := wrapLines(face, content, w, spacing)

	lineHeight := e.LineHeight
	if lineHeight <= 0 {
		lineHeight = defaultLineHeight
	}
	step := size * r.scale * lineHeight
	ascent := fixedToFloat(face.Metrics().Ascent)

	textColor := ParseHex(e.Color, black)

	for i, line := range lines {
		if line == "" {
			continue
		}
		baseline := y + ascent + float64(i)*step
		width := runWidth(face, line, spacing)

		var sx float64
		switch e.Align {
		case models.AlignCenter:
			sx = x + (w-width)/2
		case models.AlignRight:
			sx = x + w - width
		default:
			sx = x
		}

		if s := e.Shadow; s != nil {
			drawRun(dc, face, line, sx+r.px(s.OffsetX), baseline+r.px(s.OffsetY),
				spacing, ParseHex(s.Color, black))
		}
		drawRun(dc, face, line, sx, baseline, spacing, textColor)
	}
}

// wrapLines splits content on explicit newlines and word-wraps each
// paragraph to maxWidth. A single word wider than the box stays on its
// own line and overflows; words are never broken mid-rune.
func wrapLines(face font.Face, content string, maxWidth, spacing float64) []string {
	var out []string
	for _, para := range strings.Split(content, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			joined := line + " " + word
			if runWidth(face, joined, spacing) <= maxWidth {
				line = joined
				continue
			}
			out = append(out, line)
			line = word
		}
		out = append(out, line)
	}
	return out
}

// drawRun paints a line one rune at a time so letter spacing applies
// between every pair of glyphs.
func drawRun(dc *gg.Context, face font.Face, line string, x, y, spacing float64, col color.Color) {
	dc.SetFontFace(face)
	dc.SetColor(col)
	pos := x
	for _, ru := range line {
		dc.DrawString(string(ru), pos, y)
		pos += runeAdvance(face, ru) + spacing
	}
}

// runWidth measures a line the same way drawRun places it.
func runWidth(face font.Face, line string, spacing float64) float64 {
	var width float64
	n := 0
	for _, ru := range line {
		width += runeAdvance(face, ru)
		n++
	}
	if n > 1 {
		width += spacing * float64(n-1)
	}
	return width
}

// runeAdvance is the horizontal advance of one glyph. Kerning is
// ignored on purpose: with per-rune placement the measured width must
// match the painted width exactly.
func runeAdvance(face font.Face, ru rune) float64 {
	adv, ok := face.GlyphAdvance(ru)
	if !ok {
		adv, _ = face.GlyphAdvance('?')
	}
	return fixedToFloat(adv)
}
