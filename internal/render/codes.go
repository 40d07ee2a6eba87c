// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"log/slog"
	"math"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"

	"badgepress/internal/models"
	"badgepress/internal/tokens"
)

// paintQR draws the substituted content as a QR symbol with medium
// error correction, sized to the largest square that fits the box and
// centered in it. Content that cannot be encoded paints a placeholder.
func (r *renderer) paintQR(dc *gg.Context, e *models.QRCode) {
	x, y, w, h := r.px(e.X), r.px(e.Y), r.px(e.W), r.px(e.H)
	content := tokens.Substitute(e.Content, r.opts.Data)

	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		slog.Warn("qr encode failed, rendering placeholder", "element_id", e.ID, "error", err)
		r.boxPlaceholder(dc, x, y, w, h)
		return
	}

	side := int(math.Round(math.Min(w, h)))
	if side < 1 {
		return
	}
	img := q.Image(side)
	dx := int(math.Round(x + (w-float64(side))/2))
	dy := int(math.Round(y + (h-float64(side))/2))
	dc.DrawImage(img, dx, dy)
}

// Portion of the box height reserved for the human-readable label
// under the bars.
const barcodeLabelShare = 0.25

// paintBarcode encodes the substituted content in the element's
// symbology, stretches the bars across the box, and prints the content
// underneath in the monospace family. EAN-13 input that is not 12 or 13
// digits, or Code 39 and Codabar input outside their alphabets, fails
// encoding and paints a placeholder.
func (r *renderer) paintBarcode(dc *gg.Context, e *models.Barcode) {
	x, y, w, h := r.px(e.X), r.px(e.Y), r.px(e.W), r.px(e.H)
	content := tokens.Substitute(e.Content, r.opts.Data)

	labelH := h * barcodeLabelShare
	barsH := h - labelH

	code, err := encodeBarcode(e.Symbology, content)
	if err == nil {
		code, err = barcode.Scale(code, int(math.Round(w)), int(math.Round(barsH)))
	}
	if err != nil {
		slog.Warn("barcode encode failed, rendering placeholder",
			"element_id", e.ID, "symbology", e.Symbology, "error", err)
		r.boxPlaceholder(dc, x, y, w, h)
		return
	}
	dc.DrawImage(code, int(math.Round(x)), int(math.Round(y)))

	face, err := r.faces.face(FamilyGoMono, false, false, labelH*0.7)
	if err != nil {
		return
	}
	width := runWidth(face, content, 0)
	sx := x + (w-width)/2
	baseline := y + barsH + fixedToFloat(face.Metrics().Ascent)
	drawRun(dc, face, content, sx, baseline, 0, black)
}

func encodeBarcode(sym models.Symbology, content string) (barcode.Barcode, error) {
	switch sym {
	case models.SymbologyCode39:
		return code39.Encode(content, false, true)
	case models.SymbologyEAN13:
		return ean.Encode(content)
	case models.SymbologyCodabar:
		return codabar.Encode(content)
	default:
		return code128.Encode(content)
	}
}
