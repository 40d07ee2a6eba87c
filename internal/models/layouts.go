// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"math"

	"github.com/google/uuid"
)

// StarterElements builds the default layout a new template opens with: a
// colored header band with the event name, the attendee name and ticket
// type, and a QR code over the registration number. Positions scale with
// the canvas so every size class starts usable.
func StarterElements(size SizeClass) Elements {
	c := size.Canvas()
	w := float64(c.W)
	h := float64(c.H)

	header := &Shape{
		Base: Base{
			ID:      uuid.NewString(),
			Frame:   Frame{X: 0, Y: 0, W: w, H: round(h * 0.16)},
			Z:       1,
			Opacity: 100,
			Visible: true,
		},
		Subtype: ShapeRectangle,
		Fill:    "#1D4ED8",
	}

	eventName := &Text{
		Base: Base{
			ID:      uuid.NewString(),
			Frame:   Frame{X: round(w * 0.05), Y: round(h * 0.04), W: round(w * 0.9), H: round(h * 0.08)},
			Z:       2,
			Opacity: 100,
			Visible: true,
		},
		Content:    "{{event_name}}",
		FontFamily: "Go",
		FontSize:   round(w * 0.05),
		Bold:       true,
		LineHeight: 1.2,
		Color:      "#FFFFFF",
		Align:      AlignCenter,
	}

	name := &Text{
		Base: Base{
			ID:      uuid.NewString(),
			Frame:   Frame{X: round(w * 0.05), Y: round(h * 0.30), W: round(w * 0.9), H: round(h * 0.12)},
			Z:       3,
			Opacity: 100,
			Visible: true,
		},
		Content:    "{{name}}",
		FontFamily: "Go",
		FontSize:   round(w * 0.08),
		Bold:       true,
		LineHeight: 1.2,
		Color:      "#111827",
		Align:      AlignCenter,
	}

	ticket := &Text{
		Base: Base{
			ID:      uuid.NewString(),
			Frame:   Frame{X: round(w * 0.05), Y: round(h * 0.44), W: round(w * 0.9), H: round(h * 0.07)},
			Z:       4,
			Opacity: 100,
			Visible: true,
		},
		Content:    "{{ticket_type}}",
		FontFamily: "Go",
		FontSize:   round(w * 0.045),
		LineHeight: 1.2,
		Color:      "#4B5563",
		Align:      AlignCenter,
	}

	qrSize := round(w * 0.38)
	qr := &QRCode{
		Base: Base{
			ID:      uuid.NewString(),
			Frame:   Frame{X: round((w - qrSize) / 2), Y: round(h * 0.56), W: qrSize, H: qrSize},
			Z:       5,
			Opacity: 100,
			Visible: true,
		},
		Content: "{{registration_number}}",
	}

	regNo := &Text{
		Base: Base{
			ID:      uuid.NewString(),
			Frame:   Frame{X: round(w * 0.05), Y: round(h*0.56) + qrSize + round(h*0.02), W: round(w * 0.9), H: round(h * 0.05)},
			Z:       6,
			Opacity: 100,
			Visible: true,
		},
		Content:    "{{registration_number}}",
		FontFamily: "Go",
		FontSize:   round(w * 0.035),
		LineHeight: 1.2,
		Color:      "#6B7280",
		Align:      AlignCenter,
	}

	return Elements{header, eventName, name, ticket, qr, regNo}
}

func round(v float64) float64 {
	return math.Round(v)
}
