// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"math"

	"badgepress/internal/models"
)

// SnapThreshold is the capture distance in canvas units. It is constant
// regardless of zoom; zoom is a client display concern.
const SnapThreshold = 5.0

// GuideAxis tells the client which way to draw a guide line. A vertical
// guide is a constant-x line, a horizontal guide a constant-y line.
type GuideAxis string

const (
	GuideVertical   GuideAxis = "vertical"
	GuideHorizontal GuideAxis = "horizontal"
)

// GuideSource records what the dragged element snapped against.
type GuideSource string

const (
	GuideCanvas  GuideSource = "canvas"
	GuideElement GuideSource = "element"
)

// Guide is one transient alignment line, live only while a drag is in
// flight. Guides never enter the document or the history.
type Guide struct {
	Axis   GuideAxis   `json:"axis"`
	Value  float64     `json:"value"`
	Source GuideSource `json:"source"`
}

type snapCandidate struct {
	value  float64
	source GuideSource
}

// SnapFrame corrects a proposed drag position against the canvas and the
// other visible elements, returning the corrected frame and the active
// guides.
//
// Candidates are evaluated in a fixed order per axis: canvas edges and
// center first, then each sibling's edges and center in array order.
// Every candidate within the threshold of the raw proposal records a
// guide and overwrites the position, so the later-evaluated match wins
// the final position; sibling guides therefore take precedence over
// canvas guides when both capture. This evaluation order is load-bearing
// editor behavior, not an accident to simplify away.
func SnapFrame(proposed models.Frame, canvas models.Canvas, siblings []models.Frame) (models.Frame, []Guide) {
	xs := make([]snapCandidate, 0, 3+3*len(siblings))
	ys := make([]snapCandidate, 0, 3+3*len(siblings))

	w := float64(canvas.W)
	h := float64(canvas.H)
	xs = append(xs,
		snapCandidate{0, GuideCanvas},
		snapCandidate{w, GuideCanvas},
		snapCandidate{w / 2, GuideCanvas},
	)
	ys = append(ys,
		snapCandidate{0, GuideCanvas},
		snapCandidate{h, GuideCanvas},
		snapCandidate{h / 2, GuideCanvas},
	)
	for _, s := range siblings {
		xs = append(xs,
			snapCandidate{s.X, GuideElement},
			snapCandidate{s.Right(), GuideElement},
			snapCandidate{s.CenterX(), GuideElement},
		)
		ys = append(ys,
			snapCandidate{s.Y, GuideElement},
			snapCandidate{s.Bottom(), GuideElement},
			snapCandidate{s.CenterY(), GuideElement},
		)
	}

	out := proposed
	var guides []Guide

	// Each candidate is measured against the raw proposal, never the
	// partially corrected frame. At most one reference captures per
	// candidate: trailing edge preferred, then center, then leading.
	for _, c := range xs {
		matched := false
		switch {
		case math.Abs(proposed.Right()-c.value) < SnapThreshold:
			out.X = c.value - proposed.W
			matched = true
		case math.Abs(proposed.CenterX()-c.value) < SnapThreshold:
			out.X = c.value - proposed.W/2
			matched = true
		case math.Abs(proposed.X-c.value) < SnapThreshold:
			out.X = c.value
			matched = true
		}
		if matched {
			guides = addGuide(guides, Guide{Axis: GuideVertical, Value: c.value, Source: c.source})
		}
	}
	for _, c := range ys {
		matched := false
		switch {
		case math.Abs(proposed.Bottom()-c.value) < SnapThreshold:
			out.Y = c.value - proposed.H
			matched = true
		case math.Abs(proposed.CenterY()-c.value) < SnapThreshold:
			out.Y = c.value - proposed.H/2
			matched = true
		case math.Abs(proposed.Y-c.value) < SnapThreshold:
			out.Y = c.value
			matched = true
		}
		if matched {
			guides = addGuide(guides, Guide{Axis: GuideHorizontal, Value: c.value, Source: c.source})
		}
	}

	return out, guides
}

// addGuide appends g unless a guide already marks that line. Two
// siblings sharing an edge still draw one line.
func addGuide(guides []Guide, g Guide) []Guide {
	for _, have := range guides {
		if have.Axis == g.Axis && have.Value == g.Value {
			return guides
		}
	}
	return append(guides, g)
}
