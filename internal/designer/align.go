// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"fmt"
	"sort"

	"badgepress/internal/models"
)

// AlignEdge names the alignment targets. Center is horizontal centering
// (one shared x midline), Middle is vertical (one shared y midline).
type AlignEdge string

const (
	AlignLeft   AlignEdge = "left"
	AlignRight  AlignEdge = "right"
	AlignTop    AlignEdge = "top"
	AlignBottom AlignEdge = "bottom"
	AlignCenter AlignEdge = "center"
	AlignMiddle AlignEdge = "middle"
)

// DistributeAxis names the spacing direction.
type DistributeAxis string

const (
	DistributeHorizontal DistributeAxis = "horizontal"
	DistributeVertical   DistributeAxis = "vertical"
)

// alignElements lines els up on the given edge. Every member contributes
// to the target computation, locked members included, but locked members
// are never moved. Needs at least two members.
func alignElements(els []models.Element, edge AlignEdge) error {
	if len(els) < 2 {
		return fmt.Errorf("align needs at least 2 elements, have %d", len(els))
	}

	var target float64
	switch edge {
	case AlignLeft:
		target = els[0].Common().X
		for _, el := range els[1:] {
			if x := el.Common().X; x < target {
				target = x
			}
		}
	case AlignRight:
		target = els[0].Common().Right()
		for _, el := range els[1:] {
			if r := el.Common().Right(); r > target {
				target = r
			}
		}
	case AlignTop:
		target = els[0].Common().Y
		for _, el := range els[1:] {
			if y := el.Common().Y; y < target {
				target = y
			}
		}
	case AlignBottom:
		target = els[0].Common().Bottom()
		for _, el := range els[1:] {
			if b := el.Common().Bottom(); b > target {
				target = b
			}
		}
	case AlignCenter:
		for _, el := range els {
			target += el.Common().CenterX()
		}
		target /= float64(len(els))
	case AlignMiddle:
		for _, el := range els {
			target += el.Common().CenterY()
		}
		target /= float64(len(els))
	default:
		return fmt.Errorf("unknown align edge %q", edge)
	}

	for _, el := range els {
		b := el.Common()
		if b.Locked {
			continue
		}
		switch edge {
		case AlignLeft:
			b.X = target
		case AlignRight:
			b.X = target - b.W
		case AlignTop:
			b.Y = target
		case AlignBottom:
			b.Y = target - b.H
		case AlignCenter:
			b.X = target - b.W/2
		case AlignMiddle:
			b.Y = target - b.H/2
		}
	}
	return nil
}

// distributeElements spaces els evenly along the axis. Members sort by
// leading edge; the first and last stay put and the interior lands at
// equal gaps, which may be negative when the set overlaps. Locked
// members hold position but still occupy their slot, so the remaining
// members land exactly where the even spacing puts them. Needs at least
// three members.
func distributeElements(els []models.Element, axis DistributeAxis) error {
	if len(els) < 3 {
		return fmt.Errorf("distribute needs at least 3 elements, have %d", len(els))
	}

	sorted := make([]models.Element, len(els))
	copy(sorted, els)
	switch axis {
	case DistributeHorizontal:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Common().X < sorted[j].Common().X
		})
	case DistributeVertical:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Common().Y < sorted[j].Common().Y
		})
	default:
		return fmt.Errorf("unknown distribute axis %q", axis)
	}

	first := sorted[0].Common()
	last := sorted[len(sorted)-1].Common()

	var span, total float64
	if axis == DistributeHorizontal {
		span = last.Right() - first.X
		for _, el := range sorted {
			total += el.Common().W
		}
	} else {
		span = last.Bottom() - first.Y
		for _, el := range sorted {
			total += el.Common().H
		}
	}
	gap := (span - total) / float64(len(sorted)-1)

	if axis == DistributeHorizontal {
		prevEdge := first.Right()
		for _, el := range sorted[1 : len(sorted)-1] {
			b := el.Common()
			if !b.Locked {
				b.X = prevEdge + gap
			}
			prevEdge = prevEdge + gap + b.W
		}
	} else {
		prevEdge := first.Bottom()
		for _, el := range sorted[1 : len(sorted)-1] {
			b := el.Common()
			if !b.Locked {
				b.Y = prevEdge + gap
			}
			prevEdge = prevEdge + gap + b.H
		}
	}
	return nil
}
