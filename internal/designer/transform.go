// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"fmt"

	"badgepress/internal/models"
)

// ReorderDir names the z-order moves.
type ReorderDir string

const (
	ReorderFront    ReorderDir = "front"
	ReorderBack     ReorderDir = "back"
	ReorderForward  ReorderDir = "forward"
	ReorderBackward ReorderDir = "backward"
)

// dragMove applies a live drag frame to one unlocked element. The
// position may sit outside the canvas and stays unrounded; nothing is
// committed until dragEnd. When snapping is on, the proposal is
// corrected against the canvas and the other visible elements and the
// active guides come back for rendering.
func (s *Session) dragMove(id string, x, y float64) ([]Guide, error) {
	el := s.doc.ElementByID(id)
	if el == nil {
		return nil, fmt.Errorf("drag %s: %w", id, ErrElementNotFound)
	}
	b := el.Common()
	if b.Locked {
		return nil, fmt.Errorf("drag %s: %w", id, ErrElementLocked)
	}
	s.dragID = id

	proposed := b.Frame
	proposed.X = x
	proposed.Y = y

	if !s.snapOn {
		b.X = x
		b.Y = y
		return nil, nil
	}

	var siblings []models.Frame
	for _, other := range s.doc.Elements {
		ob := other.Common()
		if ob.ID == id || !ob.Visible {
			continue
		}
		siblings = append(siblings, ob.Frame)
	}

	corrected, guides := SnapFrame(proposed, s.doc.Size.Canvas(), siblings)
	b.X = corrected.X
	b.Y = corrected.Y
	return guides, nil
}

// dragEnd commits the drag as one history step: position rounded to
// whole units and clamped into the canvas origin, guides cleared.
func (s *Session) dragEnd() {
	if s.dragID == "" {
		return
	}
	if el := s.doc.ElementByID(s.dragID); el != nil {
		el.Common().RoundPosition()
		el.Common().Normalize()
		s.commit()
	}
	s.dragID = ""
}

// dragCancel abandons a live drag, restoring the element's frame from
// the current history snapshot. Nothing is committed.
func (s *Session) dragCancel() {
	if s.dragID == "" {
		return
	}
	s.restoreFrame(s.dragID)
	s.dragID = ""
}

// resizeMove applies a live resize frame. Resize is permitted only for a
// single, unlocked selection; width and height clamp at zero even live.
func (s *Session) resizeMove(id string, frame models.Frame) error {
	if len(s.selection) != 1 || s.selection[0] != id {
		return fmt.Errorf("resize needs a single selected element")
	}
	el := s.doc.ElementByID(id)
	if el == nil {
		return fmt.Errorf("resize %s: %w", id, ErrElementNotFound)
	}
	b := el.Common()
	if b.Locked {
		return fmt.Errorf("resize %s: %w", id, ErrElementLocked)
	}
	s.resizeID = id

	if frame.W < 0 {
		frame.W = 0
	}
	if frame.H < 0 {
		frame.H = 0
	}
	frame.Rotation = b.Rotation
	b.Frame = frame
	return nil
}

// resizeEnd commits the resize as one history step.
func (s *Session) resizeEnd() {
	if s.resizeID == "" {
		return
	}
	if el := s.doc.ElementByID(s.resizeID); el != nil {
		el.Common().RoundPosition()
		el.Common().Normalize()
		s.commit()
	}
	s.resizeID = ""
}

func (s *Session) resizeCancel() {
	if s.resizeID == "" {
		return
	}
	s.restoreFrame(s.resizeID)
	s.resizeID = ""
}

// restoreFrame copies an element's frame back from the current snapshot.
func (s *Session) restoreFrame(id string) {
	snap := s.history.Current()
	if snap == nil {
		return
	}
	was := snap.ElementByID(id)
	now := s.doc.ElementByID(id)
	if was == nil || now == nil {
		return
	}
	now.Common().Frame = was.Common().Frame
}

// nudge moves the unlocked targets by a keyboard step. Every keypress is
// its own committed action, clamped to the canvas origin. The client
// sends the step already scaled: one unit per arrow press, ten with
// shift held.
func (s *Session) nudge(ids []string, dx, dy float64) error {
	targets := ids
	if len(targets) == 0 {
		targets = s.selection
	}
	if len(targets) == 0 {
		return fmt.Errorf("nothing selected to nudge")
	}
	moved := 0
	for _, id := range targets {
		el := s.doc.ElementByID(id)
		if el == nil {
			continue
		}
		b := el.Common()
		if b.Locked {
			continue
		}
		b.X += dx
		b.Y += dy
		b.Normalize()
		moved++
	}
	if moved == 0 {
		return nil
	}
	s.commit()
	return nil
}

// align lines the selection up on one edge and commits once for the
// whole batch.
func (s *Session) align(edge AlignEdge) error {
	els := s.selectedElements()
	if err := alignElements(els, edge); err != nil {
		return err
	}
	for _, el := range els {
		el.Common().RoundPosition()
		el.Common().Normalize()
	}
	s.commit()
	return nil
}

// distribute spaces the selection evenly and commits once.
func (s *Session) distribute(axis DistributeAxis) error {
	els := s.selectedElements()
	if err := distributeElements(els, axis); err != nil {
		return err
	}
	for _, el := range els {
		el.Common().RoundPosition()
		el.Common().Normalize()
	}
	s.commit()
	return nil
}

// reorder moves one element within the paint order. Front and back jump
// past the current extremes; forward and backward renumber the paint
// order densely and swap with the neighbor, which also resolves z ties
// deterministically.
func (s *Session) reorder(id string, dir ReorderDir) error {
	el := s.doc.ElementByID(id)
	if el == nil {
		return fmt.Errorf("reorder %s: %w", id, ErrElementNotFound)
	}

	switch dir {
	case ReorderFront:
		el.Common().Z = s.doc.MaxZ() + 1
	case ReorderBack:
		min := 0
		for i, other := range s.doc.Elements {
			if z := other.Common().Z; i == 0 || z < min {
				min = z
			}
		}
		el.Common().Z = min - 1
	case ReorderForward, ReorderBackward:
		order := s.doc.PaintOrder()
		pos := -1
		for i, other := range order {
			if other.Common().ID == id {
				pos = i
				break
			}
		}
		other := pos + 1
		if dir == ReorderBackward {
			other = pos - 1
		}
		if other < 0 || other >= len(order) {
			return nil // already at that end, nothing to commit
		}
		order[pos], order[other] = order[other], order[pos]
		for i, e := range order {
			e.Common().Z = i + 1
		}
	default:
		return fmt.Errorf("unknown reorder direction %q", dir)
	}

	s.commit()
	return nil
}
