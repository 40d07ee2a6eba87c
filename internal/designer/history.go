// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import "badgepress/internal/models"

// HistoryCap bounds the undo stack. Committing beyond it evicts the
// oldest snapshot.
const HistoryCap = 50

// History is the undo/redo stack of a designer session. Every entry is a
// deep, independent copy of the document at one committed instant; the
// pointer indexes the current one. Undo and redo at the stack boundaries
// are no-ops, never errors.
type History struct {
	snapshots []*models.Template
	pos       int
}

func NewHistory() *History {
	return &History{pos: -1}
}

// Push commits a snapshot: any redo branch past the pointer is
// discarded, the clone is appended, and the oldest entry falls off once
// the stack exceeds its cap.
func (h *History) Push(doc *models.Template) {
	h.snapshots = append(h.snapshots[:h.pos+1], doc.Clone())
	if len(h.snapshots) > HistoryCap {
		h.snapshots = h.snapshots[1:]
	}
	h.pos = len(h.snapshots) - 1
}

// Undo steps the pointer back and returns a deep copy of that snapshot.
// At the bottom of the stack it returns (nil, false).
func (h *History) Undo() (*models.Template, bool) {
	if h.pos <= 0 {
		return nil, false
	}
	h.pos--
	return h.snapshots[h.pos].Clone(), true
}

// Redo steps the pointer forward and returns a deep copy of that
// snapshot. At the top of the stack it returns (nil, false).
func (h *History) Redo() (*models.Template, bool) {
	if h.pos >= len(h.snapshots)-1 {
		return nil, false
	}
	h.pos++
	return h.snapshots[h.pos].Clone(), true
}

// Current returns a deep copy of the snapshot under the pointer, nil
// when the stack is empty. Drag-cancel restores from it.
func (h *History) Current() *models.Template {
	if h.pos < 0 {
		return nil
	}
	return h.snapshots[h.pos].Clone()
}

func (h *History) CanUndo() bool { return h.pos > 0 }

func (h *History) CanRedo() bool { return h.pos < len(h.snapshots)-1 }

// Len reports how many snapshots the stack holds.
func (h *History) Len() int { return len(h.snapshots) }
