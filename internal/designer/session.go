// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package designer holds the interactive editing engine: one session per
// open badge template, carrying the working document, the selection, the
// clipboard, the undo/redo history, and the drag state. All edits arrive
// as ops and are applied atomically under the session lock, so the
// document never sees concurrent mutation.
package designer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"badgepress/internal/models"
)

var (
	// ErrElementNotFound marks ops that target an element no longer in
	// the document.
	ErrElementNotFound = errors.New("element not found")

	// ErrElementLocked marks geometry ops against a locked element.
	ErrElementLocked = errors.New("element is locked")
)

const (
	MinZoom = 0.25
	MaxZoom = 4.0
)

// Session is the mutable editor state behind one open designer view.
type Session struct {
	ID string

	mu        sync.Mutex
	doc       *models.Template
	history   *History
	selection []string
	clipboard models.Elements
	zoom      float64
	snapOn    bool
	unsaved   bool
	persisted bool
	dragID    string
	resizeID  string
	lastUsed  time.Time
}

// NewSession opens a session over a deep copy of doc. persisted tells
// whether the template already exists in the store, which decides
// insert-versus-update at save time. The opening state is seeded into
// history so the first undo has a floor, without marking the session
// unsaved.
func NewSession(doc *models.Template, persisted bool) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		doc:       doc.Clone(),
		history:   NewHistory(),
		zoom:      1,
		snapOn:    true,
		persisted: persisted,
		lastUsed:  time.Now(),
	}
	s.history.Push(s.doc)
	return s
}

// State is the payload returned to the client after every op: the full
// document plus the session flags the designer chrome renders.
type State struct {
	SessionID string           `json:"session_id"`
	Template  *models.Template `json:"template"`
	Selection []string         `json:"selection"`
	Guides    []Guide          `json:"guides,omitempty"`
	Zoom      float64          `json:"zoom"`
	Snap      bool             `json:"snap"`
	Unsaved   bool             `json:"unsaved"`
	Persisted bool             `json:"persisted"`
	CanUndo   bool             `json:"can_undo"`
	CanRedo   bool             `json:"can_redo"`
}

// State snapshots the session for the client.
func (s *Session) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(nil)
}

// state builds the payload. Callers hold the lock.
func (s *Session) state(guides []Guide) *State {
	sel := make([]string, len(s.selection))
	copy(sel, s.selection)
	return &State{
		SessionID: s.ID,
		Template:  s.doc.Clone(),
		Selection: sel,
		Guides:    guides,
		Zoom:      s.zoom,
		Snap:      s.snapOn,
		Unsaved:   s.unsaved,
		Persisted: s.persisted,
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
	}
}

// Document returns a deep copy of the working document for rendering or
// saving, never the live one.
func (s *Session) Document() *models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// MarkSaved clears the unsaved flag after a successful store write. The
// flag is set by every commit and cleared only here; undoing back to a
// previously saved state does not clear it.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsaved = false
	s.persisted = true
}

// LastUsed reports the last op or lookup time, for idle eviction.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// commit writes one atomic user action into history and marks the
// session dirty. Exactly one commit per action: drag-stop, resize-stop,
// field edit, bulk align. Never per intermediate frame.
func (s *Session) commit() {
	s.history.Push(s.doc)
	s.unsaved = true
}

// pruneSelection drops selected ids that no longer exist, after removes
// and history restores.
func (s *Session) pruneSelection() {
	kept := s.selection[:0]
	for _, id := range s.selection {
		if s.doc.ElementByID(id) != nil {
			kept = append(kept, id)
		}
	}
	s.selection = kept
}

// selectedElements returns the selected elements in document array
// order, which keeps align and distribute deterministic.
func (s *Session) selectedElements() []models.Element {
	set := make(map[string]bool, len(s.selection))
	for _, id := range s.selection {
		set[id] = true
	}
	var out []models.Element
	for _, el := range s.doc.Elements {
		if set[el.Common().ID] {
			out = append(out, el)
		}
	}
	return out
}

func (s *Session) selectOne(id string) error {
	if s.doc.ElementByID(id) == nil {
		return fmt.Errorf("select %s: %w", id, ErrElementNotFound)
	}
	s.selection = []string{id}
	return nil
}

func (s *Session) toggleSelect(id string) error {
	if s.doc.ElementByID(id) == nil {
		return fmt.Errorf("select %s: %w", id, ErrElementNotFound)
	}
	for i, have := range s.selection {
		if have == id {
			s.selection = append(s.selection[:i], s.selection[i+1:]...)
			return nil
		}
	}
	s.selection = append(s.selection, id)
	return nil
}

func (s *Session) addElement(kind models.Kind, frame *models.Frame) error {
	f := models.DefaultFrame(kind)
	if frame != nil {
		f = *frame
	}
	el, ok := models.NewElement(kind, f)
	if !ok {
		return fmt.Errorf("unknown element kind %q", kind)
	}
	s.doc.Add(el)
	s.selection = []string{el.Common().ID}
	s.commit()
	return nil
}

func (s *Session) updateElement(id string, fields map[string]json.RawMessage) error {
	el := s.doc.ElementByID(id)
	if el == nil {
		return fmt.Errorf("update %s: %w", id, ErrElementNotFound)
	}
	if el.Common().Locked && models.TouchesGeometry(fields) {
		return fmt.Errorf("update %s geometry: %w", id, ErrElementLocked)
	}
	if err := models.ApplyUpdate(el, fields); err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	s.commit()
	return nil
}

// removeElements deletes the targets (explicit ids, else the selection)
// from the document and the selection.
func (s *Session) removeElements(ids []string) error {
	targets := ids
	if len(targets) == 0 {
		targets = s.selection
	}
	if len(targets) == 0 {
		return fmt.Errorf("nothing selected to remove")
	}
	removed := 0
	for _, id := range targets {
		if s.doc.Remove(id) {
			removed++
		}
	}
	if removed == 0 {
		return fmt.Errorf("remove: %w", ErrElementNotFound)
	}
	s.pruneSelection()
	s.commit()
	return nil
}

func (s *Session) duplicateElements(ids []string) error {
	targets := ids
	if len(targets) == 0 {
		targets = s.selection
	}
	if len(targets) == 0 {
		return fmt.Errorf("nothing selected to duplicate")
	}
	var created []string
	for _, id := range targets {
		if cp, ok := s.doc.Duplicate(id); ok {
			created = append(created, cp.Common().ID)
		}
	}
	if len(created) == 0 {
		return fmt.Errorf("duplicate: %w", ErrElementNotFound)
	}
	s.selection = created
	s.commit()
	return nil
}

func (s *Session) copySelection() error {
	els := s.selectedElements()
	if len(els) == 0 {
		return fmt.Errorf("nothing selected to copy")
	}
	s.clipboard = make(models.Elements, len(els))
	for i, el := range els {
		s.clipboard[i] = el.Clone()
	}
	return nil
}

// paste inserts clones of the clipboard with fresh ids, offset like
// duplicates and stacked on top. The stored clipboard shifts by the same
// offset so repeated pastes cascade instead of piling up.
func (s *Session) paste() error {
	if len(s.clipboard) == 0 {
		return fmt.Errorf("clipboard is empty")
	}
	var created []string
	for _, src := range s.clipboard {
		cp := src.Clone()
		b := cp.Common()
		b.ID = uuid.NewString()
		b.X += models.DuplicateOffset
		b.Y += models.DuplicateOffset
		s.doc.Add(cp)
		created = append(created, b.ID)

		src.Common().X += models.DuplicateOffset
		src.Common().Y += models.DuplicateOffset
	}
	s.selection = created
	s.commit()
	return nil
}

func (s *Session) setLocked(ids []string, on bool) error {
	return s.setFlag(ids, func(b *models.Base) { b.Locked = on })
}

func (s *Session) setVisible(ids []string, on bool) error {
	return s.setFlag(ids, func(b *models.Base) { b.Visible = on })
}

func (s *Session) setFlag(ids []string, set func(*models.Base)) error {
	targets := ids
	if len(targets) == 0 {
		targets = s.selection
	}
	if len(targets) == 0 {
		return fmt.Errorf("nothing selected")
	}
	touched := 0
	for _, id := range targets {
		if el := s.doc.ElementByID(id); el != nil {
			set(el.Common())
			touched++
		}
	}
	if touched == 0 {
		return fmt.Errorf("set flag: %w", ErrElementNotFound)
	}
	s.commit()
	return nil
}

// undo restores the previous snapshot. At the stack floor it is a
// no-op, never an error. The unsaved flag deliberately stays as it is.
func (s *Session) undo() {
	doc, ok := s.history.Undo()
	if !ok {
		return
	}
	s.doc = doc
	s.dragID = ""
	s.resizeID = ""
	s.pruneSelection()
}

func (s *Session) redo() {
	doc, ok := s.history.Redo()
	if !ok {
		return
	}
	s.doc = doc
	s.dragID = ""
	s.resizeID = ""
	s.pruneSelection()
}

func (s *Session) setZoom(z float64) {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	s.zoom = z
}

// attachAsset binds an uploaded asset to an image or photo element. A
// late-resolving upload whose target is gone, or whose target changed
// kind, is dropped without error: stale results must never mis-apply.
func (s *Session) attachAsset(elementID, assetID string) {
	el := s.doc.ElementByID(elementID)
	if el == nil {
		return
	}
	switch e := el.(type) {
	case *models.Image:
		e.AssetID = assetID
	case *models.Photo:
		e.AssetID = assetID
	default:
		return
	}
	s.commit()
}

// repair synthesizes the starter layout into an empty document. Loading
// a template that was saved with zero elements offers this instead of
// blocking the operator; it refuses to clobber a non-empty document.
func (s *Session) repair() error {
	if len(s.doc.Elements) > 0 {
		return fmt.Errorf("document already has elements")
	}
	s.doc.Elements = models.StarterElements(s.doc.Size)
	s.selection = nil
	s.commit()
	return nil
}
