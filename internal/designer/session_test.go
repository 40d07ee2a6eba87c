package designer

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"badgepress/internal/models"
)

func fp(v float64) *float64 { return &v }

func bp(v bool) *bool { return &v }

func newTestSession(t *testing.T) *Session {
	t.Helper()
	tpl := models.NewTemplate("Session", models.SizeA6)
	return NewSession(tpl, false)
}

func apply(t *testing.T, s *Session, op Op) *State {
	t.Helper()
	st, err := s.Apply(op)
	if err != nil {
		t.Fatalf("op %s: %v", op.Type, err)
	}
	return st
}

func rawFields(t *testing.T, raw string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad fields %s: %v", raw, err)
	}
	return m
}

// TestSessionUndoRedoRoundTrip drives real ops and checks the core
// history property: undo times N then redo times N reproduces every
// committed document under deep equality.
func TestSessionUndoRedoRoundTrip(t *testing.T) {
	s := newTestSession(t)

	var committed []*models.Template
	record := func(st *State) {
		committed = append(committed, st.Template)
	}

	st := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText})
	record(st)
	id := st.Selection[0]

	record(apply(t, s, Op{Type: OpUpdateElement, ID: id, Fields: rawFields(t, `{"content":"Edited"}`)}))
	record(apply(t, s, Op{Type: OpNudge, IDs: []string{id}, DX: 10, DY: 0}))
	record(apply(t, s, Op{Type: OpDuplicate, IDs: []string{id}}))
	record(apply(t, s, Op{Type: OpAddElement, Kind: models.KindShape}))

	n := len(committed)

	// Undo N times lands on the opening snapshot, an empty document.
	for i := 0; i < n; i++ {
		st = apply(t, s, Op{Type: OpUndo})
	}
	if len(st.Template.Elements) != 0 {
		t.Fatalf("after undoing everything, document has %d elements, want 0", len(st.Template.Elements))
	}
	if st.CanUndo {
		t.Error("CanUndo at the opening snapshot")
	}

	// Redo N times replays every committed state exactly.
	for i := 0; i < n; i++ {
		st = apply(t, s, Op{Type: OpRedo})
		if !reflect.DeepEqual(st.Template.Elements, committed[i].Elements) {
			t.Fatalf("redo %d: document differs from committed state", i)
		}
	}
	if st.CanRedo {
		t.Error("CanRedo after replaying everything")
	}
}

// TestSessionUnsavedFlag verifies the deliberate flag semantics: set by
// any commit, cleared only by save, untouched by undo.
func TestSessionUnsavedFlag(t *testing.T) {
	s := newTestSession(t)
	if s.State().Unsaved {
		t.Fatal("fresh session reports unsaved")
	}

	st := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText})
	if !st.Unsaved {
		t.Fatal("commit did not set the unsaved flag")
	}

	// Undoing back to the opening state does not clear it.
	st = apply(t, s, Op{Type: OpUndo})
	if !st.Unsaved {
		t.Error("undo cleared the unsaved flag")
	}

	s.MarkSaved()
	if s.State().Unsaved {
		t.Error("MarkSaved did not clear the unsaved flag")
	}
	if !s.State().Persisted {
		t.Error("MarkSaved did not mark the session persisted")
	}
}

// TestSessionSelectToggleClear exercises the selection ops.
func TestSessionSelectToggleClear(t *testing.T) {
	s := newTestSession(t)
	a := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText}).Selection[0]
	b := apply(t, s, Op{Type: OpAddElement, Kind: models.KindShape}).Selection[0]

	st := apply(t, s, Op{Type: OpSelect, ID: a})
	if len(st.Selection) != 1 || st.Selection[0] != a {
		t.Fatalf("selection = %v, want [%s]", st.Selection, a)
	}

	st = apply(t, s, Op{Type: OpToggleSelect, ID: b})
	if len(st.Selection) != 2 {
		t.Fatalf("additive selection = %v, want both", st.Selection)
	}
	st = apply(t, s, Op{Type: OpToggleSelect, ID: a})
	if len(st.Selection) != 1 || st.Selection[0] != b {
		t.Fatalf("toggled-off selection = %v, want [%s]", st.Selection, b)
	}

	st = apply(t, s, Op{Type: OpClearSelection})
	if len(st.Selection) != 0 {
		t.Fatalf("selection after clear = %v, want empty", st.Selection)
	}

	if _, err := s.Apply(Op{Type: OpSelect, ID: "ghost"}); err == nil {
		t.Error("selecting a missing element succeeded")
	}
}

// TestSessionRemovePrunesSelection verifies removal drops the element
// from both document and selection.
func TestSessionRemovePrunesSelection(t *testing.T) {
	s := newTestSession(t)
	a := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText}).Selection[0]
	b := apply(t, s, Op{Type: OpAddElement, Kind: models.KindShape}).Selection[0]
	apply(t, s, Op{Type: OpSelect, ID: a})
	apply(t, s, Op{Type: OpToggleSelect, ID: b})

	st := apply(t, s, Op{Type: OpRemove, IDs: []string{a}})
	if len(st.Template.Elements) != 1 {
		t.Fatalf("document has %d elements, want 1", len(st.Template.Elements))
	}
	if len(st.Selection) != 1 || st.Selection[0] != b {
		t.Errorf("selection = %v, want only %s", st.Selection, b)
	}
}

// TestSessionDuplicateDistinctIDs duplicates one element repeatedly and
// verifies all ids stay pairwise distinct.
func TestSessionDuplicateDistinctIDs(t *testing.T) {
	s := newTestSession(t)
	src := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText}).Selection[0]

	target := src
	for i := 0; i < 5; i++ {
		st := apply(t, s, Op{Type: OpDuplicate, IDs: []string{target}})
		target = st.Selection[0]
	}

	st := s.State()
	seen := make(map[string]bool)
	for _, el := range st.Template.Elements {
		id := el.Common().ID
		if seen[id] {
			t.Fatalf("duplicate id %s in document", id)
		}
		seen[id] = true
	}
	if len(st.Template.Elements) != 6 {
		t.Errorf("document has %d elements, want 6", len(st.Template.Elements))
	}
}

// TestSessionCopyPasteCascade verifies paste clones with fresh ids and
// that repeated pastes keep offsetting.
func TestSessionCopyPasteCascade(t *testing.T) {
	s := newTestSession(t)
	st := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText, Frame: &models.Frame{X: 100, Y: 100, W: 120, H: 30}})
	src := st.Selection[0]

	apply(t, s, Op{Type: OpCopy})
	first := apply(t, s, Op{Type: OpPaste})
	second := apply(t, s, Op{Type: OpPaste})

	p1 := first.Template.ElementByID(first.Selection[0]).Common()
	if p1.X != 120 || p1.Y != 120 {
		t.Errorf("first paste at (%g,%g), want (120,120)", p1.X, p1.Y)
	}
	p2 := second.Template.ElementByID(second.Selection[0]).Common()
	if p2.X != 140 || p2.Y != 140 {
		t.Errorf("second paste at (%g,%g), want (140,140)", p2.X, p2.Y)
	}
	if first.Selection[0] == src || second.Selection[0] == src || first.Selection[0] == second.Selection[0] {
		t.Error("paste reused an id")
	}

	// Copy with nothing selected errors; paste with empty clipboard errors.
	empty := newTestSession(t)
	if _, err := empty.Apply(Op{Type: OpCopy}); err == nil {
		t.Error("copy with empty selection succeeded")
	}
	if _, err := empty.Apply(Op{Type: OpPaste}); err == nil {
		t.Error("paste with empty clipboard succeeded")
	}
}

// TestSessionLockedElementGuards verifies locked elements refuse
// geometry while accepting style edits and staying selectable.
func TestSessionLockedElementGuards(t *testing.T) {
	s := newTestSession(t)
	id := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText}).Selection[0]
	apply(t, s, Op{Type: OpSetLocked, IDs: []string{id}, On: bp(true)})

	if _, err := s.Apply(Op{Type: OpDragMove, ID: id, X: fp(50), Y: fp(50)}); err == nil {
		t.Error("drag of a locked element succeeded")
	}
	if _, err := s.Apply(Op{Type: OpUpdateElement, ID: id, Fields: rawFields(t, `{"x":99}`)}); err == nil {
		t.Error("geometry update of a locked element succeeded")
	}

	st := apply(t, s, Op{Type: OpUpdateElement, ID: id, Fields: rawFields(t, `{"content":"still editable"}`)})
	if got := st.Template.ElementByID(id).(*models.Text).Content; got != "still editable" {
		t.Errorf("style update on locked element: content = %q", got)
	}

	st = apply(t, s, Op{Type: OpSelect, ID: id})
	if len(st.Selection) != 1 {
		t.Error("locked element is not selectable")
	}

	// Nudging a locked element moves nothing and commits nothing.
	before := s.State()
	st = apply(t, s, Op{Type: OpNudge, IDs: []string{id}, DX: 5, DY: 5})
	if !reflect.DeepEqual(before.Template.Elements, st.Template.Elements) {
		t.Error("nudge moved a locked element")
	}
}

// TestSessionDragLifecycle verifies live moves stay uncommitted and
// unclamped, the stop commits rounded and clamped, and cancel restores.
func TestSessionDragLifecycle(t *testing.T) {
	s := newTestSession(t)
	id := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText, Frame: &models.Frame{X: 100, Y: 100, W: 120, H: 30}}).Selection[0]
	afterAdd := s.State()

	// Live drag outside the canvas, fractional: allowed, not committed.
	st := apply(t, s, Op{Type: OpDragMove, ID: id, X: fp(-30.4), Y: fp(50.6)})
	b := st.Template.ElementByID(id).Common()
	if b.X != -30.4 || b.Y != 50.6 {
		t.Errorf("live position = (%g,%g), want raw (-30.4,50.6)", b.X, b.Y)
	}
	if st.CanRedo != afterAdd.CanRedo || st.Unsaved != afterAdd.Unsaved {
		t.Error("drag_move changed commit-level state")
	}

	// Stop: rounded, clamped, one commit.
	st = apply(t, s, Op{Type: OpDragEnd})
	b = st.Template.ElementByID(id).Common()
	if b.X != 0 || b.Y != 51 {
		t.Errorf("committed position = (%g,%g), want (0,51)", b.X, b.Y)
	}

	// One undo steps back over the whole drag.
	st = apply(t, s, Op{Type: OpUndo})
	b = st.Template.ElementByID(id).Common()
	if b.X != 100 || b.Y != 100 {
		t.Errorf("after undo position = (%g,%g), want (100,100)", b.X, b.Y)
	}
}

// TestSessionDragCancelRestores verifies an abandoned drag leaves the
// document exactly as the last commit had it.
func TestSessionDragCancelRestores(t *testing.T) {
	s := newTestSession(t)
	id := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText, Frame: &models.Frame{X: 100, Y: 100, W: 120, H: 30}}).Selection[0]

	apply(t, s, Op{Type: OpDragMove, ID: id, X: fp(300), Y: fp(400)})
	st := apply(t, s, Op{Type: OpDragCancel})

	b := st.Template.ElementByID(id).Common()
	if b.X != 100 || b.Y != 100 {
		t.Errorf("after cancel position = (%g,%g), want (100,100)", b.X, b.Y)
	}
	if st.CanRedo {
		t.Error("cancel left a redoable commit")
	}
}

// TestSessionDragSnapToggle verifies the global toggle bypasses the snap
// engine entirely.
func TestSessionDragSnapToggle(t *testing.T) {
	s := newTestSession(t)
	id := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText, Frame: &models.Frame{X: 100, Y: 100, W: 100, H: 30}}).Selection[0]

	// Snap on: x=3 captures the canvas edge.
	st := apply(t, s, Op{Type: OpDragMove, ID: id, X: fp(3), Y: fp(100)})
	if got := st.Template.ElementByID(id).Common().X; got != 0 {
		t.Errorf("snapped x = %g, want 0", got)
	}
	if len(st.Guides) == 0 {
		t.Error("no guides with snap enabled")
	}

	apply(t, s, Op{Type: OpDragCancel})
	apply(t, s, Op{Type: OpSetSnap, On: bp(false)})

	st = apply(t, s, Op{Type: OpDragMove, ID: id, X: fp(3), Y: fp(100)})
	if got := st.Template.ElementByID(id).Common().X; got != 3 {
		t.Errorf("raw x = %g, want 3 with snap disabled", got)
	}
	if len(st.Guides) != 0 {
		t.Errorf("guides with snap disabled: %+v", st.Guides)
	}
}

// TestSessionDragIgnoresHiddenSiblings verifies hidden elements offer no
// snap candidates.
func TestSessionDragIgnoresHiddenSiblings(t *testing.T) {
	s := newTestSession(t)
	hidden := apply(t, s, Op{Type: OpAddElement, Kind: models.KindShape, Frame: &models.Frame{X: 200, Y: 300, W: 80, H: 40}}).Selection[0]
	apply(t, s, Op{Type: OpSetVisible, IDs: []string{hidden}, On: bp(false)})
	id := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText, Frame: &models.Frame{X: 100, Y: 100, W: 100, H: 30}}).Selection[0]

	// Right edge three units from the hidden sibling's left edge; no
	// canvas candidate nearby on x.
	st := apply(t, s, Op{Type: OpDragMove, ID: id, X: fp(97), Y: fp(100)})
	if got := st.Template.ElementByID(id).Common().X; got != 97 {
		t.Errorf("x = %g, want raw 97: hidden sibling must not capture", got)
	}
}

// TestSessionResizeRules verifies resize needs a single unlocked
// selection and commits rounded at stop.
func TestSessionResizeRules(t *testing.T) {
	s := newTestSession(t)
	a := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText, Frame: &models.Frame{X: 10, Y: 10, W: 100, H: 30}}).Selection[0]
	b := apply(t, s, Op{Type: OpAddElement, Kind: models.KindShape}).Selection[0]

	// Multi-selection: refused.
	apply(t, s, Op{Type: OpSelect, ID: a})
	apply(t, s, Op{Type: OpToggleSelect, ID: b})
	if _, err := s.Apply(Op{Type: OpResizeMove, ID: a, Frame: &models.Frame{X: 10, Y: 10, W: 200, H: 60}}); err == nil {
		t.Error("resize with multi-selection succeeded")
	}

	apply(t, s, Op{Type: OpSelect, ID: a})
	st := apply(t, s, Op{Type: OpResizeMove, ID: a, Frame: &models.Frame{X: 9.6, Y: 10.2, W: 199.7, H: -5}})
	fr := st.Template.ElementByID(a).Common().Frame
	if fr.H != 0 {
		t.Errorf("live height = %g, want clamped 0", fr.H)
	}

	st = apply(t, s, Op{Type: OpResizeEnd})
	fr = st.Template.ElementByID(a).Common().Frame
	if fr.X != 10 || fr.Y != 10 || fr.W != 200 || fr.H != 0 {
		t.Errorf("committed frame = %+v, want rounded {10 10 200 0}", fr)
	}
}

// TestSessionNudge verifies the keyboard step clamps at the canvas
// origin and commits per keypress.
func TestSessionNudge(t *testing.T) {
	s := newTestSession(t)
	id := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText, Frame: &models.Frame{X: 5, Y: 5, W: 50, H: 20}}).Selection[0]

	st := apply(t, s, Op{Type: OpNudge, IDs: []string{id}, DX: -10, DY: 0})
	if got := st.Template.ElementByID(id).Common().X; got != 0 {
		t.Errorf("x = %g, want clamped 0", got)
	}

	st = apply(t, s, Op{Type: OpNudge, IDs: []string{id}, DX: 1, DY: 10})
	b := st.Template.ElementByID(id).Common()
	if b.X != 1 || b.Y != 15 {
		t.Errorf("position = (%g,%g), want (1,15)", b.X, b.Y)
	}

	// Two keypresses, two undo steps.
	st = apply(t, s, Op{Type: OpUndo})
	if got := st.Template.ElementByID(id).Common().X; got != 0 {
		t.Errorf("after one undo x = %g, want 0", got)
	}
	st = apply(t, s, Op{Type: OpUndo})
	if got := st.Template.ElementByID(id).Common().X; got != 5 {
		t.Errorf("after two undos x = %g, want 5", got)
	}
}

// TestSessionReorderPaintOnly verifies reordering touches z only: the
// paint order changes, geometry and style stay identical.
func TestSessionReorderPaintOnly(t *testing.T) {
	s := newTestSession(t)
	a := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText}).Selection[0]
	b := apply(t, s, Op{Type: OpAddElement, Kind: models.KindShape}).Selection[0]
	c := apply(t, s, Op{Type: OpAddElement, Kind: models.KindLine}).Selection[0]

	before := s.State().Template

	st := apply(t, s, Op{Type: OpReorder, ID: a, Dir: ReorderFront})
	order := st.Template.PaintOrder()
	if got := order[len(order)-1].Common().ID; got != a {
		t.Fatalf("top of paint order = %s, want %s", got, a)
	}

	// Everything except z is untouched on every element.
	for _, el := range st.Template.Elements {
		was := before.ElementByID(el.Common().ID)
		wb, nb := was.Common(), el.Common()
		if wb.Frame != nb.Frame || wb.Opacity != nb.Opacity || wb.Visible != nb.Visible || wb.Locked != nb.Locked {
			t.Errorf("element %s changed beyond z", nb.ID)
		}
	}

	st = apply(t, s, Op{Type: OpReorder, ID: a, Dir: ReorderBack})
	order = st.Template.PaintOrder()
	if got := order[0].Common().ID; got != a {
		t.Fatalf("bottom of paint order = %s, want %s", got, a)
	}

	// Step-wise moves swap neighbors: bottom element climbs one slot.
	st = apply(t, s, Op{Type: OpReorder, ID: a, Dir: ReorderForward})
	order = st.Template.PaintOrder()
	want := []string{b, a, c}
	for i, el := range order {
		if el.Common().ID != want[i] {
			t.Errorf("paint position %d = %s, want %s", i, el.Common().ID, want[i])
		}
	}
}

// TestSessionAttachAssetStaleDrop verifies a late upload result for a
// vanished element is dropped without error or commit.
func TestSessionAttachAssetStaleDrop(t *testing.T) {
	s := newTestSession(t)
	img := apply(t, s, Op{Type: OpAddElement, Kind: models.KindImage}).Selection[0]
	txt := apply(t, s, Op{Type: OpAddElement, Kind: models.KindText}).Selection[0]

	// Live attach works and commits.
	st := apply(t, s, Op{Type: OpAttachAsset, ID: img, AssetID: "asset-1"})
	if got := st.Template.ElementByID(img).(*models.Image).AssetID; got != "asset-1" {
		t.Fatalf("asset id = %q, want asset-1", got)
	}

	// Element deleted before the upload resolved: dropped silently.
	apply(t, s, Op{Type: OpRemove, IDs: []string{img}})
	before := s.State()
	st = apply(t, s, Op{Type: OpAttachAsset, ID: img, AssetID: "asset-2"})
	if st.CanRedo != before.CanRedo || len(st.Template.Elements) != len(before.Template.Elements) {
		t.Error("stale attach mutated the session")
	}

	// Wrong-kind target: also dropped, never mis-applied.
	st = apply(t, s, Op{Type: OpAttachAsset, ID: txt, AssetID: "asset-3"})
	if st.Template.ElementByID(txt).(*models.Text).Content == "asset-3" {
		t.Error("attach wrote into a text element")
	}
}

// TestSessionRepair verifies the empty-document recovery action.
func TestSessionRepair(t *testing.T) {
	s := newTestSession(t)

	st := apply(t, s, Op{Type: OpRepair})
	if len(st.Template.Elements) == 0 {
		t.Fatal("repair left the document empty")
	}
	if !st.Unsaved {
		t.Error("repair did not mark the session unsaved")
	}

	// Refuses a non-empty document.
	if _, err := s.Apply(Op{Type: OpRepair}); err == nil {
		t.Error("repair of a non-empty document succeeded")
	}
}

// TestSessionZoomClamp verifies the zoom bounds.
func TestSessionZoomClamp(t *testing.T) {
	s := newTestSession(t)
	if st := apply(t, s, Op{Type: OpSetZoom, Zoom: fp(10)}); st.Zoom != MaxZoom {
		t.Errorf("zoom = %g, want clamped %g", st.Zoom, MaxZoom)
	}
	if st := apply(t, s, Op{Type: OpSetZoom, Zoom: fp(0.01)}); st.Zoom != MinZoom {
		t.Errorf("zoom = %g, want clamped %g", st.Zoom, MinZoom)
	}
	if st := apply(t, s, Op{Type: OpSetZoom, Zoom: fp(1.5)}); st.Zoom != 1.5 {
		t.Errorf("zoom = %g, want 1.5", st.Zoom)
	}
}

// TestSessionUpdateRejectsBadOp verifies unknown ops and bad targets
// error without corrupting the session.
func TestSessionUpdateRejectsBadOp(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Apply(Op{Type: "teleport"}); err == nil {
		t.Error("unknown op type succeeded")
	}
	if _, err := s.Apply(Op{Type: OpUpdateElement, ID: "ghost", Fields: rawFields(t, `{"x":1}`)}); err == nil {
		t.Error("update of missing element succeeded")
	}
	st := s.State()
	if st.Unsaved || st.CanUndo {
		t.Error("failed ops left commit-level state behind")
	}
}

// TestManagerLifecycle exercises open, lookup, close, and the sweep.
func TestManagerLifecycle(t *testing.T) {
	m := NewManager(DefaultSessionTTL)
	defer m.Stop()

	tpl := models.NewTemplate("Managed", models.SizeA7)
	s := m.Open(tpl, true)

	if got := m.Get(s.ID); got != s {
		t.Fatal("Get did not return the opened session")
	}
	if m.Count() != 1 {
		t.Fatalf("Count = %d, want 1", m.Count())
	}

	// The session works over a copy, never the caller's document.
	apply(t, s, Op{Type: OpAddElement, Kind: models.KindText})
	if len(tpl.Elements) != 0 {
		t.Error("session edit leaked into the source template")
	}

	m.Close(s.ID)
	if m.Get(s.ID) != nil {
		t.Error("Get returned a closed session")
	}

	// Idle sessions are swept.
	short := NewManager(time.Minute)
	defer short.Stop()
	stale := short.Open(tpl, true)
	stale.mu.Lock()
	stale.lastUsed = time.Now().Add(-time.Hour)
	stale.mu.Unlock()
	short.sweep()
	if short.Get(stale.ID) != nil {
		t.Error("sweep kept an idle session")
	}
}
