// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"encoding/json"
	"fmt"
	"time"

	"badgepress/internal/models"
)

// OpType names an editor action.
type OpType string

const (
	OpSelect         OpType = "select"
	OpToggleSelect   OpType = "toggle_select"
	OpClearSelection OpType = "clear_selection"
	OpAddElement     OpType = "add_element"
	OpUpdateElement  OpType = "update_element"
	OpRemove         OpType = "remove"
	OpDuplicate      OpType = "duplicate"
	OpCopy           OpType = "copy"
	OpPaste          OpType = "paste"
	OpDragMove       OpType = "drag_move"
	OpDragEnd        OpType = "drag_end"
	OpDragCancel     OpType = "drag_cancel"
	OpResizeMove     OpType = "resize_move"
	OpResizeEnd      OpType = "resize_end"
	OpResizeCancel   OpType = "resize_cancel"
	OpNudge          OpType = "nudge"
	OpAlign          OpType = "align"
	OpDistribute     OpType = "distribute"
	OpReorder        OpType = "reorder"
	OpSetLocked      OpType = "set_locked"
	OpSetVisible     OpType = "set_visible"
	OpUndo           OpType = "undo"
	OpRedo           OpType = "redo"
	OpSetZoom        OpType = "set_zoom"
	OpSetSnap        OpType = "set_snap"
	OpAttachAsset    OpType = "attach_asset"
	OpRepair         OpType = "repair"
)

// Op is one editor action as posted by the designer client. Which fields
// matter depends on Type; Apply validates per type.
type Op struct {
	Type OpType `json:"type"`

	// Element targets. ID for single-target ops, IDs for batch ops that
	// default to the selection when empty.
	ID  string   `json:"id,omitempty"`
	IDs []string `json:"ids,omitempty"`

	// add_element
	Kind  models.Kind   `json:"kind,omitempty"`
	Frame *models.Frame `json:"frame,omitempty"`

	// update_element partial field merge
	Fields map[string]json.RawMessage `json:"fields,omitempty"`

	// drag_move proposed origin
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	// nudge step, pre-scaled by the client (1 or 10 units)
	DX float64 `json:"dx,omitempty"`
	DY float64 `json:"dy,omitempty"`

	Edge AlignEdge      `json:"edge,omitempty"`
	Axis DistributeAxis `json:"axis,omitempty"`
	Dir  ReorderDir     `json:"dir,omitempty"`

	// set_locked / set_visible / set_snap
	On *bool `json:"on,omitempty"`

	Zoom    *float64 `json:"zoom,omitempty"`
	AssetID string   `json:"asset_id,omitempty"`
}

// Apply runs one op against the session and returns the resulting state.
// Ops are serialized by the session lock; each is atomic.
func (s *Session) Apply(op Op) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()

	var guides []Guide
	var err error

	switch op.Type {
	case OpSelect:
		err = s.selectOne(op.ID)
	case OpToggleSelect:
		err = s.toggleSelect(op.ID)
	case OpClearSelection:
		s.selection = nil
	case OpAddElement:
		err = s.addElement(op.Kind, op.Frame)
	case OpUpdateElement:
		err = s.updateElement(op.ID, op.Fields)
	case OpRemove:
		err = s.removeElements(op.IDs)
	case OpDuplicate:
		err = s.duplicateElements(op.IDs)
	case OpCopy:
		err = s.copySelection()
	case OpPaste:
		err = s.paste()
	case OpDragMove:
		if op.X == nil || op.Y == nil {
			err = fmt.Errorf("drag_move needs x and y")
		} else {
			guides, err = s.dragMove(op.ID, *op.X, *op.Y)
		}
	case OpDragEnd:
		s.dragEnd()
	case OpDragCancel:
		s.dragCancel()
	case OpResizeMove:
		if op.Frame == nil {
			err = fmt.Errorf("resize_move needs a frame")
		} else {
			err = s.resizeMove(op.ID, *op.Frame)
		}
	case OpResizeEnd:
		s.resizeEnd()
	case OpResizeCancel:
		s.resizeCancel()
	case OpNudge:
		err = s.nudge(op.IDs, op.DX, op.DY)
	case OpAlign:
		err = s.align(op.Edge)
	case OpDistribute:
		err = s.distribute(op.Axis)
	case OpReorder:
		err = s.reorder(op.ID, op.Dir)
	case OpSetLocked:
		if op.On == nil {
			err = fmt.Errorf("set_locked needs on")
		} else {
			err = s.setLocked(op.IDs, *op.On)
		}
	case OpSetVisible:
		if op.On == nil {
			err = fmt.Errorf("set_visible needs on")
		} else {
			err = s.setVisible(op.IDs, *op.On)
		}
	case OpUndo:
		s.undo()
	case OpRedo:
		s.redo()
	case OpSetZoom:
		if op.Zoom == nil {
			err = fmt.Errorf("set_zoom needs zoom")
		} else {
			s.setZoom(*op.Zoom)
		}
	case OpSetSnap:
		if op.On == nil {
			err = fmt.Errorf("set_snap needs on")
		} else {
			s.snapOn = *op.On
		}
	case OpAttachAsset:
		s.attachAsset(op.ID, op.AssetID)
	case OpRepair:
		err = s.repair()
	default:
		err = fmt.Errorf("unknown op type %q", op.Type)
	}

	if err != nil {
		return nil, err
	}
	return s.state(guides), nil
}
