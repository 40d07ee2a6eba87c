// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
)

var geometryFields = map[string]bool{
	"x":        true,
	"y":        true,
	"w":        true,
	"h":        true,
	"rotation": true,
}

// TouchesGeometry reports whether a partial update would move or resize
// the element. Locked elements accept style updates but not these.
func TouchesGeometry(fields map[string]json.RawMessage) bool {
	for k := range fields {
		if geometryFields[k] {
			return true
		}
	}
	return false
}

// ApplyUpdate merges a partial JSON field map into el in place. Fields
// absent from the map keep their current values. The id and kind of an
// element are immutable and rejected; unknown fields are ignored like any
// JSON decode. The merged element is normalized before it replaces the
// original, so a bad opacity or rotation can never land in the document.
func ApplyUpdate(el Element, fields map[string]json.RawMessage) error {
	if len(fields) == 0 {
		return nil
	}
	if _, ok := fields["id"]; ok {
		return fmt.Errorf("element id is immutable")
	}
	if _, ok := fields["kind"]; ok {
		return fmt.Errorf("element kind is immutable")
	}

	current, err := json.Marshal(el)
	if err != nil {
		return fmt.Errorf("encode element: %w", err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(current, &merged); err != nil {
		return fmt.Errorf("reread element: %w", err)
	}
	for k, v := range fields {
		merged[k] = v
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("merge element: %w", err)
	}

	next, err := DecodeElement(data)
	if err != nil {
		return err
	}
	next.Common().Normalize()

	switch dst := el.(type) {
	case *Text:
		*dst = *next.(*Text)
	case *Shape:
		*dst = *next.(*Shape)
	case *Line:
		*dst = *next.(*Line)
	case *Image:
		*dst = *next.(*Image)
	case *Photo:
		*dst = *next.(*Photo)
	case *QRCode:
		*dst = *next.(*QRCode)
	case *Barcode:
		*dst = *next.(*Barcode)
	default:
		return fmt.Errorf("unknown element type %T", el)
	}
	return nil
}
