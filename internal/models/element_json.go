// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// element_json.go is the wire codec for the element sum type. Elements
// marshal to a flat JSON object carrying a "kind" discriminator; decoding
// switches on that tag and rejects kinds it does not know. The same shape
// is stored in the templates JSONB column and spoken by the designer API.
package models

import (
	"encoding/json"
	"fmt"
)

// Elements is the ordered element array of a template. Array order is
// stable and breaks z-index ties; it is not itself the paint order.
type Elements []Element

// MarshalJSON encodes an empty document as [], never null, so consumers
// can always iterate.
func (es Elements) MarshalJSON() ([]byte, error) {
	if es == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Element(es))
}

// UnmarshalJSON decodes each array entry through the kind discriminator.
func (es *Elements) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("elements array: %w", err)
	}
	out := make(Elements, 0, len(raws))
	for i, raw := range raws {
		el, err := DecodeElement(raw)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, el)
	}
	*es = out
	return nil
}

// DecodeElement decodes one element object by its "kind" tag. Absent
// visible and opacity keys take the constructor defaults; the encoder
// always writes both, so only hand-authored documents hit this path.
func DecodeElement(raw json.RawMessage) (Element, error) {
	var probe struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("element kind: %w", err)
	}

	var el Element
	switch probe.Kind {
	case KindText:
		el = &Text{}
	case KindShape:
		el = &Shape{}
	case KindLine:
		el = &Line{}
	case KindImage:
		el = &Image{}
	case KindPhoto:
		el = &Photo{}
	case KindQRCode:
		el = &QRCode{}
	case KindBarcode:
		el = &Barcode{}
	default:
		return nil, fmt.Errorf("unknown element kind %q", probe.Kind)
	}

	base := el.Common()
	base.Opacity = 100
	base.Visible = true
	if err := json.Unmarshal(raw, el); err != nil {
		return nil, fmt.Errorf("decode %s element: %w", probe.Kind, err)
	}
	return el, nil
}

// tagged wraps a variant's fields with the kind discriminator on encode.
// The alias types strip MarshalJSON so encoding does not recurse.

func (t *Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindText, (*alias)(t)})
}

func (s *Shape) MarshalJSON() ([]byte, error) {
	type alias Shape
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindShape, (*alias)(s)})
}

func (l *Line) MarshalJSON() ([]byte, error) {
	type alias Line
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindLine, (*alias)(l)})
}

func (i *Image) MarshalJSON() ([]byte, error) {
	type alias Image
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindImage, (*alias)(i)})
}

func (p *Photo) MarshalJSON() ([]byte, error) {
	type alias Photo
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindPhoto, (*alias)(p)})
}

func (q *QRCode) MarshalJSON() ([]byte, error) {
	type alias QRCode
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindQRCode, (*alias)(q)})
}

func (b *Barcode) MarshalJSON() ([]byte, error) {
	type alias Barcode
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindBarcode, (*alias)(b)})
}
