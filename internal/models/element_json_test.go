package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestElementsRoundTrip verifies a document with every element kind
// survives the JSONB codec with concrete types and variant fields intact.
func TestElementsRoundTrip(t *testing.T) {
	doc := Elements{
		&Text{
			Base:       Base{ID: "t1", Frame: Frame{X: 10, Y: 20, W: 200, H: 40, Rotation: 15}, Z: 3, Opacity: 80, Visible: true},
			Content:    "{{name}}",
			FontFamily: "Go",
			FontSize:   18,
			Bold:       true,
			Case:       CaseUppercase,
			Color:      "#111827",
			Align:      AlignCenter,
			Shadow:     &Shadow{OffsetX: 1, OffsetY: 2, Color: "#00000040"},
		},
		&Shape{
			Base:         Base{ID: "s1", Frame: Frame{W: 100, H: 100}, Z: 1, Opacity: 100, Visible: true, Locked: true},
			Subtype:      ShapeRounded,
			Fill:         "#3B82F6",
			CornerRadius: 8,
			Gradient:     &Gradient{Kind: GradientRadial, From: "#FFFFFF", To: "#000000"},
		},
		&Barcode{
			Base:      Base{ID: "b1", Frame: Frame{W: 150, H: 50}, Z: 2, Opacity: 100, Visible: true},
			Content:   "{{registration_number}}",
			Symbology: SymbologyEAN13,
		},
		&Line{
			Base:  Base{ID: "l1", Frame: Frame{W: 200, H: 4}, Opacity: 100, Visible: true},
			Color: "#9CA3AF",
			Dash:  DashDotted,
		},
		&Image{
			Base:    Base{ID: "i1", Frame: Frame{W: 80, H: 80}, Opacity: 100, Visible: true},
			AssetID: "5f1c9d9e-0000-0000-0000-000000000001",
		},
		&Photo{
			Base: Base{ID: "p1", Frame: Frame{W: 96, H: 96}, Opacity: 100, Visible: true},
		},
		&QRCode{
			Base:    Base{ID: "q1", Frame: Frame{W: 120, H: 120}, Opacity: 100, Visible: true},
			Content: "{{registration_number}}",
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Elements
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != len(doc) {
		t.Fatalf("decoded %d elements, want %d", len(got), len(doc))
	}

	txt, ok := got[0].(*Text)
	if !ok {
		t.Fatalf("element 0 decoded as %T, want *Text", got[0])
	}
	if txt.Content != "{{name}}" || txt.Case != CaseUppercase || !txt.Bold {
		t.Errorf("text fields lost in round trip: %+v", txt)
	}
	if txt.Shadow == nil || txt.Shadow.OffsetY != 2 {
		t.Error("text shadow lost in round trip")
	}
	if txt.Rotation != 15 || txt.Opacity != 80 {
		t.Errorf("base fields lost: rotation=%g opacity=%d", txt.Rotation, txt.Opacity)
	}

	shp, ok := got[1].(*Shape)
	if !ok {
		t.Fatalf("element 1 decoded as %T, want *Shape", got[1])
	}
	if shp.Subtype != ShapeRounded || !shp.Locked || shp.Gradient == nil {
		t.Errorf("shape fields lost in round trip: %+v", shp)
	}

	bc, ok := got[2].(*Barcode)
	if !ok {
		t.Fatalf("element 2 decoded as %T, want *Barcode", got[2])
	}
	if bc.Symbology != SymbologyEAN13 {
		t.Errorf("barcode symbology = %q, want ean13", bc.Symbology)
	}

	ln, ok := got[3].(*Line)
	if !ok {
		t.Fatalf("element 3 decoded as %T, want *Line", got[3])
	}
	if ln.Dash != DashDotted {
		t.Errorf("line dash = %q, want dotted", ln.Dash)
	}

	img, ok := got[4].(*Image)
	if !ok {
		t.Fatalf("element 4 decoded as %T, want *Image", got[4])
	}
	if img.AssetID == "" {
		t.Error("image asset id lost in round trip")
	}

	if _, ok := got[5].(*Photo); !ok {
		t.Fatalf("element 5 decoded as %T, want *Photo", got[5])
	}

	qr, ok := got[6].(*QRCode)
	if !ok {
		t.Fatalf("element 6 decoded as %T, want *QRCode", got[6])
	}
	if qr.Content != "{{registration_number}}" {
		t.Errorf("qr content = %q lost in round trip", qr.Content)
	}
}

// TestElementMarshalCarriesKind verifies the discriminator lands in the
// encoded object where the designer UI and the store both expect it.
func TestElementMarshalCarriesKind(t *testing.T) {
	el := &QRCode{Base: Base{ID: "q1", Frame: Frame{W: 120, H: 120}, Opacity: 100, Visible: true}, Content: "REG-1"}
	data, err := json.Marshal(el)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"qr_code"`) {
		t.Errorf("encoded element missing kind tag: %s", data)
	}
}

// TestElementsUnmarshalRejectsUnknownKind verifies documents with an
// unrecognized variant are refused rather than silently dropped.
func TestElementsUnmarshalRejectsUnknownKind(t *testing.T) {
	raw := `[{"kind":"hologram","id":"x1","x":0,"y":0,"w":10,"h":10}]`
	var got Elements
	err := json.Unmarshal([]byte(raw), &got)
	if err == nil {
		t.Fatal("unmarshal accepted unknown element kind")
	}
	if !strings.Contains(err.Error(), "hologram") {
		t.Errorf("error %q does not name the offending kind", err)
	}
}

// TestElementsUnmarshalDefaults verifies hand-authored documents that
// omit visible and opacity decode to a paintable element rather than an
// invisible one, while explicit values survive.
func TestElementsUnmarshalDefaults(t *testing.T) {
	raw := `[
		{"kind":"text","id":"t1","x":0,"y":0,"w":100,"h":30,"content":"hi"},
		{"kind":"shape","id":"s1","x":0,"y":40,"w":50,"h":50,"visible":false,"opacity":40}
	]`
	var got Elements
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d elements, want 2", len(got))
	}

	if b := got[0].Common(); !b.Visible || b.Opacity != 100 {
		t.Errorf("omitted fields decoded as visible=%t opacity=%d, want true/100", b.Visible, b.Opacity)
	}
	if b := got[1].Common(); b.Visible || b.Opacity != 40 {
		t.Errorf("explicit fields overridden: visible=%t opacity=%d, want false/40", b.Visible, b.Opacity)
	}
}

// TestElementsMarshalEmpty verifies nil and empty documents both encode
// as [] so API consumers never see null.
func TestElementsMarshalEmpty(t *testing.T) {
	for _, es := range []Elements{nil, {}} {
		data, err := json.Marshal(es)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("marshal = %s, want []", data)
		}
	}
}
