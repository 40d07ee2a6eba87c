// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// The embedded Go font families. Templates name a family; unknown names
// fall back to the proportional family so a stale document still
// renders. Parsing happens once per process.
const (
	FamilyGo     = "Go"
	FamilyGoMono = "Go Mono"
)

type fontVariants struct {
	regular    *truetype.Font
	bold       *truetype.Font
	italic     *truetype.Font
	boldItalic *truetype.Font
}

var (
	fontsOnce sync.Once
	fontsErr  error
	families  map[string]*fontVariants
)

func loadFonts() {
	parse := func(ttf []byte) *truetype.Font {
		if fontsErr != nil {
			return nil
		}
		f, err := truetype.Parse(ttf)
		if err != nil {
			fontsErr = fmt.Errorf("parse embedded font: %w", err)
			return nil
		}
		return f
	}
	families = map[string]*fontVariants{
		FamilyGo: {
			regular:    parse(goregular.TTF),
			bold:       parse(gobold.TTF),
			italic:     parse(goitalic.TTF),
			boldItalic: parse(gobolditalic.TTF),
		},
		FamilyGoMono: {
			regular:    parse(gomono.TTF),
			bold:       parse(gomonobold.TTF),
			italic:     parse(gomonoitalic.TTF),
			boldItalic: parse(gomonobolditalic.TTF),
		},
	}
}

// pickFont resolves family name, weight, and style to a parsed font.
func pickFont(family string, bold, italic bool) (*truetype.Font, error) {
	fontsOnce.Do(loadFonts)
	if fontsErr != nil {
		return nil, fontsErr
	}
	v, ok := families[family]
	if !ok {
		v = families[FamilyGo]
	}
	switch {
	case bold && italic:
		return v.boldItalic, nil
	case bold:
		return v.bold, nil
	case italic:
		return v.italic, nil
	default:
		return v.regular, nil
	}
}

type faceKey struct {
	family string
	bold   bool
	italic bool
	size   float64
}

// faceCache hands out font faces for one render pass. Faces carry
// mutable rasterizer state and are not safe to share across goroutines,
// so every renderer owns its own cache; the parsed fonts behind them are
// shared and immutable.
type faceCache struct {
	faces map[faceKey]font.Face
}

func newFaceCache() *faceCache {
	return &faceCache{faces: make(map[faceKey]font.Face)}
}

// face returns a face sized in device pixels (the Go fonts map one point
// to one pixel at 72 dpi, so callers pass canvas units times scale).
func (fc *faceCache) face(family string, bold, italic bool, sizePx float64) (font.Face, error) {
	if sizePx <= 0 {
		sizePx = 16
	}
	key := faceKey{family: family, bold: bold, italic: italic, size: sizePx}
	if f, ok := fc.faces[key]; ok {
		return f, nil
	}
	f, err := pickFont(family, bold, italic)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	fc.faces[key] = face
	return face, nil
}

// fixedToFloat converts a 26.6 fixed-point font measure to pixels.
func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
