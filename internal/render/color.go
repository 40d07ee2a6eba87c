// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"image/color"
	"strconv"
	"strings"
)

// ParseHex parses #RGB, #RRGGBB, and #RRGGBBAA color strings. Anything
// unparseable yields the fallback; a bad color in a stored document must
// never fail a render.
func ParseHex(s string, fallback color.RGBA) color.RGBA {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		r, okR := hexNibble(h[0])
		g, okG := hexNibble(h[1])
		b, okB := hexNibble(h[2])
		if !okR || !okG || !okB {
			return fallback
		}
		return color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}
	case 6:
		v, err := strconv.ParseUint(h, 16, 32)
		if err != nil {
			return fallback
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
	case 8:
		v, err := strconv.ParseUint(h, 16, 64)
		if err != nil {
			return fallback
		}
		return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	default:
		return fallback
	}
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

var (
	black     = color.RGBA{A: 255}
	white     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	lightGray = color.RGBA{R: 229, G: 231, B: 235, A: 255}
	midGray   = color.RGBA{R: 156, G: 163, B: 175, A: 255}
)
