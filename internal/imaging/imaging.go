// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalizes uploaded bitmaps into the canonical asset
// form: a PNG capped at 2048 px on the long edge. Accepted inputs are
// PNG, JPEG, GIF, and WebP, identified by content, never by filename.
// Normalizing at upload time means the render pipeline downloads one
// known-good format and never re-validates.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "golang.org/x/image/webp"
)

const (
	// MaxEdge is the long-edge cap of a normalized asset. Badge canvases
	// top out at 608 design units, so 2048 px leaves headroom for print
	// scale without storing photography-sized files.
	MaxEdge = 2048

	// ThumbEdge is the long-edge of the library preview.
	ThumbEdge = 320

	// MaxPixels rejects decompression bombs before full decode.
	MaxPixels = 50_000_000

	thumbQuality = 80
)

// Normalized is the canonical stored form of an upload.
type Normalized struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
}

// Normalize decodes, guards, resizes, and re-encodes an upload. The
// returned ContentType is always image/png.
func Normalize(data []byte) (*Normalized, error) {
	img, err := decodeGuarded(data)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := fit(b.Dx(), b.Dy(), MaxEdge)
	img = resize(img, w, h)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imaging: encode png: %w", err)
	}
	return &Normalized{
		Data:        buf.Bytes(),
		Width:       w,
		Height:      h,
		ContentType: "image/png",
	}, nil
}

// Thumbnail renders the 320 px library preview as JPEG.
func Thumbnail(data []byte) ([]byte, int, int, error) {
	img, err := decodeGuarded(data)
	if err != nil {
		return nil, 0, 0, err
	}

	b := img.Bounds()
	w, h := fit(b.Dx(), b.Dy(), ThumbEdge)
	img = resize(img, w, h)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("imaging: encode thumbnail: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// decodeGuarded sniffs the format, applies the pixel-bomb guard against
// the declared header dimensions, then fully decodes.
func decodeGuarded(data []byte) (image.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: unrecognized image data: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("imaging: degenerate %s dimensions %dx%d", format, cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("imaging: %s of %dx%d exceeds the %d pixel limit",
			format, cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode %s: %w", format, err)
	}
	return img, nil
}

// fit shrinks (w, h) proportionally so the long edge is at most maxEdge.
// Images already inside the cap keep their size; nothing upscales.
func fit(w, h, maxEdge int) (int, int) {
	if w <= maxEdge && h <= maxEdge {
		return w, h
	}
	if w >= h {
		h = int(math.Round(float64(h) * float64(maxEdge) / float64(w)))
		if h < 1 {
			h = 1
		}
		return maxEdge, h
	}
	w = int(math.Round(float64(w) * float64(maxEdge) / float64(h)))
	if w < 1 {
		w = 1
	}
	return w, maxEdge
}

func resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
