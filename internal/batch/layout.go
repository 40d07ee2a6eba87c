// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package batch

import "badgepress/internal/models"

// A4 portrait sheet geometry in millimeters.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	marginMM     = 10.0
	gutterMM     = 5.0
)

// perPageGrids maps badges-per-sheet to its column and row split. These
// are the only accepted values; anything else fails request validation.
var perPageGrids = map[int][2]int{
	1: {1, 1},
	2: {1, 2},
	4: {2, 2},
	6: {2, 3},
	8: {2, 4},
}

// PerPageValid reports whether n is an accepted badges-per-sheet count.
func PerPageValid(n int) bool {
	_, ok := perPageGrids[n]
	return ok
}

// cell is one badge slot on the sheet, in millimeters from the page
// origin. W and H are the badge placement, already aspect-fitted and
// centered inside the slot.
type cell struct {
	X, Y, W, H float64
}

// sheetLayout computes the badge placements for one full sheet: the
// grid for perPage, each slot shrunk or grown to the largest
// aspect-preserving fit of the badge's physical size, centered.
func sheetLayout(perPage int, canvas models.Canvas) []cell {
	grid := perPageGrids[perPage]
	cols, rows := grid[0], grid[1]

	slotW := (pageWidthMM - 2*marginMM - float64(cols-1)*gutterMM) / float64(cols)
	slotH := (pageHeightMM - 2*marginMM - float64(rows-1)*gutterMM) / float64(rows)

	badgeW := canvas.WidthMM
	badgeH := canvas.HeightMM
	scale := slotW / badgeW
	if s := slotH / badgeH; s < scale {
		scale = s
	}
	w := badgeW * scale
	h := badgeH * scale

	cells := make([]cell, 0, perPage)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			slotX := marginMM + float64(col)*(slotW+gutterMM)
			slotY := marginMM + float64(row)*(slotH+gutterMM)
			cells = append(cells, cell{
				X: slotX + (slotW-w)/2,
				Y: slotY + (slotH-h)/2,
				W: w,
				H: h,
			})
		}
	}
	return cells
}

// pageCount is the number of sheets needed for n badges.
func pageCount(n, perPage int) int {
	if n <= 0 {
		return 0
	}
	return (n + perPage - 1) / perPage
}
