// Package layout holds the pure geometry and text measurement logic
// behind document rendering.
//
// Everything in this package is a side-effect-free function from sizes
// and text to positions. Nothing here draws, loads fonts, or touches
// assets; the renderer supplies measured widths through the Measure
// callback and applies the returned placements. Coordinates are
// top-left based: x grows right, y grows down.
package layout

import "github.com/panelforge/panelforge/pkg/project"

// Rect is an axis-aligned box in top-left page coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Fit describes where an image is drawn relative to a target box. The
// draw rectangle may exceed the box (cover) or underfill it (contain);
// offsets are relative to the box origin and negative when the image
// bleeds out.
type Fit struct {
	W, H float64 // drawn size
	X, Y float64 // offset from the box origin
}

// FitCover scales an image to fully cover a box, preserving aspect
// ratio and centering the overflow. Images wider than the box shape
// scale to the box height and crop left and right; taller images scale
// to the box width and crop top and bottom.
func FitCover(imgW, imgH, boxW, boxH float64) Fit {
	if imgW <= 0 || imgH <= 0 || boxW <= 0 || boxH <= 0 {
		return Fit{}
	}
	imgR := imgW / imgH
	boxR := boxW / boxH

	var f Fit
	if imgR > boxR {
		f.H = boxH
		f.W = boxH * imgR
	} else {
		f.W = boxW
		f.H = boxW / imgR
	}
	f.X = (boxW - f.W) / 2
	f.Y = (boxH - f.H) / 2
	return f
}

// FitContain scales an image to fit entirely inside a box, preserving
// aspect ratio and centering the slack.
func FitContain(imgW, imgH, boxW, boxH float64) Fit {
	if imgW <= 0 || imgH <= 0 || boxW <= 0 || boxH <= 0 {
		return Fit{}
	}
	imgR := imgW / imgH
	boxR := boxW / boxH

	var f Fit
	if imgR > boxR {
		f.W = boxW
		f.H = boxW / imgR
	} else {
		f.H = boxH
		f.W = boxH * imgR
	}
	f.X = (boxW - f.W) / 2
	f.Y = (boxH - f.H) / 2
	return f
}

// GridCells lays out a row-major grid of equal cells inside the page
// margins. gutterX separates columns, gutterY separates rows.
func GridCells(pageW, pageH, margin, gutterX, gutterY float64, cols, rows int) []Rect {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	innerW := pageW - 2*margin
	innerH := pageH - 2*margin
	cellW := (innerW - float64(cols-1)*gutterX) / float64(cols)
	cellH := (innerH - float64(rows-1)*gutterY) / float64(rows)

	cells := make([]Rect, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cells = append(cells, Rect{
				X: margin + float64(col)*(cellW+gutterX),
				Y: margin + float64(row)*(cellH+gutterY),
				W: cellW,
				H: cellH,
			})
		}
	}
	return cells
}

// LogoSide returns the bounding square side for a logo size class.
// Unknown classes fall back to M.
func LogoSide(size project.SizeClass) float64 {
	switch size {
	case project.SizeS:
		return 64
	case project.SizeL:
		return 128
	case project.SizeXL:
		return 192
	default:
		return 96
	}
}

// FitLogo scales an image into the bounding square of a size class:
// first to the square's width, then, if the result is still too tall,
// down again to its height.
func FitLogo(imgW, imgH float64, size project.SizeClass) (w, h float64) {
	if imgW <= 0 || imgH <= 0 {
		return 0, 0
	}
	side := LogoSide(size)
	w = side
	h = side * imgH / imgW
	if h > side {
		w = side * side / h
		h = side
	}
	return w, h
}

// PlaceLogo returns the top-left position for a logo of the given size
// at one of the nine anchors. The logo is inset from the page edge by
// half the page margin.
func PlaceLogo(anchor project.Anchor, pageW, pageH, margin, logoW, logoH float64) (x, y float64) {
	inset := margin / 2

	switch anchor {
	case project.AnchorTopLeft, project.AnchorMiddleLeft, project.AnchorBottomLeft:
		x = inset
	case project.AnchorTopCenter, project.AnchorCenter, project.AnchorBottomCenter:
		x = (pageW - logoW) / 2
	default: // right column
		x = pageW - inset - logoW
	}

	switch anchor {
	case project.AnchorTopLeft, project.AnchorTopCenter, project.AnchorTopRight:
		y = inset
	case project.AnchorMiddleLeft, project.AnchorCenter, project.AnchorMiddleRight:
		y = (pageH - logoH) / 2
	default: // bottom row
		y = pageH - inset - logoH
	}
	return x, y
}
