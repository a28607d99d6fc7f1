package layout

import (
	"math"
	"testing"

	"github.com/panelforge/panelforge/pkg/project"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestFitCover(t *testing.T) {
	tests := []struct {
		name                   string
		imgW, imgH, boxW, boxH float64
		want                   Fit
	}{
		{
			// Image shape wider than box shape: height matches, sides crop.
			"wider than box", 200, 100, 160, 90,
			Fit{W: 180, H: 90, X: -10, Y: 0},
		},
		{
			// Image shape taller than box shape: width matches, top/bottom crop.
			"taller than box", 100, 100, 160, 90,
			Fit{W: 160, H: 160, X: 0, Y: -35},
		},
		{
			"matching aspect", 320, 180, 160, 90,
			Fit{W: 160, H: 90, X: 0, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitCover(tt.imgW, tt.imgH, tt.boxW, tt.boxH)
			if !approx(got.W, tt.want.W) || !approx(got.H, tt.want.H) ||
				!approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) {
				t.Errorf("FitCover() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFitContain(t *testing.T) {
	tests := []struct {
		name                   string
		imgW, imgH, boxW, boxH float64
		want                   Fit
	}{
		{
			"wider than box", 200, 100, 160, 90,
			Fit{W: 160, H: 80, X: 0, Y: 5},
		},
		{
			"taller than box", 100, 100, 160, 90,
			Fit{W: 90, H: 90, X: 35, Y: 0},
		},
		{
			"small image scales up", 32, 18, 160, 90,
			Fit{W: 160, H: 90, X: 0, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitContain(tt.imgW, tt.imgH, tt.boxW, tt.boxH)
			if !approx(got.W, tt.want.W) || !approx(got.H, tt.want.H) ||
				!approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) {
				t.Errorf("FitContain() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFitInvariants(t *testing.T) {
	shapes := []struct{ w, h float64 }{
		{100, 100}, {1920, 1080}, {300, 700}, {7, 3}, {1024, 768},
	}
	const boxW, boxH = 300, 168.75

	for _, s := range shapes {
		cover := FitCover(s.w, s.h, boxW, boxH)
		if cover.W < boxW-eps || cover.H < boxH-eps {
			t.Errorf("cover %gx%g: draw %gx%g does not cover box", s.w, s.h, cover.W, cover.H)
		}
		if !approx(cover.W, boxW) && !approx(cover.H, boxH) {
			t.Errorf("cover %gx%g: neither axis matches the box", s.w, s.h)
		}

		contain := FitContain(s.w, s.h, boxW, boxH)
		if contain.W > boxW+eps || contain.H > boxH+eps {
			t.Errorf("contain %gx%g: draw %gx%g escapes box", s.w, s.h, contain.W, contain.H)
		}
		if !approx(contain.W, boxW) && !approx(contain.H, boxH) {
			t.Errorf("contain %gx%g: neither axis matches the box", s.w, s.h)
		}

		// Both keep the source aspect ratio.
		srcR := s.w / s.h
		if !approx(cover.W/cover.H, srcR) || !approx(contain.W/contain.H, srcR) {
			t.Errorf("fit of %gx%g distorted the aspect ratio", s.w, s.h)
		}
	}
}

func TestFitDegenerate(t *testing.T) {
	if got := FitCover(0, 100, 10, 10); got != (Fit{}) {
		t.Errorf("FitCover(0 width) = %+v, want zero", got)
	}
	if got := FitContain(100, 0, 10, 10); got != (Fit{}) {
		t.Errorf("FitContain(0 height) = %+v, want zero", got)
	}
}

func TestGridCells(t *testing.T) {
	cells := GridCells(1024, 768, 40, 22, 24, 3, 2)

	if len(cells) != 6 {
		t.Fatalf("got %d cells, want 6", len(cells))
	}

	want := []Rect{
		{X: 40, Y: 40, W: 300, H: 332},
		{X: 362, Y: 40, W: 300, H: 332},
		{X: 684, Y: 40, W: 300, H: 332},
		{X: 40, Y: 396, W: 300, H: 332},
		{X: 362, Y: 396, W: 300, H: 332},
		{X: 684, Y: 396, W: 300, H: 332},
	}
	for i, cell := range cells {
		if !approx(cell.X, want[i].X) || !approx(cell.Y, want[i].Y) ||
			!approx(cell.W, want[i].W) || !approx(cell.H, want[i].H) {
			t.Errorf("cell %d = %+v, want %+v", i, cell, want[i])
		}
	}

	// Row-major: the fourth cell starts the second row.
	if cells[3].Y <= cells[2].Y {
		t.Error("cells are not row-major")
	}

	// The grid stays inside the margins.
	last := cells[5]
	if last.X+last.W > 1024-40+eps || last.Y+last.H > 768-40+eps {
		t.Errorf("grid escapes margins: last cell %+v", last)
	}
}

func TestFitLogo(t *testing.T) {
	tests := []struct {
		name       string
		imgW, imgH float64
		size       project.SizeClass
		wantW      float64
		wantH      float64
	}{
		{"wide logo", 200, 100, project.SizeM, 96, 48},
		{"tall logo rescaled", 100, 200, project.SizeM, 48, 96},
		{"square logo", 512, 512, project.SizeM, 96, 96},
		{"size S", 512, 512, project.SizeS, 64, 64},
		{"size L", 512, 512, project.SizeL, 128, 128},
		{"size XL", 512, 512, project.SizeXL, 192, 192},
		{"unknown size falls back to M", 512, 512, "??", 96, 96},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitLogo(tt.imgW, tt.imgH, tt.size)
			if !approx(w, tt.wantW) || !approx(h, tt.wantH) {
				t.Errorf("FitLogo() = %g x %g, want %g x %g", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPlaceLogo(t *testing.T) {
	const (
		pageW  = 1024.0
		pageH  = 768.0
		margin = 40.0
		logoW  = 96.0
		logoH  = 48.0
	)

	tests := []struct {
		anchor project.Anchor
		wantX  float64
		wantY  float64
	}{
		{project.AnchorTopLeft, 20, 20},
		{project.AnchorTopCenter, 464, 20},
		{project.AnchorTopRight, 908, 20},
		{project.AnchorMiddleLeft, 20, 360},
		{project.AnchorCenter, 464, 360},
		{project.AnchorMiddleRight, 908, 360},
		{project.AnchorBottomLeft, 20, 700},
		{project.AnchorBottomCenter, 464, 700},
		{project.AnchorBottomRight, 908, 700},
	}

	for _, tt := range tests {
		t.Run(string(tt.anchor), func(t *testing.T) {
			x, y := PlaceLogo(tt.anchor, pageW, pageH, margin, logoW, logoH)
			if !approx(x, tt.wantX) || !approx(y, tt.wantY) {
				t.Errorf("PlaceLogo(%s) = (%g, %g), want (%g, %g)", tt.anchor, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}
