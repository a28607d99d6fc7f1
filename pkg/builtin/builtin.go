// Package builtin provides the bundled default artwork: a background
// for fresh title and end pages, and a stock logo mark.
//
// Both images are generated deterministically on first use and cached
// for the life of the process, so repeated fetches return identical
// bytes. When a project that still references built-ins is saved, the
// archive layer persists these bytes as ordinary assets, which keeps
// saved containers self-contained.
package builtin

import (
	"bytes"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/panelforge/panelforge/pkg/errors"
	"github.com/panelforge/panelforge/pkg/project"
)

const (
	backgroundW = 1024
	backgroundH = 768
	logoSize    = 512
)

var (
	once          sync.Once
	backgroundPNG []byte
	logoPNG       []byte
	genErr        error
)

func generate() {
	backgroundPNG, genErr = encodePNG(drawBackground())
	if genErr != nil {
		return
	}
	logoPNG, genErr = encodePNG(drawLogo())
}

// Background returns the default page background as PNG bytes.
func Background() ([]byte, error) {
	once.Do(generate)
	return backgroundPNG, genErr
}

// Logo returns the default logo mark as PNG bytes.
func Logo() ([]byte, error) {
	once.Do(generate)
	return logoPNG, genErr
}

// For returns the artwork for a built-in reference kind.
func For(kind project.BuiltinKind) ([]byte, error) {
	switch kind {
	case project.BuiltinBackground:
		return Background()
	case project.BuiltinLogo:
		return Logo()
	}
	return nil, errors.New(errors.ErrCodeAssetNotFound, "no built-in asset %q", kind)
}

// Ext returns the filename extension of the built-in artwork.
func Ext() string { return "png" }

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode built-in artwork")
	}
	return buf.Bytes(), nil
}

// drawBackground paints a vertical two-tone gradient, dark at the top.
func drawBackground() image.Image {
	top := color.NRGBA{R: 0x23, G: 0x2a, B: 0x3d, A: 0xff}
	bottom := color.NRGBA{R: 0x3d, G: 0x4a, B: 0x66, A: 0xff}

	img := image.NewNRGBA(image.Rect(0, 0, backgroundW, backgroundH))
	for y := 0; y < backgroundH; y++ {
		c := lerpColor(top, bottom, float64(y)/float64(backgroundH-1))
		for x := 0; x < backgroundW; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// drawLogo paints the stock mark: a dark tile holding a 3x2 grid of
// panels, one of them filled as an accent. Transparent outside the tile.
func drawLogo() image.Image {
	var (
		tile   = color.NRGBA{R: 0x2b, G: 0x32, B: 0x42, A: 0xff}
		panel  = color.NRGBA{R: 0xf5, G: 0xf1, B: 0xe8, A: 0xff}
		accent = color.NRGBA{R: 0xd9, G: 0x8e, B: 0x4a, A: 0xff}
	)

	img := image.NewNRGBA(image.Rect(0, 0, logoSize, logoSize))

	const (
		inset = 32  // transparent border around the tile
		pad   = 40  // tile edge to panel grid
		gap   = 24  // between panels
		cols  = 3
		rows  = 2
	)

	fillRect(img, inset, inset, logoSize-inset, logoSize-inset, tile)

	gridW := logoSize - 2*inset - 2*pad
	gridH := gridW * 2 / 3 // panels keep a wide aspect
	cellW := (gridW - (cols-1)*gap) / cols
	cellH := (gridH - (rows-1)*gap) / rows
	x0 := inset + pad
	y0 := (logoSize - gridH) / 2

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := panel
			if row == 1 && col == 2 {
				c = accent
			}
			x := x0 + col*(cellW+gap)
			y := y0 + row*(cellH+gap)
			fillRect(img, x, y, x+cellW, y+cellH, c)
		}
	}
	return img
}

func fillRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xff}
}
