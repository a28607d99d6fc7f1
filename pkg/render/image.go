package render

import (
	"bytes"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/panelforge/panelforge/pkg/errors"
	"github.com/panelforge/panelforge/pkg/pdf"
)

// prepareImage turns encoded image bytes into an embeddable raster.
//
// Grayscale and YCbCr JPEG files embed as-is with their original
// compression. Everything else, CMYK JPEGs included, is decoded and
// re-encoded as raw RGB with an alpha plane when one is present.
func prepareImage(data []byte) (pdf.ImageData, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return pdf.ImageData{}, errors.Wrap(errors.ErrCodeImageDecode, err, "read image header")
	}

	if format == "jpeg" {
		switch cfg.ColorModel {
		case color.GrayModel:
			return pdf.ImageData{Width: cfg.Width, Height: cfg.Height, DCT: data, DCTColors: 1}, nil
		case color.YCbCrModel:
			return pdf.ImageData{Width: cfg.Width, Height: cfg.Height, DCT: data, DCTColors: 3}, nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return pdf.ImageData{}, errors.Wrap(errors.ErrCodeImageDecode, err, "decode %s image", format)
	}
	return rasterize(imaging.Clone(img)), nil
}

// rasterize splits an image into the color and coverage planes the
// embedder takes. The alpha plane is omitted when fully opaque.
func rasterize(img *image.NRGBA) pdf.ImageData {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	rgb := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	opaque := true
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+4 : x*4+4]
			rgb = append(rgb, px[0], px[1], px[2])
			alpha = append(alpha, px[3])
			if px[3] != 0xff {
				opaque = false
			}
		}
	}

	out := pdf.ImageData{Width: w, Height: h, RGB: rgb}
	if !opaque {
		out.Alpha = alpha
	}
	return out
}
