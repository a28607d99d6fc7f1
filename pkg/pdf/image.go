package pdf

import (
	"fmt"

	"github.com/panelforge/panelforge/pkg/errors"
)

// ImageData is a raster prepared for embedding. Exactly one of DCT and
// RGB must be set.
//
// DCT carries a complete JPEG file, stored as-is with the DCTDecode
// filter; DCTColors must say how many components the JPEG has (1 for
// grayscale, 3 for YCbCr). RGB carries raw 8-bit samples, three bytes
// per pixel in row-major order, flate-compressed on embedding. Alpha
// optionally carries one 8-bit coverage byte per pixel and becomes a
// soft mask; it is only honored for RGB payloads since JPEG files keep
// no alpha.
type ImageData struct {
	Width  int
	Height int

	DCT       []byte
	DCTColors int

	RGB   []byte
	Alpha []byte
}

// EmbedImage writes the image as an XObject and returns its resource
// name.
func (d *Document) EmbedImage(img ImageData) (Name, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return "", errors.New(errors.ErrCodeImageDecode, "image size %dx%d is not positive", img.Width, img.Height)
	}

	dict := Dict{
		"Type":             Name("XObject"),
		"Subtype":          Name("Image"),
		"Width":            Integer(img.Width),
		"Height":           Integer(img.Height),
		"BitsPerComponent": Integer(8),
	}

	var ref Reference
	switch {
	case img.DCT != nil:
		switch img.DCTColors {
		case 1:
			dict["ColorSpace"] = Name("DeviceGray")
		case 3:
			dict["ColorSpace"] = Name("DeviceRGB")
		default:
			return "", errors.New(errors.ErrCodeImageDecode, "unsupported JPEG component count %d", img.DCTColors)
		}
		dict["Filter"] = Name("DCTDecode")

		r, err := d.pw.AddStream(dict, img.DCT, false)
		if err != nil {
			return "", err
		}
		ref = r

	case img.RGB != nil:
		if want := img.Width * img.Height * 3; len(img.RGB) != want {
			return "", errors.New(errors.ErrCodeImageDecode,
				"RGB payload is %d bytes, want %d", len(img.RGB), want)
		}
		dict["ColorSpace"] = Name("DeviceRGB")

		if img.Alpha != nil {
			maskRef, err := d.embedSoftMask(img)
			if err != nil {
				return "", err
			}
			dict["SMask"] = maskRef
		}

		r, err := d.pw.AddStream(dict, img.RGB, true)
		if err != nil {
			return "", err
		}
		ref = r

	default:
		return "", errors.New(errors.ErrCodeImageDecode, "image has no payload")
	}

	name := Name(fmt.Sprintf("Im%d", len(d.xobjDict)+1))
	d.xobjDict[name] = ref
	return name, nil
}

func (d *Document) embedSoftMask(img ImageData) (Reference, error) {
	if want := img.Width * img.Height; len(img.Alpha) != want {
		return Reference{}, errors.New(errors.ErrCodeImageDecode,
			"alpha payload is %d bytes, want %d", len(img.Alpha), want)
	}
	return d.pw.AddStream(Dict{
		"Type":             Name("XObject"),
		"Subtype":          Name("Image"),
		"Width":            Integer(img.Width),
		"Height":           Integer(img.Height),
		"ColorSpace":       Name("DeviceGray"),
		"BitsPerComponent": Integer(8),
	}, img.Alpha, true)
}
