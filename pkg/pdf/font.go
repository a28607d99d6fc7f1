package pdf

import (
	"fmt"

	"github.com/panelforge/panelforge/pkg/errors"
)

// Font descriptor flag bits (PDF 32000-1, table 123).
const (
	flagNonsymbolic = 1 << 5
	flagItalic      = 1 << 6
)

// stemV is written as a fixed estimate; the value only guides viewers
// that synthesize fonts when embedding is ignored.
const stemV = 70

// FontInfo describes a TrueType font to embed. All metric fields use a
// 1000-unit em square. Widths holds one advance per code from
// FirstChar through LastChar.
type FontInfo struct {
	PostScriptName string
	TTF            []byte

	FirstChar int
	LastChar  int
	Widths    []int

	Ascent      int
	Descent     int
	CapHeight   int
	ItalicAngle float64
	Italic      bool
	BBox        [4]int
}

// EmbedFont embeds a TrueType font as a simple font with the
// single-byte text encoding and returns its resource name. The whole
// font program is embedded, uncompressed glyph-wise but flate-coded as
// a stream.
func (d *Document) EmbedFont(info FontInfo) (Name, error) {
	if len(info.TTF) == 0 {
		return "", errors.New(errors.ErrCodeFontEmbed, "font %q has no program bytes", info.PostScriptName)
	}
	if want := info.LastChar - info.FirstChar + 1; len(info.Widths) != want {
		return "", errors.New(errors.ErrCodeFontEmbed,
			"font %q has %d widths, want %d", info.PostScriptName, len(info.Widths), want)
	}

	fileRef, err := d.pw.AddStream(Dict{
		"Length1": Integer(len(info.TTF)),
	}, info.TTF, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFontEmbed, err, "embed font file %q", info.PostScriptName)
	}

	flags := flagNonsymbolic
	if info.Italic {
		flags |= flagItalic
	}
	descRef, err := d.pw.Add(Dict{
		"Type":        Name("FontDescriptor"),
		"FontName":    Name(info.PostScriptName),
		"Flags":       Integer(flags),
		"FontBBox":    intArray(info.BBox[:]),
		"ItalicAngle": Real(info.ItalicAngle),
		"Ascent":      Integer(info.Ascent),
		"Descent":     Integer(info.Descent),
		"CapHeight":   Integer(info.CapHeight),
		"StemV":       Integer(stemV),
		"FontFile2":   fileRef,
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFontEmbed, err, "write descriptor for %q", info.PostScriptName)
	}

	fontRef, err := d.pw.Add(Dict{
		"Type":           Name("Font"),
		"Subtype":        Name("TrueType"),
		"BaseFont":       Name(info.PostScriptName),
		"FirstChar":      Integer(info.FirstChar),
		"LastChar":       Integer(info.LastChar),
		"Widths":         intArray(info.Widths),
		"FontDescriptor": descRef,
		"Encoding":       Name("WinAnsiEncoding"),
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFontEmbed, err, "write font dict for %q", info.PostScriptName)
	}

	name := Name(fmt.Sprintf("F%d", len(d.fontDict)+1))
	d.fontDict[name] = fontRef
	return name, nil
}

func intArray(vals []int) Array {
	arr := make(Array, len(vals))
	for i, v := range vals {
		arr[i] = Integer(v)
	}
	return arr
}
