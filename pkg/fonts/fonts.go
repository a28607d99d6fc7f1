// Package fonts provides the built-in document faces.
//
// The faces come from the Go font family, compiled into the binary via
// the gofont packages, so documents render identically without any
// external font files. Four faces are exposed:
//
//   - Body: Go Regular, panel scripts and subheaders
//   - Emphasis: Go Italic, bracketed emphasis spans in scripts
//   - Label: Go Bold, panel numbers and captions
//   - Display: Go Smallcaps, headers and the closing line
//
// Each face is parsed once and reduced to the tables the layout and
// embedding layers need: per-character advance widths in a 1000-unit em
// square and the descriptor metrics. After the catalog is built a Face
// is immutable and safe for concurrent use.
package fonts

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/panelforge/panelforge/pkg/errors"
)

// FaceID names one of the document faces.
type FaceID string

// Document faces.
const (
	Body     FaceID = "body"
	Emphasis FaceID = "emphasis"
	Label    FaceID = "label"
	Display  FaceID = "display"
)

// Face is a parsed document face with precomputed metrics. All metric
// values use a 1000-unit em square regardless of the source font's
// units per em.
type Face struct {
	ID             FaceID
	PostScriptName string
	TTF            []byte // raw font program, embedded whole

	// Widths holds advance widths indexed by document byte code.
	// Codes below 32 and unmapped codes are zero.
	Widths [256]int

	Ascent      int // above baseline, positive
	Descent     int // below baseline, negative
	CapHeight   int
	LineGap     int
	ItalicAngle float64
	BBox        [4]int // xmin, ymin, xmax, ymax, y up
	Italic      bool
}

// Width returns the advance width of s rendered at the given point
// size. Characters outside the document encoding measure as '?' does,
// matching how they are drawn.
func (f *Face) Width(s string, size float64) float64 {
	var units int
	for _, b := range Encode(s) {
		units += f.Widths[b]
	}
	return float64(units) * size / 1000
}

// LineHeight returns the natural line height at the given point size.
func (f *Face) LineHeight(size float64) float64 {
	return float64(f.Ascent-f.Descent+f.LineGap) * size / 1000
}

var (
	catalogOnce sync.Once
	catalog     map[FaceID]*Face
	catalogErr  error
)

// Catalog returns all document faces keyed by ID. The catalog is built
// once and cached; the returned map must not be modified.
func Catalog() (map[FaceID]*Face, error) {
	catalogOnce.Do(buildCatalog)
	return catalog, catalogErr
}

// Get returns a single document face.
func Get(id FaceID) (*Face, error) {
	faces, err := Catalog()
	if err != nil {
		return nil, err
	}
	face, ok := faces[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeFontEmbed, "unknown face %q", id)
	}
	return face, nil
}

// All returns the document faces in stable embedding order.
func All() ([]*Face, error) {
	faces, err := Catalog()
	if err != nil {
		return nil, err
	}
	return []*Face{faces[Body], faces[Emphasis], faces[Label], faces[Display]}, nil
}

func buildCatalog() {
	sources := []struct {
		id     FaceID
		ttf    []byte
		psName string
		italic bool
	}{
		{Body, goregular.TTF, "Go-Regular", false},
		{Emphasis, goitalic.TTF, "Go-Italic", true},
		{Label, gobold.TTF, "Go-Bold", false},
		{Display, gosmallcaps.TTF, "GoSmallcaps-Regular", false},
	}

	catalog = make(map[FaceID]*Face, len(sources))
	for _, src := range sources {
		face, err := parseFace(src.id, src.ttf, src.psName, src.italic)
		if err != nil {
			catalog, catalogErr = nil, err
			return
		}
		catalog[src.id] = face
	}
}

func parseFace(id FaceID, ttf []byte, fallbackName string, italic bool) (*Face, error) {
	fnt, err := sfnt.Parse(ttf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontEmbed, err, "parse face %q", id)
	}

	var buf sfnt.Buffer
	upem := int(fnt.UnitsPerEm())
	if upem <= 0 {
		return nil, errors.New(errors.ErrCodeFontEmbed, "face %q has no units per em", id)
	}
	// Querying at ppem == upem yields unscaled font units.
	ppem := fixed.Int26_6(upem << 6)

	face := &Face{ID: id, TTF: ttf, Italic: italic, PostScriptName: fallbackName}
	if name, err := fnt.Name(&buf, sfnt.NameIDPostScript); err == nil && name != "" {
		face.PostScriptName = name
	}

	scale := func(v fixed.Int26_6) int {
		return int(v>>6) * 1000 / upem
	}

	metrics, err := fnt.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontEmbed, err, "metrics for face %q", id)
	}
	face.Ascent = scale(metrics.Ascent)
	face.Descent = -scale(metrics.Descent)
	face.CapHeight = scale(metrics.CapHeight)
	if gap := scale(metrics.Height) - face.Ascent + face.Descent; gap > 0 {
		face.LineGap = gap
	}

	if post := fnt.PostTable(); post != nil {
		face.ItalicAngle = post.ItalicAngle
	}

	// Glyph space has y growing down; flip for the descriptor box.
	if bounds, err := fnt.Bounds(&buf, ppem, font.HintingNone); err == nil {
		face.BBox = [4]int{
			scale(bounds.Min.X),
			-scale(bounds.Max.Y),
			scale(bounds.Max.X),
			-scale(bounds.Min.Y),
		}
	}

	for code := 32; code < 256; code++ {
		r := decodeByte(byte(code))
		if r == 0 {
			continue
		}
		gi, err := fnt.GlyphIndex(&buf, r)
		if err != nil || gi == 0 {
			continue
		}
		adv, err := fnt.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		face.Widths[code] = scale(adv)
	}

	return face, nil
}
