// Package render assembles a project into the final vector document.
//
// Export is a pure pipeline over its inputs: it walks the fixed page
// sequence (title page, panel grids, end page), fetches artwork
// through a Source, and writes a PDF. Nothing is cached between calls
// and no page is ever emitted partially: any failure while drawing a
// page aborts the whole export with the page's identity wrapped into
// the error. The one sanctioned degradation is a referenced asset
// that no longer resolves, which leaves its region blank and records
// a condition instead of failing.
package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/panelforge/panelforge/pkg/errors"
	"github.com/panelforge/panelforge/pkg/fonts"
	"github.com/panelforge/panelforge/pkg/pdf"
	"github.com/panelforge/panelforge/pkg/project"
)

// Page geometry, in document units.
const (
	PageWidth  = 1024.0
	PageHeight = 768.0
	Margin     = 40.0
)

// Panel grid shape.
const (
	gridCols    = 3
	gridRows    = 2
	gridGutterX = 22.0
	gridGutterY = 24.0

	// PanelsPerPage is the grid capacity of one panel page.
	PanelsPerPage = gridCols * gridRows
)

// Type scale, in points.
const (
	headerSize    = 56.0
	subheaderSize = 24.0
	endTextSize   = 44.0
	captionSize   = 13.0
	scriptSize    = 12.0
)

// Panel cell spacing, top to bottom: the 16:9 image box sits at the
// cell top, the caption under it, the script under the caption.
const (
	captionGap = 12.0
	scriptGap  = 6.0
)

// maxScriptLines caps how many source lines of a panel script are laid
// out. Longer scripts are a caller-side violation; the cap keeps the
// document sane anyway.
const maxScriptLines = 6

// Page tones. Backgrounds get a translucent white wash so text stays
// readable over arbitrary artwork.
const (
	inkShade     = 0.13
	captionShade = 0.45
	washAlpha    = 0.35
)

const producerName = "panelforge"

// Source resolves asset references to encoded image bytes. Fetching a
// key that has no backing asset must fail with ErrCodeAssetNotFound;
// that is the only failure Export degrades instead of propagating.
type Source interface {
	Fetch(ref project.AssetRef) ([]byte, error)
}

// Condition is a non-fatal degradation noticed during an export,
// reported so callers can journal it. Code classifies the degradation
// with the same taxonomy fatal errors use.
type Condition struct {
	Context string
	Code    errors.Code
	Message string
}

// Result carries the conditions of one export.
type Result struct {
	Conditions []Condition
}

func (r *Result) note(context string, code errors.Code, format string, args ...any) {
	r.Conditions = append(r.Conditions, Condition{Context: context, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Option adjusts an export.
type Option func(*renderer)

// WithNow fixes the clock used for the document creation date.
func WithNow(now func() time.Time) Option {
	return func(r *renderer) { r.now = now }
}

type embedded struct {
	name pdf.Name
	w, h int
}

type renderer struct {
	doc *pdf.Document
	src Source
	res *Result
	now func() time.Time

	faces map[fonts.FaceID]*fonts.Face
	names map[fonts.FaceID]pdf.Name

	// images dedupes embedding per distinct reference, so a mirrored
	// background or a reused panel image lands in the file once.
	images map[project.AssetRef]embedded
}

// Export renders p into a complete document and returns its bytes.
//
// The page sequence is fixed: a title page, one grid page per six
// panels in source order, and an end page, always. ctx is honored
// between pages only; a page in progress runs to completion.
func Export(ctx context.Context, p *project.Project, src Source, opts ...Option) ([]byte, *Result, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	doc, err := pdf.NewDocument(&buf, PageWidth, PageHeight)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeRender, err, "open document")
	}

	r := &renderer{
		doc:    doc,
		src:    src,
		res:    &Result{},
		now:    time.Now,
		images: make(map[project.AssetRef]embedded),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.embedFaces(); err != nil {
		return nil, nil, err
	}

	if err := r.titlePage(p); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeRender, err, "title page")
	}

	for start := 0; start < len(p.Panels); start += PanelsPerPage {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeRender, err, "export interrupted")
		}
		pageNo := start/PanelsPerPage + 1
		end := min(start+PanelsPerPage, len(p.Panels))
		if err := r.panelPage(p.Panels[start:end], start); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeRender, err, "panel page %d", pageNo)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeRender, err, "export interrupted")
	}
	if err := r.endPage(p); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeRender, err, "end page")
	}

	err = doc.Close(pdf.Info{
		Title:        p.Title,
		Creator:      producerName,
		Producer:     producerName,
		CreationDate: r.now(),
	})
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeRender, err, "finish document")
	}
	return buf.Bytes(), r.res, nil
}

// embedFaces loads the document faces and embeds each into the output
// exactly once.
func (r *renderer) embedFaces() error {
	all, err := fonts.All()
	if err != nil {
		return err
	}
	r.faces = make(map[fonts.FaceID]*fonts.Face, len(all))
	r.names = make(map[fonts.FaceID]pdf.Name, len(all))
	for _, face := range all {
		widths := make([]int, 256-32)
		copy(widths, face.Widths[32:])
		name, err := r.doc.EmbedFont(pdf.FontInfo{
			PostScriptName: face.PostScriptName,
			TTF:            face.TTF,
			FirstChar:      32,
			LastChar:       255,
			Widths:         widths,
			Ascent:         face.Ascent,
			Descent:        face.Descent,
			CapHeight:      face.CapHeight,
			ItalicAngle:    face.ItalicAngle,
			Italic:         face.Italic,
			BBox:           face.BBox,
		})
		if err != nil {
			return err
		}
		r.faces[face.ID] = face
		r.names[face.ID] = name
	}
	return nil
}

// embedImage fetches, decodes, and embeds the artwork behind ref,
// reusing the XObject when the same reference was drawn before. A
// reference that no longer resolves returns ok=false after recording
// a condition under pageCtx; every other failure is returned.
func (r *renderer) embedImage(ref project.AssetRef, pageCtx string) (embedded, bool, error) {
	if ref.IsEmpty() {
		return embedded{}, false, nil
	}
	if img, done := r.images[ref]; done {
		return img, true, nil
	}

	data, err := r.src.Fetch(ref)
	if err != nil {
		if errors.Is(err, errors.ErrCodeAssetNotFound) {
			r.res.note(pageCtx, errors.ErrCodeAssetResolution, "artwork %s is missing, leaving its region blank", ref)
			return embedded{}, false, nil
		}
		return embedded{}, false, err
	}

	art, err := prepareImage(data)
	if err != nil {
		return embedded{}, false, err
	}
	name, err := r.doc.EmbedImage(art)
	if err != nil {
		return embedded{}, false, err
	}

	img := embedded{name: name, w: art.Width, h: art.Height}
	r.images[ref] = img
	return img, true, nil
}
