package render

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/panelforge/panelforge/pkg/errors"
	"github.com/panelforge/panelforge/pkg/fonts"
	"github.com/panelforge/panelforge/pkg/layout"
	"github.com/panelforge/panelforge/pkg/pdf"
	"github.com/panelforge/panelforge/pkg/project"
)

// titlePage draws page one: the cover background, the header and
// subheader centered as a block, and the title logo.
func (r *renderer) titlePage(p *project.Project) error {
	pg, err := r.doc.AddPage()
	if err != nil {
		return err
	}

	if err := r.drawBackground(pg, p.TitlePage.Background, "title page"); err != nil {
		return err
	}

	var lines []centeredLine
	if p.TitlePage.Header != "" {
		lines = append(lines, centeredLine{
			text: p.TitlePage.Header,
			face: r.faces[fonts.Display],
			size: headerSize,
		})
	}
	if p.TitlePage.Subheader != "" {
		for i, s := range strings.Split(p.TitlePage.Subheader, "\n") {
			ln := centeredLine{text: s, face: r.faces[fonts.Body], size: subheaderSize}
			if i == 0 && len(lines) > 0 {
				ln.gapAbove = headerGap
			}
			lines = append(lines, ln)
		}
	}
	r.drawCenteredBlock(pg, lines)

	if err := r.drawLogo(pg, p.TitlePage.Logo, "title page"); err != nil {
		return err
	}
	return pg.Close()
}

// preparedArt is one panel's decode result, produced concurrently and
// consumed by the sequential drawing pass.
type preparedArt struct {
	img  *pdf.ImageData
	miss bool
}

// panelPage draws one grid page holding up to six panels. offset is
// the index of the first panel in the whole sequence; trailing cells
// beyond the slice stay blank.
//
// Artwork is fetched and decoded concurrently, one goroutine per
// panel, but everything drawn onto the page happens sequentially in
// source order afterwards.
func (r *renderer) panelPage(panels []project.Panel, offset int) error {
	pg, err := r.doc.AddPage()
	if err != nil {
		return err
	}
	pageCtx := fmt.Sprintf("panel page %d", offset/PanelsPerPage+1)

	cells := layout.GridCells(PageWidth, PageHeight, Margin, gridGutterX, gridGutterY, gridCols, gridRows)

	arts := make([]preparedArt, len(panels))
	var g errgroup.Group
	for i := range panels {
		ref := panels[i].Image
		if ref.IsEmpty() {
			continue
		}
		if _, done := r.images[ref]; done {
			continue
		}
		g.Go(func() error {
			data, err := r.src.Fetch(ref)
			if err != nil {
				if errors.Is(err, errors.ErrCodeAssetNotFound) {
					arts[i].miss = true
					return nil
				}
				return err
			}
			img, err := prepareImage(data)
			if err != nil {
				return err
			}
			arts[i].img = &img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	body := r.faces[fonts.Body]
	emph := r.faces[fonts.Emphasis]
	label := r.faces[fonts.Label]
	measure := func(text string, emphasis bool) float64 {
		if emphasis {
			return emph.Width(text, scriptSize)
		}
		return body.Width(text, scriptSize)
	}

	for i, pn := range panels {
		cell := cells[i]
		imgBox := layout.Rect{X: cell.X, Y: cell.Y, W: cell.W, H: cell.W * 9 / 16}

		switch {
		case arts[i].miss:
			r.res.note(pageCtx, errors.ErrCodeAssetResolution, "panel %d artwork %s is missing, leaving its frame blank", offset+i+1, pn.Image)
		case !pn.Image.IsEmpty():
			img, done := r.images[pn.Image]
			if !done {
				name, err := r.doc.EmbedImage(*arts[i].img)
				if err != nil {
					return err
				}
				img = embedded{name: name, w: arts[i].img.Width, h: arts[i].img.Height}
				r.images[pn.Image] = img
			}
			f := layout.FitContain(float64(img.w), float64(img.h), imgBox.W, imgBox.H)
			pg.DrawXObject(img.name, imgBox.X+f.X, PageHeight-(imgBox.Y+f.Y+f.H), f.W, f.H)
		}

		captionTop := imgBox.Y + imgBox.H + captionGap
		caption := fmt.Sprintf("Panel %d", offset+i+1)
		r.drawText(pg, label, captionSize, cell.X, captionTop+ascent(label, captionSize), caption, captionShade)

		scriptTop := captionTop + label.LineHeight(captionSize) + scriptGap
		r.drawScript(pg, pn.Script, cell, scriptTop, measure)
	}
	return pg.Close()
}

// endPage draws the final page, honoring the mirror and size-link
// flags. The page is always present, even with nothing to show.
func (r *renderer) endPage(p *project.Project) error {
	pg, err := r.doc.AddPage()
	if err != nil {
		return err
	}

	bg, logo := endPlan(p)
	if err := r.drawBackground(pg, bg, "end page"); err != nil {
		return err
	}

	if p.EndPage.ShowText && p.EndPage.Text != "" {
		var lines []centeredLine
		for _, s := range strings.Split(p.EndPage.Text, "\n") {
			lines = append(lines, centeredLine{text: s, face: r.faces[fonts.Display], size: endTextSize})
		}
		r.drawCenteredBlock(pg, lines)
	}

	if err := r.drawLogo(pg, logo, "end page"); err != nil {
		return err
	}
	return pg.Close()
}

// endPlan resolves what the end page actually shows. Mirroring
// substitutes the title page's background and logo artwork while the
// end page keeps its own logo placement; a title page without a logo
// mirrors to an end page without one. The size link makes the title
// logo's size class authoritative for the end logo.
func endPlan(p *project.Project) (bg project.AssetRef, logo *project.Logo) {
	ep := p.EndPage
	title := p.TitlePage.Logo

	if ep.MirrorTitle {
		bg = p.TitlePage.Background
		if title == nil || title.Ref.IsEmpty() {
			return bg, nil
		}
		derived := project.NewLogo(title.Ref)
		if ep.Logo != nil {
			derived.Anchor = ep.Logo.Anchor
			derived.Size = ep.Logo.Size
		}
		if p.LinkLogoSizes {
			derived.Size = title.Size
		}
		return bg, derived
	}

	if p.LinkLogoSizes && ep.Logo != nil && title != nil {
		linked := *ep.Logo
		linked.Size = title.Size
		return ep.Background, &linked
	}
	return ep.Background, ep.Logo
}

// drawBackground cover-fits the referenced artwork over the whole
// page, clipped to the page bounds, then lays the translucent wash
// over it. An empty reference leaves the page plain with no wash.
func (r *renderer) drawBackground(pg *pdf.Page, ref project.AssetRef, pageCtx string) error {
	img, ok, err := r.embedImage(ref, pageCtx)
	if err != nil || !ok {
		return err
	}

	f := layout.FitCover(float64(img.w), float64(img.h), PageWidth, PageHeight)
	pg.SaveState()
	pg.Rect(0, 0, PageWidth, PageHeight)
	pg.Clip()
	pg.DrawXObject(img.name, f.X, PageHeight-(f.Y+f.H), f.W, f.H)
	pg.RestoreState()

	wash, err := r.doc.AlphaState(washAlpha)
	if err != nil {
		return err
	}
	pg.SaveState()
	pg.SetAlpha(wash)
	pg.SetFillRGB(1, 1, 1)
	pg.Rect(0, 0, PageWidth, PageHeight)
	pg.Fill()
	pg.RestoreState()
	return nil
}

// drawLogo fits the logo artwork into its size class box and anchors
// it. Nothing is drawn for an absent or unresolvable logo.
func (r *renderer) drawLogo(pg *pdf.Page, l *project.Logo, pageCtx string) error {
	if l == nil {
		return nil
	}
	img, ok, err := r.embedImage(l.Ref, pageCtx)
	if err != nil || !ok {
		return err
	}
	w, h := layout.FitLogo(float64(img.w), float64(img.h), l.Size)
	x, y := layout.PlaceLogo(l.Anchor, PageWidth, PageHeight, Margin, w, h)
	pg.DrawXObject(img.name, x, PageHeight-y-h, w, h)
	return nil
}

// headerGap separates the header from the first subheader line.
const headerGap = 14.0

// centeredLine is one line of a centered text block.
type centeredLine struct {
	text     string
	face     *fonts.Face
	size     float64
	gapAbove float64
}

// drawCenteredBlock stacks lines at their natural heights and centers
// the whole block on the page, each line centered horizontally.
func (r *renderer) drawCenteredBlock(pg *pdf.Page, lines []centeredLine) {
	if len(lines) == 0 {
		return
	}
	total := 0.0
	for _, ln := range lines {
		total += ln.gapAbove + ln.face.LineHeight(ln.size)
	}

	top := (PageHeight - total) / 2
	for _, ln := range lines {
		top += ln.gapAbove
		if ln.text != "" {
			x := (PageWidth - ln.face.Width(ln.text, ln.size)) / 2
			r.drawText(pg, ln.face, ln.size, x, top+ascent(ln.face, ln.size), ln.text, inkShade)
		}
		top += ln.face.LineHeight(ln.size)
	}
}

// drawScript wraps a panel script into the cell below its caption and
// draws the lines top to bottom. The script is truncated to its first
// six source lines, tokenized into emphasis runs as a whole so a
// bracketed span may cross a newline, and only then split into lines.
// A line that would cross the cell's bottom edge stops the script;
// overflow is dropped without a marker.
func (r *renderer) drawScript(pg *pdf.Page, script string, cell layout.Rect, top float64, measure layout.Measure) {
	if script == "" {
		return
	}
	body := r.faces[fonts.Body]
	emph := r.faces[fonts.Emphasis]
	lh := body.LineHeight(scriptSize)
	bottom := cell.Y + cell.H

	runs := layout.SplitRuns(truncateLines(script, maxScriptLines))

	y := top
	for _, lineRuns := range layout.SplitLines(runs) {
		if y+lh > bottom {
			return
		}
		wrapped := layout.Wrap(lineRuns, cell.W, measure)
		if len(wrapped) == 0 {
			// A blank source line keeps its height.
			y += lh
			continue
		}
		for _, ln := range wrapped {
			if y+lh > bottom {
				return
			}
			baseline := y + ascent(body, scriptSize)
			for _, frag := range ln.Fragments {
				face := body
				if frag.Emphasis {
					face = emph
				}
				r.drawText(pg, face, scriptSize, cell.X+frag.X, baseline, frag.Text, inkShade)
			}
			y += lh
		}
	}
}

// truncateLines cuts s after its first max newline-separated lines.
func truncateLines(s string, max int) string {
	n := 0
	for i, r := range s {
		if r != '\n' {
			continue
		}
		n++
		if n == max {
			return s[:i]
		}
	}
	return s
}

// drawText paints one run of text with its baseline at the given
// top-based y coordinate.
func (r *renderer) drawText(pg *pdf.Page, face *fonts.Face, size, x, baselineY float64, text string, shade float64) {
	pg.BeginText()
	pg.SetFillRGB(shade, shade, shade)
	pg.SetFont(r.names[face.ID], size)
	pg.SetTextPosition(x, PageHeight-baselineY)
	pg.ShowText(fonts.Encode(text))
	pg.EndText()
}

// ascent converts a face's em-square ascent to points at a size.
func ascent(face *fonts.Face, size float64) float64 {
	return float64(face.Ascent) * size / 1000
}
