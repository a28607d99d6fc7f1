package pdf

import (
	"bytes"
)

// Page accumulates a content stream. Drawing methods never fail; the
// stream is validated and written when the page is closed. Coordinates
// are PDF page space: origin bottom-left, y grows upward, units are
// points.
type Page struct {
	doc  *Document
	buf  bytes.Buffer
	done bool
}

// Close compresses the content stream, writes it, and appends the page
// to the document's page tree.
func (p *Page) Close() error {
	if p.done {
		return nil
	}
	p.done = true

	contentRef, err := p.doc.pw.AddStream(Dict{}, p.buf.Bytes(), true)
	if err != nil {
		return err
	}
	pageRef, err := p.doc.pw.Add(Dict{
		"Type":     Name("Page"),
		"Parent":   p.doc.pagesRef,
		"Contents": contentRef,
	})
	if err != nil {
		return err
	}
	p.doc.pageRefs = append(p.doc.pageRefs, pageRef)
	return nil
}

func (p *Page) op(parts ...string) {
	for i, s := range parts {
		if i > 0 {
			p.buf.WriteByte(' ')
		}
		p.buf.WriteString(s)
	}
	p.buf.WriteByte('\n')
}

// SaveState pushes the graphics state (q).
func (p *Page) SaveState() { p.op("q") }

// RestoreState pops the graphics state (Q).
func (p *Page) RestoreState() { p.op("Q") }

// Concat multiplies the current transformation matrix (cm).
func (p *Page) Concat(a, b, c, d, e, f float64) {
	p.op(formatReal(a), formatReal(b), formatReal(c), formatReal(d), formatReal(e), formatReal(f), "cm")
}

// Rect appends a rectangle to the current path (re).
func (p *Page) Rect(x, y, w, h float64) {
	p.op(formatReal(x), formatReal(y), formatReal(w), formatReal(h), "re")
}

// Fill fills the current path (f).
func (p *Page) Fill() { p.op("f") }

// Clip intersects the clipping region with the current path without
// painting it (W n).
func (p *Page) Clip() { p.op("W", "n") }

// SetFillRGB sets the nonstroking color (rg). Components are 0..1.
func (p *Page) SetFillRGB(r, g, b float64) {
	p.op(formatReal(r), formatReal(g), formatReal(b), "rg")
}

// SetAlpha activates a graphics state from Document.AlphaState (gs).
func (p *Page) SetAlpha(state Name) {
	p.op(nameString(state), "gs")
}

// DrawXObject paints an image XObject into the axis-aligned box with
// bottom-left corner (x, y).
func (p *Page) DrawXObject(image Name, x, y, w, h float64) {
	p.SaveState()
	p.Concat(w, 0, 0, h, x, y)
	p.op(nameString(image), "Do")
	p.RestoreState()
}

// BeginText opens a text object (BT).
func (p *Page) BeginText() { p.op("BT") }

// EndText closes a text object (ET).
func (p *Page) EndText() { p.op("ET") }

// SetFont selects a font embedded with Document.EmbedFont (Tf).
func (p *Page) SetFont(font Name, size float64) {
	p.op(nameString(font), formatReal(size), "Tf")
}

// SetTextPosition moves the text matrix so the next ShowText starts at
// the baseline point (x, y) (Tm).
func (p *Page) SetTextPosition(x, y float64) {
	p.op("1", "0", "0", "1", formatReal(x), formatReal(y), "Tm")
}

// ShowText paints pre-encoded text at the current position (Tj). The
// bytes must already be in the embedded fonts' single-byte encoding.
func (p *Page) ShowText(encoded []byte) {
	_ = String(encoded).PDF(&p.buf)
	p.buf.WriteString(" Tj\n")
}

// nameString renders a name, escapes included, for use inside content
// streams. Writes to a buffer cannot fail.
func nameString(n Name) string {
	var buf bytes.Buffer
	_ = n.PDF(&buf)
	return buf.String()
}
