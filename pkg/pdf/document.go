package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/panelforge/panelforge/pkg/errors"
)

// Info carries document metadata for the info dictionary. Zero fields
// are omitted.
type Info struct {
	Title        string
	Author       string
	Subject      string
	Creator      string
	Producer     string
	CreationDate time.Time
}

// Document writes a multi-page PDF with shared resources. Fonts,
// images and graphics states are embedded once at document level and
// referenced from pages by name, so pages only carry their content
// streams.
//
// Pages are written strictly in order: AddPage, draw, Close, repeat,
// then Document.Close.
type Document struct {
	pw     *Writer
	width  float64
	height float64

	pagesRef Reference
	pageRefs []Reference

	fontDict  Dict
	xobjDict  Dict
	gsDict    Dict
	alphaName map[string]Name

	cur    *Page
	closed bool
}

// NewDocument writes the file header and prepares a document with the
// given page size in points.
func NewDocument(w io.Writer, width, height float64) (*Document, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeRender, "page size %gx%g is not positive", width, height)
	}
	pw, err := NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &Document{
		pw:        pw,
		width:     width,
		height:    height,
		pagesRef:  pw.Alloc(),
		fontDict:  Dict{},
		xobjDict:  Dict{},
		gsDict:    Dict{},
		alphaName: map[string]Name{},
	}, nil
}

// PageSize returns the page dimensions in points.
func (d *Document) PageSize() (width, height float64) {
	return d.width, d.height
}

// AlphaState returns the graphics state name for a constant fill and
// stroke alpha, embedding the state on first use.
func (d *Document) AlphaState(alpha float64) (Name, error) {
	if alpha < 0 || alpha > 1 {
		return "", errors.New(errors.ErrCodeRender, "alpha %g out of range", alpha)
	}
	key := formatReal(alpha)
	if name, ok := d.alphaName[key]; ok {
		return name, nil
	}
	ref, err := d.pw.Add(Dict{
		"Type": Name("ExtGState"),
		"ca":   Real(alpha),
		"CA":   Real(alpha),
	})
	if err != nil {
		return "", err
	}
	name := Name(fmt.Sprintf("GS%d", len(d.alphaName)+1))
	d.alphaName[key] = name
	d.gsDict[name] = ref
	return name, nil
}

// AddPage starts a new page. The previous page must have been closed.
func (d *Document) AddPage() (*Page, error) {
	if d.closed {
		return nil, errors.New(errors.ErrCodeInternal, "document already closed")
	}
	if d.cur != nil && !d.cur.done {
		return nil, errors.New(errors.ErrCodeInternal, "previous page still open")
	}
	d.cur = &Page{doc: d}
	return d.cur, nil
}

// Close finishes the document: page tree, catalog, metadata and the
// cross-reference table.
func (d *Document) Close(info Info) error {
	if d.closed {
		return errors.New(errors.ErrCodeInternal, "document already closed")
	}
	if d.cur != nil && !d.cur.done {
		return errors.New(errors.ErrCodeInternal, "page still open at document close")
	}
	d.closed = true

	kids := make(Array, len(d.pageRefs))
	for i, ref := range d.pageRefs {
		kids[i] = ref
	}

	resources := Dict{
		"ProcSet": Array{Name("PDF"), Name("Text"), Name("ImageB"), Name("ImageC")},
	}
	if len(d.fontDict) > 0 {
		resources["Font"] = d.fontDict
	}
	if len(d.xobjDict) > 0 {
		resources["XObject"] = d.xobjDict
	}
	if len(d.gsDict) > 0 {
		resources["ExtGState"] = d.gsDict
	}

	err := d.pw.Put(d.pagesRef, Dict{
		"Type":      Name("Pages"),
		"Kids":      kids,
		"Count":     Integer(len(kids)),
		"MediaBox":  Array{Integer(0), Integer(0), Real(d.width), Real(d.height)},
		"Resources": resources,
	})
	if err != nil {
		return err
	}

	catalogRef, err := d.pw.Add(Dict{
		"Type":  Name("Catalog"),
		"Pages": d.pagesRef,
	})
	if err != nil {
		return err
	}

	var infoRef Reference
	if dict := infoDict(info); len(dict) > 0 {
		infoRef, err = d.pw.Add(dict)
		if err != nil {
			return err
		}
	}

	return d.pw.Close(catalogRef, infoRef)
}

func infoDict(info Info) Dict {
	dict := Dict{}
	set := func(key Name, val string) {
		if val != "" {
			dict[key] = TextString(val)
		}
	}
	set("Title", info.Title)
	set("Author", info.Author)
	set("Subject", info.Subject)
	set("Creator", info.Creator)
	set("Producer", info.Producer)
	if !info.CreationDate.IsZero() {
		dict["CreationDate"] = String(pdfDate(info.CreationDate))
	}
	return dict
}

// pdfDate renders a timestamp in the D:YYYYMMDDHHmmSS+HH'mm' form.
func pdfDate(t time.Time) string {
	_, offset := t.Zone()
	if offset == 0 {
		return t.Format("D:20060102150405Z")
	}
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%s%c%02d'%02d'", t.Format("D:20060102150405"), sign, offset/3600, offset%3600/60)
}
