package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/panelforge/panelforge/pkg/errors"
)

// header opens every file; the second line is the conventional binary
// marker so transports treat the file as binary.
const header = "%PDF-1.4\n%\x80\x81\x82\x83\n"

// Writer emits numbered objects and the cross-reference table that
// indexes them. Objects may be allocated ahead of time and written in
// any order, but every allocated object must be written before Close.
type Writer struct {
	w    *posWriter
	xref map[int]int64
	next int
}

// NewWriter writes the file header and returns a writer ready for
// objects.
func NewWriter(w io.Writer) (*Writer, error) {
	pw := &Writer{
		w:    &posWriter{w: w},
		xref: make(map[int]int64),
		next: 1,
	}
	if _, err := io.WriteString(pw.w, header); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "write document header")
	}
	return pw, nil
}

// Alloc reserves the next object number.
func (pw *Writer) Alloc() Reference {
	ref := Reference{Number: pw.next}
	pw.next++
	return ref
}

// Put writes obj as the indirect object ref.
func (pw *Writer) Put(ref Reference, obj Object) error {
	if err := pw.begin(ref); err != nil {
		return err
	}
	if err := obj.PDF(pw.w); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write object %d", ref.Number)
	}
	return pw.end()
}

// Add allocates an object number for obj and writes it.
func (pw *Writer) Add(obj Object) (Reference, error) {
	ref := pw.Alloc()
	return ref, pw.Put(ref, obj)
}

// PutStream writes a stream object. dict is extended with the Length
// entry and, when compress is set, the data is flate-encoded and the
// Filter entry added. The caller's dict map is modified.
func (pw *Writer) PutStream(ref Reference, dict Dict, data []byte, compress bool) error {
	if compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "compress stream %d", ref.Number)
		}
		if err := zw.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "compress stream %d", ref.Number)
		}
		data = buf.Bytes()
		dict["Filter"] = Name("FlateDecode")
	}
	dict["Length"] = Integer(len(data))

	if err := pw.begin(ref); err != nil {
		return err
	}
	if err := dict.PDF(pw.w); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write stream dict %d", ref.Number)
	}
	if _, err := io.WriteString(pw.w, "\nstream\n"); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write stream %d", ref.Number)
	}
	if _, err := pw.w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write stream %d", ref.Number)
	}
	if _, err := io.WriteString(pw.w, "\nendstream"); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write stream %d", ref.Number)
	}
	return pw.end()
}

// AddStream allocates an object number for a stream and writes it.
func (pw *Writer) AddStream(dict Dict, data []byte, compress bool) (Reference, error) {
	ref := pw.Alloc()
	return ref, pw.PutStream(ref, dict, data, compress)
}

// Close writes the cross-reference table and trailer. root is the
// document catalog; info may be the zero Reference when there is no
// info dictionary.
func (pw *Writer) Close(root, info Reference) error {
	for n := 1; n < pw.next; n++ {
		if _, ok := pw.xref[n]; !ok {
			return errors.New(errors.ErrCodeInternal, "object %d allocated but never written", n)
		}
	}

	xrefPos := pw.w.pos
	if _, err := fmt.Fprintf(pw.w, "xref\n0 %d\n", pw.next); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write xref")
	}
	if _, err := io.WriteString(pw.w, "0000000000 65535 f \n"); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write xref")
	}
	for n := 1; n < pw.next; n++ {
		if _, err := fmt.Fprintf(pw.w, "%010d 00000 n \n", pw.xref[n]); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write xref")
		}
	}

	trailer := Dict{
		"Size": Integer(pw.next),
		"Root": root,
	}
	if info.Number != 0 {
		trailer["Info"] = info
	}
	if _, err := io.WriteString(pw.w, "trailer\n"); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write trailer")
	}
	if err := trailer.PDF(pw.w); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write trailer")
	}
	if _, err := fmt.Fprintf(pw.w, "\nstartxref\n%d\n%%%%EOF\n", xrefPos); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write trailer")
	}
	return nil
}

func (pw *Writer) begin(ref Reference) error {
	if ref.Number <= 0 || ref.Number >= pw.next {
		return errors.New(errors.ErrCodeInternal, "object number %d was never allocated", ref.Number)
	}
	if _, dup := pw.xref[ref.Number]; dup {
		return errors.New(errors.ErrCodeInternal, "object %d written twice", ref.Number)
	}
	pw.xref[ref.Number] = pw.w.pos
	if _, err := fmt.Fprintf(pw.w, "%d 0 obj\n", ref.Number); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write object %d", ref.Number)
	}
	return nil
}

func (pw *Writer) end() error {
	if _, err := io.WriteString(pw.w, "\nendobj\n"); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write object trailer")
	}
	return nil
}

// posWriter counts bytes so the cross-reference table can record
// object offsets.
type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}
