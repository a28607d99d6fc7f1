package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/panelforge/panelforge/pkg/errors"
)

func TestWriterRoundStructure(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	catalog := pw.Alloc()
	if catalog.Number != 1 {
		t.Errorf("first Alloc() = %d, want 1", catalog.Number)
	}
	if err := pw.Put(catalog, Dict{"Type": Name("Catalog")}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := pw.Close(catalog, Reference{}); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out := buf.String()
	for _, marker := range []string{
		"%PDF-1.4",
		"1 0 obj",
		"endobj",
		"xref",
		"0000000000 65535 f ",
		"trailer",
		"/Root 1 0 R",
		"startxref",
		"%%EOF",
	} {
		if !strings.Contains(out, marker) {
			t.Errorf("output missing %q", marker)
		}
	}
	if strings.Contains(out, "/Info") {
		t.Error("trailer has /Info despite zero reference")
	}
}

func TestWriterXrefOffsets(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	r1, err := pw.Add(Integer(1))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	r2, err := pw.Add(Integer(2))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := pw.Close(r1, Reference{}); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out := buf.Bytes()
	for _, ref := range []Reference{r1, r2} {
		offset := pw.xref[ref.Number]
		want := fmt.Sprintf("%d 0 obj", ref.Number)
		if int(offset) >= len(out) || !bytes.HasPrefix(out[offset:], []byte(want)) {
			t.Errorf("xref offset %d for object %d does not point at %q", offset, ref.Number, want)
		}
	}

	// startxref must point at the xref keyword.
	idx := bytes.LastIndex(out, []byte("startxref\n"))
	if idx < 0 {
		t.Fatal("no startxref")
	}
	var xrefPos int64
	if _, err := fmt.Sscanf(string(out[idx:]), "startxref\n%d", &xrefPos); err != nil {
		t.Fatalf("parse startxref: %v", err)
	}
	if !bytes.HasPrefix(out[xrefPos:], []byte("xref")) {
		t.Errorf("startxref %d does not point at xref table", xrefPos)
	}
}

func TestWriterOutOfOrderPut(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	early := pw.Alloc()
	late, err := pw.Add(Name("Second"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := pw.Put(early, Name("First")); err != nil {
		t.Fatalf("deferred Put() error = %v", err)
	}
	if err := pw.Close(late, Reference{}); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestWriterRejectsUnwritten(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	root, err := pw.Add(Dict{})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	pw.Alloc() // never written

	if err := pw.Close(root, Reference{}); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("Close() error = %v, want INTERNAL_ERROR", err)
	}
}

func TestWriterRejectsDoubleWrite(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	ref, err := pw.Add(Integer(1))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := pw.Put(ref, Integer(2)); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("second Put() error = %v, want INTERNAL_ERROR", err)
	}
}

func TestPutStreamCompression(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	payload := bytes.Repeat([]byte("storyboard "), 64)
	ref, err := pw.AddStream(Dict{}, payload, true)
	if err != nil {
		t.Fatalf("AddStream() error = %v", err)
	}
	if err := pw.Close(ref, Reference{}); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out := buf.Bytes()
	if !bytes.Contains(out, []byte("/Filter /FlateDecode")) {
		t.Fatal("stream missing FlateDecode filter")
	}

	// Decode the stream body and compare with the payload.
	start := bytes.Index(out, []byte("stream\n"))
	end := bytes.Index(out, []byte("\nendstream"))
	if start < 0 || end < 0 || end <= start {
		t.Fatal("stream delimiters not found")
	}
	zr, err := zlib.NewReader(bytes.NewReader(out[start+len("stream\n") : end]))
	if err != nil {
		t.Fatalf("zlib.NewReader() error = %v", err)
	}
	decoded, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress error = %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Error("decompressed stream differs from payload")
	}
}
