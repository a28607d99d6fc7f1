package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// minimalTTF is not a real font, but EmbedFont treats the program as
// opaque bytes; parsing is the caller's concern.
var minimalTTF = bytes.Repeat([]byte{0x00, 0x01, 0x02, 0x03}, 16)

func testFontInfo() FontInfo {
	widths := make([]int, 224)
	for i := range widths {
		widths[i] = 500
	}
	return FontInfo{
		PostScriptName: "Go-Regular",
		TTF:            minimalTTF,
		FirstChar:      32,
		LastChar:       255,
		Widths:         widths,
		Ascent:         950,
		Descent:        -250,
		CapHeight:      700,
		BBox:           [4]int{-100, -250, 1100, 950},
	}
}

func TestDocumentSinglePage(t *testing.T) {
	var buf bytes.Buffer
	doc, err := NewDocument(&buf, 1024, 768)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}

	font, err := doc.EmbedFont(testFontInfo())
	if err != nil {
		t.Fatalf("EmbedFont() error = %v", err)
	}
	if font != "F1" {
		t.Errorf("font name = %q, want F1", font)
	}

	page, err := doc.AddPage()
	if err != nil {
		t.Fatalf("AddPage() error = %v", err)
	}
	page.BeginText()
	page.SetFont(font, 12)
	page.SetTextPosition(40, 700)
	page.ShowText([]byte("hello"))
	page.EndText()
	if err := page.Close(); err != nil {
		t.Fatalf("page Close() error = %v", err)
	}

	err = doc.Close(Info{
		Title:        "Board",
		Producer:     "panelforge",
		CreationDate: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("doc Close() error = %v", err)
	}

	out := buf.String()
	for _, marker := range []string{
		"/Type /Pages",
		"/Count 1",
		"/MediaBox [0 0 1024 768]",
		"/Type /Page",
		"/Type /Catalog",
		"/Subtype /TrueType",
		"/BaseFont /Go-Regular",
		"/Encoding /WinAnsiEncoding",
		"/FontFile2",
		"/Title (Board)",
		"(D:20260314092653Z)",
		"%%EOF",
	} {
		if !strings.Contains(out, marker) {
			t.Errorf("output missing %q", marker)
		}
	}
}

func TestDocumentMultiplePages(t *testing.T) {
	var buf bytes.Buffer
	doc, err := NewDocument(&buf, 1024, 768)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		page, err := doc.AddPage()
		if err != nil {
			t.Fatalf("AddPage() error = %v", err)
		}
		page.SetFillRGB(1, 1, 1)
		page.Rect(0, 0, 1024, 768)
		page.Fill()
		if err := page.Close(); err != nil {
			t.Fatalf("page Close() error = %v", err)
		}
	}

	if err := doc.Close(Info{}); err != nil {
		t.Fatalf("doc Close() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "/Count 3") {
		t.Error("page tree does not count 3 pages")
	}
}

func TestAddPageWhileOpen(t *testing.T) {
	var buf bytes.Buffer
	doc, err := NewDocument(&buf, 100, 100)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if _, err := doc.AddPage(); err != nil {
		t.Fatalf("AddPage() error = %v", err)
	}
	if _, err := doc.AddPage(); err == nil {
		t.Error("AddPage() with open page succeeded, want error")
	}
	if err := doc.Close(Info{}); err == nil {
		t.Error("Close() with open page succeeded, want error")
	}
}

func TestAlphaStateDeduplicated(t *testing.T) {
	var buf bytes.Buffer
	doc, err := NewDocument(&buf, 100, 100)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}

	a, err := doc.AlphaState(0.35)
	if err != nil {
		t.Fatalf("AlphaState() error = %v", err)
	}
	b, err := doc.AlphaState(0.35)
	if err != nil {
		t.Fatalf("AlphaState() error = %v", err)
	}
	if a != b {
		t.Errorf("same alpha got names %q and %q", a, b)
	}
	c, err := doc.AlphaState(0.8)
	if err != nil {
		t.Fatalf("AlphaState() error = %v", err)
	}
	if c == a {
		t.Error("different alphas share a name")
	}

	if _, err := doc.AlphaState(1.5); err == nil {
		t.Error("AlphaState(1.5) succeeded, want error")
	}
}

func TestEmbedImageVariants(t *testing.T) {
	var buf bytes.Buffer
	doc, err := NewDocument(&buf, 100, 100)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}

	t.Run("jpeg passthrough", func(t *testing.T) {
		name, err := doc.EmbedImage(ImageData{
			Width: 2, Height: 2,
			DCT:       []byte{0xFF, 0xD8, 0xFF, 0xD9},
			DCTColors: 3,
		})
		if err != nil {
			t.Fatalf("EmbedImage() error = %v", err)
		}
		if name == "" {
			t.Error("empty resource name")
		}
	})

	t.Run("rgb with alpha", func(t *testing.T) {
		name, err := doc.EmbedImage(ImageData{
			Width: 2, Height: 1,
			RGB:   []byte{255, 0, 0, 0, 255, 0},
			Alpha: []byte{255, 128},
		})
		if err != nil {
			t.Fatalf("EmbedImage() error = %v", err)
		}
		if name == "" {
			t.Error("empty resource name")
		}
	})

	t.Run("rgb size mismatch", func(t *testing.T) {
		if _, err := doc.EmbedImage(ImageData{Width: 2, Height: 2, RGB: []byte{1, 2, 3}}); err == nil {
			t.Error("mismatched payload accepted")
		}
	})

	t.Run("no payload", func(t *testing.T) {
		if _, err := doc.EmbedImage(ImageData{Width: 1, Height: 1}); err == nil {
			t.Error("payloadless image accepted")
		}
	})

	if err := doc.Close(Info{}); err != nil {
		t.Fatalf("doc Close() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "/Filter /DCTDecode") {
		t.Error("missing DCTDecode image")
	}
	if !strings.Contains(out, "/SMask") {
		t.Error("missing soft mask")
	}
}
