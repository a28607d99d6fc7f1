// Package pdf writes PDF 1.4 documents.
//
// The package has two layers. The lower layer is the object model:
// Bool, Integer, Real, Name, String, Array, Dict and Reference values
// that know how to serialize themselves, plus a Writer that assigns
// object numbers and maintains the cross-reference table. The upper
// layer is Document/Page, which handles the page tree, shared
// resources (fonts, images, graphics states) and content streams, and
// is what the renderer drives.
//
// Only the slice of PDF needed for storyboard documents is
// implemented: TrueType simple fonts with the document's single-byte
// encoding, JPEG and flate image XObjects with optional soft masks,
// rectangle fills, clipping, and positioned text.
package pdf

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"unicode/utf16"
)

// Object is a PDF value that can serialize itself.
type Object interface {
	// PDF writes the textual form of the object.
	PDF(w io.Writer) error
}

// Bool is the PDF boolean type.
type Bool bool

// PDF implements the Object interface.
func (x Bool) PDF(w io.Writer) error {
	s := "false"
	if x {
		s = "true"
	}
	_, err := io.WriteString(w, s)
	return err
}

// Integer is the PDF integer type.
type Integer int64

// PDF implements the Object interface.
func (x Integer) PDF(w io.Writer) error {
	_, err := io.WriteString(w, strconv.FormatInt(int64(x), 10))
	return err
}

// Real is the PDF real number type. Values are written in decimal
// notation; PDF has no exponent syntax.
type Real float64

// PDF implements the Object interface.
func (x Real) PDF(w io.Writer) error {
	_, err := io.WriteString(w, formatReal(float64(x)))
	return err
}

// formatReal renders a float with at most four decimals and no
// trailing zeros.
func formatReal(x float64) string {
	s := strconv.FormatFloat(x, 'f', 4, 64)
	// trim trailing zeros, then a trailing dot
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}

// String is the PDF string type, holding raw bytes.
type String []byte

// PDF implements the Object interface.
func (x String) PDF(w io.Writer) error {
	buf := make([]byte, 0, len(x)+2)
	buf = append(buf, '(')
	for _, b := range x {
		switch b {
		case '(', ')', '\\':
			buf = append(buf, '\\', b)
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		default:
			buf = append(buf, b)
		}
	}
	buf = append(buf, ')')
	_, err := w.Write(buf)
	return err
}

// TextString encodes a Go string for use in document metadata. Plain
// ASCII stays as-is; anything else becomes UTF-16BE with a byte order
// mark, which viewers are required to understand.
func TextString(s string) String {
	ascii := true
	for _, r := range s {
		if r < 0x20 || r > 0x7E {
			ascii = false
			break
		}
	}
	if ascii {
		return String(s)
	}
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, 2+2*len(units))
	buf = append(buf, 0xFE, 0xFF)
	for _, u := range units {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return String(buf)
}

// Name is the PDF name type.
type Name string

// PDF implements the Object interface.
func (x Name) PDF(w io.Writer) error {
	buf := make([]byte, 0, len(x)+1)
	buf = append(buf, '/')
	for _, b := range []byte(x) {
		if isRegular(b) {
			buf = append(buf, b)
		} else {
			buf = append(buf, '#')
			buf = append(buf, hexDigit(b>>4), hexDigit(b&0xF))
		}
	}
	_, err := w.Write(buf)
	return err
}

// isRegular reports whether b can appear in a name unescaped.
func isRegular(b byte) bool {
	if b <= 0x20 || b >= 0x7F {
		return false
	}
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%', '#':
		return false
	}
	return true
}

func hexDigit(b byte) byte {
	if b < 10 {
		return '0' + b
	}
	return 'A' + b - 10
}

// Array is the PDF array type.
type Array []Object

// PDF implements the Object interface.
func (x Array) PDF(w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, obj := range x {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if obj == nil {
			if _, err := io.WriteString(w, "null"); err != nil {
				return err
			}
			continue
		}
		if err := obj.PDF(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

// Dict is the PDF dictionary type. Keys are written in sorted order so
// output is deterministic.
type Dict map[Name]Object

// PDF implements the Object interface.
func (x Dict) PDF(w io.Writer) error {
	keys := make([]string, 0, len(x))
	for key := range x {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	if _, err := io.WriteString(w, "<<"); err != nil {
		return err
	}
	for _, key := range keys {
		val := x[Name(key)]
		if val == nil {
			continue
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := Name(key).PDF(w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := val.PDF(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n>>")
	return err
}

// Reference is an indirect reference to a numbered object.
type Reference struct {
	Number int
}

// PDF implements the Object interface.
func (x Reference) PDF(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d 0 R", x.Number)
	return err
}
