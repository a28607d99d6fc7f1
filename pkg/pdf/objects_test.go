package pdf

import (
	"bytes"
	"testing"
)

func render(t *testing.T, obj Object) string {
	t.Helper()
	var buf bytes.Buffer
	if err := obj.PDF(&buf); err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	return buf.String()
}

func TestScalarObjects(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want string
	}{
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"integer", Integer(-42), "-42"},
		{"real whole", Real(768), "768"},
		{"real fraction", Real(0.25), "0.25"},
		{"real trimmed", Real(1.5000), "1.5"},
		{"real rounded", Real(0.123456), "0.1235"},
		{"real negative zero", Real(-0.00001), "0"},
		{"name plain", Name("Type"), "/Type"},
		{"name escaped space", Name("A B"), "/A#20B"},
		{"name escaped hash", Name("A#B"), "/A#23B"},
		{"reference", Reference{Number: 7}, "7 0 R"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.obj); got != tt.want {
				t.Errorf("PDF() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringEscaping(t *testing.T) {
	tests := []struct {
		name string
		in   String
		want string
	}{
		{"plain", String("hello"), "(hello)"},
		{"parens", String("a(b)c"), `(a\(b\)c)`},
		{"backslash", String(`a\b`), `(a\\b)`},
		{"newline", String("a\nb"), `(a\nb)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.in); got != tt.want {
				t.Errorf("PDF() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextString(t *testing.T) {
	if got := string(TextString("Board")); got != "Board" {
		t.Errorf("ascii TextString = %q, want passthrough", got)
	}

	// Non-ASCII titles become UTF-16BE with a BOM.
	got := TextString("Scène")
	if len(got) < 2 || got[0] != 0xFE || got[1] != 0xFF {
		t.Fatalf("TextString(non-ascii) = % x, want BOM prefix", got)
	}
	if len(got) != 2+2*5 {
		t.Errorf("TextString length = %d, want %d", len(got), 2+2*5)
	}
}

func TestArray(t *testing.T) {
	arr := Array{Integer(0), Integer(0), Real(1024), Real(768)}
	if got := render(t, arr); got != "[0 0 1024 768]" {
		t.Errorf("PDF() = %q", got)
	}
}

func TestDictSortedKeys(t *testing.T) {
	dict := Dict{
		"Type":  Name("Page"),
		"Count": Integer(2),
		"After": Bool(true),
	}
	want := "<<\n/After true\n/Count 2\n/Type /Page\n>>"
	if got := render(t, dict); got != want {
		t.Errorf("PDF() = %q, want %q", got, want)
	}
}

func TestDictSkipsNil(t *testing.T) {
	dict := Dict{"Keep": Integer(1), "Drop": nil}
	want := "<<\n/Keep 1\n>>"
	if got := render(t, dict); got != want {
		t.Errorf("PDF() = %q, want %q", got, want)
	}
}
