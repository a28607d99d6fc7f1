package cli

import (
	"testing"

	"github.com/panelforge/panelforge/pkg/project"
)

func TestDescribeRef(t *testing.T) {
	tests := []struct {
		name string
		ref  project.AssetRef
		want string
	}{
		{"empty", project.EmptyRef(), "none"},
		{"builtin", project.BuiltinRef(project.BuiltinBackground), "built-in background"},
		{"short key", project.KeyRef("a.png"), "a.png"},
		{"long key", project.KeyRef("0123456789abcdef.png"), "01234567….png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeRef(tt.ref); got != tt.want {
				t.Errorf("describeRef() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeLogo(t *testing.T) {
	if got, want := describeLogo(nil), "none"; got != want {
		t.Errorf("describeLogo(nil) = %q, want %q", got, want)
	}

	l := project.NewLogo(project.KeyRef("mark.png"))
	if got, want := describeLogo(l), "mark.png at bottom-right (M)"; got != want {
		t.Errorf("describeLogo() = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short stays", "hello", 10, "hello"},
		{"exact stays", "hello", 5, "hello"},
		{"long cut", "hello world", 8, "hello w…"},
		{"runes not bytes", "ééééé", 4, "ééé…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	if got, want := firstLine("open on [rain]\nsecond"), "open on [rain]"; got != want {
		t.Errorf("firstLine() = %q, want %q", got, want)
	}
	if got, want := firstLine("single"), "single"; got != want {
		t.Errorf("firstLine() = %q, want %q", got, want)
	}
}
