package project

import (
	"encoding/json"
	"testing"
)

func TestRefVariants(t *testing.T) {
	empty := EmptyRef()
	if !empty.IsEmpty() || empty.Kind() != RefEmpty {
		t.Errorf("EmptyRef() kind = %v, want RefEmpty", empty.Kind())
	}

	key := KeyRef("1b4e28ba-2fa1-11d2-883f-0016d3cca427.png")
	if key.Kind() != RefKey {
		t.Errorf("KeyRef kind = %v, want RefKey", key.Kind())
	}
	if got, ok := key.Key(); !ok || got != "1b4e28ba-2fa1-11d2-883f-0016d3cca427.png" {
		t.Errorf("Key() = %q, %v", got, ok)
	}
	if _, ok := key.Builtin(); ok {
		t.Error("Builtin() on key ref = true, want false")
	}

	builtin := BuiltinRef(BuiltinLogo)
	if builtin.Kind() != RefBuiltin {
		t.Errorf("BuiltinRef kind = %v, want RefBuiltin", builtin.Kind())
	}
	if got, ok := builtin.Builtin(); !ok || got != BuiltinLogo {
		t.Errorf("Builtin() = %q, %v", got, ok)
	}
	if _, ok := builtin.Key(); ok {
		t.Error("Key() on builtin ref = true, want false")
	}
}

func TestKeyRefEmptyString(t *testing.T) {
	// An empty key cannot address anything, so it collapses to empty.
	if got := KeyRef(""); !got.IsEmpty() {
		t.Errorf("KeyRef(\"\") = %v, want empty", got)
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AssetRef
		wantErr bool
	}{
		{"empty", "", EmptyRef(), false},
		{"key", "abc.png", KeyRef("abc.png"), false},
		{"builtin background", "builtin:background", BuiltinRef(BuiltinBackground), false},
		{"builtin logo", "builtin:logo", BuiltinRef(BuiltinLogo), false},
		{"unknown builtin", "builtin:watermark", AssetRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseRef(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRefStringRoundTrip(t *testing.T) {
	refs := []AssetRef{
		EmptyRef(),
		KeyRef("1b4e28ba-2fa1-11d2-883f-0016d3cca427.png"),
		BuiltinRef(BuiltinBackground),
		BuiltinRef(BuiltinLogo),
	}

	for _, ref := range refs {
		got, err := ParseRef(ref.String())
		if err != nil {
			t.Fatalf("ParseRef(%q) error = %v", ref.String(), err)
		}
		if got != ref {
			t.Errorf("round trip of %v = %v", ref, got)
		}
	}
}

func TestRefJSON(t *testing.T) {
	type holder struct {
		Ref AssetRef `json:"ref"`
	}

	tests := []struct {
		name string
		json string
		want AssetRef
	}{
		{"empty string", `{"ref":""}`, EmptyRef()},
		{"null tolerated", `{"ref":null}`, EmptyRef()},
		{"key", `{"ref":"k1.jpg"}`, KeyRef("k1.jpg")},
		{"builtin", `{"ref":"builtin:logo"}`, BuiltinRef(BuiltinLogo)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h holder
			if err := json.Unmarshal([]byte(tt.json), &h); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.json, err)
			}
			if h.Ref != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.json, h.Ref, tt.want)
			}
		})
	}

	t.Run("marshal", func(t *testing.T) {
		data, err := json.Marshal(holder{Ref: BuiltinRef(BuiltinBackground)})
		if err != nil {
			t.Fatalf("Marshal error = %v", err)
		}
		want := `{"ref":"builtin:background"}`
		if string(data) != want {
			t.Errorf("Marshal = %s, want %s", data, want)
		}
	})

	t.Run("unmarshal rejects non-string", func(t *testing.T) {
		var h holder
		if err := json.Unmarshal([]byte(`{"ref":42}`), &h); err == nil {
			t.Error("Unmarshal of numeric ref succeeded, want error")
		}
	})
}
