package project

import (
	"encoding/json"
	"strings"

	"github.com/panelforge/panelforge/pkg/errors"
)

// RefKind discriminates the three AssetRef variants.
type RefKind uint8

// AssetRef variants.
const (
	RefEmpty   RefKind = iota // no asset
	RefKey                    // user-imported asset, addressed by store key
	RefBuiltin                // bundled default artwork
)

// BuiltinKind names a piece of bundled default artwork.
type BuiltinKind string

// Bundled assets shipped with the engine.
const (
	BuiltinBackground BuiltinKind = "background"
	BuiltinLogo       BuiltinKind = "logo"
)

// builtinPrefix marks built-in references in their wire form.
const builtinPrefix = "builtin:"

// AssetRef identifies a piece of artwork without holding its bytes.
// It is a tagged union with three variants: empty (no asset), a store
// key (user-imported asset), or a built-in default. The zero value is
// the empty reference.
//
// The three variants cannot be confused: keys are opaque store-minted
// strings, built-ins carry an explicit marker, and empty is its own
// state rather than a magic string.
type AssetRef struct {
	kind    RefKind
	key     string
	builtin BuiltinKind
}

// EmptyRef returns the empty reference. Equivalent to the zero value.
func EmptyRef() AssetRef {
	return AssetRef{}
}

// KeyRef returns a reference to a store-held asset.
func KeyRef(key string) AssetRef {
	if key == "" {
		return AssetRef{}
	}
	return AssetRef{kind: RefKey, key: key}
}

// BuiltinRef returns a reference to bundled default artwork.
func BuiltinRef(kind BuiltinKind) AssetRef {
	return AssetRef{kind: RefBuiltin, builtin: kind}
}

// Kind returns the variant tag.
func (r AssetRef) Kind() RefKind {
	return r.kind
}

// IsEmpty reports whether the reference points at nothing.
func (r AssetRef) IsEmpty() bool {
	return r.kind == RefEmpty
}

// Key returns the store key and true when the reference is a key
// reference.
func (r AssetRef) Key() (string, bool) {
	if r.kind != RefKey {
		return "", false
	}
	return r.key, true
}

// Builtin returns the built-in kind and true when the reference points
// at bundled artwork.
func (r AssetRef) Builtin() (BuiltinKind, bool) {
	if r.kind != RefBuiltin {
		return "", false
	}
	return r.builtin, true
}

// String returns the wire form: empty string, "builtin:<kind>", or the
// bare store key.
func (r AssetRef) String() string {
	switch r.kind {
	case RefKey:
		return r.key
	case RefBuiltin:
		return builtinPrefix + string(r.builtin)
	default:
		return ""
	}
}

// ParseRef parses the wire form produced by String.
func ParseRef(s string) (AssetRef, error) {
	if s == "" {
		return AssetRef{}, nil
	}
	if name, ok := strings.CutPrefix(s, builtinPrefix); ok {
		switch BuiltinKind(name) {
		case BuiltinBackground, BuiltinLogo:
			return BuiltinRef(BuiltinKind(name)), nil
		}
		return AssetRef{}, errors.New(errors.ErrCodeInvalidRef, "unknown built-in asset %q", name)
	}
	return KeyRef(s), nil
}

// MarshalJSON encodes the reference as its wire string.
func (r AssetRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes the wire string form. null decodes to empty for
// tolerance of older manifests.
func (r *AssetRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = AssetRef{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRef, err, "asset reference must be a string")
	}
	ref, err := ParseRef(s)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}
