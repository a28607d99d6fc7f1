// Package project defines the in-memory storyboard model.
//
// A Project is a plain data snapshot: the title page, the ordered panel
// sequence, and the end page, with every piece of artwork referenced
// through an AssetRef rather than held inline. Archives persist exactly
// this shape (see pkg/archive), and the renderer consumes it read-only
// (see pkg/render).
//
// # Structure
//
//	Project
//	├── TitlePage   header, subheader, background ref, optional logo
//	├── Panels      ordered sequence of image + script cells
//	└── EndPage     background ref, optional logo, closing text
//
// Values are deep-copied with Clone before handing them across goroutine
// boundaries; the model itself carries no locks.
package project

import (
	"github.com/google/uuid"

	"github.com/panelforge/panelforge/pkg/errors"
)

// DefaultTitle is used when an archive predates the title field and its
// title page header is empty.
const DefaultTitle = "Untitled Board"

// DefaultEndText is the closing line a fresh end page starts with.
const DefaultEndText = "The End"

// SizeClass selects one of the fixed logo sizes.
type SizeClass string

// Logo size classes, smallest to largest.
const (
	SizeS  SizeClass = "S"
	SizeM  SizeClass = "M"
	SizeL  SizeClass = "L"
	SizeXL SizeClass = "XL"
)

// ValidSizeClass reports whether s is one of the defined size classes.
func ValidSizeClass(s SizeClass) bool {
	switch s {
	case SizeS, SizeM, SizeL, SizeXL:
		return true
	}
	return false
}

// Anchor names one of the nine logo anchor positions on a page.
type Anchor string

// Anchor positions form a 3x3 grid over the page.
const (
	AnchorTopLeft      Anchor = "top-left"
	AnchorTopCenter    Anchor = "top-center"
	AnchorTopRight     Anchor = "top-right"
	AnchorMiddleLeft   Anchor = "middle-left"
	AnchorCenter       Anchor = "center"
	AnchorMiddleRight  Anchor = "middle-right"
	AnchorBottomLeft   Anchor = "bottom-left"
	AnchorBottomCenter Anchor = "bottom-center"
	AnchorBottomRight  Anchor = "bottom-right"
)

// ValidAnchor reports whether a is one of the nine anchor positions.
func ValidAnchor(a Anchor) bool {
	switch a {
	case AnchorTopLeft, AnchorTopCenter, AnchorTopRight,
		AnchorMiddleLeft, AnchorCenter, AnchorMiddleRight,
		AnchorBottomLeft, AnchorBottomCenter, AnchorBottomRight:
		return true
	}
	return false
}

// Logo places a mark on a page corner or edge.
type Logo struct {
	Ref    AssetRef  // image to draw, empty means no logo
	Anchor Anchor    // which of the nine positions
	Size   SizeClass // rendered size class
}

// NewLogo returns a logo with the given image reference and default
// placement (bottom-right, size M).
func NewLogo(ref AssetRef) *Logo {
	return &Logo{Ref: ref, Anchor: AnchorBottomRight, Size: SizeM}
}

// TitlePage is the opening page of a board.
type TitlePage struct {
	Header     string   // main heading, drawn large
	Subheader  string   // secondary line(s) under the header
	Background AssetRef // full-bleed background image
	Logo       *Logo    // optional mark, nil when absent
}

// EndPage is the closing page of a board.
type EndPage struct {
	Background  AssetRef // full-bleed background image
	Logo        *Logo    // optional mark, nil when absent
	Text        string   // closing line
	ShowText    bool     // draw Text when true
	MirrorTitle bool     // substitute title page artwork at render time
}

// Panel is a single storyboard cell: one image plus its script.
type Panel struct {
	ID     string   // stable identity, minted once
	Image  AssetRef // panel artwork
	Script string   // caption text, may contain [emphasis] spans
}

// NewPanel returns an empty panel with a fresh identity.
func NewPanel() Panel {
	return Panel{ID: uuid.NewString()}
}

// Project is a complete storyboard snapshot.
type Project struct {
	Title         string
	TitlePage     TitlePage
	Panels        []Panel
	EndPage       EndPage
	LinkLogoSizes bool // keep title and end logo sizes in sync in editors
}

// New returns a project with sensible defaults: built-in background
// artwork on the outer pages and the stock closing line.
func New(title string) *Project {
	return &Project{
		Title: title,
		TitlePage: TitlePage{
			Header:     title,
			Background: BuiltinRef(BuiltinBackground),
		},
		EndPage: EndPage{
			Background: BuiltinRef(BuiltinBackground),
			Text:       DefaultEndText,
			ShowText:   true,
		},
	}
}

// Clone returns a deep copy of the project. The copy shares no pointers
// with the original, so it can be mutated or rendered concurrently.
func (p *Project) Clone() *Project {
	c := *p
	c.Panels = make([]Panel, len(p.Panels))
	copy(c.Panels, p.Panels)
	c.TitlePage.Logo = cloneLogo(p.TitlePage.Logo)
	c.EndPage.Logo = cloneLogo(p.EndPage.Logo)
	return &c
}

func cloneLogo(l *Logo) *Logo {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// Validate checks the snapshot for values that cannot be persisted or
// rendered. It returns the first problem found.
func (p *Project) Validate() error {
	if err := errors.ValidateProjectTitle(p.Title); err != nil {
		return err
	}
	if p.TitlePage.Logo != nil {
		if err := validateLogo("title page", p.TitlePage.Logo); err != nil {
			return err
		}
	}
	if p.EndPage.Logo != nil {
		if err := validateLogo("end page", p.EndPage.Logo); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(p.Panels))
	for i, panel := range p.Panels {
		if panel.ID == "" {
			return errors.New(errors.ErrCodeValidation, "panel %d has no id", i)
		}
		if _, dup := seen[panel.ID]; dup {
			return errors.New(errors.ErrCodeValidation, "duplicate panel id %q", panel.ID)
		}
		seen[panel.ID] = struct{}{}
	}
	return nil
}

func validateLogo(where string, l *Logo) error {
	if !ValidAnchor(l.Anchor) {
		return errors.New(errors.ErrCodeValidation, "%s logo has unknown anchor %q", where, l.Anchor)
	}
	if !ValidSizeClass(l.Size) {
		return errors.New(errors.ErrCodeValidation, "%s logo has unknown size class %q", where, l.Size)
	}
	return nil
}

// Refs returns every asset reference reachable from the snapshot,
// including empty ones, in a stable order: title background, title logo,
// panel images in sequence, end background, end logo.
func (p *Project) Refs() []AssetRef {
	refs := make([]AssetRef, 0, len(p.Panels)+4)
	refs = append(refs, p.TitlePage.Background)
	if p.TitlePage.Logo != nil {
		refs = append(refs, p.TitlePage.Logo.Ref)
	}
	for _, panel := range p.Panels {
		refs = append(refs, panel.Image)
	}
	refs = append(refs, p.EndPage.Background)
	if p.EndPage.Logo != nil {
		refs = append(refs, p.EndPage.Logo.Ref)
	}
	return refs
}

// ReachableKeys returns the set of store keys referenced by the snapshot.
// Built-in and empty references carry no key and are skipped.
func (p *Project) ReachableKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, ref := range p.Refs() {
		if key, ok := ref.Key(); ok {
			keys[key] = struct{}{}
		}
	}
	return keys
}

// EachRef calls fn for every asset reference slot in the snapshot,
// allowing in-place rewriting (for example during hydration, when
// unresolvable references degrade to empty).
func (p *Project) EachRef(fn func(ref *AssetRef)) {
	fn(&p.TitlePage.Background)
	if p.TitlePage.Logo != nil {
		fn(&p.TitlePage.Logo.Ref)
	}
	for i := range p.Panels {
		fn(&p.Panels[i].Image)
	}
	fn(&p.EndPage.Background)
	if p.EndPage.Logo != nil {
		fn(&p.EndPage.Logo.Ref)
	}
}
