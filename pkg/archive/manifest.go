package archive

import (
	"encoding/json"

	"github.com/panelforge/panelforge/pkg/errors"
	"github.com/panelforge/panelforge/pkg/project"
)

// manifestVersion is written into every container. Readers accept any
// version and rely on field tolerance for evolution.
const manifestVersion = 1

type manifest struct {
	Version       int       `json:"version"`
	Title         string    `json:"title"`
	TitlePage     titlePage `json:"titlePage"`
	Panels        []panel   `json:"panels"`
	EndPage       endPage   `json:"endPage"`
	LinkLogoSizes bool      `json:"linkLogoSizes"`
}

type titlePage struct {
	Header     string           `json:"header"`
	Subheader  string           `json:"subheader,omitempty"`
	Background project.AssetRef `json:"background"`
	Logo       *logo            `json:"logo,omitempty"`
}

type endPage struct {
	Background  project.AssetRef `json:"background"`
	Logo        *logo            `json:"logo,omitempty"`
	Text        string           `json:"text"`
	ShowText    *bool            `json:"showText,omitempty"`
	MirrorTitle bool             `json:"mirrorTitle,omitempty"`
}

type panel struct {
	ID     string           `json:"id"`
	Image  project.AssetRef `json:"image"`
	Script string           `json:"script,omitempty"`
}

type logo struct {
	Image  project.AssetRef `json:"image"`
	Anchor string           `json:"anchor,omitempty"`
	Size   string           `json:"size,omitempty"`
}

// encodeManifest renders a project snapshot as indented manifest JSON.
// Only persistent fields are written; anything derived at display or
// render time stays out of the container.
func encodeManifest(p *project.Project) ([]byte, error) {
	m := manifest{
		Version:       manifestVersion,
		Title:         p.Title,
		LinkLogoSizes: p.LinkLogoSizes,
		TitlePage: titlePage{
			Header:     p.TitlePage.Header,
			Subheader:  p.TitlePage.Subheader,
			Background: p.TitlePage.Background,
			Logo:       logoToWire(p.TitlePage.Logo),
		},
		EndPage: endPage{
			Background:  p.EndPage.Background,
			Logo:        logoToWire(p.EndPage.Logo),
			Text:        p.EndPage.Text,
			ShowText:    &p.EndPage.ShowText,
			MirrorTitle: p.EndPage.MirrorTitle,
		},
		Panels: make([]panel, len(p.Panels)),
	}
	for i, pn := range p.Panels {
		m.Panels[i] = panel{ID: pn.ID, Image: pn.Image, Script: pn.Script}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	return append(data, '\n'), nil
}

// decodeManifest parses manifest JSON into a project snapshot.
//
// Two compatibility rules apply to containers written before the
// current layout: a missing title falls back to the title page header
// (then to the stock name), and a missing showText flag means the
// closing text is shown.
func decodeManifest(data []byte) (*project.Project, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}

	p := &project.Project{
		Title:         m.Title,
		LinkLogoSizes: m.LinkLogoSizes,
		TitlePage: project.TitlePage{
			Header:     m.TitlePage.Header,
			Subheader:  m.TitlePage.Subheader,
			Background: m.TitlePage.Background,
		},
		EndPage: project.EndPage{
			Background:  m.EndPage.Background,
			Text:        m.EndPage.Text,
			ShowText:    true,
			MirrorTitle: m.EndPage.MirrorTitle,
		},
		Panels: make([]project.Panel, len(m.Panels)),
	}
	if m.EndPage.ShowText != nil {
		p.EndPage.ShowText = *m.EndPage.ShowText
	}

	var err error
	if p.TitlePage.Logo, err = logoFromWire(m.TitlePage.Logo, "title page"); err != nil {
		return nil, err
	}
	if p.EndPage.Logo, err = logoFromWire(m.EndPage.Logo, "end page"); err != nil {
		return nil, err
	}

	for i, pn := range m.Panels {
		if pn.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "panel %d has no id", i)
		}
		p.Panels[i] = project.Panel{ID: pn.ID, Image: pn.Image, Script: pn.Script}
	}

	if p.Title == "" {
		p.Title = p.TitlePage.Header
	}
	if p.Title == "" {
		p.Title = project.DefaultTitle
	}

	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "manifest")
	}
	return p, nil
}

func logoToWire(l *project.Logo) *logo {
	if l == nil {
		return nil
	}
	return &logo{Image: l.Ref, Anchor: string(l.Anchor), Size: string(l.Size)}
}

func logoFromWire(l *logo, where string) (*project.Logo, error) {
	if l == nil {
		return nil, nil
	}
	out := &project.Logo{
		Ref:    l.Image,
		Anchor: project.AnchorBottomRight,
		Size:   project.SizeM,
	}
	if l.Anchor != "" {
		out.Anchor = project.Anchor(l.Anchor)
		if !project.ValidAnchor(out.Anchor) {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "%s logo has unknown anchor %q", where, l.Anchor)
		}
	}
	if l.Size != "" {
		out.Size = project.SizeClass(l.Size)
		if !project.ValidSizeClass(out.Size) {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "%s logo has unknown size %q", where, l.Size)
		}
	}
	return out, nil
}
