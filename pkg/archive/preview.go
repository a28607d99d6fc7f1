package archive

import (
	"bytes"

	"github.com/disintegration/imaging"

	"github.com/panelforge/panelforge/pkg/assetstore"
	"github.com/panelforge/panelforge/pkg/project"
)

const (
	previewMaxSide = 480
	previewQuality = 75
)

// preview renders the container thumbnail from the first panel image,
// falling back to the title page background. It returns false when no
// source asset exists or the image cannot be processed; the container
// is simply written without a preview then.
func preview(p *project.Project, store *assetstore.Store) ([]byte, bool) {
	src, ok := previewSource(p)
	if !ok {
		return nil, false
	}
	blob, err := store.Resolve(src)
	if err != nil {
		return nil, false
	}

	img, err := imaging.Decode(bytes.NewReader(blob), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false
	}
	thumb := imaging.Fit(img, previewMaxSide, previewMaxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(previewQuality)); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

func previewSource(p *project.Project) (string, bool) {
	for _, panel := range p.Panels {
		if key, ok := panel.Image.Key(); ok {
			return key, true
		}
	}
	if key, ok := p.TitlePage.Background.Key(); ok {
		return key, true
	}
	return "", false
}
