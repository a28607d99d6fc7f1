package engine

import (
	"github.com/panelforge/panelforge/pkg/assetstore"
	"github.com/panelforge/panelforge/pkg/builtin"
	"github.com/panelforge/panelforge/pkg/errors"
	"github.com/panelforge/panelforge/pkg/project"
)

// Fetcher resolves asset references to raw bytes. It is the byte-fetch
// capability the renderer and codec draw artwork through.
type Fetcher interface {
	Fetch(ref project.AssetRef) ([]byte, error)
}

// storeFetcher serves keys from the session store and placeholder
// references from the bundled artwork.
type storeFetcher struct {
	store *assetstore.Store
}

func (f storeFetcher) Fetch(ref project.AssetRef) ([]byte, error) {
	if kind, ok := ref.Builtin(); ok {
		return builtin.For(kind)
	}
	if key, ok := ref.Key(); ok {
		return f.store.Resolve(key)
	}
	return nil, errors.New(errors.ErrCodeInvalidRef, "cannot fetch an empty reference")
}

var _ Fetcher = storeFetcher{}
