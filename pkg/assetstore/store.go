// Package assetstore holds imported artwork bytes for a single project
// session.
//
// The store is a process-local map from opaque keys to immutable byte
// blobs. Keys are minted on import and embed a normalized filename
// extension, so container entries and display layers can infer the
// media type without sniffing. Every import mints a fresh key:
// registering identical bytes twice yields two distinct keys.
//
// All methods are safe for concurrent use.
package assetstore

import (
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/panelforge/panelforge/pkg/errors"
)

// Store maps asset keys to their bytes.
type Store struct {
	mu     sync.RWMutex
	assets map[string][]byte
}

// New returns an empty store.
func New() *Store {
	return &Store{assets: make(map[string][]byte)}
}

// Register copies data into the store under a freshly minted key and
// returns the key. name is the source filename (or a bare extension)
// used to derive the key's extension suffix; when it yields nothing
// usable the content is sniffed.
func (s *Store) Register(data []byte, name string) (string, error) {
	if len(data) == 0 {
		return "", errors.New(errors.ErrCodeValidation, "cannot store empty asset")
	}

	key := uuid.NewString()
	if ext := normalizeExt(name, data); ext != "" {
		key += "." + ext
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.assets[key] = buf
	s.mu.Unlock()

	return key, nil
}

// Put copies data into the store under a caller-supplied key. Archive
// loading uses this to restore assets under their persisted keys.
// Putting an existing key replaces its bytes.
func (s *Store) Put(key string, data []byte) error {
	if err := errors.ValidateAssetKey(key); err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New(errors.ErrCodeValidation, "cannot store empty asset %q", key)
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.assets[key] = buf
	s.mu.Unlock()

	return nil
}

// Resolve returns the bytes stored under key. The returned slice is
// shared; callers must treat it as read-only.
func (s *Store) Resolve(key string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.assets[key]
	s.mu.RUnlock()

	if !ok {
		return nil, errors.New(errors.ErrCodeAssetNotFound, "asset %q not in store", key)
	}
	return data, nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	_, ok := s.assets[key]
	s.mu.RUnlock()
	return ok
}

// Delete removes key from the store. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.assets, key)
	s.mu.Unlock()
}

// Clear removes every asset.
func (s *Store) Clear() {
	s.mu.Lock()
	s.assets = make(map[string][]byte)
	s.mu.Unlock()
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.assets))
	for k := range s.assets {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Len returns the number of stored assets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}

// Size returns the byte size of the asset under key, or 0 when absent.
func (s *Store) Size(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets[key])
}

// sniffExt maps detected content types to key extensions.
var sniffExt = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/bmp":     "bmp",
	"image/svg+xml": "svg",
}

// normalizeExt derives a lowercase extension from a filename, a bare
// extension, or as a last resort the content itself. Returns "" when
// nothing usable is found.
func normalizeExt(name string, data []byte) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		// name may already be a bare extension like "png"
		ext = strings.ToLower(strings.TrimPrefix(name, "."))
	}
	if validExt(ext) {
		if ext == "jpeg" {
			return "jpg"
		}
		return ext
	}

	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return sniffExt[ct]
}

// validExt reports whether ext can be embedded in a store key: short,
// lowercase alphanumeric, nothing else. Keys become container entry
// names, so the grammar stays strict.
func validExt(ext string) bool {
	if ext == "" || len(ext) > 8 {
		return false
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
