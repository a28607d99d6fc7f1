// Package archive reads and writes the storyboard container format.
//
// A container is an ordinary zip file with three kinds of entries:
//
//	project.json        the manifest: title, pages, panel sequence
//	assets/<key>        raw artwork bytes, one entry per store key
//	preview.jpg         a small thumbnail for file browsers (optional)
//
// Saving packages exactly the assets the manifest can reach, so a
// container never accumulates orphaned artwork. Built-in placeholder
// references are materialized into real assets on save, which keeps
// containers self-contained. Loading is tolerant: unknown entries are
// ignored and references to missing assets degrade to empty rather
// than failing the whole file, but a missing or malformed manifest
// rejects the container and leaves the session's store untouched.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/panelforge/panelforge/pkg/assetstore"
	"github.com/panelforge/panelforge/pkg/builtin"
	"github.com/panelforge/panelforge/pkg/errors"
	"github.com/panelforge/panelforge/pkg/project"
)

const (
	manifestEntry = "project.json"
	assetPrefix   = "assets/"
	previewEntry  = "preview.jpg"
)

// Condition is a non-fatal problem noticed while loading or saving,
// reported so callers can journal it. Code classifies the degradation
// with the same taxonomy fatal errors use.
type Condition struct {
	Context string
	Code    errors.Code
	Message string
}

// Result carries the outcome of a load or save: the conditions that
// degraded gracefully instead of failing the operation.
type Result struct {
	Conditions []Condition
}

func (r *Result) note(context string, code errors.Code, format string, args ...any) {
	r.Conditions = append(r.Conditions, Condition{Context: context, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Write packages a project and its reachable assets as a container
// written to w.
//
// The caller's project is never modified: Write works on a deep copy.
// Built-in references in the copy are materialized first, importing
// the bundled bytes into the store once per kind and rewriting the
// references to the minted keys, so the container is self-contained.
// A reference whose key has vanished from the store degrades to empty
// rather than failing the save. Preview generation is best effort and
// never fails the save.
func Write(w io.Writer, p *project.Project, store *assetstore.Store) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	snap := p.Clone()
	materialize(snap, store, res)
	dropDangling(snap, store, res)

	data, err := encodeManifest(snap)
	if err != nil {
		return nil, err
	}

	zw := zip.NewWriter(w)

	mw, err := zw.Create(manifestEntry)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create manifest entry")
	}
	if _, err := mw.Write(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "write manifest")
	}

	keys := make([]string, 0)
	for key := range snap.ReachableKeys() {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		blob, err := store.Resolve(key)
		if err != nil {
			// dropDangling already rewrote unreachable keys; a miss
			// here means the store changed mid-save.
			return nil, errors.Wrap(errors.ErrCodeAssetResolution, err, "package asset %q", key)
		}
		aw, err := zw.Create(assetPrefix + key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "create asset entry %q", key)
		}
		if _, err := aw.Write(blob); err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "write asset %q", key)
		}
	}

	if thumb, ok := preview(snap, store); ok {
		pw, err := zw.Create(previewEntry)
		if err == nil {
			if _, err := pw.Write(thumb); err != nil {
				return nil, errors.Wrap(errors.ErrCodeIO, err, "write preview")
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "finish container")
	}
	return res, nil
}

// Save writes a container to a file. The file is written via a
// temporary sibling and renamed into place so a failed save never
// truncates an existing container.
func Save(path string, p *project.Project, store *assetstore.Store) (*Result, error) {
	if err := errors.ValidateArchivePath(path); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".panelforge-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create temporary file in %q", dir)
	}
	defer os.Remove(tmp.Name())

	res, err := Write(tmp, p, store)
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "close %q", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "move container to %q", path)
	}
	return res, nil
}

// Read parses a container from r and commits its contents: the store
// is cleared and repopulated with the container's assets, and the
// decoded project is returned.
//
// The store is only touched after the manifest has parsed and
// validated, so a rejected container cannot disturb the session.
func Read(r io.ReaderAt, size int64, store *assetstore.Store) (*project.Project, *Result, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeValidation, err, "not a storyboard container")
	}

	res := &Result{}

	var manifestFile *zip.File
	for _, f := range zr.File {
		if f.Name == manifestEntry {
			manifestFile = f
			break
		}
	}
	if manifestFile == nil {
		return nil, nil, errors.New(errors.ErrCodeValidation, "container has no %s", manifestEntry)
	}

	data, err := readEntry(manifestFile)
	if err != nil {
		return nil, nil, err
	}
	p, err := decodeManifest(data)
	if err != nil {
		return nil, nil, err
	}

	assets := make(map[string][]byte)
	for _, f := range zr.File {
		key, ok := strings.CutPrefix(f.Name, assetPrefix)
		if !ok {
			continue
		}
		if err := errors.ValidateEntryName(f.Name); err != nil {
			res.note("load", errors.GetCode(err), "skipping unsafe entry %q: %s", f.Name, errors.UserMessage(err))
			continue
		}
		if err := errors.ValidateAssetKey(key); err != nil {
			res.note("load", errors.ErrCodeInvalidRef, "skipping entry with malformed key %q", key)
			continue
		}
		blob, err := readEntry(f)
		if err != nil {
			res.note("load", errors.ErrCodeIO, "skipping unreadable asset %q: %v", key, err)
			continue
		}
		if len(blob) == 0 {
			res.note("load", errors.ErrCodeValidation, "skipping empty asset %q", key)
			continue
		}
		assets[key] = blob
	}

	hydrate(p, assets, res)

	store.Clear()
	for key, blob := range assets {
		if err := store.Put(key, blob); err != nil {
			return nil, nil, err
		}
	}
	return p, res, nil
}

// ReadBytes parses a container held in memory.
func ReadBytes(data []byte, store *assetstore.Store) (*project.Project, *Result, error) {
	return Read(bytes.NewReader(data), int64(len(data)), store)
}

// Load reads a container from a file.
func Load(path string, store *assetstore.Store) (*project.Project, *Result, error) {
	if err := errors.ValidateArchivePath(path); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIO, err, "open %q", path)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIO, err, "stat %q", path)
	}
	return Read(f, st.Size(), store)
}

// materialize rewrites built-in references to freshly imported assets,
// one import per built-in kind. A kind that cannot be fetched or
// stored degrades every reference to it to empty.
func materialize(p *project.Project, store *assetstore.Store, res *Result) {
	minted := make(map[project.BuiltinKind]project.AssetRef)
	failed := make(map[project.BuiltinKind]bool)

	p.EachRef(func(ref *project.AssetRef) {
		kind, ok := ref.Builtin()
		if !ok {
			return
		}
		if failed[kind] {
			*ref = project.EmptyRef()
			return
		}
		if repl, ok := minted[kind]; ok {
			*ref = repl
			return
		}
		data, err := builtin.For(kind)
		if err != nil {
			res.note("materialize", errors.ErrCodeMaterialization, "built-in %q unavailable: %v", kind, err)
			failed[kind] = true
			*ref = project.EmptyRef()
			return
		}
		key, err := store.Register(data, builtin.Ext())
		if err != nil {
			res.note("materialize", errors.ErrCodeMaterialization, "cannot store built-in %q: %v", kind, err)
			failed[kind] = true
			*ref = project.EmptyRef()
			return
		}
		minted[kind] = project.KeyRef(key)
		*ref = minted[kind]
	})
}

// dropDangling rewrites key references that no longer resolve, keeping
// the packaged container's reachability exact.
func dropDangling(p *project.Project, store *assetstore.Store, res *Result) {
	p.EachRef(func(ref *project.AssetRef) {
		if key, ok := ref.Key(); ok && !store.Has(key) {
			res.note("save", errors.ErrCodeAssetResolution, "reference to missing asset %q dropped", key)
			*ref = project.EmptyRef()
		}
	})
}

// hydrate degrades references to assets the container does not carry.
// Built-in references stay as they are; they resolve from bundled
// artwork at render time.
func hydrate(p *project.Project, assets map[string][]byte, res *Result) {
	p.EachRef(func(ref *project.AssetRef) {
		key, ok := ref.Key()
		if !ok {
			return
		}
		if _, found := assets[key]; !found {
			res.note("hydrate", errors.ErrCodeAssetResolution, "asset %q missing from container, reference cleared", key)
			*ref = project.EmptyRef()
		}
	})
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open entry %q", f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read entry %q", f.Name)
	}
	return data, nil
}
