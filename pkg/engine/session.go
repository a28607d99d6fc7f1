// Package engine is the boundary between the storyboard UI and the
// packaging and rendering machinery.
//
// A Session owns the asset store for one editing session and exposes
// the three engine operations: save a project as a container, load a
// container back, and export a project as a document. The operations
// share one store, so a busy flag serializes them; a second call
// while one is running is refused with a coded error rather than
// queued. Failures and degradations are appended to a diagnostics
// journal and returned as plain coded errors. Nothing escapes as a
// panic.
package engine

import (
	"bytes"
	"context"
	"sync/atomic"
	"time"

	"github.com/panelforge/panelforge/pkg/archive"
	"github.com/panelforge/panelforge/pkg/assetstore"
	"github.com/panelforge/panelforge/pkg/errors"
	"github.com/panelforge/panelforge/pkg/project"
	"github.com/panelforge/panelforge/pkg/render"
)

// Session owns the asset store and diagnostics journal for one
// editing session. The project snapshot itself stays with the caller
// and is passed into each operation.
type Session struct {
	store   *assetstore.Store
	journal Journal
	busy    atomic.Bool
}

// NewSession creates a session with an empty store. A nil journal
// defaults to an in-memory one.
func NewSession(journal Journal) *Session {
	if journal == nil {
		journal = NewMemoryJournal()
	}
	return &Session{
		store:   assetstore.New(),
		journal: journal,
	}
}

// Store exposes the session's asset store for registering uploads.
func (s *Session) Store() *assetstore.Store { return s.store }

// Fetcher returns the session's byte-fetch capability: store keys plus
// the bundled placeholder artwork.
func (s *Session) Fetcher() Fetcher { return storeFetcher{store: s.store} }

// SaveArchive packages p and its assets as container bytes.
func (s *Session) SaveArchive(p *project.Project) (data []byte, err error) {
	if !s.begin() {
		return nil, errBusy("save archive")
	}
	defer s.end()
	defer s.rescue("save archive", &err)

	var buf bytes.Buffer
	res, err := archive.Write(&buf, p, s.store)
	if err != nil {
		s.record("save archive", err)
		return nil, err
	}
	s.recordConditions(res)
	return buf.Bytes(), nil
}

// SaveFile packages p into a container file at path.
func (s *Session) SaveFile(path string, p *project.Project) (err error) {
	if !s.begin() {
		return errBusy("save file")
	}
	defer s.end()
	defer s.rescue("save file", &err)

	res, err := archive.Save(path, p, s.store)
	if err != nil {
		s.record("save file", err)
		return err
	}
	s.recordConditions(res)
	return nil
}

// LoadArchive parses container bytes, replacing the session store's
// contents with the container's assets.
func (s *Session) LoadArchive(data []byte) (p *project.Project, err error) {
	if !s.begin() {
		return nil, errBusy("load archive")
	}
	defer s.end()
	defer s.rescue("load archive", &err)

	p, res, err := archive.ReadBytes(data, s.store)
	if err != nil {
		s.record("load archive", err)
		return nil, err
	}
	s.recordConditions(res)
	return p, nil
}

// LoadFile reads a container file, replacing the session store's
// contents.
func (s *Session) LoadFile(path string) (p *project.Project, err error) {
	if !s.begin() {
		return nil, errBusy("load file")
	}
	defer s.end()
	defer s.rescue("load file", &err)

	p, res, err := archive.Load(path, s.store)
	if err != nil {
		s.record("load file", err)
		return nil, err
	}
	s.recordConditions(res)
	return p, nil
}

// ExportDocument renders p into document bytes. ctx is honored
// between pages.
func (s *Session) ExportDocument(ctx context.Context, p *project.Project) (data []byte, err error) {
	if !s.begin() {
		return nil, errBusy("export document")
	}
	defer s.end()
	defer s.rescue("export document", &err)

	data, res, err := render.Export(ctx, p, s.Fetcher())
	if err != nil {
		s.record("export document", err)
		return nil, err
	}
	s.recordRenderConditions(res)
	return data, nil
}

func (s *Session) begin() bool { return s.busy.CompareAndSwap(false, true) }
func (s *Session) end()        { s.busy.Store(false) }

func errBusy(op string) error {
	return errors.New(errors.ErrCodeBusy, "cannot %s, another operation is running", op)
}

// rescue converts a panic into a journaled internal error, keeping
// the engine boundary panic-free.
func (s *Session) rescue(op string, err *error) {
	if r := recover(); r != nil {
		e := errors.New(errors.ErrCodeInternal, "%s failed unexpectedly: %v", op, r)
		s.record(op, e)
		*err = e
	}
}

func (s *Session) record(context string, err error) {
	_ = s.journal.Append(Entry{
		Time:    time.Now().UTC(),
		Context: context,
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
		Cause:   err.Error(),
	})
}

func (s *Session) note(context string, code errors.Code, message string) {
	_ = s.journal.Append(Entry{
		Time:    time.Now().UTC(),
		Context: context,
		Code:    code,
		Message: message,
	})
}

func (s *Session) recordConditions(res *archive.Result) {
	if res == nil {
		return
	}
	for _, c := range res.Conditions {
		s.note(c.Context, c.Code, c.Message)
	}
}

func (s *Session) recordRenderConditions(res *render.Result) {
	if res == nil {
		return
	}
	for _, c := range res.Conditions {
		s.note(c.Context, c.Code, c.Message)
	}
}
