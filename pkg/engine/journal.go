package engine

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/panelforge/panelforge/pkg/errors"
)

// Entry is one diagnostics record: when something degraded or failed,
// where it happened, how it is classified, and what the root cause was.
type Entry struct {
	Time    time.Time   `json:"time"`
	Context string      `json:"context"`
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"message"`
	Cause   string      `json:"cause,omitempty"`
}

// Journal persists diagnostics entries. Appending must be safe from
// concurrent callers. A failing journal never fails the operation
// that was being journaled.
type Journal interface {
	Append(e Entry) error
}

// FileJournal appends entries to a JSON-lines file, one object per
// line, creating the file on first use.
type FileJournal struct {
	mu   sync.Mutex
	path string
}

// NewFileJournal creates a journal writing to path.
func NewFileJournal(path string) *FileJournal {
	return &FileJournal{path: path}
}

// Append writes one entry as a JSON line.
func (j *FileJournal) Append(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode journal entry")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "open journal %q", j.path)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "append to journal %q", j.path)
	}
	return nil
}

// Path returns the journal file location.
func (j *FileJournal) Path() string { return j.path }

var _ Journal = (*FileJournal)(nil)

// MemoryJournal keeps entries in memory. It is the default journal
// and the one tests inspect.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Append records the entry.
func (j *MemoryJournal) Append(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (j *MemoryJournal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

var _ Journal = (*MemoryJournal)(nil)
