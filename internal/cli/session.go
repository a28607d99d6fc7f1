package cli

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/panelforge/panelforge/pkg/engine"
)

// journalName is the diagnostics journal file under the state directory.
const journalName = "diagnostics.jsonl"

// newJournal returns the durable diagnostics journal. When the state
// directory cannot be created it falls back to an in-memory journal so
// commands still run.
func newJournal(logger *log.Logger) engine.Journal {
	dir, err := stateDir()
	if err == nil {
		err = os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		logger.Debugf("diagnostics journal unavailable: %v", err)
		return engine.NewMemoryJournal()
	}
	return engine.NewFileJournal(filepath.Join(dir, journalName))
}

// boardSession wraps engine.Session with a journal that both persists
// entries to the diagnostics file and keeps them readable in memory, so
// a command can surface the warnings from the operation it just ran.
type boardSession struct {
	*engine.Session
	mem *engine.MemoryJournal
}

// newSession creates a session whose diagnostics go to the state
// directory journal and to an in-memory copy for display.
func newSession(logger *log.Logger) *boardSession {
	mem := engine.NewMemoryJournal()
	journal := teeJournal{primary: newJournal(logger), mem: mem}
	return &boardSession{Session: engine.NewSession(journal), mem: mem}
}

// mark returns a cursor into the in-memory journal. Entries appended
// after the mark belong to the operations run since.
func (s *boardSession) mark() int { return len(s.mem.Entries()) }

// warn prints every journal entry recorded after mark as a warning.
// Call it after a successful operation; failed operations already
// return their error.
func (s *boardSession) warn(mark int) {
	entries := s.mem.Entries()
	if mark > len(entries) {
		return
	}
	for _, e := range entries[mark:] {
		printWarning("%s: %s", e.Context, e.Message)
	}
}

// teeJournal appends every entry to both journals.
type teeJournal struct {
	primary engine.Journal
	mem     *engine.MemoryJournal
}

func (t teeJournal) Append(e engine.Entry) error {
	if err := t.mem.Append(e); err != nil {
		return err
	}
	return t.primary.Append(e)
}

var _ engine.Journal = teeJournal{}
