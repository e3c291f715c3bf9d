// Package store owns the single JSON document backing a project root:
// load-or-default, in-place mutation, atomic save, explicit reload.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/clawmarks/internal/apperr"
	"github.com/starford/clawmarks/internal/models"
)

// DefaultFile is the backing file name inside the project root.
const DefaultFile = "clawmarks.json"

// Store caches the document for one project root. It is the single source
// of truth for durable state; all mutation goes through Mutate. It is not
// safe for concurrent use — the process handles requests one at a time.
type Store struct {
	root string // absolute path to the project root
	path string // absolute path to the backing file
	doc  *models.Document
}

// New creates a Store rooted at the given directory.
// The directory must already exist; the backing file need not.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("store: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store: root is not a directory: %s", abs)
	}
	return &Store{root: abs, path: filepath.Join(abs, DefaultFile)}, nil
}

// Root returns the absolute project root.
func (s *Store) Root() string { return s.root }

// Path returns the absolute path of the backing file.
func (s *Store) Path() string { return s.path }

// Load returns the cached document, reading it from disk on first use.
// A missing, unreadable, or unparseable file yields a fresh empty document.
// Repeated calls return the same pointer; callers mutate it by reference.
func (s *Store) Load() (*models.Document, error) {
	if s.doc != nil {
		return s.doc, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.doc = models.NewDocument()
		return s.doc, nil
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.doc = models.NewDocument()
		return s.doc, nil
	}
	if doc.Trails == nil {
		doc.Trails = []models.Trail{}
	}
	if doc.Marks == nil {
		doc.Marks = []models.Mark{}
	}
	s.doc = &doc
	return s.doc, nil
}

// Save writes the cached document to the backing file as pretty-printed
// JSON via an atomic tmp + fsync + rename. Calling Save before any Load
// is a programming error and returns apperr.ErrNotLoaded.
func (s *Store) Save() error {
	if s.doc == nil {
		return fmt.Errorf("store: save: %w", apperr.ErrNotLoaded)
	}
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal document: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.root, ".clawmarks-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}

// Mutate is the only sanctioned way to change durable state: it loads the
// document, applies fn in place, and saves. If fn returns an error the save
// never happens; the cache then reflects whatever fn did before failing,
// so callers must treat a failed mutation as leaving memory indeterminate.
func (s *Store) Mutate(fn func(*models.Document) error) (*models.Document, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := s.Save(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Reload discards the cache and re-reads the backing file, picking up
// changes made by an external editor. Last writer still wins on the next
// Save; there is no conflict detection.
func (s *Store) Reload() (*models.Document, error) {
	s.doc = nil
	return s.Load()
}
