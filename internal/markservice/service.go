// Package markservice implements the trail/mark/tag/reference operations
// over the persisted document.
package markservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/clawmarks/internal/checksum"
	"github.com/starford/clawmarks/internal/ident"
	"github.com/starford/clawmarks/internal/index"
	"github.com/starford/clawmarks/internal/models"
	"github.com/starford/clawmarks/internal/store"
)

// errNoChange aborts a Mutate without saving when a boolean-outcome
// operation resolves to "nothing to do" (missing entity, duplicate edge
// or tag). The distinct reasons intentionally collapse to false.
var errNoChange = errors.New("no change")

// Service coordinates document mutations and the derived search index.
type Service struct {
	store *store.Store
	db    *index.DB // optional; nil disables search indexing

	// OnChange, when set, is invoked after every durable mutation with
	// the entity kind ("trail" or "mark"), the action, and the entity id.
	OnChange func(entity, action, id string)

	newTrailID func() string
	newMarkID  func() string
	now        func() time.Time
}

// NewService creates a new mark service. db may be nil.
func NewService(st *store.Store, db *index.DB) *Service {
	return &Service{
		store:      st,
		db:         db,
		newTrailID: ident.TrailID,
		newMarkID:  ident.MarkID,
		now:        time.Now,
	}
}

// Reload discards the cached document, re-reads the backing file, and
// rebuilds the search index from the fresh document.
func (s *Service) Reload(_ context.Context) error {
	doc, err := s.store.Reload()
	if err != nil {
		return err
	}
	if s.db != nil {
		return index.Sync(s.db, doc)
	}
	return nil
}

// Status describes the store for diagnostics.
type Status struct {
	Root     string `json:"root"`
	Path     string `json:"path"`
	Version  int    `json:"version"`
	Trails   int    `json:"trails"`
	Marks    int    `json:"marks"`
	Checksum string `json:"checksum,omitempty"`
}

// Status reports the project root, backing file, schema version, entity
// counts, and the checksum of the on-disk file (empty if not yet written).
func (s *Service) Status(_ context.Context) (*Status, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	st := &Status{
		Root:    s.store.Root(),
		Path:    s.store.Path(),
		Version: doc.Version,
		Trails:  len(doc.Trails),
		Marks:   len(doc.Marks),
	}
	if data, err := os.ReadFile(s.store.Path()); err == nil {
		st.Checksum = checksum.Sum(data)
	}
	return st, nil
}

// SearchMarks runs a substring search over the derived index.
// It returns no results when indexing is disabled.
func (s *Service) SearchMarks(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return []index.SearchResult{}, nil
	}
	return s.db.Search(query, limit)
}

func (s *Service) notify(entity, action, id string) {
	if s.OnChange != nil {
		s.OnChange(entity, action, id)
	}
}

// indexMark mirrors a mark into the derived index. Index state is
// repaired by the next full sync, so failures are not propagated.
func (s *Service) indexMark(m models.Mark) {
	if s.db == nil {
		return
	}
	_ = s.db.UpsertMark(index.MarkRow{
		ID:         m.ID,
		TrailID:    m.TrailID,
		File:       m.File,
		Line:       m.Line,
		Type:       m.Type,
		Annotation: m.Annotation,
		Tags:       m.Tags,
	})
}

func (s *Service) unindexMark(id string) {
	if s.db != nil {
		_ = s.db.DeleteMark(id)
	}
}

func trailIndex(doc *models.Document, id string) int {
	for i := range doc.Trails {
		if doc.Trails[i].ID == id {
			return i
		}
	}
	return -1
}

func markIndex(doc *models.Document, id string) int {
	for i := range doc.Marks {
		if doc.Marks[i].ID == id {
			return i
		}
	}
	return -1
}
