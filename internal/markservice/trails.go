package markservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/clawmarks/internal/apperr"
	"github.com/starford/clawmarks/internal/models"
)

// TrailDetail is a trail together with every mark that belongs to it.
type TrailDetail struct {
	Trail models.Trail  `json:"trail"`
	Marks []models.Mark `json:"marks"`
}

// CreateTrail appends a new active trail and persists it.
func (s *Service) CreateTrail(_ context.Context, name, description string) (*models.Trail, error) {
	if name == "" {
		return nil, fmt.Errorf("trail name is required")
	}
	trail := models.Trail{
		ID:          s.newTrailID(),
		Name:        name,
		Description: description,
		Status:      models.TrailStatusActive,
		CreatedAt:   s.now().UTC(),
	}
	_, err := s.store.Mutate(func(doc *models.Document) error {
		doc.Trails = append(doc.Trails, trail)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify("trail", "created", trail.ID)
	return &trail, nil
}

// ListTrails returns all trails in creation order, optionally filtered
// by status ("active" or "archived"). An empty status matches everything.
func (s *Service) ListTrails(_ context.Context, status string) ([]models.Trail, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	out := []models.Trail{}
	for _, t := range doc.Trails {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

// GetTrail returns a trail and its marks, or apperr.ErrNotFound.
func (s *Service) GetTrail(_ context.Context, id string) (*TrailDetail, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	i := trailIndex(doc, id)
	if i < 0 {
		return nil, fmt.Errorf("trail %s: %w", id, apperr.ErrNotFound)
	}
	detail := &TrailDetail{Trail: doc.Trails[i], Marks: []models.Mark{}}
	for _, m := range doc.Marks {
		if m.TrailID == id {
			detail.Marks = append(detail.Marks, m)
		}
	}
	return detail, nil
}

// ArchiveTrail sets the trail status to archived. The transition is
// one-way and idempotent: archiving an archived trail succeeds.
func (s *Service) ArchiveTrail(_ context.Context, id string) (*models.Trail, error) {
	var updated models.Trail
	_, err := s.store.Mutate(func(doc *models.Document) error {
		i := trailIndex(doc, id)
		if i < 0 {
			return fmt.Errorf("trail %s: %w", id, apperr.ErrNotFound)
		}
		doc.Trails[i].Status = models.TrailStatusArchived
		updated = doc.Trails[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify("trail", "archived", id)
	return &updated, nil
}

// DeleteTrail removes a trail and cascades to every mark on it. Other
// marks' references to the cascaded marks are left as-is; only single-mark
// deletion prunes incoming references.
func (s *Service) DeleteTrail(_ context.Context, id string) (bool, error) {
	var removedMarks []string
	_, err := s.store.Mutate(func(doc *models.Document) error {
		i := trailIndex(doc, id)
		if i < 0 {
			return errNoChange
		}
		doc.Trails = append(doc.Trails[:i], doc.Trails[i+1:]...)

		kept := doc.Marks[:0]
		for _, m := range doc.Marks {
			if m.TrailID == id {
				removedMarks = append(removedMarks, m.ID)
				continue
			}
			kept = append(kept, m)
		}
		doc.Marks = kept
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, markID := range removedMarks {
		s.unindexMark(markID)
	}
	s.notify("trail", "deleted", id)
	return true, nil
}
