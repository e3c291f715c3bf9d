package markservice

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/clawmarks/internal/apperr"
	"github.com/starford/clawmarks/internal/models"
)

func markTypeRule() validation.Rule {
	types := make([]interface{}, len(models.MarkTypes))
	for i, t := range models.MarkTypes {
		types[i] = t
	}
	return validation.In(types...)
}

// AddMarkParams are the inputs for AddMark. Protocol adapters decode
// untyped request arguments straight into this struct.
type AddMarkParams struct {
	TrailID    string   `json:"trail_id"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Column     *int     `json:"column,omitempty"`
	Annotation string   `json:"annotation"`
	Type       string   `json:"type,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Validate rejects malformed params at the protocol boundary.
func (p AddMarkParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.TrailID, validation.Required),
		validation.Field(&p.File, validation.Required),
		validation.Field(&p.Line, validation.Required),
		validation.Field(&p.Annotation, validation.Required),
		validation.Field(&p.Type, markTypeRule()),
	)
}

// MarkUpdate is a partial update: nil fields are left untouched.
type MarkUpdate struct {
	Annotation *string   `json:"annotation,omitempty"`
	Type       *string   `json:"type,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Line       *int      `json:"line,omitempty"`
	Column     *int      `json:"column,omitempty"`
}

// Validate checks the provided fields; absent fields are skipped. A
// field that is provided but empty is rejected, so an update cannot
// clear the type or annotation.
func (u MarkUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Annotation, validation.NilOrNotEmpty),
		validation.Field(&u.Type, validation.NilOrNotEmpty, markTypeRule()),
	)
}

// MarkFilter selects marks by the conjunction of its non-empty fields.
type MarkFilter struct {
	TrailID string `json:"trail_id,omitempty"`
	File    string `json:"file,omitempty"`
	Type    string `json:"type,omitempty"`
	Tag     string `json:"tag,omitempty"`
}

// AddMark validates the trail reference, builds a mark with a generated
// id and defaults, and persists it. An unknown trail id is returned as a
// NotFound-class error naming the trail; no mark is appended.
func (s *Service) AddMark(_ context.Context, p AddMarkParams) (*models.Mark, error) {
	markType := p.Type
	if markType == "" {
		markType = models.TypeReference
	}
	mark := models.Mark{
		ID:         s.newMarkID(),
		TrailID:    p.TrailID,
		File:       p.File,
		Line:       p.Line,
		Column:     p.Column,
		Annotation: p.Annotation,
		Type:       markType,
		Tags:       normalizeTags(p.Tags),
		References: []string{},
		CreatedAt:  s.now().UTC(),
	}
	_, err := s.store.Mutate(func(doc *models.Document) error {
		if trailIndex(doc, p.TrailID) < 0 {
			return fmt.Errorf("trail not found: %s: %w", p.TrailID, apperr.ErrNotFound)
		}
		doc.Marks = append(doc.Marks, mark)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.indexMark(mark)
	s.notify("mark", "created", mark.ID)
	return &mark, nil
}

// UpdateMark overwrites exactly the fields provided in upd, leaving the
// rest untouched. Returns apperr.ErrNotFound for an unknown id.
func (s *Service) UpdateMark(_ context.Context, id string, upd MarkUpdate) (*models.Mark, error) {
	var updated models.Mark
	_, err := s.store.Mutate(func(doc *models.Document) error {
		i := markIndex(doc, id)
		if i < 0 {
			return fmt.Errorf("mark %s: %w", id, apperr.ErrNotFound)
		}
		m := &doc.Marks[i]
		if upd.Annotation != nil {
			m.Annotation = *upd.Annotation
		}
		if upd.Type != nil {
			m.Type = *upd.Type
		}
		if upd.Tags != nil {
			m.Tags = normalizeTags(*upd.Tags)
		}
		if upd.Line != nil {
			m.Line = *upd.Line
		}
		if upd.Column != nil {
			m.Column = upd.Column
		}
		updated = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.indexMark(updated)
	s.notify("mark", "updated", id)
	return &updated, nil
}

// DeleteMark removes a mark and prunes its id from every remaining
// mark's references, so no dangling edge survives.
func (s *Service) DeleteMark(_ context.Context, id string) (bool, error) {
	_, err := s.store.Mutate(func(doc *models.Document) error {
		i := markIndex(doc, id)
		if i < 0 {
			return errNoChange
		}
		doc.Marks = append(doc.Marks[:i], doc.Marks[i+1:]...)
		for j := range doc.Marks {
			doc.Marks[j].References = removeString(doc.Marks[j].References, id)
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.unindexMark(id)
	s.notify("mark", "deleted", id)
	return true, nil
}

// ListMarks returns marks matching every non-empty filter field, in
// storage order. The tag filter matches exact normalized membership.
func (s *Service) ListMarks(_ context.Context, f MarkFilter) ([]models.Mark, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	tag := f.Tag
	if tag != "" {
		tag = normalizeTag(tag)
	}
	out := []models.Mark{}
	for _, m := range doc.Marks {
		if f.TrailID != "" && m.TrailID != f.TrailID {
			continue
		}
		if f.File != "" && m.File != f.File {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if tag != "" && !containsString(m.Tags, tag) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// GetMark returns a single mark, or apperr.ErrNotFound.
func (s *Service) GetMark(_ context.Context, id string) (*models.Mark, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	i := markIndex(doc, id)
	if i < 0 {
		return nil, fmt.Errorf("mark %s: %w", id, apperr.ErrNotFound)
	}
	m := doc.Marks[i]
	return &m, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
