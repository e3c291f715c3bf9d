package markservice

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/starford/clawmarks/internal/models"
)

// References groups the marks a mark points at (outgoing) and the marks
// pointing back at it (incoming).
type References struct {
	Outgoing []models.Mark `json:"outgoing"`
	Incoming []models.Mark `json:"incoming"`
}

// LinkMarks appends target to source's references. It returns false
// without distinguishing why nothing was linked: either id is unknown,
// or the edge already exists. Self-references are permitted.
func (s *Service) LinkMarks(_ context.Context, sourceID, targetID string) (bool, error) {
	_, err := s.store.Mutate(func(doc *models.Document) error {
		si := markIndex(doc, sourceID)
		if si < 0 || markIndex(doc, targetID) < 0 {
			return errNoChange
		}
		if containsString(doc.Marks[si].References, targetID) {
			return errNoChange
		}
		doc.Marks[si].References = append(doc.Marks[si].References, targetID)
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.notify("mark", "updated", sourceID)
	return true, nil
}

// UnlinkMarks removes target from source's references, reporting whether
// an edge was actually removed.
func (s *Service) UnlinkMarks(_ context.Context, sourceID, targetID string) (bool, error) {
	_, err := s.store.Mutate(func(doc *models.Document) error {
		si := markIndex(doc, sourceID)
		if si < 0 || !containsString(doc.Marks[si].References, targetID) {
			return errNoChange
		}
		doc.Marks[si].References = removeString(doc.Marks[si].References, targetID)
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.notify("mark", "updated", sourceID)
	return true, nil
}

// GetReferences resolves both edge directions for a mark. An unknown id
// yields empty sets rather than an error.
func (s *Service) GetReferences(_ context.Context, id string) (*References, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	refs := &References{Outgoing: []models.Mark{}, Incoming: []models.Mark{}}
	i := markIndex(doc, id)
	if i < 0 {
		return refs, nil
	}
	for _, targetID := range doc.Marks[i].References {
		if ti := markIndex(doc, targetID); ti >= 0 {
			refs.Outgoing = append(refs.Outgoing, doc.Marks[ti])
		}
	}
	for _, m := range doc.Marks {
		if containsString(m.References, id) {
			refs.Incoming = append(refs.Incoming, m)
		}
	}
	return refs, nil
}

// AddTag attaches a normalized tag to a mark. Returns false when the
// mark is unknown or already carries the tag.
func (s *Service) AddTag(_ context.Context, id, tag string) (bool, error) {
	tag = normalizeTag(tag)
	var updated models.Mark
	_, err := s.store.Mutate(func(doc *models.Document) error {
		i := markIndex(doc, id)
		if i < 0 || containsString(doc.Marks[i].Tags, tag) {
			return errNoChange
		}
		doc.Marks[i].Tags = append(doc.Marks[i].Tags, tag)
		updated = doc.Marks[i]
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.indexMark(updated)
	s.notify("mark", "tagged", id)
	return true, nil
}

// RemoveTag detaches a normalized tag from a mark. Returns false when
// the mark is unknown or did not carry the tag.
func (s *Service) RemoveTag(_ context.Context, id, tag string) (bool, error) {
	tag = normalizeTag(tag)
	var updated models.Mark
	_, err := s.store.Mutate(func(doc *models.Document) error {
		i := markIndex(doc, id)
		if i < 0 || !containsString(doc.Marks[i].Tags, tag) {
			return errNoChange
		}
		doc.Marks[i].Tags = removeString(doc.Marks[i].Tags, tag)
		updated = doc.Marks[i]
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.indexMark(updated)
	s.notify("mark", "untagged", id)
	return true, nil
}

// ListTags returns the deduplicated union of every tag across all marks,
// sorted lexicographically.
func (s *Service) ListTags(_ context.Context) ([]string, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, m := range doc.Marks {
		for _, t := range m.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// normalizeTag prepends "#" when absent. Tags compare by normalized value.
func normalizeTag(tag string) string {
	if !strings.HasPrefix(tag, "#") {
		return "#" + tag
	}
	return tag
}

// normalizeTags normalizes each tag and drops duplicates, keeping first
// occurrence order.
func normalizeTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := normalizeTag(t)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
