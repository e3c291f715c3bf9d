package markservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/clawmarks/internal/apperr"
	"github.com/starford/clawmarks/internal/models"
)

func TestAddMarkDefaults(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "defaults")

	mark, err := svc.AddMark(ctx, AddMarkParams{
		TrailID: trail.ID, File: "pkg/x.go", Line: 12, Annotation: "why twelve",
	})
	if err != nil {
		t.Fatalf("AddMark: %v", err)
	}
	if !strings.HasPrefix(mark.ID, "m_") {
		t.Errorf("id = %q", mark.ID)
	}
	if mark.Type != models.TypeReference {
		t.Errorf("type = %q, want reference default", mark.Type)
	}
	if mark.Tags == nil || len(mark.Tags) != 0 {
		t.Errorf("tags = %#v, want empty slice", mark.Tags)
	}
	if mark.References == nil || len(mark.References) != 0 {
		t.Errorf("references = %#v, want empty slice", mark.References)
	}
	if mark.Column != nil {
		t.Errorf("column = %v, want nil", mark.Column)
	}
}

func TestAddMarkNormalizesTags(t *testing.T) {
	svc := testService(t)
	trail := mustTrail(t, svc, "tags")

	mark, err := svc.AddMark(context.Background(), AddMarkParams{
		TrailID: trail.ID, File: "a.go", Line: 1, Annotation: "x",
		Type: models.TypeQuestion, Tags: []string{"perf", "#perf", "io"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"#perf", "#io"}
	if len(mark.Tags) != 2 || mark.Tags[0] != want[0] || mark.Tags[1] != want[1] {
		t.Errorf("tags = %v, want %v", mark.Tags, want)
	}
}

func TestAddMarkUnknownTrail(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)

	_, err := svc.AddMark(ctx, AddMarkParams{
		TrailID: "t_nope0000", File: "a.go", Line: 1, Annotation: "x",
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "t_nope0000") {
		t.Errorf("err %q should name the missing trail", err)
	}
	marks, _ := svc.ListMarks(ctx, MarkFilter{})
	if len(marks) != 0 {
		t.Errorf("no mark should be appended, got %+v", marks)
	}
}

func TestAddMarkParamsValidation(t *testing.T) {
	cases := []struct {
		name string
		p    AddMarkParams
		ok   bool
	}{
		{"complete", AddMarkParams{TrailID: "t_1", File: "a.go", Line: 1, Annotation: "x"}, true},
		{"missing trail", AddMarkParams{File: "a.go", Line: 1, Annotation: "x"}, false},
		{"missing file", AddMarkParams{TrailID: "t_1", Line: 1, Annotation: "x"}, false},
		{"missing annotation", AddMarkParams{TrailID: "t_1", File: "a.go", Line: 1}, false},
		{"bad type", AddMarkParams{TrailID: "t_1", File: "a.go", Line: 1, Annotation: "x", Type: "musing"}, false},
		{"valid type", AddMarkParams{TrailID: "t_1", File: "a.go", Line: 1, Annotation: "x", Type: "decision"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMarkUpdateValidation(t *testing.T) {
	empty := ""
	musing := "musing"
	decision := models.TypeDecision
	note := "still relevant"

	cases := []struct {
		name string
		u    MarkUpdate
		ok   bool
	}{
		{"nothing provided", MarkUpdate{}, true},
		{"valid type", MarkUpdate{Type: &decision}, true},
		{"valid annotation", MarkUpdate{Annotation: &note}, true},
		{"empty type", MarkUpdate{Type: &empty}, false},
		{"bad type", MarkUpdate{Type: &musing}, false},
		{"empty annotation", MarkUpdate{Annotation: &empty}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.u.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestUpdateMarkPartial(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "partial")
	mark, err := svc.AddMark(ctx, AddMarkParams{
		TrailID: trail.ID, File: "a.go", Line: 10, Annotation: "original",
		Type: models.TypeDecision, Tags: []string{"#keep"},
	})
	if err != nil {
		t.Fatal(err)
	}

	line := 100
	updated, err := svc.UpdateMark(ctx, mark.ID, MarkUpdate{Line: &line})
	if err != nil {
		t.Fatalf("UpdateMark: %v", err)
	}
	if updated.Line != 100 {
		t.Errorf("line = %d, want 100", updated.Line)
	}
	if updated.Annotation != "original" || updated.Type != models.TypeDecision {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "#keep" {
		t.Errorf("tags = %v", updated.Tags)
	}
}

func TestUpdateMarkReplacesTags(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "retag")
	mark := mustMark(t, svc, trail.ID, "a.go", 1)

	tags := []string{"new", "new", "#other"}
	updated, err := svc.UpdateMark(ctx, mark.ID, MarkUpdate{Tags: &tags})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Tags) != 2 || updated.Tags[0] != "#new" || updated.Tags[1] != "#other" {
		t.Errorf("tags = %v", updated.Tags)
	}
}

func TestUpdateMarkNotFound(t *testing.T) {
	svc := testService(t)
	ann := "x"
	_, err := svc.UpdateMark(context.Background(), "m_missing0", MarkUpdate{Annotation: &ann})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteMarkPrunesReferences(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "prune")
	a := mustMark(t, svc, trail.ID, "a.go", 1)
	b := mustMark(t, svc, trail.ID, "b.go", 2)
	if ok, _ := svc.LinkMarks(ctx, a.ID, b.ID); !ok {
		t.Fatal("link failed")
	}

	ok, err := svc.DeleteMark(ctx, b.ID)
	if err != nil {
		t.Fatalf("DeleteMark: %v", err)
	}
	if !ok {
		t.Fatal("expected true")
	}

	m, err := svc.GetMark(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if containsString(m.References, b.ID) {
		t.Errorf("references = %v still contain deleted id", m.References)
	}
}

func TestDeleteMarkNotFound(t *testing.T) {
	ok, err := testService(t).DeleteMark(context.Background(), "m_missing0")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected false for unknown mark")
	}
}

func TestListMarksFilterConjunction(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "filters")

	add := func(file, typ string) *models.Mark {
		m, err := svc.AddMark(ctx, AddMarkParams{
			TrailID: trail.ID, File: file, Line: 1, Annotation: "x", Type: typ,
		})
		if err != nil {
			t.Fatal(err)
		}
		return m
	}
	first := add("a.ts", models.TypeDecision)
	add("a.ts", models.TypeQuestion)
	add("b.ts", models.TypeDecision)

	got, err := svc.ListMarks(ctx, MarkFilter{File: "a.ts", Type: models.TypeDecision})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != first.ID {
		t.Errorf("got = %+v, want exactly the first mark", got)
	}
}

func TestListMarksTagFilterNormalizes(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "tagfilter")
	m, err := svc.AddMark(ctx, AddMarkParams{
		TrailID: trail.ID, File: "a.go", Line: 1, Annotation: "x", Tags: []string{"#hot"},
	})
	if err != nil {
		t.Fatal(err)
	}
	mustMark(t, svc, trail.ID, "b.go", 2)

	// The filter input is normalized before matching.
	got, err := svc.ListMarks(ctx, MarkFilter{Tag: "hot"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != m.ID {
		t.Errorf("got = %+v", got)
	}
}

func TestGetMarkNotFound(t *testing.T) {
	_, err := testService(t).GetMark(context.Background(), "m_missing0")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
