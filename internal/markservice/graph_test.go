package markservice

import (
	"context"
	"testing"
)

func TestLinkMarksIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "links")
	a := mustMark(t, svc, trail.ID, "a.go", 1)
	b := mustMark(t, svc, trail.ID, "b.go", 2)

	ok, err := svc.LinkMarks(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("LinkMarks: %v", err)
	}
	if !ok {
		t.Fatal("first link should succeed")
	}

	ok, err = svc.LinkMarks(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("duplicate link should report false")
	}

	m, _ := svc.GetMark(ctx, a.ID)
	count := 0
	for _, r := range m.References {
		if r == b.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("references contain target %d times, want 1", count)
	}
}

func TestLinkMarksMissingEndpoints(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "links")
	a := mustMark(t, svc, trail.ID, "a.go", 1)

	if ok, _ := svc.LinkMarks(ctx, a.ID, "m_missing0"); ok {
		t.Error("link to missing target should report false")
	}
	if ok, _ := svc.LinkMarks(ctx, "m_missing0", a.ID); ok {
		t.Error("link from missing source should report false")
	}
}

func TestLinkMarksSelfReference(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "self")
	a := mustMark(t, svc, trail.ID, "a.go", 1)

	ok, err := svc.LinkMarks(ctx, a.ID, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("self-reference is permitted")
	}
}

func TestUnlinkMarks(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "unlink")
	a := mustMark(t, svc, trail.ID, "a.go", 1)
	b := mustMark(t, svc, trail.ID, "b.go", 2)
	if ok, _ := svc.LinkMarks(ctx, a.ID, b.ID); !ok {
		t.Fatal("link failed")
	}

	ok, err := svc.UnlinkMarks(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected true for existing edge")
	}
	m, _ := svc.GetMark(ctx, a.ID)
	if len(m.References) != 0 {
		t.Errorf("references = %v", m.References)
	}
}

func TestUnlinkNonExistentEdge(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "noedge")
	a := mustMark(t, svc, trail.ID, "a.go", 1)
	b := mustMark(t, svc, trail.ID, "b.go", 2)

	ok, err := svc.UnlinkMarks(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected false when no edge exists")
	}
	m, _ := svc.GetMark(ctx, a.ID)
	if len(m.References) != 0 {
		t.Errorf("references altered: %v", m.References)
	}
}

func TestGetReferencesBothDirections(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "refs")
	a := mustMark(t, svc, trail.ID, "a.go", 1)
	b := mustMark(t, svc, trail.ID, "b.go", 2)
	c := mustMark(t, svc, trail.ID, "c.go", 3)
	// a -> b, c -> a
	if ok, _ := svc.LinkMarks(ctx, a.ID, b.ID); !ok {
		t.Fatal("link a->b failed")
	}
	if ok, _ := svc.LinkMarks(ctx, c.ID, a.ID); !ok {
		t.Fatal("link c->a failed")
	}

	refs, err := svc.GetReferences(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetReferences: %v", err)
	}
	if len(refs.Outgoing) != 1 || refs.Outgoing[0].ID != b.ID {
		t.Errorf("outgoing = %+v", refs.Outgoing)
	}
	if len(refs.Incoming) != 1 || refs.Incoming[0].ID != c.ID {
		t.Errorf("incoming = %+v", refs.Incoming)
	}
}

func TestGetReferencesUnknownMark(t *testing.T) {
	refs, err := testService(t).GetReferences(context.Background(), "m_missing0")
	if err != nil {
		t.Fatalf("GetReferences: %v", err)
	}
	if len(refs.Outgoing) != 0 || len(refs.Incoming) != 0 {
		t.Errorf("refs = %+v, want empty sets", refs)
	}
}

func TestAddTagNormalization(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "tags")
	m := mustMark(t, svc, trail.ID, "a.go", 1)

	ok, err := svc.AddTag(ctx, m.ID, "no-hash")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected true")
	}
	got, _ := svc.GetMark(ctx, m.ID)
	if len(got.Tags) != 1 || got.Tags[0] != "#no-hash" {
		t.Errorf("tags = %v, want [#no-hash]", got.Tags)
	}

	// Adding the same tag (already prefixed) is a no-op.
	if ok, _ := svc.AddTag(ctx, m.ID, "#no-hash"); ok {
		t.Error("duplicate tag should report false")
	}
}

func TestAddTagUnknownMark(t *testing.T) {
	if ok, _ := testService(t).AddTag(context.Background(), "m_missing0", "x"); ok {
		t.Error("expected false for unknown mark")
	}
}

func TestRemoveTagNormalization(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "tags")
	m := mustMark(t, svc, trail.ID, "a.go", 1)
	if ok, _ := svc.AddTag(ctx, m.ID, "no-hash"); !ok {
		t.Fatal("add failed")
	}

	ok, err := svc.RemoveTag(ctx, m.ID, "no-hash")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected true")
	}
	got, _ := svc.GetMark(ctx, m.ID)
	if len(got.Tags) != 0 {
		t.Errorf("tags = %v", got.Tags)
	}

	if ok, _ := svc.RemoveTag(ctx, m.ID, "no-hash"); ok {
		t.Error("removing an absent tag should report false")
	}
}

func TestListTagsSortedDeduplicated(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	trail := mustTrail(t, svc, "tags")
	if _, err := svc.AddMark(ctx, AddMarkParams{
		TrailID: trail.ID, File: "a.go", Line: 1, Annotation: "x", Tags: []string{"#zebra", "#alpha"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddMark(ctx, AddMarkParams{
		TrailID: trail.ID, File: "b.go", Line: 2, Annotation: "y", Tags: []string{"#beta", "#alpha"},
	}); err != nil {
		t.Fatal(err)
	}

	tags, err := svc.ListTags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"#alpha", "#beta", "#zebra"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}
