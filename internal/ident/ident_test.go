package ident

import (
	"strings"
	"testing"
)

func TestTrailIDShape(t *testing.T) {
	id := TrailID()
	if !strings.HasPrefix(id, "t_") {
		t.Errorf("id = %q, want t_ prefix", id)
	}
	if len(id) != len("t_")+8 {
		t.Errorf("len(%q) = %d, want %d", id, len(id), len("t_")+8)
	}
	for _, c := range id[2:] {
		if !strings.ContainsRune(alphabet, c) {
			t.Errorf("id %q contains %q outside alphabet", id, c)
		}
	}
}

func TestMarkIDShape(t *testing.T) {
	id := MarkID()
	if !strings.HasPrefix(id, "m_") {
		t.Errorf("id = %q, want m_ prefix", id)
	}
	if len(id) != len("m_")+8 {
		t.Errorf("len(%q) = %d", id, len(id))
	}
}

func TestIDsAreOpaqueUniqueTokens(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := MarkID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d draws: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}
