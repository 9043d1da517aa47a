package hotels

import (
	"context"
	"testing"
)

func TestMemoryStore_ListSortedByName(t *testing.T) {
	s := NewMemoryStore(
		Hotel{ID: "b", Name: "Harbor Inn"},
		Hotel{ID: "a", Name: "Airport Suites"},
	)
	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Airport Suites" || got[1].Name != "Harbor Inn" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if ok, _ := s.Exists(context.Background(), "a"); !ok {
		t.Fatalf("expected hotel a to exist")
	}
	if ok, _ := s.Exists(context.Background(), "zzz"); ok {
		t.Fatalf("unexpected hotel zzz")
	}
	if n, _ := s.Count(context.Background()); n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
}
