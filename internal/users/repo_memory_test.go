package users

import (
	"context"
	"testing"

	"workforce-lodging/internal/identity"
)

func TestMemoryStore_EmailIsCaseInsensitiveAndUnique(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.Create(ctx, User{Email: "Ana@Example.com", Name: "Ana", Role: identity.RoleEmployer})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" || u.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at, got %+v", u)
	}
	if _, err := s.Create(ctx, User{Email: "ana@example.com"}); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	got, err := s.GetByEmail(ctx, "ANA@EXAMPLE.COM")
	if err != nil || got.ID != u.ID {
		t.Fatalf("expected lookup by email, got %+v %v", got, err)
	}
}

func TestMemoryStore_LinkEmployerIsWriteOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u, _ := s.Create(ctx, User{Email: "a@b.c", Role: identity.RoleEmployer})

	if id, err := s.EmployerID(ctx, u.ID); err != nil || id != "" {
		t.Fatalf("expected no link, got %q %v", id, err)
	}
	if err := s.LinkEmployer(ctx, u.ID, "emp-1"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := s.LinkEmployer(ctx, u.ID, "emp-2"); err != ErrAlreadyLinked {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}
	if id, _ := s.EmployerID(ctx, u.ID); id != "emp-1" {
		t.Fatalf("expected first link to stick, got %q", id)
	}
	if _, err := s.EmployerID(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
