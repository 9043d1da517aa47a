package employers

import (
	"context"
	"strings"
	"testing"

	"workforce-lodging/internal/apperr"
	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/users"
)

type fixture struct {
	users  *users.MemoryStore
	audit  *audit.MemoryRepo
	svc    *Service
	user   users.User
	caller identity.Principal
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := users.NewMemoryStore()
	u, err := store.Create(context.Background(), users.User{Email: "boss@staffing.test", Name: "Boss", Role: identity.RoleEmployer})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	auditRepo := audit.NewMemoryRepo()
	svc := NewService(NewMemoryRepo(store), NewResolver(store), audit.NewService(auditRepo))
	return fixture{
		users:  store,
		audit:  auditRepo,
		svc:    svc,
		user:   u,
		caller: identity.Principal{SubjectID: u.ID, Role: identity.RoleEmployer},
	}
}

func TestService_CreateLinksOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if got, err := f.svc.Get(ctx, f.caller); err != nil || got != nil {
		t.Fatalf("expected no employer yet, got %+v %v", got, err)
	}

	e, err := f.svc.Create(ctx, f.caller, Input{Name: "  Acme Staffing  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Name != "Acme Staffing" {
		t.Fatalf("expected trimmed name, got %q", e.Name)
	}
	if id, _ := f.users.EmployerID(ctx, f.user.ID); id != e.ID {
		t.Fatalf("expected user linked to %s, got %s", e.ID, id)
	}

	_, err = f.svc.Create(ctx, f.caller, Input{Name: "Second Co"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on second create, got %v", err)
	}
	if id, _ := f.users.EmployerID(ctx, f.user.ID); id != e.ID {
		t.Fatalf("link must not change, got %s", id)
	}
	if len(f.audit.Events()) != 1 {
		t.Fatalf("expected one audit event, got %d", len(f.audit.Events()))
	}
}

func TestService_UpdateRequiresLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, f.caller, Input{Name: "Acme"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error when unlinked, got %v", err)
	}

	if _, err := f.svc.Create(ctx, f.caller, Input{Name: "Acme"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	notes := "night shift crew"
	e, err := f.svc.Update(ctx, f.caller, Input{Name: "Acme Corp", Notes: &notes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := f.svc.Get(ctx, f.caller)
	if got == nil || got.Name != "Acme Corp" || got.Notes == nil || *got.Notes != notes || got.ID != e.ID {
		t.Fatalf("unexpected employer %+v", got)
	}
}

func TestService_ValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	long := strings.Repeat("n", 1001)
	for _, in := range []Input{{Name: "   "}, {Name: strings.Repeat("x", 201)}, {Name: "ok", Notes: &long}} {
		if _, err := f.svc.Create(ctx, f.caller, in); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestResolver_NonEmployersHaveNoTenant(t *testing.T) {
	f := newFixture(t)
	r := NewResolver(f.users)
	id, err := r.EmployerIDFor(context.Background(), identity.Principal{SubjectID: f.user.ID, Role: identity.RoleFrontdesk})
	if err != nil || id != "" {
		t.Fatalf("expected empty tenant for staff, got %q %v", id, err)
	}
	id, err = r.EmployerIDFor(context.Background(), identity.Principal{SubjectID: "deleted-user", Role: identity.RoleEmployer})
	if err != nil || id != "" {
		t.Fatalf("expected empty tenant for missing user, got %q %v", id, err)
	}
}
