package identity

import (
	"context"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		got, err := ParseRole(string(r))
		if err != nil || got != r {
			t.Fatalf("expected %s to parse, got %q %v", r, got, err)
		}
	}
	for _, bad := range []string{"", "admin", "SUPERUSER", "EMPLOYER "} {
		if _, err := ParseRole(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestPrincipalContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("expected no principal on empty context")
	}
	ctx := WithPrincipal(context.Background(), Principal{SubjectID: "u1", Role: RoleFrontdesk})
	p, ok := FromContext(ctx)
	if !ok || p.SubjectID != "u1" || p.Role != RoleFrontdesk {
		t.Fatalf("unexpected principal %+v ok=%v", p, ok)
	}
}
