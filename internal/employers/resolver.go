package employers

import (
	"context"
	"errors"

	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/users"
)

// Resolver is the single place that maps a principal to its tenant.
// Every EMPLOYER read or write goes through EmployerIDFor.
type Resolver struct {
	links UserLinks
}

func NewResolver(links UserLinks) *Resolver { return &Resolver{links: links} }

// EmployerIDFor returns the principal's employer id, or "" when the
// principal is not linked (or is not an employer at all). A missing user
// row is treated as unlinked: the token outlived the account.
func (r *Resolver) EmployerIDFor(ctx context.Context, p identity.Principal) (string, error) {
	if p.Role != identity.RoleEmployer {
		return "", nil
	}
	id, err := r.links.EmployerID(ctx, p.SubjectID)
	if errors.Is(err, users.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
