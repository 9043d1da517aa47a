package employers

import (
	"context"
	"errors"
)

// Employer is a tenant: a staffing organization whose staff request rooms.
type Employer struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Notes *string `json:"notes"`
}

var ErrNotFound = errors.New("employer not found")

// Repository persists employers and the user link.
type Repository interface {
	Get(ctx context.Context, id string) (Employer, error)
	// CreateAndLink inserts e and links userID to it atomically.
	// It fails with users.ErrAlreadyLinked when the user already has an employer.
	CreateAndLink(ctx context.Context, userID string, e Employer) (Employer, error)
	Update(ctx context.Context, e Employer) (Employer, error)
}

// UserLinks is the slice of the credential store this package reads.
type UserLinks interface {
	EmployerID(ctx context.Context, userID string) (string, error)
}
