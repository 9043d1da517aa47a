package users

import (
	"context"
	"errors"
	"time"

	"workforce-lodging/internal/identity"
)

// User is a row of app_users. PasswordHash never leaves the server.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Role         identity.Role `json:"role"`
	PasswordHash string        `json:"-"`
	EmployerID   string        `json:"employer_id,omitempty"`
	HotelID      string        `json:"hotel_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already in use")
	ErrAlreadyLinked = errors.New("user already linked to an employer")
)

// Store is the credential store: lookups by email/id and the role and
// employer linkage of a user. Email matching is case-insensitive.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateName(ctx context.Context, id, name string) (User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	SetRole(ctx context.Context, id string, role identity.Role) error
	// EmployerID returns "" when the user has no employer link.
	EmployerID(ctx context.Context, id string) (string, error)
	List(ctx context.Context, limit int) ([]User, error)
	Count(ctx context.Context) (int, error)
}
