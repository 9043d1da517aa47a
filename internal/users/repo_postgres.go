package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"workforce-lodging/internal/identity"
	"workforce-lodging/pkg/utils"

	"github.com/google/uuid"
)

// NOTE: This repository assumes table app_users with a unique index on lower(email).

type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db, clock: time.Now} }

const userColumns = `id, email, name, role, password_hash, COALESCE(employer_id::text, ''), COALESCE(hotel_id::text, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &u.EmployerID, &u.HotelID, &u.CreatedAt); err != nil {
		return User{}, err
	}
	// Unknown roles in storage are surfaced as-is; token issuance refuses them.
	u.Role = identity.Role(role)
	return u, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) || utils.IsInvalidInput(err) {
		return ErrNotFound
	}
	return err
}

// Create assigns the id and creation time when the caller left them empty.
func (s *PostgresStore) Create(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.clock().UTC()
	}
	const q = `
INSERT INTO app_users (id, email, name, role, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns
	out, err := scanUser(s.db.QueryRowContext(ctx, q, u.ID, u.Email, u.Name, string(u.Role), u.PasswordHash, u.CreatedAt))
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return out, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	q := `SELECT ` + userColumns + ` FROM app_users WHERE id = $1`
	u, err := scanUser(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	q := `SELECT ` + userColumns + ` FROM app_users WHERE lower(email) = lower($1)`
	u, err := scanUser(s.db.QueryRowContext(ctx, q, email))
	if err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}

func (s *PostgresStore) UpdateName(ctx context.Context, id, name string) (User, error) {
	q := `UPDATE app_users SET name = $2 WHERE id = $1 RETURNING ` + userColumns
	u, err := scanUser(s.db.QueryRowContext(ctx, q, id, name))
	if err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return s.execOne(ctx, `UPDATE app_users SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (s *PostgresStore) SetRole(ctx context.Context, id string, role identity.Role) error {
	return s.execOne(ctx, `UPDATE app_users SET role = $2 WHERE id = $1`, id, string(role))
}

func (s *PostgresStore) EmployerID(ctx context.Context, id string) (string, error) {
	const q = `SELECT COALESCE(employer_id::text, '') FROM app_users WHERE id = $1`
	var employerID string
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&employerID); err != nil {
		return "", notFound(err)
	}
	return employerID, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]User, error) {
	q := `SELECT ` + userColumns + ` FROM app_users ORDER BY created_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM app_users`).Scan(&n)
	return n, err
}

func (s *PostgresStore) execOne(ctx context.Context, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return notFound(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
