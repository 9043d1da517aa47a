package rooms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"workforce-lodging/pkg/utils"
)

// NOTE: This repository assumes the following tables exist:
// - room_requests (room_type_mix JSONB, stay_start/stay_end DATE)
// - extension_requests (room_request_id REFERENCES room_requests)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const requestColumns = `id, employer_id, hotel_id, stay_start, stay_end, headcount, room_type_mix, notes, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(s rowScanner) (RoomRequest, error) {
	var r RoomRequest
	var notes sql.NullString
	if err := s.Scan(
		&r.ID,
		&r.EmployerID,
		&r.HotelID,
		&r.StayStart,
		&r.StayEnd,
		&r.Headcount,
		&r.RoomTypeMix,
		&notes,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return RoomRequest{}, err
	}
	if notes.Valid {
		r.Notes = &notes.String
	}
	return r, nil
}

func (p *PostgresRepo) Insert(ctx context.Context, r RoomRequest) error {
	const q = `
INSERT INTO room_requests (
  id, employer_id, hotel_id, stay_start, stay_end, headcount, room_type_mix, notes, status, created_at, updated_at
) VALUES (
  $1,$2,$3,$4::date,$5::date,$6,$7::jsonb,$8,$9,$10,$11
)
`
	_, err := p.db.ExecContext(ctx, q,
		r.ID,
		r.EmployerID,
		r.HotelID,
		r.StayStart,
		r.StayEnd,
		r.Headcount,
		r.RoomTypeMix,
		r.Notes,
		r.Status,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if utils.IsForeignKeyViolation(err) {
		return fmt.Errorf("insert room request: unknown employer or hotel: %w", err)
	}
	return err
}

func (p *PostgresRepo) Get(ctx context.Context, id string) (RoomRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM room_requests WHERE id = $1`
	r, err := scanRequest(p.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || utils.IsInvalidInput(err) {
			return RoomRequest{}, ErrNotFound
		}
		return RoomRequest{}, err
	}
	return r, nil
}

func (p *PostgresRepo) List(ctx context.Context, f Filter) ([]RoomRequest, error) {
	var (
		where []string
		args  []any
	)
	if f.EmployerID != "" {
		args = append(args, f.EmployerID)
		where = append(where, fmt.Sprintf("employer_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	} else if f.HideDrafts {
		args = append(args, StatusDraft)
		where = append(where, fmt.Sprintf("status <> $%d", len(args)))
	}

	q := `SELECT ` + requestColumns + ` FROM room_requests`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoomRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresRepo) UpdateStatus(ctx context.Context, id string, from, to Status, now time.Time) (bool, error) {
	const q = `UPDATE room_requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	return execChanged(ctx, p.db, q, id, from, to, now)
}

const extensionColumns = `id, room_request_id, week_start, week_end, scope, status, created_at, updated_at`

func scanExtension(s rowScanner) (ExtensionRequest, error) {
	var e ExtensionRequest
	var scope sql.NullString
	if err := s.Scan(
		&e.ID,
		&e.RoomRequestID,
		&e.WeekStart,
		&e.WeekEnd,
		&scope,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return ExtensionRequest{}, err
	}
	if scope.Valid {
		e.Scope = &scope.String
	}
	return e, nil
}

func (p *PostgresRepo) InsertExtension(ctx context.Context, e ExtensionRequest) error {
	const q = `
INSERT INTO extension_requests (
  id, room_request_id, week_start, week_end, scope, status, created_at, updated_at
) VALUES (
  $1,$2,$3::date,$4::date,$5,$6,$7,$8
)
`
	_, err := p.db.ExecContext(ctx, q,
		e.ID,
		e.RoomRequestID,
		e.WeekStart,
		e.WeekEnd,
		e.Scope,
		e.Status,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if utils.IsForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

func (p *PostgresRepo) GetExtension(ctx context.Context, id string) (ExtensionRequest, error) {
	q := `SELECT ` + extensionColumns + ` FROM extension_requests WHERE id = $1`
	e, err := scanExtension(p.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || utils.IsInvalidInput(err) {
			return ExtensionRequest{}, ErrExtensionNotFound
		}
		return ExtensionRequest{}, err
	}
	return e, nil
}

func (p *PostgresRepo) ListExtensions(ctx context.Context, roomRequestID string) ([]ExtensionRequest, error) {
	q := `SELECT ` + extensionColumns + ` FROM extension_requests WHERE room_request_id = $1 ORDER BY week_start ASC`
	rows, err := p.db.QueryContext(ctx, q, roomRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ExtensionRequest, 0)
	for rows.Next() {
		e, err := scanExtension(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *PostgresRepo) UpdateExtensionStatus(ctx context.Context, id string, from, to Status, now time.Time) (bool, error) {
	const q = `UPDATE extension_requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	return execChanged(ctx, p.db, q, id, from, to, now)
}

// execChanged runs a conditional update and reports whether a row matched.
func execChanged(ctx context.Context, db *sql.DB, q string, args ...any) (bool, error) {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		if utils.IsInvalidInput(err) {
			return false, nil
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
