package employers

import (
	"context"
	"database/sql"
	"errors"

	"workforce-lodging/internal/users"
	"workforce-lodging/pkg/utils"
)

// NOTE: This repository assumes tables employers and app_users(employer_id).

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Get(ctx context.Context, id string) (Employer, error) {
	const q = `SELECT id, name, notes FROM employers WHERE id = $1`
	var e Employer
	var notes sql.NullString
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Name, &notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) || utils.IsInvalidInput(err) {
			return Employer{}, ErrNotFound
		}
		return Employer{}, err
	}
	if notes.Valid {
		e.Notes = &notes.String
	}
	return e, nil
}

func (r *PostgresRepo) CreateAndLink(ctx context.Context, userID string, e Employer) (Employer, error) {
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const ins = `INSERT INTO employers (id, name, notes) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, ins, e.ID, e.Name, e.Notes); err != nil {
			return err
		}

		// Write-once link: only an unlinked user row is updated.
		const link = `UPDATE app_users SET employer_id = $2 WHERE id = $1 AND employer_id IS NULL`
		res, err := tx.ExecContext(ctx, link, userID, e.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM app_users WHERE id = $1)`, userID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return users.ErrNotFound
			}
			return users.ErrAlreadyLinked
		}
		return nil
	})
	if err != nil {
		return Employer{}, err
	}
	return e, nil
}

func (r *PostgresRepo) Update(ctx context.Context, e Employer) (Employer, error) {
	const q = `UPDATE employers SET name = $2, notes = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, e.ID, e.Name, e.Notes)
	if err != nil {
		return Employer{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Employer{}, err
	}
	if n == 0 {
		return Employer{}, ErrNotFound
	}
	return e, nil
}
