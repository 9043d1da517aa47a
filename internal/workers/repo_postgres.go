package workers

import (
	"context"
	"database/sql"

	"workforce-lodging/pkg/utils"

	"github.com/google/uuid"
)

// NOTE: This repository assumes tables workers (unique index on
// employer_id, phone) and reservations (worker_name, hotel_id, room_no,
// checkin_ts, checkout_ts).

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) ListWorkers(ctx context.Context, employerID string) ([]Worker, error) {
	const q = `
SELECT id, employer_id, name, phone, notes, gov_id_type, gov_id_last4
FROM workers
WHERE employer_id = $1
ORDER BY name ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Worker, 0)
	for rows.Next() {
		var (
			w                                  Worker
			phone, notes, govType, govLastFour sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.EmployerID, &w.Name, &phone, &notes, &govType, &govLastFour); err != nil {
			return nil, err
		}
		w.Phone, w.Notes = nullable(phone), nullable(notes)
		w.GovIDType, w.GovIDLast4 = nullable(govType), nullable(govLastFour)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListStays(ctx context.Context, employerID string) ([]Stay, error) {
	const q = `
SELECT r.worker_name, COALESCE(r.hotel_id::text, ''), COALESCE(h.name, ''), r.room_no, r.checkin_ts, r.checkout_ts
FROM reservations r
LEFT JOIN hotels h ON h.id = r.hotel_id
WHERE r.employer_id = $1
ORDER BY r.checkin_ts DESC NULLS LAST`
	rows, err := s.db.QueryContext(ctx, q, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Stay, 0)
	for rows.Next() {
		var (
			st       Stay
			workerNm sql.NullString
			roomNo   sql.NullString
			in, co   sql.NullTime
		)
		if err := rows.Scan(&workerNm, &st.HotelID, &st.HotelName, &roomNo, &in, &co); err != nil {
			return nil, err
		}
		st.WorkerName = workerNm.String
		st.RoomNo = nullable(roomNo)
		if in.Valid {
			st.CheckIn = &in.Time
		}
		if co.Valid {
			st.CheckOut = &co.Time
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Upsert writes the batch in one transaction. Rows go one statement at a
// time so a phone repeated within the batch updates instead of failing.
func (s *PostgresStore) Upsert(ctx context.Context, employerID string, ws []Worker) error {
	const q = `
INSERT INTO workers (id, employer_id, name, phone, notes, gov_id_type, gov_id_last4)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (employer_id, phone) DO UPDATE
SET name = EXCLUDED.name,
    notes = EXCLUDED.notes,
    gov_id_type = EXCLUDED.gov_id_type,
    gov_id_last4 = EXCLUDED.gov_id_last4`
	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		for _, w := range ws {
			id := w.ID
			if id == "" {
				id = uuid.NewString()
			}
			if _, err := tx.ExecContext(ctx, q, id, employerID, w.Name, w.Phone, w.Notes, w.GovIDType, w.GovIDLast4); err != nil {
				return err
			}
		}
		return nil
	})
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
