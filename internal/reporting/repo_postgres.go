package reporting

import (
	"context"
	"database/sql"

	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/rooms"
)

// NOTE: This repository reads room_requests, extension_requests and event_log.
// It never writes.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) OpenRequests(ctx context.Context, employerID string) ([]rooms.RoomRequest, error) {
	const q = `
SELECT id, employer_id, hotel_id, stay_start, stay_end, headcount, room_type_mix, notes, status, created_at, updated_at
FROM room_requests
WHERE ($1 = '' OR employer_id::text = $1)
  AND status IN ('SUBMITTED', 'ACCEPTED', 'ASSIGNED', 'CHECKED_IN')
ORDER BY stay_start ASC
`
	rows, err := r.db.QueryContext(ctx, q, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]rooms.RoomRequest, 0)
	for rows.Next() {
		var rr rooms.RoomRequest
		var notes sql.NullString
		if err := rows.Scan(
			&rr.ID,
			&rr.EmployerID,
			&rr.HotelID,
			&rr.StayStart,
			&rr.StayEnd,
			&rr.Headcount,
			&rr.RoomTypeMix,
			&notes,
			&rr.Status,
			&rr.CreatedAt,
			&rr.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if notes.Valid {
			rr.Notes = &notes.String
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) PendingExtensions(ctx context.Context, employerID string) (int, error) {
	const q = `
SELECT count(*)
FROM extension_requests e
JOIN room_requests r ON r.id = e.room_request_id
WHERE e.status = 'SUBMITTED'
  AND ($1 = '' OR r.employer_id::text = $1)
`
	var n int
	err := r.db.QueryRowContext(ctx, q, employerID).Scan(&n)
	return n, err
}

func (r *PostgresRepo) RequestsByStatus(ctx context.Context) (map[rooms.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM room_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[rooms.Status]int{}
	for rows.Next() {
		var st rooms.Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

func (r *PostgresRepo) RecentEvents(ctx context.Context, limit int) ([]audit.Event, error) {
	const q = `
SELECT id, obj_type, COALESCE(obj_id, ''), action, actor_id, COALESCE(actor_role, ''), COALESCE(ip_address, ''), payload, ts
FROM event_log
ORDER BY ts DESC
LIMIT $1
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Event, 0, limit)
	for rows.Next() {
		var e audit.Event
		var payload []byte
		if err := rows.Scan(&e.ID, &e.ObjType, &e.ObjID, &e.Action, &e.ActorID, &e.ActorRole, &e.IPAddress, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = payload
		out = append(out, e)
	}
	return out, rows.Err()
}
