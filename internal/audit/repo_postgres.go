package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo writes to event_log. The table should carry an INSERT-only policy.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO event_log (id, obj_type, obj_id, action, actor_id, actor_role, ip_address, payload, ts)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8::jsonb, $9)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.ObjType,
		e.ObjID,
		e.Action,
		e.ActorID,
		e.ActorRole,
		e.IPAddress,
		string(e.Payload),
		e.CreatedAt,
	)
	return err
}
