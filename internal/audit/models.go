package audit

import (
	"encoding/json"
	"time"
)

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - Events are written only after the change they describe has committed.
// - actor and ip capture are best-effort; never block a transition on audit failures.
//
// Storage (Postgres): table event_log, INSERT-only.
type Event struct {
	ID string `json:"id" db:"id"`

	// ObjType/ObjID identify what changed, e.g. RoomRequest/<uuid>.
	ObjType string `json:"obj_type" db:"obj_type"`
	ObjID   string `json:"obj_id,omitempty" db:"obj_id"`

	// Action is the transition or operation name, e.g. SUBMIT, ACCEPT, CHECK_IN.
	Action string `json:"action" db:"action"`

	ActorID   string `json:"actor_id" db:"actor_id"`
	ActorRole string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress is the resolved client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Payload is optional JSON with transition details.
	Payload json.RawMessage `json:"payload,omitempty" db:"payload"`

	CreatedAt time.Time `json:"ts" db:"ts"`
}

// Object names recorded in ObjType.
const (
	ObjRoomRequest = "RoomRequest"
	ObjExtension   = "Extension"
	ObjEmployer    = "Employer"
	ObjUser        = "User"
)

// Subject identifies the audited object.
type Subject struct {
	Type string
	ID   string
}

// Actor identifies who caused the change.
type Actor struct {
	ID   string
	Role string
}
