package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"workforce-lodging/pkg/logger"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It MUST be append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service validates and stamps events before handing them to the repository.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.ObjType == "" || e.Action == "" || e.ActorID == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	if len(e.Payload) == 0 {
		e.Payload = json.RawMessage(`{}`)
	}
	return s.repo.Append(ctx, e)
}

// Record appends an event and swallows any failure after logging it.
// Call it only after the audited change has committed.
func (s *Service) Record(ctx context.Context, subject Subject, action string, actor Actor, payload map[string]any) {
	if s == nil {
		return
	}
	log := logger.From(ctx)

	var raw json.RawMessage
	if len(payload) > 0 {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Warn("audit payload encode failed", "obj_type", subject.Type, "action", action, "err", err)
		} else {
			raw = b
		}
	}

	err := s.Append(ctx, Event{
		ObjType:   subject.Type,
		ObjID:     subject.ID,
		Action:    action,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		IPAddress: ClientIPFromContext(ctx),
		Payload:   raw,
	})
	if err != nil {
		log.Warn("audit record failed", "obj_type", subject.Type, "obj_id", subject.ID, "action", action, "err", err)
	}
}
