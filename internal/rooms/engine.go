package rooms

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"workforce-lodging/internal/apperr"
	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/rbac"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	// MaxExtensionDays bounds a single extension window.
	MaxExtensionDays = 7

	maxNotesLen = 2000
	maxScopeLen = 500
)

// TenantResolver maps a principal to its employer ("" when unlinked).
type TenantResolver interface {
	EmployerIDFor(ctx context.Context, p identity.Principal) (string, error)
}

// HotelChecker confirms a hotel id refers to a known hotel.
type HotelChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Engine owns the room request lifecycle. Every mutation goes through the
// same order: role gate, fetch, ownership, source-state check, then a
// conditional store update. Audit is recorded only after the update lands.
type Engine struct {
	repo    Repository
	tenants TenantResolver
	hotels  HotelChecker
	audit   *audit.Service
	clock   func() time.Time
}

func NewEngine(repo Repository, tenants TenantResolver, hotels HotelChecker, auditSvc *audit.Service) *Engine {
	return &Engine{repo: repo, tenants: tenants, hotels: hotels, audit: auditSvc, clock: time.Now}
}

// WithClock replaces the engine clock. Used by tests.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

type CreateInput struct {
	HotelID     string  `json:"hotel_id"`
	StayStart   string  `json:"stay_start"`
	StayEnd     string  `json:"stay_end"`
	Headcount   int     `json:"headcount"`
	RoomTypeMix RoomMix `json:"room_type_mix"`
	Notes       *string `json:"notes"`
	// Draft keeps the request out of the front-desk queue until Submit.
	Draft bool `json:"draft"`
}

type validCreate struct {
	hotelID    string
	start, end Date
	headcount  int
	mix        RoomMix
	notes      *string
}

func (in CreateInput) validate() (validCreate, error) {
	hotelID := strings.TrimSpace(in.HotelID)
	if _, err := uuid.Parse(hotelID); err != nil {
		return validCreate{}, apperr.Validation("hotel_id", "must be a UUID")
	}
	start, err := ParseDate(strings.TrimSpace(in.StayStart))
	if err != nil {
		return validCreate{}, apperr.Validation("stay_start", "must be a date (YYYY-MM-DD)")
	}
	end, err := ParseDate(strings.TrimSpace(in.StayEnd))
	if err != nil {
		return validCreate{}, apperr.Validation("stay_end", "must be a date (YYYY-MM-DD)")
	}
	if !end.After(start) {
		return validCreate{}, apperr.Validation("stay_end", "must be after stay_start")
	}
	if in.Headcount < 1 {
		return validCreate{}, apperr.Validation("headcount", "must be at least 1")
	}
	if in.RoomTypeMix.Single < 0 || in.RoomTypeMix.Double < 0 {
		return validCreate{}, apperr.Validation("room_type_mix", "room counts must not be negative")
	}
	if in.RoomTypeMix.Total() == 0 {
		return validCreate{}, apperr.Validation("room_type_mix", "at least one room is required")
	}
	if in.Notes != nil && utf8.RuneCountInString(*in.Notes) > maxNotesLen {
		return validCreate{}, apperr.Validation("notes", "must be at most 2000 characters")
	}
	return validCreate{hotelID: hotelID, start: start, end: end, headcount: in.Headcount, mix: in.RoomTypeMix, notes: in.Notes}, nil
}

// Create files a room request for the caller's employer.
func (e *Engine) Create(ctx context.Context, p identity.Principal, in CreateInput) (RoomRequest, error) {
	if p.Role != identity.RoleEmployer {
		return RoomRequest{}, apperr.Forbidden("")
	}
	v, err := in.validate()
	if err != nil {
		return RoomRequest{}, err
	}
	employerID, err := e.tenantOf(ctx, p)
	if err != nil {
		return RoomRequest{}, err
	}
	if employerID == "" {
		return RoomRequest{}, errNoEmployer()
	}
	ok, err := e.hotels.Exists(ctx, v.hotelID)
	if err != nil {
		return RoomRequest{}, apperr.Internal("check hotel", err)
	}
	if !ok {
		return RoomRequest{}, apperr.Validation("hotel_id", "unknown hotel")
	}

	status, action := StatusSubmitted, string(ActionSubmit)
	if in.Draft {
		status, action = StatusDraft, "DRAFT"
	}
	now := e.clock().UTC()
	rr := RoomRequest{
		ID:          uuid.NewString(),
		EmployerID:  employerID,
		HotelID:     v.hotelID,
		StayStart:   v.start,
		StayEnd:     v.end,
		Headcount:   v.headcount,
		RoomTypeMix: v.mix,
		Notes:       v.notes,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.repo.Insert(ctx, rr); err != nil {
		return RoomRequest{}, apperr.Internal("insert room request", err)
	}

	e.audit.Record(ctx, audit.Subject{Type: audit.ObjRoomRequest, ID: rr.ID}, action, actorOf(p), map[string]any{"headcount": rr.Headcount})
	return rr, nil
}

// List returns requests newest first. Employers see only their own tenant;
// staff see every tenant.
func (e *Engine) List(ctx context.Context, p identity.Principal, status string, limit int) ([]RoomRequest, error) {
	f := Filter{Limit: clampLimit(limit)}
	if status != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return nil, apperr.Validation("status", "unknown status")
		}
		f.Status = st
	}

	switch p.Role {
	case identity.RoleEmployer:
		employerID, err := e.tenantOf(ctx, p)
		if err != nil {
			return nil, err
		}
		if employerID == "" {
			return []RoomRequest{}, nil
		}
		f.EmployerID = employerID
	case identity.RoleFrontdesk, identity.RoleAdmin:
		// Drafts stay with their employer unless asked for by status.
		f.HideDrafts = true
	default:
		return nil, apperr.Forbidden("")
	}

	out, err := e.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list room requests", err)
	}
	return out, nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultListLimit
	case n > MaxListLimit:
		return MaxListLimit
	default:
		return n
	}
}

// Get returns one request. A missing id is NotFound for everyone; a
// request of another tenant is Forbidden for an employer.
func (e *Engine) Get(ctx context.Context, p identity.Principal, id string) (RoomRequest, error) {
	rr, err := e.load(ctx, id)
	if err != nil {
		return RoomRequest{}, err
	}
	if err := e.checkAccess(ctx, p, rr); err != nil {
		return RoomRequest{}, err
	}
	return rr, nil
}

func (e *Engine) Submit(ctx context.Context, p identity.Principal, id string) (RoomRequest, error) {
	return e.apply(ctx, p, id, ActionSubmit, nil)
}

func (e *Engine) Cancel(ctx context.Context, p identity.Principal, id string) (RoomRequest, error) {
	return e.apply(ctx, p, id, ActionCancel, nil)
}

// Decide accepts or rejects a SUBMITTED request. Of several concurrent
// deciders exactly one wins; the rest get a Conflict.
func (e *Engine) Decide(ctx context.Context, p identity.Principal, id string, d Decision, note string) (RoomRequest, error) {
	action, ok := d.action()
	if !ok {
		return RoomRequest{}, apperr.Validation("decision", "must be ACCEPT or REJECT")
	}
	var payload map[string]any
	if note = strings.TrimSpace(note); note != "" {
		if utf8.RuneCountInString(note) > maxNotesLen {
			return RoomRequest{}, apperr.Validation("note", "must be at most 2000 characters")
		}
		payload = map[string]any{"note": note}
	}
	return e.apply(ctx, p, id, action, payload)
}

func (e *Engine) Assign(ctx context.Context, p identity.Principal, id string) (RoomRequest, error) {
	return e.apply(ctx, p, id, ActionAssign, nil)
}

func (e *Engine) CheckIn(ctx context.Context, p identity.Principal, id string) (RoomRequest, error) {
	return e.apply(ctx, p, id, ActionCheckIn, nil)
}

func (e *Engine) CheckOut(ctx context.Context, p identity.Principal, id string) (RoomRequest, error) {
	return e.apply(ctx, p, id, ActionCheckOut, nil)
}

func (e *Engine) apply(ctx context.Context, p identity.Principal, id string, action Action, payload map[string]any) (RoomRequest, error) {
	t, ok := transitions[action]
	if !ok {
		return RoomRequest{}, apperr.Internal("apply transition", errors.New("unknown action "+string(action)))
	}
	if !t.allows(p.Role) {
		return RoomRequest{}, apperr.Forbidden("")
	}

	rr, err := e.load(ctx, id)
	if err != nil {
		return RoomRequest{}, err
	}
	if t.owner {
		if err := e.checkAccess(ctx, p, rr); err != nil {
			return RoomRequest{}, err
		}
	}
	if rr.Status != t.from {
		return RoomRequest{}, apperr.Conflict("request is " + string(rr.Status) + ", expected " + string(t.from))
	}

	now := e.clock().UTC()
	changed, err := e.repo.UpdateStatus(ctx, rr.ID, t.from, t.to, now)
	if err != nil {
		return RoomRequest{}, apperr.Internal("update room request status", err)
	}
	if !changed {
		// Another actor moved the request between our read and write.
		return RoomRequest{}, apperr.Conflict("request was modified concurrently")
	}
	rr.Status = t.to
	rr.UpdatedAt = now

	e.audit.Record(ctx, audit.Subject{Type: audit.ObjRoomRequest, ID: rr.ID}, string(action), actorOf(p), payload)
	return rr, nil
}

type ExtensionInput struct {
	WeekStart string  `json:"week_start"`
	WeekEnd   string  `json:"week_end"`
	Scope     *string `json:"scope"`
}

// RequestExtension files an extension against a request the caller owns.
// The parent status is not consulted.
func (e *Engine) RequestExtension(ctx context.Context, p identity.Principal, roomRequestID string, in ExtensionInput) (ExtensionRequest, error) {
	if p.Role != identity.RoleEmployer {
		return ExtensionRequest{}, apperr.Forbidden("")
	}
	parent, err := e.load(ctx, roomRequestID)
	if err != nil {
		return ExtensionRequest{}, err
	}
	if err := e.checkAccess(ctx, p, parent); err != nil {
		return ExtensionRequest{}, err
	}

	start, err := ParseDate(strings.TrimSpace(in.WeekStart))
	if err != nil {
		return ExtensionRequest{}, apperr.Validation("week_start", "must be a date (YYYY-MM-DD)")
	}
	end, err := ParseDate(strings.TrimSpace(in.WeekEnd))
	if err != nil {
		return ExtensionRequest{}, apperr.Validation("week_end", "must be a date (YYYY-MM-DD)")
	}
	if days := start.DaysUntil(end); days <= 0 || days > MaxExtensionDays {
		return ExtensionRequest{}, apperr.Validation("week_end", "Extensions limited to +7 days")
	}
	if in.Scope != nil && utf8.RuneCountInString(*in.Scope) > maxScopeLen {
		return ExtensionRequest{}, apperr.Validation("scope", "must be at most 500 characters")
	}

	now := e.clock().UTC()
	ext := ExtensionRequest{
		ID:            uuid.NewString(),
		RoomRequestID: parent.ID,
		WeekStart:     start,
		WeekEnd:       end,
		Scope:         in.Scope,
		Status:        StatusSubmitted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.repo.InsertExtension(ctx, ext); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ExtensionRequest{}, apperr.NotFound("Room request not found")
		}
		return ExtensionRequest{}, apperr.Internal("insert extension", err)
	}

	e.audit.Record(ctx, audit.Subject{Type: audit.ObjExtension, ID: ext.ID}, string(ActionSubmit), actorOf(p), map[string]any{"room_request_id": parent.ID})
	return ext, nil
}

// ListExtensions uses the same scoping as Get on the parent request.
func (e *Engine) ListExtensions(ctx context.Context, p identity.Principal, roomRequestID string) ([]ExtensionRequest, error) {
	if _, err := e.Get(ctx, p, roomRequestID); err != nil {
		return nil, err
	}
	out, err := e.repo.ListExtensions(ctx, roomRequestID)
	if err != nil {
		return nil, apperr.Internal("list extensions", err)
	}
	return out, nil
}

// DecideExtension accepts or rejects a SUBMITTED extension. The parent
// request's stay dates are left alone.
func (e *Engine) DecideExtension(ctx context.Context, p identity.Principal, extensionID string, d Decision) (ExtensionRequest, error) {
	action, ok := d.action()
	if !ok {
		return ExtensionRequest{}, apperr.Validation("decision", "must be ACCEPT or REJECT")
	}
	if !rbac.IsStaff(p.Role) {
		return ExtensionRequest{}, apperr.Forbidden("")
	}
	to := transitions[action].to

	ext, err := e.repo.GetExtension(ctx, extensionID)
	if errors.Is(err, ErrExtensionNotFound) {
		return ExtensionRequest{}, apperr.NotFound("Extension not found")
	}
	if err != nil {
		return ExtensionRequest{}, apperr.Internal("load extension", err)
	}
	if ext.Status != StatusSubmitted {
		return ExtensionRequest{}, apperr.Conflict("extension is " + string(ext.Status) + ", expected SUBMITTED")
	}

	now := e.clock().UTC()
	changed, err := e.repo.UpdateExtensionStatus(ctx, ext.ID, StatusSubmitted, to, now)
	if err != nil {
		return ExtensionRequest{}, apperr.Internal("update extension status", err)
	}
	if !changed {
		return ExtensionRequest{}, apperr.Conflict("extension was modified concurrently")
	}
	ext.Status = to
	ext.UpdatedAt = now

	e.audit.Record(ctx, audit.Subject{Type: audit.ObjExtension, ID: ext.ID}, string(action), actorOf(p), map[string]any{"room_request_id": ext.RoomRequestID})
	return ext, nil
}

func (e *Engine) load(ctx context.Context, id string) (RoomRequest, error) {
	rr, err := e.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return RoomRequest{}, apperr.NotFound("Not found")
	}
	if err != nil {
		return RoomRequest{}, apperr.Internal("load room request", err)
	}
	return rr, nil
}

// checkAccess lets staff through and holds employers to their own tenant.
// An employer user with no employer link gets the same validation error
// as on Create.
func (e *Engine) checkAccess(ctx context.Context, p identity.Principal, rr RoomRequest) error {
	switch p.Role {
	case identity.RoleFrontdesk, identity.RoleAdmin:
		return nil
	case identity.RoleEmployer:
		employerID, err := e.tenantOf(ctx, p)
		if err != nil {
			return err
		}
		if employerID == "" {
			return errNoEmployer()
		}
		if employerID != rr.EmployerID {
			return apperr.Forbidden("")
		}
		return nil
	default:
		return apperr.Forbidden("")
	}
}

func (e *Engine) tenantOf(ctx context.Context, p identity.Principal) (string, error) {
	id, err := e.tenants.EmployerIDFor(ctx, p)
	if err != nil {
		return "", apperr.Internal("resolve employer", err)
	}
	return id, nil
}

func errNoEmployer() error {
	return apperr.Validation("employer", "no employer linked to this user")
}

func actorOf(p identity.Principal) audit.Actor {
	return audit.Actor{ID: p.SubjectID, Role: string(p.Role)}
}
