package rooms

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a room request. Extension requests use
// the SUBMITTED, ACCEPTED and REJECTED subset.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusSubmitted  Status = "SUBMITTED"
	StatusAccepted   Status = "ACCEPTED"
	StatusAssigned   Status = "ASSIGNED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusRejected   Status = "REJECTED"
	StatusCanceled   Status = "CANCELED"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusDraft, StatusSubmitted, StatusAccepted, StatusAssigned,
		StatusCheckedIn, StatusCheckedOut, StatusRejected, StatusCanceled:
		return st, true
	default:
		return "", false
	}
}

// Terminal states accept no further transition.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCanceled, StatusCheckedOut:
		return true
	default:
		return false
	}
}

// Open reports whether the request still occupies or may occupy rooms.
func (s Status) Open() bool {
	return !s.Terminal() && s != StatusDraft
}

// RoomMix counts rooms per type.
type RoomMix struct {
	Single int `json:"SINGLE"`
	Double int `json:"DOUBLE"`
}

func (m RoomMix) Total() int { return m.Single + m.Double }

func (m RoomMix) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *RoomMix) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = RoomMix{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("rooms: cannot scan %T into RoomMix", src)
	}
}

type RoomRequest struct {
	ID          string    `json:"id"`
	EmployerID  string    `json:"employer_id"`
	HotelID     string    `json:"hotel_id"`
	StayStart   Date      `json:"stay_start"`
	StayEnd     Date      `json:"stay_end"`
	Headcount   int       `json:"headcount"`
	RoomTypeMix RoomMix   `json:"room_type_mix"`
	Notes       *string   `json:"notes"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExtensionRequest asks to keep rooms for up to one more week.
// Accepting it does not move the parent StayEnd.
type ExtensionRequest struct {
	ID            string    `json:"id"`
	RoomRequestID string    `json:"room_request_id"`
	WeekStart     Date      `json:"week_start"`
	WeekEnd       Date      `json:"week_end"`
	Scope         *string   `json:"scope"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Filter narrows a listing. An empty EmployerID means every tenant.
// HideDrafts drops DRAFT requests when no Status is given.
type Filter struct {
	EmployerID string
	Status     Status
	HideDrafts bool
	Limit      int
}

var (
	ErrNotFound          = errors.New("room request not found")
	ErrExtensionNotFound = errors.New("extension request not found")
)
