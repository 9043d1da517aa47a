package workers

import (
	"context"
	"time"
)

// Worker is a member of an employer's roster. Phone is the import key:
// re-importing a phone number updates the existing worker.
type Worker struct {
	ID         string  `json:"id"`
	EmployerID string  `json:"employer_id"`
	Name       string  `json:"name"`
	Phone      *string `json:"phone"`
	Notes      *string `json:"notes"`
	GovIDType  *string `json:"gov_id_type"`
	GovIDLast4 *string `json:"gov_id_last4"`
}

// Stay is one hotel reservation of a worker, matched to the roster by name.
type Stay struct {
	WorkerName string
	HotelID    string
	HotelName  string
	RoomNo     *string
	CheckIn    *time.Time
	CheckOut   *time.Time
}

// Status is derived from the worker's most recent stay.
type Status string

const (
	StatusUnassigned Status = "Unassigned"
	StatusInHouse    Status = "In-house"
	StatusUpcoming   Status = "Upcoming"
	StatusCheckedOut Status = "Checked-out"
)

// Row is one roster line as returned to the employer.
type Row struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Phone      *string    `json:"phone"`
	Status     Status     `json:"status"`
	HotelID    string     `json:"hotel_id,omitempty"`
	Hotel      *string    `json:"hotel"`
	RoomNo     *string    `json:"room_no"`
	CheckIn    *time.Time `json:"checkin_ts"`
	CheckOut   *time.Time `json:"checkout_ts"`
	GovIDType  *string    `json:"gov_id_type"`
	GovIDLast4 *string    `json:"gov_id_last4"`
	Notes      *string    `json:"notes"`
}

type HotelCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Buckets struct {
	ByHotel       []HotelCount `json:"byHotel"`
	Unassigned    int          `json:"unassigned"`
	Upcoming      int          `json:"upcoming"`
	CheckedOut30d int          `json:"checkedOut30d"`
}

type Roster struct {
	Hotels  []HotelCount `json:"hotels"`
	Buckets Buckets      `json:"buckets"`
	Workers []Row        `json:"workers"`
}

func emptyRoster() Roster {
	return Roster{
		Hotels:  []HotelCount{},
		Buckets: Buckets{ByHotel: []HotelCount{}},
		Workers: []Row{},
	}
}

// Filter narrows the roster. Start and End bound the check-in date
// (YYYY-MM-DD, inclusive).
type Filter struct {
	Q       string
	HotelID string
	Status  string
	Start   string
	End     string
}

// Store persists rosters and reads reservations, always per employer.
type Store interface {
	// ListWorkers returns the roster ordered by name.
	ListWorkers(ctx context.Context, employerID string) ([]Worker, error)
	// ListStays returns reservations, newest check-in first.
	ListStays(ctx context.Context, employerID string) ([]Stay, error)
	// Upsert inserts workers, updating those whose (employer, phone)
	// already exists. Workers without a phone are always inserted.
	Upsert(ctx context.Context, employerID string, ws []Worker) error
}
