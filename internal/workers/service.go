package workers

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"workforce-lodging/internal/apperr"
	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/hotels"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/rooms"
)

const (
	// MaxImport caps one bulk import.
	MaxImport       = 1000
	maxNameLen      = 200
	maxNotesLen     = 1000
	recentCheckouts = 30 * 24 * time.Hour
)

type TenantResolver interface {
	EmployerIDFor(ctx context.Context, p identity.Principal) (string, error)
}

// HotelLister is satisfied by hotels.Store.
type HotelLister interface {
	List(ctx context.Context) ([]hotels.Hotel, error)
}

type Service struct {
	store   Store
	tenants TenantResolver
	hotels  HotelLister
	audit   *audit.Service
	clock   func() time.Time
}

func NewService(store Store, tenants TenantResolver, hotelList HotelLister, auditSvc *audit.Service) *Service {
	return &Service{store: store, tenants: tenants, hotels: hotelList, audit: auditSvc, clock: time.Now}
}

func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Input is one worker of a bulk import.
type Input struct {
	Name       string  `json:"name"`
	Phone      *string `json:"phone"`
	Notes      *string `json:"notes"`
	GovIDType  *string `json:"gov_id_type"`
	GovIDLast4 *string `json:"gov_id_last4"`
}

// Import upserts a batch of workers into the caller's roster and returns
// how many were written.
func (s *Service) Import(ctx context.Context, p identity.Principal, items []Input) (int, error) {
	if p.Role != identity.RoleEmployer {
		return 0, apperr.Forbidden("")
	}
	if len(items) == 0 {
		return 0, apperr.Validation("workers", "No workers provided")
	}
	if len(items) > MaxImport {
		return 0, apperr.Validation("workers", fmt.Sprintf("at most %d workers per import", MaxImport))
	}

	employerID, err := s.tenants.EmployerIDFor(ctx, p)
	if err != nil {
		return 0, apperr.Internal("resolve employer", err)
	}
	if employerID == "" {
		return 0, apperr.Validation("employer", "No employer")
	}

	batch := make([]Worker, 0, len(items))
	for i, it := range items {
		w, err := normalize(i, it)
		if err != nil {
			return 0, err
		}
		w.EmployerID = employerID
		batch = append(batch, w)
	}

	if err := s.store.Upsert(ctx, employerID, batch); err != nil {
		return 0, apperr.Internal("import workers", err)
	}
	s.audit.Record(ctx, audit.Subject{Type: audit.ObjEmployer, ID: employerID}, "WORKER_IMPORT",
		audit.Actor{ID: p.SubjectID, Role: string(p.Role)}, map[string]any{"count": len(batch)})
	return len(batch), nil
}

func normalize(i int, in Input) (Worker, error) {
	field := func(name string) string { return fmt.Sprintf("workers[%d].%s", i, name) }

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Worker{}, apperr.Validation(field("name"), "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return Worker{}, apperr.Validation(field("name"), "must be at most 200 characters")
	}
	w := Worker{
		Name:       name,
		Phone:      trimmed(in.Phone),
		Notes:      trimmed(in.Notes),
		GovIDType:  trimmed(in.GovIDType),
		GovIDLast4: trimmed(in.GovIDLast4),
	}
	if w.Notes != nil && utf8.RuneCountInString(*w.Notes) > maxNotesLen {
		return Worker{}, apperr.Validation(field("notes"), "must be at most 1000 characters")
	}
	if w.GovIDLast4 != nil && utf8.RuneCountInString(*w.GovIDLast4) > 4 {
		return Worker{}, apperr.Validation(field("gov_id_last4"), "must be at most 4 characters")
	}
	return w, nil
}

// trimmed maps blank strings to nil.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// Roster returns the caller's workers with the status of their latest stay,
// plus in-house counts per hotel. An unlinked employer gets an empty roster.
func (s *Service) Roster(ctx context.Context, p identity.Principal, f Filter) (Roster, error) {
	if p.Role != identity.RoleEmployer {
		return Roster{}, apperr.Forbidden("")
	}
	start, end, err := parseRange(f.Start, f.End)
	if err != nil {
		return Roster{}, err
	}

	employerID, err := s.tenants.EmployerIDFor(ctx, p)
	if err != nil {
		return Roster{}, apperr.Internal("resolve employer", err)
	}
	if employerID == "" {
		return emptyRoster(), nil
	}

	ws, err := s.store.ListWorkers(ctx, employerID)
	if err != nil {
		return Roster{}, apperr.Internal("list workers", err)
	}
	hs, err := s.hotels.List(ctx)
	if err != nil {
		return Roster{}, apperr.Internal("list hotels", err)
	}
	stays, err := s.store.ListStays(ctx, employerID)
	if err != nil {
		return Roster{}, apperr.Internal("list stays", err)
	}

	now := s.clock().UTC()
	out := emptyRoster()

	latest := map[string]Stay{}
	inHouse := map[string]int{}
	for _, st := range stays {
		if key := strings.TrimSpace(st.WorkerName); key != "" {
			if prev, ok := latest[key]; !ok || after(st.CheckIn, prev.CheckIn) {
				latest[key] = st
			}
		}
		switch stayStatus(st, now) {
		case StatusInHouse:
			if st.HotelID != "" {
				inHouse[st.HotelID]++
			}
		case StatusUpcoming:
			out.Buckets.Upcoming++
		case StatusCheckedOut:
			if !st.CheckOut.Before(now.Add(-recentCheckouts)) {
				out.Buckets.CheckedOut30d++
			}
		}
	}

	for _, h := range hs {
		out.Hotels = append(out.Hotels, HotelCount{ID: h.ID, Name: h.Name, Count: inHouse[h.ID]})
	}
	out.Buckets.ByHotel = out.Hotels

	q := strings.ToLower(strings.TrimSpace(f.Q))
	hotelID := strings.TrimSpace(f.HotelID)
	status := strings.TrimSpace(f.Status)
	for _, w := range ws {
		r := Row{
			ID: w.ID, Name: w.Name, Phone: w.Phone, Status: StatusUnassigned,
			GovIDType: w.GovIDType, GovIDLast4: w.GovIDLast4, Notes: w.Notes,
		}
		if st, ok := latest[strings.TrimSpace(w.Name)]; ok {
			r.Status = stayStatus(st, now)
			r.HotelID = st.HotelID
			if st.HotelName != "" {
				name := st.HotelName
				r.Hotel = &name
			}
			r.RoomNo, r.CheckIn, r.CheckOut = st.RoomNo, st.CheckIn, st.CheckOut
		}

		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) && (r.Phone == nil || !strings.Contains(strings.ToLower(*r.Phone), q)) {
			continue
		}
		if hotelID != "" && r.HotelID != hotelID {
			continue
		}
		if status != "" && !strings.EqualFold(string(r.Status), status) {
			continue
		}
		if !inRange(r.CheckIn, start, end) {
			continue
		}
		out.Workers = append(out.Workers, r)
		if r.Status == StatusUnassigned {
			out.Buckets.Unassigned++
		}
	}
	return out, nil
}

// stayStatus classifies a stay against now. A stay with neither an open
// past check-in, a future check-in nor a checkout leaves the worker unassigned.
func stayStatus(st Stay, now time.Time) Status {
	switch {
	case st.CheckOut == nil && st.CheckIn != nil && !st.CheckIn.After(now):
		return StatusInHouse
	case st.CheckIn != nil && st.CheckIn.After(now):
		return StatusUpcoming
	case st.CheckOut != nil:
		return StatusCheckedOut
	default:
		return StatusUnassigned
	}
}

func after(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}

func parseRange(rawStart, rawEnd string) (start, end rooms.Date, err error) {
	if s := strings.TrimSpace(rawStart); s != "" {
		if start, err = rooms.ParseDate(s); err != nil {
			return start, end, apperr.Validation("start", "must be a date (YYYY-MM-DD)")
		}
	}
	if e := strings.TrimSpace(rawEnd); e != "" {
		if end, err = rooms.ParseDate(e); err != nil {
			return start, end, apperr.Validation("end", "must be a date (YYYY-MM-DD)")
		}
	}
	return start, end, nil
}

// inRange reports whether the check-in date lies within [start, end]. Zero
// bounds are open; with any bound set, rows without a check-in drop out.
func inRange(checkIn *time.Time, start, end rooms.Date) bool {
	if start.IsZero() && end.IsZero() {
		return true
	}
	if checkIn == nil {
		return false
	}
	d := rooms.DateOf(checkIn.UTC())
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}
