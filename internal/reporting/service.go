package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"workforce-lodging/internal/apperr"
	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/rooms"
)

const (
	listSize         = 20
	recentEventsSize = 20
	// extensionHorizonDays is how far ahead a stay end counts as "extension due".
	extensionHorizonDays = 7
)

// Repository abstracts data access for dashboards.
//
// IMPORTANT:
// - A non-empty employerID must restrict every result to that tenant.
// - An empty employerID means all tenants and is only used for staff.
type Repository interface {
	// OpenRequests lists requests that are neither DRAFT nor terminal.
	OpenRequests(ctx context.Context, employerID string) ([]rooms.RoomRequest, error)
	PendingExtensions(ctx context.Context, employerID string) (int, error)
	RequestsByStatus(ctx context.Context) (map[rooms.Status]int, error)
	RecentEvents(ctx context.Context, limit int) ([]audit.Event, error)
}

type TenantResolver interface {
	EmployerIDFor(ctx context.Context, p identity.Principal) (string, error)
}

// Counter is satisfied by the user and hotel stores.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

type Service struct {
	repo    Repository
	tenants TenantResolver
	users   Counter
	hotels  Counter
	clock   func() time.Time
}

func NewService(repo Repository, tenants TenantResolver, users, hotels Counter) *Service {
	return &Service{repo: repo, tenants: tenants, users: users, hotels: hotels, clock: time.Now}
}

func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// EmployerSummary is the dashboard of the caller's employer. An unlinked
// employer gets zeros and empty lists.
func (s *Service) EmployerSummary(ctx context.Context, p identity.Principal) (EmployerSummary, error) {
	out := EmployerSummary{Upcoming: []rooms.RoomRequest{}, Requests: []rooms.RoomRequest{}}
	if s.repo == nil {
		return out, apperr.Internal("employer summary", errors.New("reporting: repository not configured"))
	}
	employerID, err := s.tenants.EmployerIDFor(ctx, p)
	if err != nil {
		return out, apperr.Internal("resolve employer", err)
	}
	if employerID == "" {
		return out, nil
	}

	open, err := s.repo.OpenRequests(ctx, employerID)
	if err != nil {
		return out, apperr.Internal("employer summary", err)
	}
	pendingExt, err := s.repo.PendingExtensions(ctx, employerID)
	if err != nil {
		return out, apperr.Internal("employer summary", err)
	}

	today := rooms.DateOf(s.clock())
	horizon := today.AddDays(extensionHorizonDays)
	out.Stats.ActiveRequests = len(open)
	out.Stats.PendingExtensions = pendingExt
	for _, r := range open {
		switch r.Status {
		case rooms.StatusCheckedIn:
			out.Stats.WorkersInHouse += r.Headcount
		case rooms.StatusAccepted, rooms.StatusAssigned:
			if !r.StayStart.Before(today) {
				out.Upcoming = append(out.Upcoming, r)
			}
		}
		if !r.StayEnd.Before(today) && !r.StayEnd.After(horizon) {
			out.Stats.ExtensionsDue++
		}
	}

	sortByStayStart(open)
	sortByStayStart(out.Upcoming)
	out.Requests = head(open, listSize)
	out.Upcoming = head(out.Upcoming, listSize)
	return out, nil
}

// FrontdeskSummary covers every tenant.
func (s *Service) FrontdeskSummary(ctx context.Context) (FrontdeskSummary, error) {
	out := FrontdeskSummary{Arrivals: []rooms.RoomRequest{}, Pending: []rooms.RoomRequest{}}
	if s.repo == nil {
		return out, apperr.Internal("frontdesk summary", errors.New("reporting: repository not configured"))
	}
	open, err := s.repo.OpenRequests(ctx, "")
	if err != nil {
		return out, apperr.Internal("frontdesk summary", err)
	}
	pendingExt, err := s.repo.PendingExtensions(ctx, "")
	if err != nil {
		return out, apperr.Internal("frontdesk summary", err)
	}

	today := rooms.DateOf(s.clock())
	out.Stats.PendingExtensions = pendingExt
	for _, r := range open {
		switch r.Status {
		case rooms.StatusSubmitted:
			out.Stats.PendingRequests++
			out.Pending = append(out.Pending, r)
		case rooms.StatusAccepted, rooms.StatusAssigned:
			if r.StayStart.Equal(today) {
				out.Stats.ArrivalsToday++
				out.Arrivals = append(out.Arrivals, r)
			}
		case rooms.StatusCheckedIn:
			out.Stats.InHouse += r.Headcount
		}
	}

	sortByStayStart(out.Pending)
	out.Pending = head(out.Pending, listSize)
	out.Arrivals = head(out.Arrivals, listSize)
	return out, nil
}

func (s *Service) AdminSummary(ctx context.Context) (AdminSummary, error) {
	out := AdminSummary{RecentEvents: []audit.Event{}}
	if s.repo == nil {
		return out, apperr.Internal("admin summary", errors.New("reporting: repository not configured"))
	}
	var err error
	if out.Stats.Users, err = s.users.Count(ctx); err != nil {
		return out, apperr.Internal("count users", err)
	}
	if out.Stats.Hotels, err = s.hotels.Count(ctx); err != nil {
		return out, apperr.Internal("count hotels", err)
	}
	if out.Stats.RequestsByStatus, err = s.repo.RequestsByStatus(ctx); err != nil {
		return out, apperr.Internal("count requests", err)
	}
	events, err := s.repo.RecentEvents(ctx, recentEventsSize)
	if err != nil {
		return out, apperr.Internal("recent events", err)
	}
	if events != nil {
		out.RecentEvents = events
	}
	return out, nil
}

func sortByStayStart(rs []rooms.RoomRequest) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].StayStart.Before(rs[j].StayStart) })
}

func head(rs []rooms.RoomRequest, n int) []rooms.RoomRequest {
	if len(rs) > n {
		return rs[:n]
	}
	return rs
}
