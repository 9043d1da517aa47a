package reporting

import (
	"context"
	"testing"
	"time"

	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/rooms"
)

type staticTenants map[string]string

func (s staticTenants) EmployerIDFor(ctx context.Context, p identity.Principal) (string, error) {
	return s[p.SubjectID], nil
}

type staticCount int

func (c staticCount) Count(ctx context.Context) (int, error) { return int(c), nil }

var today = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func date(t *testing.T, s string) rooms.Date {
	t.Helper()
	d, err := rooms.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func seed(t *testing.T) (*rooms.MemoryRepo, *audit.MemoryRepo) {
	t.Helper()
	ctx := context.Background()
	rr := rooms.NewMemoryRepo()
	put := func(id, employer string, st rooms.Status, start, end string, headcount int) {
		if err := rr.Insert(ctx, rooms.RoomRequest{
			ID: id, EmployerID: employer, Status: st, Headcount: headcount,
			StayStart: date(t, start), StayEnd: date(t, end), CreatedAt: today,
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	put("r1", "e1", rooms.StatusSubmitted, "2025-03-12", "2025-03-20", 2)
	put("r2", "e1", rooms.StatusAssigned, "2025-03-10", "2025-03-14", 4)
	put("r3", "e1", rooms.StatusCheckedIn, "2025-03-01", "2025-03-11", 5)
	put("r4", "e1", rooms.StatusCheckedOut, "2025-02-01", "2025-02-05", 9)
	put("r5", "e2", rooms.StatusCheckedIn, "2025-03-05", "2025-04-01", 7)
	put("r6", "e2", rooms.StatusSubmitted, "2025-03-15", "2025-03-16", 1)
	put("r7", "e1", rooms.StatusDraft, "2025-03-11", "2025-03-12", 1)

	for i, parent := range []string{"r3", "r5"} {
		if err := rr.InsertExtension(ctx, rooms.ExtensionRequest{ID: "x" + string(rune('0'+i)), RoomRequestID: parent, Status: rooms.StatusSubmitted}); err != nil {
			t.Fatalf("insert extension: %v", err)
		}
	}

	ar := audit.NewMemoryRepo()
	svc := audit.NewService(ar)
	for _, action := range []string{"SUBMIT", "ACCEPT", "ASSIGN"} {
		if err := svc.Append(ctx, audit.Event{ObjType: audit.ObjRoomRequest, ObjID: "r2", Action: action, ActorID: "u"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return rr, ar
}

func TestEmployerSummary_ScopedToTenant(t *testing.T) {
	rr, ar := seed(t)
	svc := NewService(NewMemoryRepo(rr, ar), staticTenants{"boss": "e1"}, staticCount(0), staticCount(0)).
		WithClock(func() time.Time { return today })

	out, err := svc.EmployerSummary(context.Background(), identity.Principal{SubjectID: "boss", Role: identity.RoleEmployer})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.Stats.ActiveRequests != 3 {
		t.Fatalf("expected 3 active requests, got %d", out.Stats.ActiveRequests)
	}
	if out.Stats.WorkersInHouse != 5 {
		t.Fatalf("expected 5 workers in house, got %d", out.Stats.WorkersInHouse)
	}
	// r2 ends 03-14 and r3 ends 03-11; r1 ends 03-20 (outside 7 days).
	if out.Stats.ExtensionsDue != 2 {
		t.Fatalf("expected 2 extensions due, got %d", out.Stats.ExtensionsDue)
	}
	if out.Stats.PendingExtensions != 1 {
		t.Fatalf("expected 1 pending extension, got %d", out.Stats.PendingExtensions)
	}
	if len(out.Upcoming) != 1 || out.Upcoming[0].ID != "r2" {
		t.Fatalf("unexpected upcoming %+v", out.Upcoming)
	}
	for _, r := range out.Requests {
		if r.EmployerID != "e1" {
			t.Fatalf("leaked foreign request %s", r.ID)
		}
	}
	if out.Requests[0].ID != "r3" {
		t.Fatalf("expected requests ordered by stay start, got %s first", out.Requests[0].ID)
	}
}

func TestEmployerSummary_UnlinkedIsEmpty(t *testing.T) {
	rr, ar := seed(t)
	svc := NewService(NewMemoryRepo(rr, ar), staticTenants{}, staticCount(0), staticCount(0))
	out, err := svc.EmployerSummary(context.Background(), identity.Principal{SubjectID: "nobody", Role: identity.RoleEmployer})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.Stats != (EmployerStats{}) || len(out.Requests) != 0 || out.Requests == nil {
		t.Fatalf("expected empty summary, got %+v", out)
	}
}

func TestFrontdeskSummary_AllTenants(t *testing.T) {
	rr, ar := seed(t)
	svc := NewService(NewMemoryRepo(rr, ar), staticTenants{}, staticCount(0), staticCount(0)).
		WithClock(func() time.Time { return today })

	out, err := svc.FrontdeskSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := FrontdeskStats{ArrivalsToday: 1, PendingRequests: 2, InHouse: 12, PendingExtensions: 2}
	if out.Stats != want {
		t.Fatalf("expected %+v, got %+v", want, out.Stats)
	}
	if len(out.Pending) != 2 || out.Pending[0].ID != "r1" {
		t.Fatalf("unexpected pending %+v", out.Pending)
	}
	if len(out.Arrivals) != 1 || out.Arrivals[0].ID != "r2" {
		t.Fatalf("unexpected arrivals %+v", out.Arrivals)
	}
}

func TestAdminSummary_CountsAndRecentEvents(t *testing.T) {
	rr, ar := seed(t)
	svc := NewService(NewMemoryRepo(rr, ar), staticTenants{}, staticCount(12), staticCount(3))

	out, err := svc.AdminSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.Stats.Users != 12 || out.Stats.Hotels != 3 {
		t.Fatalf("unexpected counts %+v", out.Stats)
	}
	if out.Stats.RequestsByStatus[rooms.StatusCheckedIn] != 2 || out.Stats.RequestsByStatus[rooms.StatusDraft] != 1 {
		t.Fatalf("unexpected status counts %+v", out.Stats.RequestsByStatus)
	}
	if len(out.RecentEvents) != 3 || out.RecentEvents[0].Action != "ASSIGN" {
		t.Fatalf("expected newest event first, got %+v", out.RecentEvents)
	}
}
