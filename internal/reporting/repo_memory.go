package reporting

import (
	"context"

	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/rooms"
)

// MemoryRepo answers dashboard queries from the in-memory room and audit
// repositories. Used by tests and local runs.
type MemoryRepo struct {
	Rooms *rooms.MemoryRepo
	Audit *audit.MemoryRepo
}

func NewMemoryRepo(roomsRepo *rooms.MemoryRepo, auditRepo *audit.MemoryRepo) *MemoryRepo {
	return &MemoryRepo{Rooms: roomsRepo, Audit: auditRepo}
}

func (r *MemoryRepo) OpenRequests(ctx context.Context, employerID string) ([]rooms.RoomRequest, error) {
	all, err := r.Rooms.List(ctx, rooms.Filter{EmployerID: employerID})
	if err != nil {
		return nil, err
	}
	out := make([]rooms.RoomRequest, 0, len(all))
	for _, rr := range all {
		if rr.Status.Open() {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (r *MemoryRepo) PendingExtensions(ctx context.Context, employerID string) (int, error) {
	all, err := r.Rooms.List(ctx, rooms.Filter{EmployerID: employerID})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rr := range all {
		exts, err := r.Rooms.ListExtensions(ctx, rr.ID)
		if err != nil {
			return 0, err
		}
		for _, e := range exts {
			if e.Status == rooms.StatusSubmitted {
				n++
			}
		}
	}
	return n, nil
}

func (r *MemoryRepo) RequestsByStatus(ctx context.Context) (map[rooms.Status]int, error) {
	all, err := r.Rooms.List(ctx, rooms.Filter{})
	if err != nil {
		return nil, err
	}
	out := map[rooms.Status]int{}
	for _, rr := range all {
		out[rr.Status]++
	}
	return out, nil
}

func (r *MemoryRepo) RecentEvents(ctx context.Context, limit int) ([]audit.Event, error) {
	if r.Audit == nil {
		return []audit.Event{}, nil
	}
	events := r.Audit.Events()
	out := make([]audit.Event, 0, limit)
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, events[i])
	}
	return out, nil
}
