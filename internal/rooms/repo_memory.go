package rooms

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository for tests and local development.
type MemoryRepo struct {
	mu         sync.Mutex
	requests   map[string]RoomRequest
	extensions map[string]ExtensionRequest
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		requests:   map[string]RoomRequest{},
		extensions: map[string]ExtensionRequest{},
	}
}

func (r *MemoryRepo) Insert(ctx context.Context, rr RoomRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[rr.ID] = rr
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (RoomRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rr, ok := r.requests[id]
	if !ok {
		return RoomRequest{}, ErrNotFound
	}
	return rr, nil
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]RoomRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RoomRequest, 0)
	for _, rr := range r.requests {
		if f.EmployerID != "" && rr.EmployerID != f.EmployerID {
			continue
		}
		if f.Status != "" && rr.Status != f.Status {
			continue
		}
		if f.Status == "" && f.HideDrafts && rr.Status == StatusDraft {
			continue
		}
		out = append(out, rr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, from, to Status, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rr, ok := r.requests[id]
	if !ok || rr.Status != from {
		return false, nil
	}
	rr.Status = to
	rr.UpdatedAt = now
	r.requests[id] = rr
	return true, nil
}

func (r *MemoryRepo) InsertExtension(ctx context.Context, e ExtensionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[e.RoomRequestID]; !ok {
		return ErrNotFound
	}
	r.extensions[e.ID] = e
	return nil
}

func (r *MemoryRepo) GetExtension(ctx context.Context, id string) (ExtensionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.extensions[id]
	if !ok {
		return ExtensionRequest{}, ErrExtensionNotFound
	}
	return e, nil
}

func (r *MemoryRepo) ListExtensions(ctx context.Context, roomRequestID string) ([]ExtensionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ExtensionRequest, 0)
	for _, e := range r.extensions {
		if e.RoomRequestID == roomRequestID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out, nil
}

func (r *MemoryRepo) UpdateExtensionStatus(ctx context.Context, id string, from, to Status, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.extensions[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status = to
	e.UpdatedAt = now
	r.extensions[id] = e
	return true, nil
}
