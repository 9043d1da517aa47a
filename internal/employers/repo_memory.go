package employers

import (
	"context"
	"sync"
)

// Linker sets a user's employer exactly once (users.MemoryStore).
type Linker interface {
	LinkEmployer(ctx context.Context, userID, employerID string) error
}

// MemoryRepo keeps employers in memory and links through a Linker.
type MemoryRepo struct {
	mu        sync.Mutex
	employers map[string]Employer
	links     Linker
}

func NewMemoryRepo(links Linker) *MemoryRepo {
	return &MemoryRepo{employers: map[string]Employer{}, links: links}
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Employer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employers[id]
	if !ok {
		return Employer{}, ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepo) CreateAndLink(ctx context.Context, userID string, e Employer) (Employer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.links.LinkEmployer(ctx, userID, e.ID); err != nil {
		return Employer{}, err
	}
	r.employers[e.ID] = e
	return e, nil
}

func (r *MemoryRepo) Update(ctx context.Context, e Employer) (Employer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.employers[e.ID]; !ok {
		return Employer{}, ErrNotFound
	}
	r.employers[e.ID] = e
	return e, nil
}

// Put seeds an employer without linking anyone.
func (r *MemoryRepo) Put(e Employer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employers[e.ID] = e
}
