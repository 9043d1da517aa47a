package workers

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps rosters and reservations in memory for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	workers map[string]Worker
	stays   map[string][]Stay
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{workers: map[string]Worker{}, stays: map[string][]Stay{}}
}

// PutStay records a reservation for an employer.
func (s *MemoryStore) PutStay(employerID string, st Stay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stays[employerID] = append(s.stays[employerID], st)
}

func (s *MemoryStore) ListWorkers(ctx context.Context, employerID string) ([]Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Worker, 0)
	for _, w := range s.workers {
		if w.EmployerID == employerID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemoryStore) ListStays(ctx context.Context, employerID string) ([]Stay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Stay(nil), s.stays[employerID]...)
	sort.SliceStable(out, func(i, j int) bool { return after(out[i].CheckIn, out[j].CheckIn) })
	return out, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, employerID string, ws []Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range ws {
		w.EmployerID = employerID
		if existing, ok := s.byPhone(employerID, w.Phone); ok {
			w.ID = existing.ID
		} else if w.ID == "" {
			w.ID = uuid.NewString()
		}
		s.workers[w.ID] = w
	}
	return nil
}

func (s *MemoryStore) byPhone(employerID string, phone *string) (Worker, bool) {
	if phone == nil {
		return Worker{}, false
	}
	for _, w := range s.workers {
		if w.EmployerID == employerID && w.Phone != nil && *w.Phone == *phone {
			return w, true
		}
	}
	return Worker{}, false
}
