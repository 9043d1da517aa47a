package hotels

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"workforce-lodging/pkg/utils"
)

type Hotel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Store is the read side of the hotel directory.
type Store interface {
	List(ctx context.Context) ([]Hotel, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) List(ctx context.Context) ([]Hotel, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM hotels ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Hotel{}
	for rows.Next() {
		var h Hotel
		if err := rows.Scan(&h.ID, &h.Name); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM hotels WHERE id = $1)`, id).Scan(&ok)
	if utils.IsInvalidInput(err) {
		return false, nil
	}
	return ok, err
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM hotels`).Scan(&n)
	return n, err
}

// MemoryStore is an in-memory hotel directory for tests and local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	hotels map[string]Hotel
}

func NewMemoryStore(seed ...Hotel) *MemoryStore {
	s := &MemoryStore{hotels: map[string]Hotel{}}
	for _, h := range seed {
		s.hotels[h.ID] = h
	}
	return s
}

func (s *MemoryStore) Put(h Hotel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotels[h.ID] = h
}

func (s *MemoryStore) List(ctx context.Context) ([]Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Hotel, 0, len(s.hotels))
	for _, h := range s.hotels {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hotels[id]
	return ok, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hotels), nil
}
