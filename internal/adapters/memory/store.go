package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/driftml/lattice/pkg/domain"
)

// Store implements ports.RunStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*domain.Run
}

// New creates an empty in-memory run store.
func New() *Store {
	return &Store{runs: make(map[string]*domain.Run)}
}

// Save stores the run, overwriting any previous record with the same ID.
func (s *Store) Save(_ context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// Load retrieves a run by ID.
func (s *Store) Load(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

// List returns all run IDs, oldest first (ties broken by ID).
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.runs[ids[i]], s.runs[ids[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return ids, nil
}

// Delete removes a run by ID.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}
