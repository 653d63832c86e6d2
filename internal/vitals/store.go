package vitals

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists readings. Readings are write-once: Put never replaces an existing id.
type Store interface {
	Put(ctx context.Context, r *Reading) error
	Get(ctx context.Context, id string) (*Reading, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Reading, error)
}

// prepare fills the id and timestamp of a new reading.
func prepare(r *Reading) error {
	if r == nil || strings.TrimSpace(r.UserID) == "" {
		return ErrMissingUser
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	return nil
}

// InMemoryStore keeps readings in a map. It backs local development and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	readings map[string]Reading
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		readings: make(map[string]Reading),
	}
}

// Put stores a copy of r.
func (s *InMemoryStore) Put(ctx context.Context, r *Reading) error {
	if err := prepare(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.readings[r.ID]; exists {
		return ErrReadingExists
	}
	s.readings[r.ID] = *r
	return nil
}

// Get returns a copy of the reading with the given id.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.readings[id]
	if !ok {
		return nil, ErrReadingNotFound
	}
	return &r, nil
}

// ListByUser returns the user's readings, newest first.
func (s *InMemoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Reading, error) {
	s.mu.RLock()
	out := make([]*Reading, 0)
	for _, r := range s.readings {
		if r.UserID == userID {
			r := r
			out = append(out, &r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
