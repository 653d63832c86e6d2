package contacts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for contact storage
type Repository interface {
	Create(ctx context.Context, req *CreateContactRequest) (*Contact, error)
	ListByUser(ctx context.Context, userID string) ([]*Contact, error)
}

// InMemoryRepository is a Repository using in-memory storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	contacts map[string]*Contact
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		contacts: make(map[string]*Contact),
	}
}

// Create stores a new contact in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateContactRequest) (*Contact, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	contact := &Contact{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Relationship: strings.TrimSpace(req.Relationship),
		CreatedAt:    time.Now().UTC(),
	}

	r.mu.Lock()
	r.contacts[contact.ID] = contact
	r.mu.Unlock()

	return contact, nil
}

// ListByUser returns the user's contacts in creation order.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]*Contact, error) {
	r.mu.RLock()
	out := make([]*Contact, 0)
	for _, c := range r.contacts {
		if c.UserID == userID {
			copied := *c
			out = append(out, &copied)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
