// Package contacts stores the emergency contacts notified when a user records a
// crisis-level reading.
package contacts

import (
	"strings"
	"time"
)

// Contact is a person to notify on behalf of a user.
type Contact struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Relationship string    `json:"relationship,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateContactRequest is the request body for adding a contact.
type CreateContactRequest struct {
	UserID       string `json:"-"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Validate validates the create contact request
func (r *CreateContactRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingUserID
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Phone) == "" {
		return ErrMissingContact
	}
	if email := strings.TrimSpace(r.Email); email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
