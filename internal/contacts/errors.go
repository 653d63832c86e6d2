package contacts

import "errors"

var (
	// ErrMissingUserID is returned when the owning user is unknown
	ErrMissingUserID = errors.New("user id is required")

	// ErrInvalidName is returned when the name is invalid
	ErrInvalidName = errors.New("name is required")

	// ErrMissingContact is returned when both email and phone are missing
	ErrMissingContact = errors.New("either email or phone is required")

	// ErrInvalidEmail is returned when the email address is malformed
	ErrInvalidEmail = errors.New("email address is invalid")
)
