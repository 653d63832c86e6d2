package vitals

import "errors"

var (
	// ErrInvalidReading is returned when submitted vitals are missing or implausible.
	ErrInvalidReading = errors.New("vitals: invalid reading")

	// ErrReadingNotFound is returned when a reading does not exist.
	ErrReadingNotFound = errors.New("vitals: reading not found")

	// ErrReadingExists is returned when a reading id is already stored.
	ErrReadingExists = errors.New("vitals: reading already exists")

	// ErrAuditDisabled is returned when no audit trail is configured.
	ErrAuditDisabled = errors.New("vitals: audit trail is not configured")

	// ErrMissingUser is returned when a reading has no owner.
	ErrMissingUser = errors.New("vitals: user id is required")
)
