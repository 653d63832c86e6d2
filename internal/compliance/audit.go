// Package compliance keeps an append-only audit trail of access to health records.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrMissingUser is returned when an audit query is not scoped to a user.
var ErrMissingUser = errors.New("compliance: user id is required")

// AuditEventType represents the type of audit event.
type AuditEventType string

const (
	// EventReadingRecorded is logged when a user stores a vitals reading.
	EventReadingRecorded AuditEventType = "vitals.recorded"
	// EventCrisisDetected is logged when a stored reading is in the crisis band.
	EventCrisisDetected AuditEventType = "vitals.crisis_detected"
	// EventHistoryExported is logged when a user's history is exported.
	EventHistoryExported AuditEventType = "vitals.exported"
)

// AuditEvent represents an immutable audit record.
type AuditEvent struct {
	ID        string          `json:"id"`
	EventType AuditEventType  `json:"event_type"`
	UserID    string          `json:"user_id"`
	ReadingID string          `json:"reading_id,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditDetails contains event-specific details.
type AuditDetails struct {
	Category  string `json:"category,omitempty"`
	Systolic  int    `json:"systolic,omitempty"`
	Diastolic int    `json:"diastolic,omitempty"`

	// For exports
	ObjectKey string `json:"object_key,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// AuditService writes audit events to Postgres.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service.
func NewAuditService(db *sql.DB) *AuditService {
	if db == nil {
		panic("compliance: db cannot be nil")
	}
	return &AuditService{db: db}
}

// LogEvent records an audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO vitals_audit_events (
			id, event_type, user_id, reading_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.UserID,
		nullString(event.ReadingID),
		nullString(string(event.Details)),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}

	return nil
}

// LogReadingRecorded logs a stored reading and its category.
func (s *AuditService) LogReadingRecorded(ctx context.Context, userID, readingID, category string) error {
	detailsJSON, _ := json.Marshal(AuditDetails{Category: category})
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventReadingRecorded,
		UserID:    userID,
		ReadingID: readingID,
		Details:   detailsJSON,
	})
}

// LogCrisisDetected logs a crisis-level reading.
func (s *AuditService) LogCrisisDetected(ctx context.Context, userID, readingID string, systolic, diastolic int) error {
	detailsJSON, _ := json.Marshal(AuditDetails{
		Category:  "hypertensive-crisis",
		Systolic:  systolic,
		Diastolic: diastolic,
	})
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventCrisisDetected,
		UserID:    userID,
		ReadingID: readingID,
		Details:   detailsJSON,
	})
}

// LogHistoryExported logs an export of a user's history to object storage.
func (s *AuditService) LogHistoryExported(ctx context.Context, userID, objectKey string, count int) error {
	detailsJSON, _ := json.Marshal(AuditDetails{ObjectKey: objectKey, Count: count})
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventHistoryExported,
		UserID:    userID,
		Details:   detailsJSON,
	})
}

// QueryEvents retrieves audit events with filters.
// UserID is required so a query never spans users.
func (s *AuditService) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	if filter.UserID == "" {
		return nil, ErrMissingUser
	}
	query := `
		SELECT id, event_type, user_id, reading_id, details, created_at
		FROM vitals_audit_events
		WHERE user_id = $1
	`
	args := []interface{}{filter.UserID}
	argIdx := 2

	if filter.ReadingID != "" {
		query += fmt.Sprintf(" AND reading_id = $%d", argIdx)
		args = append(args, filter.ReadingID)
		argIdx++
	}
	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := []AuditEvent{}
	for rows.Next() {
		var e AuditEvent
		var readingID sql.NullString
		var details []byte
		if err := rows.Scan(&e.ID, &e.EventType, &e.UserID, &readingID, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.ReadingID = readingID.String
		e.Details = details
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("compliance: failed to iterate audit events: %w", err)
	}

	return events, nil
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	UserID    string
	ReadingID string
	EventType AuditEventType
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
