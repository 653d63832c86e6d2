package vitals

import (
	"context"
	"strings"

	"github.com/wolfman30/ems-vitals-platform/internal/compliance"
)

const maxAuditLimit = 200

// AuditTrail reads back audit events. compliance.AuditService implements it.
type AuditTrail interface {
	QueryEvents(ctx context.Context, filter compliance.AuditFilter) ([]compliance.AuditEvent, error)
}

// AuditQuery narrows a user's audit trail.
type AuditQuery struct {
	EventType compliance.AuditEventType
	ReadingID string
	Limit     int
}

// WithAuditTrail lets users read their own audit events.
func WithAuditTrail(t AuditTrail) ServiceOption {
	return func(s *Service) {
		s.auditTrail = t
	}
}

// AuditTrail returns the user's own audit events, newest first. The filter is always
// scoped to userID.
func (s *Service) AuditTrail(ctx context.Context, userID string, q AuditQuery) ([]compliance.AuditEvent, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	if s.auditTrail == nil {
		return nil, ErrAuditDisabled
	}

	ctx, span := serviceTracer.Start(ctx, "vitals.audit_trail")
	defer span.End()

	limit := q.Limit
	if limit <= 0 {
		limit = s.listLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	events, err := s.auditTrail.QueryEvents(ctx, compliance.AuditFilter{
		UserID:    userID,
		ReadingID: q.ReadingID,
		EventType: q.EventType,
		Limit:     limit,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if events == nil {
		events = []compliance.AuditEvent{}
	}
	return events, nil
}
