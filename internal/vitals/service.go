package vitals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/ems-vitals-platform/internal/alerts"
	"github.com/wolfman30/ems-vitals-platform/internal/archive"
	"github.com/wolfman30/ems-vitals-platform/internal/observability/metrics"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

var serviceTracer = otel.Tracer("ems.internal.vitals.service")

const (
	defaultListLimit    = 50
	maxListLimit        = 500
	defaultHistoryLimit = 1000

	sourceAnalysis = "analysis"
	sourceRecord   = "record"
	sourceRisk     = "risk"
)

// Auditor records access to health data. compliance.AuditService implements it.
type Auditor interface {
	LogReadingRecorded(ctx context.Context, userID, readingID, category string) error
	LogCrisisDetected(ctx context.Context, userID, readingID string, systolic, diastolic int) error
	LogHistoryExported(ctx context.Context, userID, objectKey string, count int) error
}

// Exporter writes a history export and returns its object key.
type Exporter interface {
	ExportHistory(ctx context.Context, export archive.HistoryExport) (string, error)
}

// AssessedReading pairs a stored reading with its freshly computed assessment.
type AssessedReading struct {
	Reading    *Reading   `json:"reading"`
	Assessment Assessment `json:"assessment"`
}

// HistorySummary is the dashboard view of a user's history.
type HistorySummary struct {
	Summary
	LatestAssessment *Assessment `json:"latestAssessment,omitempty"`
}

// Service records readings and derives assessments from them.
type Service struct {
	store        Store
	alerts       alerts.Publisher
	auditor      Auditor
	auditTrail   AuditTrail
	exporter     Exporter
	metrics      *metrics.VitalsMetrics
	logger       *logging.Logger
	listLimit    int
	historyLimit int
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithAlerts publishes crisis readings.
func WithAlerts(p alerts.Publisher) ServiceOption {
	return func(s *Service) {
		s.alerts = p
	}
}

// WithAuditor records audit events for stored readings and exports.
func WithAuditor(a Auditor) ServiceOption {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithExporter enables history export.
func WithExporter(e Exporter) ServiceOption {
	return func(s *Service) {
		s.exporter = e
	}
}

// WithMetrics records assessment and store metrics.
func WithMetrics(m *metrics.VitalsMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithListLimit sets the default page size for listings.
func WithListLimit(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 && limit <= maxListLimit {
			s.listLimit = limit
		}
	}
}

// NewService wires a Service around a store.
func NewService(store Store, logger *logging.Logger, opts ...ServiceOption) *Service {
	if store == nil {
		panic("vitals: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		store:        store,
		logger:       logger,
		listLimit:    defaultListLimit,
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze assesses submitted vitals without storing them.
func (s *Service) Analyze(ctx context.Context, in MetricsInput) (Assessment, error) {
	_, span := serviceTracer.Start(ctx, "vitals.analyze")
	defer span.End()

	reading, err := in.ToReading("")
	if err != nil {
		s.metrics.ObserveRejected(sourceAnalysis)
		span.RecordError(err)
		return Assessment{}, err
	}

	a := Assess(reading)
	s.metrics.ObserveAssessment(string(a.Category), string(a.Severity), sourceAnalysis)
	span.SetAttributes(attribute.String("vitals.category", string(a.Category)))
	return a, nil
}

// Risk scores submitted vitals without storing them.
func (s *Service) Risk(ctx context.Context, in MetricsInput) (RiskScore, error) {
	reading, err := in.ToReading("")
	if err != nil {
		s.metrics.ObserveRejected(sourceRisk)
		return RiskScore{}, err
	}
	return ScoreRisk(reading), nil
}

// Record stores a reading for userID and returns it with its assessment. A crisis
// reading is audited and published as an alert; failures there are logged but do not
// fail the request since the reading is already stored.
func (s *Service) Record(ctx context.Context, userID string, in MetricsInput) (*AssessedReading, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}

	ctx, span := serviceTracer.Start(ctx, "vitals.record")
	defer span.End()
	span.SetAttributes(attribute.String("ems.user_id", userID))

	reading, err := in.ToReading(userID)
	if err != nil {
		s.metrics.ObserveRejected(sourceRecord)
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()
	err = s.store.Put(ctx, &reading)
	s.metrics.ObserveStore("put", err, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store put failed")
		return nil, fmt.Errorf("vitals: store reading: %w", err)
	}

	a := Assess(reading)
	s.metrics.ObserveAssessment(string(a.Category), string(a.Severity), sourceRecord)
	span.SetAttributes(
		attribute.String("vitals.reading_id", reading.ID),
		attribute.String("vitals.category", string(a.Category)),
	)

	if s.auditor != nil {
		if err := s.auditor.LogReadingRecorded(ctx, userID, reading.ID, string(a.Category)); err != nil {
			s.logger.Warn("failed to audit reading", "error", err, "reading_id", reading.ID)
		}
	}
	if a.Category == CategoryCrisis {
		s.handleCrisis(ctx, &reading)
	}

	s.logger.Info("vitals reading recorded",
		"reading_id", reading.ID,
		"user_id", userID,
		"category", a.Category,
		"severity", a.Severity,
	)
	return &AssessedReading{Reading: &reading, Assessment: a}, nil
}

func (s *Service) handleCrisis(ctx context.Context, r *Reading) {
	if s.auditor != nil {
		if err := s.auditor.LogCrisisDetected(ctx, r.UserID, r.ID, r.Systolic, r.Diastolic); err != nil {
			s.logger.Warn("failed to audit crisis", "error", err, "reading_id", r.ID)
		}
	}
	if s.alerts == nil {
		return
	}

	err := s.alerts.PublishCrisis(ctx, alerts.CrisisAlertV1{
		UserID:      r.UserID,
		ReadingID:   r.ID,
		Category:    string(CategoryCrisis),
		RiskBand:    RiskBandLabel(CategoryCrisis),
		Systolic:    r.Systolic,
		Diastolic:   r.Diastolic,
		HeartRate:   r.HeartRate,
		Temperature: r.Temperature,
		OccurredAt:  r.Timestamp,
	})
	s.metrics.ObserveAlert("published", err)
	if err != nil {
		s.logger.Error("failed to publish crisis alert", "error", err, "reading_id", r.ID, "user_id", r.UserID)
	}
}

// Get returns a reading owned by userID. Readings owned by someone else are reported
// as not found.
func (s *Service) Get(ctx context.Context, userID, id string) (*AssessedReading, error) {
	ctx, span := serviceTracer.Start(ctx, "vitals.get")
	defer span.End()

	start := time.Now()
	r, err := s.store.Get(ctx, id)
	s.metrics.ObserveStore("get", ignoreNotFound(err), time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, ErrReadingNotFound) {
			span.RecordError(err)
		}
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrReadingNotFound
	}
	return &AssessedReading{Reading: r, Assessment: Assess(*r)}, nil
}

// List returns the user's most recent readings with assessments.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]AssessedReading, error) {
	if limit <= 0 {
		limit = s.listLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	readings, err := s.list(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]AssessedReading, 0, len(readings))
	for _, r := range readings {
		out = append(out, AssessedReading{Reading: r, Assessment: Assess(*r)})
	}
	return out, nil
}

// Summary aggregates the user's history.
func (s *Service) Summary(ctx context.Context, userID string) (HistorySummary, error) {
	readings, err := s.list(ctx, userID, s.historyLimit)
	if err != nil {
		return HistorySummary{}, err
	}
	hs := HistorySummary{Summary: Summarize(readings)}
	if hs.Latest != nil {
		a := Assess(*hs.Latest)
		hs.LatestAssessment = &a
	}
	return hs, nil
}

// Export writes the user's history to object storage and returns the object key.
// Free-text notes are redacted of contact details and identifiers first.
func (s *Service) Export(ctx context.Context, userID string) (string, error) {
	if s.exporter == nil {
		return "", archive.ErrDisabled
	}

	ctx, span := serviceTracer.Start(ctx, "vitals.export")
	defer span.End()

	readings, err := s.list(ctx, userID, s.historyLimit)
	if err != nil {
		return "", err
	}
	records := make([]AssessedReading, 0, len(readings))
	for _, r := range readings {
		scrubbed := *r
		scrubbed.Notes = archive.RedactNotes(r.Notes)
		records = append(records, AssessedReading{Reading: &scrubbed, Assessment: Assess(*r)})
	}

	key, err := s.exporter.ExportHistory(ctx, archive.HistoryExport{
		UserID:     userID,
		ExportedAt: time.Now().UTC(),
		Count:      len(records),
		Records:    records,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if s.auditor != nil {
		if err := s.auditor.LogHistoryExported(ctx, userID, key, len(records)); err != nil {
			s.logger.Warn("failed to audit export", "error", err, "user_id", userID)
		}
	}
	return key, nil
}

func (s *Service) list(ctx context.Context, userID string, limit int) ([]*Reading, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	start := time.Now()
	readings, err := s.store.ListByUser(ctx, userID, limit)
	s.metrics.ObserveStore("list", err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("vitals: list readings: %w", err)
	}
	return readings, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrReadingNotFound) {
		return nil
	}
	return err
}
