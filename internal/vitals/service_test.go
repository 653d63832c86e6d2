package vitals

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/ems-vitals-platform/internal/alerts"
	"github.com/wolfman30/ems-vitals-platform/internal/archive"
	"github.com/wolfman30/ems-vitals-platform/internal/observability/metrics"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

type recordingPublisher struct {
	alerts []alerts.CrisisAlertV1
	err    error
}

func (p *recordingPublisher) PublishCrisis(ctx context.Context, alert alerts.CrisisAlertV1) error {
	p.alerts = append(p.alerts, alert)
	return p.err
}

type recordingAuditor struct {
	recorded []string
	crises   []string
	exports  []string
	err      error
}

func (a *recordingAuditor) LogReadingRecorded(ctx context.Context, userID, readingID, category string) error {
	a.recorded = append(a.recorded, category)
	return a.err
}

func (a *recordingAuditor) LogCrisisDetected(ctx context.Context, userID, readingID string, systolic, diastolic int) error {
	a.crises = append(a.crises, readingID)
	return a.err
}

func (a *recordingAuditor) LogHistoryExported(ctx context.Context, userID, objectKey string, count int) error {
	a.exports = append(a.exports, objectKey)
	return a.err
}

type recordingExporter struct {
	export archive.HistoryExport
	err    error
}

func (e *recordingExporter) ExportHistory(ctx context.Context, export archive.HistoryExport) (string, error) {
	e.export = export
	if e.err != nil {
		return "", e.err
	}
	return archive.ExportKey(export.UserID, export.ExportedAt), nil
}

type failingStore struct {
	*InMemoryStore
	err error
}

func (s failingStore) Put(ctx context.Context, r *Reading) error { return s.err }

func (s failingStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Reading, error) {
	return nil, s.err
}

func input(systolic, diastolic float64) MetricsInput {
	return MetricsInput{Systolic: floatPtr(systolic), Diastolic: floatPtr(diastolic)}
}

func TestServiceAnalyze(t *testing.T) {
	svc := NewService(NewInMemoryStore(), logging.Discard(), WithMetrics(metrics.NewVitalsMetrics(prometheus.NewRegistry())))

	a, err := svc.Analyze(context.Background(), input(140, 70))
	require.NoError(t, err)
	assert.Equal(t, CategoryHigh, a.Category)
	assert.Equal(t, "Stage 2 Hypertension", a.RiskBand)

	_, err = svc.Analyze(context.Background(), MetricsInput{Systolic: floatPtr(120)})
	assert.ErrorIs(t, err, ErrInvalidReading)
}

func TestServiceRecordNormal(t *testing.T) {
	store := NewInMemoryStore()
	pub := &recordingPublisher{}
	auditor := &recordingAuditor{}
	svc := NewService(store, logging.Discard(), WithAlerts(pub), WithAuditor(auditor))

	rec, err := svc.Record(context.Background(), "user-1", input(118, 76))
	require.NoError(t, err)
	assert.Equal(t, CategoryNormal, rec.Assessment.Category)
	assert.NotEmpty(t, rec.Reading.ID)
	assert.Equal(t, "user-1", rec.Reading.UserID)

	stored, err := store.Get(context.Background(), rec.Reading.ID)
	require.NoError(t, err)
	assert.Equal(t, 118, stored.Systolic)

	assert.Empty(t, pub.alerts)
	assert.Equal(t, []string{"normal"}, auditor.recorded)
	assert.Empty(t, auditor.crises)
}

func TestServiceRecordCrisisPublishesAlert(t *testing.T) {
	pub := &recordingPublisher{}
	auditor := &recordingAuditor{}
	svc := NewService(NewInMemoryStore(), logging.Discard(), WithAlerts(pub), WithAuditor(auditor))

	in := input(185, 110)
	in.HeartRate = floatPtr(115)
	rec, err := svc.Record(context.Background(), "user-1", in)
	require.NoError(t, err)
	assert.Equal(t, CategoryCrisis, rec.Assessment.Category)

	require.Len(t, pub.alerts, 1)
	alert := pub.alerts[0]
	assert.Equal(t, rec.Reading.ID, alert.ReadingID)
	assert.Equal(t, "user-1", alert.UserID)
	assert.Equal(t, 185, alert.Systolic)
	assert.Equal(t, "Hypertensive Crisis", alert.RiskBand)
	require.NotNil(t, alert.HeartRate)
	assert.Equal(t, 115, *alert.HeartRate)
	assert.Equal(t, []string{rec.Reading.ID}, auditor.crises)
}

func TestServiceRecordSurvivesSideEffectFailures(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("queue down")}
	auditor := &recordingAuditor{err: errors.New("db down")}
	svc := NewService(NewInMemoryStore(), logging.Discard(), WithAlerts(pub), WithAuditor(auditor))

	rec, err := svc.Record(context.Background(), "user-1", input(190, 125))
	require.NoError(t, err)
	assert.Equal(t, CategoryCrisis, rec.Assessment.Category)
	assert.Len(t, pub.alerts, 1)
}

func TestServiceRecordErrors(t *testing.T) {
	svc := NewService(NewInMemoryStore(), logging.Discard())

	_, err := svc.Record(context.Background(), "", input(120, 80))
	assert.ErrorIs(t, err, ErrMissingUser)

	_, err = svc.Record(context.Background(), "user-1", input(500, 80))
	assert.ErrorIs(t, err, ErrInvalidReading)

	broken := NewService(failingStore{InMemoryStore: NewInMemoryStore(), err: errors.New("disk full")}, logging.Discard())
	_, err = broken.Record(context.Background(), "user-1", input(120, 80))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidReading)
}

func TestServiceGetEnforcesOwner(t *testing.T) {
	svc := NewService(NewInMemoryStore(), logging.Discard())
	rec, err := svc.Record(context.Background(), "user-1", input(132, 70))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "user-1", rec.Reading.ID)
	require.NoError(t, err)
	assert.Equal(t, CategoryElevated, got.Assessment.Category)

	_, err = svc.Get(context.Background(), "user-2", rec.Reading.ID)
	assert.ErrorIs(t, err, ErrReadingNotFound)

	_, err = svc.Get(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrReadingNotFound)
}

func TestServiceListAndSummary(t *testing.T) {
	svc := NewService(NewInMemoryStore(), logging.Discard(), WithListLimit(2))
	ctx := context.Background()
	for _, in := range []MetricsInput{input(118, 76), input(145, 92), input(185, 100)} {
		_, err := svc.Record(ctx, "user-1", in)
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = svc.List(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	summary, err := svc.Summary(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, CategoryCrisis, summary.WorstCategory)
	require.NotNil(t, summary.LatestAssessment)
	require.NotNil(t, summary.LatestRisk)
	assert.Equal(t, ScoreRisk(*summary.Latest), *summary.LatestRisk)

	empty, err := svc.Summary(ctx, "user-2")
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Nil(t, empty.LatestAssessment)
	assert.Nil(t, empty.LatestRisk)

	_, err = svc.List(ctx, "", 10)
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestServiceRisk(t *testing.T) {
	svc := NewService(NewInMemoryStore(), logging.Discard())
	score, err := svc.Risk(context.Background(), input(185, 100))
	require.NoError(t, err)
	assert.Equal(t, RiskHigh, score.Level)

	_, err = svc.Risk(context.Background(), MetricsInput{})
	assert.ErrorIs(t, err, ErrInvalidReading)
}

func TestServiceExport(t *testing.T) {
	exporter := &recordingExporter{}
	auditor := &recordingAuditor{}
	svc := NewService(NewInMemoryStore(), logging.Discard(), WithExporter(exporter), WithAuditor(auditor))
	ctx := context.Background()

	in := input(120, 78)
	in.Notes = "called dr at 330-333-2654"
	_, err := svc.Record(ctx, "user-1", in)
	require.NoError(t, err)

	key, err := svc.Export(ctx, "user-1")
	require.NoError(t, err)
	assert.Contains(t, key, "vitals/v1/users/"+archive.HashUserID("user-1")+"/")
	assert.Equal(t, 1, exporter.export.Count)

	records, ok := exporter.export.Records.([]AssessedReading)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.NotContains(t, records[0].Reading.Notes, "333-2654")
	assert.Equal(t, []string{key}, auditor.exports)
}

func TestServiceExportDisabled(t *testing.T) {
	svc := NewService(NewInMemoryStore(), logging.Discard())
	_, err := svc.Export(context.Background(), "user-1")
	assert.ErrorIs(t, err, archive.ErrDisabled)
}
