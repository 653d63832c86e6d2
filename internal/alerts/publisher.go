package alerts

import (
	"context"
	"fmt"

	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

// Publisher hands crisis alerts off for asynchronous dispatch.
type Publisher interface {
	PublishCrisis(ctx context.Context, alert CrisisAlertV1) error
}

type queueSender interface {
	Send(ctx context.Context, body string) error
}

// QueuePublisher enqueues alerts on a message queue.
type QueuePublisher struct {
	queue  queueSender
	logger *logging.Logger
}

// NewQueuePublisher creates a queue-backed publisher.
func NewQueuePublisher(queue queueSender, logger *logging.Logger) *QueuePublisher {
	if queue == nil {
		panic("alerts: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &QueuePublisher{queue: queue, logger: logger}
}

// PublishCrisis encodes and enqueues the alert.
func (p *QueuePublisher) PublishCrisis(ctx context.Context, alert CrisisAlertV1) error {
	body, err := alert.Encode()
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("alerts: failed to enqueue alert: %w", err)
	}
	p.logger.Info("crisis alert enqueued", "user_id", alert.UserID, "reading_id", alert.ReadingID)
	return nil
}

// LogPublisher records alerts in the log when no queue is configured.
type LogPublisher struct {
	logger *logging.Logger
}

// NewLogPublisher creates a publisher that only logs.
func NewLogPublisher(logger *logging.Logger) *LogPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishCrisis(ctx context.Context, alert CrisisAlertV1) error {
	p.logger.Warn("crisis alert (no queue configured)",
		"user_id", alert.UserID,
		"reading_id", alert.ReadingID,
		"systolic", alert.Systolic,
		"diastolic", alert.Diastolic,
	)
	return nil
}

var (
	_ Publisher = (*QueuePublisher)(nil)
	_ Publisher = (*LogPublisher)(nil)
)
