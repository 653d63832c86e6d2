package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/ems-vitals-platform/internal/contacts"
	"github.com/wolfman30/ems-vitals-platform/internal/notify"
	"github.com/wolfman30/ems-vitals-platform/internal/observability/metrics"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

const (
	receiveErrorBackoff = 2 * time.Second
	crisisEmailCategory = "crisis-alert"
)

type queueReceiver interface {
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// ContactLister loads the contacts to notify for a user.
type ContactLister interface {
	ListByUser(ctx context.Context, userID string) ([]*contacts.Contact, error)
}

// Dispatcher drains the alert queue and emails each user's emergency contacts. A
// message is deleted only once every contact with an email address was notified;
// contacts already reached are recorded in the DeliveryLog and skipped on redelivery.
type Dispatcher struct {
	queue       queueReceiver
	contacts    ContactLister
	email       notify.EmailSender
	deliveries  DeliveryLog
	metrics     *metrics.VitalsMetrics
	logger      *logging.Logger
	batchSize   int
	waitSeconds int
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBatchSize sets how many messages are received per poll.
func WithBatchSize(size int) DispatcherOption {
	return func(d *Dispatcher) {
		if size > 0 && size <= 10 {
			d.batchSize = size
		}
	}
}

// WithWaitSeconds sets the long-poll wait.
func WithWaitSeconds(seconds int) DispatcherOption {
	return func(d *Dispatcher) {
		if seconds >= 0 && seconds <= 20 {
			d.waitSeconds = seconds
		}
	}
}

// WithMetrics records dispatch outcomes.
func WithMetrics(m *metrics.VitalsMetrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithDeliveryLog replaces the default in-process delivery log.
func WithDeliveryLog(l DeliveryLog) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.deliveries = l
		}
	}
}

// NewDispatcher wires a dispatcher.
func NewDispatcher(queue queueReceiver, lister ContactLister, email notify.EmailSender, logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if queue == nil {
		panic("alerts: queue cannot be nil")
	}
	if lister == nil {
		panic("alerts: contact lister cannot be nil")
	}
	if email == nil {
		panic("alerts: email sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{
		queue:       queue,
		contacts:    lister,
		email:       email,
		deliveries:  NewMemoryDeliveryLog(defaultDeliveryTTL),
		logger:      logger,
		batchSize:   5,
		waitSeconds: 20,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("alert dispatcher started", "batch_size", d.batchSize, "wait_seconds", d.waitSeconds)
	for {
		if ctx.Err() != nil {
			d.logger.Info("alert dispatcher stopped")
			return nil
		}
		if _, err := d.ProcessBatch(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			d.logger.Error("alert receive failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(receiveErrorBackoff):
			}
		}
	}
}

// ProcessBatch receives one batch and dispatches it. It returns the number of
// messages handled successfully.
func (d *Dispatcher) ProcessBatch(ctx context.Context) (int, error) {
	messages, err := d.queue.Receive(ctx, d.batchSize, d.waitSeconds)
	if err != nil {
		return 0, err
	}

	handled := 0
	for _, msg := range messages {
		alert, err := DecodeCrisisAlert(msg.Body)
		if err != nil {
			// Poison message: it can never succeed, so drop it.
			d.logger.Error("dropping undecodable alert", "message_id", msg.ID, "error", err)
			if delErr := d.queue.Delete(ctx, msg.ReceiptHandle); delErr != nil {
				d.logger.Error("failed to delete alert message", "message_id", msg.ID, "error", delErr)
			}
			continue
		}

		err = d.Dispatch(ctx, alert)
		d.metrics.ObserveAlert("dispatched", err)
		if err != nil {
			d.logger.Error("alert dispatch failed; leaving for redelivery", "message_id", msg.ID, "reading_id", alert.ReadingID, "error", err)
			continue
		}
		if err := d.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
			d.logger.Error("failed to delete alert message", "message_id", msg.ID, "error", err)
			continue
		}
		handled++
	}
	return handled, nil
}

// Dispatch notifies every emailable contact of the alert's user.
func (d *Dispatcher) Dispatch(ctx context.Context, alert CrisisAlertV1) error {
	list, err := d.contacts.ListByUser(ctx, alert.UserID)
	if err != nil {
		return fmt.Errorf("alerts: load contacts: %w", err)
	}
	if len(list) == 0 {
		d.logger.Warn("crisis alert has no emergency contacts", "user_id", alert.UserID, "reading_id", alert.ReadingID)
		return nil
	}

	var errs []error
	for _, c := range list {
		if strings.TrimSpace(c.Email) == "" {
			d.logger.Info("skipping contact without email", "contact_id", c.ID)
			continue
		}
		if d.alreadyDelivered(ctx, alert.EventID, c.ID) {
			d.logger.Info("contact already notified for alert", "event_id", alert.EventID, "contact_id", c.ID)
			continue
		}
		if err := d.email.Send(ctx, ComposeCrisisEmail(c, alert)); err != nil {
			errs = append(errs, fmt.Errorf("contact %s: %w", c.ID, err))
			continue
		}
		if alert.EventID != "" {
			if err := d.deliveries.MarkDelivered(ctx, alert.EventID, c.ID); err != nil {
				d.logger.Warn("failed to record alert delivery", "event_id", alert.EventID, "contact_id", c.ID, "error", err)
			}
		}
	}
	return errors.Join(errs...)
}

// alreadyDelivered errs toward sending: a lookup failure is treated as not delivered.
func (d *Dispatcher) alreadyDelivered(ctx context.Context, eventID, contactID string) bool {
	if eventID == "" {
		return false
	}
	done, err := d.deliveries.Delivered(ctx, eventID, contactID)
	if err != nil {
		d.logger.Warn("delivery log lookup failed", "event_id", eventID, "contact_id", contactID, "error", err)
		return false
	}
	return done
}

// ComposeCrisisEmail renders the email sent to one contact.
func ComposeCrisisEmail(c *contacts.Contact, alert CrisisAlertV1) notify.EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", c.Name)
	fmt.Fprintf(&b, "You are listed as an emergency contact. A blood pressure reading of %d/%d mmHg (%s) was just recorded",
		alert.Systolic, alert.Diastolic, alert.RiskBand)
	fmt.Fprintf(&b, " at %s.\n", alert.OccurredAt.UTC().Format(time.RFC1123))
	if alert.HeartRate != nil {
		fmt.Fprintf(&b, "Heart rate: %d bpm\n", *alert.HeartRate)
	}
	if alert.Temperature != nil {
		fmt.Fprintf(&b, "Temperature: %.1f°F\n", *alert.Temperature)
	}
	b.WriteString("\nThis level can be a medical emergency. Please check on them right away and call emergency services if needed.\n")

	return notify.EmailMessage{
		To:       c.Email,
		ToName:   c.Name,
		Subject:  "Urgent: hypertensive crisis reading recorded",
		Body:     b.String(),
		Category: crisisEmailCategory,
	}
}
