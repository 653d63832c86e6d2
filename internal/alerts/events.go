// Package alerts publishes crisis-level readings to a queue and dispatches them to
// the user's emergency contacts.
package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventTypeCrisisAlertV1 tags CrisisAlertV1 envelopes on the queue.
const EventTypeCrisisAlertV1 = "vitals.crisis_alert.v1"

// CrisisAlertV1 is emitted when a stored reading falls in the hypertensive crisis band.
type CrisisAlertV1 struct {
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	ReadingID   string    `json:"reading_id"`
	Category    string    `json:"category"`
	RiskBand    string    `json:"risk_band"`
	Systolic    int       `json:"systolic"`
	Diastolic   int       `json:"diastolic"`
	HeartRate   *int      `json:"heart_rate,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Encode wraps the alert in a typed envelope, filling the event id and time if unset.
func (a CrisisAlertV1) Encode() (string, error) {
	if a.EventID == "" {
		a.EventID = uuid.NewString()
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("alerts: marshal alert: %w", err)
	}
	body, err := json.Marshal(envelope{Type: EventTypeCrisisAlertV1, Data: data})
	if err != nil {
		return "", fmt.Errorf("alerts: marshal envelope: %w", err)
	}
	return string(body), nil
}

// DecodeCrisisAlert parses a queue message body produced by Encode.
func DecodeCrisisAlert(body string) (CrisisAlertV1, error) {
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return CrisisAlertV1{}, fmt.Errorf("alerts: decode envelope: %w", err)
	}
	if env.Type != EventTypeCrisisAlertV1 {
		return CrisisAlertV1{}, fmt.Errorf("alerts: unexpected event type %q", env.Type)
	}
	var alert CrisisAlertV1
	if err := json.Unmarshal(env.Data, &alert); err != nil {
		return CrisisAlertV1{}, fmt.Errorf("alerts: decode alert: %w", err)
	}
	return alert, nil
}
