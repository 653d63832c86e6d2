package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDeliveryTTL = 72 * time.Hour

// DeliveryLog remembers which contacts already received an alert, so a message that
// is redelivered after a partial failure only emails the contacts still pending.
type DeliveryLog interface {
	Delivered(ctx context.Context, eventID, contactID string) (bool, error)
	MarkDelivered(ctx context.Context, eventID, contactID string) error
}

func deliveryKey(eventID, contactID string) string {
	return fmt.Sprintf("alerts:delivered:%s:%s", eventID, contactID)
}

// RedisDeliveryLog keeps delivery markers in Redis so every worker replica shares them.
type RedisDeliveryLog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeliveryLog creates a Redis-backed log. Markers expire after ttl, which
// should exceed the queue's message retention.
func NewRedisDeliveryLog(client *redis.Client, ttl time.Duration) *RedisDeliveryLog {
	if client == nil {
		panic("alerts: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultDeliveryTTL
	}
	return &RedisDeliveryLog{client: client, ttl: ttl}
}

func (l *RedisDeliveryLog) Delivered(ctx context.Context, eventID, contactID string) (bool, error) {
	n, err := l.client.Exists(ctx, deliveryKey(eventID, contactID)).Result()
	if err != nil {
		return false, fmt.Errorf("alerts: check delivery: %w", err)
	}
	return n > 0, nil
}

func (l *RedisDeliveryLog) MarkDelivered(ctx context.Context, eventID, contactID string) error {
	if err := l.client.SetNX(ctx, deliveryKey(eventID, contactID), time.Now().UTC().Format(time.RFC3339), l.ttl).Err(); err != nil {
		return fmt.Errorf("alerts: mark delivery: %w", err)
	}
	return nil
}

// MemoryDeliveryLog is the single-process fallback used when Redis is not configured.
type MemoryDeliveryLog struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

func NewMemoryDeliveryLog(ttl time.Duration) *MemoryDeliveryLog {
	if ttl <= 0 {
		ttl = defaultDeliveryTTL
	}
	return &MemoryDeliveryLog{ttl: ttl, now: time.Now, entries: map[string]time.Time{}}
}

func (l *MemoryDeliveryLog) Delivered(_ context.Context, eventID, contactID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	expires, ok := l.entries[deliveryKey(eventID, contactID)]
	return ok && l.now().Before(expires), nil
}

func (l *MemoryDeliveryLog) MarkDelivered(_ context.Context, eventID, contactID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, expires := range l.entries {
		if !now.Before(expires) {
			delete(l.entries, key)
		}
	}
	l.entries[deliveryKey(eventID, contactID)] = now.Add(l.ttl)
	return nil
}

var (
	_ DeliveryLog = (*RedisDeliveryLog)(nil)
	_ DeliveryLog = (*MemoryDeliveryLog)(nil)
)
