package vitals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultCacheTTL = 10 * time.Minute

// CachedStore puts a Redis read-through cache in front of another Store. Cache
// failures are logged and never fail the request.
type CachedStore struct {
	inner  Store
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
	tracer trace.Tracer
}

// NewCachedStore wraps inner with a Redis cache.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedStore {
	if inner == nil {
		panic("vitals: inner store cannot be nil")
	}
	if client == nil {
		panic("vitals: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedStore{
		inner:  inner,
		redis:  client,
		ttl:    ttl,
		logger: logger,
		tracer: otel.Tracer("ems.internal.vitals.cache"),
	}
}

// Put writes to the backing store, then primes the cache.
func (s *CachedStore) Put(ctx context.Context, r *Reading) error {
	if err := s.inner.Put(ctx, r); err != nil {
		return err
	}
	s.store(ctx, r)
	return nil
}

// Get serves from Redis when possible.
func (s *CachedStore) Get(ctx context.Context, id string) (*Reading, error) {
	ctx, span := s.tracer.Start(ctx, "vitals.cache.get")
	defer span.End()

	data, err := s.redis.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var r Reading
		jsonErr := json.Unmarshal(data, &r)
		if jsonErr == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &r, nil
		}
		s.logger.Warn("vitals cache entry undecodable", "reading_id", id, "error", jsonErr)
	case !errors.Is(err, redis.Nil):
		span.RecordError(err)
		s.logger.Warn("vitals cache read failed", "reading_id", id, "error", err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	r, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, r)
	return r, nil
}

// ListByUser is not cached.
func (s *CachedStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Reading, error) {
	return s.inner.ListByUser(ctx, userID, limit)
}

func (s *CachedStore) store(ctx context.Context, r *Reading) {
	data, err := json.Marshal(r)
	if err != nil {
		s.logger.Warn("vitals cache encode failed", "reading_id", r.ID, "error", err)
		return
	}
	if err := s.redis.Set(ctx, cacheKey(r.ID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("vitals cache write failed", "reading_id", r.ID, "error", err)
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("vitals:reading:%s", id)
}
