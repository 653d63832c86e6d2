package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/wolfman30/ems-vitals-platform/internal/alerts"
	appconfig "github.com/wolfman30/ems-vitals-platform/internal/config"
	"github.com/wolfman30/ems-vitals-platform/internal/contacts"
	"github.com/wolfman30/ems-vitals-platform/internal/notify"
	"github.com/wolfman30/ems-vitals-platform/internal/vitals"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client when REDIS_ADDR is empty")
	}
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logging.Discard(), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	_ = client.Close()

	mr.Close()
	if client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client when redis is unreachable")
	}
}

func TestBuildPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	pool, err := BuildPostgresPool(context.Background(), "", logging.Discard())
	if err != nil || pool != nil {
		t.Fatalf("expected nil pool and no error, got %v %v", pool, err)
	}
}

func TestBuildAuditServiceDisabled(t *testing.T) {
	svc, db, err := BuildAuditService(context.Background(), &appconfig.Config{}, logging.Discard())
	if err != nil || svc != nil || db != nil {
		t.Fatalf("expected audit disabled, got %v %v %v", svc, db, err)
	}
}

func TestBuildVitalsStore(t *testing.T) {
	logger := logging.Discard()

	store, err := BuildVitalsStore(&appconfig.Config{VitalsStore: appconfig.StoreMemory}, Backends{}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*vitals.InMemoryStore); !ok {
		t.Fatalf("expected in-memory store, got %T", store)
	}

	if _, err := BuildVitalsStore(&appconfig.Config{VitalsStore: appconfig.StorePostgres}, Backends{}, logger); err == nil {
		t.Fatalf("expected error for postgres without pool")
	}
	if _, err := BuildVitalsStore(&appconfig.Config{VitalsStore: appconfig.StoreDynamo}, Backends{}, logger); err == nil {
		t.Fatalf("expected error for dynamodb without client")
	}
	if _, err := BuildVitalsStore(&appconfig.Config{VitalsStore: "cassandra"}, Backends{}, logger); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := BuildVitalsStore(nil, Backends{}, logger); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildVitalsStoreWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), false)
	defer client.Close()

	store, err := BuildVitalsStore(&appconfig.Config{}, Backends{Redis: client}, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*vitals.CachedStore); !ok {
		t.Fatalf("expected cached store, got %T", store)
	}
}

func TestBuildContactsRepositoryDefaultsToMemory(t *testing.T) {
	if _, ok := BuildContactsRepository(nil).(*contacts.InMemoryRepository); !ok {
		t.Fatalf("expected in-memory repository without a pool")
	}
}

func TestBuildAlertPublisherWithoutQueue(t *testing.T) {
	pub := BuildAlertPublisher(&appconfig.Config{}, nil, logging.Discard())
	if _, ok := pub.(*alerts.LogPublisher); !ok {
		t.Fatalf("expected log publisher, got %T", pub)
	}
}

func TestBuildEmailSenderFallsBackToStub(t *testing.T) {
	tests := []*appconfig.Config{
		nil,
		{EmailProvider: "stub"},
		{EmailProvider: "sendgrid"},
		{EmailProvider: "ses"},
	}
	for _, cfg := range tests {
		if _, ok := BuildEmailSender(cfg, nil, logging.Discard()).(*notify.StubEmailSender); !ok {
			t.Fatalf("expected stub sender for %+v", cfg)
		}
	}
}

func TestBuildEmailSenderSendGrid(t *testing.T) {
	sender := BuildEmailSender(&appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "SG.test"}, nil, logging.Discard())
	if _, ok := sender.(*notify.SendGridSender); !ok {
		t.Fatalf("expected sendgrid sender, got %T", sender)
	}
}
