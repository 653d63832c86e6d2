package bootstrap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/ems-vitals-platform/internal/config"
	"github.com/wolfman30/ems-vitals-platform/internal/contacts"
	"github.com/wolfman30/ems-vitals-platform/internal/vitals"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

// Backends holds the optional clients a store can be built on.
type Backends struct {
	Postgres *pgxpool.Pool
	Dynamo   *dynamodb.Client
	Redis    *redis.Client
}

// BuildVitalsStore selects the reading store named by cfg.VitalsStore and puts the
// Redis cache in front of it when Redis is available.
func BuildVitalsStore(cfg *appconfig.Config, b Backends, logger *logging.Logger) (vitals.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var store vitals.Store
	switch cfg.VitalsStore {
	case "", appconfig.StoreMemory:
		store = vitals.NewInMemoryStore()
	case appconfig.StorePostgres:
		if b.Postgres == nil {
			return nil, fmt.Errorf("bootstrap: VITALS_STORE=postgres requires DATABASE_URL")
		}
		store = vitals.NewPostgresStore(b.Postgres)
	case appconfig.StoreDynamo:
		if b.Dynamo == nil {
			return nil, fmt.Errorf("bootstrap: VITALS_STORE=dynamodb requires a DynamoDB client")
		}
		store = vitals.NewDynamoStore(b.Dynamo, cfg.VitalsTable)
	default:
		return nil, fmt.Errorf("bootstrap: unknown VITALS_STORE %q", cfg.VitalsStore)
	}
	logger.Info("vitals store selected", "backend", cfg.VitalsStore, "cached", b.Redis != nil)

	if b.Redis != nil {
		store = vitals.NewCachedStore(store, b.Redis, cfg.CacheTTL, logger)
	}
	return store, nil
}

// BuildContactsRepository uses Postgres when a pool is available.
func BuildContactsRepository(pool *pgxpool.Pool) contacts.Repository {
	if pool == nil {
		return contacts.NewInMemoryRepository()
	}
	return contacts.NewPostgresRepository(pool)
}
