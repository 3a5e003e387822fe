package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	cloudaws "github.com/vladislavdragonenkov/order-service/internal/cloud/aws"
	"github.com/vladislavdragonenkov/order-service/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/order-service/internal/health"
	"github.com/vladislavdragonenkov/order-service/internal/storage/dynamodb"
	"github.com/vladislavdragonenkov/order-service/internal/storage/memory"
	"github.com/vladislavdragonenkov/order-service/internal/storage/postgres"
	"github.com/vladislavdragonenkov/order-service/internal/storage/sqlite"
)

// storageDeps — репозитории выбранного драйвера.
type storageDeps struct {
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	// checker nil для in-memory хранилища
	checker healthcheck.Checker
	closeFn func() error
}

func (s *storageDeps) close(logger *log.Entry) {
	if s == nil || s.closeFn == nil {
		return
	}
	if err := s.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

// initStorage открывает хранилище по cfg.StorageDriver.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageDeps, error) {
	logger = logger.WithField("storage_driver", string(cfg.StorageDriver))

	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return &storageDeps{
			orders:   memory.NewOrderRepository(),
			outbox:   memory.NewOutboxRepository(),
			timeline: memory.NewTimelineRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres dsn is required for storage driver %q", cfg.StorageDriver)
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
		}
		logger.Info("postgres storage initialized")
		return &storageDeps{
			orders:   postgres.NewOrderRepository(store),
			outbox:   postgres.NewOutboxRepository(store),
			timeline: postgres.NewTimelineRepository(store),
			checker:  healthcheck.NewSimpleChecker("storage", store.Ping),
			closeFn:  store.Close,
		}, nil

	case StorageDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("sqlite storage initialized")
		return &storageDeps{
			orders:   sqlite.NewOrderRepository(store),
			outbox:   sqlite.NewOutboxRepository(store),
			timeline: sqlite.NewTimelineRepository(store),
			checker:  healthcheck.NewSimpleChecker("storage", store.Ping),
			closeFn:  store.Close,
		}, nil

	case StorageDriverDynamoDB:
		awsCfg, err := cloudaws.LoadConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		repo := dynamodb.NewOrderRepository(cloudaws.NewDynamoDB(awsCfg), cfg.DynamoDBTable)
		logger.WithField("table", cfg.DynamoDBTable).Info("dynamodb storage initialized")
		return &storageDeps{
			orders:   repo,
			outbox:   memory.NewOutboxRepository(),
			timeline: memory.NewTimelineRepository(),
			checker:  healthcheck.NewSimpleChecker("storage", repo.Ping),
		}, nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}
