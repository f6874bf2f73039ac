package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/config"
	"github.com/vladislavdragonenkov/ordersync/internal/domain"
	"github.com/vladislavdragonenkov/ordersync/internal/storage/memory"
	"github.com/vladislavdragonenkov/ordersync/internal/storage/postgres"
)

// runtimeDependencies содержит хранилища, выбранные по storage.driver.
type runtimeDependencies struct {
	repo       domain.OrderRepository
	outboxRepo domain.OutboxRepository
	ping       func(ctx context.Context) error
	close      func() error
}

// Close освобождает ресурсы хранилища.
func (d *runtimeDependencies) Close() error {
	if d == nil || d.close == nil {
		return nil
	}
	return d.close()
}

func initRuntimeDependencies(ctx context.Context, cfg config.StorageConfig, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.Driver {
	case "", config.StorageDriverMemory:
		logger.Info("using in-memory storage")
		return &runtimeDependencies{
			repo:       memory.NewOrderRepository(),
			outboxRepo: memory.NewOutboxRepository(),
			ping:       func(context.Context) error { return nil },
			close:      func() error { return nil },
		}, nil
	case config.StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres dsn is required for storage driver %q", cfg.Driver)
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		logger.Info("using postgres storage")
		return &runtimeDependencies{
			repo:       postgres.NewOrderRepository(store),
			outboxRepo: postgres.NewOutboxRepository(store),
			ping:       store.Ping,
			close:      store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
