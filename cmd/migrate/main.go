package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/ordersync/internal/config"
	"github.com/vladislavdragonenkov/ordersync/internal/storage/postgres"
)

const (
	defaultTimeout = 30 * time.Second
)

var errDSNRequired = errors.New("ORDERSYNC_STORAGE_POSTGRES_DSN (or -dsn) is required")

func main() {
	var (
		direction  string
		steps      int
		dsn        string
		configPath string
	)

	flag.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: storage.postgres_dsn from config)")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			fail("load config: %v", err)
		}
		dsn = cfg.Storage.PostgresDSN
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := run(ctx, os.Stdout, direction, steps, dsn); err != nil {
		cancel()
		fail("%v", err)
	}
}

// run выполняет одну команду миграции и печатает итоговую версию схемы.
func run(ctx context.Context, out io.Writer, direction string, steps int, dsn string) error {
	direction = strings.ToLower(strings.TrimSpace(direction))
	switch direction {
	case "up", "down", "status":
	default:
		return fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return errDSNRequired
	}

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer store.Close()

	switch direction {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	if direction == "status" {
		_, err = fmt.Fprintf(out, "migration status: version=%d applied=%d\n", version, count)
	} else {
		_, err = fmt.Fprintf(out, "migrate %s ok: version=%d applied=%d\n", direction, version, count)
	}
	return err
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
