package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// integrationDSN берёт строку подключения из окружения; без неё
// интеграционные тесты пропускаются.
func integrationDSN(t *testing.T) string {
	t.Helper()

	for _, key := range []string{"ORDERSYNC_POSTGRES_TEST_DSN", "ORDERSYNC_STORAGE_POSTGRES_DSN"} {
		if dsn := strings.TrimSpace(os.Getenv(key)); dsn != "" {
			return dsn
		}
	}
	t.Skip("ORDERSYNC_POSTGRES_TEST_DSN is not set, skipping postgres integration test")
	return ""
}

// openRawPostgresStoreForIntegrationTest открывает базу без миграций.
func openRawPostgresStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	dsn := integrationDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	store, err := Open(ctx, dsn)
	if err != nil {
		t.Skipf("postgres is not reachable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// openPostgresStoreForIntegrationTest возвращает мигрированную пустую базу.
func openPostgresStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, store.MigrateUp(ctx, 0), "migrate up")
	_, err := store.DB().ExecContext(ctx, `TRUNCATE TABLE outbox_messages, orders RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "truncate integration tables")

	return store
}
