package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	pool := TestDB(t)
	ctx := context.Background()

	err := RunMigrations(ctx, pool)
	require.NoError(t, err)

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, RunMigrations(ctx, pool))
	})

	t.Run("creates expected tables", func(t *testing.T) {
		for _, table := range []string{"users", "transactions", "forecast_models"} {
			var exists bool
			err := pool.QueryRow(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM information_schema.tables
					WHERE table_name = $1
				)
			`, table).Scan(&exists)
			require.NoError(t, err)
			require.True(t, exists, "table %s should exist", table)
		}
	})

	t.Run("transactions require an existing user", func(t *testing.T) {
		CleanupTables(t, pool)
		_, err := pool.Exec(ctx, `
			INSERT INTO transactions (chat_id, amount, date) VALUES (999, 5.00, NOW()::date)
		`)
		require.Error(t, err, "foreign key should reject orphan transactions")
	})

	t.Run("category defaults to general", func(t *testing.T) {
		CleanupTables(t, pool)
		_, err := pool.Exec(ctx, `INSERT INTO users (chat_id) VALUES (42)`)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `
			INSERT INTO transactions (chat_id, amount, date) VALUES (42, 5.00, NOW()::date)
		`)
		require.NoError(t, err)

		var category string
		err = pool.QueryRow(ctx, `SELECT category FROM transactions WHERE chat_id = 42`).Scan(&category)
		require.NoError(t, err)
		require.Equal(t, "general", category)
	})
}
