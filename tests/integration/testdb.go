// Package integration provides integration tests against real backing
// services. It uses testcontainers to spin up PostgreSQL for the GORM
// checkpoint store.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/stockwatch/backend/internal/infrastructure/checkpoint"
)

// newPostgresDSN starts a disposable PostgreSQL container and returns its
// connection string. The container is terminated when the test finishes.
func newPostgresDSN(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("stockwatch_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	t.Cleanup(func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")
	return dsn
}

// newPostgresStore starts PostgreSQL and opens a GORM checkpoint store
// against it. Schema migration runs on open.
func newPostgresStore(t *testing.T) *checkpoint.GormStore {
	t.Helper()

	store, err := checkpoint.OpenPostgres(newPostgresDSN(t), nil)
	require.NoError(t, err, "Failed to open checkpoint store")

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}
