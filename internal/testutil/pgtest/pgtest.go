//go:build integration

// Package pgtest starts a disposable PostgreSQL container with the versioned
// schema applied, for integration tests that need real row locks and partial
// unique indexes.
package pgtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/propcore/backend/internal/infrastructure/migration"
	"github.com/propcore/backend/internal/infrastructure/persistence/sqlerr"
	"github.com/propcore/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StartPostgres runs a PostgreSQL container for the test and returns its DSN
func StartPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("propcore_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")
	return dsn
}

// NewTestDB starts PostgreSQL, applies every migration and returns a GORM
// handle configured like the server's
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := StartPostgres(t)

	// The migrator closes its connection when done
	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up(), "Failed to apply migrations")
	require.NoError(t, m.Close())

	db, err := gorm.Open(sqlerr.Dialector(gormpostgres.Open(dsn)), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	conn, err := db.DB()
	require.NoError(t, err)
	conn.SetMaxOpenConns(20)
	t.Cleanup(func() { _ = conn.Close() })
	return db
}
