//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/liftlog/internal/config"
	"alcyxob/liftlog/internal/repository/postgres"
	"alcyxob/liftlog/internal/repository/repotest"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// setupTestDB starts a PostgreSQL container and applies the migrations.
func setupTestDB(t *testing.T) *gorm.DB {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("liftlog"),
		tcpostgres.WithUsername("liftlog"),
		tcpostgres.WithPassword("liftlog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	db, err := postgres.Open(config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		DSN:             dsn,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = postgres.Close(db) })

	require.NoError(t, postgres.Migrate(ctx, db, "up"))
	return db
}

func TestPostgresRepositories(t *testing.T) {
	db := setupTestDB(t)

	repotest.Run(t, func(t *testing.T) repotest.Backend {
		require.NoError(t, db.Exec(
			"TRUNCATE sets, workout_exercises, workouts, exercises RESTART IDENTITY CASCADE").Error)
		return repotest.Backend{
			Repos: postgres.NewRepositories(db),
			Counts: func(t *testing.T) (int, int, int) {
				return count(t, db, "workouts"), count(t, db, "workout_exercises"), count(t, db, "sets")
			},
			Precision: time.Microsecond,
		}
	})
}

func TestMigrateDownAndUp(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, postgres.Migrate(ctx, db, "down-to", "0"))
	require.False(t, db.Migrator().HasTable("workouts"))

	require.NoError(t, postgres.Migrate(ctx, db, "up"))
	require.True(t, db.Migrator().HasTable("workouts"))
	require.True(t, db.Migrator().HasIndex("workouts", "idx_workouts_started_at"))
}

func count(t *testing.T, db *gorm.DB, table string) int {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return int(n)
}
