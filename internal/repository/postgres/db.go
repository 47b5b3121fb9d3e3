package postgres

import (
	"errors"
	"fmt"
	"strings"

	"alcyxob/liftlog/internal/config"
	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres and applies the pool limits from cfg.
// The schema is owned by the goose migrations in this package, not AutoMigrate.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		NowFunc: domain.Now,
		Logger:  logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewRepositories builds the postgres-backed repositories.
func NewRepositories(db *gorm.DB) repository.Repositories {
	return repository.Repositories{
		Exercises:        NewExerciseRepository(db),
		Workouts:         NewWorkoutRepository(db),
		WorkoutExercises: NewWorkoutExerciseRepository(db),
		Sets:             NewSetRepository(db),
	}
}

// wrapErr tags integrity violations (class 23) and over-long values (22001)
// with repository.ErrConstraint; everything else passes through wrapped.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (strings.HasPrefix(pgErr.Code, "23") || pgErr.Code == "22001") {
		return fmt.Errorf("%s: %w: %s", op, repository.ErrConstraint, pgErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
