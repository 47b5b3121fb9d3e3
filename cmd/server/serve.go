package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/liftlog/internal/api"
	"alcyxob/liftlog/internal/config"
	"alcyxob/liftlog/internal/identity"
	"alcyxob/liftlog/internal/repository"
	"alcyxob/liftlog/internal/repository/memory"
	"alcyxob/liftlog/internal/repository/mongo"
	"alcyxob/liftlog/internal/repository/postgres"
	"alcyxob/liftlog/internal/revalidate"
	"alcyxob/liftlog/internal/service"
	"alcyxob/liftlog/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), cfg)
	},
}

// backend is an opened storage backend and its shutdown hook.
type backend struct {
	repos repository.Repositories
	close func(context.Context) error
}

func openBackend(ctx context.Context, cfg config.DatabaseConfig) (*backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db, "up"); err != nil {
				_ = postgres.Close(db)
				return nil, err
			}
		}
		return &backend{
			repos: postgres.NewRepositories(db),
			close: func(context.Context) error { return postgres.Close(db) },
		}, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Name)
		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(indexCtx, db); err != nil {
			_ = mongo.DisconnectDB(client)
			return nil, err
		}
		return &backend{
			repos: mongo.NewRepositories(client, db),
			close: func(context.Context) error { return mongo.DisconnectDB(client) },
		}, nil

	case config.DriverMemory:
		return &backend{
			repos: memory.NewStore().Repositories(),
			close: func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// openSink publishes to Redis when configured, and always logs.
func openSink(ctx context.Context, cfg config.RedisConfig) (revalidate.Sink, func() error, error) {
	if cfg.Addr == "" {
		return revalidate.LogSink{}, func() error { return nil }, nil
	}
	rs, err := revalidate.NewRedisSink(ctx, revalidate.RedisConfig{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Channel:  cfg.Channel,
	})
	if err != nil {
		return nil, nil, err
	}
	return revalidate.Multi{revalidate.LogSink{}, rs}, rs.Close, nil
}

// openFiles returns nil when no bucket is configured; exports then fail.
func openFiles(ctx context.Context, cfg config.S3Config) (storage.FileStorage, error) {
	if cfg.BucketName == "" {
		return nil, nil
	}
	s3, err := storage.NewS3Storage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s3, nil
}

func serve(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := slog.Default()

	be, err := openBackend(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Database.Driver, err)
	}
	defer func() {
		if err := be.close(context.Background()); err != nil {
			log.Error("close backend", slog.Any("error", err))
		}
	}()
	log.Info("storage backend ready", slog.String("driver", cfg.Database.Driver))

	sink, closeSink, err := openSink(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = closeSink() }()

	files, err := openFiles(ctx, cfg.S3)
	if err != nil {
		return fmt.Errorf("init s3 storage: %w", err)
	}
	if files == nil {
		log.Warn("s3 bucket not configured; exports are disabled")
	}

	verifier, err := identity.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		return err
	}

	deps := service.Deps{Repos: be.repos, Sink: sink}
	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, verifier, api.Services{
		Workouts:  service.NewWorkoutService(deps),
		Exercises: service.NewExerciseService(deps),
		Sets:      service.NewSetService(deps),
		Exports:   service.NewExportService(deps, files, cfg.S3.URLExpiry),
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	// In-flight requests get 5 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
