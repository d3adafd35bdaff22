package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lalith-99/huddle/internal/api"
	"github.com/lalith-99/huddle/internal/config"
	"github.com/lalith-99/huddle/internal/db"
	"github.com/lalith-99/huddle/internal/observ"
	"github.com/lalith-99/huddle/internal/realtime"
	"github.com/lalith-99/huddle/internal/repository"
	"github.com/lalith-99/huddle/internal/repository/file"
	"github.com/lalith-99/huddle/internal/repository/memory"
	"github.com/lalith-99/huddle/internal/repository/postgres"
	"github.com/lalith-99/huddle/internal/repository/redis"
	"github.com/lalith-99/huddle/internal/workspace"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("huddle", pflag.ContinueOnError)
	configPath := flags.String("config", "", "YAML config file (overrides CONFIG_FILE)")
	port := flags.String("port", "", "HTTP port (overrides PORT and the config file)")
	storage := flags.String("storage", "", "snapshot backend: memory, file, postgres or redis")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *storage != "" {
		cfg.Storage = *storage
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, health, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	hub := realtime.NewHub(logger)
	defer hub.Close()

	engine := workspace.New(repo, logger, workspace.WithPublisher(hub))
	defer engine.Close()
	if err := engine.Recover(ctx); err != nil {
		return fmt.Errorf("recover standups: %w", err)
	}

	router := api.NewRouter(engine, api.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Stream:    hub.ServeWS,
		Health:    health,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting huddle",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("storage", cfg.Storage),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

// openRepository builds the snapshot backend named by cfg.Storage. The
// returned health func backs /v1/health; close releases connections.
func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SnapshotRepository, func(context.Context) error, func(), error) {
	noop := func() {}
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.NewSnapshotStore(), nil, noop, nil

	case config.StorageFile:
		return file.NewSnapshotStore(cfg.SnapshotPath), nil, noop, nil

	case config.StoragePostgres:
		database, err := db.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		store := postgres.NewSnapshotStore(database.Pool())
		if err := store.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, nil, err
		}
		return store, database.Health, database.Close, nil

	case config.StorageRedis:
		rdb, err := db.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return redis.NewSnapshotStore(rdb.Client(), redis.DefaultKey), rdb.Health, rdb.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
