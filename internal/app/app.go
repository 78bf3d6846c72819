package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/short-url/internal/config"
	"github.com/vadimbarashkov/short-url/internal/entity"
	"github.com/vadimbarashkov/short-url/internal/usecase"
	"github.com/vadimbarashkov/short-url/pkg/postgres"
	"github.com/vadimbarashkov/short-url/pkg/redis"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/short-url/internal/adapter/delivery/http"
	memoryrepo "github.com/vadimbarashkov/short-url/internal/adapter/repository/memory"
	postgresrepo "github.com/vadimbarashkov/short-url/internal/adapter/repository/postgres"
	redisrepo "github.com/vadimbarashkov/short-url/internal/adapter/repository/redis"
)

type urlStore interface {
	FindByShortToken(ctx context.Context, shortToken string) (*entity.URL, error)
	FindByOriginalURL(ctx context.Context, originalURL string) ([]*entity.URL, error)
	Save(ctx context.Context, url *entity.URL) error
	IncrementVisitCount(ctx context.Context, shortToken string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

func newURLStore(ctx context.Context, cfg *config.Config, logger *httplog.Logger) (urlStore, error) {
	const op = "app.newURLStore"

	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := postgres.New(
			ctx,
			cfg.Postgres.DSN(),
			postgres.WithConnectTimeout(cfg.Postgres.ConnectTimeout),
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to connect to postgres: %w", op, err)
		}

		version, err := postgres.RunMigrations(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN())
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}

		logger.Info("migrations applied", "version", version)

		return postgresrepo.NewURLRepository(db), nil
	case config.StorageRedis:
		client, err := redis.New(
			ctx,
			cfg.Redis.Addr,
			redis.WithPassword(cfg.Redis.Password),
			redis.WithDB(cfg.Redis.DB),
			redis.WithPoolSize(cfg.Redis.PoolSize),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}

		return redisrepo.NewURLRepository(client), nil
	case config.StorageMemory:
		return memoryrepo.NewURLRepository(), nil
	default:
		return nil, fmt.Errorf("%s: unknown storage %q", op, cfg.Storage)
	}
}

// Run wires the configured storage, use case and router, then serves HTTP until
// ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	store, err := newURLStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "err", err)
		}
	}()

	logger.Info("storage selected", "storage", cfg.Storage)

	urlUseCase := usecase.New(
		store,
		usecase.WithShortTokenLength(cfg.ShortTokenLength),
		usecase.WithMaxAttempts(cfg.MaxGenerateAttempts),
	)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        delivery.NewRouter(logger, urlUseCase, store),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		logger.Info("server listening", "addr", server.Addr, "env", cfg.Env)

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
