package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/db/memory"
	"github.com/gokatarajesh/trivia-api/internal/db/queries"
	"github.com/gokatarajesh/trivia-api/internal/db/repository"
	"github.com/gokatarajesh/trivia-api/internal/db/sqlite"
	"github.com/gokatarajesh/trivia-api/internal/events"
	"github.com/gokatarajesh/trivia-api/internal/logging"
	"github.com/gokatarajesh/trivia-api/internal/metrics"
	"github.com/gokatarajesh/trivia-api/internal/question"
	"github.com/gokatarajesh/trivia-api/internal/seed"
	"github.com/gokatarajesh/trivia-api/internal/server"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// Application aggregates shared infrastructure (store, event bus, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	store  Store
	redis  *redis.Client
	http   *http.Server
	closes []func() error

	broadcaster *events.Broadcaster
	bgCancels   []context.CancelFunc
}

// Store is the persistence surface the application needs: the question
// store plus category upserts for seeding.
type Store interface {
	seed.Target
}

// New bootstraps the logger, store, optional Redis event bus and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Str("store", cfg.Store.Driver).Msg("starting application bootstrap")

	a := &Application{
		cfg:       cfg,
		logger:    logger,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}

	var deps []server.Dependency
	store, dep, closeFn, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	if closeFn != nil {
		a.closes = append(a.closes, closeFn)
	}
	if dep != nil {
		deps = append(deps, *dep)
	}

	if cfg.Store.SeedFile != "" {
		if err := a.applySeed(ctx, cfg.Store.SeedFile); err != nil {
			a.close()
			return nil, err
		}
	}

	opts := question.ServiceOptions{PageSize: cfg.Quiz.QuestionsPerPage}

	var feed http.HandlerFunc
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		deps = append(deps, server.Dependency{
			Name: "redis",
			Ping: func(ctx context.Context) error { return a.redis.Ping(ctx).Err() },
		})

		hub := ws.NewHub(logger)
		opts.Events = events.NewPublisher(a.redis, cfg.Redis.Channel)
		a.broadcaster = events.NewBroadcaster(a.redis, hub, cfg.Redis.Channel, logger)
		feed = events.NewFeedHandler(hub, logger).HandleWebSocket
		logger.Info().Str("channel", cfg.Redis.Channel).Msg("question events enabled")
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; question events and live feed disabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	svc := question.NewService(store, opts, logger)
	selector := question.NewSelector(store, nil)

	a.http = server.NewHTTPServer(cfg, logger, server.Options{
		Questions:    question.NewHTTPHandler(svc, selector, m, logger),
		FeedHandler:  feed,
		Dependencies: deps,
		Metrics:      m,
	})

	return a, nil
}

// OpenStore connects the configured backend. The returned dependency, when
// non-nil, is pinged by /v1/ping; the close func releases the backend.
func OpenStore(ctx context.Context, cfg *config.App) (Store, *server.Dependency, func() error, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		repo := repository.NewQuestionRepository(queries.New(pool))
		dep := &server.Dependency{Name: "postgres", Ping: pool.Ping}
		return repo, dep, func() error { pool.Close(); return nil }, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, &server.Dependency{Name: "sqlite", Ping: db.Ping}, db.Close, nil

	case config.DriverMemory:
		return memory.NewStore(), nil, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *Application) applySeed(ctx context.Context, path string) error {
	bank, err := seed.Load(path)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	if _, err := seed.Apply(ctx, a.store, bank, a.logger.With().Str("seed", path).Logger()); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	return nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		a.close()
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.close()
	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) close() {
	for _, cancel := range a.bgCancels {
		cancel()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}
	for _, closeFn := range a.closes {
		if err := closeFn(); err != nil {
			a.logger.Error().Err(err).Msg("store shutdown error")
		}
	}
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.broadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.broadcaster.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("question event broadcaster stopped")
			}
		}()
	}
}
