package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-analytics/internal/config"
	"github.com/BuzzLyutic/study-analytics/internal/notify"
	"github.com/BuzzLyutic/study-analytics/internal/repo"
	"github.com/BuzzLyutic/study-analytics/internal/search"
	"github.com/BuzzLyutic/study-analytics/internal/service"
)

// app holds everything a command needs; built once per invocation.
type app struct {
	logger    *zap.Logger
	loc       *time.Location
	store     repo.Store
	notify    *notify.Center
	history   *search.History
	notes     *service.NoteService
	tasks     *service.TaskService
	analytics *service.AnalyticsService
	composer  *search.Composer
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.Level = lvl
	return cfg.Build()
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL) // Создаем пул соединений к БД
		if err != nil {
			return nil, fmt.Errorf("%w: %w", repo.ErrStoreUnavailable, err)
		}
		if err := pool.Ping(ctx); err != nil { // Пытаемся пингануть БД
			pool.Close()
			return nil, fmt.Errorf("%w: ping: %w", repo.ErrStoreUnavailable, err)
		}
		logger.Debug("connected to postgres")
		return repo.NewPostgresStore(pool), nil
	case config.DriverSQLite:
		return repo.OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return repo.NewMemoryStore(), nil
	}
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		logger:  logger,
		loc:     loc,
		store:   store,
		notify:  notify.NewCenter(),
		history: search.NewHistory(cfg.SearchHistorySize),
	}
	a.notes = service.NewNoteService(store, logger, loc)
	a.tasks = service.NewTaskService(store, a.notify, logger, loc)
	a.analytics = service.NewAnalyticsService(store, store, cfg.StorageLimitBytes(), logger, loc)
	a.composer = search.NewComposer(store, store, a.history, logger)
	return a, nil
}

func (a *app) Close() error {
	_ = a.logger.Sync()
	return a.store.Close()
}
