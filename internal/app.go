package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/rosarium/internal/gardenservice"
	"github.com/starford/rosarium/internal/storage"
)

// newApplication applies opts. Without WithLogger, logs are JSON lines on
// logOut at the configured level.
func newApplication(opts []Option, logOut io.Writer) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

// openProvider builds the snapshot provider named by the storage config.
// The returned close function is never nil.
func openProvider(cfg StorageConfig) (storage.Provider, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case DriverFile:
		f, err := storage.NewFile(cfg.Path, cfg.QuotaBytes)
		if err != nil {
			return nil, noop, fmt.Errorf("init file storage: %w", err)
		}
		return f, noop, nil
	case DriverSQLite:
		db, err := storage.OpenSQLite(cfg.Path, cfg.QuotaBytes)
		if err != nil {
			return nil, noop, fmt.Errorf("init sqlite storage: %w", err)
		}
		return db, db.Close, nil
	case DriverMemory:
		return storage.NewMemory(cfg.QuotaBytes), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// openService opens the provider and loads the garden from it. On success
// the caller owns the returned close function.
func (a *application) openService(ctx context.Context, extra ...gardenservice.Option) (*gardenservice.Service, storage.Provider, func() error, error) {
	provider, closeFn, err := openProvider(a.config.Storage)
	if err != nil {
		return nil, nil, closeFn, err
	}

	opts := []gardenservice.Option{
		gardenservice.WithLogger(a.logger),
		gardenservice.WithWindowConfig(a.config.Sheet.Window()),
		gardenservice.WithSaveDebounce(a.config.Storage.SaveDebounce),
	}
	opts = append(opts, extra...)
	opts = append(opts, a.svcOpts...)

	svc := gardenservice.New(provider, opts...)
	if err := svc.Open(ctx); err != nil {
		_ = closeFn()
		return nil, nil, nil, fmt.Errorf("open garden: %w", err)
	}
	return svc, provider, closeFn, nil
}
