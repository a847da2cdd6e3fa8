package internal

import (
	"log/slog"

	"github.com/starford/rosarium/internal/gardenservice"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	logger  *slog.Logger
	svcOpts []gardenservice.Option
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the JSON stdout logger built from the config.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithServiceOptions passes extra options to the garden service.
func WithServiceOptions(opts ...gardenservice.Option) Option {
	return func(a *application) {
		a.svcOpts = append(a.svcOpts, opts...)
	}
}
