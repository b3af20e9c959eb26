package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" yaml:"dsn"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production" yaml:"environment"`
	// MinLevel selects which levels are kept as Sentry logs (warn+error by default, error only when set to error).
	MinLevel slog.Level `yaml:"-"`
}

// NewWithSentry creates a logger that writes to the configured output and to Sentry.
// With an empty DSN it behaves exactly like New.
// Subtree deletion failures logged at error level become Sentry issues.
func NewWithSentry(cfg SentryConfig, opts ...Option) *slog.Logger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	base := o.handler()

	if cfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(base, o.extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(base, o.extractors...))
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(fanout{base, sentryHandler}, o.extractors...))
}
