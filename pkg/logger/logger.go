package logger

import (
	"io"
	"log/slog"
	"os"
)

// Option configures a logger built by New or NewWithSentry.
type Option func(*options)

type options struct {
	output     io.Writer
	extractors []ContextExtractor
	level      slog.Level
	text       bool
}

func defaultOptions() *options {
	return &options{
		output: os.Stdout,
		level:  slog.LevelInfo,
	}
}

// WithLevel sets the minimum level written to the output.
// Default: slog.LevelInfo.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithOutput redirects log output. Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithText switches the output format from JSON to logfmt-style text.
// Useful for local development.
func WithText() Option {
	return func(o *options) {
		o.text = true
	}
}

// WithExtractors adds context extractors applied on every log call.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// New creates a structured logger. JSON on stdout at info level unless
// configured otherwise.
//
// Example:
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithExtractors(logger.AccountIDExtractor()),
//	)
func New(opts ...Option) *slog.Logger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return slog.New(NewLogHandlerDecorator(o.handler(), o.extractors...))
}

func (o *options) handler() slog.Handler {
	ho := &slog.HandlerOptions{Level: o.level}
	if o.text {
		return slog.NewTextHandler(o.output, ho)
	}
	return slog.NewJSONHandler(o.output, ho)
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to slog.Level.
// Unknown names resolve to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
