package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/drive/pkg/logger"
)

// runtimeConfig holds configuration for running the HTTP server.
type runtimeConfig struct {
	handler         http.Handler
	logger          *slog.Logger
	baseCtx         context.Context
	address         string
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

// runServer starts the HTTP server and blocks until shutdown.
// Shared by App.Run and drive.Run.
func runServer(cfg runtimeConfig) error {
	if cfg.address == "" {
		cfg.address = ":8080"
	}
	if cfg.shutdownTimeout == 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}

	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}

	server := &http.Server{
		Addr:              cfg.address,
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	baseCtx := cfg.baseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// abort releases whatever the hooks own when the server never starts.
	abort := func(err error) error {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
		defer shutdownCancel()
		return errors.Join(err, runHooks(shutdownCtx, cfg.shutdownHooks, log))
	}

	// Workers must be running before requests can enqueue jobs.
	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			return abort(errors.Join(ErrStartupHook, err))
		}
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return abort(err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer shutdownCancel()

	errs := []error{serveErr}

	// 1. Stop accepting requests and drain in-flight ones.
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	// 2. Stop workers, close pools.
	errs = append(errs, runHooks(shutdownCtx, cfg.shutdownHooks, log))

	if err := errors.Join(errs...); err != nil {
		log.Error("shutdown completed with errors", slog.Any("error", err))
		return err
	}

	log.Info("shutdown completed")
	return nil
}

func runHooks(ctx context.Context, hooks []func(context.Context) error, log *slog.Logger) error {
	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}
	return errors.Join(errs...)
}
