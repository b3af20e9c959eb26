package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/drive/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// ErrCheckFailed is logged when a readiness check reports an error.
var ErrCheckFailed = errors.New("health: check failed")

// CheckFunc matches the Healthcheck closures exposed by db, redis, job and blobstore.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its probe.
type Checks map[string]CheckFunc

// Response is the JSON body of a probe.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of one probe.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures the readiness handler.
type Option func(*config)

// WithTimeout bounds the whole readiness run. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks at Warn.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// LivenessHandler always answers 200.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler runs every check concurrently and answers 503 if any fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	cfg := &config{timeout: defaultTimeout, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := run(r.Context(), checks, cfg)
		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		write(w, r, status, resp)
	}
}

func run(ctx context.Context, checks Checks, cfg *config) *Response {
	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	resp.Checks = make(map[string]Check, len(checks))

	for name, check := range checks {
		wg.Go(func() {
			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				result = Check{Status: StatusUnhealthy, Error: err.Error()}
				cfg.logger.WarnContext(ctx, ErrCheckFailed.Error(),
					slog.String("check", name),
					slog.Any("error", err),
				)
			}

			mu.Lock()
			resp.Checks[name] = result
			if result.Status == StatusUnhealthy {
				resp.Status = StatusUnhealthy
			}
			mu.Unlock()
		})
	}
	wg.Wait()

	return resp
}

// write answers JSON when asked via ?format=json or Accept, plain text otherwise.
func write(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if status == http.StatusOK {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable"))
}
