package redis

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	URL string `env:"REDIS_URL" yaml:"url"`

	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10" yaml:"pool_size"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2" yaml:"min_idle_conns"`
	MaxIdleTime  time.Duration `env:"REDIS_MAX_IDLE_TIME" envDefault:"10m" yaml:"max_idle_time"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s" yaml:"dial_timeout"`
	// Token lookups sit on the download path; keep I/O timeouts short.
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"2s" yaml:"read_timeout"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"2s" yaml:"write_timeout"`

	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3" yaml:"retry_attempts"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s" yaml:"retry_interval"`
}

// Open parses cfg.URL (redis:// or rediss://), applies pool settings and
// pings the server, retrying with linear backoff.
func Open(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	opts, err := parse(cfg)
	if err != nil {
		return nil, err
	}

	for i := range max(cfg.RetryAttempts, 1) {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, ErrConnectionFailed
}

func parse(cfg Config) (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.MaxIdleTime > 0 {
		opts.ConnMaxIdleTime = cfg.MaxIdleTime
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	return opts, nil
}

// Healthcheck returns a readiness probe that pings the server.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that closes the client.
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
