// Package config loads the drive server configuration from an optional YAML
// file and the environment. Environment variables win over the file, and
// the file wins over envDefault values.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/drive/pkg/db"
	"github.com/dmitrymomot/drive/pkg/logger"
	"github.com/dmitrymomot/drive/pkg/redis"
	"github.com/dmitrymomot/drive/pkg/storage"
)

// FileEnv names the variable holding the optional YAML config path.
const FileEnv = "DRIVE_CONFIG_FILE"

// Blob store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Cache backends for eligibility tokens and root ids.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Subtree deletion modes.
const (
	DeleteQueue = "queue"
	DeleteLocal = "local"
)

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrReadFile      = errors.New("config: failed to read config file")
	ErrParse         = errors.New("config: failed to parse configuration")
)

// Config is the complete server configuration.
type Config struct {
	HTTP    HTTPConfig          `yaml:"http"`
	Log     LogConfig           `yaml:"log"`
	Sentry  logger.SentryConfig `yaml:"sentry"`
	Store   StoreConfig         `yaml:"store"`
	DB      db.Config           `yaml:"database"`
	Storage storage.Config      `yaml:"storage"`
	Redis   redis.Config        `yaml:"redis"`
	Cache   CacheConfig         `yaml:"cache"`
	Tree    TreeConfig          `yaml:"tree"`
	Jobs    JobsConfig          `yaml:"jobs"`
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080" yaml:"addr"`
	AccountHeader   string        `env:"HTTP_ACCOUNT_HEADER" envDefault:"X-Account-ID" yaml:"account_header"`
	CORSOrigins     []string      `env:"HTTP_CORS_ORIGINS" envSeparator:"," yaml:"cors_origins"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `env:"HTTP_MAX_BODY_BYTES" envDefault:"67108864" yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
	Format string `env:"LOG_FORMAT" envDefault:"json" yaml:"format"`
}

// StoreConfig selects where blob metadata lives. The memory store keeps
// everything in process and is meant for local development.
type StoreConfig struct {
	Backend           string `env:"STORE_BACKEND" envDefault:"postgres" yaml:"backend"`
	DeleteConcurrency int    `env:"STORE_DELETE_CONCURRENCY" envDefault:"10" yaml:"delete_concurrency"`
}

type CacheConfig struct {
	Backend string `env:"CACHE_BACKEND" envDefault:"memory" yaml:"backend"`
	Prefix  string `env:"CACHE_PREFIX" envDefault:"drive" yaml:"prefix"`
}

type TreeConfig struct {
	EligibilityTTL time.Duration `env:"TREE_ELIGIBILITY_TTL" envDefault:"60s" yaml:"eligibility_ttl"`
	RootGuard      bool          `env:"TREE_ROOT_GUARD" envDefault:"true" yaml:"root_guard"`
	DeleteMode     string        `env:"TREE_DELETE_MODE" envDefault:"queue" yaml:"delete_mode"`
	DeleteTimeout  time.Duration `env:"TREE_DELETE_TIMEOUT" envDefault:"10m" yaml:"delete_timeout"`
}

type JobsConfig struct {
	MaxWorkers    int    `env:"JOBS_MAX_WORKERS" envDefault:"10" yaml:"max_workers"`
	SweepSchedule string `env:"JOBS_SWEEP_SCHEDULE" envDefault:"*/15 * * * *" yaml:"sweep_schedule"`
}

// Load builds the configuration from defaults, the YAML file at path (if
// not empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// Defaults only.
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Join(ErrReadFile, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Join(ErrParse, err)
		}
	}

	// Set variables only; an unknown default tag keeps envDefault from
	// clobbering values read from the file.
	if err := env.ParseWithOptions(cfg, env.Options{DefaultValueTagName: "envOverrideDefault"}); err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(slices.Contains([]string{StorePostgres, StoreMemory}, c.Store.Backend),
		"store backend %q is not one of postgres, memory", c.Store.Backend)
	check(slices.Contains([]string{CacheMemory, CacheRedis}, c.Cache.Backend),
		"cache backend %q is not one of memory, redis", c.Cache.Backend)
	check(slices.Contains([]string{DeleteQueue, DeleteLocal}, c.Tree.DeleteMode),
		"tree delete mode %q is not one of queue, local", c.Tree.DeleteMode)
	check(c.Tree.EligibilityTTL > 0, "tree eligibility ttl must be positive")
	check(c.HTTP.AccountHeader != "", "http account header is required")

	if c.Store.Backend == StorePostgres {
		check(c.DB.ConnectionString != "", "database connection url is required for the postgres store")
		check(c.Storage.Bucket != "", "storage bucket is required for the postgres store")
	}
	if c.Tree.DeleteMode == DeleteQueue {
		check(c.Store.Backend == StorePostgres, "queued deletion needs the postgres store")
		check(c.DB.ConnectionString != "", "database connection url is required for queued deletion")
	}
	if c.Cache.Backend == CacheRedis {
		check(c.Redis.URL != "", "redis url is required for the redis cache")
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}
