// Command drive runs the file tree HTTP API.
//
// Configuration comes from the environment and, optionally, a YAML file
// named by DRIVE_CONFIG_FILE. See internal/config for all settings.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/drive"
	"github.com/dmitrymomot/drive/internal/config"
	"github.com/dmitrymomot/drive/middlewares"
	"github.com/dmitrymomot/drive/pkg/blobstore"
	"github.com/dmitrymomot/drive/pkg/cache"
	"github.com/dmitrymomot/drive/pkg/db"
	"github.com/dmitrymomot/drive/pkg/job"
	"github.com/dmitrymomot/drive/pkg/logger"
	"github.com/dmitrymomot/drive/pkg/redis"
	"github.com/dmitrymomot/drive/pkg/storage"
	"github.com/dmitrymomot/drive/pkg/tree"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// deps collects what run builds, in the order it must be torn down.
type deps struct {
	log     *slog.Logger
	checks  []drive.HealthOption
	closers []func(context.Context) error
}

func (d *deps) check(name string, fn func(context.Context) error) {
	d.checks = append(d.checks, drive.WithReadinessCheck(name, fn))
}

func (d *deps) onShutdown(fn func(context.Context) error) {
	d.closers = append(d.closers, fn)
}

// closeAll releases everything opened so far when startup fails.
func (d *deps) closeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			d.log.Warn("cleanup failed", slog.Any("error", err))
		}
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv(config.FileEnv))
	if err != nil {
		return err
	}

	d := &deps{log: newLogger(cfg)}
	started := false
	defer func() {
		if !started {
			d.closeAll()
		}
	}()
	if cfg.Sentry.DSN != "" {
		d.onShutdown(func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		})
	}

	store, pool, err := openStore(ctx, cfg, d)
	if err != nil {
		return err
	}

	tokens, roots, err := openCaches(ctx, cfg, d)
	if err != nil {
		return err
	}

	engineOpts := []tree.Option{
		tree.WithLogger(d.log.With("component", "tree")),
		tree.WithEligibilityTTL(cfg.Tree.EligibilityTTL),
		tree.WithRootCache(roots),
	}
	if cfg.Tree.RootGuard {
		engineOpts = append(engineOpts, tree.WithRootGuard())
	}

	var workers []drive.Worker
	if cfg.Tree.DeleteMode == config.DeleteQueue {
		manager, err := newJobManager(ctx, cfg, d, pool, store, tokens)
		if err != nil {
			return err
		}
		workers = append(workers, manager)
		d.check("jobs", manager.Healthcheck())
		engineOpts = append(engineOpts, tree.WithDispatcher(tree.NewJobDispatcher(manager)))
	} else {
		engineOpts = append(engineOpts, tree.WithLocalDispatcher(tree.WithDeleteTimeout(cfg.Tree.DeleteTimeout)))
	}

	engine, err := tree.NewEngine(store, tokens, engineOpts...)
	if err != nil {
		return err
	}

	appOpts := []drive.Option{
		drive.WithCustomLogger(d.log.With("component", "api")),
		drive.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
		drive.WithHealthChecks(d.checks...),
		drive.WithWorkers(workers...),
	}
	if len(cfg.HTTP.CORSOrigins) > 0 {
		appOpts = append(appOpts, drive.WithMiddleware(middlewares.CORS(
			middlewares.WithAllowOrigins(cfg.HTTP.CORSOrigins...),
			middlewares.WithAllowHeaders("Origin", "Content-Type", "Accept", "Authorization", cfg.HTTP.AccountHeader),
		)))
	}
	app := drive.NewAPIWithResolver(engine, middlewares.HeaderAccountResolver(cfg.HTTP.AccountHeader), appOpts...)

	// Pending in-process deletions finish before pools close.
	runOpts := []drive.RunOption{
		drive.WithContext(ctx),
		drive.Logger(d.log),
		drive.ShutdownTimeout(cfg.HTTP.ShutdownTimeout),
		drive.ShutdownHook(engine.Shutdown()),
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		runOpts = append(runOpts, drive.ShutdownHook(d.closers[i]))
	}

	started = true
	return app.Run(cfg.HTTP.Addr, runOpts...)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := []logger.Option{
		logger.WithLevel(logger.ParseLevel(cfg.Log.Level)),
		logger.WithExtractors(middlewares.RequestIDExtractor(), logger.AccountIDExtractor()),
	}
	if cfg.Log.Format == "text" {
		opts = append(opts, logger.WithText())
	}
	return logger.NewWithSentry(cfg.Sentry, opts...).With("service", "drive")
}

// openStore returns the blob store and, for the postgres backend, the pool
// shared with the job queue.
func openStore(ctx context.Context, cfg *config.Config, d *deps) (storeWithOrphans, *pgxpool.Pool, error) {
	storeOpts := []blobstore.Option{
		blobstore.WithLogger(d.log.With("component", "blobstore")),
		blobstore.WithDeleteConcurrency(cfg.Store.DeleteConcurrency),
	}

	if cfg.Store.Backend == config.StoreMemory {
		d.log.Warn("using the in-memory blob store; data is lost on exit")
		store := blobstore.NewMemory(storeOpts...)
		d.check("blobs", store.Healthcheck())
		return store, nil, nil
	}

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	d.onShutdown(db.Shutdown(pool))
	d.check("db", db.Healthcheck(pool))

	if err := db.Migrate(ctx, pool, blobstore.Migrations(), cfg.DB.MigrationsTable, d.log); err != nil {
		return nil, nil, err
	}

	objects, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	d.check("objects", objects.Healthcheck())

	store, err := blobstore.NewPostgres(pool, append(storeOpts, blobstore.WithObjectStorage(objects))...)
	if err != nil {
		return nil, nil, err
	}
	d.check("blobs", store.Healthcheck())
	return store, pool, nil
}

// openCaches returns the eligibility token cache and the root id cache.
func openCaches(ctx context.Context, cfg *config.Config, d *deps) (cache.Cache[string], cache.Cache[string], error) {
	if cfg.Cache.Backend == config.CacheMemory {
		tokens := cache.NewMemory[string]()
		roots := cache.NewMemory[string](cache.WithDefaultTTL(-1))
		d.onShutdown(func(context.Context) error { return tokens.Close() })
		d.onShutdown(func(context.Context) error { return roots.Close() })
		return tokens, roots, nil
	}

	client, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	d.onShutdown(redis.Shutdown(client))
	d.check("redis", redis.Healthcheck(client))

	tokens := cache.NewRedis[string](client, nil, cache.WithPrefix(cfg.Cache.Prefix+":eligibility"))
	roots := cache.NewRedis[string](client, nil, cache.WithPrefix(cfg.Cache.Prefix+":roots"))
	return tokens, roots, nil
}

// newJobManager registers the subtree deletion worker and the orphan sweep.
// The tasks get their own engine: engines are stateless, and the API engine
// needs the manager as its dispatcher.
func newJobManager(ctx context.Context, cfg *config.Config, d *deps, pool *pgxpool.Pool, store storeWithOrphans, tokens cache.Cache[string]) (*job.Manager, error) {
	if err := job.Migrate(ctx, pool); err != nil {
		return nil, err
	}

	log := d.log.With("component", "jobs")
	deleter, err := tree.NewEngine(store, tokens, tree.WithLogger(log))
	if err != nil {
		return nil, err
	}

	return job.NewManager(pool,
		job.WithLogger(log),
		job.WithMaxWorkers(cfg.Jobs.MaxWorkers),
		job.WithTask[tree.DeleteRequest](tree.NewDeleteSubtreeTask(deleter)),
		job.WithScheduledTask(tree.NewSweepTask(deleter, store, cfg.Jobs.SweepSchedule, log)),
	)
}

type storeWithOrphans interface {
	blobstore.Store
	blobstore.OrphanLister
}
