package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/robfig/cron/v3"
)

const defaultMaxWorkers = 20

// Manager enqueues and works tasks on a River queue stored in Postgres.
type Manager struct {
	pool     *pgxpool.Pool
	client   *river.Client[pgx.Tx]
	registry *registry
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager builds the River client. Jobs may be enqueued before Start;
// they are worked once the manager starts.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	periodic, err := periodicJobs(cfg)
	if err != nil {
		return nil, err
	}

	queues := map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: cfg.maxWorkers},
	}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{registry: cfg.registry, logger: cfg.logger})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		pool:     pool,
		client:   client,
		registry: cfg.registry,
		logger:   cfg.logger,
	}, nil
}

// periodicJobs registers scheduled tasks and converts them into River periodic jobs.
func periodicJobs(cfg *config) ([]*river.PeriodicJob, error) {
	jobs := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, task := range cfg.schedules {
		schedule, err := parseCronSchedule(task.Schedule())
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidSchedule, task.Schedule(), err)
		}

		name := task.Name()
		cfg.registry.register(name, scheduledExecutor{handle: task.Handle})
		jobs = append(jobs, river.NewPeriodicJob(
			schedule,
			func() (river.JobArgs, *river.InsertOpts) {
				return taskArgs{TaskName: name}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		))
	}
	return jobs, nil
}

// Migrate creates or upgrades River's tables. Call it before Start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

// Start begins working jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}

	m.started = true
	m.logger.Info("job manager started", slog.Any("tasks", m.registry.names()))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}

	m.started = false
	m.logger.Info("job manager stopped")
	return nil
}

// Enqueue inserts a job for a registered task.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	args, insert, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}

	if _, err := m.client.Insert(ctx, args, insert); err != nil {
		return fmt.Errorf("job: enqueue: %w", err)
	}
	return nil
}

// Healthcheck reports whether the manager is running and Postgres answers.
func (m *Manager) Healthcheck() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()

		if !started {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		if err := m.pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that stops the manager.
func (m *Manager) Shutdown() func(context.Context) error {
	return m.Stop
}

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *registry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, j *river.Job[taskArgs]) error {
	exec, ok := w.registry.get(j.Args.TaskName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, j.Args.TaskName)
	}

	log := w.logger.With(
		slog.String("task", j.Args.TaskName),
		slog.Int64("job_id", j.ID),
		slog.Int("attempt", j.Attempt),
	)

	log.DebugContext(ctx, "executing task")
	if err := exec.Execute(ctx, j.Args.Payload); err != nil {
		log.ErrorContext(ctx, "task failed", slog.Any("error", err))
		return err
	}
	log.DebugContext(ctx, "task completed")

	return nil
}

type cronSchedule struct {
	schedule cron.Schedule
}

func (s cronSchedule) Next(current time.Time) time.Time {
	return s.schedule.Next(current)
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return cronSchedule{schedule: schedule}, nil
}
