package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"
)

// taskArgs is the single River job kind carrying every registered task.
type taskArgs struct {
	TaskName  string          `json:"task_name" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "drive:task" }

type enqueueConfig struct {
	queue       string
	uniqueKey   string
	uniqueFor   time.Duration
	maxAttempts int
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.queue = name
	}
}

// MaxAttempts caps retries. River's default is 25.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Unique skips the insert when a job with the same task name and key was
// inserted within d.
//
//	m.Enqueue(ctx, "tree.delete_subtree", p, job.Unique(nodeID, time.Minute))
func Unique(key string, d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
		c.uniqueFor = d
	}
}

func buildJobArgs(name string, payload any, opts ...EnqueueOption) (taskArgs, *river.InsertOpts, error) {
	args := taskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return args, nil, fmt.Errorf("job: marshal payload: %w", err)
		}
		args.Payload = raw
	}

	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	insert := &river.InsertOpts{
		Queue:       cfg.queue,
		MaxAttempts: cfg.maxAttempts,
	}
	if cfg.uniqueFor > 0 {
		args.UniqueKey = cfg.uniqueKey
		insert.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: cfg.uniqueFor}
	}

	return args, insert, nil
}
