package tree

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/drive/pkg/blobstore"
	"github.com/dmitrymomot/drive/pkg/logger"
)

const (
	DeleteSubtreeTaskName = "tree.delete_subtree"
	SweepTaskName         = "tree.sweep_orphans"

	// DefaultSweepSchedule runs the orphan sweep every 15 minutes.
	DefaultSweepSchedule = "*/15 * * * *"

	sweepBatch     = 100
	sweepMaxRounds = 50
)

// DeleteSubtreeTask is the queue worker for JobDispatcher.
type DeleteSubtreeTask struct {
	deleter Deleter
}

// NewDeleteSubtreeTask returns the worker for DeleteSubtreeTaskName jobs.
func NewDeleteSubtreeTask(d Deleter) *DeleteSubtreeTask {
	return &DeleteSubtreeTask{deleter: d}
}

func (t *DeleteSubtreeTask) Name() string { return DeleteSubtreeTaskName }

func (t *DeleteSubtreeTask) Handle(ctx context.Context, req DeleteRequest) error {
	return t.deleter.DeleteSubtree(ctx, req.OwnerID, req.NodeID)
}

// SweepTask removes subtrees whose parent no longer exists. Such orphans
// appear when a child is created inside a folder while that folder is being
// deleted, or when a deletion stops partway.
type SweepTask struct {
	deleter  Deleter
	lister   blobstore.OrphanLister
	logger   *slog.Logger
	schedule string
}

// NewSweepTask creates the periodic sweep. An empty schedule selects
// DefaultSweepSchedule.
func NewSweepTask(d Deleter, lister blobstore.OrphanLister, schedule string, log *slog.Logger) *SweepTask {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if log == nil {
		log = logger.NewNope()
	}
	return &SweepTask{deleter: d, lister: lister, schedule: schedule, logger: log}
}

func (t *SweepTask) Name() string     { return SweepTaskName }
func (t *SweepTask) Schedule() string { return t.schedule }

// Handle deletes orphaned subtrees batch by batch until none are left.
func (t *SweepTask) Handle(ctx context.Context) error {
	total := 0
	for range sweepMaxRounds {
		orphans, err := t.lister.ListOrphans(ctx, sweepBatch)
		if err != nil {
			return internal(err)
		}
		if len(orphans) == 0 {
			break
		}

		for _, o := range orphans {
			if err := t.deleter.DeleteSubtree(ctx, o.Metadata.OwnerID, o.ID); err != nil {
				return err
			}
		}
		total += len(orphans)
	}

	if total > 0 {
		t.logger.InfoContext(ctx, "orphan sweep finished", slog.Int("orphans", total))
	}
	return nil
}
