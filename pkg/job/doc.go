// Package job runs background tasks on [github.com/riverqueue/river].
//
// Every task shares one River job kind; the task name in the job arguments
// selects the handler from the registry built by [WithTask] and
// [WithScheduledTask]. Scheduled tasks use 5-field cron expressions parsed
// by [github.com/robfig/cron/v3].
//
//	m, err := job.NewManager(pool,
//		job.WithLogger(log),
//		job.WithTask(tree.NewDeleteSubtreeTask(engine)),
//		job.WithScheduledTask(tree.NewSweepTask(engine, store, "*/15 * * * *")),
//	)
//	if err := job.Migrate(ctx, pool); err != nil {
//		return err
//	}
//	if err := m.Start(ctx); err != nil {
//		return err
//	}
//	defer m.Stop(context.Background())
//
//	err = m.Enqueue(ctx, "tree.delete_subtree", payload, job.Unique(nodeID, time.Minute))
package job
