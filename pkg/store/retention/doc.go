// Package retention prunes named queries that have not been saved for longer
// than the configured maximum age.
//
// A Pruner performs one pass over the store. A Scheduler runs the pruner on a
// standard cron schedule:
//
//	pruner := retention.NewPruner(s, cfg.Retention, retention.WithMetrics(collector))
//	scheduler := retention.NewScheduler(pruner, cfg.Retention.Schedule)
//	if err := scheduler.Start(ctx); err != nil {
//		return err
//	}
//	defer scheduler.Stop()
//
// Pruning never fails on a query that disappeared between listing and
// deletion; other deletion errors stop the pass and are returned together
// with the number of queries removed so far.
package retention
