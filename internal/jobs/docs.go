// Package jobs provides scheduled background tasks for the ordering service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Schedules use the six-field format with a leading seconds field.
//
// # Available Jobs
//
// 1. OrderLockSweepJob - Runs every minute by default. Drops idle per-order locks and,
// when the in-memory idempotency store is used, expired idempotency keys.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	sweep := jobs.NewOrderLockSweepJob(locks, keys, jobs.DefaultSweepSchedule, 5*time.Minute, logger)
//	jobManager := jobs.NewJobManager(logger, sweep)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A job whose schedule cannot be parsed fails StartAll, and any job already
// started is stopped again.
package jobs
