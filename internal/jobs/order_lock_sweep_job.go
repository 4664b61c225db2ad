package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweep at the start of every minute.
const DefaultSweepSchedule = "0 * * * * *"

// LockSweeper drops per-order locks that have been idle for at least idle.
type LockSweeper interface {
	Sweep(idle time.Duration) int
}

// ExpiredKeySweeper drops expired idempotency keys held in process memory.
type ExpiredKeySweeper interface {
	Sweep() int
}

// OrderLockSweepJob keeps the in-process per-order lock table from growing without
// bound. Every order that ever changed status leaves an entry behind until swept.
type OrderLockSweepJob struct {
	locks    LockSweeper
	keys     ExpiredKeySweeper
	schedule string
	idle     time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewOrderLockSweepJob creates the sweep job. keys may be nil when idempotency
// keys live in Redis, which expires them on its own.
func NewOrderLockSweepJob(
	locks LockSweeper,
	keys ExpiredKeySweeper,
	schedule string,
	idle time.Duration,
	logger *slog.Logger,
) *OrderLockSweepJob {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	return &OrderLockSweepJob{
		locks:    locks,
		keys:     keys,
		schedule: schedule,
		idle:     idle,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "order_lock_sweep_job"),
	}
}

func (j *OrderLockSweepJob) Name() string {
	return "order lock sweep"
}

// Start schedules the sweep. A malformed schedule is reported here.
func (j *OrderLockSweepJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Order lock sweep job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs a single sweep and returns how many lock entries and
// idempotency keys were dropped.
func (j *OrderLockSweepJob) RunOnce(ctx context.Context) (locks, keys int) {
	locks = j.locks.Sweep(j.idle)
	if j.keys != nil {
		keys = j.keys.Sweep()
	}

	if locks > 0 || keys > 0 {
		j.logger.DebugContext(ctx, "Sweep finished", "locks", locks, "idempotency_keys", keys)
	}
	return locks, keys
}

// Stop stops the schedule and waits for a running sweep to finish.
func (j *OrderLockSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Order lock sweep job stopped")
}
