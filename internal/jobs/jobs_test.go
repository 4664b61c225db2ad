package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"tableorder/internal/jobs"
	"tableorder/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingSweeper struct {
	calls atomic.Int32
	n     int
}

func (s *countingSweeper) Sweep() int {
	s.calls.Add(1)
	return s.n
}

func TestOrderLockSweepJob_RunOnce(t *testing.T) {
	t.Run("should drop idle locks and expired keys", func(t *testing.T) {
		// Given two used and released locks
		locks := keylock.New()
		for _, key := range []string{"order-1", "order-2"} {
			unlock, err := locks.Lock(context.Background(), key)
			require.NoError(t, err)
			unlock()
		}
		keys := &countingSweeper{n: 3}
		job := jobs.NewOrderLockSweepJob(locks, keys, "", 0, discard)

		// When
		droppedLocks, droppedKeys := job.RunOnce(context.Background())

		// Then
		assert.Equal(t, 2, droppedLocks)
		assert.Equal(t, 3, droppedKeys)
		assert.Zero(t, locks.Len())
	})

	t.Run("should keep a held lock", func(t *testing.T) {
		locks := keylock.New()
		unlock, err := locks.Lock(context.Background(), "order-1")
		require.NoError(t, err)
		defer unlock()

		job := jobs.NewOrderLockSweepJob(locks, nil, "", 0, discard)

		droppedLocks, droppedKeys := job.RunOnce(context.Background())

		assert.Zero(t, droppedLocks)
		assert.Zero(t, droppedKeys)
		assert.Equal(t, 1, locks.Len())
	})
}

func TestOrderLockSweepJob_Start(t *testing.T) {
	t.Run("should run on schedule", func(t *testing.T) {
		keys := &countingSweeper{}
		job := jobs.NewOrderLockSweepJob(keylock.New(), keys, "* * * * * *", time.Minute, discard)

		require.NoError(t, job.Start())
		defer job.Stop()

		assert.Eventually(t, func() bool {
			return keys.calls.Load() > 0
		}, 3*time.Second, 50*time.Millisecond)
	})

	t.Run("should reject a malformed schedule", func(t *testing.T) {
		job := jobs.NewOrderLockSweepJob(keylock.New(), nil, "every minute", time.Minute, discard)

		require.Error(t, job.Start())
	})
}

type fakeJob struct {
	name     string
	startErr error
	log      *[]string
}

func (j fakeJob) Name() string { return j.name }

func (j fakeJob) Start() error {
	if j.startErr != nil {
		return j.startErr
	}
	*j.log = append(*j.log, "start "+j.name)
	return nil
}

func (j fakeJob) Stop() {
	*j.log = append(*j.log, "stop "+j.name)
}

func TestJobManager(t *testing.T) {
	t.Run("should stop jobs in reverse order", func(t *testing.T) {
		var log []string
		jm := jobs.NewJobManager(discard,
			fakeJob{name: "a", log: &log},
			fakeJob{name: "b", log: &log},
		)

		require.NoError(t, jm.StartAll())
		jm.StopAll()

		assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, log)
	})

	t.Run("should stop started jobs when one fails to start", func(t *testing.T) {
		var log []string
		failure := errors.New("bad schedule")
		jm := jobs.NewJobManager(discard,
			fakeJob{name: "a", log: &log},
			fakeJob{name: "b", log: &log, startErr: failure},
			fakeJob{name: "c", log: &log},
		)

		err := jm.StartAll()

		require.ErrorIs(t, err, failure)
		assert.Equal(t, []string{"start a", "stop a"}, log)
	})
}
