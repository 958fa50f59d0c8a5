package remind

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Gopher0727/Ideario/internal/hierarchy"
	"github.com/Gopher0727/Ideario/internal/utils"
	"github.com/Gopher0727/Ideario/utils/snowflake"
)

type captureNotifier struct {
	mu  sync.Mutex
	got []hierarchy.Reminder
}

func (c *captureNotifier) Notify(r hierarchy.Reminder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, r)
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func (c *captureNotifier) first() hierarchy.Reminder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.got[0]
}

func TestSchedulerDispatchesDueRemindersOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen, err := snowflake.NewGenerator(snowflake.Config{WorkerID: 1})
	require.NoError(t, err)
	store := hierarchy.NewStore(gen)

	base := time.Date(2025, 5, 11, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Update(func(tx *hierarchy.Tx) error {
		if _, err := tx.AddReminder("renovar pasaporte", base.Add(time.Hour), ""); err != nil {
			return err
		}
		_, err := tx.AddReminder("llamar al dentista", base.Add(3*time.Hour), "")
		return err
	}))

	pool := utils.NewWorkerPool(2, 8, zap.NewNop())
	pool.Start()
	defer pool.Stop()

	notifier := &captureNotifier{}
	sched := NewScheduler(store, notifier, pool, 5*time.Millisecond, zap.NewNop())
	// Frozen two hours past base: the first reminder is due, the second
	// is not.
	sched.now = func() time.Time { return base.Add(2 * time.Hour) }

	sched.Start()
	defer sched.Stop()

	require.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "renovar pasaporte", notifier.first().Message)
	assert.True(t, notifier.first().Sent)

	// Let several more ticks pass; the dispatched reminder must not
	// fire again and the future one must stay quiet.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, notifier.count())

	for _, r := range store.Reminders() {
		switch r.Message {
		case "renovar pasaporte":
			assert.True(t, r.Sent)
		case "llamar al dentista":
			assert.False(t, r.Sent)
		}
	}
}

func TestSchedulerStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen, err := snowflake.NewGenerator(snowflake.Config{WorkerID: 1})
	require.NoError(t, err)
	store := hierarchy.NewStore(gen)

	pool := utils.NewWorkerPool(1, 1, zap.NewNop())
	pool.Start()

	sched := NewScheduler(store, NotifierFunc(func(hierarchy.Reminder) {}), pool, time.Millisecond, zap.NewNop())
	sched.Start()

	// Give the loop a few ticks over an empty store before stopping.
	time.Sleep(10 * time.Millisecond)
	sched.Stop()
	pool.Stop()
}
