package remind

import (
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/Ideario/internal/hierarchy"
	"github.com/Gopher0727/Ideario/internal/utils"
)

// Notifier receives reminders that have come due.
type Notifier interface {
	Notify(r hierarchy.Reminder)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(r hierarchy.Reminder)

func (f NotifierFunc) Notify(r hierarchy.Reminder) { f(r) }

// Scheduler polls the store for due reminders and hands each one to the
// notifier on the worker pool. Collecting a reminder and marking it
// sent happen inside one store transaction, so a reminder is delivered
// at most once no matter how slow the notifier is.
type Scheduler struct {
	store    *hierarchy.Store
	notifier Notifier
	pool     *utils.WorkerPool
	interval time.Duration
	logger   *zap.Logger

	// now is swapped in tests.
	now func() time.Time

	quit chan struct{}
	done chan struct{}
}

// NewScheduler wires a scheduler. It does not start polling; call Start.
func NewScheduler(store *hierarchy.Store, notifier Notifier, pool *utils.WorkerPool, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		pool:     pool,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling goroutine.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop ends polling and waits for the loop to exit. Jobs already handed
// to the worker pool still run; draining the pool is its owner's call.
func (s *Scheduler) Stop() {
	close(s.quit)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.dispatchDue()
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) dispatchDue() {
	var due []hierarchy.Reminder
	err := s.store.Update(func(tx *hierarchy.Tx) error {
		due = tx.CollectDue(s.now())
		return nil
	})
	if err != nil {
		s.logger.Warn("collecting due reminders failed", zap.Error(err))
		return
	}
	for _, r := range due {
		s.pool.Submit(func() { s.notifier.Notify(r) })
	}
	if len(due) > 0 {
		s.logger.Info("dispatched due reminders", zap.Int("count", len(due)))
	}
}
