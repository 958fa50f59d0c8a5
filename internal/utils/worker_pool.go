package utils

import (
	"sync"

	"go.uber.org/zap"
)

// WorkerPool is a fixed-size goroutine pool with a bounded job queue.
// A full queue blocks Submit instead of rejecting the job; callers that
// cannot afford to block should size the queue accordingly.
type WorkerPool struct {
	jobs      chan func()
	workerNum int
	logger    *zap.Logger
	wg        sync.WaitGroup
	quit      chan struct{}
}

// NewWorkerPool creates a pool with workerNum workers and a queue of
// queueSize pending jobs. Call Start before submitting.
func NewWorkerPool(workerNum, queueSize int, logger *zap.Logger) *WorkerPool {
	if workerNum < 1 {
		workerNum = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		jobs:      make(chan func(), queueSize),
		workerNum: workerNum,
		logger:    logger,
		quit:      make(chan struct{}),
	}
}

// Start launches the workers. A panic in a job is recovered and logged
// so one bad job cannot kill its worker.
func (p *WorkerPool) Start() {
	for i := range p.workerNum {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.jobs:
					func() {
						defer func() {
							if r := recover(); r != nil {
								p.logger.Error("worker recovered from panic",
									zap.Int("worker", workerID), zap.Any("panic", r))
							}
						}()
						job()
					}()
				case <-p.quit:
					return
				}
			}
		}(i)
	}
}

// Submit queues a job, blocking while the queue is full.
func (p *WorkerPool) Submit(job func()) {
	p.jobs <- job
}

// Stop signals the workers and waits for them to exit. Jobs still in
// the queue are dropped; only jobs already picked up finish.
func (p *WorkerPool) Stop() {
	close(p.quit)
	p.wg.Wait()
}
