package pt

import (
	"context"
	"fmt"
	"sync"
)

// Task is a unit of background work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskPool runs background tasks on a fixed set of goroutines fed by a
// bounded queue. Submit never blocks: when the queue is full the task is
// dropped. Task errors go to their own channel and are logged by a
// dedicated goroutine, so a failing task never reaches the caller that
// submitted it.
type TaskPool struct {
	ctx    context.Context
	cancel context.CancelFunc
	queue  chan Task
	errs   chan error
	logger Logger
	rec    Recorder

	mu     sync.RWMutex
	closed bool

	workers sync.WaitGroup
	drainer sync.WaitGroup
}

// NewTaskPool starts workers goroutines with a queue of queueSize.
func NewTaskPool(workers, queueSize int, logger Logger, rec Recorder) *TaskPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if rec == nil {
		rec = NopRecorder{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &TaskPool{
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan Task, queueSize),
		errs:   make(chan error, workers),
		logger: logger,
		rec:    rec,
	}

	p.drainer.Add(1)
	go p.drainErrors()

	for i := 0; i < workers; i++ {
		p.workers.Add(1)
		go p.work()
	}
	return p
}

// Submit enqueues t. It returns false if the queue is full or the pool is
// closed.
func (p *TaskPool) Submit(t Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- t:
		return true
	default:
		p.logger.Warn("background queue full, task dropped", "task", t.Name)
		p.rec.TaskDropped()
		return false
	}
}

// Close stops accepting tasks, runs what is already queued and waits for
// the workers and the error logger to finish.
func (p *TaskPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.workers.Wait()
	close(p.errs)
	p.drainer.Wait()
	p.cancel()
}

func (p *TaskPool) work() {
	defer p.workers.Done()
	for t := range p.queue {
		if err := t.Run(p.ctx); err != nil {
			p.errs <- fmt.Errorf("%s: %w", t.Name, err)
		}
	}
}

func (p *TaskPool) drainErrors() {
	defer p.drainer.Done()
	for err := range p.errs {
		p.logger.Warn("background task failed", "error", err)
	}
}
