package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type Task = func()

var ErrShuttingDown = errors.New("background tasks are shutting down")

// BackgroundTasks runs fire-and-forget work (email delivery) on a fixed set of
// workers so request handlers never wait for it.
type BackgroundTasks struct {
	log        *slog.Logger
	tasks      chan Task
	maxWorkers int
	wg         sync.WaitGroup
	mu         sync.RWMutex
	closed     bool
}

func New(log *slog.Logger, maxWorkers int, maxTasksQueueSize int) *BackgroundTasks {
	return &BackgroundTasks{
		log:        log,
		maxWorkers: max(maxWorkers, 1),
		tasks:      make(chan Task, maxTasksQueueSize),
	}
}

func (t *BackgroundTasks) Run() {
	t.wg.Add(t.maxWorkers)
	for i := 0; i < t.maxWorkers; i++ {
		go func(worker int) {
			defer t.wg.Done()
			log := t.log.With("worker", worker)
			for task := range t.tasks {
				t.execute(log, task)
			}
		}(i)
	}
}

func (t *BackgroundTasks) execute(log *slog.Logger, task Task) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("background task panicked", "err", err)
		}
	}()
	task()
	log.Debug("task done")
}

// Add queues a task. It blocks while the queue is full and fails once
// Shutdown has been called.
func (t *BackgroundTasks) Add(task Task) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return ErrShuttingDown
	}
	t.tasks <- task
	return nil
}

func (t *BackgroundTasks) Shutdown(ctx context.Context) error {
	const op = "tasks.BackgroundTasks.Shutdown"
	log := t.log.With("op", op)
	log.Info("shutting down background tasks")
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.tasks)
	}
	t.mu.Unlock()
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		log.Warn("graceful shutdown timed out.. forcing exit", "err", ctx.Err())
		return ctx.Err()
	case <-done:
		log.Info("background tasks successfully stopped")
		return nil
	}
}

func (t *BackgroundTasks) IsEmpty() bool {
	return len(t.tasks) == 0
}
