package mem

import (
	"context"
	"sync"
)

// InflightTracker records background tasks per key so a foreground caller can
// wait for the task that is about to produce what it needs.
type InflightTracker struct {
	mu    sync.Mutex
	tasks map[string]*task
}

type task struct {
	done chan struct{}
}

func NewInflightTracker() *InflightTracker {
	return &InflightTracker{tasks: make(map[string]*task)}
}

// Start registers a task for key and returns its completion func. A newer
// task replaces an older one; finishing the older one leaves the newer
// registration in place.
func (t *InflightTracker) Start(key string) (done func()) {
	tk := &task{done: make(chan struct{})}

	t.mu.Lock()
	t.tasks[key] = tk
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(tk.done)
			t.mu.Lock()
			if t.tasks[key] == tk {
				delete(t.tasks, key)
			}
			t.mu.Unlock()
		})
	}
}

// Wait blocks until the task registered for key finishes or ctx ends. It
// returns true when there was nothing to wait for or the task finished.
func (t *InflightTracker) Wait(ctx context.Context, key string) bool {
	t.mu.Lock()
	tk, ok := t.tasks[key]
	t.mu.Unlock()
	if !ok {
		return true
	}

	select {
	case <-tk.done:
		return true
	case <-ctx.Done():
		return false
	}
}

// Pending reports whether a task is registered for key.
func (t *InflightTracker) Pending(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tasks[key]
	return ok
}
