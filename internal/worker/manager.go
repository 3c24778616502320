// Package worker runs named long-lived goroutines with a shared shutdown.
package worker

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Manager tracks background workers. A worker that panics is logged and not
// restarted.
type Manager struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	workers map[string]*entry
	nextID  uint64
}

type entry struct {
	id     uint64
	cancel context.CancelFunc
}

func NewManager(parent context.Context) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		ctx:     ctx,
		cancel:  cancel,
		workers: make(map[string]*entry),
	}
}

// Go starts fn under name. A running worker with the same name is stopped first.
func (m *Manager) Go(name string, fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if running, ok := m.workers[name]; ok {
		slog.Warn("Worker already running, replacing it",
			slog.String("type", "worker"),
			slog.String("worker", name),
		)
		running.cancel()
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.nextID++
	e := &entry{id: m.nextID, cancel: cancel}
	m.workers[name] = e

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.forget(name, e.id)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Worker panicked",
					slog.String("type", "worker"),
					slog.String("worker", name),
					slog.Any("panic", r),
				)
			}
		}()

		slog.Debug("Worker started",
			slog.String("type", "worker"),
			slog.String("worker", name),
		)
		fn(ctx)
		slog.Debug("Worker stopped",
			slog.String("type", "worker"),
			slog.String("worker", name),
		)
	}()
}

// forget drops name unless it was replaced by a newer worker.
func (m *Manager) forget(name string, id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.workers[name]; ok && e.id == id {
		e.cancel()
		delete(m.workers, name)
	}
}

// Stop cancels one worker.
func (m *Manager) Stop(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.workers[name]; ok {
		e.cancel()
		delete(m.workers, name)
	}
}

// Shutdown cancels every worker and waits up to timeout for them to return.
func (m *Manager) Shutdown(timeout time.Duration) error {
	m.mu.RLock()
	count := len(m.workers)
	m.mu.RUnlock()

	slog.Info("Shutting down workers",
		slog.String("type", "worker"),
		slog.Int("count", count),
	)
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		slog.Warn("Timed out waiting for workers",
			slog.String("type", "worker"),
			slog.Duration("timeout", timeout),
		)
		return context.DeadlineExceeded
	}
}

// Names lists the running workers, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.workers))
	for name := range m.workers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
