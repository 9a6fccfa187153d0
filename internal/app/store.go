package app

import "sync"

// guarded holds a store's state. Transitions are pure functions applied
// under the lock; I/O always happens outside it.
type guarded[S any] struct {
	mu    sync.RWMutex
	state S
}

func (g *guarded[S]) get() S {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *guarded[S]) update(fn func(S) S) S {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = fn(g.state)
	return g.state
}

// Metric and logger names of the domains.
const (
	domainDocuments = "documents"
	domainTasks     = "tasks"
	domainTraining  = "training"
	domainDashboard = "dashboard"
	domainAuth      = "auth"
)
