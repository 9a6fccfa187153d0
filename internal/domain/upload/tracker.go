package upload

import (
	"sync"

	"github.com/google/uuid"
)

// Tracker keeps a 0..100 progress value per upload in flight. Uploads are
// keyed by a client-generated id because the server id only exists once the
// request completes.
type Tracker struct {
	mu       sync.RWMutex
	progress map[string]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{progress: make(map[string]int)}
}

// Begin registers a new upload at 0% and returns its id.
func (t *Tracker) Begin() string {
	id := uuid.NewString()
	t.mu.Lock()
	t.progress[id] = 0
	t.mu.Unlock()
	return id
}

// Update sets the progress of id, clamped to 0..100. Progress never goes
// backwards and unknown ids are ignored.
func (t *Tracker) Update(id string, pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.progress[id]
	if !ok || pct <= cur {
		return
	}
	t.progress[id] = pct
}

// Finish drops the entry of id, whatever the outcome of the upload.
func (t *Tracker) Finish(id string) {
	t.mu.Lock()
	delete(t.progress, id)
	t.mu.Unlock()
}

// Get returns the progress of id.
func (t *Tracker) Get(id string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.progress[id]
	return p, ok
}

// Snapshot returns a copy of every upload in flight.
func (t *Tracker) Snapshot() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]int, len(t.progress))
	for id, p := range t.progress {
		out[id] = p
	}
	return out
}

// Len returns the number of uploads in flight.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.progress)
}
