package session

import (
	"context"
	"sync"
	"time"

	"PairView/internal/usecase"

	"github.com/google/uuid"
)

type entry struct {
	ctrl     *usecase.ChartViewController
	lastSeen time.Time
}

// Factory builds the controller of a new session.
type Factory func() *usecase.ChartViewController

// Option configures Registry.
type Option func(*Registry)

// WithClock injects the clock used for idle expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithSizeObserver is called with the session count after it changes.
func WithSizeObserver(fn func(int)) Option {
	return func(r *Registry) { r.onSize = fn }
}

// Registry maps browser session ids to their chart controllers.
// Sessions idle for longer than ttl are dropped.
type Registry struct {
	mu      sync.Mutex
	m       map[string]*entry
	ttl     time.Duration
	factory Factory
	now     func() time.Time
	onSize  func(int)
}

// NewRegistry creates an empty registry.
func NewRegistry(ttl time.Duration, factory Factory, opts ...Option) *Registry {
	r := &Registry{
		m:       make(map[string]*entry),
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the controller of a live session and refreshes its idle timer.
func (r *Registry) Get(id string) (*usecase.ChartViewController, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.m[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.m, id)
		r.sizeChangedLocked()
		return nil, false
	}
	e.lastSeen = now
	return e.ctrl, true
}

// GetOrCreate returns the session for id, creating a fresh one under a new id when id is unknown.
// The returned id is the one the caller should hand back to the browser.
func (r *Registry) GetOrCreate(id string) (string, *usecase.ChartViewController) {
	if ctrl, ok := r.Get(id); ok {
		return id, ctrl
	}

	ctrl := r.factory()
	newID := uuid.NewString()

	r.mu.Lock()
	r.m[newID] = &entry{ctrl: ctrl, lastSeen: r.now()}
	r.sizeChangedLocked()
	r.mu.Unlock()

	return newID, ctrl
}

// Sweep removes idle sessions and returns how many were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.m {
		if r.expired(e, now) {
			delete(r.m, id)
			removed++
		}
	}
	if removed > 0 {
		r.sizeChangedLocked()
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len returns the number of sessions, including idle ones not yet swept.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.lastSeen) > r.ttl
}

func (r *Registry) sizeChangedLocked() {
	if r.onSize != nil {
		r.onSize(len(r.m))
	}
}
