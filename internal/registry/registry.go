// Package registry tracks outstanding signed-request operations keyed by
// correlation id, from pending through completed or expired. It is the sole
// owner of that state; callers only insert, complete, and poll.
package registry

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Status is the poll outcome for a correlation id.
type Status int

const (
	// StatusExpired covers both entries whose TTL lapsed and ids that never
	// existed; the two are equally unrecoverable to the caller.
	StatusExpired Status = iota
	StatusPending
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	default:
		return "expired"
	}
}

// Registry holds pending requests of type P and completed results of type R.
// Completed results outlive their pending entry only long enough for a
// poller to observe them once.
type Registry[P, R any] struct {
	mu        sync.Mutex
	pending   *ttlcache.Cache[string, P]
	completed *ttlcache.Cache[string, R]

	pendingTTL   time.Duration
	completedTTL time.Duration
}

// New creates a registry and starts its background expiry sweep.
func New[P, R any](pendingTTL, completedTTL time.Duration) *Registry[P, R] {
	r := &Registry[P, R]{
		pending: ttlcache.New[string, P](
			ttlcache.WithTTL[string, P](pendingTTL),
			ttlcache.WithDisableTouchOnHit[string, P](),
		),
		completed: ttlcache.New[string, R](
			ttlcache.WithTTL[string, R](completedTTL),
			ttlcache.WithDisableTouchOnHit[string, R](),
		),
		pendingTTL:   pendingTTL,
		completedTTL: completedTTL,
	}
	go r.pending.Start()
	go r.completed.Start()
	return r
}

// Begin records a new pending request under id. The entry expires on its own
// if no completion arrives within the pending TTL.
func (r *Registry[P, R]) Begin(id string, payload P) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.Set(id, payload, r.pendingTTL)
}

// Pending returns the pending payload for id, if it exists and has not
// expired. Expired entries are removed on read.
func (r *Registry[P, R]) Pending(id string) (P, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item := r.pending.Get(id)
	if item == nil {
		var zero P
		return zero, false
	}
	return item.Value(), true
}

// Complete stores the result for id and removes any pending entry under the
// same id. Storing twice overwrites idempotently; duplicate wallet callback
// retries are expected.
func (r *Registry[P, R]) Complete(id string, result R) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completed.Set(id, result, r.completedTTL)
	r.pending.Delete(id)
}

// Poll reports the state of id. Once a completion is stored it is visible to
// every subsequent poll until its own TTL lapses.
func (r *Registry[P, R]) Poll(id string) (Status, R) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item := r.completed.Get(id); item != nil {
		return StatusCompleted, item.Value()
	}

	var zero R
	if item := r.pending.Get(id); item != nil {
		return StatusPending, zero
	}
	return StatusExpired, zero
}

// Stop halts the background sweep goroutines.
func (r *Registry[P, R]) Stop() {
	r.pending.Stop()
	r.completed.Stop()
}
