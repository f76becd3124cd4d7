package encounter

import (
	"sync"
	"sync/atomic"
	"time"
)

type registryEntry struct {
	mu      sync.Mutex
	sess    *Session
	owner   string
	touched atomic.Int64
	removed atomic.Bool
}

// Registry holds open sessions keyed by id. Each session has one owner and
// at most one holder at a time.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry returns a registry that evicts sessions idle for longer than
// ttl when Sweep runs. A zero ttl disables eviction.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{entries: make(map[string]*registryEntry), ttl: ttl, now: time.Now}
}

// Add registers s under its id for owner.
func (r *Registry) Add(owner string, s *Session) {
	e := &registryEntry{sess: s, owner: owner}
	e.touched.Store(r.now().UnixNano())
	r.mu.Lock()
	if old, ok := r.entries[s.ID()]; ok {
		old.removed.Store(true)
	}
	r.entries[s.ID()] = e
	r.mu.Unlock()
}

// Acquire locks the session with the given id for owner. The returned
// release func must be called exactly once.
func (r *Registry) Acquire(id, owner string) (*Session, func(), error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	if e.owner != owner {
		return nil, nil, ErrNotOwner
	}
	e.mu.Lock()
	if e.removed.Load() {
		e.mu.Unlock()
		return nil, nil, ErrSessionNotFound
	}
	var once sync.Once
	release := func() {
		once.Do(func() {
			e.touched.Store(r.now().UnixNano())
			e.mu.Unlock()
		})
	}
	return e.sess, release, nil
}

// Remove drops the session. It does not wait for a current holder.
func (r *Registry) Remove(id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return ErrSessionNotFound
	}
	if e.owner != owner {
		return ErrNotOwner
	}
	e.removed.Store(true)
	delete(r.entries, id)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts sessions idle since before now-ttl. Sessions currently held
// are skipped. It returns the number evicted.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-r.ttl).UnixNano()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		if e.touched.Load() > cutoff {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		e.removed.Store(true)
		delete(r.entries, id)
		e.mu.Unlock()
		n++
	}
	return n
}
