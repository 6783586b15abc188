package sim

import "sync"

// lockRegistry hands out one mutex per entity id so that read-modify-write
// cycles against the same stock or portfolio never interleave, while
// distinct entities proceed in parallel. Mutexes are created lazily and
// kept for the life of the registry.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[uint]*sync.Mutex)}
}

// lock acquires the mutex for id, creating it on first use. The caller must
// call the returned unlock function.
func (r *lockRegistry) lock(id uint) func() {
	r.mu.Lock()
	m, ok := r.locks[id]
	if !ok {
		m = &sync.Mutex{}
		r.locks[id] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
