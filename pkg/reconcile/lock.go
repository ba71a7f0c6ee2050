package reconcile

import (
	"sync"
)

// keyedMutex serializes work per key. Entries are removed once no goroutine
// holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*refMutex),
	}
}

// Lock blocks until key is free and returns the function that releases it
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()

		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.locks)
}

// appliedCapacities records the desired capacity of every group updated
// during a run, keyed like the group locks. Reads and writes happen while
// the group's lock is held. A nil *appliedCapacities records nothing.
type appliedCapacities struct {
	mu      sync.Mutex
	desired map[string]int
}

func newAppliedCapacities() *appliedCapacities {
	return &appliedCapacities{
		desired: make(map[string]int),
	}
}

func (a *appliedCapacities) get(key string) (int, bool) {
	if a == nil {
		return 0, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	desired, ok := a.desired[key]
	return desired, ok
}

func (a *appliedCapacities) set(key string, desired int) {
	if a == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.desired[key] = desired
}
