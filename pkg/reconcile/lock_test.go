package reconcile

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	k := newKeyedMutex()

	unlock := k.Lock("aws/web")

	acquired := make(chan struct{})
	go func() {
		release := k.Lock("aws/web")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held key")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	<-acquired

	assert.Eventually(t, func() bool { return k.len() == 0 }, time.Second, 5*time.Millisecond,
		"entries are dropped once released")
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := newKeyedMutex()

	unlockWeb := k.Lock("aws/web")
	defer unlockWeb()

	done := make(chan struct{})
	go func() {
		k.Lock("aws/api")()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("different keys must not block each other")
	}

	assert.Equal(t, 1, k.len())
}

func TestKeyedMutexConcurrentHolders(t *testing.T) {
	k := newKeyedMutex()

	var (
		wg      sync.WaitGroup
		holders int32
		mu      sync.Mutex
		maxSeen int32
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("do/pool")
			defer unlock()

			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
	assert.Equal(t, 0, k.len())
}

func TestAppliedCapacities(t *testing.T) {
	var none *appliedCapacities
	none.set("aws/web", 4)
	_, ok := none.get("aws/web")
	assert.False(t, ok, "nil records nothing")

	a := newAppliedCapacities()
	_, ok = a.get("aws/web")
	assert.False(t, ok)

	a.set("aws/web", 4)
	a.set("aws/web", 2)
	desired, ok := a.get("aws/web")
	assert.True(t, ok)
	assert.Equal(t, 2, desired)

	_, ok = a.get("do/web")
	assert.False(t, ok, "keys are scoped by provider")
}
