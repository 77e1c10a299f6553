package middleware

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	const workers = 16
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.lock("alice@example.com")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)

	// All holders released: the entry must be reclaimed, not leaked.
	km.mu.Lock()
	assert.Empty(t, km.held)
	km.mu.Unlock()
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := newKeyedMutex()

	unlockA := km.lock("alice@example.com")
	done := make(chan struct{})
	go func() {
		unlockB := km.lock("bob@example.com")
		unlockB()
		close(done)
	}()

	// Bob's lock must not wait on Alice's.
	<-done
	unlockA()
}
