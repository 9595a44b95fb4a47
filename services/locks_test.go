package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerLocksSerializeSamePlayer(t *testing.T) {
	locks := NewPlayerLocks()

	const workers = 64
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(1, 1)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestPlayerLocksDropEntriesWhenReleased(t *testing.T) {
	locks := NewPlayerLocks()

	unlock := locks.Lock(1, 1)
	other := locks.Lock(1, 2)
	other()
	unlock()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}

func TestPlayerLocksDistinctPlayersDoNotBlock(t *testing.T) {
	locks := NewPlayerLocks()

	unlock := locks.Lock(1, 1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := locks.Lock(1, 2)
		u()
		close(done)
	}()
	<-done
}
