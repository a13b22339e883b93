package sync

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_LockUnlock(t *testing.T) {
	m := NewShardedMutex()

	m.Lock("did:ex:alice")
	m.Unlock("did:ex:alice")

	// Empty key maps to shard 0
	m.Lock("")
	m.Unlock("")
}

func TestShardedMutex_SameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0
	var wg sync.WaitGroup

	for range 100 {
		wg.Go(func() {
			m.Lock("did:ex:same")
			defer m.Unlock("did:ex:same")
			counter++
		})
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestShardedMutex_LockKeys(t *testing.T) {
	t.Run("duplicate keys and shared shards do not self-deadlock", func(t *testing.T) {
		m := NewShardedMutexN(1)
		unlock := m.LockKeys("did:ex:a", "did:ex:b", "did:ex:a")
		unlock()
		unlock = m.LockKeys("did:ex:a")
		unlock()
	})

	t.Run("opposite key order from many goroutines completes", func(t *testing.T) {
		m := NewShardedMutexN(4)
		counter := 0
		var wg sync.WaitGroup
		for i := range 200 {
			a, b := fmt.Sprintf("did:ex:%d", i%7), fmt.Sprintf("did:ex:%d", (i+3)%7)
			if i%2 == 0 {
				a, b = b, a
			}
			wg.Go(func() {
				unlock := m.LockKeys(a, b, "did:ex:counter")
				defer unlock()
				counter++
			})
		}
		wg.Wait()
		assert.Equal(t, 200, counter)
	})
}

func TestShardedMutex_ShardBounds(t *testing.T) {
	m := NewShardedMutexN(0)
	assert.Len(t, m.shards, 1)

	m = NewShardedMutex()
	for i := range 1000 {
		shard := m.shardFor(fmt.Sprintf("did:web:example.com:user:%d", i))
		assert.GreaterOrEqual(t, shard, 0)
		assert.Less(t, shard, defaultShards)
	}
}
