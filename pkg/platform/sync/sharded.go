// Package sync provides keyed locking primitives used to serialize writes
// per resource without a single global lock.
package sync

import (
	"hash/fnv"
	"sync"
)

const defaultShards = 32

// KeyedMutex serializes operations that share a key while letting unrelated
// keys proceed in parallel. Keys are distributed across a fixed set of mutex
// shards by hash, so two distinct keys may occasionally contend; correctness
// only requires that equal keys always map to the same shard.
type KeyedMutex struct {
	shards []sync.Mutex
}

// NewKeyedMutex creates a KeyedMutex with the default shard count.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{shards: make([]sync.Mutex, defaultShards)}
}

// Lock acquires the shard lock owning the given key.
// Empty keys map to shard 0.
func (m *KeyedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the shard lock owning the given key.
func (m *KeyedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

func (m *KeyedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(m.shards)))
}
