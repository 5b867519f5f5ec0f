package cmap

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShardCount is the shard count used by New.
const DefaultShardCount = 16

// Map is a string-keyed map split into independently locked shards.
// A key always lands in the same shard, so every single-key operation is
// atomic with respect to other operations on that key.
type Map[V any] struct {
	shards []*shard[V]
	mask   uint64
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New creates a map with DefaultShardCount shards.
func New[V any]() *Map[V] {
	return NewWithShards[V](DefaultShardCount)
}

// NewWithShards creates a map with n shards. n must be a power of two;
// any other value selects DefaultShardCount.
func NewWithShards[V any](n int) *Map[V] {
	if n <= 0 || n&(n-1) != 0 {
		n = DefaultShardCount
	}

	shards := make([]*shard[V], n)
	for i := range shards {
		shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return &Map[V]{shards: shards, mask: uint64(n - 1)}
}

// ShardIndex returns the index of the shard owning key.
func (m *Map[V]) ShardIndex(key string) int {
	return int(xxhash.Sum64String(key) & m.mask)
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	return m.shards[m.ShardIndex(key)]
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (m *Map[V]) Set(key string, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// Delete removes key and reports whether it was present.
func (m *Map[V]) Delete(key string) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	return true
}

// GetOrEvict returns the value stored under key unless stale reports it
// should be dropped, in which case the key is deleted under the same lock.
// evicted is true only when a value was removed by this call.
func (m *Map[V]) GetOrEvict(key string, stale func(V) bool) (val V, ok bool, evicted bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.items[key]
	switch {
	case !exists:
		return val, false, false
	case stale(cur):
		delete(s.items, key)
		return val, false, true
	default:
		return cur, true, false
	}
}

// Count returns the number of entries. Shards are counted one at a time,
// so the total is not a snapshot under concurrent writes.
func (m *Map[V]) Count() int {
	n := 0
	for _, st := range m.Stats() {
		n += st.Count
	}
	return n
}

// ShardCount returns the number of shards.
func (m *Map[V]) ShardCount() int {
	return len(m.shards)
}

// ShardStats holds the entry count of one shard.
type ShardStats struct {
	Index int
	Count int
}

// Stats returns the entry count of every shard, in index order.
func (m *Map[V]) Stats() []ShardStats {
	stats := make([]ShardStats, len(m.shards))
	for i, s := range m.shards {
		s.mu.RLock()
		stats[i] = ShardStats{Index: i, Count: len(s.items)}
		s.mu.RUnlock()
	}
	return stats
}
