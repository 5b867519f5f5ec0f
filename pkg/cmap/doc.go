// Package cmap provides a concurrent map keyed by string.
//
// Keys are spread over a power-of-two number of shards by their xxhash
// digest. Each shard owns a plain Go map guarded by its own RWMutex, so
// operations on keys in different shards never contend, and every
// single-key operation (including the compound ones such as GetOrEvict)
// runs entirely under one shard lock.
//
// Usage:
//
//	m := cmap.NewWithShards[memory.Entry](32)
//	m.Set("key", entry)
//	val, ok := m.Get("key")
//
// Range visits shards one at a time and therefore does not observe a
// consistent snapshot of the whole map.
package cmap
