package cmap

import "iter"

// Range calls fn for every entry, one shard at a time, until fn returns
// false. The shard's read lock is held while fn runs, so fn must not
// write to the map.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		if !s.each(fn) {
			return
		}
	}
}

func (s *shard[V]) each(fn func(string, V) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.items {
		if !fn(k, v) {
			return false
		}
	}
	return true
}

// All returns an iterator over the map with the same locking as Range.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return m.Range
}
