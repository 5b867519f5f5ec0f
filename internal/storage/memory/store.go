package memory

import (
	"time"

	"github.com/yndnr/minikv/internal/telemetry/metric"
	"github.com/yndnr/minikv/pkg/cmap"
)

// Store is a concurrency-safe key-value store with lazy per-key expiry.
type Store struct {
	entries *cmap.Map[Entry]
	now     func() time.Time
	metrics *metric.Registry
}

// Option configures the Store.
type Option func(*Store)

// WithShardCount sets the number of lock shards (a power of two).
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.entries = cmap.NewWithShards[Entry](n)
	}
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithMetrics records lazy expiries in r.
func WithMetrics(r *metric.Registry) Option {
	return func(s *Store) {
		s.metrics = r
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: cmap.New[Entry](),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Set writes value under key, replacing any previous entry together with
// its deadline. A positive ttl makes the entry expire ttl from now; zero or
// negative means it never expires.
func (s *Store) Set(key, value string, ttl time.Duration) {
	e := Entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl)
	}
	s.entries.Set(key, e)
}

// Get returns the value stored under key.
//
// An expired entry is deleted and reported as missing.
func (s *Store) Get(key string) (string, bool) {
	now := s.now()
	e, ok, evicted := s.entries.GetOrEvict(key, func(e Entry) bool {
		return e.IsExpired(now)
	})
	if evicted {
		s.metrics.IncKeysExpired()
	}
	if !ok {
		return "", false
	}
	return e.Value, true
}

// Delete removes key regardless of its expiry state and reports whether
// an entry was present.
func (s *Store) Delete(key string) bool {
	return s.entries.Delete(key)
}

// Len returns the number of entries held, including expired entries that
// have not been read since their deadline.
func (s *Store) Len() int {
	return s.entries.Count()
}

// ShardStats returns per-shard entry counts.
func (s *Store) ShardStats() []cmap.ShardStats {
	return s.entries.Stats()
}
