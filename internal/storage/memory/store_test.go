package memory

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/minikv/internal/telemetry/metric"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore_SetGet(t *testing.T) {
	store := New()

	t.Run("set and get existing key", func(t *testing.T) {
		store.Set("key1", "hello", 0)

		val, ok := store.Get("key1")
		require.True(t, ok)
		assert.Equal(t, "hello", val)
	})

	t.Run("get non-existing key", func(t *testing.T) {
		val, ok := store.Get("missing")
		assert.False(t, ok)
		assert.Equal(t, "", val)
	})

	t.Run("empty value is a present value", func(t *testing.T) {
		store.Set("empty", "", 0)

		val, ok := store.Get("empty")
		assert.True(t, ok)
		assert.Equal(t, "", val)
	})
}

func TestStore_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))

	store.Set("k", "v", 100*time.Millisecond)

	clock.Advance(50 * time.Millisecond)
	val, ok := store.Get("k")
	require.True(t, ok, "key should still be live at +50ms")
	assert.Equal(t, "v", val)
	assert.Equal(t, 1, store.Len())

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, store.Len(), "expiry is lazy: entry stays until read")

	_, ok = store.Get("k")
	assert.False(t, ok, "key should be absent at +150ms")
	assert.Equal(t, 0, store.Len(), "expired read removes the entry")
}

func TestStore_TTLExpiry_ExactDeadline(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))

	store.Set("k", "v", time.Second)
	clock.Advance(time.Second)

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestStore_TTLExpiry_WallClock(t *testing.T) {
	store := New()

	store.Set("k", "v", 100*time.Millisecond)

	val, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", val)

	time.Sleep(150 * time.Millisecond)

	_, ok = store.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStore_OverwriteReplacesTTL(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))

	store.Set("k", "a", 100*time.Millisecond)
	store.Set("k", "b", 0)

	clock.Advance(time.Hour)

	val, ok := store.Get("k")
	require.True(t, ok, "a ttl from a previous Set must not survive an overwrite")
	assert.Equal(t, "b", val)
}

func TestStore_OverwriteAddsTTL(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))

	store.Set("k", "a", 0)
	store.Set("k", "b", time.Second)

	clock.Advance(2 * time.Second)

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestStore_NonPositiveTTLNeverExpires(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))

	store.Set("zero", "v", 0)
	store.Set("negative", "v", -time.Second)
	clock.Advance(24 * time.Hour)

	_, ok := store.Get("zero")
	assert.True(t, ok)
	_, ok = store.Get("negative")
	assert.True(t, ok)
}

func TestStore_Delete(t *testing.T) {
	store := New()

	assert.False(t, store.Delete("k"), "deleting an absent key reports false")

	store.Set("k", "v", 0)
	assert.True(t, store.Delete("k"))

	_, ok := store.Get("k")
	assert.False(t, ok)
	assert.False(t, store.Delete("k"))
}

func TestStore_DeleteExpiredEntry(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))

	store.Set("k", "v", time.Millisecond)
	clock.Advance(time.Second)

	assert.True(t, store.Delete("k"), "delete ignores expiry state")
	assert.Equal(t, 0, store.Len())
}

func TestStore_ConcurrentSetIsAtomic(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))
	ttl := time.Minute

	for round := 0; round < 200; round++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set("k", "v1", 0)
		}()
		go func() {
			defer wg.Done()
			store.Set("k", "v2", ttl)
		}()
		wg.Wait()

		e, ok := store.entries.Get("k")
		require.True(t, ok)
		switch e.Value {
		case "v1":
			assert.True(t, e.ExpiresAt.IsZero(), "v1 must not carry v2's expiry")
		case "v2":
			assert.Equal(t, clock.Now().Add(ttl), e.ExpiresAt, "v2 must carry its own expiry")
		default:
			t.Fatalf("unexpected value %q", e.Value)
		}
	}
}

func TestStore_ConcurrentMixedAccess(t *testing.T) {
	store := New(WithShardCount(4))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "key-" + strconv.Itoa(i%5)
			for j := 0; j < 200; j++ {
				store.Set(key, strconv.Itoa(j), time.Duration(j%3)*time.Millisecond)
				store.Get(key)
				if j%10 == 0 {
					store.Delete(key)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Len(), 5)
}

func TestStore_ExpiryMetrics(t *testing.T) {
	clock := newFakeClock()
	reg := metric.NewRegistry()
	store := New(WithClock(clock.Now), WithMetrics(reg))

	store.Set("temp", "value", time.Millisecond)
	store.Set("keep", "value", 0)
	clock.Advance(time.Second)

	_, ok := store.Get("temp")
	assert.False(t, ok)
	_, ok = store.Get("temp")
	assert.False(t, ok)
	_, ok = store.Get("keep")
	assert.True(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.KeysExpired), "only the evicting read counts")
}

func TestStore_ShardStats(t *testing.T) {
	store := New(WithShardCount(8))
	for i := 0; i < 40; i++ {
		store.Set("k"+strconv.Itoa(i), "v", 0)
	}

	stats := store.ShardStats()
	require.Len(t, stats, 8)

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	assert.Equal(t, 40, total)
	assert.Equal(t, 40, store.Len())
}

func TestEntry_IsExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, Entry{Value: "v"}.IsExpired(now), "zero deadline never expires")
	assert.False(t, Entry{ExpiresAt: now.Add(time.Second)}.IsExpired(now))
	assert.True(t, Entry{ExpiresAt: now}.IsExpired(now))
	assert.True(t, Entry{ExpiresAt: now.Add(-time.Second)}.IsExpired(now))
}
