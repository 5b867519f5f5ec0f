package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/minikv/internal/server/redisserver"
	"github.com/yndnr/minikv/internal/storage/memory"
)

// KeyCounts defines the preload sizes for benchmarking.
var KeyCounts = []int{5000, 10000, 50000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 5000, 10000}

func keyName(i int) string {
	return fmt.Sprintf("key:%08d", i)
}

// prefillStore writes count keys, each with a one hour TTL.
func prefillStore(store *memory.Store, count int) []string {
	keys := make([]string, count)
	for i := range keys {
		keys[i] = keyName(i)
		store.Set(keys[i], "value", time.Hour)
	}
	return keys
}

// startServer runs a redis server on a loopback port for the benchmark.
func startServer(b *testing.B, store *memory.Store) string {
	b.Helper()
	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.ReadBuffer = 64 * 1024

	srv := redisserver.New(cfg, store, nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		b.Fatalf("Start failed: %v", err)
	}
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// reportMemory reports heap usage after a GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.HeapAlloc)/1024/1024, prefix+"_heap_MB")
}
