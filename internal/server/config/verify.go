package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/minikv/internal/telemetry/logger"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// minReadBuffer fits the smallest complete request frame with headroom.
const minReadBuffer = 16

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	r := cfg.Redis
	if strings.TrimSpace(r.Addr) == "" {
		return fmt.Errorf("%w: server.redis.addr is required", ErrInvalid)
	}
	if r.MaxWorkers < 1 {
		return fmt.Errorf("%w: server.redis.max_workers must be at least 1, got %d", ErrInvalid, r.MaxWorkers)
	}
	if r.ReadBuffer < minReadBuffer {
		return fmt.Errorf("%w: server.redis.read_buffer must be at least %d, got %d", ErrInvalid, minReadBuffer, r.ReadBuffer)
	}
	if r.RateLimit < 0 {
		return fmt.Errorf("%w: server.redis.rate_limit must not be negative, got %d", ErrInvalid, r.RateLimit)
	}
	if cfg.Metrics.Addr != "" && cfg.Metrics.Addr == r.Addr {
		return fmt.Errorf("%w: server.metrics.addr conflicts with server.redis.addr", ErrInvalid)
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	n := cfg.ShardCount
	if n <= 0 || n&(n-1) != 0 {
		return fmt.Errorf("%w: storage.shard_count must be a power of two, got %d", ErrInvalid, n)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if cfg.Level == "" {
		return fmt.Errorf("%w: log.level must not be empty", ErrInvalid)
	}
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalid, cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalid, cfg.Format)
	}
	if cfg.File != "" && cfg.MaxSizeMB < 0 {
		return fmt.Errorf("%w: log.max_size_mb must not be negative", ErrInvalid)
	}
	return nil
}
