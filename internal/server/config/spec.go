package config

// ServerConfig is the root configuration for minikv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// RedisConfig configures the Redis protocol server.
type RedisConfig struct {
	Addr string `koanf:"addr"`
	// MaxWorkers bounds concurrently served connections.
	MaxWorkers int `koanf:"max_workers"`
	// ReadBuffer is the per-connection read chunk size in bytes.
	ReadBuffer int `koanf:"read_buffer"`
	// RateLimit is commands per second per connection. 0 disables it.
	RateLimit int `koanf:"rate_limit"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the /metrics listen address. Empty disables the listener.
	Addr string `koanf:"addr"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// ShardCount is the number of lock shards. Must be a power of two.
	ShardCount int `koanf:"shard_count"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// File enables rotating file output. Empty logs to stdout.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}
