package config

// Default configuration values.
const (
	DefaultRedisAddr  = "127.0.0.1:6379"
	DefaultMaxWorkers = 50
	DefaultReadBuffer = 1024

	DefaultShardCount = 16

	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:       DefaultRedisAddr,
				MaxWorkers: DefaultMaxWorkers,
				ReadBuffer: DefaultReadBuffer,
			},
		},
		Storage: StorageSection{
			ShardCount: DefaultShardCount,
		},
		Log: LogSection{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
	}
}
