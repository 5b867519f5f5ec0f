package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/minikv/internal/infra/buildinfo"
	"github.com/yndnr/minikv/internal/infra/confloader"
	"github.com/yndnr/minikv/internal/infra/shutdown"
	"github.com/yndnr/minikv/internal/server/config"
	"github.com/yndnr/minikv/internal/server/redisserver"
	"github.com/yndnr/minikv/internal/storage/memory"
	"github.com/yndnr/minikv/internal/telemetry/logger"
	"github.com/yndnr/minikv/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("minikv-server " + buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting minikv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Get().Commit,
		"config", *configFile)

	reg := metric.NewRegistry()
	store := memory.New(
		memory.WithShardCount(cfg.Storage.ShardCount),
		memory.WithMetrics(reg),
	)
	if err := reg.Register(metric.NewCollector(store)); err != nil {
		return fmt.Errorf("register store collector: %w", err)
	}

	redisCfg := &redisserver.Config{
		Addr:       cfg.Server.Redis.Addr,
		MaxWorkers: cfg.Server.Redis.MaxWorkers,
		ReadBuffer: cfg.Server.Redis.ReadBuffer,
		RateLimit:  cfg.Server.Redis.RateLimit,
	}
	redisSrv := redisserver.New(redisCfg, store, logger.Slog(log), reg)

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	// Hooks run in reverse order of registration.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down redis server")
		return redisSrv.Shutdown(ctx)
	})

	if err := redisSrv.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}
	go func() {
		select {
		case err := <-redisSrv.Err():
			log.Error("redis server stopped accepting", "error", err)
			shutdownHandler.Trigger("redis server failed")
		case <-shutdownHandler.Done():
		}
	}()

	if addr := cfg.Server.Metrics.Addr; addr != "" {
		metricsSrv := startMetrics(ctx, addr, reg, shutdownHandler)
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsSrv.Shutdown(ctx)
		})
	}

	if *configFile != "" {
		watcher, err := watchConfig(ctx, *configFile, cfg)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully", "reason", shutdownHandler.Reason())
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	lc := logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	if lc.File == "" {
		lc.Output = os.Stdout
	}

	log, err := logger.New(lc)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// startMetrics serves /metrics in the background. A listener failure
// shuts the whole process down.
func startMetrics(ctx context.Context, addr string, reg *metric.Registry, sh *shutdown.Handler) *http.Server {
	log := logger.FromContext(ctx)
	mux := http.NewServeMux()
	mux.Handle("/metrics", metric.Handler(reg.Gatherer()))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
			sh.Trigger("metrics server failed")
		}
	}()
	return srv
}

// watchConfig reapplies the log level whenever the config file changes.
// Other settings take effect on restart.
func watchConfig(ctx context.Context, path string, current *config.ServerConfig) (*confloader.Watcher, error) {
	log := logger.FromContext(ctx)
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(log)))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	level := current.Log.Level
	watcher.OnChange(func(string) {
		next, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if next.Log.Level != level {
			logger.SetLevel(next.Log.Level)
			log.Info("log level changed", "from", level, "to", next.Log.Level)
			level = next.Log.Level
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
