// Package main provides the entry point for minikv-server.
//
// minikv-server serves a subset of the Redis protocol (PING, ECHO, GET
// and SET with PX expiry) from an in-memory store.
//
// Usage:
//
//	minikv-server [--config minikv.yaml] [--version]
//
// Every setting can also be given through MINIKV_* environment variables,
// for example MINIKV_SERVER_REDIS_ADDR=0.0.0.0:6379. When a config file
// is used, edits to its log level are applied without a restart.
package main
