// Package logger provides structured logging for minikv.
//
// It wraps the standard library log/slog:
//
//   - logger.go: handler setup, runtime level control, rotating file output
//   - context.go: context-carried loggers
//   - redact.go: masking of client payloads and credentials
package logger
