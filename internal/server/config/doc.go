// Package config provides server configuration for minikv.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default configuration values
//   - verify.go: validation of loaded values
//
// Configuration is loaded via internal/infra/confloader from defaults, an
// optional YAML file and MINIKV_ environment variables.
package config
