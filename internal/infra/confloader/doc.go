// Package confloader loads minikv configuration with koanf.
//
// Sources, lowest to highest priority:
//
//  1. Defaults held by the target struct
//  2. A YAML configuration file
//  3. MINIKV_ environment variables
//
// Watcher reports writes to a configuration file through fsnotify so the
// server can apply hot-reloadable settings.
package confloader
