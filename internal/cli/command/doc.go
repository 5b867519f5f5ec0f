// Package command provides the minikv-cli command definitions.
//
//   - root.go: application, global flags, exit handling
//   - kv.go: ping, echo, get and set
//
// Each command opens one connection, sends one request and prints the
// reply with the selected output format.
package command
