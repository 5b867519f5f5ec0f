// Package output renders server replies for minikv-cli.
//
// The text format follows redis-cli conventions; the json format emits one
// object per reply for scripting.
package output
