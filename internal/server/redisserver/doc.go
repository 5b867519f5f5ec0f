// Package redisserver provides a Redis protocol compatible server for minikv.
//
// Requests are decoded with pkg/resp, parsed into typed commands and
// executed against a Store. Supported commands:
//   - PING
//   - ECHO message
//   - GET key
//   - SET key value [PX milliseconds]
//
// Every command-level or protocol-level failure is answered with the
// generic "-ERR" reply and the connection stays open.
package redisserver
