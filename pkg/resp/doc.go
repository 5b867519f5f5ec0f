// Package resp implements the subset of the Redis serialization protocol
// (RESP2) spoken by minikv.
//
// Requests are arrays of bulk strings:
//
//	*2\r\n$3\r\nGET\r\n$3\r\nkey\r\n
//
// DecodeCommand parses exactly one such array from the front of a byte
// buffer and reports how many bytes it consumed; AppendCommand is its
// inverse. A null bulk string ($-1) decodes to a nil element.
//
// Replies are limited to four shapes, modelled by Reply: simple status,
// bulk string, null bulk string and the generic error.
//
// All decode failures wrap ErrProtocol. Input that ends before the
// declared frame is complete additionally wraps ErrIncomplete, and frames
// above MaxArrayLen or MaxBulkLen wrap ErrLimitExceeded.
package resp
