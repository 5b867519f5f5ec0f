// Package memory provides the in-memory storage engine for minikv.
//
// Entries live in a sharded concurrent map (pkg/cmap). Every operation
// touches exactly one key and runs under that key's shard lock, so a Get
// never observes half of a Set and concurrent Sets on one key leave one
// of them in place in full.
//
// Expiry is lazy: an entry past its deadline stays in the map until the
// next Get of that key, which deletes it and reports the key as missing.
// Nothing sweeps expired entries in the background.
package memory
