// Package cache implements the two-tier artifact cache used by the indexing
// pipeline: an in-process map with batched LRU eviction and a persistent
// on-disk store, both keyed by file content hash.
//
// # Invalidation
//
// Every document lookup recomputes the tracked file's content hash. A
// mismatch is a forced miss: the stale entry is removed from both tiers and
// the caller reprocesses the file. Entries are immutable once written, so a
// racing Put from two workers is harmless — both computed the same value for
// the same content hash and last writer wins.
//
// # Disk tier
//
// One file per cache key, named <type>_<hash>.cache under the cache root,
// holding a JSON-serialized entry with payload and access metadata. Disk
// entries expire after a fixed TTL independent of hash checks; expired files
// are deleted lazily on the next lookup. Disk writes are best-effort: an IO
// or serialization failure is logged and the memory tier still serves the
// value.
//
// Cache misses are reported as a boolean, never as an error, so callers can
// tell "miss" from "broken" without unwinding control flow.
package cache
