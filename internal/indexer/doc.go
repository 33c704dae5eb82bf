// Package indexer drives the streaming indexing pipeline: partition the file
// list into fixed-size chunks, process chunks on a bounded worker pool, and
// emit documents to the consumer in chunk-submission order.
//
// # Basic Usage
//
//	idx := indexer.New(root, extractors, cacheManager)
//
//	for res := range idx.Stream(ctx, paths) {
//	    if res.Err != nil {
//	        log.Printf("skipped %s: %v", res.Path, res.Err)
//	        continue
//	    }
//	    consume(res.Document)
//	}
//
// # Ordering
//
// Emission order is deterministic regardless of worker count or per-file
// latency: chunks are awaited in the order they were submitted, and files
// within a chunk are processed sequentially in list order. This trades some
// raw concurrency for reproducible progress reporting.
//
// # Failure Isolation
//
// Per-file failures are isolated. An unreadable file fails only that file; a
// chunk that exceeds its timeout fails every file in that chunk; the run
// continues with the remaining chunks either way. Only Stop or context
// cancellation halts the whole run, and both are cooperative: they are
// checked at chunk-submission boundaries and in-flight chunks finish.
//
// # Incremental Builds
//
// CreateIncrementalIndex reprocesses only the modified paths, carries
// unchanged documents through from the prior index by path, and always
// recomputes the external-symbol list in full, since it depends on every
// document's imports.
package indexer
