// Package merger combines partial indexes into one, typically the outputs of
// per-directory or per-shard builds.
package merger

import (
	"errors"
	"log"

	"github.com/dshills/scipdex/pkg/scip"
)

// ErrNoIndexes is returned when Merge is called with nothing to merge.
var ErrNoIndexes = errors.New("no indexes to merge")

// Merge combines indexes into a single index. Documents are deduplicated by
// relative path (first wins, later duplicates logged), external symbols by
// symbol id. Metadata comes from the override when non-nil, otherwise from
// the first input.
func Merge(indexes []*scip.Index, metadata *scip.Metadata) (*scip.Index, error) {
	if len(indexes) == 0 {
		return nil, ErrNoIndexes
	}

	out := &scip.Index{}
	if metadata != nil {
		out.Metadata = *metadata
	} else {
		out.Metadata = indexes[0].Metadata
	}

	seenDocs := make(map[string]bool)
	seenSymbols := make(map[string]bool)
	for _, index := range indexes {
		for _, doc := range index.Documents {
			if seenDocs[doc.RelativePath] {
				log.Printf("merger: dropping duplicate document %s", doc.RelativePath)
				continue
			}
			seenDocs[doc.RelativePath] = true
			out.Documents = append(out.Documents, doc)
		}
		for _, sym := range index.ExternalSymbols {
			if seenSymbols[sym.Symbol] {
				continue
			}
			seenSymbols[sym.Symbol] = true
			out.ExternalSymbols = append(out.ExternalSymbols, sym)
		}
	}
	return out, nil
}
