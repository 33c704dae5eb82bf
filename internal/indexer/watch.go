package indexer

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/scipdex/pkg/scip"
)

// ListFunc enumerates the project's current file paths, relative to the
// indexer root.
type ListFunc func() ([]string, error)

// Watch polls for file changes at the given interval and keeps the index at
// out up to date. The first cycle builds the full index; later cycles rebuild
// incrementally from the modified set and drop documents for deleted files.
// Watch blocks until ctx is cancelled.
func (s *StreamingIndexer) Watch(ctx context.Context, list ListFunc, out string, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	var prior *scip.Index
	modTimes := make(map[string]time.Time)

	build := func() {
		paths, err := list()
		if err != nil {
			log.Printf("indexer: watch listing failed: %v", err)
			return
		}

		modified, current := s.changedPaths(paths, modTimes)
		deleted := false
		if prior != nil {
			before := len(prior.Documents)
			prior = dropDeleted(prior, current)
			deleted = len(prior.Documents) != before
		}
		if prior != nil && len(modified) == 0 && !deleted {
			return
		}

		index, err := s.CreateIncrementalIndex(ctx, modified, prior, nil)
		if err != nil {
			log.Printf("indexer: watch rebuild failed: %v", err)
			return
		}
		prior = index

		if err := SaveIndex(index, out, false); err != nil {
			log.Printf("indexer: watch save failed: %v", err)
			return
		}
		log.Printf("indexer: watch updated %s (%d documents, %d modified)", out, len(index.Documents), len(modified))
	}

	build()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			build()
		}
	}
}

// changedPaths returns the paths whose mod time is new or changed since the
// last cycle, updating modTimes in place, plus the full current path set.
func (s *StreamingIndexer) changedPaths(paths []string, modTimes map[string]time.Time) ([]string, map[string]bool) {
	current := make(map[string]bool, len(paths))
	var modified []string
	for _, rel := range paths {
		current[rel] = true
		info, err := os.Stat(filepath.Join(s.root, rel))
		if err != nil {
			continue
		}
		if prev, ok := modTimes[rel]; !ok || !prev.Equal(info.ModTime()) {
			modified = append(modified, rel)
			modTimes[rel] = info.ModTime()
		}
	}
	for rel := range modTimes {
		if !current[rel] {
			delete(modTimes, rel)
		}
	}
	return modified, current
}

// dropDeleted removes documents whose files no longer exist.
func dropDeleted(index *scip.Index, current map[string]bool) *scip.Index {
	kept := index.Documents[:0]
	for _, doc := range index.Documents {
		if current[doc.RelativePath] {
			kept = append(kept, doc)
		}
	}
	index.Documents = kept
	return index
}
