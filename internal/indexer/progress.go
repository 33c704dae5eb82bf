package indexer

import (
	"log"
	"sync"
	"time"
)

// maxRecentErrors bounds the error tail carried in progress snapshots.
const maxRecentErrors = 10

// Progress is an immutable snapshot of one indexing run. Processed counts
// every attempted file, success or failure; Failed is the failing subset.
type Progress struct {
	TotalFiles  int
	Processed   int
	Failed      int
	CacheHits   int
	CurrentFile string
	StartTime   time.Time
	Errors      []string
}

// Percent returns completion as 0-100.
func (p Progress) Percent() float64 {
	if p.TotalFiles == 0 {
		return 100
	}
	return float64(p.Processed) / float64(p.TotalFiles) * 100
}

// Elapsed returns time since the run started.
func (p Progress) Elapsed() time.Duration {
	return time.Since(p.StartTime)
}

// ETA estimates remaining time from the average per-file rate so far. Zero
// until at least one file has been processed.
func (p Progress) ETA() time.Duration {
	if p.Processed == 0 {
		return 0
	}
	perFile := p.Elapsed() / time.Duration(p.Processed)
	return perFile * time.Duration(p.TotalFiles-p.Processed)
}

// Callback receives a progress snapshot after every file. Callbacks run
// synchronously on the worker goroutine; panics are recovered and logged.
type Callback func(Progress)

// tracker is the lock-protected counter block shared between workers and the
// caller.
type tracker struct {
	mu        sync.Mutex
	total     int
	processed int
	failed    int
	cacheHits int
	current   string
	start     time.Time
	errors    []string
	callbacks []Callback
}

func (t *tracker) register(cb Callback) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, cb)
	t.mu.Unlock()
}

func (t *tracker) reset(total int) {
	t.mu.Lock()
	t.total = total
	t.processed = 0
	t.failed = 0
	t.cacheHits = 0
	t.current = ""
	t.start = time.Now()
	t.errors = nil
	t.mu.Unlock()
}

func (t *tracker) complete(file string, cacheHit bool) {
	t.mu.Lock()
	t.processed++
	if cacheHit {
		t.cacheHits++
	}
	t.current = file
	snap, cbs := t.snapshotLocked()
	t.mu.Unlock()
	fire(snap, cbs)
}

func (t *tracker) fail(file, msg string) {
	t.mu.Lock()
	t.processed++
	t.failed++
	t.current = file
	t.appendErrorLocked(msg)
	snap, cbs := t.snapshotLocked()
	t.mu.Unlock()
	fire(snap, cbs)
}

// failN fails n files at once, recording a single error message. Used when a
// whole chunk times out.
func (t *tracker) failN(n int, msg string) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	t.processed += n
	t.failed += n
	t.appendErrorLocked(msg)
	snap, cbs := t.snapshotLocked()
	t.mu.Unlock()
	fire(snap, cbs)
}

func (t *tracker) appendErrorLocked(msg string) {
	t.errors = append(t.errors, msg)
	if len(t.errors) > maxRecentErrors {
		t.errors = t.errors[len(t.errors)-maxRecentErrors:]
	}
}

func (t *tracker) snapshot() Progress {
	t.mu.Lock()
	snap, _ := t.snapshotLocked()
	t.mu.Unlock()
	return snap
}

func (t *tracker) snapshotLocked() (Progress, []Callback) {
	return Progress{
		TotalFiles:  t.total,
		Processed:   t.processed,
		Failed:      t.failed,
		CacheHits:   t.cacheHits,
		CurrentFile: t.current,
		StartTime:   t.start,
		Errors:      append([]string(nil), t.errors...),
	}, t.callbacks
}

// fire invokes callbacks outside the tracker lock. A panicking callback never
// takes down a worker.
func fire(snap Progress, cbs []Callback) {
	for _, cb := range cbs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("indexer: progress callback panicked: %v", r)
				}
			}()
			cb(snap)
		}()
	}
}
