package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/scipdex/internal/cache"
	"github.com/dshills/scipdex/internal/extractor"
	"github.com/dshills/scipdex/pkg/scip"
)

// Default tuning. Chunk timeout bounds how long the emitter waits for any one
// chunk before failing all of its files.
const (
	DefaultWorkers      = 4
	DefaultChunkSize    = 100
	DefaultChunkTimeout = 5 * time.Minute
)

// State is the indexer run state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateStopped
	StateFailedPartial
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateStopped:
		return "stopped"
	case StateFailedPartial:
		return "failed-partial"
	default:
		return "unknown"
	}
}

// ErrAlreadyRunning is returned when a second run starts before the first
// finishes. One indexer owns one run at a time.
var ErrAlreadyRunning = errors.New("indexer run already in progress")

// Result is one file's outcome, emitted in deterministic order. Exactly one
// of Document and Err is set.
type Result struct {
	Path     string
	Document *scip.Document
	CacheHit bool
	Err      error
}

// StreamingIndexer processes file lists in chunks on a bounded worker pool.
type StreamingIndexer struct {
	root       string
	extractors []extractor.Extractor
	cache      *cache.Manager

	workers      int
	chunkSize    int
	chunkTimeout time.Duration

	state    atomic.Int32
	running  atomic.Bool
	stopFlag atomic.Bool
	progress tracker
}

// Option configures a StreamingIndexer.
type Option func(*StreamingIndexer)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(s *StreamingIndexer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithChunkSize sets the number of files per chunk.
func WithChunkSize(n int) Option {
	return func(s *StreamingIndexer) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithChunkTimeout sets the per-chunk await timeout.
func WithChunkTimeout(d time.Duration) Option {
	return func(s *StreamingIndexer) {
		if d > 0 {
			s.chunkTimeout = d
		}
	}
}

// New creates an indexer over root. Paths passed to Stream are relative to
// root. cm may be nil to disable caching.
func New(root string, extractors []extractor.Extractor, cm *cache.Manager, opts ...Option) *StreamingIndexer {
	s := &StreamingIndexer{
		root:         root,
		extractors:   extractors,
		cache:        cm,
		workers:      DefaultWorkers,
		chunkSize:    DefaultChunkSize,
		chunkTimeout: DefaultChunkTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnProgress registers a callback fired after every processed file.
func (s *StreamingIndexer) OnProgress(cb Callback) {
	s.progress.register(cb)
}

// Progress returns a snapshot of the current or most recent run.
func (s *StreamingIndexer) Progress() Progress {
	return s.progress.snapshot()
}

// State returns the current run state.
func (s *StreamingIndexer) State() State {
	return State(s.state.Load())
}

// Stop requests a cooperative stop. It is checked at chunk-submission
// boundaries; chunks already submitted finish and their results are emitted.
func (s *StreamingIndexer) Stop() {
	s.stopFlag.Store(true)
}

// chunkJob carries one chunk through the pool. counted tracks how many of its
// files have already hit the progress block, so a timeout can fail exactly
// the remainder.
type chunkJob struct {
	index   int
	files   []string
	results []Result
	done    chan struct{}

	mu        sync.Mutex
	counted   int
	abandoned bool
}

// Stream processes paths and returns a channel of per-file results in
// chunk-submission order. The channel closes when the run finishes. A second
// concurrent call emits a single ErrAlreadyRunning result.
func (s *StreamingIndexer) Stream(ctx context.Context, paths []string) <-chan Result {
	out := make(chan Result)

	if !s.running.CompareAndSwap(false, true) {
		go func() {
			out <- Result{Err: ErrAlreadyRunning}
			close(out)
		}()
		return out
	}

	s.state.Store(int32(StateRunning))
	s.stopFlag.Store(false)
	s.progress.reset(len(paths))

	chunks := partition(paths, s.chunkSize)
	submitted := make(chan *chunkJob, len(chunks))

	// Dispatcher: submit chunks in order, bounded by the pool limit. Stop
	// and context cancellation are honored between submissions.
	go func() {
		defer close(submitted)
		g := new(errgroup.Group)
		g.SetLimit(s.workers)
		for i, files := range chunks {
			if s.stopFlag.Load() || ctx.Err() != nil {
				break
			}
			job := &chunkJob{index: i, files: files, done: make(chan struct{})}
			// Go blocks until a pool slot frees, so the job reaches the
			// emitter (and its timeout clock starts) only once submitted.
			g.Go(func() error {
				s.runChunk(job)
				return nil
			})
			submitted <- job
		}
		_ = g.Wait()
	}()

	// Emitter: await each submitted chunk in order, bounded by the chunk
	// timeout, and forward its results.
	go func() {
		defer close(out)
		for job := range submitted {
			select {
			case <-job.done:
				for _, res := range job.results {
					out <- res
				}
			case <-time.After(s.chunkTimeout):
				s.timeoutChunk(job, out)
			}
		}
		s.finish(ctx)
	}()

	return out
}

// timeoutChunk abandons a chunk and emits a hard failure for every file in
// it, counting only the files its worker had not already reported.
func (s *StreamingIndexer) timeoutChunk(job *chunkJob, out chan<- Result) {
	job.mu.Lock()
	job.abandoned = true
	remaining := len(job.files) - job.counted
	job.mu.Unlock()

	err := &ChunkTimeoutError{Chunk: job.index, Files: job.files, Timeout: s.chunkTimeout}
	s.progress.failN(remaining, err.Error())
	for _, f := range job.files {
		out <- Result{Path: f, Err: err}
	}
}

// runChunk processes a chunk's files sequentially in list order.
func (s *StreamingIndexer) runChunk(job *chunkJob) {
	defer close(job.done)
	for _, rel := range job.files {
		res := s.processFile(rel)

		job.mu.Lock()
		if job.abandoned {
			job.mu.Unlock()
			return
		}
		job.counted++
		job.mu.Unlock()

		job.results = append(job.results, res)
		if res.Err != nil {
			s.progress.fail(rel, res.Err.Error())
		} else {
			s.progress.complete(rel, res.CacheHit)
		}
	}
}

// processFile runs the per-file flow: cache check, read, extract, cache put.
func (s *StreamingIndexer) processFile(rel string) Result {
	full := filepath.Join(s.root, rel)

	if s.cache != nil {
		if doc, ok := s.cache.GetDocument(full); ok {
			return Result{Path: rel, Document: doc, CacheHit: true}
		}
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return Result{Path: rel, Err: &FileError{Path: rel, Err: err}}
	}

	ex := extractor.ForPath(s.extractors, rel)
	if ex == nil {
		return Result{Path: rel, Err: &FileError{Path: rel, Err: errors.New("no extractor for file")}}
	}

	doc, err := ex.CreateDocument(rel, content)
	if err != nil {
		return Result{Path: rel, Err: &FileError{Path: rel, Err: err}}
	}

	if s.cache != nil {
		s.cache.PutDocument(full, doc)
	}
	return Result{Path: rel, Document: doc}
}

// finish records the terminal state for the run.
func (s *StreamingIndexer) finish(ctx context.Context) {
	snap := s.progress.snapshot()
	switch {
	case s.stopFlag.Load() || ctx.Err() != nil:
		s.state.Store(int32(StateStopped))
	case snap.Failed > 0:
		s.state.Store(int32(StateFailedPartial))
	default:
		s.state.Store(int32(StateCompleted))
	}
	s.running.Store(false)
}

// BuildIndex streams paths and assembles the full index: documents in
// emission order, external symbols recomputed across all documents, metadata
// from meta or a default.
func (s *StreamingIndexer) BuildIndex(ctx context.Context, paths []string, meta *scip.Metadata) (*scip.Index, error) {
	index := &scip.Index{Metadata: s.metadata(meta)}
	for res := range s.Stream(ctx, paths) {
		if res.Err != nil {
			if errors.Is(res.Err, ErrAlreadyRunning) {
				return nil, res.Err
			}
			continue
		}
		index.Documents = append(index.Documents, res.Document)
	}
	index.ExternalSymbols = s.externalSymbols(index.Documents)
	return index, ctx.Err()
}

// CreateIncrementalIndex reprocesses only the modified paths and carries all
// other documents through from prior by path. External symbols are always
// recomputed in full. prior may be nil for a fresh build.
func (s *StreamingIndexer) CreateIncrementalIndex(ctx context.Context, modified []string, prior *scip.Index, meta *scip.Metadata) (*scip.Index, error) {
	if prior == nil {
		return s.BuildIndex(ctx, modified, meta)
	}

	rebuilt := make(map[string]*scip.Document, len(modified))
	for res := range s.Stream(ctx, modified) {
		if res.Err != nil {
			if errors.Is(res.Err, ErrAlreadyRunning) {
				return nil, res.Err
			}
			continue
		}
		rebuilt[res.Path] = res.Document
	}

	index := &scip.Index{Metadata: s.metadata(meta)}
	if meta == nil {
		index.Metadata = prior.Metadata
	}

	// Prior documents keep their positions; replacements slot in by path.
	carried := make(map[string]bool, len(prior.Documents))
	for _, doc := range prior.Documents {
		carried[doc.RelativePath] = true
		if replacement, ok := rebuilt[doc.RelativePath]; ok {
			index.Documents = append(index.Documents, replacement)
			continue
		}
		index.Documents = append(index.Documents, doc)
	}
	// Newly added files append in modified-list order.
	for _, rel := range modified {
		if doc, ok := rebuilt[rel]; ok && !carried[rel] {
			index.Documents = append(index.Documents, doc)
		}
	}

	index.ExternalSymbols = s.externalSymbols(index.Documents)
	return index, ctx.Err()
}

// externalSymbols aggregates every extractor's external-symbol list over the
// whole document set, deduplicated by symbol id.
func (s *StreamingIndexer) externalSymbols(docs []*scip.Document) []*scip.SymbolInformation {
	seen := make(map[string]bool)
	var out []*scip.SymbolInformation
	for _, ex := range s.extractors {
		for _, sym := range ex.ExternalSymbols(docs) {
			if seen[sym.Symbol] {
				continue
			}
			seen[sym.Symbol] = true
			out = append(out, sym)
		}
	}
	return out
}

func (s *StreamingIndexer) metadata(meta *scip.Metadata) scip.Metadata {
	if meta != nil {
		return *meta
	}
	return scip.Metadata{
		ToolName:     "scipdex",
		ToolVersion:  "dev",
		ProjectRoot:  s.root,
		TextEncoding: scip.EncodingUTF8,
	}
}

// partition splits paths into fixed-size chunks, preserving order.
func partition(paths []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]string
	for i := 0; i < len(paths); i += size {
		end := i + size
		if end > len(paths) {
			end = len(paths)
		}
		chunks = append(chunks, paths[i:end])
	}
	return chunks
}
