package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/scipdex/internal/cache"
	"github.com/dshills/scipdex/internal/extractor"
	"github.com/dshills/scipdex/pkg/scip"
)

// stubExtractor builds one-symbol documents with controllable latency. It
// handles every path.
type stubExtractor struct {
	delay       func(path string) time.Duration
	extractions atomic.Int64
}

func (s *stubExtractor) Language() string              { return "stub" }
func (s *stubExtractor) SupportedExtensions() []string { return []string{".txt"} }
func (s *stubExtractor) CanHandle(path string) bool    { return true }

func (s *stubExtractor) CreateDocument(relativePath string, content []byte) (*scip.Document, error) {
	if s.delay != nil {
		time.Sleep(s.delay(relativePath))
	}
	s.extractions.Add(1)
	name := filepath.Base(relativePath)
	return &scip.Document{
		RelativePath: relativePath,
		Language:     s.Language(),
		Symbols: []*scip.SymbolInformation{
			{Symbol: "local " + name, DisplayName: name, Kind: scip.KindFile,
				Documentation: []string{string(content)}},
		},
		Occurrences: []*scip.Occurrence{
			{Symbol: "local " + name, Range: scip.Range{EndLine: 1}, Roles: scip.RoleDefinition},
		},
	}, nil
}

func (s *stubExtractor) ExternalSymbols(docs []*scip.Document) []*scip.SymbolInformation {
	if len(docs) == 0 {
		return nil
	}
	return []*scip.SymbolInformation{
		{Symbol: "stub pm shared v1 dep", DisplayName: "dep", Kind: scip.KindModule},
	}
}

func (s *stubExtractor) BuildCrossDocumentRelationships(docs []*scip.Document, index *scip.Index) (int, bool) {
	return 0, true
}

func (s *stubExtractor) FileImports(doc *scip.Document) map[string]string { return nil }

func (s *stubExtractor) QualifiedSymbol(doc *scip.Document, sym *scip.SymbolInformation) (string, bool) {
	return "", false
}

// writeFiles creates n files named f000.txt.. under a temp root and returns
// the root plus the relative paths in order.
func writeFiles(t *testing.T, n int) (string, []string) {
	t.Helper()
	root := t.TempDir()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rel := fmt.Sprintf("f%03d.txt", i)
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte("content-"+rel), 0o644))
		paths = append(paths, rel)
	}
	return root, paths
}

func collect(ch <-chan Result) []Result {
	var out []Result
	for res := range ch {
		out = append(out, res)
	}
	return out
}

func TestStream_EmitsInInputOrder(t *testing.T) {
	root, paths := writeFiles(t, 20)
	// Later files finish sooner, so completion order inverts input order.
	stub := &stubExtractor{delay: func(p string) time.Duration {
		var i int
		fmt.Sscanf(filepath.Base(p), "f%03d.txt", &i)
		return time.Duration(20-i) * time.Millisecond
	}}

	idx := New(root, []extractor.Extractor{stub}, nil,
		WithWorkers(4), WithChunkSize(3))

	results := collect(idx.Stream(context.Background(), paths))
	require.Len(t, results, len(paths))
	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, paths[i], res.Path)
	}
	assert.Equal(t, StateCompleted, idx.State())
}

func TestStream_FileErrorIsolated(t *testing.T) {
	root, paths := writeFiles(t, 4)
	withMissing := append([]string{paths[0], "missing.txt"}, paths[1:]...)

	idx := New(root, []extractor.Extractor{&stubExtractor{}}, nil, WithChunkSize(2))
	results := collect(idx.Stream(context.Background(), withMissing))
	require.Len(t, results, len(withMissing))

	var fileErr *FileError
	require.Error(t, results[1].Err)
	require.ErrorAs(t, results[1].Err, &fileErr)
	assert.Equal(t, "missing.txt", fileErr.Path)

	for i, res := range results {
		if i == 1 {
			continue
		}
		assert.NoError(t, res.Err)
	}

	assert.Equal(t, StateFailedPartial, idx.State())
	snap := idx.Progress()
	assert.Equal(t, 5, snap.Processed)
	assert.Equal(t, 1, snap.Failed)
	assert.NotEmpty(t, snap.Errors)
}

func TestStream_ChunkTimeout(t *testing.T) {
	root, paths := writeFiles(t, 4)
	// First chunk stalls, second is instant.
	stub := &stubExtractor{delay: func(p string) time.Duration {
		if p == paths[0] || p == paths[1] {
			return 300 * time.Millisecond
		}
		return 0
	}}

	idx := New(root, []extractor.Extractor{stub}, nil,
		WithWorkers(1), WithChunkSize(2), WithChunkTimeout(50*time.Millisecond))

	results := collect(idx.Stream(context.Background(), paths))
	require.Len(t, results, 4)

	var timeoutErr *ChunkTimeoutError
	require.ErrorAs(t, results[0].Err, &timeoutErr)
	assert.Equal(t, 0, timeoutErr.Chunk)
	require.ErrorAs(t, results[1].Err, &timeoutErr)

	assert.NoError(t, results[2].Err)
	assert.NoError(t, results[3].Err)

	snap := idx.Progress()
	assert.Equal(t, 4, snap.Processed)
	assert.Equal(t, 2, snap.Failed)
	assert.Equal(t, StateFailedPartial, idx.State())
}

func TestStream_StopIsCooperative(t *testing.T) {
	root, paths := writeFiles(t, 30)
	stub := &stubExtractor{delay: func(string) time.Duration { return 10 * time.Millisecond }}

	idx := New(root, []extractor.Extractor{stub}, nil, WithWorkers(1), WithChunkSize(1))
	ch := idx.Stream(context.Background(), paths)

	first := <-ch
	require.NoError(t, first.Err)
	idx.Stop()
	results := append([]Result{first}, collect(ch)...)

	assert.Less(t, len(results), len(paths), "stop prevents later chunk submission")
	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, paths[i], res.Path, "emitted results remain an input-order prefix")
	}
	assert.Equal(t, StateStopped, idx.State())
}

func TestStream_SecondRunUsesCache(t *testing.T) {
	root, paths := writeFiles(t, 6)
	stub := &stubExtractor{}
	cm, err := cache.NewManager(filepath.Join(root, ".cache"))
	require.NoError(t, err)

	idx := New(root, []extractor.Extractor{stub}, cm, WithChunkSize(2))

	first := collect(idx.Stream(context.Background(), paths))
	require.Len(t, first, 6)
	assert.Equal(t, int64(6), stub.extractions.Load())

	second := collect(idx.Stream(context.Background(), paths))
	require.Len(t, second, 6)
	assert.Equal(t, int64(6), stub.extractions.Load(), "cache hits skip extraction")

	for i := range first {
		assert.True(t, second[i].CacheHit)
		assert.Equal(t, first[i].Document, second[i].Document, "cached output identical")
	}
	assert.Equal(t, 6, idx.Progress().CacheHits)
}

func TestStream_ChangedFileReextracted(t *testing.T) {
	root, paths := writeFiles(t, 2)
	stub := &stubExtractor{}
	cm, err := cache.NewManager(filepath.Join(root, ".cache"))
	require.NoError(t, err)

	idx := New(root, []extractor.Extractor{stub}, cm)
	collect(idx.Stream(context.Background(), paths))
	require.Equal(t, int64(2), stub.extractions.Load())

	require.NoError(t, os.WriteFile(filepath.Join(root, paths[0]), []byte("changed"), 0o644))

	results := collect(idx.Stream(context.Background(), paths))
	assert.Equal(t, int64(3), stub.extractions.Load(), "hash change forces reprocessing")
	assert.False(t, results[0].CacheHit)
	assert.True(t, results[1].CacheHit)
}

func TestStream_CallbackPanicRecovered(t *testing.T) {
	root, paths := writeFiles(t, 3)
	idx := New(root, []extractor.Extractor{&stubExtractor{}}, nil)

	var calls atomic.Int64
	idx.OnProgress(func(Progress) {
		calls.Add(1)
		panic("boom")
	})

	results := collect(idx.Stream(context.Background(), paths))
	require.Len(t, results, 3)
	for _, res := range results {
		assert.NoError(t, res.Err)
	}
	assert.Equal(t, int64(3), calls.Load())
	assert.Equal(t, StateCompleted, idx.State())
}

func TestStream_RejectsConcurrentRun(t *testing.T) {
	root, paths := writeFiles(t, 5)
	stub := &stubExtractor{delay: func(string) time.Duration { return 20 * time.Millisecond }}
	idx := New(root, []extractor.Extractor{stub}, nil, WithWorkers(1), WithChunkSize(1))

	ch := idx.Stream(context.Background(), paths)
	overlapping := collect(idx.Stream(context.Background(), paths))
	require.Len(t, overlapping, 1)
	assert.ErrorIs(t, overlapping[0].Err, ErrAlreadyRunning)

	collect(ch)
	assert.Equal(t, StateCompleted, idx.State())
}

func TestBuildIndex(t *testing.T) {
	root, paths := writeFiles(t, 3)
	idx := New(root, []extractor.Extractor{&stubExtractor{}}, nil)

	index, err := idx.BuildIndex(context.Background(), paths, nil)
	require.NoError(t, err)

	require.Len(t, index.Documents, 3)
	assert.Equal(t, paths[0], index.Documents[0].RelativePath)
	require.Len(t, index.ExternalSymbols, 1)
	assert.Equal(t, "scipdex", index.Metadata.ToolName)
	assert.Equal(t, scip.EncodingUTF8, index.Metadata.TextEncoding)
}

func TestCreateIncrementalIndex(t *testing.T) {
	root, paths := writeFiles(t, 3)
	idx := New(root, []extractor.Extractor{&stubExtractor{}}, nil)

	prior, err := idx.BuildIndex(context.Background(), paths, nil)
	require.NoError(t, err)

	// Modify the middle file and add a new one.
	require.NoError(t, os.WriteFile(filepath.Join(root, paths[1]), []byte("rewritten"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("fresh"), 0o644))

	next, err := idx.CreateIncrementalIndex(context.Background(), []string{paths[1], "new.txt"}, prior, nil)
	require.NoError(t, err)

	require.Len(t, next.Documents, 4)
	assert.Equal(t, paths[0], next.Documents[0].RelativePath)
	assert.Equal(t, paths[1], next.Documents[1].RelativePath)
	assert.Equal(t, paths[2], next.Documents[2].RelativePath)
	assert.Equal(t, "new.txt", next.Documents[3].RelativePath)

	// Unchanged documents carry through untouched.
	assert.Same(t, prior.Documents[0], next.Documents[0])
	assert.Same(t, prior.Documents[2], next.Documents[2])

	// The modified document reflects the new content.
	assert.Contains(t, next.Documents[1].Symbols[0].Documentation[0], "rewritten")

	// External symbols recomputed over the full set.
	require.Len(t, next.ExternalSymbols, 1)
	assert.Equal(t, prior.Metadata, next.Metadata)
}

func TestCreateIncrementalIndex_NilPrior(t *testing.T) {
	root, paths := writeFiles(t, 2)
	idx := New(root, []extractor.Extractor{&stubExtractor{}}, nil)

	index, err := idx.CreateIncrementalIndex(context.Background(), paths, nil, nil)
	require.NoError(t, err)
	assert.Len(t, index.Documents, 2)
}

func TestProgressHelpers(t *testing.T) {
	p := Progress{TotalFiles: 10, Processed: 5, StartTime: time.Now().Add(-time.Second)}
	assert.InDelta(t, 50.0, p.Percent(), 0.01)
	assert.Greater(t, p.Elapsed(), time.Duration(0))
	assert.Greater(t, p.ETA(), time.Duration(0))

	empty := Progress{StartTime: time.Now()}
	assert.Equal(t, 100.0, empty.Percent())
	assert.Equal(t, time.Duration(0), empty.ETA())
}

func TestPartition(t *testing.T) {
	chunks := partition([]string{"a", "b", "c", "d", "e"}, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a", "b"}, chunks[0])
	assert.Equal(t, []string{"e"}, chunks[2])

	assert.Nil(t, partition(nil, 2))
}
