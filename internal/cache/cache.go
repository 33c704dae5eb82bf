package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dshills/scipdex/pkg/scip"
)

const (
	// DefaultMaxMemoryEntries caps the in-process tier.
	DefaultMaxMemoryEntries = 1000
	// DefaultDiskTTL bounds on-disk growth independent of hash checks.
	DefaultDiskTTL = 24 * time.Hour
	// DefaultDir is the cache root when none is configured.
	DefaultDir = ".scipdex_cache"

	typeDocument = "document"
	typeSymbol   = "symbol"
)

// entry wraps a cached artifact with its bookkeeping metadata.
type entry struct {
	document    *scip.Document
	symbol      *scip.SymbolInformation
	createdAt   time.Time
	fileHash    string
	accessCount int
	lastAccess  time.Time
}

// Stats is a point-in-time snapshot of cache performance counters.
type Stats struct {
	Hits             int64
	Misses           int64
	Invalidations    int64
	MemoryEntries    int
	MaxMemoryEntries int
	Dir              string
}

// HitRate returns hits / (hits + misses), or 0 with no traffic.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Manager is the two-tier cache. Safe for concurrent use.
type Manager struct {
	dir              string
	maxMemoryEntries int
	diskTTL          time.Duration

	mu            sync.Mutex
	memory        map[string]*entry
	hits          int64
	misses        int64
	invalidations int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxMemoryEntries overrides the memory tier capacity.
func WithMaxMemoryEntries(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxMemoryEntries = n
		}
	}
}

// WithDiskTTL overrides the disk entry expiry.
func WithDiskTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.diskTTL = ttl
		}
	}
}

// NewManager creates a cache manager rooted at dir, creating it if needed.
func NewManager(dir string, opts ...Option) (*Manager, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	m := &Manager{
		dir:              dir,
		maxMemoryEntries: DefaultMaxMemoryEntries,
		diskTTL:          DefaultDiskTTL,
		memory:           make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// GetDocument returns the cached document for path if the file's content hash
// still matches. A hash mismatch evicts the stale entry from both tiers and
// counts as a miss.
func (m *Manager) GetDocument(path string) (*scip.Document, bool) {
	currentHash, err := FileHash(path)
	if err != nil {
		// Unreadable file: nothing to serve, let the pipeline surface the
		// read error itself.
		m.mu.Lock()
		m.misses++
		m.mu.Unlock()
		return nil, false
	}

	key := cacheKey(typeDocument, path)

	m.mu.Lock()
	if e, ok := m.memory[key]; ok {
		if e.fileHash == currentHash {
			e.accessCount++
			e.lastAccess = time.Now()
			m.hits++
			doc := e.document.Clone()
			m.mu.Unlock()
			return doc, true
		}
		delete(m.memory, key)
		m.invalidations++
	}
	m.mu.Unlock()

	// Fall through to the disk tier.
	e := m.loadFromDisk(key)
	if e == nil {
		m.mu.Lock()
		m.misses++
		m.mu.Unlock()
		return nil, false
	}
	if e.fileHash != currentHash || e.document == nil {
		m.removeDiskEntry(key)
		m.mu.Lock()
		m.invalidations++
		m.misses++
		m.mu.Unlock()
		return nil, false
	}

	m.mu.Lock()
	m.memory[key] = e
	m.evictLocked()
	m.hits++
	doc := e.document.Clone()
	m.mu.Unlock()
	return doc, true
}

// PutDocument caches a document keyed by its file's current content hash. The
// memory write always happens; the disk write is best-effort.
func (m *Manager) PutDocument(path string, doc *scip.Document) {
	hash, err := FileHash(path)
	if err != nil {
		log.Printf("cache: cannot hash %s, not caching: %v", path, err)
		return
	}
	key := cacheKey(typeDocument, path)
	e := &entry{
		document:  doc.Clone(),
		createdAt: time.Now(),
		fileHash:  hash,
	}

	m.mu.Lock()
	m.memory[key] = e
	m.evictLocked()
	m.mu.Unlock()

	m.saveToDisk(key, e)
}

// GetSymbol returns cached symbol information by id. Symbol entries track no
// file, so there is no hash check.
func (m *Manager) GetSymbol(id string) (*scip.SymbolInformation, bool) {
	key := cacheKey(typeSymbol, id)

	m.mu.Lock()
	if e, ok := m.memory[key]; ok && e.symbol != nil {
		e.accessCount++
		e.lastAccess = time.Now()
		m.hits++
		sym := e.symbol.Clone()
		m.mu.Unlock()
		return sym, true
	}
	m.mu.Unlock()

	e := m.loadFromDisk(key)
	if e == nil || e.symbol == nil {
		m.mu.Lock()
		m.misses++
		m.mu.Unlock()
		return nil, false
	}

	m.mu.Lock()
	m.memory[key] = e
	m.evictLocked()
	m.hits++
	sym := e.symbol.Clone()
	m.mu.Unlock()
	return sym, true
}

// PutSymbol caches symbol information by id.
func (m *Manager) PutSymbol(id string, sym *scip.SymbolInformation) {
	key := cacheKey(typeSymbol, id)
	e := &entry{
		symbol:    sym.Clone(),
		createdAt: time.Now(),
	}

	m.mu.Lock()
	m.memory[key] = e
	m.evictLocked()
	m.mu.Unlock()

	m.saveToDisk(key, e)
}

// Invalidate removes the document entry for path from both tiers.
func (m *Manager) Invalidate(path string) {
	key := cacheKey(typeDocument, path)

	m.mu.Lock()
	if _, ok := m.memory[key]; ok {
		delete(m.memory, key)
	}
	m.invalidations++
	m.mu.Unlock()

	m.removeDiskEntry(key)
}

// InvalidateAll clears the memory tier and deletes every disk entry.
func (m *Manager) InvalidateAll() error {
	m.mu.Lock()
	m.memory = make(map[string]*entry)
	m.invalidations++
	m.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(m.dir, "*.cache"))
	if err != nil {
		return err
	}
	var firstErr error
	for _, f := range matches {
		if err := os.Remove(f); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats returns a snapshot of cache counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Hits:             m.hits,
		Misses:           m.misses,
		Invalidations:    m.invalidations,
		MemoryEntries:    len(m.memory),
		MaxMemoryEntries: m.maxMemoryEntries,
		Dir:              m.dir,
	}
}

// evictLocked removes the oldest 10% of entries, ranked by last access (else
// creation time), once the memory tier exceeds capacity. Batching amortizes
// eviction cost versus strict LRU. Caller holds m.mu.
func (m *Manager) evictLocked() {
	if len(m.memory) <= m.maxMemoryEntries {
		return
	}

	type aged struct {
		key  string
		when time.Time
	}
	entries := make([]aged, 0, len(m.memory))
	for k, e := range m.memory {
		when := e.lastAccess
		if when.IsZero() {
			when = e.createdAt
		}
		entries = append(entries, aged{key: k, when: when})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].when.Before(entries[j].when)
	})

	toRemove := len(entries) / 10
	if toRemove < 1 {
		toRemove = 1
	}
	for i := 0; i < toRemove; i++ {
		delete(m.memory, entries[i].key)
	}
}

// cacheKey builds the disk-stable key "<type>_<hash(identifier)>".
func cacheKey(cacheType, identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return cacheType + "_" + hex.EncodeToString(sum[:])
}

// FileHash computes the hex-encoded SHA-256 of a file's content.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ContentHash computes the hex-encoded SHA-256 of in-memory content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
