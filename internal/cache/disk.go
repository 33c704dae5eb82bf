package cache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/scipdex/pkg/scip"
)

// diskEntry is the serialized form of a cache entry. Exactly one of Document
// or Symbol is set, matching the key's type prefix.
type diskEntry struct {
	Document    *scip.Document          `json:"document,omitempty"`
	Symbol      *scip.SymbolInformation `json:"symbol,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	FileHash    string                  `json:"file_hash,omitempty"`
	AccessCount int                     `json:"access_count"`
	LastAccess  time.Time               `json:"last_access,omitempty"`
}

func (m *Manager) diskPath(key string) string {
	return filepath.Join(m.dir, key+".cache")
}

// saveToDisk persists an entry best-effort. Failures are logged, never fatal:
// the memory tier still serves the value.
func (m *Manager) saveToDisk(key string, e *entry) {
	de := diskEntry{
		Document:    e.document,
		Symbol:      e.symbol,
		CreatedAt:   e.createdAt,
		FileHash:    e.fileHash,
		AccessCount: e.accessCount,
		LastAccess:  e.lastAccess,
	}
	data, err := json.Marshal(de)
	if err != nil {
		log.Printf("cache: failed to serialize entry %s: %v", key, err)
		return
	}
	if err := os.WriteFile(m.diskPath(key), data, 0o644); err != nil {
		log.Printf("cache: failed to write entry %s: %v", key, err)
	}
}

// loadFromDisk reads an entry, enforcing the TTL lazily: an expired file is
// deleted and treated as absent.
func (m *Manager) loadFromDisk(key string) *entry {
	path := m.diskPath(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if time.Since(info.ModTime()) > m.diskTTL {
		if err := os.Remove(path); err != nil {
			log.Printf("cache: failed to remove expired entry %s: %v", key, err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("cache: failed to read entry %s: %v", key, err)
		return nil
	}
	var de diskEntry
	if err := json.Unmarshal(data, &de); err != nil {
		log.Printf("cache: failed to decode entry %s: %v", key, err)
		m.removeDiskEntry(key)
		return nil
	}
	return &entry{
		document:    de.Document,
		symbol:      de.Symbol,
		createdAt:   de.CreatedAt,
		fileHash:    de.FileHash,
		accessCount: de.AccessCount,
		lastAccess:  time.Now(),
	}
}

func (m *Manager) removeDiskEntry(key string) {
	if err := os.Remove(m.diskPath(key)); err != nil && !os.IsNotExist(err) {
		log.Printf("cache: failed to remove entry %s: %v", key, err)
	}
}
