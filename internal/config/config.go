// Package config loads scipdex configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the project root when no explicit path is
// given.
const DefaultFileName = "scipdex.yaml"

// Duration is a time.Duration that reads and writes Go duration syntax
// ("30s", "5m") in YAML.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds all configuration for the index builder.
type Config struct {
	Indexer IndexerConfig `yaml:"indexer"`
	Cache   CacheConfig   `yaml:"cache"`
	Scanner ScannerConfig `yaml:"scanner"`
	Catalog CatalogConfig `yaml:"catalog"`
	Output  OutputConfig  `yaml:"output"`
}

// IndexerConfig holds worker pool and chunking knobs.
type IndexerConfig struct {
	Workers      int           `yaml:"workers"`
	ChunkSize    int           `yaml:"chunk_size"`
	ChunkTimeout Duration      `yaml:"chunk_timeout"`
}

// CacheConfig holds the two-tier cache knobs.
type CacheConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Dir              string        `yaml:"dir"`
	MaxMemoryEntries int           `yaml:"max_memory_entries"`
	DiskTTL          Duration      `yaml:"disk_ttl"`
}

// ScannerConfig holds file selection patterns.
type ScannerConfig struct {
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	UseGitignore bool     `yaml:"use_gitignore"`
}

// CatalogConfig holds the build-state database location.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig holds index serialization settings.
type OutputConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Indexer: IndexerConfig{
			Workers:      4,
			ChunkSize:    100,
			ChunkTimeout: Duration(5 * time.Minute),
		},
		Cache: CacheConfig{
			Enabled:          true,
			Dir:              ".scipdex_cache",
			MaxMemoryEntries: 1000,
			DiskTTL:          Duration(24 * time.Hour),
		},
		Scanner: ScannerConfig{
			Includes:     []string{"**/*.go"},
			Excludes:     []string{"**/testdata/**"},
			UseGitignore: true,
		},
		Catalog: CatalogConfig{
			Path: ".scipdex_cache/catalog.db",
		},
		Output: OutputConfig{
			Path:     "index.scip",
			Compress: false,
		},
	}
}

// Load reads configuration from a YAML file, layered over the defaults. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadFromDir loads scipdex.yaml from dir, falling back to defaults.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, DefaultFileName))
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
