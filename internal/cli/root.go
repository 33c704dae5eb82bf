// Package cli implements the scipdex command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/scipdex/internal/cache"
	"github.com/dshills/scipdex/internal/config"
	"github.com/dshills/scipdex/internal/extractor"
	"github.com/dshills/scipdex/internal/indexer"
	"github.com/dshills/scipdex/internal/scanner"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "scipdex",
	Short: "scipdex - incremental code-intelligence index builder",
	Long: `scipdex builds cross-file code-intelligence indexes: per-file symbol
definitions and occurrences, cross-document reference relationships, and
external-symbol lists, cached and rebuilt incrementally.

Example usage:
  scipdex index .                 # Build or update the index
  scipdex validate index.scip     # Check an index against the grammar
  scipdex merge a.scip b.scip -o merged.scip
  scipdex watch .                 # Keep the index fresh while editing`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}
		rootDir, err = filepath.Abs(rootDir)
		if err != nil {
			return err
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./scipdex.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "project root (default is current directory)")
}

// newScanner builds the file scanner from config.
func newScanner() (*scanner.Scanner, error) {
	return scanner.New(rootDir,
		scanner.WithIncludes(cfg.Scanner.Includes...),
		scanner.WithExcludes(cfg.Scanner.Excludes...),
		scanner.WithGitignore(cfg.Scanner.UseGitignore),
	)
}

// newExtractors builds the extractor chain: Go files first, plain fallback
// for everything else.
func newExtractors() ([]extractor.Extractor, error) {
	module, version := moduleInfo(rootDir)
	goEx, err := extractor.NewGoExtractor(module, version)
	if err != nil {
		return nil, err
	}
	return []extractor.Extractor{goEx, extractor.NewFallbackExtractor()}, nil
}

// newIndexer wires the streaming indexer with the configured cache.
func newIndexer(extractors []extractor.Extractor) (*indexer.StreamingIndexer, error) {
	var cm *cache.Manager
	if cfg.Cache.Enabled {
		var err error
		cm, err = cache.NewManager(resolvePath(cfg.Cache.Dir),
			cache.WithMaxMemoryEntries(cfg.Cache.MaxMemoryEntries),
			cache.WithDiskTTL(cfg.Cache.DiskTTL.Std()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
	}
	return indexer.New(rootDir, extractors, cm,
		indexer.WithWorkers(cfg.Indexer.Workers),
		indexer.WithChunkSize(cfg.Indexer.ChunkSize),
		indexer.WithChunkTimeout(cfg.Indexer.ChunkTimeout.Std()),
	), nil
}

// resolvePath anchors a relative config path at the project root.
func resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir, p)
}

// moduleInfo extracts the module path and Go version from go.mod, defaulting
// when absent.
func moduleInfo(dir string) (module, version string) {
	module, version = "main", "HEAD"
	content, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return module, version
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			module = strings.TrimSpace(strings.TrimPrefix(line, "module"))
		}
	}
	return module, version
}
