package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/scipdex/internal/cache"
	"github.com/dshills/scipdex/internal/catalog"
	"github.com/dshills/scipdex/internal/indexer"
	"github.com/dshills/scipdex/internal/linker"
	"github.com/dshills/scipdex/internal/validator"
	"github.com/dshills/scipdex/pkg/scip"
)

var (
	indexOutput   string
	indexCompress bool
	indexFull     bool
	indexStrict   bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build or incrementally update the project index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			var err error
			rootDir, err = filepath.Abs(args[0])
			if err != nil {
				return err
			}
		}
		return runIndex()
	},
}

func init() {
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "index output path (default from config)")
	indexCmd.Flags().BoolVar(&indexCompress, "compress", false, "gzip the output index")
	indexCmd.Flags().BoolVar(&indexFull, "full", false, "ignore prior state and rebuild everything")
	indexCmd.Flags().BoolVar(&indexStrict, "strict", false, "fail when validation reports errors")
	rootCmd.AddCommand(indexCmd)
}

func runIndex() error {
	start := time.Now()

	sc, err := newScanner()
	if err != nil {
		return err
	}
	paths, err := sc.Scan()
	if err != nil {
		return err
	}
	fmt.Printf("Scanning %s: %d files\n", rootDir, len(paths))

	extractors, err := newExtractors()
	if err != nil {
		return err
	}
	idx, err := newIndexer(extractors)
	if err != nil {
		return err
	}
	attachProgressBar(idx)

	cat, err := catalog.Open(resolvePath(cfg.Catalog.Path))
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	module, _ := moduleInfo(rootDir)
	ctx := context.Background()
	project, err := cat.GetOrCreateProject(ctx, rootDir, module)
	if err != nil {
		return err
	}

	manifest, err := hashManifest(paths)
	if err != nil {
		return err
	}
	changes, err := cat.DiffManifest(ctx, project.ID, manifest)
	if err != nil {
		return err
	}

	output := indexOutput
	if output == "" {
		output = resolvePath(cfg.Output.Path)
	}

	index, err := buildIndex(idx, paths, changes, output)
	if err != nil {
		return err
	}

	goEx := extractors[0]
	added := linker.New(goEx).Link(index)

	report := validator.ValidateIndex(index)
	for _, warning := range report.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	for _, issue := range report.Errors {
		fmt.Printf("  error: %s\n", issue)
	}
	if !report.Valid() && indexStrict {
		return fmt.Errorf("index failed validation with %d errors", len(report.Errors))
	}

	if err := indexer.SaveIndex(index, output, indexCompress); err != nil {
		return err
	}

	if err := cat.ReplaceManifest(ctx, project.ID, manifest); err != nil {
		return err
	}
	if err := cat.TouchProject(ctx, project.ID); err != nil {
		return err
	}
	progress := idx.Progress()
	if err := cat.RecordBuild(ctx, &catalog.Build{
		ProjectID:       project.ID,
		IndexPath:       output,
		Documents:       len(index.Documents),
		ExternalSymbols: len(index.ExternalSymbols),
		FailedFiles:     progress.Failed,
		Duration:        time.Since(start),
	}); err != nil {
		return err
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Documents:        %d\n", len(index.Documents))
	fmt.Printf("  External symbols: %d\n", len(index.ExternalSymbols))
	fmt.Printf("  Relationships:    %d added\n", added)
	fmt.Printf("  Cache hits:       %d\n", progress.CacheHits)
	fmt.Printf("  Failed files:     %d\n", progress.Failed)
	fmt.Printf("  Duration:         %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("\nIndex stored at: %s\n", output)
	return nil
}

// buildIndex picks incremental or full depending on prior state.
func buildIndex(idx *indexer.StreamingIndexer, paths []string, changes *catalog.Changes, output string) (*scip.Index, error) {
	ctx := context.Background()
	meta := &scip.Metadata{
		ToolName:     "scipdex",
		ToolVersion:  Version,
		ProjectRoot:  rootDir,
		TextEncoding: scip.EncodingUTF8,
	}

	if !indexFull {
		if prior, err := indexer.LoadIndex(output); err == nil {
			fmt.Printf("Incremental build: %d modified, %d deleted\n",
				len(changes.Modified), len(changes.Deleted))
			dropDocuments(prior, changes.Deleted)
			return idx.CreateIncrementalIndex(ctx, changes.Modified, prior, meta)
		}
	}
	return idx.BuildIndex(ctx, paths, meta)
}

// dropDocuments removes documents for deleted paths in place.
func dropDocuments(index *scip.Index, deleted []string) {
	if len(deleted) == 0 {
		return
	}
	gone := make(map[string]bool, len(deleted))
	for _, p := range deleted {
		gone[p] = true
	}
	kept := index.Documents[:0]
	for _, doc := range index.Documents {
		if !gone[doc.RelativePath] {
			kept = append(kept, doc)
		}
	}
	index.Documents = kept
}

// hashManifest computes the current path->content-hash map.
func hashManifest(paths []string) (map[string]string, error) {
	manifest := make(map[string]string, len(paths))
	for _, rel := range paths {
		hash, err := cache.FileHash(filepath.Join(rootDir, rel))
		if err != nil {
			// Unreadable files are reported during indexing instead.
			continue
		}
		manifest[rel] = hash
	}
	return manifest, nil
}
