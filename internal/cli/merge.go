package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/scipdex/internal/indexer"
	"github.com/dshills/scipdex/internal/merger"
	"github.com/dshills/scipdex/pkg/scip"
)

var (
	mergeOutput   string
	mergeCompress bool
	mergeRoot     string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <index>...",
	Short: "Merge partial indexes into one",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indexes := make([]*scip.Index, 0, len(args))
		for _, path := range args {
			index, err := indexer.LoadIndex(path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			indexes = append(indexes, index)
		}

		var meta *scip.Metadata
		if mergeRoot != "" {
			meta = &scip.Metadata{
				ToolName:     "scipdex",
				ToolVersion:  Version,
				ProjectRoot:  mergeRoot,
				TextEncoding: scip.EncodingUTF8,
			}
		}

		merged, err := merger.Merge(indexes, meta)
		if err != nil {
			return err
		}

		if err := indexer.SaveIndex(merged, mergeOutput, mergeCompress); err != nil {
			return err
		}
		fmt.Printf("Merged %d indexes: %d documents, %d external symbols -> %s\n",
			len(indexes), len(merged.Documents), len(merged.ExternalSymbols), mergeOutput)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.scip", "merged index output path")
	mergeCmd.Flags().BoolVar(&mergeCompress, "compress", false, "gzip the output index")
	mergeCmd.Flags().StringVar(&mergeRoot, "project-root", "", "override the merged metadata project root")
	rootCmd.AddCommand(mergeCmd)
}
