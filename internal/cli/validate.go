package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/scipdex/internal/indexer"
	"github.com/dshills/scipdex/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <index>",
	Short: "Check an index against the interchange grammar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := indexer.LoadIndex(args[0])
		if err != nil {
			return err
		}

		report := validator.ValidateIndex(index)
		for _, warning := range report.Warnings {
			fmt.Printf("warning: %s\n", warning)
		}
		for _, issue := range report.Errors {
			fmt.Printf("error: %s\n", issue)
		}

		if !report.Valid() {
			return fmt.Errorf("%s: %d errors, %d warnings", args[0], len(report.Errors), len(report.Warnings))
		}
		fmt.Printf("%s: valid (%d documents, %d warnings)\n", args[0], len(index.Documents), len(report.Warnings))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
