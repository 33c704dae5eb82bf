package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/scipdex/internal/catalog"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scipdex %s\n", Version)
		fmt.Printf("Build Mode: %s\n", catalog.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", catalog.DriverName)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
