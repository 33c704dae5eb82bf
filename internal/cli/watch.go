package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Keep the index up to date as files change",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			var err error
			rootDir, err = filepath.Abs(args[0])
			if err != nil {
				return err
			}
		}

		sc, err := newScanner()
		if err != nil {
			return err
		}
		extractors, err := newExtractors()
		if err != nil {
			return err
		}
		idx, err := newIndexer(extractors)
		if err != nil {
			return err
		}

		output := resolvePath(cfg.Output.Path)
		fmt.Printf("Watching %s (interval %s), writing %s\n", rootDir, watchInterval, output)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err = idx.Watch(ctx, sc.Scan, output, watchInterval)
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nWatch stopped")
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "poll interval")
	rootCmd.AddCommand(watchCmd)
}
