package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/askdoc-labs/askdoc-cli/internal/logger"
	"github.com/askdoc-labs/askdoc-cli/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest new documents",
	Long: `Watches the directory for new or changed document files (.pdf, .docx,
.txt, .md) and ingests each one as it settles. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce,
		"quiet period before a changed file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errNotConfigured
	}

	ctx := cmd.Context()
	dir := args[0]

	events, err := watcher.New(dir, watcher.WithDebounce(watchDebounce)).Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s\n", dir)
	for path := range events {
		documentID, err := qaService.EnsureDocument(ctx, path)
		if err != nil {
			logger.Warn("Failed to ingest %s: %v", path, err)
			cmd.PrintErrf("Failed to ingest %s: %v\n", path, err)
			continue
		}
		cmd.Printf("Ingested %s as %s\n", path, documentID)
	}
	return nil
}
