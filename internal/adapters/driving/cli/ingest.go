package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [document...]",
	Short: "Ingest documents into the chunk cache",
	Long: `Fetches, extracts and chunks each document so later ask commands can
skip processing. Documents already in the cache are left untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errNotConfigured
	}

	ctx := cmd.Context()
	for _, ref := range args {
		documentID, err := qaService.EnsureDocument(ctx, ref)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", ref, err)
		}
		cmd.Printf("Ingested %s as %s\n", ref, documentID)
	}
	return nil
}
