package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askQuestions []string
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask [document]",
	Short: "Answer questions about a document",
	Long: `Ingests the document if it has not been seen before, builds the hybrid
retrieval index, and answers every question against it. Questions are
answered concurrently; answers print in the order the questions were
given.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askQuestions, "question", "q", nil, "question to answer (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answers as JSON")
	rootCmd.AddCommand(askCmd)
}

// askResult pairs a question with its answer for JSON output.
type askResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errNotConfigured
	}
	if len(askQuestions) == 0 {
		return fmt.Errorf("at least one --question is required")
	}

	ctx := cmd.Context()
	ref := args[0]

	documentID, err := qaService.EnsureDocument(ctx, ref)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", ref, err)
	}

	if err := qaService.Activate(ctx, documentID); err != nil {
		return fmt.Errorf("activate %s: %w", documentID, err)
	}

	answers := qaService.AnswerAll(ctx, askQuestions)

	if askJSON {
		results := make([]askResult, len(askQuestions))
		for i, q := range askQuestions {
			results[i] = askResult{Question: q, Answer: answers[i]}
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal answers: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for i, q := range askQuestions {
		cmd.Printf("Q: %s\n", q)
		cmd.Printf("A: %s\n", answers[i])
		if i < len(askQuestions)-1 {
			cmd.Println()
		}
	}
	return nil
}
