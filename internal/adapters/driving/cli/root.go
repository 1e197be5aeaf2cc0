// Package cli implements the askdoc command line interface. Commands
// hold no business logic; they drive the QA service injected at startup.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driving"
	"github.com/askdoc-labs/askdoc-cli/internal/logger"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	// verboseFlag enables debug logging to stderr.
	verboseFlag bool

	// qaService is the driving port behind every command. Set through
	// SetQAService before Execute.
	qaService driving.QAService
)

// errNotConfigured is returned when a command runs without injection,
// which only happens in tests that skip setup.
var errNotConfigured = errors.New("qa service not configured")

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "Ask questions about your documents",
	Long: `askdoc ingests documents (PDF, DOCX, plain text), indexes them with
hybrid dense + BM25 retrieval, and answers questions grounded in their
content.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetQAService injects the question-answering service.
func SetQAService(s driving.QAService) {
	qaService = s
}

// Execute runs the root command. An interrupt cancels the command
// context, which stops long-running commands such as watch.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
