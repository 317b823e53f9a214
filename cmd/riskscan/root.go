package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for riskscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "riskscan",
		Short: "Sentiment ranking of 10-K risk factors",
		Long: `riskscan extracts the Risk Factors section (Item 1A) from annual 10-K
filings in PDF, HTML or plain text form and ranks how negative the
disclosed risks are.

Every word of the section is scored with a sentiment lexicon and every
sentence is classified as positive, negative or neutral. The results are
written as CSV tables and summarized in a Markdown report.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
