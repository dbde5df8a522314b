package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stemsi/quizgate/internal/corpus"
)

var errBankHasIssues = errors.New("question bank has rejected rows")

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Load a question bank and report rejected or flagged rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		_, report, err := corpus.Load(args[0], corpus.Options{Strict: strict})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, iss := range report.Rejected {
			fmt.Fprintf(out, "rejected line %d (id %q): %s\n", iss.Line, iss.ID, iss.Reason)
		}
		for _, iss := range report.Flagged {
			fmt.Fprintf(out, "flagged  line %d (id %q): %s\n", iss.Line, iss.ID, iss.Reason)
		}
		fmt.Fprintf(out, "%s: %d rows, %d loaded, %d rejected, %d flagged\n",
			report.Source, report.Rows, report.Loaded, len(report.Rejected), len(report.Flagged))

		if len(report.Rejected) > 0 {
			return errBankHasIssues
		}
		return nil
	},
}
