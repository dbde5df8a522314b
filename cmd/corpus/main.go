package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "corpus",
	Short:         "Inspect quiz question banks offline",
	Long:          "corpus validates question bank files (.csv, .xlsx, .yaml) and previews the quizzes drawn from them.",
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().Bool("strict", false, "Reject rows whose answer letter is not A-D")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sampleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
