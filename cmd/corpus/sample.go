package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/stemsi/quizgate/internal/corpus"
	"github.com/stemsi/quizgate/internal/model"
	"github.com/stemsi/quizgate/internal/service"
)

// sampledQuestion is the preview shape; it includes the answer position when
// --answers is given.
type sampledQuestion struct {
	model.QuestionForStudent
	Answer *int `json:"answer,omitempty"`
}

var sampleCmd = &cobra.Command{
	Use:   "sample <path>",
	Short: "Draw one quiz from a question bank and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		n, _ := cmd.Flags().GetInt("count")
		withAnswers, _ := cmd.Flags().GetBool("answers")

		bank, _, err := corpus.Load(args[0], corpus.Options{Strict: strict})
		if err != nil {
			return err
		}

		sess := &model.QuizSession{Questions: service.NewSampler().Prepare(bank.All(), n)}
		view := sess.StudentView()
		out := make([]sampledQuestion, len(view))
		for i := range view {
			out[i] = sampledQuestion{QuestionForStudent: view[i]}
			if withAnswers {
				idx := sess.Questions[i].CorrectIndex
				out[i].Answer = &idx
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	sampleCmd.Flags().IntP("count", "n", 5, "Number of questions to draw")
	sampleCmd.Flags().Bool("answers", false, "Include the correct option index")
}
