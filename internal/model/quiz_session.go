package model

import (
	"encoding/json"
	"time"
)

// QuizSession binds an opaque identifier to one drawn, option-shuffled subset
// of the bank. Questions never change after creation.
type QuizSession struct {
	ID        string
	Questions []PreparedQuestion
	CreatedAt time.Time
}

// StudentView returns the session's questions without answer keys.
func (s *QuizSession) StudentView() []QuestionForStudent {
	out := make([]QuestionForStudent, len(s.Questions))
	for i, q := range s.Questions {
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		out[i] = QuestionForStudent{ID: q.ID, Prompt: q.Prompt, Options: opts}
	}
	return out
}

// SubmittedAnswer is one client-supplied (question, choice) pair. Both fields
// are kept raw because clients send ids and choices as numbers or strings.
type SubmittedAnswer struct {
	QuestionID json.RawMessage `json:"id"`
	Choice     json.RawMessage `json:"choice"`
}

// SubmitRequest is the payload for grading a session.
type SubmitRequest struct {
	Session string            `json:"session" binding:"omitempty,max=64"`
	Answers []SubmittedAnswer `json:"answers" binding:"max=1000"`
}

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
	Percent int    `json:"score"`
	Reward  string `json:"flag,omitempty"`
	// Malformed counts answers whose choice could not be read.
	Malformed int `json:"-"`
}

// QuestionsResponse is returned by the questions endpoint.
type QuestionsResponse struct {
	Session   string               `json:"session"`
	Questions []QuestionForStudent `json:"questions"`
}

// ScoreRecord is queued to the score ledger after each graded submission.
type ScoreRecord struct {
	SessionID string    `json:"session_id"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	Percent   int       `json:"percent"`
	Rewarded  bool      `json:"rewarded"`
	GradedAt  time.Time `json:"graded_at"`
}
