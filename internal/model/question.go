package model

import "strings"

// UnknownOption marks an answer key that could not be resolved. Questions
// carrying it can never be answered correctly.
const UnknownOption = -1

// OptionCount is the number of canonical options every bank question has.
const OptionCount = 4

// Question is one immutable entry of the question bank.
type Question struct {
	ID      string   `json:"id" yaml:"id"`
	Prompt  string   `json:"question" yaml:"question"`
	Options []string `json:"options" yaml:"options"`
	// CorrectOption indexes Options, or is UnknownOption.
	CorrectOption int `json:"-" yaml:"-"`
}

// HasAnswerKey reports whether CorrectOption resolves into Options.
func (q Question) HasAnswerKey() bool {
	return q.CorrectOption >= 0 && q.CorrectOption < len(q.Options)
}

// PreparedQuestion is a bank question as drawn for one session: options in a
// session-specific order and the position of the correct one within it.
type PreparedQuestion struct {
	ID      string
	Prompt  string
	Options []string
	// CorrectIndex indexes Options, or is UnknownOption. Never serialized.
	CorrectIndex int `json:"-"`
}

// QuestionForStudent is the only question shape that leaves the server.
type QuestionForStudent struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// AnswerLetterIndex maps an answer letter (A-D, case-insensitive) to an option
// index. Anything else yields UnknownOption.
func AnswerLetterIndex(letter string) int {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "A":
		return 0
	case "B":
		return 1
	case "C":
		return 2
	case "D":
		return 3
	default:
		return UnknownOption
	}
}
