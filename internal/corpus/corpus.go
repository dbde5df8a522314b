// Package corpus loads the question bank once at startup and exposes it as an
// immutable, ordered collection.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/quizgate/internal/model"
)

// ErrCorpusUnavailable is returned when the bank source is missing or yields
// no usable questions. Load still returns an empty Corpus alongside it.
var ErrCorpusUnavailable = errors.New("question bank unavailable")

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported question bank format")

// Corpus is the read-only question bank.
type Corpus struct {
	questions []model.Question
}

// New builds a Corpus from already validated questions. The input is copied.
func New(questions []model.Question) *Corpus {
	qs := make([]model.Question, len(questions))
	for i, q := range questions {
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		q.Options = opts
		qs[i] = q
	}
	return &Corpus{questions: qs}
}

// All returns the bank in load order. Callers must treat it as read-only.
func (c *Corpus) All() []model.Question {
	if c == nil {
		return nil
	}
	return c.questions
}

// Len returns the number of questions in the bank.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.questions)
}

// Options controls load-time validation.
type Options struct {
	// Strict rejects rows whose answer letter cannot be resolved instead of
	// keeping them with an unknown answer key.
	Strict bool
}

// RowIssue describes one row that was rejected or flagged during load.
type RowIssue struct {
	Line   int
	ID     string
	Reason string
}

// LoadReport summarizes a load.
type LoadReport struct {
	Source   string
	Rows     int
	Loaded   int
	Rejected []RowIssue
	Flagged  []RowIssue
}

// Log writes one line per rejected or flagged row plus a summary.
func (r *LoadReport) Log(log zerolog.Logger) {
	for _, iss := range r.Rejected {
		log.Warn().Int("line", iss.Line).Str("question_id", iss.ID).Str("reason", iss.Reason).Msg("Question rejected")
	}
	for _, iss := range r.Flagged {
		log.Warn().Int("line", iss.Line).Str("question_id", iss.ID).Str("reason", iss.Reason).Msg("Question has no usable answer key")
	}
	log.Info().
		Str("source", r.Source).
		Int("rows", r.Rows).
		Int("loaded", r.Loaded).
		Int("rejected", len(r.Rejected)).
		Int("flagged", len(r.Flagged)).
		Msg("Question bank loaded")
}

// rawRow is a bank row before validation, independent of the file format.
type rawRow struct {
	Line    int
	ID      string
	Prompt  string
	Options []string
	Answer  string
}

// Load reads the bank at path. The format is chosen by extension: .csv, .xlsx,
// .yaml or .yml. On ErrCorpusUnavailable the returned Corpus is empty, not nil.
func Load(path string, opts Options) (*Corpus, *LoadReport, error) {
	report := &LoadReport{Source: path}

	if _, err := os.Stat(path); err != nil {
		return New(nil), report, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}

	var (
		rows []rawRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".yaml", ".yml":
		rows, err = readYAML(path)
	default:
		return New(nil), report, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return New(nil), report, fmt.Errorf("read %s: %w", path, err)
	}

	c := build(rows, opts, report)
	if c.Len() == 0 {
		return c, report, fmt.Errorf("%w: no usable questions in %s", ErrCorpusUnavailable, path)
	}
	return c, report, nil
}

// build validates raw rows into questions, filling report as it goes.
func build(rows []rawRow, opts Options, report *LoadReport) *Corpus {
	report.Rows = len(rows)
	seen := make(map[string]struct{}, len(rows))
	questions := make([]model.Question, 0, len(rows))

	for _, r := range rows {
		id := strings.TrimSpace(r.ID)
		reject := func(reason string) {
			report.Rejected = append(report.Rejected, RowIssue{Line: r.Line, ID: id, Reason: reason})
		}

		if id == "" {
			reject("missing id")
			continue
		}
		if strings.TrimSpace(r.Prompt) == "" {
			reject("missing question text")
			continue
		}
		if _, dup := seen[id]; dup {
			reject("duplicate id")
			continue
		}
		if len(r.Options) != model.OptionCount {
			reject(fmt.Sprintf("expected %d options, got %d", model.OptionCount, len(r.Options)))
			continue
		}
		if blank := blankOption(r.Options); blank >= 0 {
			reject(fmt.Sprintf("option %c is empty", 'A'+blank))
			continue
		}

		correct := model.AnswerLetterIndex(r.Answer)
		if correct == model.UnknownOption {
			issue := RowIssue{Line: r.Line, ID: id, Reason: fmt.Sprintf("unresolvable answer %q", r.Answer)}
			if opts.Strict {
				report.Rejected = append(report.Rejected, issue)
				continue
			}
			report.Flagged = append(report.Flagged, issue)
		}

		seen[id] = struct{}{}
		questions = append(questions, model.Question{
			ID:            id,
			Prompt:        r.Prompt,
			Options:       r.Options,
			CorrectOption: correct,
		})
	}

	report.Loaded = len(questions)
	return &Corpus{questions: questions}
}

func blankOption(opts []string) int {
	for i, o := range opts {
		if strings.TrimSpace(o) == "" {
			return i
		}
	}
	return -1
}
