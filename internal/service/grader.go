package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/stemsi/quizgate/internal/model"
)

// ErrInvalidSession is returned when a submission references a session the
// store does not know (never issued, expired or reset).
var ErrInvalidSession = errors.New("invalid session")

// RewardPlaceholder is handed out instead of the reward token when none is
// configured, so the misconfiguration is visible to whoever earned it.
const RewardPlaceholder = "flag{INVALID_FLAG_CONTACT_ADMIN}"

// Grader scores submissions against a session's hidden answer keys.
type Grader struct {
	passPercent int
	rewardToken string
}

// NewGrader creates a Grader. A submission scoring passPercent or more earns
// rewardToken (or RewardPlaceholder when rewardToken is empty).
func NewGrader(passPercent int, rewardToken string) *Grader {
	return &Grader{passPercent: passPercent, rewardToken: rewardToken}
}

// Grade counts correct answers for sess. Answers for unknown question ids are
// ignored; when an id repeats only its last answer counts. Malformed or out of
// range choices count as incorrect. Grade never modifies sess.
func (g *Grader) Grade(sess *model.QuizSession, answers []model.SubmittedAnswer) (model.GradeResult, error) {
	if sess == nil {
		return model.GradeResult{}, ErrInvalidSession
	}

	latest := make(map[string]json.RawMessage, len(answers))
	for _, a := range answers {
		if id := answerID(a.QuestionID); id != "" {
			latest[id] = a.Choice
		}
	}

	res := model.GradeResult{Total: len(sess.Questions)}
	for _, q := range sess.Questions {
		raw, ok := latest[q.ID]
		if !ok {
			continue
		}
		choice, ok := parseChoice(raw, len(q.Options))
		if !ok {
			res.Malformed++
			continue
		}
		if q.CorrectIndex != model.UnknownOption && choice == q.CorrectIndex {
			res.Correct++
		}
	}

	res.Percent = percent(res.Correct, res.Total)
	if res.Percent >= g.passPercent {
		res.Reward = g.rewardToken
		if res.Reward == "" {
			res.Reward = RewardPlaceholder
		}
	}
	return res, nil
}

// percent rounds half to even, so 1 of 8 is 12 and 3 of 8 is 38.
func percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(correct) * 100 / float64(total)))
}

// answerID normalizes a question id sent as a JSON string or number.
func answerID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

// parseChoice accepts an integer, an integral float or a numeric string and
// checks it against the option count.
func parseChoice(raw json.RawMessage, optionCount int) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var choice int
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		choice = n
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, false
		}
		if i, err := n.Int64(); err == nil {
			choice = int(i)
			break
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > float64(optionCount) {
			return 0, false
		}
		choice = int(f)
	}

	if choice < 0 || choice >= optionCount {
		return 0, false
	}
	return choice, true
}
