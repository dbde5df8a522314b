package service

import (
	crand "crypto/rand"
	"math/rand/v2"

	"github.com/stemsi/quizgate/internal/model"
)

// Sampler draws session question sets from the bank. It is safe for concurrent
// use: every Prepare call gets its own generator.
type Sampler struct {
	newRand func() *rand.Rand
}

// NewSampler creates a Sampler whose generators are seeded from crypto/rand.
func NewSampler() *Sampler {
	return &Sampler{newRand: seededRand}
}

func seededRand() *rand.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}

// Prepare picks min(count, len(questions)) distinct questions uniformly at
// random and shuffles each one's options, tracking where the correct option
// lands. Questions without an answer key keep CorrectIndex = UnknownOption.
func (s *Sampler) Prepare(questions []model.Question, count int) []model.PreparedQuestion {
	k := min(count, len(questions))
	if k <= 0 {
		return []model.PreparedQuestion{}
	}

	r := s.newRand()
	picks := r.Perm(len(questions))[:k]

	out := make([]model.PreparedQuestion, k)
	for i, idx := range picks {
		out[i] = shuffleOptions(r, questions[idx])
	}
	return out
}

// shuffleOptions applies a uniform permutation to q's option positions.
// shuffled[i] = original[perm[i]], so the correct option moves to the i with
// perm[i] == CorrectOption.
func shuffleOptions(r *rand.Rand, q model.Question) model.PreparedQuestion {
	perm := r.Perm(len(q.Options))
	shuffled := make([]string, len(q.Options))
	correct := model.UnknownOption
	for i, from := range perm {
		shuffled[i] = q.Options[from]
		if q.HasAnswerKey() && from == q.CorrectOption {
			correct = i
		}
	}
	return model.PreparedQuestion{
		ID:           q.ID,
		Prompt:       q.Prompt,
		Options:      shuffled,
		CorrectIndex: correct,
	}
}
