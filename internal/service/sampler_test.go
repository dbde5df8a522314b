package service

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stemsi/quizgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBank(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:     fmt.Sprintf("q%d", i+1),
			Prompt: fmt.Sprintf("prompt %d", i+1),
			Options: []string{
				fmt.Sprintf("q%d-a", i+1),
				fmt.Sprintf("q%d-b", i+1),
				fmt.Sprintf("q%d-c", i+1),
				fmt.Sprintf("q%d-d", i+1),
			},
			CorrectOption: i % model.OptionCount,
		}
	}
	return qs
}

func byID(qs []model.Question) map[string]model.Question {
	m := make(map[string]model.Question, len(qs))
	for _, q := range qs {
		m[q.ID] = q
	}
	return m
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func TestSamplerPreparedQuestionInvariants(t *testing.T) {
	bank := makeBank(80)
	orig := byID(bank)
	s := NewSampler()

	for round := 0; round < 20; round++ {
		prepared := s.Prepare(bank, 50)
		require.Len(t, prepared, 50)

		seen := make(map[string]struct{}, len(prepared))
		for _, pq := range prepared {
			q, ok := orig[pq.ID]
			require.True(t, ok, "prepared question must come from the bank")

			_, dup := seen[pq.ID]
			require.False(t, dup, "duplicate question %s", pq.ID)
			seen[pq.ID] = struct{}{}

			assert.Equal(t, q.Prompt, pq.Prompt)
			assert.Len(t, pq.Options, len(q.Options))
			assert.Equal(t, sorted(q.Options), sorted(pq.Options))

			require.NotEqual(t, model.UnknownOption, pq.CorrectIndex)
			assert.Equal(t, q.Options[q.CorrectOption], pq.Options[pq.CorrectIndex])
		}
	}
}

func TestSamplerSampleSize(t *testing.T) {
	tests := []struct {
		name     string
		bankSize int
		count    int
		want     int
	}{
		{"smaller bank takes everything", 3, 50, 3},
		{"exact", 5, 5, 5},
		{"subset", 10, 4, 4},
		{"empty bank", 0, 50, 0},
		{"zero count", 10, 0, 0},
		{"negative count", 10, -1, 0},
	}
	s := NewSampler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Prepare(makeBank(tt.bankSize), tt.count)
			require.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSamplerUnknownAnswerKeyPropagates(t *testing.T) {
	bank := makeBank(4)
	bank[2].CorrectOption = model.UnknownOption

	prepared := NewSampler().Prepare(bank, 4)
	for _, pq := range prepared {
		if pq.ID == bank[2].ID {
			assert.Equal(t, model.UnknownOption, pq.CorrectIndex)
		} else {
			assert.NotEqual(t, model.UnknownOption, pq.CorrectIndex)
		}
	}
}

func TestSamplerDoesNotMutateBank(t *testing.T) {
	bank := makeBank(10)
	snapshot := makeBank(10)

	NewSampler().Prepare(bank, 10)
	assert.Equal(t, snapshot, bank)
}

func TestSamplerCallsAreIndependent(t *testing.T) {
	bank := makeBank(40)
	s := NewSampler()

	order := func(ps []model.PreparedQuestion) string {
		out := ""
		for _, p := range ps {
			out += p.ID + ":" + p.Options[0] + ","
		}
		return out
	}
	// 40! * 4^40 orderings; two equal draws mean a shared or fixed seed.
	assert.NotEqual(t, order(s.Prepare(bank, 40)), order(s.Prepare(bank, 40)))
}

func TestSamplerCorrectPositionIsSpread(t *testing.T) {
	bank := makeBank(1)
	s := NewSampler()

	counts := make(map[int]int)
	for i := 0; i < 2000; i++ {
		counts[s.Prepare(bank, 1)[0].CorrectIndex]++
	}
	for pos := 0; pos < model.OptionCount; pos++ {
		assert.Greater(t, counts[pos], 300, "position %d drawn %d times", pos, counts[pos])
	}
}
