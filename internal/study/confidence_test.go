package study_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quizdeck/quizdeck/internal/study"
)

func TestCardHistory_Record(t *testing.T) {
	var h study.CardHistory

	h = h.Record(true)
	h = h.Record(true)
	assert.Equal(t, 2, h.Attempts)
	assert.Equal(t, 2, h.Correct)
	assert.Equal(t, 2, h.Streak)

	h = h.Record(false)
	assert.Equal(t, 3, h.Attempts)
	assert.Equal(t, 2, h.Correct)
	assert.Equal(t, 0, h.Streak, "a miss resets the streak")

	h = h.Record(true)
	assert.Equal(t, 1, h.Streak)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		h    study.CardHistory
		want int
	}{
		{"unseen card", study.CardHistory{}, 0},
		{"just missed", study.CardHistory{Attempts: 4, Correct: 3, Streak: 0}, 0},
		{"streak of one", study.CardHistory{Attempts: 1, Correct: 1, Streak: 1}, 1},
		{"streak of three", study.CardHistory{Attempts: 5, Correct: 4, Streak: 3}, 3},
		{"streak at cap", study.CardHistory{Attempts: 5, Correct: 5, Streak: 5}, 5},
		{"streak beyond cap", study.CardHistory{Attempts: 9, Correct: 9, Streak: 9}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, study.Confidence(tt.h))
		})
	}
}
