package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/models"
)

func TestAnswerOption_UnmarshalString(t *testing.T) {
	var opts []models.AnswerOption
	err := json.Unmarshal([]byte(`["Paris", "London"]`), &opts)
	require.NoError(t, err)

	require.Len(t, opts, 2)
	assert.Equal(t, "Paris", opts[0].Value)
	assert.Equal(t, "Paris", opts[0].Label, "plain strings become value and label")
	assert.Equal(t, "London", opts[1].Value)
}

func TestAnswerOption_UnmarshalObject(t *testing.T) {
	var opts []models.AnswerOption
	err := json.Unmarshal([]byte(`[{"value":"fr","label":"France"},{"value":"de"}]`), &opts)
	require.NoError(t, err)

	require.Len(t, opts, 2)
	assert.Equal(t, "fr", opts[0].Value)
	assert.Equal(t, "France", opts[0].Label)
	assert.Equal(t, "de", opts[1].Value)
	assert.Equal(t, "de", opts[1].Label, "missing label falls back to value")
}

func TestAnswerOption_UnmarshalMixed(t *testing.T) {
	// Both shapes can appear in one list, depending on how the card was
	// created. Normalization happens once, at decode.
	var opts []models.AnswerOption
	err := json.Unmarshal([]byte(`["plain", {"value":"v","label":"L"}]`), &opts)
	require.NoError(t, err)

	require.Len(t, opts, 2)
	assert.Equal(t, models.AnswerOption{Value: "plain", Label: "plain"}, opts[0])
	assert.Equal(t, models.AnswerOption{Value: "v", Label: "L"}, opts[1])
}

func TestWireFlashcard_RoundTrip(t *testing.T) {
	wire := models.WireFlashcard{
		ID:            "f1",
		QuizID:        "q1",
		QuestionTitle: "Capitals",
		QuestionText:  "Capital of France?",
		Difficulty:    2,
		AnswerText:    "Paris",
		AnswerType:    models.AnswerText,
	}

	card := wire.ToFlashcard()
	assert.Equal(t, "f1", card.ID)
	assert.Equal(t, "q1", card.QuizID)
	assert.Equal(t, "Capitals", card.Question.Title)
	assert.Equal(t, "Capital of France?", card.Question.Text)
	assert.Equal(t, "Paris", card.Answer.Text)

	back := card.ToWire()
	assert.Equal(t, wire, back)
}

func TestWireFlashcard_DefaultsAnswerType(t *testing.T) {
	card := models.WireFlashcard{AnswerText: "42"}.ToFlashcard()
	assert.Equal(t, models.AnswerText, card.Answer.Type)
}

func TestFlashcard_Matches(t *testing.T) {
	card := models.Flashcard{Answer: models.Answer{Text: " Paris "}}

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"exact", "Paris", true},
		{"case insensitive", "pArIs", true},
		{"surrounding whitespace", "  paris\t", true},
		{"wrong", "London", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, card.Matches(tt.answer))
		})
	}
}

func TestAnswerType_NeedsOptions(t *testing.T) {
	assert.True(t, models.AnswerChoice.NeedsOptions())
	assert.True(t, models.AnswerMultipleChoice.NeedsOptions())
	assert.False(t, models.AnswerText.NeedsOptions())
	assert.False(t, models.AnswerBoolean.NeedsOptions())
}
