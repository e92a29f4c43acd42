package models

import (
	"encoding/json"
	"strings"
)

// AnswerType enumerates how a flashcard expects to be answered.
type AnswerType string

const (
	AnswerText           AnswerType = "text"
	AnswerShortText      AnswerType = "short_text"
	AnswerInteger        AnswerType = "integer"
	AnswerFloat          AnswerType = "float"
	AnswerRange          AnswerType = "range"
	AnswerBoolean        AnswerType = "boolean"
	AnswerChoice         AnswerType = "choice"
	AnswerMultipleChoice AnswerType = "multiple_choice"
)

// NeedsOptions reports whether the answer type requires a non-empty option
// list.
func (t AnswerType) NeedsOptions() bool {
	return t == AnswerChoice || t == AnswerMultipleChoice
}

// AnswerOption is the normalized form of a choice option. The backend sends
// options either as plain strings or as {value,label} objects depending on
// how the card was created; both decode into this.
type AnswerOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (o *AnswerOption) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Value = s
		o.Label = s
		return nil
	}
	var obj struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	o.Value = obj.Value
	o.Label = obj.Label
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}

type Question struct {
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Lang       string   `json:"lang,omitempty"`
	Difficulty int      `json:"difficulty"` // 1..5
	Emoji      string   `json:"emoji,omitempty"`
	Image      string   `json:"image,omitempty"`
	Examples   []string `json:"examples,omitempty"`
}

type Answer struct {
	Text     string            `json:"text"`
	Lang     string            `json:"lang,omitempty"`
	Type     AnswerType        `json:"type"`
	Options  []AnswerOption    `json:"options,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Flashcard is the nested client-side shape. The wire format is flat; see
// WireFlashcard.
type Flashcard struct {
	ID       string   `json:"id"`
	QuizID   string   `json:"quiz_id"`
	Question Question `json:"question"`
	Answer   Answer   `json:"answer"`
}

// Matches reports whether a user's answer matches this card's answer under
// the session rules: both sides trimmed and lower-cased.
func (f Flashcard) Matches(userAnswer string) bool {
	got := strings.ToLower(strings.TrimSpace(userAnswer))
	want := strings.ToLower(strings.TrimSpace(f.Answer.Text))
	return got != "" && got == want
}

// WireFlashcard is the flat shape the backend speaks. Question and answer
// fields live side by side and are folded into the nested form at the
// boundary.
type WireFlashcard struct {
	ID              string            `json:"id"`
	QuizID          string            `json:"quiz_id"`
	QuestionTitle   string            `json:"question_title"`
	QuestionText    string            `json:"question_text"`
	QuestionLang    string            `json:"question_lang,omitempty"`
	Difficulty      int               `json:"difficulty"`
	Emoji           string            `json:"emoji,omitempty"`
	Image           string            `json:"image,omitempty"`
	Examples        []string          `json:"examples,omitempty"`
	AnswerText      string            `json:"answer_text"`
	AnswerLang      string            `json:"answer_lang,omitempty"`
	AnswerType      AnswerType        `json:"answer_type"`
	AnswerOptions   []AnswerOption    `json:"answer_options,omitempty"`
	AnswerMetadata  map[string]string `json:"answer_metadata,omitempty"`
}

// ToFlashcard folds the flat wire fields into the nested client shape.
func (w WireFlashcard) ToFlashcard() Flashcard {
	typ := w.AnswerType
	if typ == "" {
		typ = AnswerText
	}
	return Flashcard{
		ID:     w.ID,
		QuizID: w.QuizID,
		Question: Question{
			Title:      w.QuestionTitle,
			Text:       w.QuestionText,
			Lang:       w.QuestionLang,
			Difficulty: w.Difficulty,
			Emoji:      w.Emoji,
			Image:      w.Image,
			Examples:   w.Examples,
		},
		Answer: Answer{
			Text:     w.AnswerText,
			Lang:     w.AnswerLang,
			Type:     typ,
			Options:  w.AnswerOptions,
			Metadata: w.AnswerMetadata,
		},
	}
}

// ToWire flattens the nested shape for create/update requests.
func (f Flashcard) ToWire() WireFlashcard {
	return WireFlashcard{
		ID:             f.ID,
		QuizID:         f.QuizID,
		QuestionTitle:  f.Question.Title,
		QuestionText:   f.Question.Text,
		QuestionLang:   f.Question.Lang,
		Difficulty:     f.Question.Difficulty,
		Emoji:          f.Question.Emoji,
		Image:          f.Question.Image,
		Examples:       f.Question.Examples,
		AnswerText:     f.Answer.Text,
		AnswerLang:     f.Answer.Lang,
		AnswerType:     f.Answer.Type,
		AnswerOptions:  f.Answer.Options,
		AnswerMetadata: f.Answer.Metadata,
	}
}
