package models

import "time"

// QuizStatus is the lifecycle state of a quiz.
type QuizStatus string

const (
	StatusDraft     QuizStatus = "draft"
	StatusPublished QuizStatus = "published"
	StatusArchived  QuizStatus = "archived"
)

// CanTransition reports whether a quiz may move from its current status to
// next. Allowed: draft->published and anything->archived. An archived quiz
// never goes back to published.
func (s QuizStatus) CanTransition(next QuizStatus) bool {
	if s == next {
		return false
	}
	switch next {
	case StatusPublished:
		return s == StatusDraft
	case StatusArchived:
		return true
	default:
		return false
	}
}

type Quiz struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Subject        string     `json:"subject"`
	Category       string     `json:"category,omitempty"`
	Level          string     `json:"level,omitempty"`
	Description    string     `json:"description,omitempty"`
	TagIDs         []string   `json:"tag_ids"`
	Image          string     `json:"image,omitempty"` // base64
	Status         QuizStatus `json:"status"`
	IsDraft        bool       `json:"is_draft"`
	Favourite      bool       `json:"favourite"`
	FlashcardCount int        `json:"flashcard_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
