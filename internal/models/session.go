package models

import "time"

// SessionMode distinguishes practice from scored runs.
type SessionMode string

const (
	ModeLearn SessionMode = "learn"
	ModeTest  SessionMode = "test"
)

type Session struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	QuizID      string      `json:"quiz_id"`
	Mode        SessionMode `json:"mode"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Score       *float64    `json:"score,omitempty"`
}

// Evaluation values in a test breakdown.
const (
	EvalCorrect   = "correct"
	EvalIncorrect = "incorrect"
)

type BreakdownEntry struct {
	FlashcardID   string `json:"flashcard_id"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Evaluation    string `json:"evaluation"`
}

// TestResult is produced once at test submission and never mutated.
type TestResult struct {
	FinalScore float64          `json:"final_score"`
	Correct    int              `json:"correct"`
	Total      int              `json:"total"`
	Breakdown  []BreakdownEntry `json:"breakdown"`
}

// ProgressEntry is one learn-mode progress tick.
type ProgressEntry struct {
	FlashcardID string `json:"flashcard_id"`
	Reviewed    bool   `json:"reviewed"`
	Confidence  int    `json:"confidence"`
}

// TestAnswer is one buffered test-mode answer.
type TestAnswer struct {
	FlashcardID string `json:"flashcard_id"`
	UserAnswer  string `json:"user_answer"`
	TimeTaken   int    `json:"time_taken"` // seconds spent on the card
}

// DashboardStats is the aggregate the dashboard renders.
type DashboardStats struct {
	TotalQuizzes      int     `json:"total_quizzes"`
	TotalFlashcards   int     `json:"total_flashcards"`
	SessionsCompleted int     `json:"sessions_completed"`
	AverageScore      float64 `json:"average_score"`
	StudyStreakDays   int     `json:"study_streak_days"`
}
