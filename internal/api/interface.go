package api

import (
	"context"

	"github.com/quizdeck/quizdeck/internal/models"
)

// Backend defines every operation the client needs from the QuizDeck REST
// API. This interface enables testability by allowing mock implementations.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Register(ctx context.Context, email, username, password string) (string, *models.User, error)
	Me(ctx context.Context) (*models.User, error)

	ListQuizzes(ctx context.Context, filter QuizFilter) ([]models.Quiz, error)
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
	CreateQuiz(ctx context.Context, in QuizInput) (*models.Quiz, error)
	UpdateQuiz(ctx context.Context, id string, in QuizInput) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	ExportQuiz(ctx context.Context, id string) ([]byte, error)

	ListFlashcards(ctx context.Context, quizID string) ([]models.Flashcard, error)
	CreateFlashcard(ctx context.Context, card models.Flashcard) (*models.Flashcard, error)
	UpdateFlashcard(ctx context.Context, card models.Flashcard) error
	DeleteFlashcard(ctx context.Context, id string) error

	CreateSession(ctx context.Context, userID, quizID string, mode models.SessionMode) (*models.Session, error)
	TrackLearningProgress(ctx context.Context, sessionID string, progress []models.ProgressEntry) error
	SubmitTest(ctx context.Context, sub TestSubmission) (*models.TestResult, error)
	CompleteSession(ctx context.Context, sessionID string) error
	RecentSessions(ctx context.Context, limit int) ([]models.Session, error)

	ListTags(ctx context.Context) ([]models.Tag, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// QuizFilter narrows ListQuizzes.
type QuizFilter struct {
	Status    models.QuizStatus
	TagID     string
	Favourite bool
	Search    string
}

// QuizInput is the writable subset of a quiz.
type QuizInput struct {
	Name        string            `json:"name"`
	Subject     string            `json:"subject"`
	Category    string            `json:"category,omitempty"`
	Level       string            `json:"level,omitempty"`
	Description string            `json:"description,omitempty"`
	TagIDs      []string          `json:"tag_ids,omitempty"`
	Image       string            `json:"image,omitempty"`
	Status      models.QuizStatus `json:"status,omitempty"`
	IsDraft     bool              `json:"is_draft"`
	Favourite   bool              `json:"favourite"`
}

// TestSubmission is the atomic end-of-test payload.
type TestSubmission struct {
	SessionID string              `json:"session_id"`
	Answers   []models.TestAnswer `json:"answers"`
	Duration  int                 `json:"duration"` // elapsed seconds
}

// Ensure Client implements the interface
var _ Backend = (*Client)(nil)
