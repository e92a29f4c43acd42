package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/models"
)

// MockBackend is a mock implementation of api.Backend
type MockBackend struct {
	mock.Mock
}

var _ api.Backend = (*MockBackend)(nil)

func (m *MockBackend) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func (m *MockBackend) Register(ctx context.Context, email, username, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, username, password)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func (m *MockBackend) Me(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockBackend) ListQuizzes(ctx context.Context, filter api.QuizFilter) ([]models.Quiz, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Quiz), args.Error(1)
}

func (m *MockBackend) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	quiz, _ := args.Get(0).(*models.Quiz)
	return quiz, args.Error(1)
}

func (m *MockBackend) CreateQuiz(ctx context.Context, in api.QuizInput) (*models.Quiz, error) {
	args := m.Called(ctx, in)
	quiz, _ := args.Get(0).(*models.Quiz)
	return quiz, args.Error(1)
}

func (m *MockBackend) UpdateQuiz(ctx context.Context, id string, in api.QuizInput) (*models.Quiz, error) {
	args := m.Called(ctx, id, in)
	quiz, _ := args.Get(0).(*models.Quiz)
	return quiz, args.Error(1)
}

func (m *MockBackend) DeleteQuiz(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackend) ExportQuiz(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBackend) ListFlashcards(ctx context.Context, quizID string) ([]models.Flashcard, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flashcard), args.Error(1)
}

func (m *MockBackend) CreateFlashcard(ctx context.Context, card models.Flashcard) (*models.Flashcard, error) {
	args := m.Called(ctx, card)
	created, _ := args.Get(0).(*models.Flashcard)
	return created, args.Error(1)
}

func (m *MockBackend) UpdateFlashcard(ctx context.Context, card models.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockBackend) DeleteFlashcard(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackend) CreateSession(ctx context.Context, userID, quizID string, mode models.SessionMode) (*models.Session, error) {
	args := m.Called(ctx, userID, quizID, mode)
	sess, _ := args.Get(0).(*models.Session)
	return sess, args.Error(1)
}

func (m *MockBackend) TrackLearningProgress(ctx context.Context, sessionID string, progress []models.ProgressEntry) error {
	args := m.Called(ctx, sessionID, progress)
	return args.Error(0)
}

func (m *MockBackend) SubmitTest(ctx context.Context, sub api.TestSubmission) (*models.TestResult, error) {
	args := m.Called(ctx, sub)
	result, _ := args.Get(0).(*models.TestResult)
	return result, args.Error(1)
}

func (m *MockBackend) CompleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockBackend) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Session), args.Error(1)
}

func (m *MockBackend) ListTags(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *MockBackend) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*models.DashboardStats)
	return stats, args.Error(1)
}
