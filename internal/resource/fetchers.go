package resource

import (
	"context"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/models"
)

// QuizList fetches the quiz listing under a fixed filter.
func QuizList(b api.Backend, filter api.QuizFilter) *Resource[[]models.Quiz] {
	return New(func(ctx context.Context) ([]models.Quiz, error) {
		return b.ListQuizzes(ctx, filter)
	})
}

// Quiz fetches one quiz by id.
func Quiz(b api.Backend, id string) *Resource[*models.Quiz] {
	return New(func(ctx context.Context) (*models.Quiz, error) {
		return b.GetQuiz(ctx, id)
	})
}

// Tags fetches the tag catalog.
func Tags(b api.Backend) *Resource[[]models.Tag] {
	return New(func(ctx context.Context) ([]models.Tag, error) {
		return b.ListTags(ctx)
	})
}

// Stats fetches the dashboard aggregates.
func Stats(b api.Backend) *Resource[*models.DashboardStats] {
	return New(func(ctx context.Context) (*models.DashboardStats, error) {
		return b.DashboardStats(ctx)
	})
}

// RecentSessions fetches the caller's sessions, most recent first.
func RecentSessions(b api.Backend, limit int) *Resource[[]models.Session] {
	return New(func(ctx context.Context) ([]models.Session, error) {
		return b.RecentSessions(ctx, limit)
	})
}

// LastCompletedBefore returns the session preceding the most recent one.
// The second return is false when fewer than two sessions exist; callers
// must not assume a "previous session" is always there.
func LastCompletedBefore(sessions []models.Session) (models.Session, bool) {
	if len(sessions) < 2 {
		return models.Session{}, false
	}
	return sessions[1], true
}
