package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/quizdeck/quizdeck/internal/models"
)

// CacheSessions replaces the cached session list with a fresh fetch.
func (s *Store) CacheSessions(ctx context.Context, sessions []models.Session) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_sessions`); err != nil {
		return err
	}
	for _, sess := range sessions {
		_, err := tx.ExecContext(ctx, `
INSERT INTO cached_sessions (id, user_id, quiz_id, mode, started_at, completed_at, score, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
`, sess.ID, sess.UserID, sess.QuizID, string(sess.Mode), sess.StartedAt, sess.CompletedAt, sess.Score)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CachedSessions returns the locally cached sessions, most recent first.
func (s *Store) CachedSessions(ctx context.Context, limit int) ([]models.Session, error) {
	query := sqlBuilder.
		Select("id", "user_id", "quiz_id", "mode", "started_at", "completed_at", "score").
		From("cached_sessions").
		OrderBy("started_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var sess models.Session
		var mode string
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.QuizID, &mode, &sess.StartedAt, &sess.CompletedAt, &sess.Score); err != nil {
			return nil, err
		}
		sess.Mode = models.SessionMode(mode)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// CacheStats stores the latest dashboard aggregates.
func (s *Store) CacheStats(ctx context.Context, stats models.DashboardStats) error {
	_, err := s.ExecContext(ctx, `
INSERT INTO cached_stats (id, total_quizzes, total_flashcards, sessions_completed, average_score, study_streak_days, fetched_at)
VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (id) DO UPDATE SET
    total_quizzes = excluded.total_quizzes,
    total_flashcards = excluded.total_flashcards,
    sessions_completed = excluded.sessions_completed,
    average_score = excluded.average_score,
    study_streak_days = excluded.study_streak_days,
    fetched_at = CURRENT_TIMESTAMP
`, stats.TotalQuizzes, stats.TotalFlashcards, stats.SessionsCompleted, stats.AverageScore, stats.StudyStreakDays)
	return err
}

// CachedStats returns the cached dashboard aggregates, or ok=false when
// nothing was cached yet.
func (s *Store) CachedStats(ctx context.Context) (models.DashboardStats, bool, error) {
	query := sqlBuilder.
		Select("total_quizzes", "total_flashcards", "sessions_completed", "average_score", "study_streak_days").
		From("cached_stats").
		Where(squirrel.Eq{"id": 1})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return models.DashboardStats{}, false, err
	}

	var stats models.DashboardStats
	err = s.QueryRowContext(ctx, sqlStr, args...).Scan(
		&stats.TotalQuizzes, &stats.TotalFlashcards, &stats.SessionsCompleted,
		&stats.AverageScore, &stats.StudyStreakDays,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DashboardStats{}, false, nil
	}
	if err != nil {
		return models.DashboardStats{}, false, err
	}
	return stats, true, nil
}
