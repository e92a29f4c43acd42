package store

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/quizdeck/quizdeck/internal/models"
)

// PendingSession summarizes one interrupted test session in the journal.
type PendingSession struct {
	SessionID string
	QuizID    string
	Answers   int
	UpdatedAt time.Time
}

// RecordAnswer upserts one buffered test answer. Repeated answers to the
// same card keep the latest value but the original sequence position, so a
// resumed submission preserves answer order.
func (s *Store) RecordAnswer(ctx context.Context, sessionID, quizID string, ans models.TestAnswer) error {
	_, err := s.ExecContext(ctx, `
INSERT INTO answer_journal (session_id, quiz_id, flashcard_id, user_answer, time_taken, seq, updated_at)
VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM answer_journal WHERE session_id = ?), CURRENT_TIMESTAMP)
ON CONFLICT (session_id, flashcard_id) DO UPDATE SET
    user_answer = excluded.user_answer,
    time_taken = excluded.time_taken,
    updated_at = CURRENT_TIMESTAMP
`, sessionID, quizID, ans.FlashcardID, ans.UserAnswer, ans.TimeTaken, sessionID)
	if err != nil {
		s.log.Error("failed to journal answer: %v", err)
	}
	return err
}

// PendingAnswers returns the journaled answers of a session in the order
// they were first given.
func (s *Store) PendingAnswers(ctx context.Context, sessionID string) ([]models.TestAnswer, error) {
	query := sqlBuilder.
		Select("flashcard_id", "user_answer", "time_taken").
		From("answer_journal").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("seq ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TestAnswer
	for rows.Next() {
		var a models.TestAnswer
		if err := rows.Scan(&a.FlashcardID, &a.UserAnswer, &a.TimeTaken); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// PendingSessions lists sessions with journaled answers, newest first.
func (s *Store) PendingSessions(ctx context.Context) ([]PendingSession, error) {
	query := sqlBuilder.
		Select("session_id", "quiz_id", "COUNT(*)", "MAX(updated_at)").
		From("answer_journal").
		GroupBy("session_id", "quiz_id").
		OrderBy("MAX(updated_at) DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingSession
	for rows.Next() {
		var p PendingSession
		if err := rows.Scan(&p.SessionID, &p.QuizID, &p.Answers, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Clear drops a session's journal entries after a successful submission.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	query := sqlBuilder.Delete("answer_journal").Where(squirrel.Eq{"session_id": sessionID})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}
	_, err = s.ExecContext(ctx, sqlStr, args...)
	return err
}
