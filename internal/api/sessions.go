package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/models"
)

// CreateSession records the start of a learn or test run server-side.
func (c *Client) CreateSession(ctx context.Context, userID, quizID string, mode models.SessionMode) (*models.Session, error) {
	body := map[string]string{
		"user_id": userID,
		"quiz_id": quizID,
		"mode":    string(mode),
	}
	var out models.Session
	if err := c.do(ctx, http.MethodPost, "/sessions/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackLearningProgress pushes learn-mode progress ticks. Callers treat
// this as best-effort telemetry; failures are theirs to swallow.
func (c *Client) TrackLearningProgress(ctx context.Context, sessionID string, progress []models.ProgressEntry) error {
	body := map[string]any{"progress": progress}
	path := fmt.Sprintf("/sessions/learning/%s/progress", sessionID)
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// SubmitTest posts all buffered answers in one request and returns the
// server-graded result.
func (c *Client) SubmitTest(ctx context.Context, sub TestSubmission) (*models.TestResult, error) {
	var out models.TestResult
	if err := c.do(ctx, http.MethodPost, "/sessions/test/submit", sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteSession marks a session finished. Idempotent server-side.
func (c *Client) CompleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/complete", nil, nil)
}

// RecentSessions returns the caller's sessions, most recent first.
func (c *Client) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	path := "/sessions/"
	if limit > 0 {
		path = fmt.Sprintf("/sessions/?limit=%d", limit)
	}
	var out []models.Session
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
