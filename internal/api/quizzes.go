package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/qerr"
)

// ListQuizzes fetches the caller's quizzes, optionally narrowed by filter.
func (c *Client) ListQuizzes(ctx context.Context, filter QuizFilter) ([]models.Quiz, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.TagID != "" {
		q.Set("tag_id", filter.TagID)
	}
	if filter.Favourite {
		q.Set("favourite", "true")
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	path := "/quizzes/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []models.Quiz
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	var out models.Quiz
	if err := c.do(ctx, http.MethodGet, "/quizzes/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateQuiz(ctx context.Context, in QuizInput) (*models.Quiz, error) {
	var out models.Quiz
	if err := c.do(ctx, http.MethodPost, "/quizzes/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateQuiz(ctx context.Context, id string, in QuizInput) (*models.Quiz, error) {
	var out models.Quiz
	if err := c.do(ctx, http.MethodPut, "/quizzes/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteQuiz(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/quizzes/"+id, nil, nil)
}

// ExportQuiz downloads the export blob for a quiz. Unlike every other
// endpoint the body is raw, not enveloped.
func (c *Client) ExportQuiz(ctx context.Context, id string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("api")
	url := c.baseURL + "/quizzes/" + id + "/export"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, qerr.BadRequest(fmt.Sprintf("build request: %v", err))
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("export request failed: %v", err)
		return nil, qerr.Transport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.translateError(resp)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read export body: %v", err)
		return nil, qerr.Transport(err)
	}
	log.Info("exported quiz %s: %d bytes in %v", id, len(blob), time.Since(start))
	return blob, nil
}

// ListTags fetches all tags known to the account.
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	if err := c.do(ctx, http.MethodGet, "/tags/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DashboardStats fetches the aggregate numbers for the dashboard.
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
