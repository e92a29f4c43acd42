package api

import (
	"context"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/models"
)

type authResponse struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// Login exchanges credentials for a bearer token and the current user.
func (c *Client) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	body := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", nil, err
	}
	return out.AccessToken, &out.User, nil
}

// Register creates an account and logs it in atomically.
func (c *Client) Register(ctx context.Context, email, username, password string) (string, *models.User, error) {
	body := map[string]string{"email": email, "username": username, "password": password}
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return "", nil, err
	}
	return out.AccessToken, &out.User, nil
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
