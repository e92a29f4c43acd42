package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/qerr"
)

// TokenSource provides the bearer token for authenticated calls. An empty
// string means no token is available.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource for a fixed token, handy in tests.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Client talks to the QuizDeck backend. All responses travel in the
// {success, data, message} envelope except the export blob.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	log        *logger.Logger
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		log:        logger.Default().WithPrefix("api"),
	}
}

// envelope is the uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// errorBody covers both the flat {message} error shape and the 422
// field-error list.
type errorBody struct {
	Message string `json:"message"`
	Detail  []struct {
		Loc []json.RawMessage `json:"loc"`
		Msg string            `json:"msg"`
	} `json:"detail"`
}

func (b errorBody) flatten() string {
	if len(b.Detail) > 0 {
		parts := make([]string, 0, len(b.Detail))
		for _, d := range b.Detail {
			var loc []string
			for _, raw := range d.Loc {
				// loc entries mix strings and array indices
				var s string
				if err := json.Unmarshal(raw, &s); err != nil {
					s = string(raw)
				}
				loc = append(loc, s)
			}
			parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(loc, "."), d.Msg))
		}
		return strings.Join(parts, "; ")
	}
	return b.Message
}

// do performs one round trip: marshal body, attach bearer token, decode the
// envelope into out. Every failure comes back as a *qerr.Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	log := logger.FromContext(ctx).WithPrefix("api")
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return qerr.BadRequest(fmt.Sprintf("encode request: %v", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return qerr.BadRequest(fmt.Sprintf("build request: %v", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug("%s %s", method, path)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("%s %s failed: %v", method, path, err)
		return qerr.Transport(err)
	}
	defer resp.Body.Close()

	log.Debug("%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.translateError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Error("failed to decode response envelope: %v", err)
		return qerr.Envelope(fmt.Sprintf("malformed response: %v", err))
	}
	if !env.Success {
		return qerr.Envelope(env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			log.Error("failed to decode response data: %v", err)
			return qerr.Envelope(fmt.Sprintf("malformed response data: %v", err))
		}
	}
	return nil
}

func (c *Client) translateError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.flatten()
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return qerr.Unauthorized(resp.StatusCode, msg)
	case resp.StatusCode == http.StatusNotFound:
		return qerr.NotFound(msg)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return qerr.Validation(resp.StatusCode, msg)
	case resp.StatusCode >= 500:
		return qerr.Server(resp.StatusCode, msg)
	default:
		return qerr.Validation(resp.StatusCode, msg)
	}
}
