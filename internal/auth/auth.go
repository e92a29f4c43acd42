package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
)

// ErrNotLoggedIn is returned when an operation needs a session and none
// exists.
var ErrNotLoggedIn = errors.New("not logged in")

// credentials is the on-disk shape of a persisted session.
type credentials struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user,omitempty"`
}

// Manager holds the bearer token and current user in memory, backed by a
// credentials file. It is the only shared mutable auth state in the
// process; all access goes through the mutex.
type Manager struct {
	mu      sync.RWMutex
	path    string
	token   string
	user    *models.User
	backend api.Backend
	log     *logger.Logger
}

// NewManager creates a Manager persisting to path. Call Restore to load a
// previous session.
func NewManager(path string, backend api.Backend) *Manager {
	return &Manager{
		path:    path,
		backend: backend,
		log:     logger.Default().WithPrefix("auth"),
	}
}

// SetBackend wires the API client after construction. The client takes
// the manager as its token source, so the two reference each other.
func (m *Manager) SetBackend(backend api.Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backend = backend
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns the current user, or nil when logged out.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// LoggedIn reports whether a usable session exists.
func (m *Manager) LoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && !expired(m.token)
}

// Restore loads persisted credentials. A missing file is not an error; an
// expired token is dropped with a warning so callers get a clean
// not-logged-in state instead of 401s later.
func (m *Manager) Restore() error {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read credentials: %w", err)
	}

	var creds credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return fmt.Errorf("parse credentials: %w", err)
	}

	if creds.AccessToken != "" && expired(creds.AccessToken) {
		m.log.Warn("stored token has expired, please log in again")
		return nil
	}

	m.mu.Lock()
	m.token = creds.AccessToken
	m.user = creds.User
	m.mu.Unlock()

	if creds.User != nil {
		m.log.Debug("restored session for %s", creds.User.Email)
	}
	return nil
}

// Login authenticates against the backend and persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	token, user, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := m.save(token, user); err != nil {
		return nil, err
	}
	m.log.Info("logged in as %s", user.Email)
	return user, nil
}

// Register creates an account and persists the session it returns.
func (m *Manager) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	token, user, err := m.backend.Register(ctx, email, username, password)
	if err != nil {
		return nil, err
	}
	if err := m.save(token, user); err != nil {
		return nil, err
	}
	m.log.Info("registered as %s", user.Email)
	return user, nil
}

// Logout clears the in-memory session and removes the credentials file.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	m.log.Info("logged out")
	return nil
}

func (m *Manager) save(token string, user *models.User) error {
	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	raw, err := json.MarshalIndent(credentials{AccessToken: token, User: user}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// expired reads the exp claim without verifying the signature. The backend
// is the authority on token validity; this only avoids doomed requests.
func expired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// Opaque tokens are possible; let the server decide.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
