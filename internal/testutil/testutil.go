package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/store"
)

// NewStore creates an in-memory Store with all migrations applied.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	return s
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	t.Helper()
	require.NoError(t, closer.Close())
}
