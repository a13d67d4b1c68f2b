// Package session is the single source of truth for "is a user logged in".
// It persists the four credential fields (token, user id, email, display
// name) in durable local storage so the session survives restarts; expiry
// is discovered reactively through HTTP 401/403, never tracked locally.
package session

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Store holds at most one session. A stored session missing any field is
// reported as absent.
type Store interface {
	// Current returns the stored session, or ErrNotAuthenticated when no
	// complete session is present.
	Current(ctx context.Context) (core.Session, error)

	// Save replaces the stored session with s. All four fields are written
	// together.
	Save(ctx context.Context, s core.Session) error

	// Clear removes every session field. Clearing an empty store is not an
	// error.
	Clear(ctx context.Context) error
}

// IsAuthenticated reports whether a complete session with a non-empty
// token is stored.
func IsAuthenticated(ctx context.Context, st Store) bool {
	s, err := st.Current(ctx)
	return err == nil && s.Complete()
}
