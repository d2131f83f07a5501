// Package auth supplies the bearer token attached to every backend request.
// Absence of a session is a normal condition: callers treat it the same as a
// backend failure and fall back locally rather than surfacing it.
package auth

import (
	"context"
	"errors"
	"os"
	"strings"
)

// ErrNoSession is returned when no authenticated session is available.
var ErrNoSession = errors.New("no active session")

// SessionProvider yields the current session token, or ErrNoSession.
type SessionProvider interface {
	Token(ctx context.Context) (string, error)
}

// EnvSession reads the token from the environment on every call, so a token
// rotated mid-process is picked up without a restart.
type EnvSession struct {
	// Key is the environment variable holding the token. Defaults to API_TOKEN.
	Key string
}

func (e *EnvSession) Token(ctx context.Context) (string, error) {
	key := e.Key
	if key == "" {
		key = "API_TOKEN"
	}
	token := strings.TrimSpace(os.Getenv(key))
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// StaticSession is a fixed token, mainly for tests and local development.
type StaticSession string

func (s StaticSession) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNoSession
	}
	return string(s), nil
}
