package credentials

import (
	"context"
	"fmt"
)

// Keys under which the session tokens are kept
const (
	KeyAccessToken  = "adminToken"
	KeyRefreshToken = "adminRefreshToken"
)

// Credentials is the token pair of an admin session. An empty string means the token is absent.
type Credentials struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// IsZero reports whether no token is held
func (c Credentials) IsZero() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Store is a persistent key/value store for session tokens.
// Writes across keys are not atomic.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Load reads both tokens from the store
func Load(ctx context.Context, s Store) (Credentials, error) {
	access, _, err := s.Get(ctx, KeyAccessToken)
	if err != nil {
		return Credentials{}, fmt.Errorf("[credentials Load] access token: %w", err)
	}
	refresh, _, err := s.Get(ctx, KeyRefreshToken)
	if err != nil {
		return Credentials{}, fmt.Errorf("[credentials Load] refresh token: %w", err)
	}
	return Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

// Save writes the access token and, when present, the refresh token.
// An empty refresh token leaves the stored one untouched.
func Save(ctx context.Context, s Store, c Credentials) error {
	if err := s.Set(ctx, KeyAccessToken, c.AccessToken); err != nil {
		return fmt.Errorf("[credentials Save] access token: %w", err)
	}
	if c.RefreshToken == "" {
		return nil
	}
	if err := s.Set(ctx, KeyRefreshToken, c.RefreshToken); err != nil {
		return fmt.Errorf("[credentials Save] refresh token: %w", err)
	}
	return nil
}

// Clear removes both tokens
func Clear(ctx context.Context, s Store) error {
	if err := s.Remove(ctx, KeyAccessToken); err != nil {
		return fmt.Errorf("[credentials Clear] access token: %w", err)
	}
	if err := s.Remove(ctx, KeyRefreshToken); err != nil {
		return fmt.Errorf("[credentials Clear] refresh token: %w", err)
	}
	return nil
}
