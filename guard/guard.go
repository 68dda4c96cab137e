// Package guard decides whether the stored session may run a command. It reads the access token's
// claims without verifying the signature: only the backend can verify, and it does on every call.
package guard

import (
	"context"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

var (
	// ErrNotAuthenticated means there is no usable session. Send the user to login.
	ErrNotAuthenticated = errors.ErrNotAuthenticated
	// ErrForbidden means the session is valid but lacks the required role
	ErrForbidden = errors.ErrForbidden
)

// Requirement is what a protected command needs from the session
type Requirement int

const (
	Authenticated Requirement = iota
	Admin
)

func (r Requirement) String() string {
	if r == Admin {
		return "admin"
	}
	return "authenticated"
}

// Principal is the signed in user as described by the access token
type Principal struct {
	Subject   string
	Email     string
	Role      adminapi.Role
	ExpiresAt time.Time
}

func (p *Principal) IsAdmin() bool {
	return p.Role == adminapi.RoleAdmin
}

// Expired reports whether the access token has expired at now. An expired token still identifies
// the user; the client refreshes it on the next call.
func (p *Principal) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

type Guard struct {
	store credentials.Store
}

func New(store credentials.Store) *Guard {
	return &Guard{store: store}
}

// Principal decodes the stored access token
func (g *Guard) Principal(ctx context.Context) (*Principal, error) {
	token, ok, err := g.store.Get(ctx, credentials.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("[guard Principal] read access token: %w", err)
	}
	if !ok || token == "" {
		return nil, ErrNotAuthenticated
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(token, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(ErrNotAuthenticated, "[guard Principal] malformed access token: %v", err)
	}
	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrapf(ErrNotAuthenticated, "[guard Principal] error extracting claims")
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, errors.Wrapf(ErrNotAuthenticated, "[guard Principal] access token has no subject")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	p := &Principal{
		Subject: sub,
		Email:   email,
		Role:    adminapi.Role(role),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		p.ExpiresAt = exp.Time
	}
	return p, nil
}

// Check returns the principal if the session satisfies req
func (g *Guard) Check(ctx context.Context, req Requirement) (*Principal, error) {
	p, err := g.Principal(ctx)
	if err != nil {
		return nil, err
	}
	if req == Admin && !p.IsAdmin() {
		return p, ErrForbidden
	}
	return p, nil
}
