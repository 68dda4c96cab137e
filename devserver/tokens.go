package devserver

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/internal/config"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// AccessClaims are the claims of an admin access token
type AccessClaims struct {
	Email string        `json:"email"`
	Role  adminapi.Role `json:"role"`
	jwtlib.RegisteredClaims
}

// TokenIssuer creates and verifies HS256 access tokens
type TokenIssuer struct {
	config config.DevServerConfig
	secret []byte
}

func NewTokenIssuer(cfg config.DevServerConfig) *TokenIssuer {
	return &TokenIssuer{
		config: cfg,
		secret: []byte(cfg.GetJWTSecret()),
	}
}

// CreateAccessToken creates an access token for user and returns it with its lifetime
func (t *TokenIssuer) CreateAccessToken(user *adminapi.User) (string, time.Duration, error) {
	now := NowTimeFunc()
	ttl := t.config.GetAccessTokenTTL()
	claims := AccessClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    t.config.GetIssuer(),                // The issuer of the token
			Subject:   user.ID,                             // The user the token was issued to
			IssuedAt:  jwtlib.NewNumericDate(now),          // Issued At: the time at which the token was issued
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)), // Expiry: when the token will expire
			ID:        uuid.New().String(),                 // Unique token ID
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, ttl, nil
}

// ParseAccessToken verifies signature, issuer and expiry of token
func (t *TokenIssuer) ParseAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) {
		return t.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(t.config.GetIssuer()),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, errors.Wrapf(errors.ErrTokenExpired, "[TokenIssuer ParseAccessToken]")
	default:
		return nil, errors.Wrapf(errors.ErrInvalidToken, "[TokenIssuer ParseAccessToken] %v", err)
	}
}
