package adminapi

import (
	"context"

	"github.com/jrsteele09/go-store-admin/apiclient"
	"github.com/jrsteele09/go-store-admin/credentials"
)

const (
	PathLogin        = "/admin/login"
	PathLogout       = "/admin/logout"
	PathProfile      = "/admin/profile"
	PathRefreshToken = apiclient.DefaultRefreshPath
)

type AuthService struct {
	c *apiclient.Client
}

// Login exchanges email and password for a token pair and starts a session with it
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := s.c.Post(ctx, PathLogin, LoginRequest{Email: email, Password: password}, &result, apiclient.WithoutAuth())
	if err != nil {
		return nil, err
	}
	if err := s.c.StartSession(ctx, credentials.Credentials{
		AccessToken:  result.Token,
		RefreshToken: result.RefreshToken,
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout tells the backend to revoke the refresh token, then ends the local session whatever the
// backend answered.
func (s *AuthService) Logout(ctx context.Context) error {
	creds, err := s.c.Credentials(ctx)
	if err == nil && creds.AccessToken != "" {
		body := map[string]string{"refreshToken": creds.RefreshToken}
		if err := s.c.Post(ctx, PathLogout, body, nil); err != nil {
			s.c.Logger().Warn().Err(err).Msg("backend logout failed, refresh token may still be valid")
		}
	}
	return s.c.Logout(ctx)
}

func (s *AuthService) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := s.c.Get(ctx, PathProfile, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
