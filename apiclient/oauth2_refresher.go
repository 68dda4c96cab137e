package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OAuth2Refresher refreshes with the RFC 6749 refresh_token grant against an OAuth2 token endpoint
type OAuth2Refresher struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewOAuth2Refresher uses cfg.Endpoint.TokenURL and the client credentials in cfg. hc may be nil.
func NewOAuth2Refresher(cfg *oauth2.Config, hc *http.Client) *OAuth2Refresher {
	return &OAuth2Refresher{config: cfg, httpClient: hc}
}

// NewOIDCRefresher discovers the token endpoint of issuer
func NewOIDCRefresher(ctx context.Context, issuer, clientID, clientSecret string, hc *http.Client) (*OAuth2Refresher, error) {
	if hc != nil {
		ctx = oidc.ClientContext(ctx, hc)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("[apiclient NewOIDCRefresher] discover %s: %w", issuer, err)
	}
	return NewOAuth2Refresher(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, oidc.ScopeOfflineAccess},
	}, hc), nil
}

func (r *OAuth2Refresher) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if r.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}

	// A token with no access token is never valid, so the source goes straight to the refresh grant.
	token, err := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("[OAuth2Refresher Refresh] %w", err)
	}

	resp := &TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.Type(),
	}
	if !token.Expiry.IsZero() {
		resp.ExpiresIn = int(time.Until(token.Expiry).Round(time.Second).Seconds())
	}
	// x/oauth2 carries the old refresh token forward when the server does not send one
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		rotated := token.RefreshToken
		resp.RefreshToken = &rotated
	}
	return resp, nil
}
