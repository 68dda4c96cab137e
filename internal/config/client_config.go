package config

import "time"

// RefreshMode selects how an expired access token is renewed
type RefreshMode string

const (
	// RefreshModeJSON posts the refresh token to the admin backend's refresh endpoint
	RefreshModeJSON RefreshMode = "json"
	// RefreshModeOAuth2 uses an RFC 6749 refresh_token grant against a token endpoint
	RefreshModeOAuth2 RefreshMode = "oauth2"
)

type ClientConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetRefreshMode() RefreshMode
	GetRefreshPath() string
	GetOAuthClientID() string
	GetOAuthClientSecret() string
	GetOAuthTokenURL() string
	GetOIDCIssuer() string
}

type Client struct{}

var _ ClientConfig = Client{}

// GetBaseURL returns the admin REST API root, e.g. "http://localhost:5000/api"
func (Client) GetBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:5000/api")
}

func (Client) GetRequestTimeout() time.Duration {
	return GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
}

func (Client) GetRefreshTimeout() time.Duration {
	return GetEnvDuration("REFRESH_TIMEOUT", 15*time.Second)
}

func (Client) GetRefreshMode() RefreshMode {
	switch mode := RefreshMode(GetEnv("REFRESH_MODE", string(RefreshModeJSON))); mode {
	case RefreshModeOAuth2:
		return mode
	default:
		return RefreshModeJSON
	}
}

// GetRefreshPath is empty unless REFRESH_PATH overrides the client default
func (Client) GetRefreshPath() string {
	return GetEnv("REFRESH_PATH", "")
}

func (Client) GetOAuthClientID() string {
	return GetEnv("OAUTH_CLIENT_ID", "")
}

func (Client) GetOAuthClientSecret() string {
	return GetEnv("OAUTH_CLIENT_SECRET", "")
}

func (Client) GetOAuthTokenURL() string {
	return GetEnv("OAUTH_TOKEN_URL", "")
}

// GetOIDCIssuer enables token endpoint discovery when set
func (Client) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}
