package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// TokenResponse is the body of a successful token refresh
type TokenResponse struct {
	// AccessToken is sent as "Authorization: Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// RefreshToken is nil when the server did not rotate the refresh token; the stored one stays valid.
	RefreshToken *string `json:"refresh_token,omitempty"`

	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime of the access token in seconds
	ExpiresIn int `json:"expires_in,omitempty"`
}

// Refresher exchanges a refresh token for a new token pair. Any error means the session cannot be
// recovered.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
}

// RefresherFunc adapts a function to Refresher
type RefresherFunc func(ctx context.Context, refreshToken string) (*TokenResponse, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return f(ctx, refreshToken)
}

// JSONRefresher posts {"refresh_token": "..."} to the admin refresh endpoint. The request is sent
// without bearer authentication and outside the 401 protocol.
type JSONRefresher struct {
	url        string
	httpClient *http.Client
}

func NewJSONRefresher(url string, hc *http.Client) *JSONRefresher {
	if hc == nil {
		hc = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &JSONRefresher{url: url, httpClient: hc}
}

func (r *JSONRefresher) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	payload, err := encode(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("[JSONRefresher Refresh] encode: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("[JSONRefresher Refresh] build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, &HTTPError{Kind: KindNetwork, Method: http.MethodPost, Path: r.url, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := readBody(httpResp.Body)
	if err != nil {
		return nil, &HTTPError{Kind: KindNetwork, Method: http.MethodPost, Path: r.url, Err: err}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &HTTPError{Kind: KindStatus, Method: http.MethodPost, Path: r.url, StatusCode: httpResp.StatusCode, Body: data}
	}

	var tokens TokenResponse
	if err := decode(data, &tokens); err != nil {
		return nil, fmt.Errorf("[JSONRefresher Refresh] decode: %w", err)
	}
	if tokens.RefreshToken != nil && *tokens.RefreshToken == "" {
		tokens.RefreshToken = nil
	}
	return &tokens, nil
}
