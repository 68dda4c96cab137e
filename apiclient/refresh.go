package apiclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-store-admin/credentials"
	apperrors "github.com/jrsteele09/go-store-admin/internal/errors"
	"github.com/jrsteele09/go-store-admin/internal/utils"
	"github.com/jrsteele09/go-store-admin/singleflight"
)

type outcome struct {
	resp *Response
	err  error
}

// recoverUnauthorized handles a 401 on req, which was sent with usedToken.
func (c *Client) recoverUnauthorized(ctx context.Context, req *request, usedToken string, resp *Response) (*Response, error) {
	if req.retried {
		c.logger.Warn().Str("method", req.method).Str("path", req.path).Msg("request rejected after token refresh")
		c.endSessionIfCurrent(ctx, usedToken, ReasonUnauthorized)
		return nil, unauthorizedError(req, resp, nil)
	}
	req.retried = true

	// Another flight already rotated the token after this request was sent
	if current, err := c.accessToken(ctx); err == nil && current != "" && current != usedToken {
		return c.exchange(ctx, req, current)
	}

	done := make(chan outcome, 1)
	leader, isLeader := c.flight.JoinOrLead(func(token string, err error) {
		if err != nil {
			done <- outcome{err: unauthorizedError(req, resp, err)}
			return
		}
		r, err := c.exchange(ctx, req, token)
		done <- outcome{resp: r, err: err}
	})
	if isLeader {
		c.leadRefresh(ctx, leader)
	}

	select {
	case o := <-done:
		return o.resp, o.err
	case <-ctx.Done():
		return nil, &HTTPError{Kind: KindNetwork, Method: req.method, Path: req.path, Err: ctx.Err()}
	}
}

// leadRefresh runs the refresh for the flight owned by leader and resumes everyone queued on it.
func (c *Client) leadRefresh(ctx context.Context, leader *singleflight.Leader[string]) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	token, err := c.refreshTokens(rctx, leader)
	switch {
	case errors.Is(err, singleflight.ErrFlightAborted):
		// Logout or a new login ended the flight; its waiters were already resumed.
		c.logger.Debug().Msg("token refresh discarded, session changed while refreshing")
	case err != nil:
		if abortErr := c.endFlightSession(rctx, leader, ReasonRefreshFailed); errors.Is(abortErr, singleflight.ErrFlightAborted) {
			c.logger.Debug().Err(err).Msg("token refresh failed after the session changed, ignoring")
			return
		}
		c.logger.Warn().Err(err).Msg("token refresh failed, session ended")
	default:
		n := leader.ResolveAll(token, nil)
		c.logger.Debug().Int("replayed", n).Msg("token refreshed")
	}
}

// refreshTokens exchanges the stored refresh token and persists the result if the flight is still current.
func (c *Client) refreshTokens(ctx context.Context, leader *singleflight.Leader[string]) (string, error) {
	refreshToken, _, err := c.store.Get(ctx, credentials.KeyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("[apiclient refreshTokens] read refresh token: %w", err)
	}
	if refreshToken == "" {
		return "", apperrors.ErrNoRefreshToken
	}

	tokens, err := c.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrRefreshFailed, "[apiclient refreshTokens] %v", err)
	}
	if tokens == nil || tokens.AccessToken == "" {
		return "", apperrors.Wrapf(apperrors.ErrRefreshFailed, "[apiclient refreshTokens] response carried no access token")
	}

	creds := credentials.Credentials{
		AccessToken:  tokens.AccessToken,
		RefreshToken: utils.Value(tokens.RefreshToken),
	}
	if err := leader.Commit(func() error {
		return credentials.Save(ctx, c.store, creds)
	}); err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

func unauthorizedError(req *request, resp *Response, cause error) *HTTPError {
	e := &HTTPError{Kind: KindUnauthorized, Method: req.method, Path: req.path, StatusCode: 401, Err: cause}
	if resp != nil {
		e.Body = resp.Body
	}
	return e
}
