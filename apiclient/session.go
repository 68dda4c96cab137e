package apiclient

import (
	"context"
	"time"

	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/internal/errors"
	"github.com/jrsteele09/go-store-admin/singleflight"
	"github.com/rs/zerolog"
)

// TopicSessionEnded is the event bus topic of SessionEndedEvent
const TopicSessionEnded = "session:ended"

// EndReason says why a session ended
type EndReason string

const (
	ReasonLogout        EndReason = "logout"
	ReasonRefreshFailed EndReason = "refresh_failed"
	ReasonUnauthorized  EndReason = "unauthorized"
)

// SessionEndedEvent is published once per session when it ends. Subscribers typically send the user
// back to the login entry point.
type SessionEndedEvent struct {
	Reason EndReason
	At     time.Time
}

// OnSessionEnded subscribes fn to the session-ended event. fn runs synchronously on the goroutine
// that ended the session.
func (c *Client) OnSessionEnded(fn func(SessionEndedEvent)) error {
	return c.bus.Subscribe(TopicSessionEnded, fn)
}

// StartSession stores the token pair returned by a login. Any refresh still running for a previous
// session is discarded.
func (c *Client) StartSession(ctx context.Context, creds credentials.Credentials) error {
	if creds.AccessToken == "" {
		return errors.Wrapf(errors.ErrInvalidToken, "[apiclient StartSession] access token is required")
	}

	_, err := c.flight.Invalidate(func() error {
		if err := credentials.Clear(ctx, c.store); err != nil {
			return err
		}
		if err := credentials.Save(ctx, c.store, creds); err != nil {
			return err
		}
		c.setSessionEnded(false)
		return nil
	}, errors.ErrSessionEnded)
	if err != nil {
		return errors.Wrapf(err, "[apiclient StartSession]")
	}
	return nil
}

// Logout clears the stored credentials, cancels any refresh in flight and fires the session-ended event.
func (c *Client) Logout(ctx context.Context) error {
	return c.endSession(ctx, ReasonLogout)
}

// Logger returns the logger given with WithLogger, for services built on the client
func (c *Client) Logger() *zerolog.Logger {
	return &c.logger
}

// Credentials returns the stored token pair
func (c *Client) Credentials(ctx context.Context) (credentials.Credentials, error) {
	return credentials.Load(ctx, c.store)
}

// endSessionIfCurrent ends the session only if token is still the stored access token. A rejection of
// a token that was already replaced belongs to an older session.
func (c *Client) endSessionIfCurrent(ctx context.Context, token string, reason EndReason) {
	current, err := c.accessToken(ctx)
	if err == nil && current != token {
		return
	}
	_ = c.endSession(ctx, reason)
}

func (c *Client) endSession(ctx context.Context, reason EndReason) error {
	first := false
	n, err := c.flight.Invalidate(func() error {
		first = !c.setSessionEnded(true)
		return credentials.Clear(ctx, c.store)
	}, errors.ErrSessionEnded)
	return c.sessionEndedBy(reason, first, n, err)
}

// endFlightSession ends the session on behalf of leader. It returns singleflight.ErrFlightAborted, and
// leaves the store alone, when a logout or a new login already replaced the leader's flight.
func (c *Client) endFlightSession(ctx context.Context, leader *singleflight.Leader[string], reason EndReason) error {
	first := false
	n, err := leader.Abort(func() error {
		first = !c.setSessionEnded(true)
		return credentials.Clear(ctx, c.store)
	}, errors.ErrSessionEnded)
	if errors.Is(err, singleflight.ErrFlightAborted) {
		return err
	}
	return c.sessionEndedBy(reason, first, n, err)
}

// setSessionEnded stores ended and returns the previous value. Callers hold the flight lock, so it is
// ordered with every other session transition.
func (c *Client) setSessionEnded(ended bool) bool {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	prev := c.sessionEnded
	c.sessionEnded = ended
	return prev
}

// sessionEndedBy publishes the session-ended event if this was the first end of the session and
// reports a failed clear.
func (c *Client) sessionEndedBy(reason EndReason, first bool, n int, err error) error {
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to clear credentials")
	}

	if first {
		c.logger.Info().Str("reason", string(reason)).Int("aborted", n).Msg("session ended")
		c.bus.Publish(TopicSessionEnded, SessionEndedEvent{Reason: reason, At: time.Now()})
	}
	if err != nil {
		return errors.Wrapf(err, "[apiclient endSession]")
	}
	return nil
}
