// Package apiclient is the HTTP client for the store admin REST API.
//
// Every request carries the stored access token. When the backend answers 401 the client runs one
// coordinated refresh: the first failing request refreshes the token pair while concurrent failures
// wait for it, then all of them are replayed once with the new access token. If the refresh fails
// the stored credentials are cleared, every waiting request fails with ErrUnauthorized and the
// session-ended event fires once.
package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/singleflight"
	"github.com/rs/zerolog"
)

// DefaultRefreshPath is where the JSON refresher posts when no refresher is configured
const DefaultRefreshPath = "/admin/refresh-token"

const (
	defaultUserAgent      = "go-store-admin"
	defaultRefreshTimeout = 15 * time.Second
	defaultRequestTimeout = 30 * time.Second
	maxResponseBytes      = 10 << 20
)

// Client is safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          credentials.Store
	refresher      Refresher
	bus            evbus.Bus
	logger         zerolog.Logger
	userAgent      string
	refreshTimeout time.Duration

	flight singleflight.Coordinator[string]

	sessionMu    sync.Mutex
	sessionEnded bool
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (30s timeout)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRefresher replaces the default JSONRefresher
func WithRefresher(r Refresher) Option {
	return func(c *Client) {
		c.refresher = r
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithEventBus publishes session events on a shared bus instead of a private one
func WithEventBus(bus evbus.Bus) Option {
	return func(c *Client) {
		if bus != nil {
			c.bus = bus
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRefreshTimeout bounds a refresh call. The refresh is detached from the cancellation of the
// request that triggered it, so this is its only deadline.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

// New creates a client for the API rooted at baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, store credentials.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[apiclient New] invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[apiclient New] base URL must be http or https, got %q", baseURL)
	}
	if store == nil {
		return nil, errors.New("[apiclient New] credential store is required")
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: defaultRequestTimeout},
		store:          store,
		bus:            evbus.New(),
		logger:         zerolog.Nop(),
		userAgent:      defaultUserAgent,
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.refresher == nil {
		c.refresher = NewJSONRefresher(c.baseURL+DefaultRefreshPath, c.httpClient)
	}
	return c, nil
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the credential store the client reads tokens from
func (c *Client) Store() credentials.Store {
	return c.store
}

// RefreshInFlight reports whether a token refresh is currently running
func (c *Client) RefreshInFlight() bool {
	return c.flight.InFlight()
}
