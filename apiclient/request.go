package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-store-admin/credentials"
)

// HeaderRequestID is sent with every request and echoed into logs
const HeaderRequestID = "X-Request-ID"

// Response is a successful (2xx) response with its body fully read
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 || v == nil {
		return nil
	}
	if err := decode(r.Body, v); err != nil {
		return fmt.Errorf("[apiclient Decode] %w", err)
	}
	return nil
}

type requestOptions struct {
	query  url.Values
	header http.Header
	noAuth bool
}

type RequestOption func(*requestOptions)

func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) {
		if len(q) == 0 {
			return
		}
		if o.query == nil {
			o.query = url.Values{}
		}
		for k, vs := range q {
			for _, v := range vs {
				o.query.Add(k, v)
			}
		}
	}
}

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = http.Header{}
		}
		o.header.Add(key, value)
	}
}

// WithoutAuth sends no bearer token and treats a 401 as a plain status error.
// Used for the login and refresh endpoints.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) {
		o.noAuth = true
	}
}

// request is the replayable form of a call: the body is encoded once.
type request struct {
	method  string
	path    string
	body    []byte
	opts    requestOptions
	retried bool
}

// Do issues method on path relative to the base URL. body, when not nil, is sent as JSON.
// A 401 triggers the token refresh protocol, see the package documentation.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	req := &request{method: method, path: path}
	for _, opt := range opts {
		opt(&req.opts)
	}
	if body != nil {
		data, err := encode(body)
		if err != nil {
			return nil, fmt.Errorf("[apiclient Do] encode %s %s: %w", method, path, err)
		}
		req.body = data
	}

	token := ""
	if !req.opts.noAuth {
		var err error
		if token, err = c.accessToken(ctx); err != nil {
			return nil, err
		}
	}
	return c.exchange(ctx, req, token)
}

// exchange sends req once with token and routes the outcome
func (c *Client) exchange(ctx context.Context, req *request, token string) (*Response, error) {
	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp, nil
	case resp.StatusCode == http.StatusUnauthorized && !req.opts.noAuth:
		return c.recoverUnauthorized(ctx, req, token, resp)
	default:
		return nil, &HTTPError{
			Kind:       KindStatus,
			Method:     req.method,
			Path:       req.path,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}
}

func (c *Client) send(ctx context.Context, req *request, token string) (*Response, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.path, "/")
	if len(req.opts.query) > 0 {
		target += "?" + req.opts.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient send] build %s %s: %w", req.method, req.path, err)
	}

	for k, vs := range req.opts.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(HeaderRequestID, requestID)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", req.method).Str("path", req.path).Str("request_id", requestID).Msg("request failed")
		return nil, &HTTPError{Kind: KindNetwork, Method: req.method, Path: req.path, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := readBody(httpResp.Body)
	if err != nil {
		return nil, &HTTPError{Kind: KindNetwork, Method: req.method, Path: req.path, Err: err}
	}

	c.logger.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", httpResp.StatusCode).
		Bool("retry", req.retried).
		Dur("took", time.Since(start)).
		Str("request_id", requestID).
		Msg("request")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		RequestID:  requestID,
	}, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	token, _, err := c.store.Get(ctx, credentials.KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("[apiclient accessToken] %w", err)
	}
	return token, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	resp, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Get decodes the JSON response of GET path?query into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodGet, path, nil, out, append([]RequestOption{WithQuery(query)}, opts...)...)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPut, path, body, out, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPatch, path, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodDelete, path, nil, out, opts...)
}

// readBody reads at most maxResponseBytes. A longer body is an error rather than a silently cut one.
func readBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxResponseBytes)
	}
	return data, nil
}
