// Package apiclient is the single HTTP client every backend call goes through.
// It attaches the stored access token and recovers from an expired one with one
// coordinated refresh followed by one retry of the failed request.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/token"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout = 10 * time.Second

	RefreshPath = "/auth/refresh"

	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 10 << 20
	refreshFlight   = "refresh"
)

// Client talks to the REST backend. It is safe for concurrent use and is meant
// to be constructed once per process.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      tokenstore.Store
	refreshes  singleflight.Group

	// sessionMu serializes writes to the stored session. generation changes
	// whenever the session is replaced or cleared.
	sessionMu  sync.Mutex
	generation atomic.Uint64

	mu               sync.RWMutex
	onSessionInvalid func(error)
}

type Option func(*Client)

// WithTimeout sets the fixed per-request timeout (including refresh calls)
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying client; its Timeout is used as-is
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, store tokenstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnSessionInvalid registers the callback fired after the session has been torn
// down because it could not be recovered (no refresh token, or refresh failed).
// Token storage is already cleared when it runs.
func (c *Client) OnSessionInvalid(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionInvalid = fn
}

// SessionGeneration identifies the stored session. It changes on every login,
// logout or forced invalidation, but not on a token refresh.
func (c *Client) SessionGeneration() uint64 {
	return c.generation.Load()
}

// ReplaceSession runs fn under the session write lock and starts a new
// generation, so refreshes and profile writes begun earlier are discarded.
// fn must not call back into the client's session methods.
func (c *Client) ReplaceSession(fn func() error) error {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	c.generation.Add(1)
	return fn()
}

// UpdateSession runs fn under the session write lock only while the session is
// still generation gen. Otherwise fn is skipped and ErrNoSession is returned.
func (c *Client) UpdateSession(gen uint64, fn func() error) error {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.generation.Load() != gen {
		return dasherrors.ErrNoSession
	}
	return fn()
}

// Request describes one logical backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header

	// SkipRefresh returns a 401 to the caller instead of refreshing.
	// Used for the auth endpoints themselves.
	SkipRefresh bool
}

// Response is a fully read backend response with a 2xx status
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// pendingRequest is the resubmittable form of a Request plus its retry marker
type pendingRequest struct {
	method    string
	url       string
	body      []byte
	header    http.Header
	requestID string
	retried   bool
}

func (c *Client) newPending(req *Request) (*pendingRequest, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body []byte
	if req.Body != nil {
		var err error
		if body, err = json.Marshal(req.Body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	return &pendingRequest{
		method:    method,
		url:       u,
		body:      body,
		header:    header,
		requestID: uuid.New().String(),
	}, nil
}

// Do sends the request. A 401 on a request that has not been retried yet is
// recovered by refreshing the token pair once and resubmitting once; whatever
// the resubmission returns goes back to the caller. Non-2xx statuses come back
// as *APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	pending, err := c.newPending(req)
	if err != nil {
		return nil, err
	}

	sentWith, _ := c.store.Get(tokenstore.KeyAccessToken)
	resp, err := c.send(ctx, pending, sentWith)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || req.SkipRefresh || pending.retried {
		return resultOf(resp)
	}
	pending.retried = true

	accessToken, err := c.recoverSession(ctx, sentWith)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("request_id", pending.requestID).Str("path", req.Path).Msg("retrying request with refreshed token")
	resp, err = c.send(ctx, pending, accessToken)
	if err != nil {
		return nil, err
	}
	return resultOf(resp)
}

func (c *Client) send(ctx context.Context, p *pendingRequest, accessToken string) (*Response, error) {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range p.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(headerRequestID, p.requestID)
	if p.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Del("Authorization")
	if accessToken != "" {
		token.Pair{AccessToken: accessToken}.Bearer().SetAuthHeader(httpReq)
	}

	return c.roundTrip(ctx, httpReq)
}

func (c *Client) roundTrip(ctx context.Context, httpReq *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("%w: %s %s returned more than %d bytes", dasherrors.ErrResponseTooLarge, httpReq.Method, httpReq.URL.Path, maxBodyBytes)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// transportError classifies a failure that produced no HTTP response
func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", dasherrors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", dasherrors.ErrNetwork, err)
}

func resultOf(resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	return nil, newAPIError(resp)
}
