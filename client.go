package qbt

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/aqbt/qbt/mapper"
	"github.com/aqbt/qbt/params"
	"github.com/aqbt/qbt/version"
)

const (
	// DefaultMaxAttempts bounds the retry loop for idempotent requests.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the base delay between attempts and the longest
	// server-advised wait the client will honor.
	DefaultRetryDelay = 5 * time.Second

	// DefaultRequestTimeout applies per attempt on an owned HTTP client.
	DefaultRequestTimeout = 30 * time.Second
)

// Config contains runtime client settings and credentials.
type Config struct {
	BaseURL  string
	Username string
	Password string

	// MaxAttempts bounds attempts for GET and HEAD requests. Other methods
	// always use a single attempt.
	MaxAttempts int

	// RetryDelay is the base backoff between attempts.
	RetryDelay time.Duration

	RequestTimeout time.Duration
}

// Client is a typed qBittorrent WebUI API client with session cookies,
// bounded retry and version negotiation.
type Client struct {
	config   Config
	http     *http.Client
	ownsHTTP bool

	logger        Logger
	limiter       *rate.Limiter
	location      *time.Location
	userAgent     string
	logoutOnClose bool

	closed atomic.Bool

	clientVersion atomic.Pointer[version.ClientVersion]
	apiVersion    atomic.Pointer[version.APIVersion]

	mapperCtx *mapper.Context

	Auth     *AuthAPI
	App      *AppAPI
	Log      *LogAPI
	RSS      *RSSAPI
	Search   *SearchAPI
	Sync     *SyncAPI
	Torrents *TorrentsAPI
	Transfer *TransferAPI
}

// Option adjusts optional client behavior at construction.
type Option func(*Client)

// WithHTTPClient borrows an existing HTTP client instead of owning one.
// A cookie jar is attached if the client has none.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger routes client diagnostics to l.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTimezone localizes converted timestamps to loc instead of UTC.
func WithTimezone(loc *time.Location) Option {
	return func(c *Client) {
		c.location = loc
	}
}

// WithRateLimit throttles outgoing attempts with a token bucket.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithoutLogoutOnClose skips the best-effort logout during Close.
func WithoutLogoutOnClose() Option {
	return func(c *Client) {
		c.logoutOnClose = false
	}
}

// New creates a client. Call Login to establish the session and negotiate
// versions before using the API groups.
func New(config Config, opts ...Option) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}

	c := &Client{
		config:        config,
		logger:        NoopLogger{},
		logoutOnClose: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create cookie jar")
		}
		c.http = &http.Client{Jar: jar, Timeout: config.RequestTimeout}
		c.ownsHTTP = true
	} else if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create cookie jar")
		}
		c.http.Jar = jar
	}

	c.mapperCtx = &mapper.Context{Location: c.location}

	c.Auth = &AuthAPI{c}
	c.App = &AppAPI{c}
	c.Log = &LogAPI{c}
	c.RSS = &RSSAPI{c}
	c.Search = &SearchAPI{c}
	c.Sync = &SyncAPI{c}
	c.Torrents = &TorrentsAPI{c}
	c.Transfer = &TransferAPI{c}
	return c, nil
}

// Login establishes the session cookie with the configured credentials and
// caches the server's client and API versions for later gating decisions.
// The versions are fetched once here and reused for the client's lifetime.
func (c *Client) Login(ctx context.Context) error {
	if err := c.Auth.Login(ctx, c.config.Username, c.config.Password); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := c.App.Version(gctx)
		if err != nil {
			return err
		}
		v, err := version.ParseClient(raw)
		if err != nil {
			c.logger.Warnf("unrecognized client version %q, assuming latest", raw)
			return nil
		}
		c.clientVersion.Store(&v)
		return nil
	})
	g.Go(func() error {
		raw, err := c.App.WebAPIVersion(gctx)
		if err != nil {
			return err
		}
		v, err := version.ParseAPI(raw)
		if err != nil {
			c.logger.Warnf("unrecognized API version %q, assuming latest", raw)
			return nil
		}
		c.apiVersion.Store(&v)
		return nil
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "failed to negotiate versions")
	}
	return nil
}

// ClientVersion returns the cached application version, or nil when it was
// never negotiated or did not parse. Nil is treated as latest.
func (c *Client) ClientVersion() *version.ClientVersion {
	return c.clientVersion.Load()
}

// APIVersion returns the cached WebAPI version, or nil when it was never
// negotiated or did not parse. Nil is treated as latest.
func (c *Client) APIVersion() *version.APIVersion {
	return c.apiVersion.Load()
}

func (c *Client) checkVersion(min version.APIVersion) error {
	return version.Check(c.APIVersion(), min)
}

// apiAtLeast reports whether the negotiated API version is min or newer.
// An unknown version counts as newer.
func (c *Client) apiAtLeast(min version.APIVersion) bool {
	return version.CompareAPI(c.APIVersion(), &min) >= 0
}

// Close logs out best-effort and releases owned resources. Requests issued
// after Close fail fast.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.logoutOnClose {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.logout(ctx); err != nil {
			c.logger.Debugf("logout on close: %v", err)
		}
	}
	if c.ownsHTTP {
		c.http.CloseIdleConnections()
	}
	return nil
}

func (c *Client) logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "auth/logout", nil, formBody(params.New()))
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

type requestBody struct {
	contentType string
	payload     []byte
}

func formBody(d *params.Dict) *requestBody {
	return &requestBody{
		contentType: "application/x-www-form-urlencoded",
		payload:     []byte(d.Encode()),
	}
}

// request is the entry point used by the API groups. It fails fast on a
// closed client, then hands off to the retry engine.
func (c *Client) request(ctx context.Context, method, apiPath string, query url.Values, body *requestBody) (*http.Response, error) {
	if c.closed.Load() {
		return nil, NewAPIError(ErrorCodeClientClosed, 0, "client is closed", nil)
	}
	return c.do(ctx, method, apiPath, query, body)
}

// do runs the attempt loop. A 200 response is returned with its body
// unread; any other status is read fully, classified, and either retried
// or surfaced as a typed error. Only GET and HEAD are ever retried.
func (c *Client) do(ctx context.Context, method, apiPath string, query url.Values, body *requestBody) (*http.Response, error) {
	endpoint := c.config.BaseURL + "/api/v2/" + apiPath
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	maxAttempts := c.config.MaxAttempts
	if method != http.MethodGet && method != http.MethodHead {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body.payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build %s %s", method, apiPath)
		}
		req.Header.Set("Referer", c.config.BaseURL)
		if body != nil {
			req.Header.Set("Content-Type", body.contentType)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt < maxAttempts && isRetryableConnError(err) {
				c.logger.Warnf("%s %s: %v, retrying in %s (attempt %d/%d)",
					method, apiPath, err, c.config.RetryDelay, attempt, maxAttempts)
				if err := sleepCtx(ctx, c.config.RetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, errors.Wrapf(err, "%s %s failed", method, apiPath)
		}

		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		var cause error
		if isRetryableStatus(resp.StatusCode) {
			if attempt < maxAttempts {
				delay, retryable := retryDelay(resp.Header.Get("Retry-After"), c.config.RetryDelay)
				if retryable {
					c.logger.Warnf("%s %s returned %d, retrying in %s (attempt %d/%d)",
						method, apiPath, resp.StatusCode, delay, attempt, maxAttempts)
					if err := sleepCtx(ctx, delay); err != nil {
						return nil, err
					}
					continue
				}
				cause = errors.Errorf("server advised a wait beyond the %s budget", c.config.RetryDelay)
			} else {
				cause = errors.Errorf("gave up after %d of %d attempts", attempt, maxAttempts)
			}
		}
		return nil, newStatusError(resp.StatusCode, string(respBody), cause)
	}
}

// retryDelay interprets a Retry-After directive against the base delay.
// An integer value within the base delay shortens the sleep; a negative
// value is ignored like a missing header. A larger value, or an HTTP-date
// value, makes the failure terminal.
func retryDelay(header string, base time.Duration) (time.Duration, bool) {
	if header == "" {
		return base, true
	}
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil {
		return 0, false
	}
	if secs < 0 {
		return base, true
	}
	advised := time.Duration(secs) * time.Second
	if advised > base {
		return 0, false
	}
	return advised, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// requestText performs a request and decodes a successful response as text,
// releasing the response body on every exit path.
func (c *Client) requestText(ctx context.Context, method, apiPath string, query url.Values, body *requestBody) (string, error) {
	resp, err := c.request(ctx, method, apiPath, query, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s response", apiPath)
	}
	return string(b), nil
}

// requestJSON performs a request and decodes a successful response into
// out, releasing the response body on every exit path.
func (c *Client) requestJSON(ctx context.Context, method, apiPath string, query url.Values, body *requestBody, out any) error {
	resp, err := c.request(ctx, method, apiPath, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", apiPath)
	}
	return nil
}

// requestBytes performs a request and returns the raw response payload.
func (c *Client) requestBytes(ctx context.Context, method, apiPath string, query url.Values, body *requestBody) ([]byte, error) {
	resp, err := c.request(ctx, method, apiPath, query, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s response", apiPath)
	}
	return b, nil
}

func (c *Client) getJSON(ctx context.Context, apiPath string, d *params.Dict, out any) error {
	var query url.Values
	if d != nil {
		query = d.Values()
	}
	return c.requestJSON(ctx, http.MethodGet, apiPath, query, nil, out)
}

func (c *Client) getText(ctx context.Context, apiPath string, d *params.Dict) (string, error) {
	var query url.Values
	if d != nil {
		query = d.Values()
	}
	return c.requestText(ctx, http.MethodGet, apiPath, query, nil)
}

// postForm sends a form-encoded request and discards the response payload.
func (c *Client) postForm(ctx context.Context, apiPath string, d *params.Dict) error {
	if d == nil {
		d = params.New()
	}
	resp, err := c.request(ctx, http.MethodPost, apiPath, nil, formBody(d))
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) postFormText(ctx context.Context, apiPath string, d *params.Dict) (string, error) {
	if d == nil {
		d = params.New()
	}
	return c.requestText(ctx, http.MethodPost, apiPath, nil, formBody(d))
}

func (c *Client) postFormJSON(ctx context.Context, apiPath string, d *params.Dict, out any) error {
	if d == nil {
		d = params.New()
	}
	return c.requestJSON(ctx, http.MethodPost, apiPath, nil, formBody(d), out)
}
