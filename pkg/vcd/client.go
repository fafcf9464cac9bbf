package vcd

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/zarrenspry/vcd-inventory/pkg/errors"
	"github.com/zarrenspry/vcd-inventory/pkg/resolver"
)

const (
	defaultAPIVersion  = "36.0"
	defaultConcurrency = 8
	defaultPageSize    = 128
	defaultTimeout     = 60 * time.Second

	headerAccessToken = "X-VMWARE-VCLOUD-ACCESS-TOKEN"
	headerLegacyToken = "x-vcloud-authorization"
)

// Credentials authenticate against an organization.
type Credentials struct {
	User     string
	Org      string
	Password string
}

// Option is a functional option for configuring Client instances.
type Option func(*Client)

// WithAPIVersion sets the API version sent in the Accept header.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.insecure = skip
	}
}

// WithHTTPClient replaces the HTTP client. TLS options are ignored when set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps requests per second. Zero or less disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithConcurrency bounds the number of VMs loaded in parallel.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithResolver sets the resolver picking each VM's inventory address.
func WithResolver(r *resolver.Resolver) Option {
	return func(c *Client) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithMetadataSeparator splits string metadata on sep into list values.
func WithMetadataSeparator(sep string) Option {
	return func(c *Client) {
		c.separator = sep
	}
}

// WithPageSize sets the query page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// Client talks to one Cloud Director endpoint on behalf of one organization.
type Client struct {
	baseURL     *url.URL
	creds       Credentials
	vdc         string
	apiVersion  string
	insecure    bool
	httpClient  *http.Client
	limiter     *rate.Limiter
	concurrency int
	pageSize    int
	resolver    *resolver.Resolver
	separator   string

	mu         sync.RWMutex
	authHeader string
	authValue  string
}

// New returns a Client for the API at host listing the VMs of vdc.
func New(host string, creds Credentials, vdc string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(host, "/"))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid vCloud Director host", err,
			map[string]any{"host": host})
	}

	acceptAll, _ := resolver.New("")
	c := &Client{
		baseURL:     u,
		creds:       creds,
		vdc:         vdc,
		apiVersion:  defaultAPIVersion,
		concurrency: defaultConcurrency,
		pageSize:    defaultPageSize,
		resolver:    acceptAll,
		limiter:     rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: c.insecure}, //nolint:gosec // opt-in via verify_ssl_certs
			},
			Timeout: defaultTimeout,
		}
	}
	return c, nil
}

func (c *Client) accept() string {
	return "application/*+json;version=" + c.apiVersion
}

// Login opens a session and keeps its token for subsequent requests.
func (c *Client) Login(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.resolve("/api/sessions"))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.creds.User+"@"+c.creds.Org, c.creds.Password)

	resp, err := c.send(req, "sessions")
	if err != nil {
		return err
	}
	defer drain(resp)

	header, value := headerAccessToken, resp.Header.Get(headerAccessToken)
	if value != "" {
		header, value = "Authorization", "Bearer "+value
	} else if legacy := resp.Header.Get(headerLegacyToken); legacy != "" {
		header, value = headerLegacyToken, legacy
	} else {
		return errors.New(errors.ErrCodeUnauthorized, "login succeeded but no session token was returned")
	}

	c.mu.Lock()
	c.authHeader, c.authValue = header, value
	c.mu.Unlock()

	slog.Debug("logged in to vCloud Director",
		slog.String("host", c.baseURL.Host),
		slog.String("org", c.creds.Org),
		slog.String("user", c.creds.User))
	return nil
}

// Logout ends the current session, if any.
func (c *Client) Logout(ctx context.Context) error {
	if !c.loggedIn() {
		return nil
	}
	req, err := c.newRequest(ctx, http.MethodDelete, c.resolve("/api/session"))
	if err != nil {
		return err
	}
	resp, err := c.send(req, "session")
	if err != nil {
		return err
	}
	drain(resp)

	c.mu.Lock()
	c.authHeader, c.authValue = "", ""
	c.mu.Unlock()
	return nil
}

func (c *Client) loggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authValue != ""
}

func (c *Client) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return c.baseURL.String() + ref
	}
	return c.baseURL.ResolveReference(u).String()
}

func (c *Client) newRequest(ctx context.Context, method, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", c.accept())

	c.mu.RLock()
	if c.authValue != "" {
		req.Header.Set(c.authHeader, c.authValue)
	}
	c.mu.RUnlock()
	return req, nil
}

// send paces and executes req. Non-2xx responses become structured errors.
func (c *Client) send(req *http.Request, endpoint string) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, "rate limiter wait aborted", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "error").Inc()
		if req.Context().Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, "vCloud Director request cancelled", err)
		}
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "vCloud Director request failed", err,
			map[string]any{"endpoint": endpoint})
	}
	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	details := map[string]any{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"body":     strings.TrimSpace(string(body)),
	}
	msg := fmt.Sprintf("vCloud Director %s returned %d", endpoint, resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.WrapWithContext(errors.ErrCodeUnauthorized, msg, nil, details)
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, msg, nil, details)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, msg, nil, details)
	default:
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, msg, nil, details)
	}
}

// getJSON fetches target and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, endpoint, target string, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, target)
	if err != nil {
		return err
	}
	resp, err := c.send(req, endpoint)
	if err != nil {
		return err
	}
	defer drain(resp)

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to decode vCloud Director response", err,
			map[string]any{"endpoint": endpoint})
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
