package jenkins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// API defines the Jenkins operations jenky uses.
// This interface is implemented by *Client and can be used for testing.
type API interface {
	GetJobs(ctx context.Context) ([]Job, error)
	GetJobInfo(ctx context.Context, name string) (JobInfo, error)
	GetJobParameters(ctx context.Context, name string) ([]ParameterDefinition, error)
	BuildJob(ctx context.Context, name string, params map[string]any, token string) (string, error)
	GetBuildHistory(ctx context.Context, name string) ([]Build, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// URL templates, relative to the server root.
const (
	infoPath            = "api/json"
	crumbPath           = "crumbIssuer/api/json"
	jobInfoPath         = "%s/api/json?depth=%d"
	buildPath           = "%s/build"
	buildWithParamsPath = "%s/buildWithParameters"
	buildHistoryPath    = "%s/api/json?%s"
	buildHistoryTree    = "builds[url,fullDisplayName,actions[parameters[name,value]]]"
)

const (
	defaultUserAgent = "jenky/0.1"
	defaultTimeout   = 30 * time.Second
)

type crumbState int

const (
	crumbUnknown crumbState = iota
	crumbNotNeeded
	crumbLoaded
)

// Client talks to the Jenkins HTTP API.
type Client struct {
	server    string
	username  string
	apiKey    string
	http      *http.Client
	timeout   time.Duration
	userAgent string

	mu         sync.Mutex
	crumbState crumbState
	crumb      crumb
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the single connect/read timeout for every request. It
// applies to a copy of any client given with WithHTTPClient, whatever the
// option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. The client is not
// modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the Jenkins server at hostname. Basic auth is
// sent when both username and apiKey are non-empty.
func NewClient(hostname, username, apiKey string, opts ...Option) (*Client, error) {
	server, err := normalizeServer(hostname)
	if err != nil {
		return nil, err
	}
	c := &Client{
		server:    server,
		username:  username,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// Server returns the normalized server URL, always ending in "/".
func (c *Client) Server() string {
	return c.server
}

// GetJobs returns every top-level job with its name, url and color.
func (c *Client) GetJobs(ctx context.Context) ([]Job, error) {
	var payload ServerInfo
	if err := c.get(ctx, "get jobs", infoPath, &payload); err != nil {
		return nil, err
	}
	return payload.Jobs, nil
}

// GetJobInfo returns the job information for name.
func (c *Client) GetJobInfo(ctx context.Context, name string) (JobInfo, error) {
	op := fmt.Sprintf("get job info [%s]", name)
	var payload JobInfo
	if err := c.get(ctx, op, fmt.Sprintf(jobInfoPath, jobPath(name), 0), &payload); err != nil {
		return JobInfo{}, err
	}
	return payload, nil
}

// GetJobParameters returns the parameter definitions of name. A job without
// parameters yields an empty slice.
func (c *Client) GetJobParameters(ctx context.Context, name string) ([]ParameterDefinition, error) {
	info, err := c.GetJobInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	defs := info.ParameterDefinitions()
	if defs == nil {
		defs = []ParameterDefinition{}
	}
	return defs, nil
}

// GetBuildHistory returns the job's recent builds with their recorded parameters.
func (c *Client) GetBuildHistory(ctx context.Context, name string) ([]Build, error) {
	op := fmt.Sprintf("get build history [%s]", name)
	query := url.Values{"tree": []string{buildHistoryTree}}.Encode()
	var payload buildHistory
	if err := c.get(ctx, op, fmt.Sprintf(buildHistoryPath, jobPath(name), query), &payload); err != nil {
		return nil, err
	}
	return payload.records(), nil
}

// BuildJobURL returns the URL that triggers a build of name. Parameters use
// buildWithParameters; a bare token or nothing uses build.
func (c *Client) BuildJobURL(name string, params map[string]any, token string) string {
	job := jobPath(name)
	if len(params) > 0 {
		values := encodeParams(params)
		if token != "" {
			values.Set("token", token)
		}
		return c.server + fmt.Sprintf(buildWithParamsPath, job) + "?" + values.Encode()
	}
	if token != "" {
		return c.server + fmt.Sprintf(buildPath, job) + "?" + url.Values{"token": []string{token}}.Encode()
	}
	return c.server + fmt.Sprintf(buildPath, job)
}

// BuildJob queues a build of name and returns the queue item URL Jenkins
// reports in the Location header, which may be empty.
func (c *Client) BuildJob(ctx context.Context, name string, params map[string]any, token string) (string, error) {
	op := fmt.Sprintf("build job [%s]", name)
	if err := c.ensureCrumb(ctx); err != nil {
		return "", err
	}
	header, err := c.do(ctx, op, http.MethodPost, c.BuildJobURL(name, params, token), nil, true)
	if err != nil {
		return "", err
	}
	return header.Get("Location"), nil
}

func (c *Client) get(ctx context.Context, op, path string, dest any) error {
	_, err := c.do(ctx, op, http.MethodGet, c.server+path, dest, false)
	return err
}

// ensureCrumb fetches the CSRF crumb once. A 404 from the crumb issuer means
// the server does not require one, which is remembered for the client's lifetime.
func (c *Client) ensureCrumb(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crumbState != crumbUnknown {
		return nil
	}
	var payload crumb
	_, err := c.do(ctx, "get crumb", http.MethodGet, c.server+crumbPath, &payload, false)
	switch {
	case errors.Is(err, ErrNotFound):
		c.crumbState = crumbNotNeeded
		return nil
	case err != nil:
		return err
	}
	c.crumb = payload
	c.crumbState = crumbLoaded
	return nil
}

func (c *Client) crumbHeader() (string, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crumbState != crumbLoaded || c.crumb.CrumbRequestField == "" {
		return "", "", false
	}
	return c.crumb.CrumbRequestField, c.crumb.Crumb, true
}

func (c *Client) do(ctx context.Context, op, method, rawURL string, dest any, withCrumb bool) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.username != "" && c.apiKey != "" {
		req.SetBasicAuth(c.username, c.apiKey)
	}
	if withCrumb {
		if field, value, ok := c.crumbHeader(); ok {
			req.Header.Set(field, value)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, statusError(op, resp.StatusCode)
	}
	if dest == nil {
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return nil, &Error{Op: op, Kind: KindParse, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.Header, nil
}

// jobPath maps "folder/job" to "job/folder/job/job", escaping each segment.
func jobPath(name string) string {
	segments := strings.Split(strings.Trim(name, "/"), "/")
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return "job/" + strings.Join(escaped, "/job/")
}

func encodeParams(params map[string]any) url.Values {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	values := url.Values{}
	for _, name := range names {
		switch v := params[name].(type) {
		case nil:
			values.Set(name, "")
		case string:
			values.Set(name, v)
		case bool:
			values.Set(name, strconv.FormatBool(v))
		default:
			values.Set(name, fmt.Sprint(v))
		}
	}
	return values
}

func normalizeServer(hostname string) (string, error) {
	trimmed := strings.TrimSpace(hostname)
	if trimmed == "" {
		return "", fmt.Errorf("jenkins hostname is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse hostname %q: %w", hostname, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse hostname %q: missing host", hostname)
	}
	u.RawQuery = ""
	u.Fragment = ""
	server := u.String()
	if !strings.HasSuffix(server, "/") {
		server += "/"
	}
	return server, nil
}
