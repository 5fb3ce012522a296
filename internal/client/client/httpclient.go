package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/client/models"
	"github.com/dmitrijs2005/jobmarket/internal/common"
)

const reasonTokenExpired = "token_expired"

// HTTPClient talks to the jobmarket API. It keeps the session's token pair
// and, when the server reports an expired access token, refreshes it once and
// repeats the call.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// apiError keeps the server's reason next to the mapped sentinel.
type apiError struct {
	sentinel error
	status   int
	body     errorBody
}

func (e *apiError) Error() string {
	if e.body.Error != "" {
		return fmt.Sprintf("%s: %s", e.sentinel, e.body.Error)
	}
	return e.sentinel.Error()
}

func (e *apiError) Unwrap() error { return e.sentinel }

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *HTTPClient) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	if refresh != "" {
		c.refreshToken = refresh
	}
}

// Tokens exposes the current pair, mainly for tests and diagnostics.
func (c *HTTPClient) Tokens() (access, refresh string) {
	return c.tokens()
}

func (c *HTTPClient) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.refreshToken = ""
}

func (c *HTTPClient) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	var u models.User
	body := map[string]string{"email": email, "password": password, "role": role}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &u, false); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp, false); err != nil {
		return err
	}
	c.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return ErrSessionExpired
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"refresh_token": refresh}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, body, &resp, false); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return ErrSessionExpired
		}
		return err
	}
	c.setTokens(resp.AccessToken, "")
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil, nil, false)
}

func (c *HTTPClient) SearchJobs(ctx context.Context, p models.SearchParams) (*models.SearchResult, error) {
	var res models.SearchResult
	if err := c.do(ctx, http.MethodGet, "/api/jobs", searchQuery(p), nil, &res, true); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id), nil, nil, &j, true); err != nil {
		return nil, err
	}
	return &j, nil
}

func (c *HTTPClient) CreateJob(ctx context.Context, in models.JobInput) (*models.Job, error) {
	var j models.Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs", nil, in, &j, true); err != nil {
		return nil, err
	}
	return &j, nil
}

func (c *HTTPClient) UpdateJob(ctx context.Context, id string, in models.JobInput) (*models.Job, error) {
	var j models.Job
	if err := c.do(ctx, http.MethodPut, "/api/jobs/"+url.PathEscape(id), nil, in, &j, true); err != nil {
		return nil, err
	}
	return &j, nil
}

func (c *HTTPClient) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/jobs/"+url.PathEscape(id), nil, nil, nil, true)
}

func searchQuery(p models.SearchParams) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("q", p.Text)
	set("city", p.City)
	set("category", p.Category)
	set("job_type", p.JobType)
	set("employer_id", p.EmployerID)
	set("sort", p.Sort)
	if !p.PostedFrom.IsZero() {
		q.Set("from", p.PostedFrom.UTC().Format(time.RFC3339))
	}
	if !p.PostedTo.IsZero() {
		q.Set("to", p.PostedTo.UTC().Format(time.RFC3339))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// do sends one request. With auth set, an expired access token triggers a
// single refresh and retry.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any, auth bool) error {
	err := c.send(ctx, method, path, query, in, out, auth)

	var apiErr *apiError
	if !auth || !errors.As(err, &apiErr) || apiErr.body.Reason != reasonTokenExpired {
		return err
	}

	if err := c.refresh(ctx); err != nil {
		return err
	}
	return c.send(ctx, method, path, query, in, out, auth)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, in, out any, auth bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		access, _ := c.tokens()
		if access != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+access)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	e := &apiError{status: resp.StatusCode}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e.body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		e.sentinel = ErrUnauthorized
	case http.StatusForbidden:
		e.sentinel = ErrForbidden
	case http.StatusNotFound:
		e.sentinel = ErrNotFound
	case http.StatusConflict:
		e.sentinel = ErrConflict
	case http.StatusBadRequest:
		e.sentinel = ErrBadRequest
	case http.StatusGatewayTimeout:
		e.sentinel = ErrTimeout
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		e.sentinel = ErrUnavailable
	default:
		e.sentinel = fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return e
}
