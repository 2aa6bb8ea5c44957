// Package remote is the HTTP client for the compliance backend API. All
// endpoints live under the versioned /api/v1 prefix and authenticate with a
// per-session bearer token.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/logging"
	"github.com/esgtools/esgkeeper/internal/models"
	"github.com/esgtools/esgkeeper/internal/storage"
	"github.com/sethvargo/go-retry"
)

const (
	apiPrefix = "/api/v1"
	userAgent = "esgkeeper/1.0"

	// retryBase and maxRetries bound the fibonacci backoff on recoverable
	// GET failures: at most 3 attempts in total.
	retryBase  = 500 * time.Millisecond
	maxRetries = 2
)

// ErrMalformedResponse marks a successful reply whose envelope carries no
// data payload. It is terminal: the server accepted the request, so the call
// is never retried and never replayed locally.
var ErrMalformedResponse = errors.New("malformed api response: missing data")

// APIError is a remote call failure carrying the HTTP status and the
// endpoint, never the response body of an error page.
type APIError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api request to %s failed: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("api error %d on %s", e.Status, e.Endpoint)
}

// Recoverable reports whether the failure is transient: connection errors
// and timeouts (status 0 or 408) and server-side errors. Authentication and
// permission failures are terminal.
func (e *APIError) Recoverable() bool {
	return e.Status == 0 || e.Status == http.StatusRequestTimeout || e.Status >= 500
}

// Client talks to the remote compliance API. It is safe for concurrent use;
// the bearer token is swapped atomically on login and cleared on a 401.
type Client struct {
	baseURL *url.URL
	hc      *http.Client
	log     logging.Logger

	mu    sync.Mutex
	token string
}

func NewClient(baseURL string, timeout time.Duration, log logging.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("remote api base url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid remote api base url")
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: u,
		hc:      &http.Client{Timeout: timeout},
		log:     log.With("component", "remote"),
	}, nil
}

// SetToken installs the bearer token minted for the current session.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) clearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

// doJSON performs one request. Status mapping: 401 clears the stored token
// and demands re-authentication, 403 is a terminal permission failure, any
// other >=400 becomes an *APIError. Transport failures and timeouts map to
// *APIError with status 0, which is recoverable.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: apiPrefix + endpoint})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "endpoint", endpoint, "err", err)
		return &APIError{Status: 0, Endpoint: endpoint, Message: transportReason(err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.clearToken()
		return common.ErrReauthenticationRequired
	case resp.StatusCode == http.StatusForbidden:
		return common.ErrPermissionDenied
	case resp.StatusCode >= 400:
		c.log.Warn(ctx, "api error", "endpoint", endpoint, "status", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Endpoint: endpoint}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func transportReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timeout"
	}
	if strings.Contains(err.Error(), "connection refused") {
		return "cannot connect to api server"
	}
	return "network error"
}

// getJSON wraps doJSON with fibonacci backoff on recoverable failures.
// Only reads are retried; writes are never replayed.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	b := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(retryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Recoverable() {
			return retry.RetryableError(err)
		}
		return err
	})
}

// dataEnvelope is the backend's standard response wrapper.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/health", nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var resp dataEnvelope[[]models.Project]
	if err := c.getJSON(ctx, "/projects", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var resp dataEnvelope[*models.Project]
	if err := c.getJSON(ctx, "/projects/"+url.PathEscape(projectID), &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, common.ErrorNotFound
	}
	return resp.Data, nil
}

func (c *Client) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	var resp dataEnvelope[*models.Project]
	if err := c.doJSON(ctx, http.MethodPost, "/projects", p, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, ErrMalformedResponse
	}
	return resp.Data, nil
}

func (c *Client) UpdateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	var resp dataEnvelope[*models.Project]
	endpoint := "/projects/" + url.PathEscape(p.ID)
	if err := c.doJSON(ctx, http.MethodPut, endpoint, p, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, ErrMalformedResponse
	}
	return resp.Data, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/projects/"+url.PathEscape(projectID), nil, nil)
}

func (c *Client) ListOrganisations(ctx context.Context) ([]models.Organisation, error) {
	var resp dataEnvelope[[]models.Organisation]
	if err := c.getJSON(ctx, "/organisations", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) CreateOrganisation(ctx context.Context, o *models.Organisation) (*models.Organisation, error) {
	var resp dataEnvelope[*models.Organisation]
	if err := c.doJSON(ctx, http.MethodPost, "/organisations", o, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, ErrMalformedResponse
	}
	return resp.Data, nil
}

func (c *Client) ListESGData(ctx context.Context, projectID string) ([]models.ESGDataPoint, error) {
	var resp dataEnvelope[[]models.ESGDataPoint]
	endpoint := "/projects/" + url.PathEscape(projectID) + "/esg-data"
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) CreateESGData(ctx context.Context, d *models.ESGDataPoint) (*models.ESGDataPoint, error) {
	var resp dataEnvelope[*models.ESGDataPoint]
	endpoint := "/projects/" + url.PathEscape(d.ProjectID) + "/esg-data"
	if err := c.doJSON(ctx, http.MethodPost, endpoint, d, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, ErrMalformedResponse
	}
	return resp.Data, nil
}

// assessmentEndpoint maps a framework kind to its fixed path segment. The
// kind is validated against the closed enum before it touches the URL.
func assessmentEndpoint(kind storage.FrameworkKind, projectID string) (string, error) {
	switch kind {
	case storage.FrameworkTCFD, storage.FrameworkCSRD, storage.FrameworkGRI, storage.FrameworkSASB:
		return "/projects/" + url.PathEscape(projectID) + "/" + string(kind) + "/assessment", nil
	default:
		return "", fmt.Errorf("unknown assessment framework %q", kind)
	}
}

func (c *Client) GetAssessment(ctx context.Context, kind storage.FrameworkKind, projectID string) (*models.Assessment, error) {
	endpoint, err := assessmentEndpoint(kind, projectID)
	if err != nil {
		return nil, err
	}
	var resp dataEnvelope[*models.Assessment]
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, common.ErrorNotFound
	}
	return resp.Data, nil
}

func (c *Client) CreateAssessment(ctx context.Context, kind storage.FrameworkKind, a *models.Assessment) (*models.Assessment, error) {
	endpoint, err := assessmentEndpoint(kind, a.ProjectID)
	if err != nil {
		return nil, err
	}
	var resp dataEnvelope[*models.Assessment]
	if err := c.doJSON(ctx, http.MethodPost, endpoint, a, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, ErrMalformedResponse
	}
	return resp.Data, nil
}
