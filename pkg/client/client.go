// Package client loads published templates and delivers submissions over
// HTTP. Transport failures are recoverable: a failed load or submit surfaces
// a typed error and leaves retry to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
)

var (
	// ErrTemplateNotFound reports a 404 for a slug: the template is absent
	// or no longer published.
	ErrTemplateNotFound = errors.New("client: template not found")
	// ErrUnexpectedContent reports a non-JSON response body, treated as a
	// load failure rather than a parse attempt.
	ErrUnexpectedContent = errors.New("client: unexpected content type")
)

// Option customises the client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Client talks to a form host serving the public respondent endpoints.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

// New constructs a client for the given base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("client: base url is required")
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	c := &Client{
		base:       base,
		httpClient: http.DefaultClient,
		timeout:    30 * time.Second,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// LoadTemplate fetches the published template for a slug. A 404 maps to
// ErrTemplateNotFound; a non-JSON content type maps to ErrUnexpectedContent.
// The document is integrity-checked before being returned.
func (c *Client) LoadTemplate(ctx context.Context, slug string) (*schema.Template, error) {
	body, err := c.get(ctx, c.endpoint("forms", slug))
	if err != nil {
		return nil, err
	}
	tmpl, err := schema.DecodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("client: load template %q: %w", slug, err)
	}
	return tmpl, nil
}

// SubmitRequest is the submit endpoint's body.
type SubmitRequest struct {
	Data            map[string]map[string]any `json:"data"`
	RespondentEmail string                    `json:"respondentEmail,omitempty"`
	RespondentName  string                    `json:"respondentName,omitempty"`
	StartedAt       time.Time                 `json:"startedAt"`
}

// SubmitFromSubmission maps an assembled submission document onto the wire
// envelope.
func SubmitFromSubmission(sub schema.Submission) SubmitRequest {
	return SubmitRequest{
		Data:            sub.Data,
		RespondentEmail: sub.RespondentEmail,
		RespondentName:  sub.RespondentName,
		StartedAt:       sub.StartedAt,
	}
}

// Submit delivers a completed submission for a slug. Any non-2xx status is an
// error; the caller decides whether to retry.
func (c *Client) Submit(ctx context.Context, slug string, req SubmitRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("client: encode submission: %w", err)
	}

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint("forms", slug, "submit"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("client: submit: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrTemplateNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("client: submit: unexpected status %s", resp.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrTemplateNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("client: unexpected status %s", resp.Status)
	}

	if !jsonContentType(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedContent, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read body: %w", err)
	}
	return body, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

func (c *Client) endpoint(parts ...string) string {
	ref := &url.URL{Path: strings.Join(parts, "/")}
	return c.base.ResolveReference(ref).String()
}

func jsonContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
