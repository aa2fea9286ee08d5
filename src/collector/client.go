// Package collector provides a client for the Hygieia dashboard collector API.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/provider"
)

// Endpoint paths relative to the API URL.
const (
	PathBuild          = "/build"
	PathArtifact       = "/artifact"
	PathTest           = "/quality/test"
	PathStaticAnalysis = "/quality/static-analysis"
	PathDeploy         = "/deploy"
	PathPing           = "/ping"
	PathCollectorItems = "/collector/item/type/"
)

// Service is the set of collector operations the notifier uses.
type Service interface {
	PublishBuild(ctx context.Context, event *contracts.BuildEvent) Response
	PublishArtifact(ctx context.Context, d artifact.Descriptor) Response
	PublishTestResults(ctx context.Context, req *contracts.TestDataCreateRequest) Response
	PublishCodeQuality(ctx context.Context, req *contracts.CodeQualityCreateRequest) Response
	PublishDeploy(ctx context.Context, req *contracts.DeployDataCreateRequest) Response
	Ping(ctx context.Context) error
}

// Response is the outcome of one collector request. Code is zero when the
// request never got an HTTP response; Err then holds the reason.
type Response struct {
	Code  int
	Value string
	Err   error
}

// Created reports whether the collector accepted a create request.
func (r Response) Created() bool {
	return r.Code == http.StatusCreated
}

func (r Response) String() string {
	if r.Err != nil {
		return fmt.Sprintf("Response Code: %d. Error: %v", r.Code, r.Err)
	}
	return fmt.Sprintf("Response Code: %d. Response Value: %s", r.Code, r.Value)
}

// Client is a collector API client. It makes exactly one attempt per call.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request of the default HTTP client. Without it a
// request runs until the caller's context is done or the transport fails.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTracerProvider sets where request spans are recorded.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer("hygieia-reporter/collector") }
}

// NewClient creates a new collector client for the API rooted at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
		tracer:     otel.Tracer("hygieia-reporter/collector"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PublishBuild posts a build event. On success Value holds the id of the
// created build record with any surrounding quotes removed.
func (c *Client) PublishBuild(ctx context.Context, event *contracts.BuildEvent) Response {
	resp := c.post(ctx, PathBuild, event)
	resp.Value = strings.ReplaceAll(resp.Value, `"`, "")
	return resp
}

// PublishArtifact posts one binary artifact.
func (c *Client) PublishArtifact(ctx context.Context, d artifact.Descriptor) Response {
	return c.post(ctx, PathArtifact, d)
}

// PublishTestResults posts a test run summary.
func (c *Client) PublishTestResults(ctx context.Context, req *contracts.TestDataCreateRequest) Response {
	return c.post(ctx, PathTest, req)
}

// PublishCodeQuality posts static-analysis metrics.
func (c *Client) PublishCodeQuality(ctx context.Context, req *contracts.CodeQualityCreateRequest) Response {
	return c.post(ctx, PathStaticAnalysis, req)
}

// PublishDeploy posts one deployment record.
func (c *Client) PublishDeploy(ctx context.Context, req *contracts.DeployDataCreateRequest) Response {
	return c.post(ctx, PathDeploy, req)
}

// Ping checks connectivity; any status other than 200 is an error.
func (c *Client) Ping(ctx context.Context) error {
	if c.baseURL == "" {
		return provider.ErrNoCollectorEndpoint
	}
	code, body, err := c.get(ctx, PathPing)
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrCollectorDown, err)
	}
	return statusError(code, body)
}

// CollectorItemOptions returns the "options" object of every collector item
// of the given type. A failed request or unparseable body yields an empty list.
func (c *Client) CollectorItemOptions(ctx context.Context, itemType string) ([]map[string]any, error) {
	options := []map[string]any{}

	code, body, err := c.get(ctx, PathCollectorItems+itemType)
	if err != nil {
		return options, fmt.Errorf("%w: %v", provider.ErrCollectorDown, err)
	}
	if err := statusError(code, body); err != nil {
		return options, err
	}

	var items []struct {
		Options map[string]any `json:"options"`
	}
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return options, fmt.Errorf("failed to decode collector items: %w", err)
	}
	for _, item := range items {
		if item.Options != nil {
			options = append(options, item.Options)
		}
	}
	return options, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) Response {
	ctx, span := c.tracer.Start(ctx, "POST "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if c.baseURL == "" {
		return failed(span, provider.ErrNoCollectorEndpoint)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failed(span, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return failed(span, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/plain")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed(span, fmt.Errorf("%w: %v", provider.ErrCollectorDown, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err != nil {
		span.RecordError(err)
		return Response{Code: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusCreated {
		span.SetStatus(codes.Error, resp.Status)
	}

	return Response{Code: resp.StatusCode, Value: string(respBody)}
}

func (c *Client) get(ctx context.Context, path string) (int, string, error) {
	ctx, span := c.tracer.Start(ctx, "GET "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		span.RecordError(err)
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return 0, "", err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "apiToken "+c.token)
	}
}

func failed(span trace.Span, err error) Response {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return Response{Err: err}
}

func statusError(code int, body string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", provider.ErrAuthFailed, code)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", provider.ErrEndpointNotFound, code)
	default:
		return fmt.Errorf("collector request failed with status %d: %s", code, body)
	}
}

// IsTransportError reports whether r failed before an HTTP status was received.
func IsTransportError(r Response) bool {
	return r.Code == 0 && errors.Is(r.Err, provider.ErrCollectorDown)
}
