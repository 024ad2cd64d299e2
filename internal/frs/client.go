// Package frs is a typed client for the FRS agent API.
package frs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/frsworks/frs-sync/internal/httpclient"
	"github.com/frsworks/frs-sync/internal/otel"
)

// TokenHeader carries the API token on every request
const TokenHeader = "X-API-Token"

var (
	// ErrNotConfigured is returned when the base URL or token is missing
	ErrNotConfigured = errors.New("API credentials not configured")

	// ErrInvalidResponse is returned when the API answers with an unexpected body
	ErrInvalidResponse = errors.New("invalid API response")
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client exposes the FRS API operations used by the sync service
type Client interface {
	// TestConnection checks that the API is reachable with the configured token
	TestConnection(ctx context.Context) error

	// CountAgents returns the number of loan officers known to the API
	CountAgents(ctx context.Context) (int, error)

	// ListAgents returns one page of loan officers
	ListAgents(ctx context.Context, offset, limit int) (*AgentPage, error)

	// GetAgent fetches a single agent by remote id
	GetAgent(ctx context.Context, id string) (*Agent, error)

	// RegisterWebhook registers a webhook endpoint with the API
	RegisterWebhook(ctx context.Context, reg WebhookRegistration) (*WebhookCredentials, error)
}

// Option configures the client
type Option func(*defaultClient)

// WithCredentials sets the API base URL and token
func WithCredentials(baseURL, token string) Option {
	return func(c *defaultClient) {
		c.baseURL = baseURL
		c.token = token
	}
}

// WithTimeouts sets the per-call timeouts for single-record and list calls
func WithTimeouts(request, batch time.Duration) Option {
	return func(c *defaultClient) {
		if request > 0 {
			c.requestTimeout = request
		}
		if batch > 0 {
			c.batchTimeout = batch
		}
	}
}

// WithTracer sets the tracer used for API call spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *defaultClient) {
		c.tracer = tracer
	}
}

type defaultClient struct {
	http           httpclient.Client
	baseURL        string
	token          string
	requestTimeout time.Duration
	batchTimeout   time.Duration
	tracer         trace.Tracer
}

// NewClient creates an FRS API client on top of the given transport
func NewClient(httpClient httpclient.Client, opts ...Option) Client {
	c := &defaultClient{
		http:           httpClient,
		requestTimeout: 30 * time.Second,
		batchTimeout:   60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *defaultClient) TestConnection(ctx context.Context) error {
	ctx, span := otel.StartSpan(ctx, c.tracer, "frs.TestConnection")
	defer span.End()

	_, err := c.get(ctx, "/dashboard", c.requestTimeout)
	otel.RecordError(span, err)
	return err
}

func (c *defaultClient) CountAgents(ctx context.Context) (int, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "frs.CountAgents")
	defer span.End()

	body, err := c.get(ctx, agentsPath(0, 1, false), c.requestTimeout)
	if err != nil {
		otel.RecordError(span, err)
		return 0, err
	}
	if !gjson.ValidBytes(body) {
		otel.RecordError(span, ErrInvalidResponse)
		return 0, ErrInvalidResponse
	}

	var count int
	if total := gjson.GetBytes(body, "total_count"); total.Exists() && total.Type != gjson.Null {
		count = int(total.Int())
	} else {
		count = int(gjson.GetBytes(body, "agents.#").Int())
	}
	span.SetAttributes(otel.AttrResultCount.Int(count))
	return count, nil
}

func (c *defaultClient) ListAgents(ctx context.Context, offset, limit int) (*AgentPage, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "frs.ListAgents",
		trace.WithAttributes(otel.AttrOffset.Int(offset), otel.AttrBatchSize.Int(limit)),
	)
	defer span.End()

	body, err := c.get(ctx, agentsPath(offset, limit, true), c.batchTimeout)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	var envelope struct {
		Agents *[]json.RawMessage `json:"agents"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Agents == nil {
		otel.RecordError(span, ErrInvalidResponse)
		return nil, ErrInvalidResponse
	}

	page := &AgentPage{Agents: make([]Agent, 0, len(*envelope.Agents))}
	for i, raw := range *envelope.Agents {
		var agent Agent
		if err := json.Unmarshal(raw, &agent); err != nil {
			slog.WarnContext(ctx, "Skipping undecodable agent record", "offset", offset+i, "error", err)
			page.Invalid++
			continue
		}
		page.Agents = append(page.Agents, agent)
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(page.Agents)))
	return page, nil
}

func (c *defaultClient) GetAgent(ctx context.Context, id string) (*Agent, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "frs.GetAgent",
		trace.WithAttributes(otel.AttrAgentID.String(id)),
	)
	defer span.End()

	if id == "" {
		return nil, fmt.Errorf("agent id is required")
	}

	body, err := c.get(ctx, "/agents/"+url.PathEscape(id), c.requestTimeout)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	raw := gjson.GetBytes(body, "agent")
	if !raw.IsObject() {
		otel.RecordError(span, ErrInvalidResponse)
		return nil, ErrInvalidResponse
	}

	var agent Agent
	if err := json.Unmarshal([]byte(raw.Raw), &agent); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &agent, nil
}

func (c *defaultClient) RegisterWebhook(ctx context.Context, reg WebhookRegistration) (*WebhookCredentials, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "frs.RegisterWebhook",
		trace.WithAttributes(attribute.String("webhook.url", reg.URL)),
	)
	defer span.End()

	if err := c.checkConfigured(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook registration: %w", err)
	}

	resp, err := c.http.Do(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/webhooks",
		Header:  c.headers(),
		Body:    payload,
		Timeout: c.requestTimeout,
	})
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if msg := gjson.GetBytes(httpErr.Body, "error"); msg.Type == gjson.String && msg.String() != "" {
				err = fmt.Errorf("%s: %w", msg.String(), err)
			}
		}
		otel.RecordError(span, err)
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := httpclient.NewHTTPError(resp.StatusCode, c.baseURL+"/webhooks", "unexpected status")
		otel.RecordError(span, err)
		return nil, err
	}

	return &WebhookCredentials{
		WebhookID: gjson.GetBytes(resp.Body, "webhook_id").String(),
		Secret:    gjson.GetBytes(resp.Body, "secret").String(),
	}, nil
}

// get performs an authenticated GET that must answer 200
func (c *defaultClient) get(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     c.baseURL + path,
		Header:  c.headers(),
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.NewHTTPError(resp.StatusCode, c.baseURL+path, "unexpected status")
	}
	return resp.Body, nil
}

func (c *defaultClient) checkConfigured() error {
	if c.baseURL == "" || c.token == "" {
		return ErrNotConfigured
	}
	return nil
}

func (c *defaultClient) headers() http.Header {
	h := http.Header{}
	h.Set(TokenHeader, c.token)
	return h
}

func agentsPath(offset, limit int, withOffset bool) string {
	q := "/agents?role=" + RoleLoanOfficer + "&limit=" + strconv.Itoa(limit)
	if withOffset {
		q += "&offset=" + strconv.Itoa(offset)
	}
	return q
}
