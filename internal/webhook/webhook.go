// Package webhook receives signed event deliveries from the FRS API and
// registers this service as a delivery target.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qri-io/jsonschema"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/trace"

	"github.com/frsworks/frs-sync/internal/frs"
	"github.com/frsworks/frs-sync/internal/mapper"
	"github.com/frsworks/frs-sync/internal/otel"
	"github.com/frsworks/frs-sync/internal/person"
	"github.com/frsworks/frs-sync/internal/settings"
	"github.com/frsworks/frs-sync/internal/telemetry"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw body
const SignatureHeader = "X-FRS-Signature"

// AckMessage is returned for every accepted delivery
const AckMessage = "Webhook processed successfully"

// Event names sent by the FRS API
const (
	EventAgentCreated        = "agent.created"
	EventAgentUpdated        = "agent.updated"
	EventAgentDeleted        = "agent.deleted"
	EventBulkImportCompleted = "bulk.import.completed"
	EventBulkUpdateCompleted = "bulk.update.completed"
	EventTest                = "webhook.test"
)

// Delivery outcomes recorded on metrics
const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

var (
	// ErrInvalidSignature is returned when the signature is missing or wrong
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidPayload is returned when the body is not a valid delivery
	ErrInvalidPayload = errors.New("invalid webhook payload")
)

//go:embed schema.json
var deliverySchema []byte

// Scheduler defers a full resync
//
//go:generate mockgen -destination=mocks/mock_scheduler.go -package=mocks -source=webhook.go Scheduler
type Scheduler interface {
	ScheduleResync(delay time.Duration) (bool, error)
}

// Ack acknowledges an accepted delivery
type Ack struct {
	Success   bool    `json:"success"`
	Message   string  `json:"message"`
	Event     string  `json:"event"`
	Timestamp string  `json:"timestamp"`
	WebhookID *string `json:"webhook_id"`
}

// Option configures the receiver
type Option func(*Receiver)

// WithFallbackSecret sets the secret used when none was stored by registration
func WithFallbackSecret(secret string) Option {
	return func(r *Receiver) {
		r.fallbackSecret = secret
	}
}

// WithResyncDelay sets the delay for resyncs requested by bulk events
func WithResyncDelay(d time.Duration) Option {
	return func(r *Receiver) {
		r.resyncDelay = d
	}
}

// WithMetrics sets the delivery metrics recorder
func WithMetrics(m *telemetry.WebhookMetrics) Option {
	return func(r *Receiver) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for delivery spans
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Receiver) {
		r.tracer = tracer
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(r *Receiver) {
		r.now = now
	}
}

// Receiver verifies and dispatches deliveries
type Receiver struct {
	settings  settings.Store
	client    frs.Client
	mapper    mapper.Mapper
	people    person.Store
	scheduler Scheduler
	schema    *jsonschema.Schema

	fallbackSecret string
	resyncDelay    time.Duration
	metrics        *telemetry.WebhookMetrics
	tracer         trace.Tracer
	now            func() time.Time
}

// NewReceiver creates a receiver
func NewReceiver(
	settingsStore settings.Store,
	client frs.Client,
	m mapper.Mapper,
	people person.Store,
	scheduler Scheduler,
	opts ...Option,
) (*Receiver, error) {
	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(deliverySchema, schema); err != nil {
		return nil, fmt.Errorf("failed to compile webhook schema: %w", err)
	}

	r := &Receiver{
		settings:    settingsStore,
		client:      client,
		mapper:      m,
		people:      people,
		scheduler:   scheduler,
		schema:      schema,
		resyncDelay: 60 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Handle verifies body against signature, validates it and dispatches the
// event. Once verification and validation pass the delivery is
// acknowledged, even when dispatch fails.
func (r *Receiver) Handle(ctx context.Context, body []byte, signature string) (*Ack, error) {
	ctx, span := otel.StartSpan(ctx, r.tracer, "webhook.Handle")
	defer span.End()

	secret, err := r.secret(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	if secret != "" && !VerifySignature(body, signature, secret) {
		slog.Warn("Rejected webhook with invalid signature")
		r.metrics.RecordEvent(ctx, "", OutcomeRejected)
		otel.RecordError(span, ErrInvalidSignature)
		return nil, ErrInvalidSignature
	}

	if err := r.validate(ctx, body); err != nil {
		slog.Warn("Rejected invalid webhook payload", "error", err)
		r.metrics.RecordEvent(ctx, "", OutcomeRejected)
		otel.RecordError(span, err)
		return nil, err
	}

	event := gjson.GetBytes(body, "event").String()
	data := gjson.GetBytes(body, "data")
	span.SetAttributes(otel.AttrEvent.String(event))

	slog.Info("Webhook received", "event", event, "agentID", agentID(data))

	outcome, err := r.dispatch(ctx, event, data)
	if err != nil {
		outcome = OutcomeFailed
		otel.RecordError(span, err)
		slog.Error("Webhook dispatch failed", "event", event, "error", err)
	}
	r.metrics.RecordEvent(ctx, event, outcome)

	ack := &Ack{
		Success:   true,
		Message:   AckMessage,
		Event:     event,
		Timestamp: r.now().Format(time.DateTime),
	}
	if id := gjson.GetBytes(body, "webhook_id"); id.Exists() && id.Type != gjson.Null {
		s := id.String()
		ack.WebhookID = &s
	}
	return ack, nil
}

// VerifySignature reports whether signature is the hex HMAC-SHA256 of body
// under secret. A leading "sha256=" is ignored regardless of case; the hex
// digest itself must match exactly.
func VerifySignature(body []byte, signature, secret string) bool {
	signature = strings.TrimSpace(signature)
	if len(signature) >= 7 && strings.EqualFold(signature[:7], "sha256=") {
		signature = signature[7:]
	}
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign returns the signature header value for body
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (r *Receiver) secret(ctx context.Context) (string, error) {
	if r.settings != nil {
		st, err := r.settings.Load(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to load webhook secret: %w", err)
		}
		if st.WebhookSecret != "" {
			return st.WebhookSecret, nil
		}
	}
	return r.fallbackSecret, nil
}

func (r *Receiver) validate(ctx context.Context, body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("%w: body is not valid JSON", ErrInvalidPayload)
	}
	keyErrs, err := r.schema.ValidateBytes(ctx, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(keyErrs) > 0 {
		return fmt.Errorf("%w: %s %s", ErrInvalidPayload, keyErrs[0].PropertyPath, keyErrs[0].Message)
	}
	return nil
}
