package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/frsworks/frs-sync/sync"

	// WebhookMetricsMeterName is the name used for the webhook metrics meter
	WebhookMetricsMeterName = "github.com/frsworks/frs-sync/webhook"
)

// Sync modes recorded on sync metrics
const (
	SyncModeFull  = "full"
	SyncModeBatch = "batch"
)

// SyncMetrics holds the instruments for sync operations
type SyncMetrics struct {
	syncDuration metric.Float64Histogram
	records      metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"frs_sync_duration_seconds",
		metric.WithDescription("Duration of sync operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 900),
	)
	if err != nil {
		return nil, err
	}

	records, err := meter.Int64Counter(
		"frs_sync_records_total",
		metric.WithDescription("Agent records processed by sync, by outcome"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration: syncDuration,
		records:      records,
	}, nil
}

// RecordSyncDuration records the duration of a sync run or batch
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, mode string, duration time.Duration, success bool) {
	if m == nil || m.syncDuration == nil {
		return
	}

	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("success", success),
	))
}

// RecordRecords adds synced and failed record counts
func (m *SyncMetrics) RecordRecords(ctx context.Context, mode string, synced, failed int) {
	if m == nil || m.records == nil {
		return
	}

	if synced > 0 {
		m.records.Add(ctx, int64(synced), metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("outcome", "synced"),
		))
	}
	if failed > 0 {
		m.records.Add(ctx, int64(failed), metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("outcome", "error"),
		))
	}
}

// WebhookMetrics holds the instruments for inbound webhook deliveries
type WebhookMetrics struct {
	events metric.Int64Counter
}

// NewWebhookMetrics creates a new WebhookMetrics instance.
// If provider is nil, it returns nil (no-op metrics).
func NewWebhookMetrics(provider metric.MeterProvider) (*WebhookMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	events, err := provider.Meter(WebhookMetricsMeterName).Int64Counter(
		"frs_webhook_events_total",
		metric.WithDescription("Webhook deliveries received, by event and outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &WebhookMetrics{events: events}, nil
}

// RecordEvent counts one delivery. Rejected deliveries use an empty event name.
func (m *WebhookMetrics) RecordEvent(ctx context.Context, event, outcome string) {
	if m == nil || m.events == nil {
		return
	}

	if event == "" {
		event = "unknown"
	}
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}
