// Package otel provides span helpers shared by the API client and the stores.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on spans across the service.
const (
	AttrAgentID     = attribute.Key("frs.agent.id")
	AttrAgentEmail  = attribute.Key("frs.agent.email")
	AttrEvent       = attribute.Key("frs.webhook.event")
	AttrSessionID   = attribute.Key("frs.sync.session_id")
	AttrOffset      = attribute.Key("frs.sync.offset")
	AttrBatchSize   = attribute.Key("frs.sync.batch_size")
	AttrResultCount = attribute.Key("result.count")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span.
// This provides graceful degradation when tracing is disabled.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records an error on a span and sets the span status to error.
// It safely handles nil spans and nil errors.
// The status description stays generic; details go to the span event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
