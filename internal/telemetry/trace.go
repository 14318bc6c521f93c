package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys used by the service layer.
const (
	AttrUserID         = "user.id"
	AttrUserRole       = "user.role"
	AttrOrganizationID = "organization.id"
	AttrStoreID        = "store.id"
)

// StartSpan opens a span on the named tracer. Services use one tracer per
// package and end the span with defer:
//
//	ctx, span := telemetry.StartSpan(ctx, "posapi/services/session", "session.Refresh",
//	    attribute.String(telemetry.AttrUserID, userID),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError marks the span failed and attaches err. Nil errors are
// ignored so it can sit on every return path.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddEvent attaches a named business event to the span, such as a denied
// decision or a skipped snapshot.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
