package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys shared by the instrument helpers below.
const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"

	AttrGatewayRouteClass = "gateway.route_class" // public, protected_api, protected_page, unclassified
	AttrGatewayAction     = "gateway.action"      // allow, redirect, unauthorized
	AttrGatewayReason     = "gateway.reason"

	AttrAuthMethod  = "auth.method" // password, session
	AttrAuthSuccess = "auth.success"
)

// ServerMetrics carries the HTTP server instruments. Built once at startup
// and shared by the request middleware.
type ServerMetrics struct {
	RequestCounter  metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ErrorCounter    metric.Int64Counter
}

func NewServerMetrics() (*ServerMetrics, error) {
	meter := otel.Meter("posapi/http")

	var m ServerMetrics
	var err error

	if m.RequestCounter, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Requests served, by method, route and status"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.RequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Request latency"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	); err != nil {
		return nil, err
	}

	if m.ErrorCounter, err = meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Responses with a 5xx status"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordRequest records one served request. The request middleware calls it
// once per response with the chi route pattern, not the raw path.
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.String(AttrHTTPStatusCode, status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, durationMs, attrs)

	if len(status) > 0 && status[0] == '5' {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// GatewayMetrics carries the access-gateway instruments. Every request that
// crosses the gateway records exactly one decision.
type GatewayMetrics struct {
	DecisionCounter  metric.Int64Counter
	DecisionDuration metric.Float64Histogram
	TokenFailures    metric.Int64Counter
}

func NewGatewayMetrics() (*GatewayMetrics, error) {
	meter := otel.Meter("posapi/gateway")

	var g GatewayMetrics
	var err error

	if g.DecisionCounter, err = meter.Int64Counter(
		"gateway.decision.count",
		metric.WithDescription("Access decisions, by route class, action and reason"),
		metric.WithUnit("{decision}"),
	); err != nil {
		return nil, err
	}

	// Decisions are pure in-memory evaluation, so the buckets sit well
	// below a millisecond with a tail for pathological cases
	if g.DecisionDuration, err = meter.Float64Histogram(
		"gateway.decision.duration",
		metric.WithDescription("Decision evaluation latency"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 5, 25, 100),
	); err != nil {
		return nil, err
	}

	if g.TokenFailures, err = meter.Int64Counter(
		"gateway.token.failure.count",
		metric.WithDescription("Session tokens that failed verification"),
		metric.WithUnit("{failure}"),
	); err != nil {
		return nil, err
	}

	return &g, nil
}

// RecordDecision records a gateway access decision with its route class,
// resulting action, and the reason that produced it.
func (g *GatewayMetrics) RecordDecision(ctx context.Context, routeClass, action, reason string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String(AttrGatewayRouteClass, routeClass),
		attribute.String(AttrGatewayAction, action),
		attribute.String(AttrGatewayReason, reason),
	)

	g.DecisionCounter.Add(ctx, 1, attrs)
	g.DecisionDuration.Record(ctx, durationMs, attrs)
}

// RecordTokenFailure records a session token that failed verification.
func (g *GatewayMetrics) RecordTokenFailure(ctx context.Context, reason string) {
	g.TokenFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrGatewayReason, reason),
	))
}

// AuthMetrics carries the credential-check instruments for login and
// session refresh.
type AuthMetrics struct {
	AuthAttempts metric.Int64Counter
	AuthFailures metric.Int64Counter
	AuthDuration metric.Float64Histogram
}

func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter("posapi/auth")

	var a AuthMetrics
	var err error

	if a.AuthAttempts, err = meter.Int64Counter(
		"auth.attempt.count",
		metric.WithDescription("Authentication attempts"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, err
	}

	if a.AuthFailures, err = meter.Int64Counter(
		"auth.failure.count",
		metric.WithDescription("Authentication attempts that were rejected"),
		metric.WithUnit("{failure}"),
	); err != nil {
		return nil, err
	}

	if a.AuthDuration, err = meter.Float64Histogram(
		"auth.duration",
		metric.WithDescription("Credential check latency, dominated by bcrypt"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000),
	); err != nil {
		return nil, err
	}

	return &a, nil
}

// RecordAuth records an authentication attempt with result and duration.
func (a *AuthMetrics) RecordAuth(ctx context.Context, method string, success bool, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String(AttrAuthMethod, method),
		attribute.Bool(AttrAuthSuccess, success),
	)

	a.AuthAttempts.Add(ctx, 1, attrs)
	a.AuthDuration.Record(ctx, durationMs, attrs)

	if !success {
		a.AuthFailures.Add(ctx, 1, attrs)
	}
}
