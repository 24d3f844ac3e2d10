package session

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "qbot/session"

// sessionMetrics records session activity on the global meter provider.
// Counters are no-ops until the application installs a provider.
type sessionMetrics struct {
	applied     metric.Int64Counter
	dropped     metric.Int64Counter
	reconnects  metric.Int64Counter
	transitions metric.Int64Counter
}

func newSessionMetrics() *sessionMetrics {
	meter := otel.Meter(meterName)

	m := new(sessionMetrics)
	m.applied, _ = meter.Int64Counter("session.messages.applied",
		metric.WithDescription("Number of stream events applied to session state"),
		metric.WithUnit("{event}"))
	m.dropped, _ = meter.Int64Counter("session.messages.dropped",
		metric.WithDescription("Number of stream payloads dropped as malformed or stale"),
		metric.WithUnit("{event}"))
	m.reconnects, _ = meter.Int64Counter("session.reconnects",
		metric.WithDescription("Number of scheduled stream reconnects"),
		metric.WithUnit("{attempt}"))
	m.transitions, _ = meter.Int64Counter("session.status.transitions",
		metric.WithDescription("Number of session status transitions"),
		metric.WithUnit("{transition}"))

	return m
}

func (m *sessionMetrics) recordApplied(kind string) {
	add(m.applied, attribute.String("kind", kind))
}

func (m *sessionMetrics) recordDropped(reason string) {
	add(m.dropped, attribute.String("reason", reason))
}

func (m *sessionMetrics) recordReconnect() {
	add(m.reconnects)
}

func (m *sessionMetrics) recordTransition(change StatusChange) {
	add(m.transitions,
		attribute.String("from", string(change.From)),
		attribute.String("to", string(change.To)))
}

func add(counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}

	counter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
