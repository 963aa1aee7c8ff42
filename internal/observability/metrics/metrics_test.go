package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("endpoint", "/v1/leases"),
		attribute.String("lease_id", "456"),
		attribute.String("format", "xlsx"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "endpoint" && attrs[1].Key != "endpoint" {
		t.Fatalf("expected endpoint to be retained")
	}
	if attrs[0].Key != "format" && attrs[1].Key != "format" {
		t.Fatalf("expected format to be retained")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordLinesRecomputed(context.Background(), 3)
	m.RecordRateLimitDenied(context.Background(), "/v1/leases", "burst")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.RecordScheduleRendered(context.Background(), "ok")
	m.RecordLeaseTransition(context.Background(), "draft", "rent")
}
