package syncer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/pinmap/internal/syncer"

type metrics struct {
	flows    metric.Int64Counter
	duration metric.Float64Histogram
}

func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)

	flows, err := m.Int64Counter(
		"pins.flows",
		metric.WithDescription("Completed load, create and rename flows by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flows counter: %w", err)
	}

	duration, err := m.Float64Histogram(
		"pins.flow.duration",
		metric.WithDescription("Round-trip time of pin store flows"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &metrics{flows: flows, duration: duration}, nil
}

func (m *metrics) record(ctx context.Context, flow string, start time.Time, err error) {
	attrs := metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome(err)),
	)
	m.flows.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
}
