package analyst

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type analystMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

// Instruments are created once; concurrent Translate calls share them.
var (
	metricsOnce  sync.Once
	metrics      analystMetrics
	metricsReady bool
)

func ensureAnalystMetrics() bool {
	metricsOnce.Do(func() {
		meter := otel.Meter("github.com/healthintel/snowbridge/analyst")

		requestCount, err := meter.Int64Counter(
			"analyst.request.count",
			metric.WithDescription("Number of Cortex Analyst requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"analyst.request.duration",
			metric.WithDescription("Cortex Analyst request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"analyst.request.errors",
			metric.WithDescription("Number of Cortex Analyst request errors"),
		)
		if err != nil {
			return
		}

		metrics = analystMetrics{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
		}
		metricsReady = true
	})
	return metricsReady
}

func recordAnalystMetric(ctx context.Context, statusCode int, duration time.Duration, err error) {
	if !ensureAnalystMetrics() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "cortex-analyst"),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	metrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		metrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
