// Package observability exposes pipeline metrics through the OpenTelemetry
// metric SDK with a Prometheus exporter scraped at /metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"suri/internal/logging"
	"suri/internal/types"
)

// MetricsConfig configures the metrics collector.
type MetricsConfig struct {
	Enabled        bool `yaml:"enabled"`
	PrometheusPort int  `yaml:"prometheus_port"`
}

// MetricsCollector manages all pipeline metrics. A zero-value collector
// (metrics disabled) is safe to call; every record becomes a no-op.
type MetricsCollector struct {
	meter metric.Meter

	classifications  metric.Int64Counter
	extractions      metric.Int64Counter
	suggestions      metric.Int64Counter
	executions       metric.Int64Counter
	pipelineLatency  metric.Float64Histogram
	prometheusServer *http.Server
	logger           logging.Logger
}

// NewMetricsCollector creates a collector and, when enabled, starts the
// Prometheus scrape endpoint.
func NewMetricsCollector(config MetricsConfig, logger logging.Logger) (*MetricsCollector, error) {
	logger = logging.OrNop(logger)
	if !config.Enabled {
		return &MetricsCollector{logger: logger}, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("suri/pipeline")

	c := &MetricsCollector{meter: meter, logger: logger}

	c.classifications, err = meter.Int64Counter("suri_classifications_total",
		metric.WithDescription("Intent classifications by label and tier"))
	if err != nil {
		return nil, err
	}
	c.extractions, err = meter.Int64Counter("suri_entities_extracted_total",
		metric.WithDescription("Extracted entities by type"))
	if err != nil {
		return nil, err
	}
	c.suggestions, err = meter.Int64Counter("suri_actions_suggested_total",
		metric.WithDescription("Suggested actions by category"))
	if err != nil {
		return nil, err
	}
	c.executions, err = meter.Int64Counter("suri_actions_executed_total",
		metric.WithDescription("Executed actions by category and outcome"))
	if err != nil {
		return nil, err
	}
	c.pipelineLatency, err = meter.Float64Histogram("suri_pipeline_latency_seconds",
		metric.WithDescription("End-to-end analyze latency"))
	if err != nil {
		return nil, err
	}

	if config.PrometheusPort > 0 {
		c.startPrometheusServer(config.PrometheusPort)
	}
	return c, nil
}

func (c *MetricsCollector) startPrometheusServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promclient.Handler())
	c.prometheusServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := c.prometheusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("prometheus server: %v", err)
		}
	}()
}

// Shutdown stops the scrape endpoint.
func (c *MetricsCollector) Shutdown(ctx context.Context) error {
	if c.prometheusServer == nil {
		return nil
	}
	return c.prometheusServer.Shutdown(ctx)
}

// RecordClassification counts one classification.
func (c *MetricsCollector) RecordClassification(ctx context.Context, result types.IntentResult) {
	if c.classifications == nil {
		return
	}
	tier := "primary"
	if result.UsedFallback {
		tier = "fallback"
	}
	c.classifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent", string(result.Intent)),
		attribute.String("tier", tier),
	))
}

// RecordExtraction counts extracted entities by type.
func (c *MetricsCollector) RecordExtraction(ctx context.Context, entities []types.Entity) {
	if c.extractions == nil {
		return
	}
	for _, e := range entities {
		c.extractions.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(e.Type))))
	}
}

// RecordSuggestions counts suggested actions by category.
func (c *MetricsCollector) RecordSuggestions(ctx context.Context, actions []types.Action) {
	if c.suggestions == nil {
		return
	}
	for _, a := range actions {
		c.suggestions.Add(ctx, 1, metric.WithAttributes(attribute.String("category", string(a.Category))))
	}
}

// RecordExecution counts one execution outcome.
func (c *MetricsCollector) RecordExecution(ctx context.Context, category types.ActionCategory, success bool) {
	if c.executions == nil {
		return
	}
	c.executions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", string(category)),
		attribute.Bool("success", success),
	))
}

// RecordPipelineLatency records one end-to-end analyze duration.
func (c *MetricsCollector) RecordPipelineLatency(ctx context.Context, d time.Duration) {
	if c.pipelineLatency == nil {
		return
	}
	c.pipelineLatency.Record(ctx, d.Seconds())
}
