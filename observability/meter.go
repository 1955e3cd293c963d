package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/drivegate/logger"
)

// InitMeter creates the OTLP meter provider and installs it globally.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(newResource(cfg)),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns the drivegate meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the gateway's instruments.
type Metrics struct {
	credentialRefresh metric.Int64Counter
	upstreamTotal     metric.Int64Counter
	upstreamDuration  metric.Float64Histogram
	capabilityIssued  metric.Int64Counter
	capabilityReject  metric.Int64Counter
	proxyBytes        metric.Int64Counter
	requestTotal      metric.Int64Counter
	requestDuration   metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	if m.credentialRefresh, err = meter.Int64Counter("drivegate.credential.refresh",
		metric.WithDescription("Upstream access token refreshes by result"),
	); err != nil {
		return nil, fmt.Errorf("creating credential refresh counter: %w", err)
	}
	if m.upstreamTotal, err = meter.Int64Counter("drivegate.upstream.requests",
		metric.WithDescription("Drive API calls by operation and result"),
	); err != nil {
		return nil, fmt.Errorf("creating upstream counter: %w", err)
	}
	if m.upstreamDuration, err = meter.Float64Histogram("drivegate.upstream.duration",
		metric.WithDescription("Drive API call latency until response headers"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating upstream histogram: %w", err)
	}
	if m.capabilityIssued, err = meter.Int64Counter("drivegate.capability.issued",
		metric.WithDescription("Download capabilities minted"),
	); err != nil {
		return nil, fmt.Errorf("creating capability issued counter: %w", err)
	}
	if m.capabilityReject, err = meter.Int64Counter("drivegate.capability.rejected",
		metric.WithDescription("Download requests refused for an invalid or expired capability"),
	); err != nil {
		return nil, fmt.Errorf("creating capability rejected counter: %w", err)
	}
	if m.proxyBytes, err = meter.Int64Counter("drivegate.proxy.bytes",
		metric.WithDescription("Bytes streamed to download clients"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("creating proxy bytes counter: %w", err)
	}
	if m.requestTotal, err = meter.Int64Counter("drivegate.http.requests",
		metric.WithDescription("Inbound HTTP requests by route and status"),
	); err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("drivegate.http.duration",
		metric.WithDescription("Inbound HTTP request latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating request histogram: %w", err)
	}

	return &m, nil
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// DefaultMetrics returns instruments on the global meter, created once.
// It never returns nil; if instrument creation fails the returned Metrics
// records nothing.
func DefaultMetrics() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(Meter())
		if err != nil {
			logger.Warn("metrics disabled", logger.ErrorFields("new_metrics", err))
			m = &Metrics{}
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordCredentialRefresh counts one token refresh attempt.
func (m *Metrics) RecordCredentialRefresh(ctx context.Context, err error) {
	if m == nil || m.credentialRefresh == nil {
		return
	}
	m.credentialRefresh.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status(err))))
}

// RecordUpstream counts one Drive call and its latency.
func (m *Metrics) RecordUpstream(ctx context.Context, operation string, statusCode int, err error, d time.Duration) {
	if m == nil || m.upstreamTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Int("status_code", statusCode),
		attribute.String("status", status(err)),
	)
	m.upstreamTotal.Add(ctx, 1, attrs)
	m.upstreamDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordCapabilityIssued counts minted download capabilities.
func (m *Metrics) RecordCapabilityIssued(ctx context.Context, n int) {
	if m == nil || m.capabilityIssued == nil || n == 0 {
		return
	}
	m.capabilityIssued.Add(ctx, int64(n))
}

// RecordCapabilityRejected counts one refused download.
func (m *Metrics) RecordCapabilityRejected(ctx context.Context) {
	if m == nil || m.capabilityReject == nil {
		return
	}
	m.capabilityReject.Add(ctx, 1)
}

// RecordProxyBytes counts bytes written to a download client.
func (m *Metrics) RecordProxyBytes(ctx context.Context, n int64, statusCode int) {
	if m == nil || m.proxyBytes == nil || n <= 0 {
		return
	}
	m.proxyBytes.Add(ctx, n, metric.WithAttributes(attribute.Int("status_code", statusCode)))
}

// RecordRequest counts one inbound HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, statusCode int, d time.Duration) {
	if m == nil || m.requestTotal == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", statusCode),
	))
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
