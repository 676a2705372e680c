// Package telemetry provides OpenTelemetry instruments for the engine and a
// Prometheus scrape handler.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName is the instrumentation scope of every engine instrument.
const MeterName = "github.com/huangsam/trendline"

const (
	metricIssuesInserted = "trendline.issues.inserted"
	metricIssuesUpdated  = "trendline.issues.updated"
	metricChangesWritten = "trendline.issue_changes.written"
	metricMeasuresStored = "trendline.measures.stored"
	metricMeasuresPurged = "trendline.measures.purged"
	metricStepDuration   = "trendline.step.duration.seconds"

	attrStep       = "step"
	attrChangeType = "change_type"
)

// stepBucketBoundaries are histogram buckets in seconds.
var stepBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}

// EngineMetrics holds OTel instruments for reconciliation and measure storage.
type EngineMetrics struct {
	issuesInserted metric.Int64Counter
	issuesUpdated  metric.Int64Counter
	changesWritten metric.Int64Counter
	measuresStored metric.Int64Counter
	measuresPurged metric.Int64Counter
	stepDuration   metric.Float64Histogram
}

// NewEngineMetrics creates engine instruments from the given meter.
func NewEngineMetrics(mt metric.Meter) (*EngineMetrics, error) {
	b := &builder{meter: mt}
	em := &EngineMetrics{
		issuesInserted: b.counter(metricIssuesInserted, "Issues inserted on first sight", "{issue}"),
		issuesUpdated:  b.counter(metricIssuesUpdated, "Existing issues updated", "{issue}"),
		changesWritten: b.counter(metricChangesWritten, "Change log rows written by type", "{row}"),
		measuresStored: b.counter(metricMeasuresStored, "Measures inserted or updated", "{measure}"),
		measuresPurged: b.counter(metricMeasuresPurged, "Empty measures dropped or deleted", "{measure}"),
		stepDuration:   b.histogram(metricStepDuration, "Computation step duration in seconds", "s", stepBucketBoundaries...),
	}
	if b.err != nil {
		return nil, b.err
	}
	return em, nil
}

// RecordInsert records one inserted issue and its comment rows.
// Safe to call on a nil receiver (no-op).
func (em *EngineMetrics) RecordInsert(ctx context.Context, comments int) {
	if em == nil {
		return
	}
	em.issuesInserted.Add(ctx, 1)
	em.addChanges(ctx, "comment", comments)
}

// RecordUpdate records one updated issue with its diff and comment rows.
// Safe to call on a nil receiver (no-op).
func (em *EngineMetrics) RecordUpdate(ctx context.Context, diffs, comments int) {
	if em == nil {
		return
	}
	em.issuesUpdated.Add(ctx, 1)
	em.addChanges(ctx, "diff", diffs)
	em.addChanges(ctx, "comment", comments)
}

func (em *EngineMetrics) addChanges(ctx context.Context, kind string, n int) {
	if n > 0 {
		em.changesWritten.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrChangeType, kind)))
	}
}

// RecordMeasure records a stored or purged measure.
// Safe to call on a nil receiver (no-op).
func (em *EngineMetrics) RecordMeasure(ctx context.Context, stored bool) {
	if em == nil {
		return
	}
	if stored {
		em.measuresStored.Add(ctx, 1)
		return
	}
	em.measuresPurged.Add(ctx, 1)
}

// RecordStep records the duration of one computation step.
// Safe to call on a nil receiver (no-op).
func (em *EngineMetrics) RecordStep(ctx context.Context, step string, d time.Duration) {
	if em == nil {
		return
	}
	em.stepDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String(attrStep, step)))
}

// builder accumulates instrument creation errors.
type builder struct {
	meter metric.Meter
	err   error
}

func (b *builder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)
	return c
}

func (b *builder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...))
	b.setErr(name, err)
	return h
}

func (b *builder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create instrument %s: %w", name, err)
	}
}

// Provider owns the meter provider and, when enabled, the scrape handler.
type Provider struct {
	meterProvider metric.MeterProvider
	shutdown      func(context.Context) error
	Handler       http.Handler
}

// Meter returns the engine meter.
func (p *Provider) Meter() metric.Meter {
	return p.meterProvider.Meter(MeterName)
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// Setup builds a meter provider. With enabled false every instrument is a
// no-op. Otherwise the Prometheus exporter is attached to a dedicated registry
// served by Handler.
func Setup(enabled bool) (*Provider, error) {
	if !enabled {
		return &Provider{meterProvider: noop.NewMeterProvider()}, nil
	}
	registry := prometheus.NewRegistry()
	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	return &Provider{
		meterProvider: mp,
		shutdown:      mp.Shutdown,
		Handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// Serve exposes /metrics on addr in the background. The returned function
// stops the server.
func Serve(addr string, handler http.Handler) func(context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv.Shutdown
}
