// Package telemetry exports application counters in Prometheus format
// through an OpenTelemetry meter provider.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
)

// Telemetry records preference, speech and maintenance counters. A nil
// *Telemetry records nothing.
type Telemetry struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler

	preferenceChanges metric.Int64Counter
	persistFailures   metric.Int64Counter
	announcements     metric.Int64Counter
	quizSubmissions   metric.Int64Counter
	profilesPruned    metric.Int64Counter
}

// New creates a meter provider backed by its own Prometheus registry.
func New(serviceName string) (*Telemetry, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter("github.com/mrlokans/accesslearn")

	t := &Telemetry{
		provider: provider,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&t.preferenceChanges, "accesslearn.preference.changes", "Accessibility preference changes by field"},
		{&t.persistFailures, "accesslearn.preference.persist_failures", "Preference writes that could not be persisted"},
		{&t.announcements, "accesslearn.speech.announcements", "Announcement requests by outcome"},
		{&t.quizSubmissions, "accesslearn.quiz.submissions", "Graded quiz submissions by module"},
		{&t.profilesPruned, "accesslearn.profiles.pruned", "Device profiles removed by retention"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	return t, nil
}

// Handler serves the Prometheus exposition format.
func (t *Telemetry) Handler() http.Handler {
	if t == nil {
		return http.NotFoundHandler()
	}
	return t.handler
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

func (t *Telemetry) PreferenceChanged(field string) {
	if t == nil {
		return
	}
	t.preferenceChanges.Add(context.Background(), 1, metric.WithAttributes(attribute.String("field", field)))
}

func (t *Telemetry) PersistenceFailed() {
	if t == nil {
		return
	}
	t.persistFailures.Add(context.Background(), 1)
}

func (t *Telemetry) Announced(outcome string) {
	if t == nil {
		return
	}
	t.announcements.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (t *Telemetry) QuizSubmitted(moduleID string) {
	if t == nil {
		return
	}
	t.quizSubmissions.Add(context.Background(), 1, metric.WithAttributes(attribute.String("module", moduleID)))
}

func (t *Telemetry) ProfilesPruned(n int64) {
	if t == nil || n <= 0 {
		return
	}
	t.profilesPruned.Add(context.Background(), n)
}
