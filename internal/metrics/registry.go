package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Registry holds the engine's instruments. Evaluation latency and outcome
// counts are the primary operational signals; analyzer failures and AI
// fallbacks surface degradation that the booking path otherwise hides.
type Registry struct {
	evaluationDuration metric.Float64Histogram
	evaluations        metric.Int64Counter
	analyzerFailures   metric.Int64Counter
	aiFallbacks        metric.Int64Counter
}

// New creates a registry on the global meter provider
func New() (*Registry, error) {
	return NewWithMeter(otel.Meter("github.com/reservable/booking-risk-engine"))
}

// NewWithMeter creates a registry on an explicit meter
func NewWithMeter(meter metric.Meter) (*Registry, error) {
	r := &Registry{}
	var err error

	r.evaluationDuration, err = meter.Float64Histogram(
		"risk_evaluation_duration_seconds",
		metric.WithDescription("End-to-end risk evaluation latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation duration histogram: %w", err)
	}

	r.evaluations, err = meter.Int64Counter(
		"risk_evaluations_total",
		metric.WithDescription("Completed risk evaluations by review state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluations counter: %w", err)
	}

	r.analyzerFailures, err = meter.Int64Counter(
		"risk_analyzer_failures_total",
		metric.WithDescription("Analyzer panics recovered during evaluation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating analyzer failures counter: %w", err)
	}

	r.aiFallbacks, err = meter.Int64Counter(
		"risk_ai_fallbacks_total",
		metric.WithDescription("Evaluations where the AI path fell back to the deterministic table"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ai fallbacks counter: %w", err)
	}

	return r, nil
}

// NewNop returns a registry that records nothing, for tests and tools
func NewNop() *Registry {
	r, _ := NewWithMeter(noop.NewMeterProvider().Meter("nop"))
	return r
}

// RecordEvaluation records one completed evaluation
func (r *Registry) RecordEvaluation(ctx context.Context, d time.Duration, state string, aiUsed bool) {
	attrs := metric.WithAttributes(
		attribute.String("state", state),
		attribute.Bool("ai_used", aiUsed),
	)
	r.evaluationDuration.Record(ctx, d.Seconds(), attrs)
	r.evaluations.Add(ctx, 1, attrs)
}

// RecordAnalyzerFailure records a recovered analyzer panic
func (r *Registry) RecordAnalyzerFailure(ctx context.Context, category string) {
	r.analyzerFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// RecordAIFallback records a fall back to the deterministic evaluator
func (r *Registry) RecordAIFallback(ctx context.Context, cause string) {
	r.aiFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("cause", cause)))
}
