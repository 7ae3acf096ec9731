package o11y

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meter holds the package-level OTel meter used by metric recording functions.
var meter metric.Meter

// Pre-registered search-domain instruments.
var (
	engineAttemptCounter metric.Int64Counter
	runDurationHist      metric.Float64Histogram
	creditsChargedGauge  metric.Float64Counter

	meterOnce sync.Once
	meterErr  error
)

func init() {
	meter = otel.Meter("github.com/lookatitude/omnisearch/o11y")
}

// initInstruments lazily creates the pre-defined metric instruments. This is
// deferred so callers can configure the meter provider before first use.
func initInstruments() error {
	meterOnce.Do(func() {
		var err error

		engineAttemptCounter, err = meter.Int64Counter(
			"omnisearch.engine.attempts",
			metric.WithDescription("Number of provider search attempts, by outcome"),
			metric.WithUnit("{attempt}"),
		)
		if err != nil {
			meterErr = err
			return
		}

		runDurationHist, err = meter.Float64Histogram(
			"omnisearch.run.duration",
			metric.WithDescription("Duration of an orchestrator run"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			meterErr = err
			return
		}

		creditsChargedGauge, err = meter.Float64Counter(
			"omnisearch.credits.charged",
			metric.WithDescription("Credits deducted from an engine's monthly quota"),
			metric.WithUnit("{credit}"),
		)
		if err != nil {
			meterErr = err
			return
		}
	})
	return meterErr
}

// InitMeter configures the package-level meter with the given service name.
// This should be called after setting up the OTel meter provider. If not called,
// the default global meter provider is used.
func InitMeter(serviceName string) error {
	meter = otel.Meter(
		"github.com/lookatitude/omnisearch/o11y",
		metric.WithInstrumentationAttributes(
			attribute.String("service.name", serviceName),
		),
	)
	// Reset so instruments are re-created with the new meter.
	meterOnce = sync.Once{}
	meterErr = nil
	return initInstruments()
}

// EngineAttempt records the outcome of one provider search attempt.
func EngineAttempt(ctx context.Context, engineID string, success bool) {
	if err := initInstruments(); err != nil {
		return
	}
	engineAttemptCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrEngineID, engineID),
			attribute.Bool("success", success),
		),
	)
}

// RunDuration records the wall-clock duration of an orchestrator run in
// milliseconds.
func RunDuration(ctx context.Context, durationMs float64) {
	if err := initInstruments(); err != nil {
		return
	}
	runDurationHist.Record(ctx, durationMs)
}

// CreditsCharged records credits deducted from an engine's monthly quota.
func CreditsCharged(ctx context.Context, engineID string, amount float64) {
	if err := initInstruments(); err != nil {
		return
	}
	creditsChargedGauge.Add(ctx, amount,
		metric.WithAttributes(attribute.String(AttrEngineID, engineID)),
	)
}

// Counter records an increment to a named counter metric.
func Counter(ctx context.Context, name string, value int64) {
	c, err := meter.Int64Counter(name)
	if err != nil {
		return
	}
	c.Add(ctx, value)
}

// Histogram records a value to a named histogram metric.
func Histogram(ctx context.Context, name string, value float64) {
	h, err := meter.Float64Histogram(name)
	if err != nil {
		return
	}
	h.Record(ctx, value)
}
