// Package o11y provides observability primitives for omnisearch: structured
// logging via slog, OpenTelemetry-based tracing and metrics for the
// orchestrator's search runs, and concurrent health-check aggregation for
// the CLI's "health" subcommand.
//
// # Logging
//
// [Logger] wraps slog.Logger with context-aware convenience methods and
// functional options for configuration:
//
//	logger := o11y.NewLogger(
//	    o11y.WithLogLevel("debug"),
//	    o11y.WithJSON(),
//	)
//	logger.Info(ctx, "run completed",
//	    "engine", "tavily",
//	    "items", 5,
//	)
//
// Loggers propagate through context via [WithLogger] and [FromContext].
//
// # Tracing
//
// [InitTracer] configures the global OTel tracer provider for the process;
// [StartSpan] creates a span with search-domain attributes and returns a
// context carrying it for downstream propagation:
//
//	shutdown, err := o11y.InitTracer("omnisearch")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shutdown()
//
//	ctx, span := o11y.StartSpan(ctx, "omnisearch.run", o11y.Attrs{
//	    o11y.AttrStrategy: "all",
//	    o11y.AttrQueryLen: len(query),
//	})
//	defer span.End()
//
// The [Span] interface wraps OTel spans with a simplified API for setting
// attributes, recording errors, and setting status codes. [AttrEngineID],
// [AttrStrategy], and [AttrFailureReason] name the span and metric
// attributes the orchestrator and its providers attach.
//
// # Metrics
//
// [InitMeter] configures the package-level meter with a service name.
// [EngineAttempt], [RunDuration], and [CreditsCharged] are pre-registered
// instruments recording per-engine attempt outcomes, orchestrator run
// duration, and credits deducted per charge. Generic [Counter] and
// [Histogram] functions record ad hoc named metrics:
//
//	o11y.EngineAttempt(ctx, "tavily", true)
//	o11y.RunDuration(ctx, elapsedMs)
//	o11y.Counter(ctx, "omnisearch.run.attempts", int64(len(attempts)))
//
// # Health Checks
//
// The [HealthChecker] interface provides health probes for components.
// [HealthRegistry] aggregates named checkers and runs them concurrently via
// [HealthRegistry.CheckAll], which the CLI's "health" subcommand uses to
// probe every registered provider at once:
//
//	registry := o11y.NewHealthRegistry()
//	registry.Register("tavily", tavilyChecker)
//	registry.Register("searxng", searxngChecker)
//	results := registry.CheckAll(ctx)
//
// [HealthCheckerFunc] adapts plain functions to the HealthChecker interface.
package o11y
