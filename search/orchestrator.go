package search

import (
	"context"
	"sort"
	"time"

	"github.com/lookatitude/omnisearch/config"
	"github.com/lookatitude/omnisearch/credit"
	"github.com/lookatitude/omnisearch/o11y"
	"github.com/lookatitude/omnisearch/resilience"
	"github.com/lookatitude/omnisearch/schema"
)

// StrategyFactory constructs the Strategy named by strategyName ("all" or
// "first-success").
type StrategyFactory func(strategyName string) (Strategy, error)

// DefaultStrategyFactory resolves "all" to an AllStrategy and "first-success"
// to a FirstSuccessStrategy.
func DefaultStrategyFactory(strategyName string) (Strategy, error) {
	switch strategyName {
	case "", "all":
		return NewAllStrategy(), nil
	case "first-success":
		return NewFirstSuccessStrategy(), nil
	default:
		return nil, NewSearchError("", schema.ReasonConfigError, "unknown strategy: "+strategyName, nil)
	}
}

// RunOptions parameterizes a single Orchestrator.Run invocation.
type RunOptions struct {
	// EngineOrderOverride, if non-empty, replaces config.DefaultEngineOrder
	// for this run only.
	EngineOrderOverride []schema.EngineId

	// Strategy is "all" (default) or "first-success".
	Strategy string

	Limit      int
	Parallel   bool
	IncludeRaw bool
}

// RunResult is the orchestrator's top-level reply: the merged items, the
// per-engine attempt trail, and a credit snapshot taken after the run.
type RunResult struct {
	Query    schema.SearchQuery
	Items    []schema.SearchResultItem
	Attempts []schema.EngineAttempt
	Credits  []credit.Snapshot
}

// Orchestrator is the top-level entry point: it wires the resolved engine
// order, the chosen strategy, the provider registry, and the credit manager
// into a single Run call.
type Orchestrator struct {
	Config          *config.Config
	Credits         *credit.Manager
	Registry        *Registry
	StrategyFactory StrategyFactory
	RetryPolicy     resilience.RetryPolicy
	Logger          *o11y.Logger
}

// NewOrchestrator creates an Orchestrator with DefaultStrategyFactory and
// DefaultRetryPolicy unless overridden by the caller afterward.
func NewOrchestrator(cfg *config.Config, credits *credit.Manager, registry *Registry) *Orchestrator {
	return &Orchestrator{
		Config:          cfg,
		Credits:         credits,
		Registry:        registry,
		StrategyFactory: DefaultStrategyFactory,
		RetryPolicy:     DefaultRetryPolicy(),
		Logger:          o11y.NewLogger(),
	}
}

// Run resolves the effective engine order, selects a strategy, executes it,
// and returns the composite result with a post-run credit snapshot.
func (o *Orchestrator) Run(ctx context.Context, query schema.SearchQuery, opts RunOptions) (RunResult, error) {
	strategyName := opts.Strategy
	if strategyName == "" {
		strategyName = "all"
	}

	ctx, span := o11y.StartSpan(ctx, "omnisearch.run", o11y.Attrs{
		o11y.AttrStrategy: strategyName,
		o11y.AttrQueryLen: len(query.Query),
	})
	defer span.End()
	start := time.Now()

	order := opts.EngineOrderOverride
	if len(order) == 0 {
		order = o.Config.DefaultEngineOrder
	}
	if len(order) == 0 {
		err := NewSearchError("", schema.ReasonConfigError, "no engines configured", nil)
		span.RecordError(err)
		span.SetStatus(o11y.StatusError, err.Error())
		return RunResult{}, err
	}

	strategy, err := o.StrategyFactory(strategyName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(o11y.StatusError, err.Error())
		return RunResult{}, err
	}

	sc := StrategyContext{
		Registry:    o.Registry,
		Credits:     o.Credits,
		RetryPolicy: o.RetryPolicy,
	}
	strategyOpts := Options{Limit: opts.Limit, Parallel: opts.Parallel, IncludeRaw: opts.IncludeRaw}

	result := strategy.Execute(ctx, sc, query, order, strategyOpts)

	for _, attempt := range result.Attempts {
		o11y.EngineAttempt(ctx, string(attempt.EngineId), attempt.Success)
		if !attempt.Success {
			span.SetAttributes(o11y.Attrs{o11y.AttrFailureReason: string(attempt.Reason)})
		}
	}
	o11y.Counter(ctx, "omnisearch.run.attempts", int64(len(result.Attempts)))

	items := result.Items
	if strategyName == "all" {
		items = sortByScoreDescending(items)
	}

	var snapshots []credit.Snapshot
	if o.Credits != nil {
		snapshots = o.Credits.ListSnapshots()
	}

	durationMs := float64(time.Since(start).Microseconds()) / 1000
	o11y.RunDuration(ctx, durationMs)
	o11y.Histogram(ctx, "omnisearch.run.duration_ms", durationMs)
	span.SetAttributes(o11y.Attrs{o11y.AttrResultCount: len(items)})
	span.SetStatus(o11y.StatusOK, "")

	return RunResult{
		Query:    query,
		Items:    items,
		Attempts: result.Attempts,
		Credits:  snapshots,
	}, nil
}

// sortByScoreDescending stable-sorts items by descending score, treating an
// absent score as 0 and preserving relative order for ties.
func sortByScoreDescending(items []schema.SearchResultItem) []schema.SearchResultItem {
	sorted := make([]schema.SearchResultItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScoreOrZero() > sorted[j].ScoreOrZero()
	})
	return sorted
}
