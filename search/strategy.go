package search

import (
	"context"

	"github.com/lookatitude/omnisearch/credit"
	"github.com/lookatitude/omnisearch/resilience"
	"github.com/lookatitude/omnisearch/schema"
)

// StrategyContext carries the collaborators a strategy needs: the live
// provider set and the credit manager. Strategies never construct either
// themselves; both are wired in by the orchestrator.
type StrategyContext struct {
	Registry     *Registry
	Credits      *credit.Manager
	RetryPolicy  resilience.RetryPolicy
}

// Options configures a single strategy invocation. Limit, when non-zero, is
// applied after all items are merged, never per-provider.
type Options struct {
	Limit     int
	Parallel  bool
	IncludeRaw bool
}

// Result is what a strategy invocation produces: merged items in the order
// the strategy defines, and exactly one EngineAttempt per engine id in the
// input order (subject to FirstSuccess's early-stop rule).
type Result struct {
	Items    []schema.SearchResultItem
	Attempts []schema.EngineAttempt
}

// Strategy is the execution policy a single run selects: how many and which
// providers get invoked.
type Strategy interface {
	Execute(ctx context.Context, sc StrategyContext, q schema.SearchQuery, order []schema.EngineId, opts Options) Result
}

// gateOutcome is the result of checking whether an engine is eligible to be
// invoked at all, before any provider call is made.
type gateOutcome struct {
	provider Provider
	eligible bool
	attempt  schema.EngineAttempt
}

// gate performs the registry-then-credits precondition checks shared by both
// strategies (spec steps 1-2 of per-engine gating). It never calls the
// provider.
func gate(sc StrategyContext, id schema.EngineId) gateOutcome {
	p, ok := sc.Registry.Get(id)
	if !ok {
		return gateOutcome{eligible: false, attempt: schema.EngineAttempt{EngineId: id, Success: false, Reason: schema.ReasonNoProvider}}
	}
	if sc.Credits != nil && !sc.Credits.HasSufficientCredits(id) {
		return gateOutcome{eligible: false, attempt: schema.EngineAttempt{EngineId: id, Success: false, Reason: schema.ReasonOutOfCredit}}
	}
	return gateOutcome{provider: p, eligible: true}
}

// invoke calls the provider through the retry engine, charges credits on
// success, and produces the final attempt record plus any contributed items
// (spec steps 3-5 of per-engine gating).
func invoke(ctx context.Context, sc StrategyContext, q schema.SearchQuery, id schema.EngineId, p Provider) (schema.EngineAttempt, []schema.SearchResultItem) {
	resp, err := callProvider(ctx, p, q, sc.RetryPolicy)
	if err != nil {
		return schema.EngineAttempt{EngineId: id, Success: false, Reason: ReasonOf(err)}, nil
	}

	if sc.Credits != nil && !sc.Credits.Charge(ctx, id) {
		return schema.EngineAttempt{EngineId: id, Success: false, Reason: schema.ReasonOutOfCredit}, nil
	}

	return schema.EngineAttempt{EngineId: id, Success: true}, resp.Items
}

// applyLimit truncates items to at most limit entries. limit <= 0 means no
// truncation.
func applyLimit(items []schema.SearchResultItem, limit int) []schema.SearchResultItem {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}
