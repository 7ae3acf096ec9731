package search

import (
	"context"

	"github.com/lookatitude/omnisearch/internal/syncutil"
	"github.com/lookatitude/omnisearch/schema"
)

// AllStrategy queries every eligible engine in order and merges their items.
// Sequential mode (the default) appends items as each engine replies;
// Parallel mode fans eligible engines out across a bounded worker pool and
// rewrites both items and attempts back into input order before returning,
// so callers observe identical results from either mode over the same
// inputs (spec invariant 8).
type AllStrategy struct {
	// MaxConcurrency bounds the worker pool used in Parallel mode. Zero
	// defaults to len(order).
	MaxConcurrency int
}

// NewAllStrategy creates an AllStrategy with an unbounded (one-per-engine)
// parallel worker pool.
func NewAllStrategy() *AllStrategy {
	return &AllStrategy{}
}

func (s *AllStrategy) Execute(ctx context.Context, sc StrategyContext, q schema.SearchQuery, order []schema.EngineId, opts Options) Result {
	if opts.Parallel {
		return s.executeParallel(ctx, sc, q, order, opts)
	}
	return s.executeSequential(ctx, sc, q, order, opts)
}

func (s *AllStrategy) executeSequential(ctx context.Context, sc StrategyContext, q schema.SearchQuery, order []schema.EngineId, opts Options) Result {
	attempts := make([]schema.EngineAttempt, 0, len(order))
	var items []schema.SearchResultItem

	for _, id := range order {
		g := gate(sc, id)
		if !g.eligible {
			attempts = append(attempts, g.attempt)
			continue
		}
		attempt, contributed := invoke(ctx, sc, q, id, g.provider)
		attempts = append(attempts, attempt)
		items = append(items, contributed...)
	}

	return Result{Items: applyLimit(items, opts.Limit), Attempts: attempts}
}

func (s *AllStrategy) executeParallel(ctx context.Context, sc StrategyContext, q schema.SearchQuery, order []schema.EngineId, opts Options) Result {
	type slot struct {
		attempt schema.EngineAttempt
		items   []schema.SearchResultItem
	}
	slots := make([]slot, len(order))

	maxWorkers := s.MaxConcurrency
	if maxWorkers <= 0 {
		maxWorkers = len(order)
	}
	pool := syncutil.NewWorkerPool(maxWorkers)

	for i, id := range order {
		g := gate(sc, id)
		if !g.eligible {
			slots[i] = slot{attempt: g.attempt}
			continue
		}

		i, id, p := i, id, g.provider
		_ = pool.Submit(func() {
			attempt, contributed := invoke(ctx, sc, q, id, p)
			slots[i] = slot{attempt: attempt, items: contributed}
		})
	}
	pool.Close()

	// slots is indexed by each engine's position in order, so attempts and
	// items below are already in input order regardless of goroutine
	// completion order; no re-sort is needed.
	attempts := make([]schema.EngineAttempt, len(order))
	var items []schema.SearchResultItem
	for i, sl := range slots {
		attempts[i] = sl.attempt
		items = append(items, sl.items...)
	}

	return Result{Items: applyLimit(items, opts.Limit), Attempts: attempts}
}
