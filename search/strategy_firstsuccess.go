package search

import (
	"context"

	"github.com/lookatitude/omnisearch/schema"
)

// FirstSuccessStrategy queries engines in order, sequentially, and stops at
// the first successful attempt. Engines after that point are neither
// attempted nor recorded.
type FirstSuccessStrategy struct{}

// NewFirstSuccessStrategy creates a FirstSuccessStrategy.
func NewFirstSuccessStrategy() *FirstSuccessStrategy {
	return &FirstSuccessStrategy{}
}

func (s *FirstSuccessStrategy) Execute(ctx context.Context, sc StrategyContext, q schema.SearchQuery, order []schema.EngineId, opts Options) Result {
	attempts := make([]schema.EngineAttempt, 0, len(order))

	for _, id := range order {
		g := gate(sc, id)
		if !g.eligible {
			attempts = append(attempts, g.attempt)
			continue
		}

		attempt, contributed := invoke(ctx, sc, q, id, g.provider)
		attempts = append(attempts, attempt)
		if attempt.Success {
			return Result{Items: applyLimit(contributed, opts.Limit), Attempts: attempts}
		}
	}

	return Result{Attempts: attempts}
}
