package search

import (
	"context"
	"time"

	"github.com/lookatitude/omnisearch/core"
	"github.com/lookatitude/omnisearch/resilience"
	"github.com/lookatitude/omnisearch/schema"
)

// DefaultRetryableReasons is the set of failure reasons DefaultRetryPolicy
// adds to the retryable codes, before falling through to the next engine or
// giving up. rate_limit is also covered by core.IsRetryable directly; it is
// listed here so callers that construct a RetryPolicy from scratch still get
// it without depending on that default. Because resilience.Retry also retries
// every code core.IsRetryable accepts, provider_unavailable failures are
// retried too, although that reason is not in this set.
var DefaultRetryableReasons = []schema.FailureReason{
	schema.ReasonNetworkError,
	schema.ReasonAPIError,
	schema.ReasonRateLimit,
	schema.ReasonNoResults,
}

// DefaultRetryPolicy returns the resilience.RetryPolicy that NewOrchestrator
// installs (callers may replace Orchestrator.RetryPolicy afterwards), built
// from DefaultRetryableReasons. Timing
// follows withRetry's documented defaults (maxAttempts=3, initialDelayMs=1000,
// multiplier 2, maxDelayMs=10000), which differ from resilience.DefaultRetryPolicy's
// own generic defaults.
func DefaultRetryPolicy() resilience.RetryPolicy {
	p := resilience.DefaultRetryPolicy()
	p.InitialBackoff = 1000 * time.Millisecond
	p.MaxBackoff = 10000 * time.Millisecond
	p.RetryableErrors = retryableCodes(DefaultRetryableReasons)
	return p
}

// retryableCodes converts a set of schema.FailureReason values into
// core.ErrorCode values, relying on the two types sharing string literals for
// the reasons they overlap on.
func retryableCodes(reasons []schema.FailureReason) []core.ErrorCode {
	codes := make([]core.ErrorCode, len(reasons))
	for i, r := range reasons {
		codes[i] = core.ErrorCode(r)
	}
	return codes
}

// callProvider invokes a single provider's Search under p, retrying
// classifiable SearchError failures. A failure from the provider is always
// returned as a *SearchError, since non-SearchError failures are wrapped
// first; if ctx is cancelled during a backoff wait, ctx.Err() is returned
// instead.
func callProvider(ctx context.Context, p Provider, q schema.SearchQuery, policy resilience.RetryPolicy) (schema.SearchResponse, error) {
	resp, err := resilience.Retry(ctx, policy, func(ctx context.Context) (schema.SearchResponse, error) {
		resp, err := p.Search(ctx, q)
		if err == nil {
			return resp, nil
		}
		if _, ok := err.(*SearchError); ok {
			return schema.SearchResponse{}, err
		}
		return schema.SearchResponse{}, NewSearchError(p.ID(), schema.ReasonUnknown, err.Error(), err)
	})
	return resp, err
}
