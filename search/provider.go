// Package search implements the multi-provider search dispatcher: the
// provider contract, the provider and plugin registries, the fan-out-all
// and first-success execution strategies, and the orchestrator that ties
// them together with the credit manager.
package search

import (
	"context"
	"fmt"

	"github.com/lookatitude/omnisearch/core"
	"github.com/lookatitude/omnisearch/schema"
)

// Metadata describes a provider for display and diagnostics purposes.
type Metadata struct {
	ID          schema.EngineId
	DisplayName string
	DocsURL     string
}

// Provider is the contract every search back end implements: an identity,
// descriptive metadata, and the single search operation.
type Provider interface {
	// ID returns the engine identity this provider was constructed for.
	ID() schema.EngineId

	// Metadata returns descriptive information about the provider.
	Metadata() Metadata

	// Search executes q against the back end and returns normalized results.
	// Failures are returned as *SearchError.
	Search(ctx context.Context, q schema.SearchQuery) (schema.SearchResponse, error)
}

// LifecycleProvider is the optional capability exposed by providers whose
// back end requires explicit startup, health probing, and shutdown (see
// [LifecycleCapable]).
type LifecycleProvider interface {
	// Init is idempotent; it may block until the back end is ready.
	Init(ctx context.Context) error

	// Healthcheck is a fast, non-throwing probe of back end readiness.
	Healthcheck(ctx context.Context) bool

	// Shutdown is idempotent and must never return an error to the caller
	// of [Provider.Search]; failures are logged internally.
	Shutdown(ctx context.Context) error

	// ValidateConfig performs static checks on the provider's configuration.
	ValidateConfig() schema.ValidationResult

	// IsLifecycleManaged reports whether this provider manages an external
	// process lifecycle (as opposed to a plain stateless HTTP client).
	IsLifecycleManaged() bool
}

// LifecycleCapable is implemented by providers that may additionally satisfy
// LifecycleProvider. Callers perform the capability check with a type
// assertion rather than assuming every Provider has a lifecycle:
//
//	if lc, ok := provider.(search.LifecycleCapable); ok {
//	    if lp, ok := lc.Lifecycle(); ok {
//	        lp.Init(ctx)
//	    }
//	}
type LifecycleCapable interface {
	// Lifecycle returns the provider's LifecycleProvider and true if it is
	// lifecycle-managed, or (nil, false) otherwise.
	Lifecycle() (LifecycleProvider, bool)
}

// SearchError is the error a Provider returns when Search fails. The Reason
// field is the taxonomy both the retry engine and strategy gating reason
// about.
type SearchError struct {
	EngineId   schema.EngineId
	Reason     schema.FailureReason
	Message    string
	StatusCode int
	Err        error
}

func (e *SearchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search %s [%s]: %s (status %d)", e.EngineId, e.Reason, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("search %s [%s]: %s", e.EngineId, e.Reason, e.Message)
}

// Unwrap surfaces a *core.Error carrying the same reason as a code, so the
// retry engine (which reasons in terms of core.ErrorCode) can classify this
// error without search importing resilience or vice versa.
func (e *SearchError) Unwrap() error {
	return core.NewError("provider.search", core.ErrorCode(e.Reason), e.Message, e.Err)
}

// NewSearchError constructs a *SearchError for engineId with the given
// reason, message, and optional cause.
func NewSearchError(engineId schema.EngineId, reason schema.FailureReason, message string, cause error) *SearchError {
	return &SearchError{EngineId: engineId, Reason: reason, Message: message, Err: cause}
}

// ReasonOf extracts the schema.FailureReason from err, defaulting to
// schema.ReasonUnknown for any error that isn't a *SearchError.
func ReasonOf(err error) schema.FailureReason {
	var se *SearchError
	if ok := asSearchError(err, &se); ok {
		return se.Reason
	}
	return schema.ReasonUnknown
}

// asSearchError is a small errors.As wrapper kept local to avoid importing
// "errors" in every caller of ReasonOf.
func asSearchError(err error, target **SearchError) bool {
	for err != nil {
		if se, ok := err.(*SearchError); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
