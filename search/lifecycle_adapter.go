package search

import (
	"context"

	"github.com/lookatitude/omnisearch/lifecycle"
	"github.com/lookatitude/omnisearch/schema"
)

// managedLifecycle adapts a *lifecycle.Manager to the LifecycleProvider
// interface so subprocess-backed providers can embed it and satisfy
// LifecycleCapable with a one-line Lifecycle() method.
type managedLifecycle struct {
	mgr *lifecycle.Manager
}

// NewManagedLifecycle wraps mgr as a LifecycleProvider.
func NewManagedLifecycle(mgr *lifecycle.Manager) LifecycleProvider {
	return &managedLifecycle{mgr: mgr}
}

func (m *managedLifecycle) Init(ctx context.Context) error {
	return m.mgr.Init(ctx)
}

func (m *managedLifecycle) Healthcheck(ctx context.Context) bool {
	return m.mgr.Healthcheck(ctx)
}

func (m *managedLifecycle) Shutdown(ctx context.Context) error {
	m.mgr.Shutdown(ctx)
	return nil
}

func (m *managedLifecycle) ValidateConfig() schema.ValidationResult {
	return m.mgr.ValidateDockerConfig()
}

func (m *managedLifecycle) IsLifecycleManaged() bool {
	return true
}

// MarkUnhealthy transitions the underlying manager to Unhealthy, so the next
// Init call re-attempts startup.
func (m *managedLifecycle) MarkUnhealthy() {
	m.mgr.MarkUnhealthy()
}
