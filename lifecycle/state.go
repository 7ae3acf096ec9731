// Package lifecycle manages the auto-start/health-probe/auto-stop cycle of
// locally-hosted, subprocess-compose-backed search back ends (searxng,
// linkup). It is composed into a provider rather than implemented by it.
package lifecycle

// State is a managed provider's lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateUnhealthy     State = "unhealthy"
	StateShutDown      State = "shutdown"
)
