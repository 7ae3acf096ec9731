package search

import (
	"fmt"
	"sync"

	"github.com/lookatitude/omnisearch/internal/httpclient"
	"github.com/lookatitude/omnisearch/o11y"
	"github.com/lookatitude/omnisearch/schema"
)

// Deps are the dependencies a plugin's Factory may use to construct a
// Provider. HTTPClient is optional: the built-in providers build their own
// client for their vendor endpoint when it is nil, as it is in the CLI. The
// logger is shared.
type Deps struct {
	HTTPClient *httpclient.Client
	Logger     *o11y.Logger
}

// PluginDefinition describes how to construct providers of one engine type.
type PluginDefinition struct {
	Type         string
	DisplayName  string
	HasLifecycle bool
	Factory      func(cfg schema.EngineConfig, deps Deps) (Provider, error)

	// OnRegister runs synchronously when the plugin is registered. If it
	// returns an error, registration is rolled back.
	OnRegister func() error

	// OnUnregister runs synchronously when the plugin is unregistered.
	OnUnregister func() error
}

// PluginRegistry maps a provider type string to the PluginDefinition that
// constructs it. Unlike Registry (identity-keyed, bootstrap-only writes),
// PluginRegistry is keyed by type and may be extended at any time through
// Register.
type PluginRegistry struct {
	mu      sync.RWMutex
	plugins map[string]PluginDefinition
}

// NewPluginRegistry creates an empty PluginRegistry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{plugins: make(map[string]PluginDefinition)}
}

// RegisterOptions controls PluginRegistry.Register's duplicate handling.
type RegisterOptions struct {
	// Overwrite allows replacing an already-registered type instead of
	// failing.
	Overwrite bool
}

// Register adds def to the registry under def.Type. A duplicate type is
// rejected unless opts.Overwrite is set. If def.OnRegister returns an error,
// the registration is rolled back and the registry is left unchanged.
func (r *PluginRegistry) Register(def PluginDefinition, opts RegisterOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[def.Type]; exists && !opts.Overwrite {
		return fmt.Errorf("search: plugin type %q already registered", def.Type)
	}

	if def.OnRegister != nil {
		if err := def.OnRegister(); err != nil {
			return fmt.Errorf("search: plugin %q onRegister: %w", def.Type, err)
		}
	}

	r.plugins[def.Type] = def
	return nil
}

// Unregister removes the plugin registered under typ, running its
// OnUnregister hook first if present.
func (r *PluginRegistry) Unregister(typ string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, exists := r.plugins[typ]
	if !exists {
		return
	}
	if def.OnUnregister != nil {
		_ = def.OnUnregister()
	}
	delete(r.plugins, typ)
}

// Lookup returns the plugin registered for typ, if any.
func (r *PluginRegistry) Lookup(typ string) (PluginDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.plugins[typ]
	return def, ok
}

// CreateProvider constructs a Provider for cfg.Type using the registered
// plugin's factory. An unknown type fails with a config_error SearchError.
func (r *PluginRegistry) CreateProvider(cfg schema.EngineConfig, deps Deps) (Provider, error) {
	def, ok := r.Lookup(cfg.Type)
	if !ok {
		return nil, NewSearchError(cfg.Id, schema.ReasonConfigError,
			fmt.Sprintf("no plugin registered for engine type %q", cfg.Type), nil)
	}
	return def.Factory(cfg, deps)
}

// DefaultPlugins is the process-wide plugin registry that built-in and
// vendor provider packages register themselves into via init(), following
// the self-registration convention used throughout this module. Per-test or
// per-process callers that need isolation should construct their own
// PluginRegistry and pass it explicitly instead of relying on this global.
var DefaultPlugins = NewPluginRegistry()

// RegisterBuiltin registers def into DefaultPlugins, overwriting any
// existing registration of the same type. It panics on a registration hook
// failure since it is only ever called from package init().
func RegisterBuiltin(def PluginDefinition) {
	if err := DefaultPlugins.Register(def, RegisterOptions{Overwrite: true}); err != nil {
		panic(err)
	}
}
