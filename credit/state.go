// Package credit tracks per-engine monthly search quotas: how many credits
// each configured engine has used, a monthly rollover, and a pluggable
// durable-persistence port so accounting survives process restarts.
package credit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lookatitude/omnisearch/schema"
)

// StateProvider is the persistence port the Manager uses to load and save
// CreditState. Tests substitute MemoryStateProvider; production uses
// FileStateProvider.
type StateProvider interface {
	// LoadState returns the persisted state, or an empty CreditState if none
	// exists yet.
	LoadState() (schema.CreditState, error)

	// SaveState persists state, overwriting whatever was there before.
	SaveState(state schema.CreditState) error

	// StateExists reports whether persisted state is present.
	StateExists() (bool, error)
}

// FileStateProvider persists CreditState as a single JSON document under an
// XDG-style state directory, following the layout
// $XDG_STATE_HOME/<app>/credits.json (fallback ~/.local/state/<app>/).
type FileStateProvider struct {
	path string
}

// NewFileStateProvider creates a FileStateProvider rooted at the default
// state path for appName, honoring $XDG_STATE_HOME.
func NewFileStateProvider(appName string) (*FileStateProvider, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("credit: resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return &FileStateProvider{path: filepath.Join(dir, appName, "credits.json")}, nil
}

// NewFileStateProviderAt creates a FileStateProvider at an explicit path,
// primarily for tests.
func NewFileStateProviderAt(path string) *FileStateProvider {
	return &FileStateProvider{path: path}
}

// LoadState reads the JSON document at p.path. A missing file yields an
// empty CreditState rather than an error.
func (p *FileStateProvider) LoadState() (schema.CreditState, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return schema.CreditState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credit: read state: %w", err)
	}

	state := schema.CreditState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("credit: decode state: %w", err)
	}
	return state, nil
}

// SaveState writes state as JSON to p.path, creating parent directories as
// needed.
func (p *FileStateProvider) SaveState(state schema.CreditState) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("credit: create state dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("credit: encode state: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("credit: write state: %w", err)
	}
	return nil
}

// StateExists reports whether a state file is present at p.path.
func (p *FileStateProvider) StateExists() (bool, error) {
	_, err := os.Stat(p.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryStateProvider is an in-memory StateProvider used by tests and by
// callers that explicitly opt out of durable credit accounting.
type MemoryStateProvider struct {
	mu    sync.Mutex
	state schema.CreditState
}

// NewMemoryStateProvider creates a MemoryStateProvider, optionally seeded
// with an initial state (a nil seed starts empty).
func NewMemoryStateProvider(seed schema.CreditState) *MemoryStateProvider {
	if seed == nil {
		seed = schema.CreditState{}
	}
	cloned := make(schema.CreditState, len(seed))
	for k, v := range seed {
		cloned[k] = v
	}
	return &MemoryStateProvider{state: cloned}
}

// LoadState returns a copy of the provider's in-memory state.
func (p *MemoryStateProvider) LoadState() (schema.CreditState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cloned := make(schema.CreditState, len(p.state))
	for k, v := range p.state {
		cloned[k] = v
	}
	return cloned, nil
}

// SaveState replaces the provider's in-memory state with a copy of state.
func (p *MemoryStateProvider) SaveState(state schema.CreditState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cloned := make(schema.CreditState, len(state))
	for k, v := range state {
		cloned[k] = v
	}
	p.state = cloned
	return nil
}

// StateExists always reports true for MemoryStateProvider: there is always
// an in-memory state value, even if empty.
func (p *MemoryStateProvider) StateExists() (bool, error) {
	return true, nil
}
