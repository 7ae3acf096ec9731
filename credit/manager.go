package credit

import (
	"context"
	"sync"
	"time"

	"github.com/lookatitude/omnisearch/o11y"
	"github.com/lookatitude/omnisearch/schema"
)

// Snapshot is a derived, point-in-time view of one engine's credit usage. It
// is never persisted directly; ListSnapshots computes it from CreditState.
type Snapshot struct {
	EngineId    schema.EngineId
	Quota       int
	Used        int
	Remaining   int
	IsExhausted bool
}

// Manager tracks per-engine credit usage with a monthly reset and durable
// persistence. It is single-writer per process: Charge, Initialize, and
// ListSnapshots all serialize through the same mutex, so a snapshot can never
// observe a charge mid-flight.
type Manager struct {
	mu      sync.Mutex
	engines map[schema.EngineId]schema.EngineConfig
	order   []schema.EngineId
	state   schema.CreditState
	store   StateProvider
	logger  *o11y.Logger
}

// NewManager creates a Manager for the given engine configs, backed by
// store for persistence. Call Initialize before first use.
func NewManager(engines []schema.EngineConfig, store StateProvider, logger *o11y.Logger) *Manager {
	if logger == nil {
		logger = o11y.NewLogger()
	}
	m := &Manager{
		engines: make(map[schema.EngineId]schema.EngineConfig, len(engines)),
		store:   store,
		logger:  logger,
		state:   schema.CreditState{},
	}
	for _, e := range engines {
		if !e.Enabled {
			continue
		}
		m.engines[e.Id] = e
		m.order = append(m.order, e.Id)
	}
	return m
}

// Initialize loads persisted state, creates a record for any enabled engine
// missing one, rolls over any record whose month has changed, and persists
// the result once. Persistence failures are logged, never returned.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	loaded, err := m.store.LoadState()
	if err != nil {
		m.logger.Warn(ctx, "credit: load state failed, starting empty", "error", err)
		loaded = schema.CreditState{}
	}
	m.state = loaded
	if m.state == nil {
		m.state = schema.CreditState{}
	}

	now := time.Now()
	for _, id := range m.order {
		rec, ok := m.state[id]
		if !ok {
			m.state[id] = schema.CreditRecord{Used: 0, LastReset: now}
			continue
		}
		if sameMonth(rec.LastReset, now) {
			continue
		}
		m.state[id] = schema.CreditRecord{Used: 0, LastReset: now}
	}

	m.persistLocked(ctx)
	return nil
}

// sameMonth reports whether a and b fall in the same calendar month and
// year.
func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// HasSufficientCredits reports whether id has enough remaining quota to
// absorb one more charge. Unknown engines are reported as insufficient.
func (m *Manager) HasSufficientCredits(id schema.EngineId) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.engines[id]
	if !ok {
		return false
	}
	rec := m.state[id]
	return rec.Used+cfg.CreditCostPerSearch <= cfg.MonthlyQuota
}

// Charge atomically increments id's usage by its configured cost and
// persists the new state. It returns false, mutating nothing, if id is
// unknown or the charge would exceed the engine's monthly quota.
func (m *Manager) Charge(ctx context.Context, id schema.EngineId) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.engines[id]
	if !ok {
		return false
	}

	rec := m.state[id]
	if rec.Used+cfg.CreditCostPerSearch > cfg.MonthlyQuota {
		return false
	}

	rec.Used += cfg.CreditCostPerSearch
	if rec.LastReset.IsZero() {
		rec.LastReset = time.Now()
	}
	m.state[id] = rec

	m.persistLocked(ctx)
	o11y.CreditsCharged(ctx, string(id), float64(cfg.CreditCostPerSearch))
	return true
}

// ListSnapshots returns a derived Snapshot for every enabled engine, in
// configuration order.
func (m *Manager) ListSnapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Snapshot, 0, len(m.order))
	for _, id := range m.order {
		cfg := m.engines[id]
		rec := m.state[id]
		remaining := cfg.MonthlyQuota - rec.Used
		out = append(out, Snapshot{
			EngineId:    id,
			Quota:       cfg.MonthlyQuota,
			Used:        rec.Used,
			Remaining:   remaining,
			IsExhausted: remaining < cfg.CreditCostPerSearch,
		})
	}
	return out
}

// persistLocked saves m.state via m.store. It must be called with m.mu held.
// Persistence failures are logged at warning level and otherwise ignored:
// in-memory state remains authoritative for the process.
func (m *Manager) persistLocked(ctx context.Context) {
	if err := m.store.SaveState(m.state); err != nil {
		m.logger.Warn(ctx, "credit: persist state failed", "error", err)
	}
}
