package lifecycle

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"github.com/lookatitude/omnisearch/o11y"
	"github.com/lookatitude/omnisearch/schema"
)

// ToolProbeTimeout bounds each compose "up" and "stop" invocation. Looking up
// the compose binary on PATH is not time-bounded.
const ToolProbeTimeout = 10 * time.Second

// HealthProbeTimeout bounds a single healthcheck HTTP request.
const HealthProbeTimeout = 3 * time.Second

// InitialHealthProbeTimeout bounds the very first healthcheck performed at
// the start of Init, before any compose "up" is attempted.
const InitialHealthProbeTimeout = 5 * time.Second

// PollInterval is how often Init polls the health endpoint while waiting for
// a freshly started service to come up.
const PollInterval = time.Second

var containerNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Manager drives the lifecycle of one subprocess-compose-backed service. It
// is safe for concurrent use; concurrent Init calls coalesce onto a single
// in-flight operation.
type Manager struct {
	cfg           schema.DockerLifecycleConfig
	composeBinary string
	logger        *o11y.Logger
	httpClient    *http.Client
	runner        commandRunner

	mu      sync.Mutex
	state   State
	pending *initFuture
}

// initFuture is the shared once-style primitive concurrent Init callers
// coalesce onto: the first caller runs the operation and closes done; later
// callers block on done and observe the same err.
type initFuture struct {
	done chan struct{}
	err  error
}

// commandRunner abstracts process execution so tests can substitute a fake
// without invoking a real compose binary.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	LookPath(file string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Run()
}

func (execRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// NewManager creates a Manager for cfg. composeBinary names the
// subprocess-compose executable to probe for and invoke (e.g.
// "docker-compose" or "podman-compose").
func NewManager(cfg schema.DockerLifecycleConfig, composeBinary string, logger *o11y.Logger) *Manager {
	if composeBinary == "" {
		composeBinary = "docker-compose"
	}
	if logger == nil {
		logger = o11y.NewLogger()
	}
	return &Manager{
		cfg:           cfg,
		composeBinary: composeBinary,
		logger:        logger,
		httpClient:    &http.Client{},
		runner:        execRunner{},
		state:         StateUninitialized,
	}
}

// State returns the manager's current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Init brings the managed service to Ready, coalescing concurrent calls onto
// a single in-flight operation. It is idempotent: calling Init while already
// Ready returns nil immediately.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateReady {
		m.mu.Unlock()
		return nil
	}
	if m.pending != nil {
		fut := m.pending
		m.mu.Unlock()
		<-fut.done
		return fut.err
	}

	fut := &initFuture{done: make(chan struct{})}
	m.pending = fut
	m.state = StateInitializing
	m.mu.Unlock()

	err := m.doInit(ctx)

	m.mu.Lock()
	if err != nil {
		m.state = StateUninitialized
	} else {
		m.state = StateReady
	}
	m.pending = nil
	m.mu.Unlock()

	fut.err = err
	close(fut.done)
	return err
}

func (m *Manager) doInit(ctx context.Context) error {
	if !m.cfg.AutoStart || m.cfg.ComposeFile == "" {
		return nil
	}

	if _, err := m.runner.LookPath(m.composeBinary); err != nil {
		m.logger.Warn(ctx, "lifecycle: compose binary not found, continuing degraded", "binary", m.composeBinary)
		return nil
	}

	if healthy, _ := m.probeHealth(ctx, InitialHealthProbeTimeout); healthy {
		return nil
	}

	upCtx, cancel := context.WithTimeout(ctx, ToolProbeTimeout)
	err := m.runner.Run(upCtx, m.composeBinary, "-f", m.cfg.ComposeFile, "up", "-d")
	cancel()
	if err != nil {
		return fmt.Errorf("lifecycle: compose up: %w", err)
	}

	deadline := time.Duration(m.cfg.InitTimeoutMs) * time.Millisecond
	if deadline <= 0 {
		deadline = 60 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		if healthy, _ := m.probeHealth(ctx, HealthProbeTimeout); healthy {
			return nil
		}
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("lifecycle: %s did not become healthy within %s", m.cfg.ContainerName, deadline)
		case <-ticker.C:
		}
	}
}

// Healthcheck is a fast, non-throwing probe of whether the service is
// currently responding.
func (m *Manager) Healthcheck(ctx context.Context) bool {
	healthy, _ := m.probeHealth(ctx, HealthProbeTimeout)
	return healthy
}

func (m *Manager) probeHealth(ctx context.Context, timeout time.Duration) (bool, error) {
	if m.cfg.HealthEndpoint == "" {
		return true, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, m.cfg.HealthEndpoint, nil)
	if err != nil {
		return false, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// Shutdown stops the managed service if auto-stop is configured. It never
// returns an error to the caller; failures are logged and swallowed.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	m.state = StateShutDown
	m.mu.Unlock()

	if !m.cfg.AutoStop || m.cfg.ComposeFile == "" {
		return
	}

	stopCtx, cancel := context.WithTimeout(ctx, ToolProbeTimeout)
	defer cancel()
	if err := m.runner.Run(stopCtx, m.composeBinary, "-f", m.cfg.ComposeFile, "stop"); err != nil {
		m.logger.Warn(ctx, "lifecycle: compose stop failed", "error", err)
	}
}

// MarkUnhealthy transitions the manager to Unhealthy so the next search
// triggers a single re-Init attempt.
func (m *Manager) MarkUnhealthy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateReady {
		m.state = StateUnhealthy
	}
}

// ValidateDockerConfig performs the static checks described for subprocess
// lifecycle configuration: compose tool availability, compose file presence,
// health endpoint URL shape, and container name format.
func (m *Manager) ValidateDockerConfig() schema.ValidationResult {
	result := schema.ValidationResult{Valid: true}

	if _, err := m.runner.LookPath(m.composeBinary); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("compose binary %q not found on PATH", m.composeBinary))
	}

	if m.cfg.ComposeFile == "" {
		result.Warnings = append(result.Warnings, "no compose file configured; auto-start is disabled")
	}

	if m.cfg.HealthEndpoint != "" {
		if _, err := url.ParseRequestURI(m.cfg.HealthEndpoint); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("health endpoint %q is not a parseable URL", m.cfg.HealthEndpoint))
		}
	}

	if m.cfg.ContainerName != "" && !containerNamePattern.MatchString(m.cfg.ContainerName) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("container name %q does not match ^[A-Za-z0-9_-]+$", m.cfg.ContainerName))
	}

	return result
}
