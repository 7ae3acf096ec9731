// Command omnisearch dispatches a search query across configured search
// engines, tracking per-engine credit usage and managing any locally-hosted
// back ends those engines depend on.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/lookatitude/omnisearch/cmd/omnisearch/internal/cli"
	"github.com/lookatitude/omnisearch/config"
	"github.com/lookatitude/omnisearch/credit"
	"github.com/lookatitude/omnisearch/o11y"
	"github.com/lookatitude/omnisearch/schema"
	"github.com/lookatitude/omnisearch/search"

	_ "github.com/lookatitude/omnisearch/search/providers/brave"
	_ "github.com/lookatitude/omnisearch/search/providers/linkup"
	_ "github.com/lookatitude/omnisearch/search/providers/searxng"
	_ "github.com/lookatitude/omnisearch/search/providers/tavily"
)

// appName is the XDG application directory name shared by config, credit
// state, and local-service data paths.
const appName = "omnisearch"

const (
	exitSuccess = 0
	exitError   = 1
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := o11y.InitTracer(appName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "omnisearch: init tracer: %v\n", err)
		os.Exit(exitError)
	}
	defer shutdownTracer()
	if err := o11y.InitMeter(appName); err != nil {
		fmt.Fprintf(os.Stderr, "omnisearch: init meter: %v\n", err)
		os.Exit(exitError)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "omnisearch: %v\n", err)
		os.Exit(exitError)
	}

	if cfg.Command == cli.CommandHelp {
		cli.PrintHelp()
		os.Exit(exitSuccess)
	}

	os.Exit(run(ctx, cfg))
}

// run wires the application's components together and dispatches on the
// parsed subcommand. It returns the process exit code rather than calling
// os.Exit directly, so it can be invoked from tests.
func run(ctx context.Context, cliCfg *cli.Config) int {
	logger := o11y.NewLogger()

	appCfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "omnisearch: loading configuration: %v\n", err)
		return exitError
	}

	stateProvider, err := credit.NewFileStateProvider(appName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "omnisearch: resolving credit state path: %v\n", err)
		return exitError
	}

	creditMgr := credit.NewManager(appCfg.Engines, stateProvider, logger)
	if err := creditMgr.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "omnisearch: initializing credit state: %v\n", err)
		return exitError
	}

	registry, err := buildRegistry(appCfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "omnisearch: %v\n", err)
		return exitError
	}

	orchestrator := search.NewOrchestrator(appCfg, creditMgr, registry)
	orchestrator.Logger = logger

	switch cliCfg.Command {
	case cli.CommandCredits:
		return runCredits(creditMgr, cliCfg)
	case cli.CommandHealth:
		return runHealth(ctx, registry, cliCfg)
	default:
		return runSearch(ctx, orchestrator, cliCfg)
	}
}

// buildRegistry constructs a Provider for every configured engine via the
// self-registered plugin factories and adds it to a fresh Registry.
func buildRegistry(cfg *config.Config, logger *o11y.Logger) (*search.Registry, error) {
	registry := search.NewRegistry()
	for _, engineCfg := range cfg.Engines {
		if !engineCfg.Enabled {
			continue
		}
		provider, err := search.DefaultPlugins.CreateProvider(engineCfg, search.Deps{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("constructing provider %q: %w", engineCfg.Id, err)
		}
		if err := registry.Register(provider); err != nil {
			return nil, fmt.Errorf("registering provider %q: %w", engineCfg.Id, err)
		}
	}
	return registry, nil
}

func runSearch(ctx context.Context, o *search.Orchestrator, cliCfg *cli.Config) int {
	query := schema.SearchQuery{
		Query:      cliCfg.Query,
		Limit:      cliCfg.Limit,
		IncludeRaw: cliCfg.IncludeRaw,
	}

	var order []schema.EngineId
	for _, id := range cliCfg.Engines {
		order = append(order, schema.EngineId(id))
	}

	result, err := o.Run(ctx, query, search.RunOptions{
		EngineOrderOverride: order,
		Strategy:            cliCfg.Strategy,
		Limit:               cliCfg.Limit,
		IncludeRaw:          cliCfg.IncludeRaw,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "omnisearch: %v\n", err)
		return exitError
	}

	if cliCfg.JSON {
		data, err := cli.RenderJSON(ctx, result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "omnisearch: %v\n", err)
			return exitError
		}
		fmt.Println(string(data))
	} else {
		os.Stdout.Write(cli.RenderPlain(ctx, result))
	}

	return exitSuccess
}

func runCredits(mgr *credit.Manager, cliCfg *cli.Config) int {
	snapshots := mgr.ListSnapshots()

	if cliCfg.JSON {
		data, err := cli.RenderCreditsJSON(snapshots)
		if err != nil {
			fmt.Fprintf(os.Stderr, "omnisearch: %v\n", err)
			return exitError
		}
		fmt.Println(string(data))
		return exitSuccess
	}

	os.Stdout.Write(cli.RenderCreditsPlain(snapshots))
	return exitSuccess
}

// providerHealthChecker adapts a search.Provider's optional lifecycle
// healthcheck to o11y.HealthChecker. Providers with no lifecycle capability
// report Healthy unconditionally: they have nothing to probe.
type providerHealthChecker struct {
	provider search.Provider
}

func (c providerHealthChecker) HealthCheck(ctx context.Context) o11y.HealthResult {
	lc, ok := c.provider.(search.LifecycleCapable)
	if ok {
		if lp, managed := lc.Lifecycle(); managed {
			if !lp.Healthcheck(ctx) {
				return o11y.HealthResult{Status: o11y.Unhealthy, Message: "failed health probe"}
			}
		}
	}
	return o11y.HealthResult{Status: o11y.Healthy}
}

// runHealth probes every registered provider concurrently through
// o11y.HealthRegistry and renders the results.
func runHealth(ctx context.Context, registry *search.Registry, cliCfg *cli.Config) int {
	providers := registry.List()

	healthReg := o11y.NewHealthRegistry()
	for _, p := range providers {
		healthReg.Register(string(p.ID()), providerHealthChecker{provider: p})
	}

	results := healthReg.CheckAll(ctx)
	sort.Slice(results, func(i, j int) bool { return results[i].Component < results[j].Component })

	entries := make([]cli.HealthEntry, 0, len(results))
	healthy := true
	for _, r := range results {
		entry := cli.HealthEntry{EngineId: r.Component, Healthy: r.Status == o11y.Healthy}
		if !entry.Healthy {
			entry.Message = r.Message
			healthy = false
		}
		entries = append(entries, entry)
	}

	if cliCfg.JSON {
		data, err := cli.RenderHealthJSON(entries)
		if err != nil {
			fmt.Fprintf(os.Stderr, "omnisearch: %v\n", err)
			return exitError
		}
		fmt.Println(string(data))
	} else {
		os.Stdout.Write(cli.RenderHealthPlain(entries))
	}

	if !healthy {
		return exitError
	}
	return exitSuccess
}
