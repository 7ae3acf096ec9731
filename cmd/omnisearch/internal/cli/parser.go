// Package cli implements the omnisearch command-line surface: flag
// parsing, help text, and plain-text/JSON result rendering.
package cli

import (
	"flag"
	"fmt"
	"strings"
)

// Command identifies which of the three subcommands a parsed invocation
// selected.
type Command string

const (
	CommandSearch  Command = "search"
	CommandCredits Command = "credits"
	CommandHealth  Command = "health"
	CommandHelp    Command = "help"
)

// Config is the fully-parsed result of one command-line invocation.
type Config struct {
	Command Command

	// Query is the free-text search string, only meaningful for
	// CommandSearch.
	Query string

	JSON         bool
	EnginesStr   string // Internal: for parsing
	Engines      []string
	Strategy     string
	Limit        int
	IncludeRaw   bool
	ConfigPath   string
}

// takesValue lists the option names recognized anywhere in the
// argument list, paired with whether they take a following value.
var takesValue = map[string]bool{
	"--engines":  true,
	"--strategy": true,
	"--limit":    true,
	"--config":   true,
	"--json":     false,
	"--include-raw": false,
	"--help":     false,
	"-h":         false,
}

// partition splits args into the flag tokens (in original relative order,
// each paired with its value if any) and the remaining positional tokens.
// This lets --config and friends appear before or after the subcommand and
// query words, which flag.FlagSet alone cannot do since it stops parsing at
// the first non-flag argument.
func partition(args []string) (flagArgs, positional []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			positional = append(positional, a)
			continue
		}

		name, value, hasEq := strings.Cut(a, "=")
		if hasEq {
			flagArgs = append(flagArgs, name, value)
			continue
		}

		flagArgs = append(flagArgs, a)
		if takesValue[a] && i+1 < len(args) {
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}
	return flagArgs, positional
}

// ParseArgs parses the process arguments (excluding argv[0]) into a Config.
// An error return means the user-supplied arguments were invalid; the
// caller should print the error and exit non-zero.
func ParseArgs(args []string) (*Config, error) {
	flagArgs, positional := partition(args)

	fs := flag.NewFlagSet("omnisearch", flag.ContinueOnError)
	cfg := &Config{}

	fs.BoolVar(&cfg.JSON, "json", false, "Emit machine-readable JSON output")
	fs.StringVar(&cfg.EnginesStr, "engines", "", "Comma-separated engine order override")
	fs.StringVar(&cfg.Strategy, "strategy", "", "Execution strategy: all or first-success")
	fs.IntVar(&cfg.Limit, "limit", 0, "Maximum number of results")
	fs.BoolVar(&cfg.IncludeRaw, "include-raw", false, "Ask providers to attach their raw responses (not included in the output)")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Explicit configuration file path")
	var help bool
	fs.BoolVar(&help, "help", false, "Show help message")
	fs.BoolVar(&help, "h", false, "Show help message (short)")

	if err := fs.Parse(flagArgs); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if cfg.EnginesStr != "" {
		cfg.Engines = strings.Split(cfg.EnginesStr, ",")
	}

	if help {
		cfg.Command = CommandHelp
		return cfg, nil
	}

	if cfg.Strategy != "" && cfg.Strategy != "all" && cfg.Strategy != "first-success" {
		return nil, fmt.Errorf("invalid --strategy %q: must be \"all\" or \"first-success\"", cfg.Strategy)
	}

	limitSet := false
	fs.Visit(func(f *flag.Flag) { limitSet = limitSet || f.Name == "limit" })
	if cfg.Limit < 0 || (limitSet && cfg.Limit == 0) {
		return nil, fmt.Errorf("invalid --limit %d: must be a positive integer", cfg.Limit)
	}

	if len(positional) == 0 {
		return nil, fmt.Errorf("missing command: expected a search query, \"credits\", or \"health\"")
	}

	switch positional[0] {
	case "credits":
		cfg.Command = CommandCredits
	case "health":
		cfg.Command = CommandHealth
	default:
		cfg.Command = CommandSearch
		cfg.Query = strings.Join(positional, " ")
	}

	if cfg.Command == CommandSearch && cfg.Query == "" {
		return nil, fmt.Errorf("missing search query")
	}

	return cfg, nil
}
