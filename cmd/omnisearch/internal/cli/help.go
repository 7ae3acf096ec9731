package cli

import (
	"fmt"
	"os"
)

// PrintHelp prints the help message.
func PrintHelp() {
	helpText := `omnisearch - multi-provider web search dispatcher

USAGE:
    omnisearch <query> [flags]
    omnisearch credits [flags]
    omnisearch health [flags]
    omnisearch --help | -h

DESCRIPTION:
    Dispatches a search query to one or more configured search engines
    (Tavily, Brave, Linkup, a local SearXNG instance), merging or
    short-circuiting across them according to the selected strategy, and
    tracking per-engine monthly credit usage.

ARGUMENTS:
    query       The free-text search string. Words may appear in any
                position relative to flags.

COMMANDS:
    credits     Print per-engine credit snapshots and exit.
    health      Run a health probe on every registered provider; exits 0
                iff none report unhealthy.

FLAGS:
    --json                 Emit machine-readable JSON output
    --engines e1,e2,...    Override engine order (comma-separated ids)
    --strategy MODE        Execution strategy: all or first-success (default: all)
    --limit N              Maximum number of results (positive integer)
    --include-raw          Ask providers to attach their raw responses; the
                           raw responses are not included in the output
    --config PATH          Explicit configuration file path
    --help, -h             Show this help message

EXIT CODES:
    0    Success
    1    User, query, configuration, or health error

EXAMPLES:
    # Search with the default engine order and strategy
    omnisearch "golang context cancellation"

    # Race two specific engines, return on first success
    omnisearch "rust vs go" --engines tavily,brave --strategy first-success

    # Machine-readable output, capped at 5 results
    omnisearch "weather api" --json --limit 5

    # Check configured credit balances
    omnisearch credits

    # Probe every configured provider
    omnisearch health
`

	fmt.Fprint(os.Stdout, helpText)
}
