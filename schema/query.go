// Package schema defines the plain data types shared across omnisearch:
// queries, results, engine configuration, and per-engine outcome records.
// It carries no behavior — every other package imports schema and adds
// logic on top of it.
package schema

// EngineId is the stable identity of one configured search engine. It must
// be non-empty and unique among the engines registered in a process.
type EngineId string

// DisplayName returns a human-readable label for a well-known built-in
// engine id, or the id itself for anything else.
func (id EngineId) DisplayName() string {
	switch id {
	case "tavily":
		return "Tavily"
	case "brave":
		return "Brave Search"
	case "linkup":
		return "Linkup"
	case "searxng":
		return "SearXNG"
	default:
		return string(id)
	}
}

// SearchQuery is the input to a single search operation.
type SearchQuery struct {
	// Query is the free-text search string.
	Query string

	// Limit caps the number of results a caller wants back. Zero means no
	// limit requested by the caller.
	Limit int

	// IncludeRaw requests that providers attach their raw vendor response
	// on SearchResponse.Raw.
	IncludeRaw bool

	// Categories optionally restricts the search to specific topical
	// categories (engine-dependent; providers that don't support
	// categories ignore this field).
	Categories []string
}
