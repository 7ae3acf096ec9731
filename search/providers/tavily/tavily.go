// Package tavily implements the Tavily search API as a search.Provider.
package tavily

import (
	"context"
	"errors"
	"os"

	"github.com/lookatitude/omnisearch/internal/httpclient"
	"github.com/lookatitude/omnisearch/o11y"
	"github.com/lookatitude/omnisearch/schema"
	"github.com/lookatitude/omnisearch/search"
)

func init() {
	search.RegisterBuiltin(search.PluginDefinition{
		Type:        "tavily",
		DisplayName: "Tavily",
		Factory:     newProvider,
	})
}

func newProvider(cfg schema.EngineConfig, deps search.Deps) (search.Provider, error) {
	if cfg.APIKeyEnv != "" && os.Getenv(cfg.APIKeyEnv) == "" {
		return nil, search.NewSearchError(cfg.Id, schema.ReasonConfigError,
			"missing required environment variable "+cfg.APIKeyEnv, nil)
	}

	client := deps.HTTPClient
	if client == nil {
		client = httpclient.New(
			httpclient.WithBaseURL("https://api.tavily.com"),
			httpclient.WithBearerToken(os.Getenv(cfg.APIKeyEnv)),
		)
	}

	logger := deps.Logger
	if logger == nil {
		logger = o11y.NewLogger()
	}

	return &Provider{cfg: cfg, client: client, logger: logger}, nil
}

// searchRequest is the Tavily /search request body.
type searchRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
}

// searchResponse is the subset of Tavily's /search response this package
// consumes.
type searchResponse struct {
	Results []resultItem `json:"results"`
}

type resultItem struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Provider queries the Tavily search API.
type Provider struct {
	cfg    schema.EngineConfig
	client *httpclient.Client
	logger *o11y.Logger
}

func (p *Provider) ID() schema.EngineId { return p.cfg.Id }

func (p *Provider) Metadata() search.Metadata {
	return search.Metadata{ID: p.cfg.Id, DisplayName: p.cfg.DisplayName, DocsURL: "https://docs.tavily.com"}
}

func (p *Provider) Search(ctx context.Context, q schema.SearchQuery) (schema.SearchResponse, error) {
	depth := string(p.cfg.SearchDepth)
	if depth == "" {
		depth = string(schema.SearchDepthBasic)
	}

	req := searchRequest{Query: q.Query, SearchDepth: depth}
	if q.Limit > 0 {
		req.MaxResults = q.Limit
	}

	resp, err := httpclient.DoJSON[searchResponse](ctx, p.client, "POST", "/search", req)
	if err != nil {
		return schema.SearchResponse{}, search.NewSearchError(p.cfg.Id, classifyError(err), err.Error(), err)
	}

	items := make([]schema.SearchResultItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		score := r.Score
		items = append(items, schema.SearchResultItem{
			Title:        titleOrURL(r.Title, r.URL),
			URL:          r.URL,
			Snippet:      r.Content,
			Score:        &score,
			SourceEngine: p.cfg.Id,
		})
	}

	if len(items) == 0 {
		return schema.SearchResponse{}, search.NewSearchError(p.cfg.Id, schema.ReasonNoResults, "no results", nil)
	}

	var raw any
	if q.IncludeRaw {
		raw = resp
	}
	return schema.SearchResponse{EngineId: p.cfg.Id, Items: items, Raw: raw}, nil
}

func titleOrURL(title, url string) string {
	if title != "" {
		return title
	}
	return url
}

func classifyError(err error) schema.FailureReason {
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 {
			return schema.ReasonRateLimit
		}
		return schema.ReasonAPIError
	}
	return schema.ReasonNetworkError
}
