// Package brave implements the Brave Search API as a search.Provider.
package brave

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/lookatitude/omnisearch/internal/httpclient"
	"github.com/lookatitude/omnisearch/o11y"
	"github.com/lookatitude/omnisearch/schema"
	"github.com/lookatitude/omnisearch/search"
)

func init() {
	search.RegisterBuiltin(search.PluginDefinition{
		Type:        "brave",
		DisplayName: "Brave Search",
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
			httpclient.WithBaseURL("https://api.search.brave.com/res/v1"),
			httpclient.WithHeader("X-Subscription-Token", os.Getenv(cfg.APIKeyEnv)),
			httpclient.WithHeader("Accept", "application/json"),
		)
	}

	logger := deps.Logger
	if logger == nil {
		logger = o11y.NewLogger()
	}

	return &Provider{cfg: cfg, client: client, logger: logger}, nil
}

type searchResponse struct {
	Web struct {
		Results []resultItem `json:"results"`
	} `json:"web"`
}

type resultItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Rank        int    `json:"rank"`
}

// Provider queries the Brave Search API.
type Provider struct {
	cfg    schema.EngineConfig
	client *httpclient.Client
	logger *o11y.Logger
}

func (p *Provider) ID() schema.EngineId { return p.cfg.Id }

func (p *Provider) Metadata() search.Metadata {
	return search.Metadata{ID: p.cfg.Id, DisplayName: p.cfg.DisplayName, DocsURL: "https://brave.com/search/api/"}
}

func (p *Provider) Search(ctx context.Context, q schema.SearchQuery) (schema.SearchResponse, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = p.cfg.DefaultLimit
	}
	if limit <= 0 {
		limit = 10
	}

	path := fmt.Sprintf("/web/search?q=%s&count=%d", url.QueryEscape(q.Query), limit)
	resp, err := httpclient.DoJSON[searchResponse](ctx, p.client, "GET", path, nil)
	if err != nil {
		return schema.SearchResponse{}, search.NewSearchError(p.cfg.Id, classifyError(err), err.Error(), err)
	}

	items := make([]schema.SearchResultItem, 0, len(resp.Web.Results))
	for _, r := range resp.Web.Results {
		score := rankToScore(r.Rank)
		items = append(items, schema.SearchResultItem{
			Title:        titleOrURL(r.Title, r.URL),
			URL:          r.URL,
			Snippet:      r.Description,
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

// rankToScore converts Brave's ascending rank (0 = best) into a descending
// score comparable to the other providers' 0..1 scores.
func rankToScore(rank int) float64 {
	return 1.0 / float64(rank+1)
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
