// Package searxng implements a locally-hosted SearXNG metasearch instance as
// a search.Provider, managed as a subprocess-compose service.
package searxng

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lookatitude/omnisearch/internal/httpclient"
	"github.com/lookatitude/omnisearch/lifecycle"
	"github.com/lookatitude/omnisearch/o11y"
	"github.com/lookatitude/omnisearch/schema"
	"github.com/lookatitude/omnisearch/search"
)

func init() {
	search.RegisterBuiltin(search.PluginDefinition{
		Type:         "searxng",
		DisplayName:  "SearXNG",
		HasLifecycle: true,
		Factory:      newProvider,
	})
}

func newProvider(cfg schema.EngineConfig, deps search.Deps) (search.Provider, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	client := deps.HTTPClient
	if client == nil {
		client = httpclient.New(httpclient.WithBaseURL(endpoint))
	}

	logger := deps.Logger
	if logger == nil {
		logger = o11y.NewLogger()
	}

	var dockerCfg schema.DockerLifecycleConfig
	if cfg.Docker != nil {
		dockerCfg = *cfg.Docker
	}
	mgr := lifecycle.NewManager(dockerCfg, "docker-compose", logger)

	return &Provider{cfg: cfg, client: client, logger: logger, lifecycle: search.NewManagedLifecycle(mgr)}, nil
}

type searchResponse struct {
	Results []resultItem `json:"results"`
}

type resultItem struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Provider queries a locally-hosted SearXNG instance.
type Provider struct {
	cfg       schema.EngineConfig
	client    *httpclient.Client
	logger    *o11y.Logger
	lifecycle search.LifecycleProvider
}

func (p *Provider) ID() schema.EngineId { return p.cfg.Id }

func (p *Provider) Metadata() search.Metadata {
	return search.Metadata{ID: p.cfg.Id, DisplayName: p.cfg.DisplayName, DocsURL: "https://docs.searxng.org"}
}

// Lifecycle satisfies search.LifecycleCapable.
func (p *Provider) Lifecycle() (search.LifecycleProvider, bool) {
	return p.lifecycle, true
}

func (p *Provider) Search(ctx context.Context, q schema.SearchQuery) (schema.SearchResponse, error) {
	if !p.lifecycle.Healthcheck(ctx) {
		if err := p.lifecycle.Init(ctx); err != nil || !p.lifecycle.Healthcheck(ctx) {
			return schema.SearchResponse{}, search.NewSearchError(p.cfg.Id, schema.ReasonProviderUnavailable,
				"searxng instance is not healthy", err)
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = p.cfg.DefaultLimit
	}

	path := fmt.Sprintf("/search?q=%s&format=json", url.QueryEscape(q.Query))
	if len(q.Categories) > 0 {
		path += "&categories=" + url.QueryEscape(strings.Join(q.Categories, ","))
	}

	resp, err := httpclient.DoJSON[searchResponse](ctx, p.client, "GET", path, nil)
	if err != nil {
		return schema.SearchResponse{}, search.NewSearchError(p.cfg.Id, classifyError(err), err.Error(), err)
	}

	results := resp.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	items := make([]schema.SearchResultItem, 0, len(results))
	for _, r := range results {
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
