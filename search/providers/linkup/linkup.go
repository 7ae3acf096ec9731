// Package linkup implements the Linkup search API as a search.Provider. Per
// this deployment's configuration, Linkup is run as a subprocess-compose
// proxy service in front of the vendor API, so it carries the same
// auto-start/health-probe lifecycle as searxng.
package linkup

import (
	"context"
	"errors"
	"os"

	"github.com/lookatitude/omnisearch/internal/httpclient"
	"github.com/lookatitude/omnisearch/lifecycle"
	"github.com/lookatitude/omnisearch/o11y"
	"github.com/lookatitude/omnisearch/schema"
	"github.com/lookatitude/omnisearch/search"
)

func init() {
	search.RegisterBuiltin(search.PluginDefinition{
		Type:         "linkup",
		DisplayName:  "Linkup",
		HasLifecycle: true,
		Factory:      newProvider,
	})
}

func newProvider(cfg schema.EngineConfig, deps search.Deps) (search.Provider, error) {
	if cfg.APIKeyEnv != "" && os.Getenv(cfg.APIKeyEnv) == "" {
		return nil, search.NewSearchError(cfg.Id, schema.ReasonConfigError,
			"missing required environment variable "+cfg.APIKeyEnv, nil)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.linkup.so/v1"
	}

	client := deps.HTTPClient
	if client == nil {
		client = httpclient.New(
			httpclient.WithBaseURL(endpoint),
			httpclient.WithBearerToken(os.Getenv(cfg.APIKeyEnv)),
		)
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

type searchRequest struct {
	Query    string `json:"q"`
	Depth    string `json:"depth,omitempty"`
	OutputType string `json:"outputType"`
}

type searchResponse struct {
	Results []resultItem `json:"results"`
}

type resultItem struct {
	Name    string  `json:"name"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Provider queries the Linkup search API through its managed local proxy.
type Provider struct {
	cfg       schema.EngineConfig
	client    *httpclient.Client
	logger    *o11y.Logger
	lifecycle search.LifecycleProvider
}

func (p *Provider) ID() schema.EngineId { return p.cfg.Id }

func (p *Provider) Metadata() search.Metadata {
	return search.Metadata{ID: p.cfg.Id, DisplayName: p.cfg.DisplayName, DocsURL: "https://docs.linkup.so"}
}

// Lifecycle satisfies search.LifecycleCapable.
func (p *Provider) Lifecycle() (search.LifecycleProvider, bool) {
	return p.lifecycle, true
}

func (p *Provider) Search(ctx context.Context, q schema.SearchQuery) (schema.SearchResponse, error) {
	if !p.lifecycle.Healthcheck(ctx) {
		if err := p.lifecycle.Init(ctx); err != nil || !p.lifecycle.Healthcheck(ctx) {
			return schema.SearchResponse{}, search.NewSearchError(p.cfg.Id, schema.ReasonProviderUnavailable,
				"linkup proxy is not healthy", err)
		}
	}

	req := searchRequest{Query: q.Query, OutputType: "searchResults"}

	resp, err := httpclient.DoJSON[searchResponse](ctx, p.client, "POST", "/search", req)
	if err != nil {
		return schema.SearchResponse{}, search.NewSearchError(p.cfg.Id, classifyError(err), err.Error(), err)
	}

	results := resp.Results
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}

	items := make([]schema.SearchResultItem, 0, len(results))
	for _, r := range results {
		score := r.Score
		items = append(items, schema.SearchResultItem{
			Title:        titleOrURL(r.Name, r.URL),
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
