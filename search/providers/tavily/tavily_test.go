package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lookatitude/omnisearch/internal/httpclient"
	"github.com/lookatitude/omnisearch/schema"
	"github.com/lookatitude/omnisearch/search"
)

func newTestProvider(t *testing.T, srv *httptest.Server) search.Provider {
	t.Helper()
	t.Setenv("TAVILY_API_KEY", "test-key")
	cfg := schema.EngineConfig{Type: "tavily", Id: "tavily", APIKeyEnv: "TAVILY_API_KEY"}
	client := httpclient.New(httpclient.WithBaseURL(srv.URL))
	p, err := newProvider(cfg, search.Deps{HTTPClient: client})
	if err != nil {
		t.Fatalf("newProvider() error = %v", err)
	}
	return p
}

func TestProvider_Search_NormalizesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []resultItem{
			{Title: "Result 1", URL: "https://example.com/1", Content: "c1", Score: 0.8},
			{URL: "https://example.com/2", Content: "c2", Score: 0.5},
		}})
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	resp, err := p.Search(context.Background(), schema.SearchQuery{Query: "go"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(resp.Items))
	}
	if resp.Items[0].Title != "Result 1" {
		t.Errorf("Items[0].Title = %q, want Result 1", resp.Items[0].Title)
	}
	if resp.Items[1].Title != "https://example.com/2" {
		t.Errorf("Items[1].Title = %q, want url fallback", resp.Items[1].Title)
	}
}

func TestProvider_Search_EmptyResultsIsNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{Results: nil})
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	_, err := p.Search(context.Background(), schema.SearchQuery{Query: "go"})
	if search.ReasonOf(err) != schema.ReasonNoResults {
		t.Errorf("ReasonOf(err) = %q, want no_results", search.ReasonOf(err))
	}
}

func TestProvider_Search_RateLimitMapsToRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"slow down"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	_, err := p.Search(context.Background(), schema.SearchQuery{Query: "go"})
	if search.ReasonOf(err) != schema.ReasonRateLimit {
		t.Errorf("ReasonOf(err) = %q, want rate_limit", search.ReasonOf(err))
	}
}

func TestNewProvider_MissingAPIKeyIsConfigError(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	cfg := schema.EngineConfig{Type: "tavily", Id: "tavily", APIKeyEnv: "TAVILY_API_KEY"}

	_, err := newProvider(cfg, search.Deps{})
	if err == nil {
		t.Fatal("newProvider() error = nil, want config_error")
	}
	if search.ReasonOf(err) != schema.ReasonConfigError {
		t.Errorf("ReasonOf(err) = %q, want config_error", search.ReasonOf(err))
	}
}
