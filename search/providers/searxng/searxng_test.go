package searxng

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
	cfg := schema.EngineConfig{Type: "searxng", Id: "searxng", Endpoint: srv.URL, DefaultLimit: 10}
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
			{Title: "r1", URL: "https://a", Content: "c1", Score: 1.2},
		}})
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	resp, err := p.Search(context.Background(), schema.SearchQuery{Query: "go"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "r1" {
		t.Errorf("Items = %+v, want one item titled r1", resp.Items)
	}
}

func TestProvider_Search_LimitTruncatesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []resultItem{
			{Title: "r1", URL: "https://a"},
			{Title: "r2", URL: "https://b"},
			{Title: "r3", URL: "https://c"},
		}})
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	resp, err := p.Search(context.Background(), schema.SearchQuery{Query: "go", Limit: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(resp.Items))
	}
}

func TestProvider_LifecycleCapable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	lc, ok := p.(search.LifecycleCapable)
	if !ok {
		t.Fatal("Provider does not implement LifecycleCapable")
	}
	lp, ok := lc.Lifecycle()
	if !ok || lp == nil {
		t.Fatal("Lifecycle() = (nil, false), want a LifecycleProvider")
	}
	if !lp.IsLifecycleManaged() {
		t.Error("IsLifecycleManaged() = false, want true")
	}
}
