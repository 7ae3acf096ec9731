package linkup

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
	t.Setenv("LINKUP_API_KEY", "test-key")
	cfg := schema.EngineConfig{Type: "linkup", Id: "linkup", APIKeyEnv: "LINKUP_API_KEY", Endpoint: srv.URL}
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
			{Name: "n1", URL: "https://a", Content: "c1", Score: 0.6},
		}})
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	resp, err := p.Search(context.Background(), schema.SearchQuery{Query: "go"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "n1" {
		t.Errorf("Items = %+v, want one item titled n1", resp.Items)
	}
}

func TestNewProvider_MissingAPIKeyIsConfigError(t *testing.T) {
	t.Setenv("LINKUP_API_KEY", "")
	cfg := schema.EngineConfig{Type: "linkup", Id: "linkup", APIKeyEnv: "LINKUP_API_KEY"}

	_, err := newProvider(cfg, search.Deps{})
	if search.ReasonOf(err) != schema.ReasonConfigError {
		t.Errorf("ReasonOf(err) = %q, want config_error", search.ReasonOf(err))
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
	if _, ok := lc.Lifecycle(); !ok {
		t.Fatal("Lifecycle() ok = false, want true")
	}
}
