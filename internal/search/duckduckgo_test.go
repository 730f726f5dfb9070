package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpselabs/glimpse/internal/engine"
)

const resultsPage = `
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fblog%2Fgo1.24&amp;rut=abc">Go 1.24 <b>released</b></a>
  <a class="result__snippet" href="#">The Go team has <b>released</b> Go 1.24.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/plain">Plain result</a>
  <a class="result__snippet" href="#">A snippet without markup.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/third">Third result</a>
</div>
`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{Endpoint: srv.URL, RequestsPerMinute: 6000})
}

func TestSearch_ParsesResults(t *testing.T) {
	var gotForm map[string]string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"q":  r.PostForm.Get("q"),
			"df": r.PostForm.Get("df"),
			"kp": r.PostForm.Get("kp"),
		}
		_, _ = w.Write([]byte(resultsPage))
	})

	resp := client.Search(context.Background(), "go release", &engine.SearchParams{TimeLimit: "d"})

	assert.Equal(t, "go release", gotForm["q"])
	assert.Equal(t, "d", gotForm["df"])
	assert.Equal(t, "-1", gotForm["kp"])

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "Go 1.24 released", resp.Results[0].Title)
	assert.Equal(t, "https://go.dev/blog/go1.24", resp.Results[0].Href)
	assert.Equal(t, "The Go team has released Go 1.24.", resp.Results[0].Body)
	assert.Equal(t, "https://example.com/plain", resp.Results[1].Href)
	assert.Empty(t, resp.Results[2].Body)
}

func TestSearch_MaxResults(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsPage))
	})

	resp := client.Search(context.Background(), "anything", &engine.SearchParams{MaxResults: 1})
	assert.Len(t, resp.Results, 1)
}

func TestSearch_EmptyQuery(t *testing.T) {
	called := false
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	resp := client.Search(context.Background(), "   ", nil)
	assert.Empty(t, resp.Results)
	assert.False(t, called)
}

func TestSearch_ServerErrorDegradesToEmpty(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	resp := client.Search(context.Background(), "query", nil)
	assert.Empty(t, resp.Results)
}

func TestSearch_UnreachableEndpoint(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://127.0.0.1:1/nope", RequestsPerMinute: 6000})
	resp := client.Search(context.Background(), "query", nil)
	assert.Empty(t, resp.Results)
}

func TestSearchFormatted(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsPage))
	})

	got := client.SearchFormatted(context.Background(), "go release", &engine.SearchParams{MaxResults: 1})
	assert.Equal(t,
		"Web search results:\n- Go 1.24 released\n  https://go.dev/blog/go1.24\n  The Go team has released Go 1.24.",
		got)
}

func TestSearchFormatted_NoResults(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	})

	assert.Empty(t, client.SearchFormatted(context.Background(), "query", nil))
}

func TestSafeSearchMapping(t *testing.T) {
	for safeSearch, want := range map[string]string{
		"off":      "-2",
		"strict":   "1",
		"moderate": "-1",
	} {
		var gotKP string
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotKP = r.PostForm.Get("kp")
		})

		client.Search(context.Background(), "q", &engine.SearchParams{SafeSearch: safeSearch})
		assert.Equal(t, want, gotKP, "safesearch %q", safeSearch)
	}
}

func TestResolveHref(t *testing.T) {
	assert.Equal(t, "https://go.dev/x",
		resolveHref("//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fx&rut=abc"))
	assert.Equal(t, "https://example.com/plain", resolveHref("https://example.com/plain"))
}
