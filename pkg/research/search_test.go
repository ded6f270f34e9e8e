package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddgPage = `<html><body>
<div class="result results_links web-result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&amp;rut=abc">The Go <b>Programming</b> Language</a>
  </h2>
  <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F">Go is an open source   programming language.</a>
</div>
<div class="result results_links web-result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="https://en.wikipedia.org/wiki/Go_(programming_language)">Go (programming language)</a>
  </h2>
  <div class="result__snippet">Designed at Google.</div>
</div>
</body></html>`

func TestSearch_ParsesResults(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		query = r.Form.Get("q")
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	s := NewSearcher()
	s.Endpoint = srv.URL

	out, err := s.Search(context.Background(), "golang")
	require.NoError(t, err)
	assert.Equal(t, "golang", query)
	assert.Equal(t,
		"The Go Programming Language: Go is an open source programming language. (https://go.dev/)\n"+
			"Go (programming language): Designed at Google. (https://en.wikipedia.org/wiki/Go_(programming_language))",
		out)
}

func TestSearch_MaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	s := NewSearcher()
	s.Endpoint = srv.URL
	s.MaxResults = 1

	results, err := s.Results(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://go.dev/", results[0].URL)
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="no-results">nothing</div></body></html>`))
	}))
	defer srv.Close()

	s := NewSearcher()
	s.Endpoint = srv.URL

	out, err := s.Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Equal(t, NoSearchResults, out)
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewSearcher()
	s.Endpoint = srv.URL

	_, err := s.Search(context.Background(), "golang")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
