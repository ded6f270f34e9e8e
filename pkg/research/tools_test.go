package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolset_Registry(t *testing.T) {
	reg, err := registry.New(NewToolset(t.TempDir()).Tools()...)
	require.NoError(t, err)
	assert.Equal(t, []string{ToolSearch, ToolWikipedia, ToolSave}, reg.Names())
}

func TestToolset_SkipsNilBackends(t *testing.T) {
	ts := Toolset{Saver: NewSaver(t.TempDir())}
	reg, err := registry.New(ts.Tools()...)
	require.NoError(t, err)
	assert.Equal(t, []string{ToolSave}, reg.Names())
}

func TestToolset_SearchFailureIsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	searcher := NewSearcher()
	searcher.Endpoint = srv.URL
	reg, err := registry.New(Toolset{Searcher: searcher}.Tools()...)
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), domain.ToolCall{Name: ToolSearch, Args: map[string]any{"query": "go"}})
	require.NoError(t, err)
	assert.Contains(t, out, "Search failed")
}

func TestToolset_Save(t *testing.T) {
	dir := t.TempDir()
	reg, err := registry.New(Toolset{Saver: NewSaver(dir)}.Tools()...)
	require.NoError(t, err)

	out, err := reg.Execute(context.Background(), domain.ToolCall{Name: ToolSave, Args: map[string]any{"data": "notes", "filename": "notes.txt"}})
	require.NoError(t, err)
	assert.Contains(t, out, "notes.txt")
}
