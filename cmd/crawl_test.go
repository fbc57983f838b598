package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/recipe-graph-crawler/internal/config"
	"github.com/JakeFAU/recipe-graph-crawler/internal/frontier"
	"github.com/JakeFAU/recipe-graph-crawler/internal/graph"
	"github.com/JakeFAU/recipe-graph-crawler/internal/graph/memory"
)

const piePage = `<html><head><script type="application/ld+json">
{"@context": "https://schema.org", "@type": "Recipe", "name": "Pie",
 "author": {"@type": "Person", "name": "Jane"},
 "recipeIngredient": ["flour", "butter"]}
</script></head><body></body></html>`

// keepOpen lets one memory store outlive several runs.
type keepOpen struct{ *memory.Store }

func (keepOpen) Close(context.Context) error { return nil }

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testEnv(store graph.Store, out *bytes.Buffer) crawlEnv {
	return crawlEnv{
		openGraph: func(context.Context, config.GraphConfig, *zap.Logger) (graph.Store, error) {
			return store, nil
		},
		registerer: prometheus.NewRegistry(),
		out:        out,
	}
}

func TestRunCrawlIngestsThenSkips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(piePage))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", fmt.Sprintf(
		"cache:\n  backend: sqlite\n  dir: %s\nlogging:\n  level: error\n",
		filepath.Join(dir, "cache"),
	))
	list := writeFile(t, dir, "urls.txt", "# recipes\n"+srv.URL+"/pie\n\n")

	mem := memory.New()
	var out bytes.Buffer
	summary, err := runCrawl(context.Background(), testEnv(keepOpen{mem}, &out), cfgPath, list)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(frontier.OutcomeIngested))
	assert.Contains(t, out.String(), "processed=1 ingested=1")
	assert.Len(t, mem.Nodes("Recipe"), 1)
	writes := mem.Writes()

	out.Reset()
	summary, err = runCrawl(context.Background(), testEnv(keepOpen{mem}, &out), cfgPath, list)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(frontier.OutcomeSkipped))
	assert.Equal(t, writes, mem.Writes())
	assert.FileExists(t, filepath.Join(dir, "cache", "http_cache.sqlite"))
}

func TestRunCrawlStartupFailures(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "cache:\n  backend: none\nlogging:\n  level: error\n")
	list := writeFile(t, dir, "urls.txt", "https://example.invalid/pie\n")

	t.Run("graph unavailable", func(t *testing.T) {
		boom := errors.New("connection refused")
		env := testEnv(nil, &bytes.Buffer{})
		env.openGraph = func(context.Context, config.GraphConfig, *zap.Logger) (graph.Store, error) {
			return nil, &graph.StoreError{Op: "connect", Err: boom}
		}
		_, err := runCrawl(context.Background(), env, cfgPath, list)
		require.Error(t, err)
		assert.True(t, graph.IsStoreError(err))
	})

	t.Run("missing url file", func(t *testing.T) {
		_, err := runCrawl(context.Background(), testEnv(memory.New(), &bytes.Buffer{}), cfgPath, filepath.Join(dir, "nope.txt"))
		require.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yaml", "cache:\n  backend: redis\n")
		_, err := runCrawl(context.Background(), testEnv(memory.New(), &bytes.Buffer{}), bad, list)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache.backend")
	})
}

func TestCrawlCommandRequiresFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"crawl"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}
