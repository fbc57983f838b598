package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("", missingEnv(t))
	require.NoError(t, err)
	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
	assert.Equal(t, "neo4j", cfg.Graph.Dialect)
	assert.True(t, cfg.Graph.EnsureIndexes)
	assert.Equal(t, CacheSQLite, cfg.Cache.Backend)
	assert.Equal(t, 3, cfg.Store.MaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout())
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := `
graph:
  uri: bolt://graph:7687
  username: neo4j
  password: hunter2
  database: recipes
  dialect: memgraph
cache:
  backend: local
  dir: /tmp/cache
http:
  timeout_seconds: 45
  user_agent: pie-bot
  respect_robots: true
store:
  max_attempts: 5
logging:
  development: true
  level: debug
metrics:
  addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path, missingEnv(t))
	require.NoError(t, err)
	assert.Equal(t, GraphConfig{
		URI:           "bolt://graph:7687",
		Username:      "neo4j",
		Password:      "hunter2",
		Database:      "recipes",
		Dialect:       "memgraph",
		EnsureIndexes: true,
	}, cfg.Graph)
	assert.Equal(t, CacheConfig{Backend: CacheLocal, Dir: "/tmp/cache"}, cfg.Cache)
	assert.Equal(t, 45*time.Second, cfg.FetchTimeout())
	assert.True(t, cfg.HTTP.RespectRobots)
	assert.Equal(t, 5, cfg.Store.MaxAttempts)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RECIPES_GRAPH_PASSWORD", "from-env")
	t.Setenv("RECIPES_STORE_MAX_ATTEMPTS", "7")

	cfg, err := Load("", missingEnv(t))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Graph.Password)
	assert.Equal(t, 7, cfg.Store.MaxAttempts)
}

func TestLoadDotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RECIPES_GRAPH_USERNAME=dotenv-user\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("RECIPES_GRAPH_USERNAME") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-user", cfg.Graph.Username)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), missingEnv(t))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Graph: GraphConfig{URI: "bolt://x", Dialect: "neo4j"},
			Cache: CacheConfig{Backend: CacheSQLite, Dir: "c"},
			HTTP:  HTTPConfig{TimeoutSeconds: 1},
			Store: StoreConfig{MaxAttempts: 1},
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "no cache", mutate: func(c *Config) { c.Cache = CacheConfig{Backend: CacheNone} }, ok: true},
		{name: "missing uri", mutate: func(c *Config) { c.Graph.URI = " " }},
		{name: "bad dialect", mutate: func(c *Config) { c.Graph.Dialect = "oracle" }},
		{name: "bad backend", mutate: func(c *Config) { c.Cache.Backend = "redis" }},
		{name: "cache without dir", mutate: func(c *Config) { c.Cache.Dir = "" }},
		{name: "zero timeout", mutate: func(c *Config) { c.HTTP.TimeoutSeconds = 0 }},
		{name: "zero attempts", mutate: func(c *Config) { c.Store.MaxAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}
