// Package config loads and validates crawler configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JakeFAU/recipe-graph-crawler/internal/logging"
)

// EnvPrefix is prepended to every environment override, e.g.
// RECIPES_GRAPH_PASSWORD for graph.password.
const EnvPrefix = "RECIPES"

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheLocal  = "local"
	CacheNone   = "none"
)

// Config captures all process configuration knobs loaded via Viper.
type Config struct {
	Graph   GraphConfig    `mapstructure:"graph"`
	Cache   CacheConfig    `mapstructure:"cache"`
	HTTP    HTTPConfig     `mapstructure:"http"`
	Store   StoreConfig    `mapstructure:"store"`
	Logging logging.Config `mapstructure:"logging"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
}

// GraphConfig locates the Bolt endpoint.
type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	// Dialect is "neo4j" or "memgraph" and selects index DDL syntax.
	Dialect       string `mapstructure:"dialect"`
	EnsureIndexes bool   `mapstructure:"ensure_indexes"`
}

// CacheConfig selects the response cache.
type CacheConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

// HTTPConfig configures the page fetcher.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
}

// StoreConfig controls graph write retries.
type StoreConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
}

// MetricsConfig enables the metrics and health server when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from an optional file, a .env file and the
// environment. envFiles default to ".env"; missing ones are ignored and
// variables already set in the environment win.
func Load(path string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("graph.uri", "bolt://localhost:7687")
	v.SetDefault("graph.username", "")
	v.SetDefault("graph.password", "")
	v.SetDefault("graph.database", "")
	v.SetDefault("graph.dialect", "neo4j")
	v.SetDefault("graph.ensure_indexes", true)
	v.SetDefault("cache.backend", CacheSQLite)
	v.SetDefault("cache.dir", ".recipecache")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "recipe-graph-crawler/0.1")
	v.SetDefault("http.respect_robots", false)
	v.SetDefault("store.max_attempts", 3)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "")
	v.SetDefault("metrics.addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Graph.URI) == "" {
		return fmt.Errorf("graph.uri is required")
	}
	switch c.Graph.Dialect {
	case "neo4j", "memgraph":
	default:
		return fmt.Errorf("graph.dialect must be neo4j or memgraph, got %q", c.Graph.Dialect)
	}
	switch c.Cache.Backend {
	case CacheSQLite, CacheLocal:
		if strings.TrimSpace(c.Cache.Dir) == "" {
			return fmt.Errorf("cache.dir is required for the %s cache", c.Cache.Backend)
		}
	case CacheNone:
	default:
		return fmt.Errorf("cache.backend must be sqlite, local or none, got %q", c.Cache.Backend)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Store.MaxAttempts <= 0 {
		return fmt.Errorf("store.max_attempts must be > 0")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
