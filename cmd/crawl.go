package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/recipe-graph-crawler/internal/api"
	"github.com/JakeFAU/recipe-graph-crawler/internal/cache"
	"github.com/JakeFAU/recipe-graph-crawler/internal/cache/local"
	"github.com/JakeFAU/recipe-graph-crawler/internal/cache/sqlite"
	"github.com/JakeFAU/recipe-graph-crawler/internal/config"
	"github.com/JakeFAU/recipe-graph-crawler/internal/crawler"
	collyfetcher "github.com/JakeFAU/recipe-graph-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/recipe-graph-crawler/internal/frontier"
	"github.com/JakeFAU/recipe-graph-crawler/internal/graph"
	"github.com/JakeFAU/recipe-graph-crawler/internal/graph/neo4j"
	idgen "github.com/JakeFAU/recipe-graph-crawler/internal/id/uuid"
	"github.com/JakeFAU/recipe-graph-crawler/internal/identity"
	"github.com/JakeFAU/recipe-graph-crawler/internal/lock"
	"github.com/JakeFAU/recipe-graph-crawler/internal/logging"
	"github.com/JakeFAU/recipe-graph-crawler/internal/metrics"
	"github.com/JakeFAU/recipe-graph-crawler/internal/normalize"
	"github.com/JakeFAU/recipe-graph-crawler/internal/progress"
	"github.com/JakeFAU/recipe-graph-crawler/internal/progress/sinks"
	"github.com/JakeFAU/recipe-graph-crawler/internal/upsert"
)

// crawlEnv holds the process-level collaborators a crawl is wired from.
// Tests replace them to run without a graph database.
type crawlEnv struct {
	openGraph  func(ctx context.Context, cfg config.GraphConfig, logger *zap.Logger) (graph.Store, error)
	registerer prometheus.Registerer
	out        io.Writer
}

func defaultEnv() crawlEnv {
	return crawlEnv{
		openGraph:  openNeo4j,
		registerer: prometheus.DefaultRegisterer,
		out:        os.Stdout,
	}
}

func openNeo4j(ctx context.Context, cfg config.GraphConfig, logger *zap.Logger) (graph.Store, error) {
	store, err := neo4j.Open(ctx, neo4j.Config{
		URI:      cfg.URI,
		Username: cfg.Username,
		Password: cfg.Password,
		Database: cfg.Database,
		Dialect:  neo4j.Dialect(cfg.Dialect),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}
	if cfg.EnsureIndexes {
		store.EnsureIndexes(ctx)
	}
	return store, nil
}

// newCrawlCmd creates the 'crawl' subcommand.
func newCrawlCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "crawl <url-file>",
		Short: "Crawls every URL in a file into the graph",
		Long: `Reads one URL per line (blank lines and lines starting with # are
ignored) and processes them one at a time. Pages whose recipe is already
in the graph are skipped without fetching. Per-page failures are logged
and the crawl moves on; only startup failures end the process with a
non-zero exit code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			env := defaultEnv()
			env.out = cmd.OutOrStdout()
			_, err := runCrawl(ctx, env, *cfgFile, args[0])
			return err
		},
	}
}

// runCrawl wires the pipeline from configuration and runs it over the URL
// list at listPath.
func runCrawl(ctx context.Context, env crawlEnv, cfgFile, listPath string) (frontier.Summary, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return frontier.Summary{}, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return frontier.Summary{}, fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	metrics.SetBuildInfo(version)

	urls, err := frontier.ReadURLFile(listPath)
	if err != nil {
		return frontier.Summary{}, err
	}

	if cfg.Cache.Backend != config.CacheNone {
		l, err := lock.Acquire(cfg.Cache.Dir)
		if err != nil {
			if errors.Is(err, lock.ErrHeld) {
				return frontier.Summary{}, fmt.Errorf("another crawl is using %s: %w", cfg.Cache.Dir, err)
			}
			return frontier.Summary{}, fmt.Errorf("acquire crawl lock: %w", err)
		}
		defer func() {
			if err := l.Release(); err != nil {
				logger.Warn("release crawl lock failed", zap.Error(err))
			}
		}()
	}

	fetcher, closeCache, err := buildFetcher(ctx, cfg, logger)
	if err != nil {
		return frontier.Summary{}, err
	}
	defer closeCache()

	store, err := env.openGraph(ctx, cfg.Graph, logger.Named("graph"))
	if err != nil {
		return frontier.Summary{}, err
	}
	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("close graph store failed", zap.Error(err))
		}
	}()

	promSink, err := sinks.NewPrometheusSink(env.registerer)
	if err != nil {
		return frontier.Summary{}, fmt.Errorf("register progress metrics: %w", err)
	}
	status := sinks.NewStatusSink()
	progressLogger := logger.Named("progress")
	fanout := progress.NewFanout(progressLogger, sinks.NewLogSink(progressLogger), promSink, status)
	defer func() {
		if err := fanout.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("close progress sinks failed", zap.Error(err))
		}
	}()

	stopServer := startServer(ctx, cfg.Metrics.Addr, status, logger)
	defer stopServer()

	executor := upsert.New(store,
		upsert.WithRetryPolicy(upsert.NewExponentialRetryPolicy(cfg.Store.MaxAttempts)),
		upsert.WithLogger(logger.Named("upsert")),
	)
	f, err := frontier.New(frontier.Deps{
		Store:      store,
		Fetcher:    fetcher,
		Normalizer: normalize.New(identity.NewResolver(idgen.New())),
		Applier:    executor,
		Emitter:    fanout,
		Logger:     logger.Named("frontier"),
	})
	if err != nil {
		return frontier.Summary{}, fmt.Errorf("build frontier: %w", err)
	}

	summary := f.Run(ctx, urls)
	printSummary(env.out, summary)
	return summary, nil
}

// buildFetcher returns the page fetcher, wrapped in the configured response
// cache, and a function that closes the cache.
func buildFetcher(ctx context.Context, cfg config.Config, logger *zap.Logger) (crawler.Fetcher, func(), error) {
	base := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.HTTP.UserAgent,
		RespectRobots: cfg.HTTP.RespectRobots,
		Timeout:       cfg.FetchTimeout(),
	})

	var store cache.Store
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return base, func() {}, nil
	case config.CacheLocal:
		s, err := local.New(local.Config{BaseDir: cfg.Cache.Dir})
		if err != nil {
			return nil, nil, fmt.Errorf("open local cache: %w", err)
		}
		store = s
	default:
		s, err := sqlite.Open(ctx, cfg.Cache.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		store = s
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close response cache failed", zap.Error(err))
		}
	}
	logger.Info("response cache enabled",
		zap.String("backend", cfg.Cache.Backend),
		zap.String("dir", cfg.Cache.Dir),
	)
	return cache.NewFetcher(base, store, logger.Named("cache")), closeFn, nil
}

// startServer runs the status server in the background when addr is set.
// The returned function stops it and waits for shutdown.
func startServer(ctx context.Context, addr string, status api.StatusSource, logger *zap.Logger) func() {
	if addr == "" {
		return func() {}
	}
	srvCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := api.NewServer(status, logger.Named("api")).Serve(srvCtx, addr); err != nil {
			logger.Error("status server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func printSummary(w io.Writer, s frontier.Summary) {
	_, _ = fmt.Fprintf(w, "processed=%d ingested=%d skipped=%d fetch_failed=%d parse_failed=%d incomplete=%d",
		s.Processed,
		s.Count(frontier.OutcomeIngested),
		s.Count(frontier.OutcomeSkipped),
		s.Count(frontier.OutcomeFetchFailed),
		s.Count(frontier.OutcomeParseFailed),
		s.Count(frontier.OutcomeIncomplete),
	)
	if s.Canceled {
		_, _ = fmt.Fprint(w, " canceled=true")
	}
	_, _ = fmt.Fprintln(w)
}
