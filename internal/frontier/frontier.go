// Package frontier drives the per-URL pipeline: skip check, fetch, parse,
// normalize and upsert, one URL at a time.
package frontier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/JakeFAU/recipe-graph-crawler/internal/crawler"
	"github.com/JakeFAU/recipe-graph-crawler/internal/graph"
	"github.com/JakeFAU/recipe-graph-crawler/internal/metrics"
	"github.com/JakeFAU/recipe-graph-crawler/internal/normalize"
	"github.com/JakeFAU/recipe-graph-crawler/internal/progress"
	"github.com/JakeFAU/recipe-graph-crawler/internal/recipe"
	"github.com/JakeFAU/recipe-graph-crawler/internal/structdata"
	"github.com/JakeFAU/recipe-graph-crawler/internal/upsert"
)

// urlProperty is the Recipe property that marks a page as ingested.
const urlProperty = "url"

// Applier writes a normalized page to the graph.
type Applier interface {
	Apply(ctx context.Context, res normalize.Result) (upsert.Report, error)
}

// Normalizer maps a parsed document to entities.
type Normalizer interface {
	Normalize(doc structdata.Document) (normalize.Result, error)
}

// Deps are the collaborators a Frontier drives.
type Deps struct {
	Store      graph.Store
	Fetcher    crawler.Fetcher
	Normalizer Normalizer
	Applier    Applier
	Emitter    progress.Emitter
	Logger     *zap.Logger
}

// Frontier processes URLs sequentially.
type Frontier struct {
	store      graph.Store
	fetcher    crawler.Fetcher
	normalizer Normalizer
	applier    Applier
	emitter    progress.Emitter
	logger     *zap.Logger
	runID      uuid.UUID
	now        func() time.Time
}

// New validates deps and builds a Frontier.
func New(deps Deps) (*Frontier, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("frontier requires a graph store")
	case deps.Fetcher == nil:
		return nil, errors.New("frontier requires a fetcher")
	case deps.Normalizer == nil:
		return nil, errors.New("frontier requires a normalizer")
	case deps.Applier == nil:
		return nil, errors.New("frontier requires an applier")
	}
	f := &Frontier{
		store:      deps.Store,
		fetcher:    deps.Fetcher,
		normalizer: deps.Normalizer,
		applier:    deps.Applier,
		emitter:    deps.Emitter,
		logger:     deps.Logger,
		runID:      uuid.New(),
		now:        time.Now,
	}
	if f.emitter == nil {
		f.emitter = progress.Discard{}
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f, nil
}

// page accumulates what one Process call observed, for logging and events.
type page struct {
	url       string
	status    int
	bytes     int
	fromCache bool
	report    upsert.Report
}

// Process runs the pipeline for one URL. The returned error explains any
// outcome other than skipped or ingested; it never needs to stop the crawl.
func (f *Frontier) Process(ctx context.Context, url string) (Outcome, error) {
	start := f.now()
	p := &page{url: url}
	outcome, err := f.process(ctx, p)

	fields := []zap.Field{
		zap.String("url", url),
		zap.String("outcome", outcome.String()),
		zap.Bool("from_cache", p.fromCache),
		zap.Int("nodes", p.report.Nodes()),
		zap.Int("relationships", p.report.Relationships),
	}
	switch outcome {
	case OutcomeSkipped:
		f.logger.Info("recipe already ingested", fields...)
	case OutcomeIngested:
		f.logger.Info("recipe ingested", fields...)
	default:
		f.logger.Warn("recipe not ingested", append(fields, zap.Error(err))...)
	}

	evt := progress.Event{
		RunID:         f.runID,
		TS:            f.now().UTC(),
		Stage:         progress.StagePageDone,
		Site:          metrics.SanitizeSite(url),
		URL:           url,
		Outcome:       outcome.String(),
		StatusClass:   progress.ClassifyStatus(p.status),
		Bytes:         int64(p.bytes),
		FromCache:     p.fromCache,
		Nodes:         p.report.Nodes(),
		Relationships: p.report.Relationships,
		Dur:           f.now().Sub(start),
	}
	if err != nil {
		evt.Note = err.Error()
	}
	f.emitter.Emit(ctx, evt)
	return outcome, err
}

func (f *Frontier) process(ctx context.Context, p *page) (Outcome, error) {
	ingested, err := f.ingested(ctx, p.url)
	if err != nil {
		return OutcomeIncomplete, err
	}
	if ingested {
		return OutcomeSkipped, nil
	}

	resp, err := f.fetcher.Fetch(ctx, crawler.FetchRequest{URL: p.url})
	p.status, p.bytes, p.fromCache = resp.StatusCode, len(resp.Body), resp.FromCache
	if err != nil {
		var fe *crawler.FetchError
		if !errors.As(err, &fe) {
			err = &crawler.FetchError{URL: p.url, Err: err}
		}
		return OutcomeFetchFailed, err
	}
	if !resp.OK() {
		return OutcomeFetchFailed, crawler.StatusError(resp)
	}

	doc, err := structdata.Parse(resp.Body)
	if err != nil {
		return OutcomeParseFailed, err
	}

	// A page reached through an alias may name a canonical URL that is
	// already ingested.
	if canonical := canonicalURL(doc); canonical != "" && canonical != p.url {
		ingested, err := f.ingested(ctx, canonical)
		if err != nil {
			return OutcomeIncomplete, err
		}
		if ingested {
			return OutcomeSkipped, nil
		}
	}

	res, err := f.normalizer.Normalize(doc)
	if err != nil {
		return OutcomeParseFailed, fmt.Errorf("normalize %s: %w", p.url, err)
	}
	if res.Recipe.URL == "" {
		res.Recipe.URL = p.url
	}
	for _, field := range res.Invalid() {
		f.logger.Debug("field dropped", zap.String("url", p.url), zap.String("field", field.Key), zap.Error(field.Err))
	}

	p.report, err = f.applier.Apply(ctx, res)
	if err != nil {
		return OutcomeIncomplete, err
	}
	return OutcomeIngested, nil
}

func (f *Frontier) ingested(ctx context.Context, url string) (bool, error) {
	ok, err := f.store.NodeExistsByProperty(ctx, recipe.KindRecipe.Label(), urlProperty, url)
	if err != nil {
		var se *graph.StoreError
		if !errors.As(err, &se) {
			err = &graph.StoreError{Op: "exists by property", ID: url, Err: err}
		}
		return false, err
	}
	return ok, nil
}

func canonicalURL(doc structdata.Document) string {
	v, ok := doc.Lookup(urlProperty)
	if !ok || v.Type != gjson.String {
		return ""
	}
	return v.String()
}

// Run processes urls in order and never stops on a per-URL failure. It
// returns early only when ctx ends, reporting the URLs handled so far.
func (f *Frontier) Run(ctx context.Context, urls []string) Summary {
	start := f.now()
	f.emitter.Emit(ctx, progress.Event{RunID: f.runID, TS: start.UTC(), Stage: progress.StageRunStart})
	f.logger.Info("crawl started", zap.String("run_id", f.runID.String()), zap.Int("urls", len(urls)))

	var summary Summary
	for i, url := range urls {
		if ctx.Err() != nil {
			summary.Canceled = true
			break
		}
		outcome, _ := f.Process(ctx, url)
		summary.add(outcome)
		f.logger.Debug("progress", zap.Int("done", i+1), zap.Int("total", len(urls)))
	}

	f.emitter.Emit(context.WithoutCancel(ctx), progress.Event{
		RunID: f.runID,
		TS:    f.now().UTC(),
		Stage: progress.StageRunDone,
		Dur:   f.now().Sub(start),
	})
	f.logger.Info("crawl finished",
		zap.Int("processed", summary.Processed),
		zap.Int("ingested", summary.Count(OutcomeIngested)),
		zap.Int("skipped", summary.Count(OutcomeSkipped)),
		zap.Int("failed", summary.Failed()),
		zap.Bool("canceled", summary.Canceled),
	)
	return summary
}
