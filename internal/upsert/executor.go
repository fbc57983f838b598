// Package upsert writes a normalized recipe page into the graph store.
package upsert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/recipe-graph-crawler/internal/graph"
	"github.com/JakeFAU/recipe-graph-crawler/internal/normalize"
	"github.com/JakeFAU/recipe-graph-crawler/internal/recipe"
)

// ErrNoRecipe is returned when a result carries no Recipe entity.
var ErrNoRecipe = errors.New("result has no recipe")

// Report counts what Apply did for one page.
type Report struct {
	// Created and Updated split node writes by prior existence.
	Created int
	Updated int
	// Repeated counts nodes already written earlier for the same page.
	Repeated      int
	Relationships int
}

// Nodes returns the number of node writes.
func (r Report) Nodes() int {
	return r.Created + r.Updated
}

// Executor applies results to a graph.Store.
type Executor struct {
	store  graph.Store
	retry  RetryPolicy
	logger *zap.Logger
	sleep  func(context.Context, time.Duration) error
}

// Option customizes an Executor.
type Option func(*Executor)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(e *Executor) {
		if p != nil {
			e.retry = p
		}
	}
}

// WithLogger sets the executor logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New builds an Executor over store.
func New(store graph.Store, opts ...Option) *Executor {
	e := &Executor{
		store:  store,
		retry:  NewExponentialRetryPolicy(DefaultMaxAttempts),
		logger: zap.NewNop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply writes sub-entity nodes in discovery order, then the Recipe node,
// then every relationship. Node writes merge on the identifier so applying
// the same result twice leaves one node per identifier. On a persistent
// store failure Apply stops and returns the report so far with a
// *graph.StoreError.
func (e *Executor) Apply(ctx context.Context, res normalize.Result) (Report, error) {
	var report Report
	if res.Recipe == nil {
		return report, ErrNoRecipe
	}
	seen := make(map[string]struct{}, len(res.Entities)+1)

	for _, t := range res.Entities {
		if err := e.writeNode(ctx, t.Entity, seen, &report); err != nil {
			return report, err
		}
	}
	if err := e.writeNode(ctx, res.Recipe, seen, &report); err != nil {
		return report, err
	}

	for _, edge := range relationships(res) {
		err := e.do(ctx, "upsert relationship", edge.Source, func(ctx context.Context) error {
			return e.store.UpsertRelationship(ctx, edge.Source, edge.Target, string(edge.Type))
		})
		if err != nil {
			return report, err
		}
		report.Relationships++
	}

	e.logger.Debug("page applied",
		zap.String("recipe", res.Recipe.ID),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("relationships", report.Relationships),
	)
	return report, nil
}

func (e *Executor) writeNode(ctx context.Context, ent recipe.Entity, seen map[string]struct{}, report *Report) error {
	id := ent.Identifier()
	if _, ok := seen[id]; ok {
		report.Repeated++
		return nil
	}

	var exists bool
	err := e.do(ctx, "exists by id", id, func(ctx context.Context) error {
		var err error
		exists, err = e.store.NodeExistsByIdentifier(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	err = e.do(ctx, "upsert node", id, func(ctx context.Context) error {
		return e.store.UpsertNode(ctx, ent.Kind().Label(), id, ent.Properties())
	})
	if err != nil {
		return err
	}

	seen[id] = struct{}{}
	if exists {
		report.Updated++
	} else {
		report.Created++
	}
	return nil
}

// relationships lists Recipe edges followed by edges owned by sub-entities.
func relationships(res normalize.Result) []recipe.Edge {
	edges := res.Recipe.Relationships()
	for _, t := range res.Entities {
		if l, ok := t.Entity.(recipe.Linker); ok {
			edges = append(edges, l.Relationships()...)
		}
	}
	return edges
}

func (e *Executor) do(ctx context.Context, op, id string, fn func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !e.retry.ShouldRetry(err, attempt) {
			return asStoreError(op, id, err, attempt)
		}
		wait := e.retry.Backoff(attempt)
		e.logger.Warn("store call failed, retrying",
			zap.String("op", op),
			zap.String("id", id),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		if serr := e.sleep(ctx, wait); serr != nil {
			return asStoreError(op, id, serr, attempt)
		}
	}
}

func asStoreError(op, id string, err error, attempts int) error {
	var se *graph.StoreError
	if errors.As(err, &se) {
		return se
	}
	return &graph.StoreError{Op: op, ID: id, Err: fmt.Errorf("after %d attempt(s): %w", attempts, err)}
}
