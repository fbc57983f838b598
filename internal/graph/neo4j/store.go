// Package neo4j implements graph.Store over the Bolt protocol. It works with
// Neo4j 5 and Memgraph.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/JakeFAU/recipe-graph-crawler/internal/graph"
	"github.com/JakeFAU/recipe-graph-crawler/internal/recipe"
)

// Dialect selects index DDL syntax.
type Dialect string

// Supported dialects.
const (
	DialectNeo4j    Dialect = "neo4j"
	DialectMemgraph Dialect = "memgraph"
)

// Config holds connection settings.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
	Dialect  Dialect
}

// queryRunner executes one Cypher statement.
type queryRunner interface {
	run(ctx context.Context, query string, params map[string]any, read bool) (*neo4j.EagerResult, error)
}

type driverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

func (d driverRunner) run(ctx context.Context, query string, params map[string]any, read bool) (*neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if d.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.database))
	}
	if read {
		opts = append(opts, neo4j.ExecuteQueryWithReadersRouting())
	}
	result, err := neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	return result, nil
}

// Store is a graph.Store backed by a Bolt driver.
type Store struct {
	driver  neo4j.DriverWithContext
	runner  queryRunner
	dialect Dialect
	logger  *zap.Logger
}

var _ graph.Store = (*Store)(nil)

// Open connects and verifies connectivity. A failure here is fatal to the
// caller.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, &graph.StoreError{Op: "connect", ID: cfg.URI, Err: err}
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, &graph.StoreError{Op: "connect", ID: cfg.URI, Err: err}
	}
	logger.Info("connected to graph store", zap.String("uri", cfg.URI), zap.String("database", cfg.Database))
	return &Store{
		driver:  driver,
		runner:  driverRunner{driver: driver, database: cfg.Database},
		dialect: cfg.Dialect,
		logger:  logger,
	}, nil
}

func (s *Store) exists(ctx context.Context, op, query string, params map[string]any) (bool, error) {
	res, err := s.runner.run(ctx, query, params, true)
	if err != nil {
		return false, &graph.StoreError{Op: op, Err: err}
	}
	return len(res.Records) > 0, nil
}

// NodeExistsByProperty implements graph.Store.
func (s *Store) NodeExistsByProperty(ctx context.Context, label, property string, value any) (bool, error) {
	if err := graph.ValidateLabel(label); err != nil {
		return false, err
	}
	if err := graph.ValidateProperty(property); err != nil {
		return false, err
	}
	return s.exists(ctx, "exists by property", existsByPropertyQuery(label, property), map[string]any{"value": value})
}

// NodeExistsByIdentifier implements graph.Store.
func (s *Store) NodeExistsByIdentifier(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, "exists by id", existsByIDQuery, map[string]any{"id": id})
}

// UpsertNode implements graph.Store.
func (s *Store) UpsertNode(ctx context.Context, label, id string, properties map[string]any) error {
	if err := graph.ValidateLabel(label); err != nil {
		return err
	}
	params := map[string]any{"id": id, "props": properties}
	if _, err := s.runner.run(ctx, upsertNodeQuery(label), params, false); err != nil {
		return &graph.StoreError{Op: "upsert node", ID: id, Err: err}
	}
	return nil
}

// UpsertRelationship implements graph.Store.
func (s *Store) UpsertRelationship(ctx context.Context, sourceID, targetID, relType string) error {
	if err := graph.ValidateRelationship(relType); err != nil {
		return err
	}
	params := map[string]any{"source": sourceID, "target": targetID}
	if _, err := s.runner.run(ctx, upsertRelationshipQuery(relType), params, false); err != nil {
		return &graph.StoreError{Op: "upsert relationship", ID: sourceID + "->" + targetID, Err: err}
	}
	return nil
}

// EnsureIndexes creates identifier indexes for every label and a url index
// for recipes. Failures are logged and skipped since the index may exist.
func (s *Store) EnsureIndexes(ctx context.Context) {
	for _, q := range indexQueries(s.dialect) {
		if _, err := s.runner.run(ctx, q, nil, false); err != nil {
			s.logger.Warn("create index failed", zap.String("query", q), zap.Error(err))
		}
	}
	s.logger.Debug("indexes ensured", zap.Int("count", len(recipe.Kinds())+1))
}

// Close implements graph.Store.
func (s *Store) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	if err := s.driver.Close(ctx); err != nil {
		return &graph.StoreError{Op: "close", Err: err}
	}
	return nil
}
