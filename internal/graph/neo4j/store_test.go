package neo4j

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/recipe-graph-crawler/internal/graph"
)

type call struct {
	query  string
	params map[string]any
	read   bool
}

type fakeRunner struct {
	calls   []call
	records int
	err     error
}

func (f *fakeRunner) run(_ context.Context, query string, params map[string]any, read bool) (*neo4j.EagerResult, error) {
	f.calls = append(f.calls, call{query: query, params: params, read: read})
	if f.err != nil {
		return nil, f.err
	}
	res := &neo4j.EagerResult{}
	for i := 0; i < f.records; i++ {
		res.Records = append(res.Records, &neo4j.Record{Keys: []string{"id"}, Values: []any{"x"}})
	}
	return res, nil
}

func newTestStore(r *fakeRunner) *Store {
	return &Store{runner: r, dialect: DialectNeo4j, logger: zap.NewNop()}
}

func TestUpsertNodeMergesByIdentifier(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{}
	s := newTestStore(r)
	props := map[string]any{"UUID": "AUTHOR_Jane", "name": "Jane"}
	require.NoError(t, s.UpsertNode(context.Background(), "Author", "AUTHOR_Jane", props))

	require.Len(t, r.calls, 1)
	assert.Equal(t, "MERGE (n:Author {UUID: $id}) SET n += $props", r.calls[0].query)
	assert.Equal(t, "AUTHOR_Jane", r.calls[0].params["id"])
	assert.Equal(t, props, r.calls[0].params["props"])
	assert.False(t, r.calls[0].read)
}

func TestUpsertRelationshipMatchesBothEndpoints(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{}
	s := newTestStore(r)
	require.NoError(t, s.UpsertRelationship(context.Background(), "r1", "a1", "AUTHORED_BY"))

	require.Len(t, r.calls, 1)
	assert.Equal(t,
		"MATCH (source {UUID: $source}) MATCH (target {UUID: $target}) MERGE (source)-[:AUTHORED_BY]->(target)",
		r.calls[0].query,
	)
	assert.Equal(t, map[string]any{"source": "r1", "target": "a1"}, r.calls[0].params)
}

func TestExistsQueries(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{records: 1}
	s := newTestStore(r)
	ok, err := s.NodeExistsByProperty(context.Background(), "Recipe", "url", "https://x/pie")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "MATCH (n:Recipe) WHERE n.url = $value RETURN n.UUID AS id LIMIT 1", r.calls[0].query)
	assert.True(t, r.calls[0].read)

	r.records = 0
	ok, err = s.NodeExistsByIdentifier(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "MATCH (n) WHERE n.UUID = $id RETURN n.UUID AS id LIMIT 1", r.calls[1].query)
}

func TestInvalidNamesNeverReachTheDriver(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{}
	s := newTestStore(r)
	ctx := context.Background()
	assert.ErrorIs(t, s.UpsertNode(ctx, "Recipe) DETACH DELETE (n", "x", nil), graph.ErrInvalidName)
	assert.ErrorIs(t, s.UpsertRelationship(ctx, "a", "b", "X]->() DELETE"), graph.ErrInvalidName)
	_, err := s.NodeExistsByProperty(ctx, "Recipe", "url = 1 OR 1", "x")
	assert.ErrorIs(t, err, graph.ErrInvalidName)
	assert.Empty(t, r.calls)
}

func TestDriverFailuresBecomeStoreErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	s := newTestStore(&fakeRunner{err: boom})
	err := s.UpsertNode(context.Background(), "Recipe", "r1", nil)

	var storeErr *graph.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "upsert node", storeErr.Op)
	assert.Equal(t, "r1", storeErr.ID)
	assert.ErrorIs(t, err, boom)

	_, err = s.NodeExistsByIdentifier(context.Background(), "r1")
	assert.True(t, graph.IsStoreError(err))
}

func TestEnsureIndexesContinuesOnFailure(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{err: errors.New("index exists")}
	s := newTestStore(r)
	s.EnsureIndexes(context.Background())
	require.Len(t, r.calls, 9)
	assert.Equal(t, "CREATE INDEX Recipe_UUID IF NOT EXISTS FOR (n:Recipe) ON (n.UUID)", r.calls[0].query)
	assert.Equal(t, "CREATE INDEX Recipe_url IF NOT EXISTS FOR (n:Recipe) ON (n.url)", r.calls[8].query)
}

func TestMemgraphIndexDialect(t *testing.T) {
	t.Parallel()

	queries := indexQueries(DialectMemgraph)
	assert.Equal(t, "CREATE INDEX ON :Author(UUID);", queries[1])
}

func TestCloseWithoutDriver(t *testing.T) {
	t.Parallel()

	assert.NoError(t, newTestStore(&fakeRunner{}).Close(context.Background()))
}
