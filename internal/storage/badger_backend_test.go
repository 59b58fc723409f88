package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivekit/relic/internal/graph"
)

func newBadger(t *testing.T) *BadgerBackend {
	t.Helper()
	backend := NewBadgerBackend()
	require.NoError(t, backend.Initialize(t.TempDir(), false))
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestBadgerBackend_SaveLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newBadger(t)

	original := testGraph()
	require.NoError(t, backend.SaveGraph(ctx, original))

	loaded, err := backend.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, testNS, loaded.Namespace())
	assert.True(t, original.Equal(loaded))
}

func TestBadgerBackend_LoadEmpty(t *testing.T) {
	t.Parallel()

	backend := newBadger(t)
	_, err := backend.LoadGraph(context.Background())

	assert.ErrorIs(t, err, ErrNoGraph)
}

func TestBadgerBackend_AddTriples(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newBadger(t)
	require.NoError(t, backend.SaveGraph(ctx, testGraph()))

	extra := graph.Triple{
		Subject:   graph.EntityIRI(testNS, "uid-2"),
		Predicate: graph.PredIdentifier,
		Object:    graph.Literal("uid-2"),
	}
	require.NoError(t, backend.AddTriples(ctx, []graph.Triple{extra}))

	loaded, err := backend.LoadGraph(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.Has(extra))
	assert.Equal(t, 5, loaded.Len())
}

func TestBadgerBackend_AddTriplesBeforeSave(t *testing.T) {
	t.Parallel()

	backend := newBadger(t)
	err := backend.AddTriples(context.Background(), testGraph().Triples())

	assert.ErrorIs(t, err, ErrNoGraph)
}

func TestBadgerBackend_SaveGraphReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newBadger(t)
	require.NoError(t, backend.SaveGraph(ctx, testGraph()))

	replacement := graph.New(testNS)
	replacement.Add(graph.Triple{Subject: "s", Predicate: "p", Object: graph.Literal("o")})
	require.NoError(t, backend.SaveGraph(ctx, replacement))

	loaded, err := backend.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestBadgerBackend_Stats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newBadger(t)
	require.NoError(t, backend.SaveGraph(ctx, testGraph()))

	stats, err := backend.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Triples)
	assert.Equal(t, 2, stats.Entities)
	assert.Equal(t, 1, stats.Relations)
}

func TestBadgerBackend_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	backend := NewBadgerBackend()
	require.NoError(t, backend.Initialize(dir, false))
	require.NoError(t, backend.SaveGraph(ctx, testGraph()))
	require.NoError(t, backend.Close())

	reopened := NewBadgerBackend()
	require.NoError(t, reopened.Initialize(dir, true))
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadGraph(ctx)
	require.NoError(t, err)
	assert.True(t, testGraph().Equal(loaded))
}

func TestBadgerBackend_Close(t *testing.T) {
	t.Parallel()

	backend := NewBadgerBackend()
	require.NoError(t, backend.Initialize(t.TempDir(), false))

	assert.NoError(t, backend.Close())
	assert.NoError(t, backend.Close(), "closing twice is safe")
}
