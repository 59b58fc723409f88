package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivekit/relic/internal/graph"
)

const testNS = "http://example.org/dca"

func testGraph() *graph.Graph {
	g := graph.New(testNS)
	e1 := graph.EntityIRI(testNS, "uid-1")
	e2 := graph.EntityIRI(testNS, "uid-2")
	g.Add(graph.Triple{Subject: e1, Predicate: graph.PredType, Object: graph.IRI(graph.ClassFile(testNS))})
	g.Add(graph.Triple{Subject: e1, Predicate: graph.PredIdentifier, Object: graph.Literal("uid-1")})
	g.Add(graph.Triple{Subject: e2, Predicate: graph.PredType, Object: graph.IRI(graph.ClassFile(testNS))})
	g.Add(graph.Triple{Subject: e1, Predicate: graph.PredWasDerivedFrom, Object: graph.IRI(e2)})
	return g
}

func TestMemoryBackend_SaveLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Initialize("/tmp/test", false))

	original := testGraph()
	require.NoError(t, backend.SaveGraph(ctx, original))

	loaded, err := backend.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, testNS, loaded.Namespace())
	assert.True(t, original.Equal(loaded))
}

func TestMemoryBackend_LoadEmpty(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	_, err := backend.LoadGraph(context.Background())

	assert.ErrorIs(t, err, ErrNoGraph)
}

func TestMemoryBackend_AddTriples(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMemoryBackend()
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

func TestMemoryBackend_AddTriplesBeforeSave(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	err := backend.AddTriples(context.Background(), testGraph().Triples())

	assert.ErrorIs(t, err, ErrNoGraph)
}

func TestMemoryBackend_Stats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.SaveGraph(ctx, testGraph()))

	stats, err := backend.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, testNS, stats.Namespace)
	assert.Equal(t, 4, stats.Triples)
	assert.Equal(t, 2, stats.Entities)
	assert.Equal(t, 1, stats.Relations)
}

func TestMemoryBackend_SaveGraphReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.SaveGraph(ctx, testGraph()))

	replacement := graph.New(testNS)
	replacement.Add(graph.Triple{Subject: "s", Predicate: "p", Object: graph.Literal("o")})
	require.NoError(t, backend.SaveGraph(ctx, replacement))

	loaded, err := backend.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}
