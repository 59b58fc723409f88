package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNS = "http://example.org/dca"

func entityWithLabel(g *Graph, uid, label string) string {
	entity := EntityIRI(testNS, uid)
	g.Add(Triple{Subject: entity, Predicate: PredType, Object: IRI(ClassFile(testNS))})
	g.Add(Triple{Subject: entity, Predicate: PredIdentifier, Object: Literal(uid)})
	g.Add(Triple{Subject: entity, Predicate: PredLabel, Object: Literal(label)})
	return entity
}

func TestGraph_Add(t *testing.T) {
	t.Parallel()

	g := New(testNS)
	triple := Triple{Subject: "s", Predicate: "p", Object: Literal("o")}

	assert.True(t, g.Add(triple))
	assert.False(t, g.Add(triple), "re-adding the identical statement is a no-op")
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Has(triple))
}

func TestGraph_AddAll(t *testing.T) {
	t.Parallel()

	g := New(testNS)
	existing := Triple{Subject: "s", Predicate: "p", Object: Literal("o")}
	g.Add(existing)

	fresh := Triple{Subject: "s", Predicate: "p2", Object: Literal("o")}
	added := g.AddAll([]Triple{existing, fresh})

	require.Len(t, added, 1)
	assert.Equal(t, fresh, added[0])
}

func TestGraph_TriplesDeterministic(t *testing.T) {
	t.Parallel()

	build := func(order []string) *Graph {
		g := New(testNS)
		for _, s := range order {
			g.Add(Triple{Subject: s, Predicate: "p", Object: Literal("o")})
		}
		return g
	}

	a := build([]string{"s1", "s2", "s3"})
	b := build([]string{"s3", "s1", "s2"})

	assert.Equal(t, a.Triples(), b.Triples())
	assert.True(t, a.Equal(b))
}

func TestGraph_Entities(t *testing.T) {
	t.Parallel()

	g := New(testNS)
	e1 := entityWithLabel(g, "uid-b", "b.pdf")
	e2 := entityWithLabel(g, "uid-a", "a.pdf")
	// A subject without the entity type is not an entity.
	g.Add(Triple{Subject: "other", Predicate: PredLabel, Object: Literal("x")})

	assert.Equal(t, []string{e2, e1}, g.Entities())
	assert.True(t, g.HasEntity(e1))
	assert.False(t, g.HasEntity("other"))
	assert.False(t, g.HasEntity("missing"))
}

func TestGraph_Relations(t *testing.T) {
	t.Parallel()

	g := New(testNS)
	e1 := entityWithLabel(g, "uid-1", "a.pdf")
	e2 := entityWithLabel(g, "uid-2", "b.pdf")
	g.Add(Triple{Subject: e1, Predicate: PredWasDerivedFrom, Object: IRI(e2)})

	rels := g.Relations()
	require.Len(t, rels, 1)
	assert.Equal(t, e1, rels[0].Subject)
	assert.Equal(t, PredWasDerivedFrom, rels[0].Predicate)
	assert.Equal(t, e2, rels[0].Object.Value)
}

func TestGraph_Objects(t *testing.T) {
	t.Parallel()

	g := New(testNS)
	g.Add(Triple{Subject: "s", Predicate: "p", Object: Literal("b")})
	g.Add(Triple{Subject: "s", Predicate: "p", Object: Literal("a")})
	g.Add(Triple{Subject: "s", Predicate: "q", Object: Literal("c")})

	objs := g.Objects("s", "p")
	require.Len(t, objs, 2)
	assert.Equal(t, "a", objs[0].Value)
	assert.Equal(t, "b", objs[1].Value)
	assert.Nil(t, g.Objects("missing", "p"))
}

func TestEntityIRI(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://example.org/dca/file/abc", EntityIRI("http://example.org/dca", "abc"))
	assert.Equal(t, "http://example.org/dca/file/abc", EntityIRI("http://example.org/dca/", "abc"),
		"trailing slash must not double up")
}
