package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivekit/relic/internal/graph"
)

const testNS = "http://example.org/dca"

// addEntity creates a fully-formed file entity.
func addEntity(g *graph.Graph, uid, label string) string {
	entity := graph.EntityIRI(testNS, uid)
	g.Add(graph.Triple{Subject: entity, Predicate: graph.PredType, Object: graph.IRI(graph.ClassFile(testNS))})
	g.Add(graph.Triple{Subject: entity, Predicate: graph.PredIdentifier, Object: graph.Literal(uid)})
	g.Add(graph.Triple{Subject: entity, Predicate: graph.PredLabel, Object: graph.Literal(label)})
	return entity
}

func TestRun_Conforms(t *testing.T) {
	t.Parallel()

	g := graph.New(testNS)
	e1 := addEntity(g, "uid-1", "doc.pdf")
	e2 := addEntity(g, "uid-2", "scan.tif")
	g.Add(graph.Triple{Subject: e1, Predicate: graph.PredWasDerivedFrom, Object: graph.IRI(e2)})

	rep := Run(g, nil)

	assert.True(t, rep.Conforms)
	assert.Empty(t, rep.Violations)
}

func TestRun_MissingRequiredProperty(t *testing.T) {
	t.Parallel()

	t.Run("MissingLabel", func(t *testing.T) {
		t.Parallel()
		g := graph.New(testNS)
		entity := graph.EntityIRI(testNS, "uid-1")
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredType, Object: graph.IRI(graph.ClassFile(testNS))})
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredIdentifier, Object: graph.Literal("uid-1")})

		rep := Run(g, nil)

		require.Len(t, rep.Violations, 1)
		assert.False(t, rep.Conforms)
		assert.Equal(t, MissingRequiredProperty, rep.Violations[0].Kind)
		assert.Equal(t, entity, rep.Violations[0].FocusEntity)
		assert.Contains(t, rep.Violations[0].Message, `"label"`)
	})

	t.Run("EmptyValueCounts", func(t *testing.T) {
		t.Parallel()
		g := graph.New(testNS)
		entity := graph.EntityIRI(testNS, "uid-1")
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredType, Object: graph.IRI(graph.ClassFile(testNS))})
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredIdentifier, Object: graph.Literal("uid-1")})
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredLabel, Object: graph.Literal("")})

		rep := Run(g, nil)

		require.Len(t, rep.Violations, 1)
		assert.Equal(t, MissingRequiredProperty, rep.Violations[0].Kind)
	})
}

func TestRun_MalformedURI(t *testing.T) {
	t.Parallel()

	t.Run("WrongShape", func(t *testing.T) {
		t.Parallel()
		g := graph.New(testNS)
		entity := "http://elsewhere.example/thing"
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredType, Object: graph.IRI(graph.ClassFile(testNS))})
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredIdentifier, Object: graph.Literal("uid-1")})
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredLabel, Object: graph.Literal("x")})

		rep := Run(g, nil)

		require.Len(t, rep.Violations, 1)
		assert.Equal(t, MalformedURI, rep.Violations[0].Kind)
		assert.Equal(t, entity, rep.Violations[0].FocusEntity)
	})

	t.Run("IdentifierSuffixMismatch", func(t *testing.T) {
		t.Parallel()
		g := graph.New(testNS)
		entity := graph.EntityIRI(testNS, "uid-1")
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredType, Object: graph.IRI(graph.ClassFile(testNS))})
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredIdentifier, Object: graph.Literal("uid-OTHER")})
		g.Add(graph.Triple{Subject: entity, Predicate: graph.PredLabel, Object: graph.Literal("x")})

		rep := Run(g, nil)

		require.Len(t, rep.Violations, 1)
		assert.Equal(t, MalformedURI, rep.Violations[0].Kind)
		assert.Contains(t, rep.Violations[0].Message, "uid-OTHER")
	})

	t.Run("WellFormed", func(t *testing.T) {
		t.Parallel()
		g := graph.New(testNS)
		addEntity(g, "uid-1", "doc.pdf")

		rep := Run(g, nil)
		assert.True(t, rep.Conforms)
	})
}

func TestRun_DanglingRelationTarget(t *testing.T) {
	t.Parallel()

	g := graph.New(testNS)
	e1 := addEntity(g, "uid-1", "doc.pdf")
	ghost := graph.EntityIRI(testNS, "uid-ghost")
	g.Add(graph.Triple{Subject: e1, Predicate: graph.PredWasDerivedFrom, Object: graph.IRI(ghost)})

	rep := Run(g, nil)

	require.Len(t, rep.Violations, 1)
	assert.Equal(t, DanglingRelationTarget, rep.Violations[0].Kind)
	assert.Equal(t, ghost, rep.Violations[0].FocusEntity)
}

func TestRun_CircularRelation(t *testing.T) {
	t.Parallel()

	t.Run("DirectSelfLoop", func(t *testing.T) {
		t.Parallel()
		g := graph.New(testNS)
		e1 := addEntity(g, "uid-1", "doc.pdf")
		g.Add(graph.Triple{Subject: e1, Predicate: graph.PredWasDerivedFrom, Object: graph.IRI(e1)})

		rep := Run(g, nil)

		require.Len(t, rep.Violations, 1)
		assert.Equal(t, CircularRelation, rep.Violations[0].Kind)
		assert.Equal(t, e1, rep.Violations[0].FocusEntity)
	})

	t.Run("TwoHopCycleAllowed", func(t *testing.T) {
		t.Parallel()
		g := graph.New(testNS)
		e1 := addEntity(g, "uid-1", "doc.pdf")
		e2 := addEntity(g, "uid-2", "scan.tif")
		g.Add(graph.Triple{Subject: e1, Predicate: graph.PredWasDerivedFrom, Object: graph.IRI(e2)})
		g.Add(graph.Triple{Subject: e2, Predicate: graph.PredWasDerivedFrom, Object: graph.IRI(e1)})

		rep := Run(g, nil)
		assert.True(t, rep.Conforms, "only direct self-loops are forbidden")
	})
}

func TestRun_RuleOrder(t *testing.T) {
	t.Parallel()

	// One graph violating all four rules at once.
	g := graph.New(testNS)
	bad := "http://elsewhere.example/thing"
	g.Add(graph.Triple{Subject: bad, Predicate: graph.PredType, Object: graph.IRI(graph.ClassFile(testNS))})
	e1 := addEntity(g, "uid-1", "doc.pdf")
	ghost := graph.EntityIRI(testNS, "uid-ghost")
	g.Add(graph.Triple{Subject: e1, Predicate: graph.PredWasDerivedFrom, Object: graph.IRI(ghost)})
	g.Add(graph.Triple{Subject: e1, Predicate: graph.PredIsVersionOf, Object: graph.IRI(e1)})

	rep := Run(g, nil)

	require.Len(t, rep.Violations, 5)
	kinds := make([]Kind, len(rep.Violations))
	for i, v := range rep.Violations {
		kinds[i] = v.Kind
	}
	assert.Equal(t, []Kind{
		MissingRequiredProperty,
		MissingRequiredProperty,
		MalformedURI,
		DanglingRelationTarget,
		CircularRelation,
	}, kinds, "violations keep fixed rule order")

	again := Run(g, nil)
	assert.Equal(t, rep, again, "reports are deterministic")
}

func TestLoadShapes(t *testing.T) {
	t.Parallel()

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "shapes.yaml")
		content := "required_properties:\n  label: " + graph.PredLabel + "\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		shapes, err := LoadShapes(path)
		require.NoError(t, err)
		assert.Equal(t, graph.PredLabel, shapes.RequiredProperties["label"])
	})

	t.Run("Missing", func(t *testing.T) {
		t.Parallel()
		_, err := LoadShapes(filepath.Join(t.TempDir(), "nope.yaml"))

		var sue *ShapesUnavailableError
		require.ErrorAs(t, err, &sue)
		assert.Contains(t, sue.Error(), "built-in rules")
	})

	t.Run("Unparseable", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "shapes.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

		_, err := LoadShapes(path)

		var sue *ShapesUnavailableError
		require.ErrorAs(t, err, &sue)
	})
}

func TestRun_CustomShapes(t *testing.T) {
	t.Parallel()

	// Only the identifier is required; the missing label passes.
	shapes := &Shapes{RequiredProperties: map[string]string{
		"identifier": graph.PredIdentifier,
	}}

	g := graph.New(testNS)
	entity := graph.EntityIRI(testNS, "uid-1")
	g.Add(graph.Triple{Subject: entity, Predicate: graph.PredType, Object: graph.IRI(graph.ClassFile(testNS))})
	g.Add(graph.Triple{Subject: entity, Predicate: graph.PredIdentifier, Object: graph.Literal("uid-1")})

	rep := Run(g, shapes)
	assert.True(t, rep.Conforms)
}
