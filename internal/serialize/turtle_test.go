package serialize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivekit/relic/internal/graph"
)

func TestWriteTurtle(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, WriteTurtle(&sb, sampleGraph()))
	out := sb.String()

	t.Run("PrefixBlock", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, out, "@prefix crmdig: <"+graph.CRMdigNamespace+"> .")
		assert.Contains(t, out, "@prefix dcterms: <"+graph.DCTermsNamespace+"> .")
		assert.Contains(t, out, "@prefix prov: <"+graph.PROVNamespace+"> .")
		assert.Contains(t, out, "@prefix xsd: <"+graph.XSDNamespace+"> .")
	})

	t.Run("TypeAbbreviatedToA", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, out, " a ex:File")
		assert.NotContains(t, out, "rdf:type")
	})

	t.Run("PrefixedPredicates", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, out, "dcterms:identifier")
		assert.Contains(t, out, "prov:wasDerivedFrom")
		assert.Contains(t, out, "xsd:dateTime")
	})

	t.Run("EntityIRIsStayAbsolute", func(t *testing.T) {
		t.Parallel()
		// "file/uid-1" is not a safe prefixed local name.
		assert.Contains(t, out, "<"+graph.EntityIRI(testNS, "uid-1")+">")
	})

	t.Run("StatementTermination", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, out, " ;")
		assert.Contains(t, out, " .")
	})

	t.Run("Deterministic", func(t *testing.T) {
		t.Parallel()
		var again strings.Builder
		require.NoError(t, WriteTurtle(&again, sampleGraph()))
		assert.Equal(t, out, again.String())
	})
}

func TestTurtleTerm(t *testing.T) {
	t.Parallel()

	prefixes := turtlePrefixes(testNS)

	assert.Equal(t, "rdfs:label", turtleTerm(graph.IRI(graph.PredLabel), prefixes))
	assert.Equal(t, `"doc.pdf"`, turtleTerm(graph.Literal("doc.pdf"), prefixes))
	assert.Equal(t, `"true"^^xsd:boolean`, turtleTerm(graph.TypedLiteral("true", graph.XSDBoolean), prefixes))
	assert.Equal(t, "<http://unrelated.example/x>", turtleTerm(graph.IRI("http://unrelated.example/x"), prefixes))
}
