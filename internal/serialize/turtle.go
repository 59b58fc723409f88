package serialize

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/archivekit/relic/internal/graph"
)

// prefixBinding pairs a Turtle prefix label with its namespace IRI.
type prefixBinding struct {
	label string
	iri   string
}

// turtlePrefixes returns the prefix block for a collection namespace.
// The collection itself is bound as "ex", matching the exported graph's
// consumers.
func turtlePrefixes(namespace string) []prefixBinding {
	return []prefixBinding{
		{"crmdig", graph.CRMdigNamespace},
		{"dcterms", graph.DCTermsNamespace},
		{"ex", graph.CollectionIRI(namespace, "")},
		{"prov", graph.PROVNamespace},
		{"rdf", graph.RDFNamespace},
		{"rdfs", graph.RDFSNamespace},
		{"sh", graph.SHACLNamespace},
		{"xsd", graph.XSDNamespace},
	}
}

// WriteTurtle writes the graph as Turtle with a prefix block, grouping
// statements by subject. The triple content is identical to the
// N-Triples form; Turtle is the human-facing serialization.
func WriteTurtle(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	prefixes := turtlePrefixes(g.Namespace())

	for _, p := range prefixes {
		if _, err := fmt.Fprintf(bw, "@prefix %s: <%s> .\n", p.label, p.iri); err != nil {
			return fmt.Errorf("writing prefix: %w", err)
		}
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return fmt.Errorf("writing prefix block: %w", err)
	}

	bySubject := make(map[string][]graph.Triple)
	var subjects []string
	for _, t := range g.Triples() {
		if _, ok := bySubject[t.Subject]; !ok {
			subjects = append(subjects, t.Subject)
		}
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}
	sort.Strings(subjects)

	for _, subject := range subjects {
		triples := bySubject[subject]
		if _, err := fmt.Fprintf(bw, "%s\n", turtleTerm(graph.IRI(subject), prefixes)); err != nil {
			return fmt.Errorf("writing subject: %w", err)
		}
		for i, t := range triples {
			sep := " ;"
			if i == len(triples)-1 {
				sep = " ."
			}
			pred := turtleTerm(graph.IRI(t.Predicate), prefixes)
			if t.Predicate == graph.PredType {
				pred = "a"
			}
			if _, err := fmt.Fprintf(bw, "    %s %s%s\n", pred, turtleTerm(t.Object, prefixes), sep); err != nil {
				return fmt.Errorf("writing statement: %w", err)
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return fmt.Errorf("writing statement: %w", err)
		}
	}

	return bw.Flush()
}

// turtleTerm renders a term, abbreviating IRIs with a known prefix when
// the local part is a safe prefixed name.
func turtleTerm(t graph.Term, prefixes []prefixBinding) string {
	if !t.IsIRI() {
		lit := `"` + escapeLiteral(t.Value) + `"`
		if t.Datatype != "" {
			return lit + "^^" + turtleTerm(graph.IRI(t.Datatype), prefixes)
		}
		return lit
	}

	for _, p := range prefixes {
		if !strings.HasPrefix(t.Value, p.iri) {
			continue
		}
		local := strings.TrimPrefix(t.Value, p.iri)
		if local != "" && isLocalName(local) {
			return p.label + ":" + local
		}
	}
	return "<" + t.Value + ">"
}

// isLocalName reports whether a string is safe as the local part of a
// prefixed name without escaping.
func isLocalName(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
