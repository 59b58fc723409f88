// Package graph provides the triple-based relation graph for Relic.
//
// It defines the term and triple types that represent file entities and
// the provenance relations between them, the graph container with
// idempotent set semantics, and the builder that projects a record set
// into entities.
package graph

// TermKind discriminates IRI references from literals.
type TermKind string

const (
	// KindIRI marks a term as an IRI reference.
	KindIRI TermKind = "iri"

	// KindLiteral marks a term as a (possibly datatyped) literal.
	KindLiteral TermKind = "literal"
)

// Term is the object position of a triple: either an IRI or a literal.
type Term struct {
	// Kind is the term kind.
	Kind TermKind `json:"kind"`

	// Value is the IRI string or the literal lexical form.
	Value string `json:"value"`

	// Datatype is the datatype IRI for typed literals, empty for
	// plain literals and IRIs.
	Datatype string `json:"datatype,omitempty"`
}

// IRI creates an IRI term.
func IRI(value string) Term {
	return Term{Kind: KindIRI, Value: value}
}

// Literal creates a plain string literal term.
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// TypedLiteral creates a literal term with a datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// IsIRI reports whether the term is an IRI reference.
func (t Term) IsIRI() bool {
	return t.Kind == KindIRI
}

// Triple is one directed, typed statement in the graph.
type Triple struct {
	// Subject is the subject IRI.
	Subject string `json:"subject"`

	// Predicate is the predicate IRI.
	Predicate string `json:"predicate"`

	// Object is the object term.
	Object Term `json:"object"`
}

// Key returns the canonical identity of the triple. Two triples with the
// same key are the same statement; the graph stores at most one of them.
func (t Triple) Key() string {
	kind := "i"
	if t.Object.Kind == KindLiteral {
		kind = "l"
	}
	return t.Subject + "\x00" + t.Predicate + "\x00" + kind + "\x00" + t.Object.Value + "\x00" + t.Object.Datatype
}

// IsRelation reports whether the triple links two resources, i.e. its
// object is an IRI and its predicate is not rdf:type. Relation triples
// are the ones subject to referential-integrity and self-loop checks.
func (t Triple) IsRelation() bool {
	return t.Object.IsIRI() && t.Predicate != PredType
}
