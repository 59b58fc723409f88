package graph

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// predicateCatalog maps human-readable predicate names to relation IRIs.
// Lookup is exact and case-sensitive; anything else is treated as an
// already-resolved predicate IRI so projects can extend the vocabulary
// without touching this table.
var predicateCatalog = map[string]string{
	"is output of":           PredHadOutput,
	"is input of":            PredUsedAsDerivationSource,
	"is variant of":          PredIsVersionOf,
	"derives from":           PredWasDerivedFrom,
	"alternate of / same as": PredAlternative,
}

// PredicateNames returns the catalog's predicate names in stable order.
func PredicateNames() []string {
	return []string{
		"is output of",
		"is input of",
		"is variant of",
		"derives from",
		"alternate of / same as",
	}
}

// ResolvePredicate maps a catalog name to its relation IRI. Unknown
// names pass through unchanged as already-resolved IRIs.
func ResolvePredicate(name string) string {
	if iri, ok := predicateCatalog[name]; ok {
		return iri
	}
	return name
}

// Descriptor describes one relation between two files by identifier.
// Callers never deal in entity IRIs; the URI scheme stays an internal
// contract of this package.
type Descriptor struct {
	SubjectUID string `yaml:"subject_uid" json:"subject_uid"`
	ObjectUID  string `yaml:"object_uid" json:"object_uid"`
	Predicate  string `yaml:"predicate" json:"predicate"`
	Label      string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Validate checks descriptor field presence.
func (d Descriptor) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.SubjectUID, validation.Required),
		validation.Field(&d.ObjectUID, validation.Required),
		validation.Field(&d.Predicate, validation.Required),
	)
}

// AddRelations resolves each descriptor against the graph's namespace
// and adds the resulting relation triples. Re-adding an existing
// relation is a no-op. No referential-integrity or self-loop checks
// happen here: the graph may hold invalid state while it is being
// edited, and only validation before export decides what may persist.
//
// The returned slice contains the triples that were actually new, so a
// caller persisting incrementally can write exactly the delta.
func AddRelations(g *Graph, descriptors []Descriptor) ([]Triple, error) {
	namespace := g.Namespace()

	var staged []Triple
	for i, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("relation %d: %w", i, err)
		}

		subject := EntityIRI(namespace, d.SubjectUID)
		object := EntityIRI(namespace, d.ObjectUID)
		staged = append(staged, Triple{
			Subject:   subject,
			Predicate: ResolvePredicate(d.Predicate),
			Object:    IRI(object),
		})

		if d.Label != "" {
			staged = append(staged, Triple{
				Subject:   subject,
				Predicate: PredComment,
				Object:    Literal(d.Predicate + ": " + d.Label),
			})
		}
	}

	return g.AddAll(staged), nil
}
