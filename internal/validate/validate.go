// Package validate runs the fixed constraint rule set against a
// relation graph and produces a conformance report.
//
// Violations are accumulated, never raised as errors: a caller may
// always choose to persist an imperfect graph with a warning instead of
// losing work.
package validate

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/archivekit/relic/internal/graph"
)

// Kind names one constraint rule.
type Kind string

const (
	MissingRequiredProperty Kind = "MissingRequiredProperty"
	MalformedURI            Kind = "MalformedURI"
	DanglingRelationTarget  Kind = "DanglingRelationTarget"
	CircularRelation        Kind = "CircularRelation"
)

// Violation is one discrete failed constraint.
type Violation struct {
	// FocusEntity is the IRI of the offending entity or relation endpoint.
	FocusEntity string `json:"focus_entity"`

	// Kind is the violated rule.
	Kind Kind `json:"kind"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Report is the outcome of one validation run. It is produced fresh per
// call and never mutated afterwards.
type Report struct {
	// Conforms is true iff zero violations were found.
	Conforms bool `json:"conforms"`

	// Violations lists every problem found, in deterministic order
	// (rule order, then focus IRI).
	Violations []Violation `json:"violations"`
}

// requiredProperty pairs a property IRI with the short field name used
// in violation messages.
type requiredProperty struct {
	IRI  string
	Name string
}

// ShapesUnavailableError reports that a configured external shapes file
// cannot be loaded. This is a startup-time condition, distinct from
// validation violations, and carries an actionable hint.
type ShapesUnavailableError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ShapesUnavailableError) Error() string {
	return fmt.Sprintf("shapes file %s unavailable: %v (provide a readable YAML shapes file or drop the shapes setting to use the built-in rules)", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ShapesUnavailableError) Unwrap() error {
	return e.Err
}

// Shapes optionally overrides the required-property rule. The other
// three rules are structural and always run.
type Shapes struct {
	// RequiredProperties maps short field names to property IRIs that
	// every entity must carry with a non-empty value.
	RequiredProperties map[string]string `yaml:"required_properties"`
}

// LoadShapes reads a YAML shapes file. A missing or unreadable file is
// a *ShapesUnavailableError.
func LoadShapes(path string) (*Shapes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ShapesUnavailableError{Path: path, Err: err}
	}
	var s Shapes
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &ShapesUnavailableError{Path: path, Err: err}
	}
	return &s, nil
}

// defaultRequired is the built-in required-property set: every entity
// needs a display label and an identifier.
func defaultRequired() []requiredProperty {
	return []requiredProperty{
		{IRI: graph.PredLabel, Name: "label"},
		{IRI: graph.PredIdentifier, Name: "identifier"},
	}
}

// Run evaluates all rules against a snapshot of the graph. Passing nil
// shapes selects the built-in rule set.
func Run(g *graph.Graph, shapes *Shapes) Report {
	required := defaultRequired()
	if shapes != nil && len(shapes.RequiredProperties) > 0 {
		required = required[:0]
		names := make([]string, 0, len(shapes.RequiredProperties))
		for name := range shapes.RequiredProperties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			required = append(required, requiredProperty{IRI: shapes.RequiredProperties[name], Name: name})
		}
	}

	var violations []Violation
	violations = append(violations, checkRequiredProperties(g, required)...)
	violations = append(violations, checkEntityIRIs(g)...)
	violations = append(violations, checkReferentialIntegrity(g)...)
	violations = append(violations, checkSelfReference(g)...)

	return Report{
		Conforms:   len(violations) == 0,
		Violations: violations,
	}
}

// checkRequiredProperties flags entities missing any required property.
func checkRequiredProperties(g *graph.Graph, required []requiredProperty) []Violation {
	var out []Violation
	for _, entity := range g.Entities() {
		for _, prop := range required {
			if hasNonEmptyValue(g, entity, prop.IRI) {
				continue
			}
			out = append(out, Violation{
				FocusEntity: entity,
				Kind:        MissingRequiredProperty,
				Message:     fmt.Sprintf("entity is missing required property %q (%s)", prop.Name, prop.IRI),
			})
		}
	}
	return out
}

// checkEntityIRIs flags entities whose IRI deviates from the
// {namespace}/file/{identifier} contract, including a mismatch between
// the IRI's trailing segment and the entity's own identifier.
func checkEntityIRIs(g *graph.Graph) []Violation {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(graph.EntityIRI(g.Namespace(), "")) + "[^/]+$")

	var out []Violation
	for _, entity := range g.Entities() {
		if !pattern.MatchString(entity) {
			out = append(out, Violation{
				FocusEntity: entity,
				Kind:        MalformedURI,
				Message:     fmt.Sprintf("entity URI does not match %s", graph.EntityIRI(g.Namespace(), "{identifier}")),
			})
			continue
		}
		for _, id := range g.Objects(entity, graph.PredIdentifier) {
			if id.Value != "" && graph.EntityIRI(g.Namespace(), id.Value) != entity {
				out = append(out, Violation{
					FocusEntity: entity,
					Kind:        MalformedURI,
					Message:     fmt.Sprintf("entity URI does not end in its identifier %q", id.Value),
				})
				break
			}
		}
	}
	return out
}

// checkReferentialIntegrity flags relation endpoints that do not
// resolve to an entity in the same graph.
func checkReferentialIntegrity(g *graph.Graph) []Violation {
	var out []Violation
	for _, rel := range g.Relations() {
		if !g.HasEntity(rel.Subject) {
			out = append(out, Violation{
				FocusEntity: rel.Subject,
				Kind:        DanglingRelationTarget,
				Message:     fmt.Sprintf("relation subject is not an entity in this graph (predicate %s)", rel.Predicate),
			})
		}
		if !g.HasEntity(rel.Object.Value) {
			out = append(out, Violation{
				FocusEntity: rel.Object.Value,
				Kind:        DanglingRelationTarget,
				Message:     fmt.Sprintf("relation object is not an entity in this graph (predicate %s)", rel.Predicate),
			})
		}
	}
	sortViolations(out)
	return out
}

// checkSelfReference flags relations whose subject and object are the
// same entity. Only direct self-loops are forbidden; multi-hop cycles
// are out of the rule set.
func checkSelfReference(g *graph.Graph) []Violation {
	var out []Violation
	for _, rel := range g.Relations() {
		if rel.Subject == rel.Object.Value {
			out = append(out, Violation{
				FocusEntity: rel.Subject,
				Kind:        CircularRelation,
				Message:     fmt.Sprintf("relation %s points back at its own subject", rel.Predicate),
			})
		}
	}
	sortViolations(out)
	return out
}

// hasNonEmptyValue reports whether the subject carries the property
// with at least one non-empty value.
func hasNonEmptyValue(g *graph.Graph, subject, predicate string) bool {
	for _, obj := range g.Objects(subject, predicate) {
		if obj.Value != "" {
			return true
		}
	}
	return false
}

// sortViolations orders violations by focus IRI, then message, for
// deterministic reports.
func sortViolations(v []Violation) {
	sort.Slice(v, func(i, j int) bool {
		if v[i].FocusEntity != v[j].FocusEntity {
			return v[i].FocusEntity < v[j].FocusEntity
		}
		return v[i].Message < v[j].Message
	})
}
