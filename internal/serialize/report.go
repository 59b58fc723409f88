package serialize

import (
	"fmt"
	"strings"

	"github.com/archivekit/relic/internal/graph"
	"github.com/archivekit/relic/internal/validate"
)

// SHACL report vocabulary terms.
const (
	shValidationReport          = graph.SHACLNamespace + "ValidationReport"
	shValidationResult          = graph.SHACLNamespace + "ValidationResult"
	shConforms                  = graph.SHACLNamespace + "conforms"
	shResult                    = graph.SHACLNamespace + "result"
	shFocusNode                 = graph.SHACLNamespace + "focusNode"
	shResultMessage             = graph.SHACLNamespace + "resultMessage"
	shSourceConstraintComponent = graph.SHACLNamespace + "sourceConstraintComponent"
)

// ReportGraph renders a validation report as triples in the SHACL
// report shape, so downstream consumers can read the verdict and each
// violation as discrete typed facts.
func ReportGraph(rep validate.Report, namespace string) *graph.Graph {
	g := graph.New(namespace)
	reportIRI := graph.CollectionIRI(namespace, "report")

	g.Add(graph.Triple{Subject: reportIRI, Predicate: graph.PredType, Object: graph.IRI(shValidationReport)})
	g.Add(graph.Triple{
		Subject:   reportIRI,
		Predicate: shConforms,
		Object:    graph.TypedLiteral(fmt.Sprintf("%t", rep.Conforms), graph.XSDBoolean),
	})

	for i, v := range rep.Violations {
		resultIRI := fmt.Sprintf("%s/result/%d", reportIRI, i+1)
		g.Add(graph.Triple{Subject: reportIRI, Predicate: shResult, Object: graph.IRI(resultIRI)})
		g.Add(graph.Triple{Subject: resultIRI, Predicate: graph.PredType, Object: graph.IRI(shValidationResult)})
		g.Add(graph.Triple{Subject: resultIRI, Predicate: shFocusNode, Object: graph.IRI(v.FocusEntity)})
		g.Add(graph.Triple{Subject: resultIRI, Predicate: shResultMessage, Object: graph.Literal(v.Message)})
		g.Add(graph.Triple{
			Subject:   resultIRI,
			Predicate: shSourceConstraintComponent,
			Object:    graph.IRI(graph.CollectionIRI(namespace, "constraint/"+string(v.Kind))),
		})
	}

	return g
}

// FormatReportText renders the plain-text form of a report: one line
// per violation plus a trailing summary line.
func FormatReportText(rep validate.Report) string {
	var sb strings.Builder
	for _, v := range rep.Violations {
		sb.WriteString(fmt.Sprintf("%s\t%s\t%s\n", v.FocusEntity, v.Kind, v.Message))
	}
	sb.WriteString(fmt.Sprintf("conforms: %t, %d violation(s)\n", rep.Conforms, len(rep.Violations)))
	return sb.String()
}
