package graph

import "strings"

// Standard vocabulary namespaces used by the relation graph.
const (
	// CRMdigNamespace is the CRM Digital provenance extension.
	CRMdigNamespace = "http://www.ics.forth.gr/isl/CRMdig/"

	// PROVNamespace is the W3C provenance ontology.
	PROVNamespace = "http://www.w3.org/ns/prov#"

	// DCTermsNamespace is Dublin Core terms.
	DCTermsNamespace = "http://purl.org/dc/terms/"

	// RDFNamespace is the RDF core vocabulary.
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// RDFSNamespace is the RDF Schema vocabulary.
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"

	// XSDNamespace is the XML Schema datatype namespace.
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"

	// SHACLNamespace is the W3C shapes constraint language, used for
	// the structured form of validation reports.
	SHACLNamespace = "http://www.w3.org/ns/shacl#"
)

// Well-known predicate and class IRIs.
const (
	PredType       = RDFNamespace + "type"
	PredLabel      = RDFSNamespace + "label"
	PredComment    = RDFSNamespace + "comment"
	PredIdentifier = DCTermsNamespace + "identifier"
	PredModified   = DCTermsNamespace + "modified"

	// Relation predicates reachable through the catalog.
	PredHadOutput              = CRMdigNamespace + "L11_had_output"
	PredUsedAsDerivationSource = CRMdigNamespace + "L21_used_as_derivation_source"
	PredIsVersionOf            = DCTermsNamespace + "isVersionOf"
	PredWasDerivedFrom         = PROVNamespace + "wasDerivedFrom"
	PredAlternative            = DCTermsNamespace + "alternative"

	XSDDateTime = XSDNamespace + "dateTime"
	XSDBoolean  = XSDNamespace + "boolean"
)

// baseIRI normalizes a collection namespace by stripping trailing slashes.
func baseIRI(namespace string) string {
	return strings.TrimRight(namespace, "/")
}

// CollectionIRI builds a term IRI inside the collection namespace.
func CollectionIRI(namespace, name string) string {
	return baseIRI(namespace) + "/" + name
}

// ClassFile is the entity class for file records in a collection.
func ClassFile(namespace string) string {
	return CollectionIRI(namespace, "File")
}

// PropOriginalPath is the collection-scoped original-path property.
func PropOriginalPath(namespace string) string {
	return CollectionIRI(namespace, "originalPath")
}

// PropFormatName is the collection-scoped format-name property.
func PropFormatName(namespace string) string {
	return CollectionIRI(namespace, "formatName")
}

// EntityIRI builds the IRI for a file entity. The shape
// {namespace}/file/{identifier} is a hard contract with every
// downstream consumer of the serialized graph.
func EntityIRI(namespace, identifier string) string {
	return baseIRI(namespace) + "/file/" + identifier
}
