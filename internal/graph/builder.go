package graph

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/archivekit/relic/internal/record"
)

// Columns carrying optional metadata in DROID-style inventories.
const (
	formatNameColumn   = "FORMAT_NAME"
	lastModifiedColumn = "LAST_MODIFIED"
)

// dateLayouts are the accepted lexical forms for the observed date, in
// match order. Values that fit none of them are omitted from the graph
// rather than stored malformed.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// MissingIdentifierError is returned when graph construction encounters
// a record without an identifier. Building never assigns identities;
// that is the identity assigner's exclusive job, so this indicates the
// caller skipped record.EnsureIdentifiers.
type MissingIdentifierError struct {
	// Row is the zero-based row index of the offending record.
	Row int

	// Path is the record's file path, when available.
	Path string
}

// Error implements the error interface.
func (e *MissingIdentifierError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("record %d (%s) has no identifier, run identity assignment first", e.Row, e.Path)
	}
	return fmt.Sprintf("record %d has no identifier, run identity assignment first", e.Row)
}

// BuildOptions configures Build.
type BuildOptions struct {
	// UIDColumn is the identifier column. Defaults to record.DefaultUIDColumn.
	UIDColumn string

	// PathColumn is the file-path column. Auto-detected when empty.
	PathColumn string
}

// Build projects a record set into a graph with one typed entity per
// record. Building is pure: the same input always yields the same
// triple set.
//
// Per entity it emits rdf:type, rdfs:label (basename of the path),
// the original path, the identifier, and, when present, the format name
// and a datatyped observed date.
func Build(rs *record.RecordSet, namespace string, opts BuildOptions) (*Graph, error) {
	uidColumn := opts.UIDColumn
	if uidColumn == "" {
		uidColumn = record.DefaultUIDColumn
	}
	if !rs.HasColumn(uidColumn) {
		return nil, &record.ColumnNotFoundError{Column: uidColumn, Available: rs.Columns()}
	}

	pathColumn, err := record.ResolvePathColumn(rs, opts.PathColumn)
	if err != nil {
		return nil, err
	}

	g := New(namespace)
	for i := 0; i < rs.Len(); i++ {
		uid := rs.Value(i, uidColumn)
		filePath := rs.Value(i, pathColumn)
		if uid == "" {
			return nil, &MissingIdentifierError{Row: i, Path: filePath}
		}

		entity := EntityIRI(namespace, uid)
		g.Add(Triple{Subject: entity, Predicate: PredType, Object: IRI(ClassFile(namespace))})
		g.Add(Triple{Subject: entity, Predicate: PredIdentifier, Object: Literal(uid)})

		if filePath != "" {
			g.Add(Triple{Subject: entity, Predicate: PredLabel, Object: Literal(baseName(filePath))})
			g.Add(Triple{Subject: entity, Predicate: PropOriginalPath(namespace), Object: Literal(filePath)})
		}

		if format := rs.Value(i, formatNameColumn); format != "" {
			g.Add(Triple{Subject: entity, Predicate: PropFormatName(namespace), Object: Literal(format)})
		}

		if raw := rs.Value(i, lastModifiedColumn); raw != "" {
			if lexical, ok := parseObservedDate(raw); ok {
				g.Add(Triple{Subject: entity, Predicate: PredModified, Object: TypedLiteral(lexical, XSDDateTime)})
			}
		}
	}

	return g, nil
}

// baseName extracts a display name from a file path, tolerating both
// separator conventions found in inventories.
func baseName(filePath string) string {
	normalized := strings.ReplaceAll(filePath, "\\", "/")
	return path.Base(normalized)
}

// parseObservedDate normalizes a date value to xsd:dateTime lexical form.
func parseObservedDate(raw string) (string, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("2006-01-02T15:04:05"), true
		}
	}
	return "", false
}
