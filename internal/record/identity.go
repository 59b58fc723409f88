package record

import (
	"github.com/google/uuid"
)

// identityNamespace is the fixed UUID namespace for identifier derivation.
// It must never change: identifiers are a pure function of
// (namespace, path) and re-running ingestion on an unchanged collection
// has to reproduce the same identifiers on every machine.
var identityNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// DefaultUIDColumn is the column identifiers are stored in when the
// caller does not configure one.
const DefaultUIDColumn = "uid"

// IdentifierFor derives the stable identifier for a file path within a
// collection namespace (UUIDv5 over namespace + "#" + path).
func IdentifierFor(namespace, path string) string {
	return uuid.NewSHA1(identityNamespace, []byte(namespace+"#"+path)).String()
}

// AssignOptions configures EnsureIdentifiers.
type AssignOptions struct {
	// UIDColumn is the identifier column name. Defaults to DefaultUIDColumn.
	UIDColumn string

	// PathColumn is the file-path column. Auto-detected when empty.
	PathColumn string

	// InPlace mutates the given record set instead of returning a copy.
	InPlace bool
}

// EnsureIdentifiers guarantees that every record with a file path carries
// a non-empty identifier. Existing identifiers are left untouched; missing
// ones are derived deterministically from (namespace, path). Records with
// an empty path keep an empty identifier — the graph builder rejects them
// later rather than inventing an identity for a file it cannot name.
func EnsureIdentifiers(rs *RecordSet, namespace string, opts AssignOptions) (*RecordSet, error) {
	uidColumn := opts.UIDColumn
	if uidColumn == "" {
		uidColumn = DefaultUIDColumn
	}

	pathColumn, err := ResolvePathColumn(rs, opts.PathColumn)
	if err != nil {
		return nil, err
	}

	out := rs
	if !opts.InPlace {
		out = rs.Clone()
	}

	out.AddColumn(uidColumn)
	for i := 0; i < out.Len(); i++ {
		if out.Value(i, uidColumn) != "" {
			continue
		}
		path := out.Value(i, pathColumn)
		if path == "" {
			continue
		}
		out.Set(i, uidColumn, IdentifierFor(namespace, path))
	}

	return out, nil
}
