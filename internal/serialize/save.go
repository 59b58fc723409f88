package serialize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/archivekit/relic/internal/graph"
	"github.com/archivekit/relic/internal/validate"
)

// Format names a graph serialization syntax.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
)

// FormatForPath picks the serialization format from a file extension:
// .nt selects N-Triples, everything else Turtle.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".nt") {
		return FormatNTriples
	}
	return FormatTurtle
}

// SaveGraph serializes the graph to a file, creating parent directories
// as needed. Saving never depends on the graph's validity.
func SaveGraph(g *graph.Graph, path string, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch format {
	case FormatNTriples:
		err = WriteNTriples(f, g)
	default:
		err = WriteTurtle(f, g)
	}
	if err != nil {
		return fmt.Errorf("serializing graph: %w", err)
	}

	return f.Close()
}

// SaveReport persists a validation report as two sibling artifacts:
// {base}.ttl with the structured SHACL-shaped form and {base}.txt with
// the plain-text form. A non-conforming report saves exactly the same
// way as a conforming one.
func SaveReport(rep validate.Report, namespace, basePath string) (ttlPath, txtPath string, err error) {
	base := strings.TrimSuffix(basePath, filepath.Ext(basePath))
	ttlPath = base + ".ttl"
	txtPath = base + ".txt"

	if err := SaveGraph(ReportGraph(rep, namespace), ttlPath, FormatTurtle); err != nil {
		return "", "", err
	}

	if err := os.WriteFile(txtPath, []byte(FormatReportText(rep)), 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", txtPath, err)
	}

	return ttlPath, txtPath, nil
}
