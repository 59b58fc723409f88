// Package serialize renders relation graphs and validation reports to
// their on-disk forms: N-Triples, Turtle, and plain-text reports.
package serialize

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/archivekit/relic/internal/graph"
)

// WriteNTriples writes the graph in canonical N-Triples: one statement
// per line, sorted, with standard string escaping. The output is
// lossless and re-parseable by ParseNTriples.
func WriteNTriples(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	for _, t := range g.Triples() {
		if _, err := bw.WriteString(formatNTriple(t) + "\n"); err != nil {
			return fmt.Errorf("writing triple: %w", err)
		}
	}
	return bw.Flush()
}

// formatNTriple renders one statement.
func formatNTriple(t graph.Triple) string {
	var sb strings.Builder
	sb.WriteString("<" + t.Subject + "> <" + t.Predicate + "> ")
	if t.Object.IsIRI() {
		sb.WriteString("<" + t.Object.Value + ">")
	} else {
		sb.WriteString(`"` + escapeLiteral(t.Object.Value) + `"`)
		if t.Object.Datatype != "" {
			sb.WriteString("^^<" + t.Object.Datatype + ">")
		}
	}
	sb.WriteString(" .")
	return sb.String()
}

// escapeLiteral applies N-Triples string escaping.
func escapeLiteral(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// unescapeLiteral reverses escapeLiteral.
func unescapeLiteral(s string) string {
	var sb strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				sb.WriteRune(r)
			}
			continue
		}
		switch r {
		case 'n':
			sb.WriteRune('\n')
		case 'r':
			sb.WriteRune('\r')
		case 't':
			sb.WriteRune('\t')
		default:
			sb.WriteRune(r)
		}
		escaped = false
	}
	return sb.String()
}

// ParseNTriples reads N-Triples statements into a graph bound to the
// given collection namespace. Blank lines and # comments are skipped.
func ParseNTriples(r io.Reader, namespace string) (*graph.Graph, error) {
	g := graph.New(namespace)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := parseNTripleLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		g.Add(t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading triples: %w", err)
	}
	return g, nil
}

// parseNTripleLine parses a single `<s> <p> o .` statement.
func parseNTripleLine(line string) (graph.Triple, error) {
	var t graph.Triple

	rest := line
	subject, rest, err := takeIRI(rest)
	if err != nil {
		return t, fmt.Errorf("subject: %w", err)
	}
	predicate, rest, err := takeIRI(rest)
	if err != nil {
		return t, fmt.Errorf("predicate: %w", err)
	}

	rest = strings.TrimSpace(rest)
	var object graph.Term
	switch {
	case strings.HasPrefix(rest, "<"):
		iri, tail, err := takeIRI(rest)
		if err != nil {
			return t, fmt.Errorf("object: %w", err)
		}
		object = graph.IRI(iri)
		rest = tail
	case strings.HasPrefix(rest, `"`):
		lit, tail, err := takeLiteral(rest)
		if err != nil {
			return t, fmt.Errorf("object: %w", err)
		}
		object = lit
		rest = tail
	default:
		return t, fmt.Errorf("unexpected object term: %q", rest)
	}

	if strings.TrimSpace(rest) != "." {
		return t, fmt.Errorf("statement not terminated with '.'")
	}

	return graph.Triple{Subject: subject, Predicate: predicate, Object: object}, nil
}

// takeIRI consumes a leading <...> token.
func takeIRI(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") {
		return "", "", fmt.Errorf("expected IRI, got %q", s)
	}
	end := strings.Index(s, ">")
	if end < 0 {
		return "", "", fmt.Errorf("unterminated IRI: %q", s)
	}
	return s[1:end], s[end+1:], nil
}

// takeLiteral consumes a leading quoted literal with optional datatype.
func takeLiteral(s string) (graph.Term, string, error) {
	// Find the closing quote, honoring escapes.
	end := -1
	escaped := false
	for i := 1; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch s[i] {
		case '\\':
			escaped = true
		case '"':
			end = i
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return graph.Term{}, "", fmt.Errorf("unterminated literal: %q", s)
	}

	value := unescapeLiteral(s[1:end])
	rest := s[end+1:]

	if strings.HasPrefix(rest, "^^") {
		datatype, tail, err := takeIRI(rest[2:])
		if err != nil {
			return graph.Term{}, "", fmt.Errorf("datatype: %w", err)
		}
		return graph.TypedLiteral(value, datatype), tail, nil
	}

	return graph.Literal(value), rest, nil
}
