// Package inventory loads and writes file-inventory CSVs.
//
// It is an adapter in front of the record package: the graph core never
// touches CSV. Parsing is lenient, because real DROID exports routinely
// contain stray quoting and the occasional malformed line.
package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/archivekit/relic/internal/record"
)

// Load reads a CSV inventory into a record set. The first row is the
// header. Malformed rows are skipped rather than failing the whole
// load; the skipped count is returned so callers can surface it.
func Load(path string) (*record.RecordSet, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening inventory: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("inventory %s is empty", path)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}

	rs := record.New(header)
	width := len(header)
	skipped := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if isEmptyRow(row) {
			continue
		}
		// A row wider than the header means an unquoted delimiter
		// split a field; there is no safe way to reassemble it.
		if len(row) > width {
			skipped++
			continue
		}
		rs.Append(row)
	}

	return rs, skipped, nil
}

// Save writes a record set back to a CSV file, creating parent
// directories as needed. Used for identifier write-back.
func Save(rs *record.RecordSet, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	writer := csv.NewWriter(f)
	if err := writer.Write(rs.Columns()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := 0; i < rs.Len(); i++ {
		if err := writer.Write(rs.Row(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}

	return f.Close()
}

// isEmptyRow reports whether every field is blank.
func isEmptyRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
