// Package record provides the tabular record-set model for Relic.
//
// A RecordSet holds the rows of a file inventory (as produced by a
// format-identification tool such as DROID) together with its column
// header. It knows nothing about CSV or any other on-disk encoding;
// loading and saving live in the inventory package.
package record

import (
	"fmt"
	"strings"
)

// pathColumnAliases are the conventional column names used for the file
// path in format-identification tool output, in detection priority order.
var pathColumnAliases = []string{
	"FILE_PATH",
	"URI",
	"FILE_URI",
	"Path",
	"FilePath",
	"file_path",
}

// ColumnNotFoundError is returned when a required column cannot be
// located in a record set and no explicit override was given.
type ColumnNotFoundError struct {
	// Column is the column name that was looked up, or empty when
	// auto-detection across the conventional aliases failed.
	Column string

	// Available lists the columns present in the record set.
	Available []string
}

// Error implements the error interface.
func (e *ColumnNotFoundError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("could not determine filepath column, available columns: %s",
			strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("column %q not found, available columns: %s",
		e.Column, strings.Join(e.Available, ", "))
}

// RecordSet is an ordered collection of inventory rows sharing one header.
type RecordSet struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty record set with the given column header.
func New(columns []string) *RecordSet {
	rs := &RecordSet{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range rs.columns {
		rs.index[c] = i
	}
	return rs
}

// Columns returns the column header in order.
func (rs *RecordSet) Columns() []string {
	return append([]string(nil), rs.columns...)
}

// Len returns the number of rows.
func (rs *RecordSet) Len() int {
	return len(rs.rows)
}

// HasColumn reports whether the record set has a column with the exact name.
func (rs *RecordSet) HasColumn(name string) bool {
	_, ok := rs.index[name]
	return ok
}

// Append adds a row. Short rows are padded with empty fields; long rows
// are truncated to the header width.
func (rs *RecordSet) Append(row []string) {
	fixed := make([]string, len(rs.columns))
	copy(fixed, row)
	rs.rows = append(rs.rows, fixed)
}

// Value returns the field at (row, column). Missing columns yield "".
func (rs *RecordSet) Value(row int, column string) string {
	i, ok := rs.index[column]
	if !ok || row < 0 || row >= len(rs.rows) {
		return ""
	}
	return rs.rows[row][i]
}

// Set stores a field value at (row, column). Unknown columns are ignored.
func (rs *RecordSet) Set(row int, column, value string) {
	i, ok := rs.index[column]
	if !ok || row < 0 || row >= len(rs.rows) {
		return
	}
	rs.rows[row][i] = value
}

// AddColumn appends an empty column to the header and every row.
// Adding an existing column is a no-op.
func (rs *RecordSet) AddColumn(name string) {
	if rs.HasColumn(name) {
		return
	}
	rs.index[name] = len(rs.columns)
	rs.columns = append(rs.columns, name)
	for i := range rs.rows {
		rs.rows[i] = append(rs.rows[i], "")
	}
}

// Row returns a copy of the row at the given index.
func (rs *RecordSet) Row(i int) []string {
	if i < 0 || i >= len(rs.rows) {
		return nil
	}
	return append([]string(nil), rs.rows[i]...)
}

// Clone returns a deep copy of the record set.
func (rs *RecordSet) Clone() *RecordSet {
	out := New(rs.columns)
	for _, row := range rs.rows {
		out.Append(row)
	}
	return out
}

// DetectPathColumn finds the file-path column among the conventional
// aliases. Exact matches win over case-insensitive ones. Returns a
// *ColumnNotFoundError when no alias matches.
func DetectPathColumn(rs *RecordSet) (string, error) {
	for _, alias := range pathColumnAliases {
		if rs.HasColumn(alias) {
			return alias, nil
		}
	}
	for _, col := range rs.columns {
		for _, alias := range pathColumnAliases {
			if strings.EqualFold(col, alias) {
				return col, nil
			}
		}
	}
	return "", &ColumnNotFoundError{Available: rs.Columns()}
}

// ResolvePathColumn returns the explicit column when given, after
// checking it exists, and otherwise falls back to auto-detection.
func ResolvePathColumn(rs *RecordSet, explicit string) (string, error) {
	if explicit != "" {
		if !rs.HasColumn(explicit) {
			return "", &ColumnNotFoundError{Column: explicit, Available: rs.Columns()}
		}
		return explicit, nil
	}
	return DetectPathColumn(rs)
}
