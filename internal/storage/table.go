package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/catalog"
	"github.com/freeeve/minidb/internal/status"
)

// Table is a handle bound to a schema and a directory. It owns a write
// mutex and holds no in-memory row cache — every scan re-reads the column
// files from disk (spec §3). TableManager is the only thing that
// constructs one, so repeated opens of the same name share this handle.
type Table struct {
	mu     sync.Mutex
	schema *catalog.Schema
	dir    string
}

func columnFilePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("col_%d.bin", index))
}

// Schema returns the table's column schema.
func (t *Table) Schema() *catalog.Schema { return t.schema }

// RowCount returns the current row count, derived from the first column's
// file header, or 0 if the table has no column files yet (spec §3's "row
// count derived from the first column's row_count header").
func (t *Table) RowCount() (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rowCountLocked()
}

func (t *Table) rowCountLocked() (int64, error) {
	if len(t.schema.ColumnNames) == 0 {
		return 0, nil
	}
	path := columnFilePath(t.dir, 0)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, status.IOErrorf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	h, err := readHeader(f)
	if err != nil {
		return 0, err
	}
	return int64(h.RowCount), nil
}

// ScanAll reads every column file in full and returns one ColumnVector per
// schema column, in schema order. A table with no column files yet (never
// inserted into) returns empty columns, not an error.
func (t *Table) ScanAll() ([]ColumnVector, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scanLocked(nil)
}

// ScanColumns reads only the named columns, still returned in schema
// order restricted to the requested set.
func (t *Table) ScanColumns(names []string) ([]ColumnVector, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	want := make(map[int]bool, len(names))
	for _, n := range names {
		idx := t.schema.IndexOf(n)
		if idx < 0 {
			return nil, status.InvalidArgumentf("column %s does not exist on table %s", n, t.schema.TableName)
		}
		want[idx] = true
	}
	return t.scanLocked(want)
}

func (t *Table) scanLocked(want map[int]bool) ([]ColumnVector, error) {
	out := make([]ColumnVector, 0, len(t.schema.ColumnNames))
	for i, name := range t.schema.ColumnNames {
		if want != nil && !want[i] {
			continue
		}
		path := columnFilePath(t.dir, i)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			out = append(out, NewColumnVector(name, t.schema.ColumnTypes[i]))
			continue
		}
		col, err := ReadColumnFile(path, name)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// InsertRows parses each Row's stringified values against the schema's
// column types, appends them to the existing columns, and rewrites every
// column file atomically. Arity mismatches are rejected before any file is
// touched.
func (t *Table) InsertRows(rows []Row) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range rows {
		if len(r.Values) != len(t.schema.ColumnNames) {
			return 0, status.InvalidArgumentf(
				"row has %d values, table %s has %d columns", len(r.Values), t.schema.TableName, len(t.schema.ColumnNames))
		}
	}

	cols, err := t.scanLocked(nil)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		for i, raw := range r.Values {
			if err := appendParsed(&cols[i], t.schema.ColumnTypes[i], raw); err != nil {
				return 0, err
			}
		}
	}
	if err := t.writeAllLocked(cols); err != nil {
		return 0, err
	}
	return int64(cols[0].RowCount), nil
}

// appendParsed parses raw per column's DataType and appends the result.
// Parsing follows spec §4.9's INSERT value conversion rules.
func appendParsed(col *ColumnVector, t ast.DataType, raw string) error {
	switch t {
	case ast.TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return status.InvalidArgumentf("cannot parse %q as INT: %v", raw, err)
		}
		col.AppendInt(int32(n))
	case ast.TypeString:
		return col.AppendString(raw)
	case ast.TypeBool:
		switch strings.ToUpper(strings.TrimSpace(raw)) {
		case "TRUE", "1":
			col.AppendBool(true)
		default:
			col.AppendBool(false)
		}
	case ast.TypeDecimal:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return status.InvalidArgumentf("cannot parse %q as DECIMAL: %v", raw, err)
		}
		col.AppendDecimal(f)
	default:
		return status.InternalErrorf("unknown column type")
	}
	return nil
}

// DeleteRows rewrites every column file keeping only rows whose index is
// not in keep == false; `keep[i]` reports whether row i survives.
func (t *Table) DeleteRows(keep []bool) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols, err := t.scanLocked(nil)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, nil
	}
	out := make([]ColumnVector, len(cols))
	for i, c := range cols {
		out[i] = NewColumnVector(c.Name, c.Type)
	}
	for row := 0; row < cols[0].RowCount; row++ {
		if !keep[row] {
			continue
		}
		for i := range cols {
			out[i].AppendFrom(&cols[i], row)
		}
	}
	if err := t.writeAllLocked(out); err != nil {
		return 0, err
	}
	return int64(out[0].RowCount), nil
}

func (t *Table) writeAllLocked(cols []ColumnVector) error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return status.IOErrorf("failed to create table directory %s: %v", t.dir, err)
	}
	for i := range cols {
		if err := WriteColumnFile(columnFilePath(t.dir, i), &cols[i]); err != nil {
			return err
		}
	}
	return nil
}
