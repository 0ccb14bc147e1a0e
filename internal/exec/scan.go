package exec

import (
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/status"
	"github.com/freeeve/minidb/internal/storage"
)

// Scan reads a table's columns in full on first Next and slices the
// cached in-memory copy into batches thereafter (spec §4.6.1).
type Scan struct {
	TableName string
	Alias     string
	Columns   []string // schema column names to read; nil means all

	table *storage.Table
	data  []storage.ColumnVector
	names []string
	types []ast.DataType
	total int
	off   int
	state State
}

func (s *Scan) Initialize(ctx *ExecutionContext) error {
	table, err := ctx.Tables.Open(s.TableName)
	if err != nil {
		return err
	}
	s.table = table
	schema := table.Schema()

	cols := s.Columns
	if cols == nil {
		cols = schema.ColumnNames
	}
	s.names = make([]string, len(cols))
	s.types = make([]ast.DataType, len(cols))
	for i, c := range cols {
		idx := schema.IndexOf(c)
		if idx < 0 {
			return status.NotFoundf("column %s does not exist on table %s", c, schema.TableName)
		}
		s.names[i] = s.Alias + "." + schema.ColumnNames[idx]
		s.types[i] = schema.ColumnTypes[idx]
	}
	s.Columns = cols
	s.state = Ready
	return nil
}

func (s *Scan) Next(ctx *ExecutionContext) (*DataChunk, error) {
	if s.state == Finished {
		return emptyChunk(s.names, s.types), nil
	}
	if s.data == nil {
		data, err := s.table.ScanColumns(s.Columns)
		if err != nil {
			return nil, err
		}
		s.data = data
		if len(data) > 0 {
			s.total = data[0].RowCount
		}
		s.state = Running
	}
	if s.off >= s.total {
		s.state = Finished
		return emptyChunk(s.names, s.types), nil
	}
	start := s.off
	end := min(s.off+batchSize, s.total)
	cols := make([]storage.ColumnVector, len(s.data))
	for i := range s.data {
		cols[i] = s.data[i].Slice(start, end)
		cols[i].Name = s.names[i]
	}
	s.off = end
	return &DataChunk{Columns: cols, RowCount: end - start}, nil
}

func (s *Scan) Reset() error {
	// Reset does not re-read the table; it rewinds the in-memory copy
	// (spec §4.6.1 — essential for the join right-side rescan).
	s.off = 0
	s.state = Ready
	return nil
}

func (s *Scan) OutputColumns() []string     { return s.names }
func (s *Scan) OutputTypes() []ast.DataType { return s.types }
func (s *Scan) State() State                { return s.state }
