package exec

import (
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/eval"
	"github.com/freeeve/minidb/internal/storage"
)

// Filter pulls chunks from its child and re-emits only the rows whose
// predicate evaluates true. It loops until it finds at least one matching
// row or the child drains, rather than emitting empty chunks mid-stream
// (spec §4.6.2).
type Filter struct {
	Child     Operator
	Predicate ast.Expr

	state State
}

func (f *Filter) Initialize(ctx *ExecutionContext) error {
	f.state = Ready
	return f.Child.Initialize(ctx)
}

func (f *Filter) Next(ctx *ExecutionContext) (*DataChunk, error) {
	if f.state == Finished {
		return emptyChunk(f.OutputColumns(), f.OutputTypes()), nil
	}
	for {
		chunk, err := f.Child.Next(ctx)
		if err != nil {
			return nil, err
		}
		if chunk.RowCount == 0 {
			f.state = Finished
			return chunk, nil
		}
		f.state = Running
		bitmap := selectionBitmap(ctx, chunk, f.Predicate)
		if !anySelected(bitmap) {
			continue
		}
		return buildRows(chunk, bitmap), nil
	}
}

func (f *Filter) Reset() error {
	f.state = Ready
	return f.Child.Reset()
}

func (f *Filter) OutputColumns() []string     { return f.Child.OutputColumns() }
func (f *Filter) OutputTypes() []ast.DataType { return f.Child.OutputTypes() }
func (f *Filter) State() State                { return f.state }

// chunkRow is an eval.Row view over one row of a DataChunk.
type chunkRow struct {
	chunk *DataChunk
	row   int
}

func (r chunkRow) Lookup(qualifiedName string) (eval.Value, bool) {
	for i := range r.chunk.Columns {
		if !equalFoldName(r.chunk.Columns[i].Name, qualifiedName) {
			continue
		}
		return columnValue(&r.chunk.Columns[i], r.row), true
	}
	return eval.Value{}, false
}

func equalFoldName(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func columnValue(c *storage.ColumnVector, row int) eval.Value {
	switch c.Type {
	case ast.TypeInt:
		return eval.IntValue(int64(c.GetInt(row)))
	case ast.TypeString:
		return eval.StringValue(c.GetString(row))
	case ast.TypeBool:
		return eval.BoolValue(c.GetBool(row))
	case ast.TypeDecimal:
		return eval.DecimalValue(c.GetDecimal(row))
	default:
		return eval.Null()
	}
}

// selectionBitmap evaluates predicate (or passes every row, if nil) over
// chunk and returns one byte per row, non-zero where selected. The bitmap
// is backed by the query's arena (spec §9 "Arena lifetime": evaluator
// scratch allocations live within one query's arena) rather than a plain
// slice allocation.
func selectionBitmap(ctx *ExecutionContext, chunk *DataChunk, predicate ast.Expr) []byte {
	bitmap := ctx.Arena.Alloc(chunk.RowCount)
	for i := 0; i < chunk.RowCount; i++ {
		if predicate == nil || eval.Eval(predicate, chunkRow{chunk: chunk, row: i}).AsBool() {
			bitmap[i] = 1
		}
	}
	return bitmap
}

func anySelected(bitmap []byte) bool {
	for _, b := range bitmap {
		if b != 0 {
			return true
		}
	}
	return false
}

// buildRows constructs a new chunk containing only the rows of chunk
// selected in bitmap, in order, with independently owned column backing
// (DataChunk lifecycle rule).
func buildRows(chunk *DataChunk, bitmap []byte) *DataChunk {
	cols := make([]storage.ColumnVector, len(chunk.Columns))
	for i, c := range chunk.Columns {
		cols[i] = storage.NewColumnVector(c.Name, c.Type)
	}
	count := 0
	for idx, sel := range bitmap {
		if sel == 0 {
			continue
		}
		for i := range cols {
			cols[i].AppendFrom(&chunk.Columns[i], idx)
		}
		count++
	}
	return &DataChunk{Columns: cols, RowCount: count}
}
