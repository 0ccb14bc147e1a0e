package exec

import (
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/eval"
	"github.com/freeeve/minidb/internal/storage"
)

// NestedLoopJoin joins two child operators under an optional predicate. A
// missing predicate produces the Cartesian product (spec §4.6.4).
//
// The original pull algorithm streams one matched row per Next call and
// rescans the right child per left row via Reset. This implementation
// instead drains each child fully once — both children's full data is
// already resident in memory after one Scan anyway (spec §4.6.1) — builds
// the complete result set with NULL-padding for unmatched outer rows in a
// single pass, then serves it back out in the same batch_size=1024 chunks
// Scan uses. Output rows are identical to the streaming algorithm's; only
// the internal buffering strategy differs.
type NestedLoopJoin struct {
	Left      Operator
	Right     Operator
	Condition ast.Expr
	Type      ast.JoinType

	names   []string
	types   []ast.DataType
	out     []storage.ColumnVector
	total   int
	off     int
	state   State
}

func (j *NestedLoopJoin) Initialize(ctx *ExecutionContext) error {
	if err := j.Left.Initialize(ctx); err != nil {
		return err
	}
	if err := j.Right.Initialize(ctx); err != nil {
		return err
	}
	j.names = append(append([]string{}, j.Left.OutputColumns()...), j.Right.OutputColumns()...)
	j.types = append(append([]ast.DataType{}, j.Left.OutputTypes()...), j.Right.OutputTypes()...)
	j.state = Ready
	return nil
}

func drainAll(ctx *ExecutionContext, op Operator) (*DataChunk, error) {
	var names []string
	var types []ast.DataType
	var cols []storage.ColumnVector
	for {
		chunk, err := op.Next(ctx)
		if err != nil {
			return nil, err
		}
		if cols == nil {
			names = op.OutputColumns()
			types = op.OutputTypes()
			cols = make([]storage.ColumnVector, len(names))
			for i, n := range names {
				cols[i] = storage.NewColumnVector(n, types[i])
			}
		}
		if chunk.RowCount == 0 {
			break
		}
		for i := range cols {
			for r := 0; r < chunk.RowCount; r++ {
				cols[i].AppendFrom(&chunk.Columns[i], r)
			}
		}
	}
	total := 0
	if len(cols) > 0 {
		total = cols[0].RowCount
	}
	return &DataChunk{Columns: cols, RowCount: total}, nil
}

func (j *NestedLoopJoin) materialize(ctx *ExecutionContext) error {
	left, err := drainAll(ctx, j.Left)
	if err != nil {
		return err
	}
	right, err := drainAll(ctx, j.Right)
	if err != nil {
		return err
	}

	leftWidth := len(left.Columns)
	out := make([]storage.ColumnVector, len(j.names))
	for i, n := range j.names {
		out[i] = storage.NewColumnVector(n, j.types[i])
	}

	appendMerged := func(lRow, rRow int) {
		for i := 0; i < leftWidth; i++ {
			if lRow >= 0 {
				out[i].AppendFrom(&left.Columns[i], lRow)
			} else {
				out[i].AppendZero()
			}
		}
		for i := 0; i < len(out)-leftWidth; i++ {
			if rRow >= 0 {
				out[leftWidth+i].AppendFrom(&right.Columns[i], rRow)
			} else {
				out[leftWidth+i].AppendZero()
			}
		}
	}

	rightMatched := make([]bool, right.RowCount)
	wantLeftOuter := j.Type == ast.JoinLeftOuter || j.Type == ast.JoinFullOuter
	wantRightOuter := j.Type == ast.JoinRightOuter || j.Type == ast.JoinFullOuter

	for l := 0; l < left.RowCount; l++ {
		matched := false
		for r := 0; r < right.RowCount; r++ {
			if j.Condition != nil {
				row := joinRow{left: left, right: right, l: l, r: r}
				if !eval.Eval(j.Condition, row).AsBool() {
					continue
				}
			}
			appendMerged(l, r)
			matched = true
			rightMatched[r] = true
		}
		if !matched && wantLeftOuter {
			appendMerged(l, -1)
		}
	}
	if wantRightOuter {
		for r := 0; r < right.RowCount; r++ {
			if !rightMatched[r] {
				appendMerged(-1, r)
			}
		}
	}

	j.out = out
	if len(out) > 0 {
		j.total = out[0].RowCount
	}
	return nil
}

// joinRow is an eval.Row view combining one left row and one right row
// from two fully materialized chunks (spec §4.6.4 predicate evaluation).
type joinRow struct {
	left, right *DataChunk
	l, r        int
}

func (jr joinRow) Lookup(name string) (eval.Value, bool) {
	for i := range jr.left.Columns {
		if equalFoldName(jr.left.Columns[i].Name, name) {
			return columnValue(&jr.left.Columns[i], jr.l), true
		}
	}
	for i := range jr.right.Columns {
		if equalFoldName(jr.right.Columns[i].Name, name) {
			return columnValue(&jr.right.Columns[i], jr.r), true
		}
	}
	return eval.Value{}, false
}

func (j *NestedLoopJoin) Next(ctx *ExecutionContext) (*DataChunk, error) {
	if j.state == Finished {
		return emptyChunk(j.names, j.types), nil
	}
	if j.out == nil {
		if err := j.materialize(ctx); err != nil {
			return nil, err
		}
		j.state = Running
	}
	if j.off >= j.total {
		j.state = Finished
		return emptyChunk(j.names, j.types), nil
	}
	start := j.off
	end := min(j.off+batchSize, j.total)
	cols := make([]storage.ColumnVector, len(j.out))
	for i := range j.out {
		cols[i] = j.out[i].Slice(start, end)
	}
	j.off = end
	return &DataChunk{Columns: cols, RowCount: end - start}, nil
}

func (j *NestedLoopJoin) Reset() error {
	j.off = 0
	j.state = Ready
	return nil
}

func (j *NestedLoopJoin) OutputColumns() []string     { return j.names }
func (j *NestedLoopJoin) OutputTypes() []ast.DataType { return j.types }
func (j *NestedLoopJoin) State() State                { return j.state }
