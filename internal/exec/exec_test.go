package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/catalog"
	"github.com/freeeve/minidb/internal/storage"
)

func newTestContext(t *testing.T) (*ExecutionContext, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Open(t.TempDir())
	require.NoError(t, err)
	return NewExecutionContext("test", storage.NewTableManager(cat)), cat
}

func makeTable(t *testing.T, cat *catalog.Catalog, tables *storage.TableManager, name string, cols []string, types []ast.DataType, rows [][]string) {
	t.Helper()
	schema := &catalog.Schema{TableName: name, ColumnNames: cols, ColumnTypes: types}
	require.NoError(t, cat.CreateTable(name, schema, false))
	table, err := tables.Open(name)
	require.NoError(t, err)
	storageRows := make([]storage.Row, len(rows))
	for i, r := range rows {
		storageRows[i] = storage.Row{Values: r}
	}
	if len(storageRows) > 0 {
		_, err = table.InsertRows(storageRows)
		require.NoError(t, err)
	}
}

func drainText(t *testing.T, op Operator, ctx *ExecutionContext) [][]string {
	t.Helper()
	require.NoError(t, op.Initialize(ctx))
	return drainAllRows(t, op, ctx)
}

func TestScan_ReadsAllRows(t *testing.T) {
	ctx, cat := newTestContext(t)
	makeTable(t, cat, ctx.Tables, "T1", []string{"N"}, []ast.DataType{ast.TypeInt},
		[][]string{{"1"}, {"2"}, {"3"}})

	scan := &Scan{TableName: "T1", Alias: "T1"}
	rows := drainText(t, scan, ctx)
	assert.Equal(t, [][]string{{"1"}, {"2"}, {"3"}}, rows)
	assert.Equal(t, []string{"T1.N"}, scan.OutputColumns())
}

func TestScan_ResetIsIdempotent(t *testing.T) {
	ctx, cat := newTestContext(t)
	makeTable(t, cat, ctx.Tables, "T1", []string{"N"}, []ast.DataType{ast.TypeInt},
		[][]string{{"1"}, {"2"}})

	scan := &Scan{TableName: "T1", Alias: "T1"}
	require.NoError(t, scan.Initialize(ctx))
	first := drainAllRows(t, scan, ctx)
	require.NoError(t, scan.Reset())
	second := drainAllRows(t, scan, ctx)
	assert.Equal(t, first, second)
}

func drainAllRows(t *testing.T, op Operator, ctx *ExecutionContext) [][]string {
	t.Helper()
	var rows [][]string
	for {
		chunk, err := op.Next(ctx)
		require.NoError(t, err)
		if chunk.RowCount == 0 {
			break
		}
		for r := 0; r < chunk.RowCount; r++ {
			row := make([]string, len(chunk.Columns))
			for i := range chunk.Columns {
				row[i] = formatValue(&chunk.Columns[i], chunk.Columns[i].Type, r)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func TestScan_EmptyTableProducesNoRows(t *testing.T) {
	ctx, cat := newTestContext(t)
	makeTable(t, cat, ctx.Tables, "EMPTY", []string{"N"}, []ast.DataType{ast.TypeInt}, nil)

	scan := &Scan{TableName: "EMPTY", Alias: "EMPTY"}
	rows := drainText(t, scan, ctx)
	assert.Empty(t, rows)
}

func TestFilter_KeepsOnlyMatchingRows(t *testing.T) {
	ctx, cat := newTestContext(t)
	makeTable(t, cat, ctx.Tables, "NUMS", []string{"N"}, []ast.DataType{ast.TypeInt},
		[][]string{{"10"}, {"20"}, {"30"}})

	scan := &Scan{TableName: "NUMS", Alias: "NUMS"}
	pred := &ast.BinaryOp{
		Op:    ast.OpGt,
		Left:  &ast.ColumnRef{Table: "NUMS", Column: "N"},
		Right: &ast.Literal{Type: ast.TypeInt, Value: "15"},
	}
	filter := &Filter{Child: scan, Predicate: pred}
	rows := drainText(t, filter, ctx)
	assert.Equal(t, [][]string{{"20"}, {"30"}}, rows)
}

func TestProjection_StarExpandsToAllChildColumns(t *testing.T) {
	ctx, cat := newTestContext(t)
	makeTable(t, cat, ctx.Tables, "T1", []string{"A", "B"}, []ast.DataType{ast.TypeInt, ast.TypeInt},
		[][]string{{"1", "2"}})

	scan := &Scan{TableName: "T1", Alias: "T1"}
	proj := &Projection{Child: scan, Columns: []string{"*"}}
	require.NoError(t, proj.Initialize(ctx))
	assert.Equal(t, []string{"T1.A", "T1.B"}, proj.OutputColumns())
}

func TestProjection_UnknownColumnIsNotFound(t *testing.T) {
	ctx, cat := newTestContext(t)
	makeTable(t, cat, ctx.Tables, "T1", []string{"A"}, []ast.DataType{ast.TypeInt}, [][]string{{"1"}})

	scan := &Scan{TableName: "T1", Alias: "T1"}
	proj := &Projection{Child: scan, Columns: []string{"T1.NOPE"}}
	err := proj.Initialize(ctx)
	assert.Error(t, err)
}

// TestNestedLoopJoin_NoPredicateProducesCartesianProduct matches the
// universal invariant: a join with no predicate emits |L|x|R| rows.
func TestNestedLoopJoin_NoPredicateProducesCartesianProduct(t *testing.T) {
	ctx, cat := newTestContext(t)
	makeTable(t, cat, ctx.Tables, "L", []string{"A"}, []ast.DataType{ast.TypeInt},
		[][]string{{"1"}, {"2"}, {"3"}})
	makeTable(t, cat, ctx.Tables, "R", []string{"B"}, []ast.DataType{ast.TypeInt},
		[][]string{{"10"}, {"20"}})

	join := &NestedLoopJoin{
		Left:  &Scan{TableName: "L", Alias: "L"},
		Right: &Scan{TableName: "R", Alias: "R"},
		Type:  ast.JoinInner,
	}
	rows := drainText(t, join, ctx)
	assert.Len(t, rows, 6)
}

func TestNestedLoopJoin_InnerJoinWithArithmeticPredicate(t *testing.T) {
	ctx, cat := newTestContext(t)
	makeTable(t, cat, ctx.Tables, "T1", []string{"C1"}, []ast.DataType{ast.TypeInt},
		[][]string{{"1"}, {"2"}, {"3"}})
	makeTable(t, cat, ctx.Tables, "T2", []string{"C2"}, []ast.DataType{ast.TypeInt},
		[][]string{{"1"}, {"2"}, {"3"}, {"4"}})

	cond := &ast.BinaryOp{
		Op:   ast.OpEq,
		Left: &ast.ColumnRef{Table: "T1", Column: "C1"},
		Right: &ast.BinaryOp{
			Op:    ast.OpAdd,
			Left:  &ast.ColumnRef{Table: "T2", Column: "C2"},
			Right: &ast.Literal{Type: ast.TypeInt, Value: "1"},
		},
	}
	join := &NestedLoopJoin{
		Left:      &Scan{TableName: "T1", Alias: "T1"},
		Right:     &Scan{TableName: "T2", Alias: "T2"},
		Condition: cond,
		Type:      ast.JoinInner,
	}
	rows := drainText(t, join, ctx)
	assert.Equal(t, [][]string{{"2", "1"}, {"3", "2"}}, rows)
}

func TestFinalResult_FormatsHeaderAndRows(t *testing.T) {
	ctx, cat := newTestContext(t)
	makeTable(t, cat, ctx.Tables, "T2", []string{"ID", "NAME", "SCORE"},
		[]ast.DataType{ast.TypeInt, ast.TypeString, ast.TypeDecimal},
		[][]string{{"1", "Alice", "95.5"}})

	scan := &Scan{TableName: "T2", Alias: "T2"}
	final := &FinalResult{Child: scan}
	require.NoError(t, final.Initialize(ctx))
	text, err := final.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2.ID | T2.NAME | T2.SCORE\n1 | Alice | 95.50\n", text)
}
