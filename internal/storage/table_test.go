package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/catalog"
)

func newTestTable(t *testing.T, schema *catalog.Schema) *Table {
	t.Helper()
	return &Table{schema: schema, dir: t.TempDir()}
}

func testSchema() *catalog.Schema {
	return &catalog.Schema{
		TableName:   "T1",
		ColumnNames: []string{"C1", "C2"},
		ColumnTypes: []ast.DataType{ast.TypeInt, ast.TypeString},
	}
}

func TestTable_ScanAllOnNeverInsertedTableIsEmpty(t *testing.T) {
	table := newTestTable(t, testSchema())
	cols, err := table.ScanAll()
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, 0, cols[0].RowCount)
}

func TestTable_InsertThenScanRoundTrips(t *testing.T) {
	table := newTestTable(t, testSchema())
	count, err := table.InsertRows([]Row{
		{Values: []string{"1", "a"}},
		{Values: []string{"2", "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	cols, err := table.ScanAll()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, cols[0].Ints)
	assert.Equal(t, []string{"a", "b"}, cols[1].Strings)
}

func TestTable_InsertArityMismatchRejectedBeforeWriting(t *testing.T) {
	table := newTestTable(t, testSchema())
	_, err := table.InsertRows([]Row{{Values: []string{"1"}}})
	assert.Error(t, err)

	count, err := table.RowCount()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestTable_ScanColumnsRestrictsToRequestedSet(t *testing.T) {
	table := newTestTable(t, testSchema())
	_, err := table.InsertRows([]Row{{Values: []string{"1", "a"}}})
	require.NoError(t, err)

	cols, err := table.ScanColumns([]string{"C2"})
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "C2", cols[0].Name)
}

func TestTable_ScanColumnsUnknownColumnErrors(t *testing.T) {
	table := newTestTable(t, testSchema())
	_, err := table.ScanColumns([]string{"NOPE"})
	assert.Error(t, err)
}

func TestTable_DeleteRowsKeepsOnlyMarkedRows(t *testing.T) {
	table := newTestTable(t, testSchema())
	_, err := table.InsertRows([]Row{
		{Values: []string{"1", "a"}},
		{Values: []string{"2", "b"}},
		{Values: []string{"3", "c"}},
	})
	require.NoError(t, err)

	count, err := table.DeleteRows([]bool{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	cols, err := table.ScanAll()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 3}, cols[0].Ints)
	assert.Equal(t, []string{"a", "c"}, cols[1].Strings)
}

func TestTable_RowCountReflectsPersistedState(t *testing.T) {
	table := newTestTable(t, testSchema())
	count, err := table.RowCount()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = table.InsertRows([]Row{{Values: []string{"1", "a"}}})
	require.NoError(t, err)

	count, err = table.RowCount()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
