package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/catalog"
	"github.com/freeeve/minidb/internal/parser"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Open(t.TempDir())
	require.NoError(t, err)
	return cat
}

func parseStmt(t *testing.T, sql string) ast.Statement {
	t.Helper()
	p, err := parser.New(sql)
	require.NoError(t, err)
	stmt, err := p.ParseStatement()
	require.NoError(t, err)
	return stmt
}

func TestCompileCreateTable_PassesColumnsThrough(t *testing.T) {
	cat := newTestCatalog(t)
	c := New(cat)
	stmt, err := c.Compile(parseStmt(t, "CREATE TABLE t1 (a INT, b STRING);"))
	require.NoError(t, err)
	ct := stmt.(*CreateTableStatement)
	assert.Equal(t, "T1", ct.TableName)
	assert.Len(t, ct.Columns, 2)
}

func TestCompileInsert_UnknownTableIsNotFound(t *testing.T) {
	cat := newTestCatalog(t)
	c := New(cat)
	_, err := c.Compile(parseStmt(t, "INSERT INTO nope VALUES (1);"))
	assert.Error(t, err)
}

func TestCompileInsert_ColumnSubsetResolvesIndices(t *testing.T) {
	cat := newTestCatalog(t)
	require.NoError(t, cat.CreateTable("T1", &catalog.Schema{
		TableName: "T1", ColumnNames: []string{"A", "B", "C"},
		ColumnTypes: []ast.DataType{ast.TypeInt, ast.TypeInt, ast.TypeInt},
	}, false))

	c := New(cat)
	stmt, err := c.Compile(parseStmt(t, "INSERT INTO t1 (c, a) VALUES (3, 1);"))
	require.NoError(t, err)
	ins := stmt.(*InsertStatement)
	assert.Equal(t, []int{2, 0}, ins.ColumnIndices)
}

func TestCompileInsert_UnknownColumnIsNotFound(t *testing.T) {
	cat := newTestCatalog(t)
	require.NoError(t, cat.CreateTable("T1", &catalog.Schema{
		TableName: "T1", ColumnNames: []string{"A"}, ColumnTypes: []ast.DataType{ast.TypeInt},
	}, false))

	c := New(cat)
	_, err := c.Compile(parseStmt(t, "INSERT INTO t1 (nope) VALUES (1);"))
	assert.Error(t, err)
}

func TestCompileInsert_RowArityMismatchIsInvalidArgument(t *testing.T) {
	cat := newTestCatalog(t)
	require.NoError(t, cat.CreateTable("T1", &catalog.Schema{
		TableName: "T1", ColumnNames: []string{"A", "B"}, ColumnTypes: []ast.DataType{ast.TypeInt, ast.TypeInt},
	}, false))

	c := New(cat)
	_, err := c.Compile(parseStmt(t, "INSERT INTO t1 VALUES (1);"))
	assert.Error(t, err)
}

func TestCompileSelect_StarResolvesAgainstSchema(t *testing.T) {
	cat := newTestCatalog(t)
	require.NoError(t, cat.CreateTable("T1", &catalog.Schema{
		TableName: "T1", ColumnNames: []string{"A"}, ColumnTypes: []ast.DataType{ast.TypeInt},
	}, false))

	c := New(cat)
	stmt, err := c.Compile(parseStmt(t, "SELECT * FROM t1;"))
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	assert.True(t, sel.Star)
	assert.Equal(t, "T1", sel.Alias)
}

func TestCompileSelect_JoinQualifiesAndDetectsAmbiguity(t *testing.T) {
	cat := newTestCatalog(t)
	require.NoError(t, cat.CreateTable("A", &catalog.Schema{
		TableName: "A", ColumnNames: []string{"X"}, ColumnTypes: []ast.DataType{ast.TypeInt},
	}, false))
	require.NoError(t, cat.CreateTable("B", &catalog.Schema{
		TableName: "B", ColumnNames: []string{"X"}, ColumnTypes: []ast.DataType{ast.TypeInt},
	}, false))

	c := New(cat)
	stmt, err := c.Compile(parseStmt(t, "SELECT * FROM a JOIN b ON a.x = b.x;"))
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	require.Len(t, sel.Joins, 1)
	cond := sel.Joins[0].Condition.(*ast.BinaryOp)
	assert.Equal(t, "A", cond.Left.(*ast.ColumnRef).Table)
	assert.Equal(t, "B", cond.Right.(*ast.ColumnRef).Table)

	_, err = c.Compile(parseStmt(t, "SELECT * FROM a JOIN b ON a.x = b.x WHERE x > 0;"))
	assert.Error(t, err, "unqualified x matches both a and b")
}

func TestCompileSelect_ProjectionListRejectsNonColumnExpr(t *testing.T) {
	cat := newTestCatalog(t)
	require.NoError(t, cat.CreateTable("T1", &catalog.Schema{
		TableName: "T1", ColumnNames: []string{"A"}, ColumnTypes: []ast.DataType{ast.TypeInt},
	}, false))

	c := New(cat)
	_, err := c.Compile(parseStmt(t, "SELECT a + 1 FROM t1;"))
	assert.Error(t, err)
}

func TestCompileDelete_WhereIsResolvedAgainstSingleTable(t *testing.T) {
	cat := newTestCatalog(t)
	require.NoError(t, cat.CreateTable("T1", &catalog.Schema{
		TableName: "T1", ColumnNames: []string{"A"}, ColumnTypes: []ast.DataType{ast.TypeInt},
	}, false))

	c := New(cat)
	stmt, err := c.Compile(parseStmt(t, "DELETE FROM t1 WHERE a > 1;"))
	require.NoError(t, err)
	del := stmt.(*DeleteStatement)
	ref := del.Where.(*ast.BinaryOp).Left.(*ast.ColumnRef)
	assert.Equal(t, "T1", ref.Table)
}
