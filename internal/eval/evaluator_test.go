package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freeeve/minidb/internal/ast"
)

func TestValue_AsIntConversions(t *testing.T) {
	assert.Equal(t, int64(3), DecimalValue(3.9).AsInt())
	assert.Equal(t, int64(1), BoolValue(true).AsInt())
	assert.Equal(t, int64(0), BoolValue(false).AsInt())
	assert.Equal(t, int64(42), StringValue("42abc").AsInt())
	assert.Equal(t, int64(0), StringValue("abc").AsInt())
	assert.Equal(t, int64(0), Null().AsInt())
}

func TestValue_AsDecimalConversions(t *testing.T) {
	assert.InDelta(t, 5.0, IntValue(5).AsDecimal(), 1e-9)
	assert.InDelta(t, 1.0, BoolValue(true).AsDecimal(), 1e-9)
	assert.InDelta(t, 3.5, StringValue("3.5x").AsDecimal(), 1e-9)
}

func TestValue_AsBoolConversions(t *testing.T) {
	assert.True(t, IntValue(1).AsBool())
	assert.False(t, IntValue(0).AsBool())
	assert.True(t, StringValue("true").AsBool())
	assert.True(t, StringValue(" 1 ").AsBool())
	assert.False(t, StringValue("nope").AsBool())
	assert.False(t, Null().AsBool())
}

func TestValue_AsStringConversions(t *testing.T) {
	assert.Equal(t, "42", IntValue(42).AsString())
	assert.Equal(t, "true", BoolValue(true).AsString())
	assert.Equal(t, "3.50", DecimalValue(3.5).AsString())
	assert.Equal(t, "", Null().AsString())
}

func TestEval_ColumnRefMissingYieldsNull(t *testing.T) {
	v := Eval(&ast.ColumnRef{Column: "MISSING"}, MapRow{})
	assert.True(t, v.IsNull)
}

func TestEval_ColumnRefQualifiedLookup(t *testing.T) {
	row := MapRow{"T1.C1": IntValue(7)}
	v := Eval(&ast.ColumnRef{Table: "T1", Column: "C1"}, row)
	assert.Equal(t, int64(7), v.Int)
}

func TestEval_UnaryMinus(t *testing.T) {
	v := Eval(&ast.UnaryOp{Op: ast.OpSub, Operand: &ast.Literal{Type: ast.TypeInt, Value: "5"}}, MapRow{})
	assert.Equal(t, int64(-5), v.Int)

	v = Eval(&ast.UnaryOp{Op: ast.OpSub, Operand: &ast.Literal{Type: ast.TypeDecimal, Value: "1.5"}}, MapRow{})
	assert.InDelta(t, -1.5, v.Decimal, 1e-9)
}

func TestEval_LogicalShortCircuitsToBool(t *testing.T) {
	row := MapRow{}
	v := Eval(&ast.BinaryOp{
		Op:   ast.OpAnd,
		Left: &ast.Literal{Type: ast.TypeBool, Value: "TRUE"},
		Right: &ast.Literal{Type: ast.TypeBool, Value: "FALSE"},
	}, row)
	assert.Equal(t, ast.TypeBool, v.Type)
	assert.False(t, v.Bool)
}

func TestEval_NumericEqualityUsesEpsilon(t *testing.T) {
	v := Eval(&ast.BinaryOp{
		Op:   ast.OpEq,
		Left: &ast.Literal{Type: ast.TypeInt, Value: "1"},
		Right: &ast.Literal{Type: ast.TypeDecimal, Value: "1.0"},
	}, MapRow{})
	assert.True(t, v.Bool)
}

func TestEval_ArithmeticPromotesToDecimal(t *testing.T) {
	v := Eval(&ast.BinaryOp{
		Op:   ast.OpAdd,
		Left: &ast.Literal{Type: ast.TypeInt, Value: "1"},
		Right: &ast.Literal{Type: ast.TypeDecimal, Value: "2.5"},
	}, MapRow{})
	assert.Equal(t, ast.TypeDecimal, v.Type)
	assert.InDelta(t, 3.5, v.Decimal, 1e-9)
}

func TestEval_DivisionByZeroYieldsZero(t *testing.T) {
	vi := Eval(&ast.BinaryOp{
		Op:   ast.OpDiv,
		Left: &ast.Literal{Type: ast.TypeInt, Value: "5"},
		Right: &ast.Literal{Type: ast.TypeInt, Value: "0"},
	}, MapRow{})
	assert.Equal(t, int64(0), vi.Int)

	vd := Eval(&ast.BinaryOp{
		Op:   ast.OpDiv,
		Left: &ast.Literal{Type: ast.TypeDecimal, Value: "5.0"},
		Right: &ast.Literal{Type: ast.TypeDecimal, Value: "0.0"},
	}, MapRow{})
	assert.InDelta(t, 0.0, vd.Decimal, 1e-9)
}

func TestEval_StringComparisonIsLexicographic(t *testing.T) {
	v := Eval(&ast.BinaryOp{
		Op:   ast.OpLt,
		Left: &ast.Literal{Type: ast.TypeString, Value: "abc"},
		Right: &ast.Literal{Type: ast.TypeString, Value: "abd"},
	}, MapRow{})
	assert.True(t, v.Bool)
}

func TestEval_FunctionSinCos(t *testing.T) {
	v := Eval(&ast.FunctionCall{Name: "SIN", Args: []ast.Expr{&ast.Literal{Type: ast.TypeDecimal, Value: "0"}}}, MapRow{})
	assert.InDelta(t, 0.0, v.Decimal, 1e-9)

	v = Eval(&ast.FunctionCall{Name: "COS", Args: []ast.Expr{&ast.Literal{Type: ast.TypeDecimal, Value: "0"}}}, MapRow{})
	assert.InDelta(t, 1.0, v.Decimal, 1e-9)
}

func TestEval_FunctionArityMismatchYieldsNull(t *testing.T) {
	v := Eval(&ast.FunctionCall{Name: "SIN", Args: []ast.Expr{}}, MapRow{})
	assert.True(t, v.IsNull)

	v = Eval(&ast.FunctionCall{Name: "SUBSTR", Args: []ast.Expr{&ast.Literal{Type: ast.TypeString, Value: "abc"}}}, MapRow{})
	assert.True(t, v.IsNull)
}

func TestEval_UnknownFunctionYieldsNull(t *testing.T) {
	v := Eval(&ast.FunctionCall{Name: "NOPE", Args: nil}, MapRow{})
	assert.True(t, v.IsNull)
}

func TestSubstr(t *testing.T) {
	assert.Equal(t, "bcd", substr("abcdef", 1, 3))
	assert.Equal(t, "", substr("abc", -1, 2))
	assert.Equal(t, "", substr("abc", 10, 2))
	assert.Equal(t, "c", substr("abc", 2, 5))
	assert.Equal(t, "", substr("abc", 0, 0))
}

func TestEval_SubstrFunction(t *testing.T) {
	v := Eval(&ast.FunctionCall{Name: "SUBSTR", Args: []ast.Expr{
		&ast.Literal{Type: ast.TypeString, Value: "hello"},
		&ast.Literal{Type: ast.TypeInt, Value: "1"},
		&ast.Literal{Type: ast.TypeInt, Value: "3"},
	}}, MapRow{})
	assert.Equal(t, "ell", v.Str)
}
