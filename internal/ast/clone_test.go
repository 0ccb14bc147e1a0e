package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClone_LiteralIsIndependentCopy(t *testing.T) {
	orig := &Literal{Type: TypeInt, Value: "5"}
	clone := orig.Clone().(*Literal)
	assert.Equal(t, orig, clone)

	clone.Value = "6"
	assert.Equal(t, "5", orig.Value, "mutating the clone must not affect the original")
}

func TestClone_ColumnRefIsIndependentCopy(t *testing.T) {
	orig := &ColumnRef{Table: "T1", Column: "C1"}
	clone := orig.Clone().(*ColumnRef)
	assert.Equal(t, orig, clone)

	clone.Column = "C2"
	assert.Equal(t, "C1", orig.Column)
}

func TestClone_BinaryOpDeepCopiesChildren(t *testing.T) {
	orig := &BinaryOp{
		Op:    OpAdd,
		Left:  &Literal{Type: TypeInt, Value: "1"},
		Right: &ColumnRef{Column: "C1"},
	}
	clone := orig.Clone().(*BinaryOp)
	assert.Equal(t, orig, clone)

	clone.Left.(*Literal).Value = "99"
	assert.Equal(t, "1", orig.Left.(*Literal).Value, "cloned tree must not alias the original's nodes")
}

func TestClone_NestedBinaryOpDeepCopiesAllLevels(t *testing.T) {
	orig := &BinaryOp{
		Op:   OpAnd,
		Left: &BinaryOp{Op: OpEq, Left: &ColumnRef{Column: "C1"}, Right: &Literal{Type: TypeInt, Value: "1"}},
		Right: &BinaryOp{Op: OpGt, Left: &ColumnRef{Column: "C2"}, Right: &Literal{Type: TypeInt, Value: "2"}},
	}
	clone := orig.Clone().(*BinaryOp)
	assert.Equal(t, orig, clone)

	innerLeft := clone.Left.(*BinaryOp).Left.(*ColumnRef)
	innerLeft.Column = "CHANGED"
	assert.Equal(t, "C1", orig.Left.(*BinaryOp).Left.(*ColumnRef).Column)
}

func TestClone_FunctionCallDeepCopiesArgs(t *testing.T) {
	orig := &FunctionCall{
		Name: "SUBSTR",
		Args: []Expr{
			&ColumnRef{Column: "NAME"},
			&Literal{Type: TypeInt, Value: "0"},
			&Literal{Type: TypeInt, Value: "3"},
		},
	}
	clone := orig.Clone().(*FunctionCall)
	assert.Equal(t, orig, clone)
	assert.Len(t, clone.Args, 3)

	clone.Args[0].(*ColumnRef).Column = "OTHER"
	assert.Equal(t, "NAME", orig.Args[0].(*ColumnRef).Column)

	// Mutating the clone's Args slice itself must not touch the original's.
	clone.Args = clone.Args[:1]
	assert.Len(t, orig.Args, 3)
}

func TestClone_UnaryOpDeepCopiesOperand(t *testing.T) {
	orig := &UnaryOp{Op: OpSub, Operand: &Literal{Type: TypeInt, Value: "5"}}
	clone := orig.Clone().(*UnaryOp)
	assert.Equal(t, orig, clone)

	clone.Operand.(*Literal).Value = "9"
	assert.Equal(t, "5", orig.Operand.(*Literal).Value)
}

func require_len(t *testing.T, args []Expr, n int) {
	t.Helper()
	assert.Len(t, args, n)
}
