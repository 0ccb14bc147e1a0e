package eval

import (
	"math"
	"strings"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/logging"
)

var log = logging.For("Evaluator")

// Row resolves a (possibly table-qualified) column name to its Value for
// one row of a DataChunk. Lookup is case-insensitive, matching the
// tokenizer's upper-casing of identifiers.
type Row interface {
	Lookup(qualifiedName string) (Value, bool)
}

// MapRow is the simplest Row: a flat map keyed by "TABLE.COLUMN" or
// "COLUMN" for unqualified lookups, built once per emitted row.
type MapRow map[string]Value

func (m MapRow) Lookup(qualifiedName string) (Value, bool) {
	v, ok := m[strings.ToUpper(qualifiedName)]
	return v, ok
}

// Eval evaluates expr against row.
func Eval(expr ast.Expr, row Row) Value {
	switch e := expr.(type) {
	case *ast.Literal:
		return evalLiteral(e)
	case *ast.ColumnRef:
		return evalColumnRef(e, row)
	case *ast.UnaryOp:
		return evalUnary(e, row)
	case *ast.BinaryOp:
		return evalBinary(e, row)
	case *ast.FunctionCall:
		return evalFunction(e, row)
	default:
		log.Warn("unhandled expression node", "type", expr)
		return Null()
	}
}

func evalLiteral(l *ast.Literal) Value {
	switch l.Type {
	case ast.TypeInt:
		return IntValue(leadingInt(l.Value))
	case ast.TypeDecimal:
		return DecimalValue(leadingDecimal(l.Value))
	case ast.TypeBool:
		s := strings.ToUpper(l.Value)
		return BoolValue(s == "TRUE" || s == "1")
	case ast.TypeString:
		return StringValue(l.Value)
	default:
		return Null()
	}
}

func evalColumnRef(c *ast.ColumnRef, row Row) Value {
	name := c.Column
	if c.Table != "" {
		name = c.Table + "." + c.Column
	}
	v, ok := row.Lookup(name)
	if !ok {
		log.Warn("column not found during evaluation", "column", name)
		return Null()
	}
	return v
}

func evalUnary(u *ast.UnaryOp, row Row) Value {
	operand := Eval(u.Operand, row)
	switch u.Op {
	case ast.OpSub:
		if operand.Type == ast.TypeDecimal {
			return DecimalValue(-operand.AsDecimal())
		}
		return IntValue(-operand.AsInt())
	default:
		return Null()
	}
}

func evalBinary(b *ast.BinaryOp, row Row) Value {
	switch b.Op {
	case ast.OpAnd:
		return BoolValue(Eval(b.Left, row).AsBool() && Eval(b.Right, row).AsBool())
	case ast.OpOr:
		return BoolValue(Eval(b.Left, row).AsBool() || Eval(b.Right, row).AsBool())
	}

	left := Eval(b.Left, row)
	right := Eval(b.Right, row)

	switch b.Op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return BoolValue(compare(left, right, b.Op))
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		return arithmetic(left, right, b.Op)
	default:
		return Null()
	}
}

// isNumeric reports whether v's type participates in numeric coercion.
func isNumeric(v Value) bool { return v.Type == ast.TypeInt || v.Type == ast.TypeDecimal }

// compare implements Value::cmp (spec §4.7): numeric coercion if either
// side is numeric, lexicographic if both are string, else false for
// ordering and a strict type+value match for equality.
func compare(l, r Value, op ast.BinaryOperator) bool {
	switch {
	case isNumeric(l) || isNumeric(r):
		a, b := l.AsDecimal(), r.AsDecimal()
		switch op {
		case ast.OpEq:
			return math.Abs(a-b) < numericEqEpsilon
		case ast.OpNeq:
			return math.Abs(a-b) >= numericEqEpsilon
		case ast.OpLt:
			return a < b
		case ast.OpLte:
			return a <= b
		case ast.OpGt:
			return a > b
		case ast.OpGte:
			return a >= b
		}
	case l.Type == ast.TypeString && r.Type == ast.TypeString:
		switch op {
		case ast.OpEq:
			return l.Str == r.Str
		case ast.OpNeq:
			return l.Str != r.Str
		case ast.OpLt:
			return l.Str < r.Str
		case ast.OpLte:
			return l.Str <= r.Str
		case ast.OpGt:
			return l.Str > r.Str
		case ast.OpGte:
			return l.Str >= r.Str
		}
	case l.Type == ast.TypeBool && r.Type == ast.TypeBool:
		switch op {
		case ast.OpEq:
			return l.Bool == r.Bool
		case ast.OpNeq:
			return l.Bool != r.Bool
		}
		return false
	}
	return false
}

// arithmetic implements +, -, *, / : double if either side is DECIMAL,
// else i64. Division by zero returns the type's zero value (spec §4.7).
func arithmetic(l, r Value, op ast.BinaryOperator) Value {
	if l.Type == ast.TypeDecimal || r.Type == ast.TypeDecimal {
		a, b := l.AsDecimal(), r.AsDecimal()
		switch op {
		case ast.OpAdd:
			return DecimalValue(a + b)
		case ast.OpSub:
			return DecimalValue(a - b)
		case ast.OpMul:
			return DecimalValue(a * b)
		case ast.OpDiv:
			if b == 0 {
				return DecimalValue(0)
			}
			return DecimalValue(a / b)
		}
	}
	a, b := l.AsInt(), r.AsInt()
	switch op {
	case ast.OpAdd:
		return IntValue(a + b)
	case ast.OpSub:
		return IntValue(a - b)
	case ast.OpMul:
		return IntValue(a * b)
	case ast.OpDiv:
		if b == 0 {
			return IntValue(0)
		}
		return IntValue(a / b)
	}
	return Null()
}

func evalFunction(f *ast.FunctionCall, row Row) Value {
	switch f.Name {
	case "SIN":
		if len(f.Args) != 1 {
			return Null()
		}
		return DecimalValue(math.Sin(Eval(f.Args[0], row).AsDecimal()))
	case "COS":
		if len(f.Args) != 1 {
			return Null()
		}
		return DecimalValue(math.Cos(Eval(f.Args[0], row).AsDecimal()))
	case "SUBSTR":
		if len(f.Args) != 3 {
			return Null()
		}
		s := Eval(f.Args[0], row).AsString()
		start := int(Eval(f.Args[1], row).AsInt())
		length := int(Eval(f.Args[2], row).AsInt())
		return StringValue(substr(s, start, length))
	default:
		log.Warn("unknown function", "name", f.Name)
		return Null()
	}
}

// substr implements zero-based start with out-of-range start yielding an
// empty string and length clamped at the string's end (spec §4.7).
func substr(s string, start, length int) string {
	if start < 0 || start >= len(s) || length <= 0 {
		return ""
	}
	end := start + length
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}
