// Package eval implements the typed expression evaluator: Value, its lossy
// scalar conversions, and an Evaluator that walks ast.Expr trees against a
// row of named Values.
package eval

import (
	"strconv"
	"strings"

	"github.com/freeeve/minidb/internal/ast"
)

// Value is a tagged scalar. Exactly one field is meaningful, selected by
// Type, unless IsNull is set (spec §3/§4.7).
type Value struct {
	Type    ast.DataType
	IsNull  bool
	Int     int64
	Str     string
	Bool    bool
	Decimal float64
}

// Null returns the null sentinel value used for lookup failures and
// malformed calls; it never arises from user SQL otherwise (spec §4.7).
func Null() Value { return Value{IsNull: true} }

func IntValue(v int64) Value        { return Value{Type: ast.TypeInt, Int: v} }
func StringValue(v string) Value    { return Value{Type: ast.TypeString, Str: v} }
func BoolValue(v bool) Value        { return Value{Type: ast.TypeBool, Bool: v} }
func DecimalValue(v float64) Value  { return Value{Type: ast.TypeDecimal, Decimal: v} }

// AsInt applies the engine's lossy INT conversion rules: DECIMAL truncates,
// STRING parses a leading integer (0 on failure), BOOL maps true=1/false=0.
func (v Value) AsInt() int64 {
	if v.IsNull {
		return 0
	}
	switch v.Type {
	case ast.TypeInt:
		return v.Int
	case ast.TypeDecimal:
		return int64(v.Decimal)
	case ast.TypeBool:
		if v.Bool {
			return 1
		}
		return 0
	case ast.TypeString:
		return leadingInt(v.Str)
	default:
		return 0
	}
}

// AsDecimal converts to double under the same family of rules as AsInt.
func (v Value) AsDecimal() float64 {
	if v.IsNull {
		return 0
	}
	switch v.Type {
	case ast.TypeInt:
		return float64(v.Int)
	case ast.TypeDecimal:
		return v.Decimal
	case ast.TypeBool:
		if v.Bool {
			return 1
		}
		return 0
	case ast.TypeString:
		return leadingDecimal(v.Str)
	default:
		return 0
	}
}

// AsBool coerces to boolean: BOOL is itself, numeric types are nonzero,
// STRING is "TRUE"/"1" case-insensitively, anything else false.
func (v Value) AsBool() bool {
	if v.IsNull {
		return false
	}
	switch v.Type {
	case ast.TypeBool:
		return v.Bool
	case ast.TypeInt:
		return v.Int != 0
	case ast.TypeDecimal:
		return v.Decimal != 0
	case ast.TypeString:
		s := strings.ToUpper(strings.TrimSpace(v.Str))
		return s == "TRUE" || s == "1"
	default:
		return false
	}
}

// AsString renders the value's canonical textual form, used by FinalResult
// formatting and by INSERT's value-stringification path.
func (v Value) AsString() string {
	if v.IsNull {
		return ""
	}
	switch v.Type {
	case ast.TypeString:
		return v.Str
	case ast.TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case ast.TypeBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ast.TypeDecimal:
		return strconv.FormatFloat(v.Decimal, 'f', 2, 64)
	default:
		return ""
	}
}

// numericEqEpsilon is the tolerance for INT/DECIMAL equality (spec §3).
const numericEqEpsilon = 1e-9

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func leadingDecimal(s string) float64 {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	seenDot := false
	for i < len(s) {
		if s[i] >= '0' && s[i] <= '9' {
			i++
			continue
		}
		if s[i] == '.' && !seenDot {
			seenDot = true
			i++
			continue
		}
		break
	}
	if i == start {
		return 0
	}
	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0
	}
	return f
}
