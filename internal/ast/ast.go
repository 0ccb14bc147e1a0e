// Package ast defines the pure syntax tree produced by the parser. Nodes
// carry no schema knowledge; qualification and type resolution happen in
// package compiler.
package ast

import "github.com/freeeve/minidb/internal/token"

// DataType is one of the four scalar types the engine supports.
type DataType int

const (
	TypeInt DataType = iota
	TypeString
	TypeBool
	TypeDecimal
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeString:
		return "STRING"
	case TypeBool:
		return "BOOL"
	case TypeDecimal:
		return "DECIMAL"
	default:
		return "UNKNOWN"
	}
}

// DataTypeFromKeyword maps a type keyword token to a DataType.
func DataTypeFromKeyword(k token.Kind) (DataType, bool) {
	switch k {
	case token.TYPE_INT:
		return TypeInt, true
	case token.TYPE_STRING:
		return TypeString, true
	case token.TYPE_BOOL:
		return TypeBool, true
	case token.TYPE_DECIMAL:
		return TypeDecimal, true
	default:
		return 0, false
	}
}

// Node is any AST node; Pos reports its starting position for error messages.
type Node interface {
	Pos() token.Pos
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
	Clone() Expr
}

// Statement is any top-level statement node.
type Statement interface {
	Node
	statementNode()
}

// Literal is a literal scalar value, as written in the source text. Its
// Go-native value is parsed by the compiler/evaluator, not here — the
// tokenizer and parser deal only in strings.
type Literal struct {
	StartPos token.Pos
	Type     DataType
	Value    string
}

func (*Literal) exprNode()          {}
func (l *Literal) Pos() token.Pos   { return l.StartPos }
func (l *Literal) Clone() Expr      { c := *l; return &c }

// ColumnRef is a (possibly table-qualified) column reference.
type ColumnRef struct {
	StartPos token.Pos
	Table    string // empty if unqualified
	Column   string
}

func (*ColumnRef) exprNode()        {}
func (c *ColumnRef) Pos() token.Pos { return c.StartPos }
func (c *ColumnRef) Clone() Expr    { cp := *c; return &cp }

// BinaryOperator enumerates the operators the grammar's binary productions
// recognize, across comparison, logical and arithmetic expressions.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

// BinaryOp is a left-associative binary expression.
type BinaryOp struct {
	StartPos token.Pos
	Op       BinaryOperator
	Left     Expr
	Right    Expr
}

func (*BinaryOp) exprNode()        {}
func (b *BinaryOp) Pos() token.Pos { return b.StartPos }
func (b *BinaryOp) Clone() Expr {
	return &BinaryOp{StartPos: b.StartPos, Op: b.Op, Left: b.Left.Clone(), Right: b.Right.Clone()}
}

// UnaryOp is a unary expression. Only unary minus is produced by the parser
// today (see SPEC_FULL.md's resolution of the unary-minus open question).
type UnaryOp struct {
	StartPos token.Pos
	Op       BinaryOperator // OpSub for unary minus
	Operand  Expr
}

func (*UnaryOp) exprNode()        {}
func (u *UnaryOp) Pos() token.Pos { return u.StartPos }
func (u *UnaryOp) Clone() Expr {
	return &UnaryOp{StartPos: u.StartPos, Op: u.Op, Operand: u.Operand.Clone()}
}

// FunctionCall is a call to one of the three closed built-in functions.
type FunctionCall struct {
	StartPos token.Pos
	Name     string // upper-cased: SIN, COS, SUBSTR
	Args     []Expr
}

func (*FunctionCall) exprNode()        {}
func (f *FunctionCall) Pos() token.Pos { return f.StartPos }
func (f *FunctionCall) Clone() Expr {
	args := make([]Expr, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.Clone()
	}
	return &FunctionCall{StartPos: f.StartPos, Name: f.Name, Args: args}
}

// ColumnDef is one column in a CREATE TABLE's definition list.
type ColumnDef struct {
	Name string
	Type DataType
}

// CreateTableStmt is CREATE TABLE [IF NOT EXISTS] name (col type, ...).
type CreateTableStmt struct {
	StartPos    token.Pos
	Table       string
	IfNotExists bool
	Columns     []ColumnDef
}

func (*CreateTableStmt) statementNode()   {}
func (c *CreateTableStmt) Pos() token.Pos { return c.StartPos }

// DropTableStmt is DROP TABLE [IF EXISTS] name.
type DropTableStmt struct {
	StartPos token.Pos
	Table    string
	IfExists bool
}

func (*DropTableStmt) statementNode()   {}
func (d *DropTableStmt) Pos() token.Pos { return d.StartPos }

// InsertStmt is INSERT INTO name [(cols...)] VALUES (expr, ...), ...
type InsertStmt struct {
	StartPos token.Pos
	Table    string
	Columns  []string // nil means "all columns, schema order"
	Rows     [][]Expr
}

func (*InsertStmt) statementNode()   {}
func (i *InsertStmt) Pos() token.Pos { return i.StartPos }

// JoinType enumerates the join kinds the grammar accepts.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeftOuter
	JoinRightOuter
	JoinFullOuter
)

func (j JoinType) String() string {
	switch j {
	case JoinInner:
		return "INNER"
	case JoinLeftOuter:
		return "LEFT OUTER"
	case JoinRightOuter:
		return "RIGHT OUTER"
	case JoinFullOuter:
		return "FULL OUTER"
	default:
		return "UNKNOWN"
	}
}

// TableRef names a table and its (explicit or implicit) alias.
type TableRef struct {
	Table string
	Alias string // equals Table when no alias was given
}

// JoinClause is one JOIN ... ON ... in a SELECT's FROM list.
type JoinClause struct {
	StartPos  token.Pos
	Type      JoinType
	Table     TableRef
	Condition Expr // nil is not produced by this grammar; ON is mandatory
}

// SelectExpr is one item in a SELECT's projection list: either "*" (Star
// true, Expr nil) or a single expression.
type SelectExpr struct {
	Star bool
	Expr Expr
}

// SelectStmt is SELECT proj FROM table joins* [WHERE expr].
type SelectStmt struct {
	StartPos    token.Pos
	Projections []SelectExpr
	From        TableRef
	Joins       []JoinClause
	Where       Expr
}

func (*SelectStmt) statementNode()   {}
func (s *SelectStmt) Pos() token.Pos { return s.StartPos }

// DeleteStmt is DELETE FROM table [WHERE expr].
type DeleteStmt struct {
	StartPos token.Pos
	From     TableRef
	Where    Expr
}

func (*DeleteStmt) statementNode()   {}
func (d *DeleteStmt) Pos() token.Pos { return d.StartPos }
