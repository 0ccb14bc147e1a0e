package ast

import "bytes"

// Format renders a Node back to SQL text, case-normalized the way the
// tokenizer stores identifiers. Used for query logging, not parsing — the
// parser never consumes Format's output as input.
func Format(node Node) string {
	var buf bytes.Buffer
	writeNode(&buf, node)
	return buf.String()
}

func writeNode(buf *bytes.Buffer, node Node) {
	switch n := node.(type) {
	case *CreateTableStmt:
		writeCreateTable(buf, n)
	case *DropTableStmt:
		writeDropTable(buf, n)
	case *InsertStmt:
		writeInsert(buf, n)
	case *SelectStmt:
		writeSelect(buf, n)
	case *DeleteStmt:
		writeDelete(buf, n)
	case Expr:
		writeExpr(buf, n)
	}
}

func writeCreateTable(buf *bytes.Buffer, s *CreateTableStmt) {
	buf.WriteString("CREATE TABLE ")
	if s.IfNotExists {
		buf.WriteString("IF NOT EXISTS ")
	}
	buf.WriteString(s.Table)
	buf.WriteString(" (")
	for i, c := range s.Columns {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(c.Name)
		buf.WriteByte(' ')
		buf.WriteString(c.Type.String())
	}
	buf.WriteByte(')')
}

func writeDropTable(buf *bytes.Buffer, s *DropTableStmt) {
	buf.WriteString("DROP TABLE ")
	if s.IfExists {
		buf.WriteString("IF EXISTS ")
	}
	buf.WriteString(s.Table)
}

func writeInsert(buf *bytes.Buffer, s *InsertStmt) {
	buf.WriteString("INSERT INTO ")
	buf.WriteString(s.Table)
	if len(s.Columns) > 0 {
		buf.WriteString(" (")
		for i, c := range s.Columns {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(c)
		}
		buf.WriteByte(')')
	}
	buf.WriteString(" VALUES ")
	for i, row := range s.Rows {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteByte('(')
		for j, e := range row {
			if j > 0 {
				buf.WriteString(", ")
			}
			writeExpr(buf, e)
		}
		buf.WriteByte(')')
	}
}

func writeTableRef(buf *bytes.Buffer, t TableRef) {
	buf.WriteString(t.Table)
	if t.Alias != "" && t.Alias != t.Table {
		buf.WriteString(" AS ")
		buf.WriteString(t.Alias)
	}
}

func writeSelect(buf *bytes.Buffer, s *SelectStmt) {
	buf.WriteString("SELECT ")
	for i, p := range s.Projections {
		if i > 0 {
			buf.WriteString(", ")
		}
		if p.Star {
			buf.WriteByte('*')
		} else {
			writeExpr(buf, p.Expr)
		}
	}
	if s.From.Table != "" {
		buf.WriteString(" FROM ")
		writeTableRef(buf, s.From)
	}
	for _, j := range s.Joins {
		buf.WriteByte(' ')
		buf.WriteString(j.Type.String())
		buf.WriteString(" JOIN ")
		writeTableRef(buf, j.Table)
		buf.WriteString(" ON ")
		writeExpr(buf, j.Condition)
	}
	if s.Where != nil {
		buf.WriteString(" WHERE ")
		writeExpr(buf, s.Where)
	}
}

func writeDelete(buf *bytes.Buffer, s *DeleteStmt) {
	buf.WriteString("DELETE FROM ")
	writeTableRef(buf, s.From)
	if s.Where != nil {
		buf.WriteString(" WHERE ")
		writeExpr(buf, s.Where)
	}
}

func writeExpr(buf *bytes.Buffer, e Expr) {
	switch v := e.(type) {
	case *Literal:
		if v.Type == TypeString {
			buf.WriteByte('\'')
			buf.WriteString(v.Value)
			buf.WriteByte('\'')
		} else {
			buf.WriteString(v.Value)
		}
	case *ColumnRef:
		if v.Table != "" {
			buf.WriteString(v.Table)
			buf.WriteByte('.')
		}
		buf.WriteString(v.Column)
	case *UnaryOp:
		buf.WriteByte('-')
		writeExpr(buf, v.Operand)
	case *BinaryOp:
		writeExpr(buf, v.Left)
		buf.WriteByte(' ')
		buf.WriteString(binaryOperatorText(v.Op))
		buf.WriteByte(' ')
		writeExpr(buf, v.Right)
	case *FunctionCall:
		buf.WriteString(v.Name)
		buf.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeExpr(buf, a)
		}
		buf.WriteByte(')')
	}
}

func binaryOperatorText(op BinaryOperator) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return "?"
	}
}
