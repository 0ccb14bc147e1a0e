package parser

import (
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/token"
)

// Expression grammar (low to high precedence):
//
//	expr     := or_expr
//	or_expr  := and_expr {OR and_expr}
//	and_expr := eq_expr {AND eq_expr}
//	eq_expr  := rel_expr {('='|'!=') rel_expr}
//	rel_expr := add_expr {('<'|'<='|'>'|'>=') add_expr}
//	add_expr := mul_expr {('+'|'-') mul_expr}
//	mul_expr := unary {('*'|'/') unary}
//	unary    := '-' unary | primary
//	primary  := literal | ident['.'ident] | func(args) | '(' expr ')'
//
// All binary operators are left-associative.

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseOrExpr() }

func (p *Parser) parseOrExpr() (ast.Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.OR) {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{StartPos: pos, Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAndExpr() (ast.Expr, error) {
	left, err := p.parseEqExpr()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.AND) {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEqExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{StartPos: pos, Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEqExpr() (ast.Expr, error) {
	left, err := p.parseRelExpr()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.EQ) || p.curIs(token.NEQ) {
		pos := p.cur.Pos
		op := ast.OpEq
		if p.curIs(token.NEQ) {
			op = ast.OpNeq
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseRelExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{StartPos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelExpr() (ast.Expr, error) {
	left, err := p.parseAddExpr()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOperator
		switch p.cur.Kind {
		case token.LT:
			op = ast.OpLt
		case token.LTE:
			op = ast.OpLte
		case token.GT:
			op = ast.OpGt
		case token.GTE:
			op = ast.OpGte
		default:
			return left, nil
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAddExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{StartPos: pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAddExpr() (ast.Expr, error) {
	left, err := p.parseMulExpr()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		pos := p.cur.Pos
		op := ast.OpAdd
		if p.curIs(token.MINUS) {
			op = ast.OpSub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMulExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{StartPos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMulExpr() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.ASTERISK) || p.curIs(token.SLASH) {
		pos := p.cur.Pos
		op := ast.OpMul
		if p.curIs(token.SLASH) {
			op = ast.OpDiv
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{StartPos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseUnary resolves the grammar's unary-minus open question (see
// SPEC_FULL.md §9): a leading '-' negates the following unary expression.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.curIs(token.MINUS) {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{StartPos: pos, Op: ast.OpSub, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.NUMBER_INT:
		v := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{StartPos: pos, Type: ast.TypeInt, Value: v}, nil
	case token.NUMBER_DECIMAL:
		v := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{StartPos: pos, Type: ast.TypeDecimal, Value: v}, nil
	case token.STRING_LITERAL:
		v := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{StartPos: pos, Type: ast.TypeString, Value: v}, nil
	case token.TRUE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{StartPos: pos, Type: ast.TypeBool, Value: "TRUE"}, nil
	case token.FALSE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Literal{StartPos: pos, Type: ast.TypeBool, Value: "FALSE"}, nil
	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case token.FUNC_SIN, token.FUNC_COS, token.FUNC_SUBSTR:
		name := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{StartPos: pos, Name: name, Args: args}, nil
	case token.IDENTIFIER:
		first := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curIs(token.DOT) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			col, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			return &ast.ColumnRef{StartPos: pos, Table: first, Column: col}, nil
		}
		if p.curIs(token.LPAREN) {
			// An unrecognized function name lexes as IDENTIFIER; a call-like
			// form with such a name still parses as a FunctionCall carrying
			// that name, and no error is raised here.
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return &ast.FunctionCall{StartPos: pos, Name: first, Args: args}, nil
		}
		return &ast.ColumnRef{StartPos: pos, Column: first}, nil
	default:
		return nil, p.errorf("unexpected token %s %q in expression", p.cur.Kind, p.cur.Value)
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if !p.curIs(token.RPAREN) {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.curIs(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}
