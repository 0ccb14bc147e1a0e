// Package parser implements a recursive-descent parser that turns a token
// stream into the pure AST defined by package ast.
package parser

import (
	"fmt"
	"sync"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/lexer"
	"github.com/freeeve/minidb/internal/token"
)

// ParseError reports a parse failure at a source position.
type ParseError struct {
	Pos     token.Pos
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at line %d, col %d: %s", e.Pos.Line, e.Pos.Col, e.Message)
}

// Parser consumes tokens from a Lexer one lookahead ahead.
type Parser struct {
	lex *lexer.Lexer
	cur token.Item
	err error
}

// New returns a Parser over the given SQL source.
func New(sql string) (*Parser, error) {
	p := &Parser{lex: lexer.New(sql)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

var parserPool = sync.Pool{New: func() any { return &Parser{} }}

// Get returns a pooled Parser over sql, backed by a pooled Lexer (the same
// sync.Pool shape the teacher's own parser/lexer pair uses). Call Put when
// done to release both back to their pools.
func Get(sql string) (*Parser, error) {
	p := parserPool.Get().(*Parser)
	p.err = nil
	p.lex = lexer.Get(sql)
	if err := p.advance(); err != nil {
		lexer.Put(p.lex)
		p.lex = nil
		parserPool.Put(p)
		return nil, err
	}
	return p, nil
}

// Put returns p and its Lexer to their pools. p must not be used afterward.
func Put(p *Parser) {
	if p.lex != nil {
		lexer.Put(p.lex)
		p.lex = nil
	}
	parserPool.Put(p)
}

func (p *Parser) advance() error {
	item, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = item
	return nil
}

func (p *Parser) curIs(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.cur.Pos, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(k token.Kind) error {
	if !p.curIs(k) {
		return p.errorf("expected %s, got %s %q", k, p.cur.Kind, p.cur.Value)
	}
	return p.advance()
}

// ParseStatement parses exactly one statement, erroring if trailing tokens
// (other than an optional semicolon) remain.
func (p *Parser) ParseStatement() (ast.Statement, error) {
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.curIs(token.SEMICOLON) {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if !p.curIs(token.EOF) {
		return nil, p.errorf("unexpected token %s %q after statement", p.cur.Kind, p.cur.Value)
	}
	return stmt, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur.Kind {
	case token.CREATE:
		return p.parseCreateTable()
	case token.DROP:
		return p.parseDropTable()
	case token.INSERT:
		return p.parseInsert()
	case token.SELECT:
		return p.parseSelect()
	case token.DELETE:
		return p.parseDelete()
	default:
		return nil, p.errorf("expected a statement, got %s %q", p.cur.Kind, p.cur.Value)
	}
}

// parseIdent consumes an IDENTIFIER token and returns its (already
// upper-cased) text.
func (p *Parser) parseIdent() (string, error) {
	if !p.curIs(token.IDENTIFIER) {
		return "", p.errorf("expected identifier, got %s %q", p.cur.Kind, p.cur.Value)
	}
	name := p.cur.Value
	if err := p.advance(); err != nil {
		return "", err
	}
	return name, nil
}

// --- CREATE TABLE ---

func (p *Parser) parseCreateTable() (*ast.CreateTableStmt, error) {
	pos := p.cur.Pos
	if err := p.expect(token.CREATE); err != nil {
		return nil, err
	}
	if err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	stmt := &ast.CreateTableStmt{StartPos: pos}
	if p.curIs(token.IF) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(token.NOT); err != nil {
			return nil, err
		}
		if err := p.expect(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = name

	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	for {
		colName, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		typ, ok := ast.DataTypeFromKeyword(p.cur.Kind)
		if !ok {
			return nil, p.errorf("expected a column type, got %s %q", p.cur.Kind, p.cur.Value)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, ast.ColumnDef{Name: colName, Type: typ})
		if !p.curIs(token.COMMA) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return stmt, nil
}

// --- DROP TABLE ---

func (p *Parser) parseDropTable() (*ast.DropTableStmt, error) {
	pos := p.cur.Pos
	if err := p.expect(token.DROP); err != nil {
		return nil, err
	}
	if err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	stmt := &ast.DropTableStmt{StartPos: pos}
	if p.curIs(token.IF) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = name
	return stmt, nil
}

// --- INSERT ---

func (p *Parser) parseInsert() (*ast.InsertStmt, error) {
	pos := p.cur.Pos
	if err := p.expect(token.INSERT); err != nil {
		return nil, err
	}
	if err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt := &ast.InsertStmt{StartPos: pos, Table: table}

	if p.curIs(token.LPAREN) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			col, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
			if !p.curIs(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}

	if err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	for {
		row, err := p.parseTuple()
		if err != nil {
			return nil, err
		}
		stmt.Rows = append(stmt.Rows, row)
		if !p.curIs(token.COMMA) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseTuple() ([]ast.Expr, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var exprs []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.curIs(token.COMMA) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return exprs, nil
}

// --- SELECT ---

func (p *Parser) parseSelect() (*ast.SelectStmt, error) {
	pos := p.cur.Pos
	if err := p.expect(token.SELECT); err != nil {
		return nil, err
	}
	stmt := &ast.SelectStmt{StartPos: pos}

	if p.curIs(token.ASTERISK) {
		stmt.Projections = append(stmt.Projections, ast.SelectExpr{Star: true})
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.Projections = append(stmt.Projections, ast.SelectExpr{Expr: e})
			if !p.curIs(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	if !p.curIs(token.FROM) {
		return stmt, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	from, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.From = from

	for p.isJoinStart() {
		j, err := p.parseJoinClause()
		if err != nil {
			return nil, err
		}
		stmt.Joins = append(stmt.Joins, j)
	}

	if p.curIs(token.WHERE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	return stmt, nil
}

func (p *Parser) isJoinStart() bool {
	switch p.cur.Kind {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL:
		return true
	default:
		return false
	}
}

func (p *Parser) parseJoinClause() (ast.JoinClause, error) {
	pos := p.cur.Pos
	jt := ast.JoinInner
	switch p.cur.Kind {
	case token.INNER:
		if err := p.advance(); err != nil {
			return ast.JoinClause{}, err
		}
	case token.LEFT:
		jt = ast.JoinLeftOuter
		if err := p.advance(); err != nil {
			return ast.JoinClause{}, err
		}
		if p.curIs(token.OUTER) {
			if err := p.advance(); err != nil {
				return ast.JoinClause{}, err
			}
		}
	case token.RIGHT:
		jt = ast.JoinRightOuter
		if err := p.advance(); err != nil {
			return ast.JoinClause{}, err
		}
		if p.curIs(token.OUTER) {
			if err := p.advance(); err != nil {
				return ast.JoinClause{}, err
			}
		}
	case token.FULL:
		jt = ast.JoinFullOuter
		if err := p.advance(); err != nil {
			return ast.JoinClause{}, err
		}
		if p.curIs(token.OUTER) {
			if err := p.advance(); err != nil {
				return ast.JoinClause{}, err
			}
		}
	}
	if err := p.expect(token.JOIN); err != nil {
		return ast.JoinClause{}, err
	}
	ref, err := p.parseTableRef()
	if err != nil {
		return ast.JoinClause{}, err
	}
	if err := p.expect(token.ON); err != nil {
		return ast.JoinClause{}, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return ast.JoinClause{}, err
	}
	return ast.JoinClause{StartPos: pos, Type: jt, Table: ref, Condition: cond}, nil
}

func (p *Parser) parseTableRef() (ast.TableRef, error) {
	name, err := p.parseIdent()
	if err != nil {
		return ast.TableRef{}, err
	}
	ref := ast.TableRef{Table: name, Alias: name}
	if p.curIs(token.AS) {
		if err := p.advance(); err != nil {
			return ast.TableRef{}, err
		}
		alias, err := p.parseIdent()
		if err != nil {
			return ast.TableRef{}, err
		}
		ref.Alias = alias
		return ref, nil
	}
	if p.curIs(token.IDENTIFIER) {
		alias, err := p.parseIdent()
		if err != nil {
			return ast.TableRef{}, err
		}
		ref.Alias = alias
	}
	return ref, nil
}

// --- DELETE ---

func (p *Parser) parseDelete() (*ast.DeleteStmt, error) {
	pos := p.cur.Pos
	if err := p.expect(token.DELETE); err != nil {
		return nil, err
	}
	if err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	from, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt := &ast.DeleteStmt{StartPos: pos, From: from}
	if p.curIs(token.WHERE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	return stmt, nil
}
