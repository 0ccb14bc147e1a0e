package compiler

import (
	"strings"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/catalog"
	"github.com/freeeve/minidb/internal/status"
)

// columnResolver maps a (possibly qualified) ast.ColumnRef to the alias it
// resolves against, or an error if it cannot be resolved unambiguously.
type columnResolver func(*ast.ColumnRef) (string, error)

// singleTableResolver accepts a bare column name or one qualified by
// either the table's alias or its real name, case-insensitively.
func singleTableResolver(schema *catalog.Schema, alias string) columnResolver {
	return func(c *ast.ColumnRef) (string, error) {
		if c.Table != "" && !strings.EqualFold(c.Table, alias) && !strings.EqualFold(c.Table, schema.TableName) {
			return "", status.NotFoundf("table %s is not part of this query", c.Table)
		}
		if schema.IndexOf(c.Column) < 0 {
			return "", status.NotFoundf("column %s does not exist on table %s", c.Column, schema.TableName)
		}
		return alias, nil
	}
}

// multiTableResolver implements the JOIN compilation resolution rule (spec
// §4.3): a qualified reference must match one alias/table-name and that
// table's schema must contain the column; an unqualified reference must
// match exactly one of the accumulated schemas.
func multiTableResolver(schemas []*catalog.Schema, aliases []string) columnResolver {
	return func(c *ast.ColumnRef) (string, error) {
		if c.Table != "" {
			for i, alias := range aliases {
				if strings.EqualFold(alias, c.Table) || strings.EqualFold(schemas[i].TableName, c.Table) {
					if schemas[i].IndexOf(c.Column) < 0 {
						return "", status.NotFoundf("column %s does not exist on table %s", c.Column, alias)
					}
					return alias, nil
				}
			}
			return "", status.NotFoundf("table %s is not part of this query", c.Table)
		}
		matched := ""
		count := 0
		for i, s := range schemas {
			if s.IndexOf(c.Column) >= 0 {
				count++
				matched = aliases[i]
			}
		}
		switch {
		case count == 0:
			return "", status.NotFoundf("column %s does not exist on any table in this query", c.Column)
		case count > 1:
			return "", status.InvalidArgumentf("ambiguous column %s", c.Column)
		default:
			return matched, nil
		}
	}
}

// compileExpr returns a new expression tree with every ColumnRef qualified
// by the alias resolve returns for it. The input tree is never mutated.
func compileExpr(e ast.Expr, resolve columnResolver) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch v := e.(type) {
	case *ast.Literal:
		cp := *v
		return &cp, nil
	case *ast.ColumnRef:
		alias, err := resolve(v)
		if err != nil {
			return nil, err
		}
		return &ast.ColumnRef{StartPos: v.StartPos, Table: alias, Column: v.Column}, nil
	case *ast.UnaryOp:
		operand, err := compileExpr(v.Operand, resolve)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{StartPos: v.StartPos, Op: v.Op, Operand: operand}, nil
	case *ast.BinaryOp:
		left, err := compileExpr(v.Left, resolve)
		if err != nil {
			return nil, err
		}
		right, err := compileExpr(v.Right, resolve)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{StartPos: v.StartPos, Op: v.Op, Left: left, Right: right}, nil
	case *ast.FunctionCall:
		args := make([]ast.Expr, len(v.Args))
		for i, a := range v.Args {
			ca, err := compileExpr(a, resolve)
			if err != nil {
				return nil, err
			}
			args[i] = ca
		}
		return &ast.FunctionCall{StartPos: v.StartPos, Name: v.Name, Args: args}, nil
	default:
		return nil, status.InternalErrorf("unknown expression node during compilation")
	}
}
