// Package planner lowers a compiled Statement into a physical Plan: either
// an operator tree (for SELECT) or a shallow record dispatched directly by
// the executor (for CREATE/DROP/INSERT/DELETE) (spec §4.5).
package planner

import (
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/compiler"
	"github.com/freeeve/minidb/internal/exec"
)

// Plan is the result of planning one compiled Statement.
type Plan struct {
	CreateTable *compiler.CreateTableStatement
	DropTable   *compiler.DropTableStatement
	Insert      *compiler.InsertStatement
	Delete      *compiler.DeleteStatement
	Select      *exec.FinalResult // root of the SELECT operator tree
}

// Build builds a Plan for stmt.
func Build(stmt compiler.Statement) (*Plan, error) {
	switch s := stmt.(type) {
	case *compiler.CreateTableStatement:
		return &Plan{CreateTable: s}, nil
	case *compiler.DropTableStatement:
		return &Plan{DropTable: s}, nil
	case *compiler.InsertStatement:
		return &Plan{Insert: s}, nil
	case *compiler.DeleteStatement:
		return &Plan{Delete: s}, nil
	case *compiler.SelectStatement:
		root := buildSelect(s)
		return &Plan{Select: root}, nil
	default:
		return nil, nil
	}
}

// buildSelect builds the operator tree per spec §4.5: single-table scans
// get an optional Filter/Projection; joined selects build a left-deep
// NestedLoopJoin tree over full-column scans, then filter/project on top.
func buildSelect(s *compiler.SelectStatement) *exec.FinalResult {
	var root exec.Operator = &exec.Scan{TableName: s.TableName, Alias: s.Alias, Columns: nil}

	for _, j := range s.Joins {
		right := &exec.Scan{TableName: j.TableName, Alias: j.Alias, Columns: nil}
		root = &exec.NestedLoopJoin{
			Left:      root,
			Right:     right,
			Condition: cloneCond(j.Condition),
			Type:      j.Type,
		}
	}

	if s.Where != nil {
		root = &exec.Filter{Child: root, Predicate: cloneExpr(s.Where)}
	}

	if !s.Star {
		root = &exec.Projection{Child: root, Columns: append([]string(nil), s.ProjectionNames...)}
	}

	return &exec.FinalResult{Child: root}
}

func cloneExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	return e.Clone()
}

func cloneCond(e ast.Expr) ast.Expr { return cloneExpr(e) }
