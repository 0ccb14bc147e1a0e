// Package compiler resolves a parsed ast.Statement against the catalog,
// producing a typed Statement whose column references are qualified and
// whose table names are verified to exist.
package compiler

import (
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/catalog"
)

// Statement is any compiled, catalog-resolved statement.
type Statement interface {
	compiledStatementNode()
}

// CreateTableStatement is a compiled CREATE TABLE; the catalog itself
// decides uniqueness at execution time (spec §4.3).
type CreateTableStatement struct {
	TableName   string
	IfNotExists bool
	Columns     []ast.ColumnDef
}

func (*CreateTableStatement) compiledStatementNode() {}

// DropTableStatement is a compiled DROP TABLE.
type DropTableStatement struct {
	TableName string
	IfExists  bool
}

func (*DropTableStatement) compiledStatementNode() {}

// InsertStatement is a compiled INSERT: ColumnIndices names, in order, the
// schema position each VALUES column targets. Values holds one compiled
// expression row per VALUES tuple, positionally aligned with ColumnIndices.
type InsertStatement struct {
	TableName     string
	Schema        *catalog.Schema
	ColumnIndices []int
	Values        [][]ast.Expr
}

func (*InsertStatement) compiledStatementNode() {}

// JoinInfo is one compiled JOIN clause: the joined table's identity,
// effective alias, join type, and its ON condition compiled against the
// accumulated multi-table schema set (spec §4.3 "JOIN compilation").
type JoinInfo struct {
	TableName string
	Alias     string
	Type      ast.JoinType
	Condition ast.Expr
	Schema    *catalog.Schema
}

// SelectStatement is a compiled SELECT, single-table or joined.
type SelectStatement struct {
	TableName       string
	Alias           string
	Schema          *catalog.Schema
	Joins           []JoinInfo
	Star            bool
	ProjectionNames []string // qualified "alias.column", in requested order; unused if Star
	Where           ast.Expr
}

func (*SelectStatement) compiledStatementNode() {}

// DeleteStatement is a compiled DELETE.
type DeleteStatement struct {
	TableName string
	Alias     string
	Schema    *catalog.Schema
	Where     ast.Expr
}

func (*DeleteStatement) compiledStatementNode() {}
