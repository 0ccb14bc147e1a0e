package compiler

import (
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/catalog"
	"github.com/freeeve/minidb/internal/status"
)

// Compiler resolves parsed statements against a Catalog. It keeps the last
// compile error reachable through the returned error value so callers can
// surface a single precise message (spec §4.3).
type Compiler struct {
	cat *catalog.Catalog
}

// New returns a Compiler backed by cat.
func New(cat *catalog.Catalog) *Compiler {
	return &Compiler{cat: cat}
}

// Compile resolves stmt into a typed Statement.
func (c *Compiler) Compile(stmt ast.Statement) (Statement, error) {
	switch s := stmt.(type) {
	case *ast.CreateTableStmt:
		return c.compileCreateTable(s)
	case *ast.DropTableStmt:
		return c.compileDropTable(s)
	case *ast.InsertStmt:
		return c.compileInsert(s)
	case *ast.SelectStmt:
		return c.compileSelect(s)
	case *ast.DeleteStmt:
		return c.compileDelete(s)
	default:
		return nil, status.InternalErrorf("unknown statement type")
	}
}

func (c *Compiler) compileCreateTable(s *ast.CreateTableStmt) (Statement, error) {
	cols := append([]ast.ColumnDef(nil), s.Columns...)
	return &CreateTableStatement{TableName: s.Table, IfNotExists: s.IfNotExists, Columns: cols}, nil
}

func (c *Compiler) compileDropTable(s *ast.DropTableStmt) (Statement, error) {
	return &DropTableStatement{TableName: s.Table, IfExists: s.IfExists}, nil
}

func (c *Compiler) compileInsert(s *ast.InsertStmt) (Statement, error) {
	meta, err := c.cat.GetTableMetadata(s.Table)
	if err != nil {
		return nil, err
	}
	schema := meta.Schema

	var indices []int
	if len(s.Columns) == 0 {
		indices = make([]int, len(schema.ColumnNames))
		for i := range indices {
			indices[i] = i
		}
	} else {
		indices = make([]int, len(s.Columns))
		for i, name := range s.Columns {
			idx := schema.IndexOf(name)
			if idx < 0 {
				return nil, status.NotFoundf("column %s does not exist on table %s", name, schema.TableName)
			}
			indices[i] = idx
		}
	}

	resolve := singleTableResolver(schema, schema.TableName)
	values := make([][]ast.Expr, len(s.Rows))
	for r, row := range s.Rows {
		if len(row) != len(indices) {
			return nil, status.InvalidArgumentf("column count mismatch: expected %d values, got %d", len(indices), len(row))
		}
		compiled := make([]ast.Expr, len(row))
		for i, e := range row {
			ce, err := compileExpr(e, resolve)
			if err != nil {
				return nil, err
			}
			compiled[i] = ce
		}
		values[r] = compiled
	}

	return &InsertStatement{TableName: schema.TableName, Schema: schema, ColumnIndices: indices, Values: values}, nil
}

func (c *Compiler) compileSelect(s *ast.SelectStmt) (Statement, error) {
	meta, err := c.cat.GetTableMetadata(s.From.Table)
	if err != nil {
		return nil, err
	}
	schema := meta.Schema
	alias := s.From.Alias
	if alias == "" {
		alias = schema.TableName
	}

	out := &SelectStatement{TableName: schema.TableName, Alias: alias, Schema: schema}

	schemas := []*catalog.Schema{schema}
	aliases := []string{alias}

	for _, j := range s.Joins {
		jMeta, err := c.cat.GetTableMetadata(j.Table.Table)
		if err != nil {
			return nil, err
		}
		jAlias := j.Table.Alias
		if jAlias == "" {
			jAlias = jMeta.Schema.TableName
		}
		resolve := multiTableResolver(append(append([]*catalog.Schema{}, schemas...), jMeta.Schema), append(append([]string{}, aliases...), jAlias))
		cond, err := compileExpr(j.Condition, resolve)
		if err != nil {
			return nil, err
		}
		out.Joins = append(out.Joins, JoinInfo{
			TableName: jMeta.Schema.TableName,
			Alias:     jAlias,
			Type:      j.Type,
			Condition: cond,
			Schema:    jMeta.Schema,
		})
		schemas = append(schemas, jMeta.Schema)
		aliases = append(aliases, jAlias)
	}

	resolve := multiTableResolver(schemas, aliases)
	if len(s.Projections) == 1 && s.Projections[0].Star {
		out.Star = true
	} else {
		for _, p := range s.Projections {
			ref, ok := p.Expr.(*ast.ColumnRef)
			if !ok {
				return nil, status.InvalidArgumentf("projection list supports column references only")
			}
			al, err := resolve(ref)
			if err != nil {
				return nil, err
			}
			out.ProjectionNames = append(out.ProjectionNames, al+"."+ref.Column)
		}
	}

	if s.Where != nil {
		where, err := compileExpr(s.Where, resolve)
		if err != nil {
			return nil, err
		}
		out.Where = where
	}
	return out, nil
}

func (c *Compiler) compileDelete(s *ast.DeleteStmt) (Statement, error) {
	meta, err := c.cat.GetTableMetadata(s.From.Table)
	if err != nil {
		return nil, err
	}
	schema := meta.Schema
	alias := s.From.Alias
	if alias == "" {
		alias = schema.TableName
	}
	out := &DeleteStatement{TableName: schema.TableName, Alias: alias, Schema: schema}
	if s.Where != nil {
		resolve := singleTableResolver(schema, alias)
		where, err := compileExpr(s.Where, resolve)
		if err != nil {
			return nil, err
		}
		out.Where = where
	}
	return out, nil
}
