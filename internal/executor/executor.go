// Package executor runs a planned statement against the catalog and table
// storage, producing the text result a client receives.
package executor

import (
	"strings"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/catalog"
	"github.com/freeeve/minidb/internal/compiler"
	"github.com/freeeve/minidb/internal/eval"
	"github.com/freeeve/minidb/internal/exec"
	"github.com/freeeve/minidb/internal/logging"
	"github.com/freeeve/minidb/internal/optimizer"
	"github.com/freeeve/minidb/internal/parser"
	"github.com/freeeve/minidb/internal/planner"
	"github.com/freeeve/minidb/internal/status"
	"github.com/freeeve/minidb/internal/storage"
)

var log = logging.For("Executor")

// Executor owns the catalog and table manager shared by every connection
// (spec §5: "they share the Catalog and TableManager").
type Executor struct {
	Catalog *catalog.Catalog
	Tables  *storage.TableManager
}

// New returns an Executor backed by dataDir.
func New(dataDir string) (*Executor, error) {
	cat, err := catalog.Open(dataDir)
	if err != nil {
		return nil, err
	}
	return &Executor{Catalog: cat, Tables: storage.NewTableManager(cat)}, nil
}

// Run parses, compiles, plans and executes one SQL statement, returning
// the text the client should see.
func (e *Executor) Run(queryID, sql string) (string, error) {
	p, err := parser.Get(sql)
	if err != nil {
		return "", err
	}
	defer parser.Put(p)
	stmt, err := p.ParseStatement()
	if err != nil {
		return "", err
	}
	log.Debug("executing statement", "query_id", queryID, "sql", ast.Format(stmt))

	comp := compiler.New(e.Catalog)
	compiled, err := comp.Compile(stmt)
	if err != nil {
		return "", err
	}
	compiled = optimizer.Optimize(compiled)

	plan, err := planner.Build(compiled)
	if err != nil {
		return "", err
	}

	switch {
	case plan.CreateTable != nil:
		return e.runCreateTable(plan.CreateTable)
	case plan.DropTable != nil:
		return e.runDropTable(plan.DropTable)
	case plan.Insert != nil:
		return e.runInsert(plan.Insert)
	case plan.Delete != nil:
		return e.runDelete(plan.Delete)
	case plan.Select != nil:
		return e.runSelect(queryID, plan.Select)
	default:
		return "", status.InternalErrorf("plan produced no executable statement")
	}
}

func (e *Executor) runCreateTable(s *compiler.CreateTableStatement) (string, error) {
	names := make([]string, len(s.Columns))
	types := make([]ast.DataType, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
		types[i] = c.Type
	}
	schema := &catalog.Schema{TableName: s.TableName, ColumnNames: names, ColumnTypes: types}
	if err := e.Catalog.CreateTable(s.TableName, schema, s.IfNotExists); err != nil {
		return "", err
	}
	return "Table created successfully\n", nil
}

func (e *Executor) runDropTable(s *compiler.DropTableStatement) (string, error) {
	if err := e.Catalog.DropTable(s.TableName, s.IfExists); err != nil {
		return "", err
	}
	e.Tables.Evict(s.TableName)
	return "Table dropped successfully\n", nil
}

func (e *Executor) runInsert(s *compiler.InsertStatement) (string, error) {
	table, err := e.Tables.Open(s.TableName)
	if err != nil {
		return "", err
	}

	rows := make([]storage.Row, len(s.Values))
	for r, exprs := range s.Values {
		values := make([]string, len(s.Schema.ColumnNames))
		set := make([]bool, len(values))
		for i, valExpr := range exprs {
			idx := s.ColumnIndices[i]
			values[idx] = eval.Eval(valExpr, eval.MapRow{}).AsString()
			set[idx] = true
		}
		for i := range values {
			if !set[i] {
				values[i] = defaultValueFor(s.Schema.ColumnTypes[i])
			}
		}
		rows[r] = storage.Row{Values: values}
	}

	count, err := table.InsertRows(rows)
	if err != nil {
		return "", err
	}
	if err := e.Catalog.UpdateRowCount(s.TableName, count); err != nil {
		log.Warn("failed to persist row count after insert", "table", s.TableName, "error", err)
	}
	return "Rows inserted successfully\n", nil
}

// defaultValueFor returns the zero/false/empty stringified default used
// for an INSERT's unspecified columns (SPEC_FULL.md §9 resolves this in
// favor of type-zero defaults rather than rejecting the statement).
func defaultValueFor(t ast.DataType) string {
	switch t {
	case ast.TypeString:
		return ""
	case ast.TypeBool:
		return "false"
	case ast.TypeDecimal:
		return "0"
	default: // ast.TypeInt
		return "0"
	}
}

func (e *Executor) runDelete(s *compiler.DeleteStatement) (string, error) {
	table, err := e.Tables.Open(s.TableName)
	if err != nil {
		return "", err
	}
	cols, err := table.ScanAll()
	if err != nil {
		return "", err
	}
	total := 0
	if len(cols) > 0 {
		total = cols[0].RowCount
	}
	keep := make([]bool, total)
	for i := range keep {
		keep[i] = true
	}
	if s.Where != nil {
		row := make(eval.MapRow, len(cols))
		for i := 0; i < total; i++ {
			for c := range cols {
				key := strings.ToUpper(s.Alias + "." + cols[c].Name)
				row[key] = columnValueAt(&cols[c], i)
			}
			if eval.Eval(s.Where, row).AsBool() {
				keep[i] = false
			}
		}
	} else {
		for i := range keep {
			keep[i] = false
		}
	}
	deleted := 0
	for _, k := range keep {
		if !k {
			deleted++
		}
	}
	count, err := table.DeleteRows(keep)
	if err != nil {
		return "", err
	}
	if err := e.Catalog.UpdateRowCount(s.TableName, count); err != nil {
		log.Warn("failed to persist row count after delete", "table", s.TableName, "error", err)
	}
	if deleted == 0 {
		return "No rows to delete\n", nil
	}
	return "Rows deleted successfully\n", nil
}

func (e *Executor) runSelect(queryID string, root *exec.FinalResult) (string, error) {
	ctx := exec.NewExecutionContext(queryID, e.Tables)
	if err := root.Initialize(ctx); err != nil {
		return "", err
	}
	return root.Run(ctx)
}

// columnValueAt converts one cell of a raw storage column into an
// eval.Value, mirroring exec's chunk-row conversion (spec §4.7).
func columnValueAt(c *storage.ColumnVector, row int) eval.Value {
	switch c.Type {
	case ast.TypeInt:
		return eval.IntValue(int64(c.GetInt(row)))
	case ast.TypeString:
		return eval.StringValue(c.GetString(row))
	case ast.TypeBool:
		return eval.BoolValue(c.GetBool(row))
	case ast.TypeDecimal:
		return eval.DecimalValue(c.GetDecimal(row))
	default:
		return eval.Null()
	}
}
