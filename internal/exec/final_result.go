package exec

import (
	"strconv"
	"strings"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/storage"
)

// FinalResult accumulates its child's entire stream into one printable
// text block and emits it as a single result, then empty chunks
// thereafter (spec §4.6.5).
type FinalResult struct {
	Child Operator

	text  string
	state State
}

func (f *FinalResult) Initialize(ctx *ExecutionContext) error {
	f.state = Ready
	return f.Child.Initialize(ctx)
}

// Run drains the child and returns the formatted text block. Callers
// (the executor) use this instead of Next for statements whose entire
// purpose is producing the table text.
func (f *FinalResult) Run(ctx *ExecutionContext) (string, error) {
	var b strings.Builder
	names := f.Child.OutputColumns()
	b.WriteString(strings.Join(names, " | "))
	b.WriteByte('\n')

	types := f.Child.OutputTypes()
	for {
		chunk, err := f.Child.Next(ctx)
		if err != nil {
			return "", err
		}
		if chunk.RowCount == 0 {
			break
		}
		for row := 0; row < chunk.RowCount; row++ {
			vals := make([]string, len(chunk.Columns))
			for i := range chunk.Columns {
				vals[i] = formatValue(&chunk.Columns[i], types[i], row)
			}
			b.WriteString(strings.Join(vals, " | "))
			b.WriteByte('\n')
		}
	}
	f.text = b.String()
	f.state = Finished
	return f.text, nil
}

// formatValue renders one cell per the FinalResult formatting rules: plain
// decimal for INT, raw bytes for STRING, "true"/"false" for BOOL, and
// fixed two-fractional-digit for DECIMAL (spec §4.6.5).
func formatValue(c *storage.ColumnVector, t ast.DataType, row int) string {
	switch t {
	case ast.TypeInt:
		return strconv.FormatInt(int64(c.GetInt(row)), 10)
	case ast.TypeString:
		return c.GetString(row)
	case ast.TypeBool:
		if c.GetBool(row) {
			return "true"
		}
		return "false"
	case ast.TypeDecimal:
		return strconv.FormatFloat(c.GetDecimal(row), 'f', 2, 64)
	default:
		return ""
	}
}

func (f *FinalResult) Next(ctx *ExecutionContext) (*DataChunk, error) {
	// FinalResult is driven via Run, not the chunk-pull interface; present
	// as already finished so it cannot be misused as a mid-tree operator.
	f.state = Finished
	return emptyChunk(f.OutputColumns(), f.OutputTypes()), nil
}

func (f *FinalResult) Reset() error {
	f.state = Ready
	return f.Child.Reset()
}

func (f *FinalResult) OutputColumns() []string     { return f.Child.OutputColumns() }
func (f *FinalResult) OutputTypes() []ast.DataType { return f.Child.OutputTypes() }
func (f *FinalResult) State() State                { return f.state }
