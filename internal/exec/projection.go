package exec

import (
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/status"
	"github.com/freeeve/minidb/internal/storage"
)

// Projection narrows its child's output to a requested subset of named
// columns, preserving row order and row count (spec §4.6.3).
type Projection struct {
	Child   Operator
	Columns []string // qualified names; exactly one "*" expands to all child columns

	indices []int
	names   []string
	types   []ast.DataType
	state   State
}

func (p *Projection) Initialize(ctx *ExecutionContext) error {
	if err := p.Child.Initialize(ctx); err != nil {
		return err
	}
	childNames := p.Child.OutputColumns()
	childTypes := p.Child.OutputTypes()

	requested := p.Columns
	if len(requested) == 1 && requested[0] == "*" {
		requested = childNames
	}

	p.indices = make([]int, len(requested))
	p.names = make([]string, len(requested))
	p.types = make([]ast.DataType, len(requested))
	for i, name := range requested {
		idx := -1
		for j, cn := range childNames {
			if equalFoldName(cn, name) {
				idx = j
				break
			}
		}
		if idx < 0 {
			return status.NotFoundf("projection column %s not found in child output", name)
		}
		p.indices[i] = idx
		p.names[i] = childNames[idx]
		p.types[i] = childTypes[idx]
	}
	p.state = Ready
	return nil
}

func (p *Projection) Next(ctx *ExecutionContext) (*DataChunk, error) {
	chunk, err := p.Child.Next(ctx)
	if err != nil {
		return nil, err
	}
	if chunk.RowCount == 0 {
		p.state = Finished
		return emptyChunk(p.names, p.types), nil
	}
	p.state = Running
	cols := make([]storage.ColumnVector, len(p.indices))
	for i, idx := range p.indices {
		cols[i] = chunk.Columns[idx].Clone()
	}
	return &DataChunk{Columns: cols, RowCount: chunk.RowCount}, nil
}

func (p *Projection) Reset() error {
	p.state = Ready
	return p.Child.Reset()
}

func (p *Projection) OutputColumns() []string     { return p.names }
func (p *Projection) OutputTypes() []ast.DataType { return p.types }
func (p *Projection) State() State                { return p.state }
