// Package exec implements the pull-based operator runtime: DataChunk, the
// Operator interface, and the concrete operators (Scan, Filter,
// Projection, NestedLoopJoin, FinalResult) that a Plan's tree is built
// from (spec §4.6).
package exec

import (
	"github.com/freeeve/minidb/internal/arena"
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/storage"
)

// State is an operator's lifecycle state.
type State int

const (
	Ready State = iota
	Running
	Finished
	ErrorState
)

// DataChunk is a batch of rows held as independent column copies (spec §3
// Lifecycle summary: "columns within are independent copies, not borrowed
// views").
type DataChunk struct {
	Columns  []storage.ColumnVector
	RowCount int
}

// Operator is one node of the physical plan tree.
type Operator interface {
	Initialize(ctx *ExecutionContext) error
	Next(ctx *ExecutionContext) (*DataChunk, error)
	Reset() error
	OutputColumns() []string
	OutputTypes() []ast.DataType
	State() State
}

// ExecutionContext carries per-request resources threaded through the
// operator tree: an arena for scratch allocation and a query id for
// logging (spec §4.6, §5).
type ExecutionContext struct {
	Arena   *arena.Arena
	QueryID string
	Tables  *storage.TableManager
}

// NewExecutionContext returns a context for one request.
func NewExecutionContext(queryID string, tables *storage.TableManager) *ExecutionContext {
	return &ExecutionContext{Arena: arena.New(), QueryID: queryID, Tables: tables}
}

func emptyChunk(names []string, types []ast.DataType) *DataChunk {
	cols := make([]storage.ColumnVector, len(names))
	for i, n := range names {
		cols[i] = storage.NewColumnVector(n, types[i])
	}
	return &DataChunk{Columns: cols, RowCount: 0}
}

const batchSize = storage.DefaultBatchSize

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
