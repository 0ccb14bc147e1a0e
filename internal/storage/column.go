// Package storage implements the columnar on-disk format and the Table /
// TableManager handles that read and write it.
package storage

import (
	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/status"
)

// ColumnVector is a named, typed, append-only column buffer. Exactly one of
// the four value slices is populated, selected by Type; RowCount is always
// that slice's length.
type ColumnVector struct {
	Name     string
	Type     ast.DataType
	RowCount int

	Ints     []int32
	Strings  []string
	Bools    []bool
	Decimals []float64
}

// NewColumnVector returns an empty, typed, named column.
func NewColumnVector(name string, t ast.DataType) ColumnVector {
	return ColumnVector{Name: name, Type: t}
}

func (c *ColumnVector) AppendInt(v int32) {
	c.Ints = append(c.Ints, v)
	c.RowCount++
}

func (c *ColumnVector) AppendString(v string) error {
	if len(v) > MaxStringLength {
		return status.InvalidArgumentf("string value exceeds maximum length of %d bytes", MaxStringLength)
	}
	c.Strings = append(c.Strings, v)
	c.RowCount++
	return nil
}

func (c *ColumnVector) AppendBool(v bool) {
	c.Bools = append(c.Bools, v)
	c.RowCount++
}

func (c *ColumnVector) AppendDecimal(v float64) {
	c.Decimals = append(c.Decimals, v)
	c.RowCount++
}

func (c *ColumnVector) GetInt(i int) int32        { return c.Ints[i] }
func (c *ColumnVector) GetString(i int) string     { return c.Strings[i] }
func (c *ColumnVector) GetBool(i int) bool         { return c.Bools[i] }
func (c *ColumnVector) GetDecimal(i int) float64   { return c.Decimals[i] }

// Clone returns a column with independently owned backing slices — the
// DataChunk contract is that columns are copies, not borrowed views (see
// SPEC_FULL.md §3, Lifecycle summary).
func (c *ColumnVector) Clone() ColumnVector {
	out := ColumnVector{Name: c.Name, Type: c.Type, RowCount: c.RowCount}
	if c.Ints != nil {
		out.Ints = append([]int32(nil), c.Ints...)
	}
	if c.Strings != nil {
		out.Strings = append([]string(nil), c.Strings...)
	}
	if c.Bools != nil {
		out.Bools = append([]bool(nil), c.Bools...)
	}
	if c.Decimals != nil {
		out.Decimals = append([]float64(nil), c.Decimals...)
	}
	return out
}

// Slice returns a new column containing rows [start, end) of c.
func (c *ColumnVector) Slice(start, end int) ColumnVector {
	out := ColumnVector{Name: c.Name, Type: c.Type, RowCount: end - start}
	switch c.Type {
	case ast.TypeInt:
		out.Ints = append([]int32(nil), c.Ints[start:end]...)
	case ast.TypeString:
		out.Strings = append([]string(nil), c.Strings[start:end]...)
	case ast.TypeBool:
		out.Bools = append([]bool(nil), c.Bools[start:end]...)
	case ast.TypeDecimal:
		out.Decimals = append([]float64(nil), c.Decimals[start:end]...)
	}
	return out
}

// AppendFrom appends row index `from` of src onto c. Both must share Type.
func (c *ColumnVector) AppendFrom(src *ColumnVector, from int) {
	switch c.Type {
	case ast.TypeInt:
		c.AppendInt(src.Ints[from])
	case ast.TypeString:
		c.Strings = append(c.Strings, src.Strings[from])
		c.RowCount++
	case ast.TypeBool:
		c.AppendBool(src.Bools[from])
	case ast.TypeDecimal:
		c.AppendDecimal(src.Decimals[from])
	}
}

// AppendZero appends this column's type-default zero value (used for
// padding unmatched rows in outer joins).
func (c *ColumnVector) AppendZero() {
	switch c.Type {
	case ast.TypeInt:
		c.AppendInt(0)
	case ast.TypeString:
		c.Strings = append(c.Strings, "")
		c.RowCount++
	case ast.TypeBool:
		c.AppendBool(false)
	case ast.TypeDecimal:
		c.AppendDecimal(0)
	}
}

// Row is a value vector indexed positionally over a schema, with every
// value stringified — the canonical cross-stage representation before
// typing (spec §3).
type Row struct {
	Values []string
}

const (
	// MaxStringLength bounds a STRING value, per spec §3/§8.
	MaxStringLength = 4096
	// DefaultBatchSize is the DataChunk row-count target (spec §3).
	DefaultBatchSize = 1024
)
