// Package catalog is the process-wide table namespace and schema store.
package catalog

import (
	"strings"

	"github.com/freeeve/minidb/internal/ast"
)

// Schema is a table's column list: name and type vectors kept parallel, in
// authoritative declaration order.
type Schema struct {
	TableName   string
	ColumnNames []string
	ColumnTypes []ast.DataType
}

// IndexOf returns the column's position via a linear case-insensitive scan,
// or -1 if name is not in the schema.
func (s *Schema) IndexOf(name string) int {
	for i, c := range s.ColumnNames {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Clone returns a schema with independently owned slices.
func (s *Schema) Clone() *Schema {
	return &Schema{
		TableName:   s.TableName,
		ColumnNames: append([]string(nil), s.ColumnNames...),
		ColumnTypes: append([]ast.DataType(nil), s.ColumnTypes...),
	}
}

// Metadata is everything the Catalog owns about one live table.
type Metadata struct {
	TableName     string
	Schema        *Schema
	DataDirectory string
	RowCount      int64
}
