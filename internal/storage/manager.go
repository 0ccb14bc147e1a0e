package storage

import (
	"strings"
	"sync"

	"github.com/freeeve/minidb/internal/catalog"
)

// TableManager caches shared Table handles by name so repeated opens of the
// same table return one handle with shared ownership (spec §3).
type TableManager struct {
	cat *catalog.Catalog

	mu     sync.Mutex
	tables map[string]*Table
}

// NewTableManager returns a manager backed by cat.
func NewTableManager(cat *catalog.Catalog) *TableManager {
	return &TableManager{cat: cat, tables: make(map[string]*Table)}
}

// Open returns the shared Table handle for name, constructing and caching
// one on first use.
func (m *TableManager) Open(name string) (*Table, error) {
	key := strings.ToUpper(name)

	m.mu.Lock()
	if t, ok := m.tables[key]; ok {
		m.mu.Unlock()
		return t, nil
	}
	m.mu.Unlock()

	meta, err := m.cat.GetTableMetadata(name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[key]; ok {
		return t, nil
	}
	t := &Table{schema: meta.Schema, dir: meta.DataDirectory}
	m.tables[key] = t
	return t, nil
}

// Evict drops a cached handle, used after DROP TABLE so a later CREATE
// TABLE of the same name does not reuse a stale directory binding.
func (m *TableManager) Evict(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, strings.ToUpper(name))
}

// Invalidate drops every cached handle.
func (m *TableManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = make(map[string]*Table)
}
