package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/freeeve/minidb/internal/ast"
	"github.com/freeeve/minidb/internal/logging"
	"github.com/freeeve/minidb/internal/status"
)

var log = logging.For("Catalog")

// jsonColumn is one column entry in a table's schema.json.
type jsonColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// jsonSchema is the on-disk shape of <table>/schema.json.
type jsonSchema struct {
	TableName string       `json:"table_name"`
	Columns   []jsonColumn `json:"columns"`
}

// jsonMetaEntry is one table's entry in db.meta.json.
type jsonMetaEntry struct {
	TableName     string `json:"table_name"`
	DataDirectory string `json:"data_directory"`
	RowCount      int64  `json:"row_count"`
}

type jsonMeta struct {
	Tables []jsonMetaEntry `json:"tables"`
}

func typeToString(t ast.DataType) string { return t.String() }

func typeFromString(s string) (ast.DataType, bool) {
	switch strings.ToUpper(s) {
	case "INT":
		return ast.TypeInt, true
	case "STRING":
		return ast.TypeString, true
	case "BOOL":
		return ast.TypeBool, true
	case "DECIMAL":
		return ast.TypeDecimal, true
	default:
		return 0, false
	}
}

// Catalog is the process-wide table namespace, backed by a data directory
// on disk. One instance is shared by every connection.
type Catalog struct {
	mu      sync.Mutex
	dataDir string
	tables  map[string]*Metadata // keyed by upper-cased table name
}

// Open constructs a Catalog rooted at dataDir, creating the directory if
// needed, and loads existing tables by scanning its subdirectories.
func Open(dataDir string) (*Catalog, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, status.IOErrorf("failed to create data directory %s: %v", dataDir, err)
	}
	c := &Catalog{dataDir: dataDir, tables: make(map[string]*Metadata)}
	if err := c.loadMetadata(); err != nil {
		return nil, err
	}
	return c, nil
}

// DataDirectory returns the catalog's root directory.
func (c *Catalog) DataDirectory() string { return c.dataDir }

// TableDirectory returns the directory a table's column files live in.
func (c *Catalog) TableDirectory(tableName string) string {
	return filepath.Join(c.dataDir, strings.ToUpper(tableName))
}

func (c *Catalog) schemaFilePath(tableName string) string {
	return filepath.Join(c.TableDirectory(tableName), "schema.json")
}

func (c *Catalog) metaFilePath() string {
	return filepath.Join(c.dataDir, "db.meta.json")
}

// loadMetadata scans the data directory's subdirectories, reading each
// schema.json. A missing or corrupt schema file skips that table with a
// warning rather than failing the whole catalog (spec §4.8 bootstrapping).
// Row counts are then restored from db.meta.json when it is readable.
func (c *Catalog) loadMetadata() error {
	entries, err := os.ReadDir(c.dataDir)
	if err != nil {
		return status.IOErrorf("failed to read data directory %s: %v", c.dataDir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		schemaPath := filepath.Join(c.dataDir, name, "schema.json")
		data, err := os.ReadFile(schemaPath)
		if err != nil {
			log.Warn("skipping table directory with no schema.json", "table", name, "error", err)
			continue
		}
		var js jsonSchema
		if err := json.Unmarshal(data, &js); err != nil {
			log.Warn("skipping table directory with corrupt schema.json", "table", name, "error", err)
			continue
		}
		schema := &Schema{TableName: js.TableName}
		ok := true
		for _, jc := range js.Columns {
			t, valid := typeFromString(jc.Type)
			if !valid {
				log.Warn("skipping table with unknown column type", "table", name, "column", jc.Name, "type", jc.Type)
				ok = false
				break
			}
			schema.ColumnNames = append(schema.ColumnNames, jc.Name)
			schema.ColumnTypes = append(schema.ColumnTypes, t)
		}
		if !ok {
			continue
		}
		c.tables[strings.ToUpper(js.TableName)] = &Metadata{
			TableName:     js.TableName,
			Schema:        schema,
			DataDirectory: filepath.Join(c.dataDir, name),
		}
	}
	if data, err := os.ReadFile(c.metaFilePath()); err == nil {
		var meta jsonMeta
		if err := json.Unmarshal(data, &meta); err == nil {
			for _, e := range meta.Tables {
				if m, ok := c.tables[strings.ToUpper(e.TableName)]; ok {
					m.RowCount = e.RowCount
				}
			}
		}
	}
	return nil
}

// saveMetadataLocked rewrites db.meta.json best-effort; failures here are
// intentionally not fatal to the calling mutation, mirroring the original
// engine's "not rolled back on metadata write failure" sharp edge (spec §7).
func (c *Catalog) saveMetadataLocked() {
	names := make([]string, 0, len(c.tables))
	for k := range c.tables {
		names = append(names, k)
	}
	sort.Strings(names)
	meta := jsonMeta{}
	for _, k := range names {
		m := c.tables[k]
		meta.Tables = append(meta.Tables, jsonMetaEntry{
			TableName:     m.TableName,
			DataDirectory: m.DataDirectory,
			RowCount:      m.RowCount,
		})
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		log.Warn("failed to marshal db.meta.json", "error", err)
		return
	}
	if err := os.WriteFile(c.metaFilePath(), data, 0o644); err != nil {
		log.Warn("failed to write db.meta.json", "error", err)
	}
}

// CreateTable registers a new table, creates its directory, and writes its
// schema.json. Returns AlreadyExists if the table is present and
// ifNotExists is false.
func (c *Catalog) CreateTable(name string, schema *Schema, ifNotExists bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToUpper(name)
	if _, exists := c.tables[key]; exists {
		if ifNotExists {
			return nil
		}
		return status.AlreadyExistsf("table %s already exists", key)
	}

	dir := c.TableDirectory(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return status.IOErrorf("failed to create table directory %s: %v", dir, err)
	}

	schema = schema.Clone()
	schema.TableName = key
	js := jsonSchema{TableName: key}
	for i, n := range schema.ColumnNames {
		js.Columns = append(js.Columns, jsonColumn{Name: n, Type: typeToString(schema.ColumnTypes[i])})
	}
	data, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return status.InternalErrorf("failed to marshal schema for %s: %v", key, err)
	}
	if err := os.WriteFile(c.schemaFilePath(name), data, 0o644); err != nil {
		return status.IOErrorf("failed to write schema.json for %s: %v", key, err)
	}

	c.tables[key] = &Metadata{TableName: key, Schema: schema, DataDirectory: dir}
	c.saveMetadataLocked()
	log.Info("created table", "table", key, "columns", len(schema.ColumnNames))
	return nil
}

// DropTable removes a table's directory and unregisters it. Returns
// NotFound if the table does not exist and ifExists is false.
func (c *Catalog) DropTable(name string, ifExists bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToUpper(name)
	m, exists := c.tables[key]
	if !exists {
		if ifExists {
			return nil
		}
		return status.NotFoundf("table %s does not exist", key)
	}
	if err := os.RemoveAll(m.DataDirectory); err != nil {
		return status.IOErrorf("failed to remove table directory %s: %v", m.DataDirectory, err)
	}
	delete(c.tables, key)
	c.saveMetadataLocked()
	log.Info("dropped table", "table", key)
	return nil
}

// TableExists reports whether name names a live table.
func (c *Catalog) TableExists(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tables[strings.ToUpper(name)]
	return ok
}

// GetTableMetadata returns a copy of the named table's metadata.
func (c *Catalog) GetTableMetadata(name string) (*Metadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.tables[strings.ToUpper(name)]
	if !ok {
		return nil, status.NotFoundf("table %s does not exist", name)
	}
	cp := *m
	cp.Schema = m.Schema.Clone()
	return &cp, nil
}

// ListTables returns every live table name, sorted.
func (c *Catalog) ListTables() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.tables))
	for _, m := range c.tables {
		names = append(names, m.TableName)
	}
	sort.Strings(names)
	return names
}

// UpdateRowCount records a table's current row count and persists the
// catalog metadata.
func (c *Catalog) UpdateRowCount(name string, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.tables[strings.ToUpper(name)]
	if !ok {
		return status.NotFoundf("table %s does not exist", name)
	}
	m.RowCount = count
	c.saveMetadataLocked()
	return nil
}
