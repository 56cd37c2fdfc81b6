package schema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultCacheTTL = 24 * time.Hour

// Catalog caches an introspected Snapshot with a TTL. Reads never block on a
// refresh: readers observe the current snapshot pointer while a single
// refresh rebuilds the next one.
type Catalog struct {
	db     *sql.DB
	ttl    time.Duration
	logger *slog.Logger

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

// NewCatalog creates a catalog over the given connection. A zero ttl selects
// the 24h default.
func NewCatalog(db *sql.DB, ttl time.Duration, logger *slog.Logger) *Catalog {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Catalog{db: db, ttl: ttl, logger: logger}
}

// Get returns the cached snapshot, refreshing it when missing or expired.
// It never returns an empty schema: on introspection failure it falls back to
// the last good snapshot, and failing that to the builtin one.
func (c *Catalog) Get(ctx context.Context) (*Snapshot, error) {
	if snap := c.current.Load(); snap != nil && time.Since(snap.FetchedAt) < c.ttl {
		return snap, nil
	}
	return c.Refresh(ctx)
}

// Refresh forces re-introspection. Concurrent refreshes are collapsed into a
// single introspection pass; the result is atomically swapped in.
func (c *Catalog) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := c.group.Do("schema", func() (interface{}, error) {
		snap, err := c.introspect(ctx)
		if err != nil {
			if c.logger != nil {
				c.logger.Error("Schema introspection failed", "error", err)
			}
			if last := c.current.Load(); last != nil {
				return last, nil
			}
			builtin := BuiltinSnapshot()
			c.current.Store(builtin)
			return builtin, nil
		}
		c.current.Store(snap)
		if c.logger != nil {
			c.logger.Info("Schema snapshot refreshed", "tables", len(snap.Tables))
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

const columnsQuery = `
	SELECT c.table_name, c.column_name, c.data_type, c.is_nullable
	FROM information_schema.columns c
	JOIN information_schema.tables t
	  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
	WHERE c.table_schema = 'public' AND t.table_type = 'BASE TABLE'
	ORDER BY c.table_name, c.ordinal_position`

const primaryKeysQuery = `
	SELECT tc.table_name, kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON kcu.constraint_name = tc.constraint_name
	 AND kcu.table_schema = tc.table_schema
	WHERE tc.table_schema = 'public' AND tc.constraint_type = 'PRIMARY KEY'
	ORDER BY tc.table_name, kcu.ordinal_position`

const foreignKeysQuery = `
	SELECT tc.table_name, kcu.column_name, ccu.table_name, ccu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON kcu.constraint_name = tc.constraint_name
	 AND kcu.table_schema = tc.table_schema
	JOIN information_schema.constraint_column_usage ccu
	  ON ccu.constraint_name = tc.constraint_name
	 AND ccu.table_schema = tc.table_schema
	WHERE tc.table_schema = 'public' AND tc.constraint_type = 'FOREIGN KEY'
	ORDER BY tc.table_name, kcu.ordinal_position`

func (c *Catalog) introspect(ctx context.Context) (*Snapshot, error) {
	if c.db == nil {
		return nil, fmt.Errorf("no database connection")
	}

	rows, err := c.db.QueryContext(ctx, columnsQuery)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var order []string
	tables := make(map[string]*Table)
	for rows.Next() {
		var tableName, columnName, dataType, isNullable string
		if err := rows.Scan(&tableName, &columnName, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		t, ok := tables[tableName]
		if !ok {
			t = &Table{Name: tableName}
			tables[tableName] = t
			order = append(order, tableName)
		}
		t.Columns = append(t.Columns, Column{
			Name:     columnName,
			Type:     dataType,
			Nullable: isNullable != "NO",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("introspection returned no tables")
	}

	if err := c.loadPrimaryKeys(ctx, tables); err != nil {
		return nil, err
	}
	if err := c.loadForeignKeys(ctx, tables); err != nil {
		return nil, err
	}

	snap := &Snapshot{FetchedAt: time.Now()}
	for _, name := range order {
		snap.Tables = append(snap.Tables, *tables[name])
	}
	return snap, nil
}

func (c *Catalog) loadPrimaryKeys(ctx context.Context, tables map[string]*Table) error {
	rows, err := c.db.QueryContext(ctx, primaryKeysQuery)
	if err != nil {
		return fmt.Errorf("query primary keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName string
		if err := rows.Scan(&tableName, &columnName); err != nil {
			return fmt.Errorf("scan primary key row: %w", err)
		}
		if t, ok := tables[tableName]; ok {
			t.PrimaryKeys = append(t.PrimaryKeys, columnName)
		}
	}
	return rows.Err()
}

func (c *Catalog) loadForeignKeys(ctx context.Context, tables map[string]*Table) error {
	rows, err := c.db.QueryContext(ctx, foreignKeysQuery)
	if err != nil {
		return fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName, refTable, refColumn string
		if err := rows.Scan(&tableName, &columnName, &refTable, &refColumn); err != nil {
			return fmt.Errorf("scan foreign key row: %w", err)
		}
		if t, ok := tables[tableName]; ok {
			t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
				Column:    columnName,
				RefTable:  refTable,
				RefColumn: refColumn,
			})
		}
	}
	return rows.Err()
}
