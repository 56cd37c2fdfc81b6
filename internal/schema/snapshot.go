// Package schema introspects the academic database and exposes an immutable,
// cached snapshot of its structure for prompt construction and validation.
package schema

import (
	"fmt"
	"strings"
	"time"
)

// Column describes a single column of a table.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// ForeignKey describes a reference from a column to another table.
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

// Table describes one table: columns in ordinal order plus key metadata.
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	PrimaryKeys []string     `json:"primary_keys,omitempty"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
}

// Snapshot is an immutable view of the database schema. It is replaced
// wholesale on refresh; callers must never mutate a snapshot they receive.
type Snapshot struct {
	Tables    []Table   `json:"tables"`
	FetchedAt time.Time `json:"fetched_at"`
	Builtin   bool      `json:"builtin,omitempty"`
}

// Table returns the named table, or nil if the snapshot does not have it.
func (s *Snapshot) Table(name string) *Table {
	for i := range s.Tables {
		if strings.EqualFold(s.Tables[i].Name, name) {
			return &s.Tables[i]
		}
	}
	return nil
}

// HasColumn reports whether table.column exists in the snapshot.
func (s *Snapshot) HasColumn(table, column string) bool {
	t := s.Table(table)
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, column) {
			return true
		}
	}
	return false
}

// Format renders the snapshot in the textual form the SQL prompts expect.
func (s *Snapshot) Format() string {
	if len(s.Tables) == 0 {
		return "Esquema não disponível"
	}

	var b strings.Builder
	for _, t := range s.Tables {
		fmt.Fprintf(&b, "Table: %s\n", t.Name)
		b.WriteString("Columns:\n")
		for _, c := range t.Columns {
			nullable := "NOT NULL"
			if c.Nullable {
				nullable = "NULL"
			}
			fmt.Fprintf(&b, " - %s (%s, %s)\n", c.Name, c.Type, nullable)
		}
		if len(t.PrimaryKeys) > 0 {
			fmt.Fprintf(&b, "Primary Keys: %s\n", strings.Join(t.PrimaryKeys, ", "))
		}
		if len(t.ForeignKeys) > 0 {
			b.WriteString("Foreign Keys:\n")
			for _, fk := range t.ForeignKeys {
				fmt.Fprintf(&b, " - %s -> %s.%s\n", fk.Column, fk.RefTable, fk.RefColumn)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
