package schema

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Column returns the column named name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IsKeyColumn reports whether name is part of the primary key.
func (t *Table) IsKeyColumn(name string) bool {
	if t.PrimaryKey == nil {
		return false
	}
	for _, c := range t.PrimaryKey.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// CreatableIndexes returns the indexes that need an explicit CREATE INDEX,
// leaving out the one backing the primary key.
func (t *Table) CreatableIndexes() []*Index {
	out := make([]*Index, 0, len(t.Indexes))
	for _, ix := range t.Indexes {
		if t.isPrimaryKeyIndex(ix) {
			continue
		}
		out = append(out, ix)
	}
	return out
}

func (t *Table) isPrimaryKeyIndex(ix *Index) bool {
	pk := t.PrimaryKey
	if pk == nil {
		return false
	}
	if ix.Name == pk.Name {
		return true
	}
	if !ix.IsUnique || len(ix.Columns) != len(pk.Columns) {
		return false
	}
	for i, c := range ix.Columns {
		if c.Name != pk.Columns[i] {
			return false
		}
	}
	return true
}

// Validate reports every structural problem in the table at once.
func (t *Table) Validate() error {
	var result *multierror.Error

	if t.Name == "" {
		result = multierror.Append(result, fmt.Errorf("table has no name"))
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			result = multierror.Append(result, fmt.Errorf("table %q: duplicate column %q", t.Name, c.Name))
		}
		seen[c.Name] = true
		if c.Type.Size != nil && (c.Type.Precision != nil || c.Type.Scale != nil) {
			result = multierror.Append(result, fmt.Errorf("table %q: column %q has both size and precision", t.Name, c.Name))
		}
	}

	if pk := t.PrimaryKey; pk != nil {
		if len(pk.Columns) == 0 {
			result = multierror.Append(result, fmt.Errorf("table %q: primary key %q has no columns", t.Name, pk.Name))
		}
		for _, c := range pk.Columns {
			if !seen[c] {
				result = multierror.Append(result, fmt.Errorf("table %q: primary key %q references unknown column %q", t.Name, pk.Name, c))
			}
		}
	}

	for _, fk := range t.ForeignKeys {
		if len(fk.ColumnNames) != len(fk.ReferencedColumnNames) {
			result = multierror.Append(result, fmt.Errorf("table %q: foreign key %q pairs %d columns with %d referenced columns",
				t.Name, fk.Name, len(fk.ColumnNames), len(fk.ReferencedColumnNames)))
		}
		for _, c := range fk.ColumnNames {
			if !seen[c] {
				result = multierror.Append(result, fmt.Errorf("table %q: foreign key %q references unknown column %q", t.Name, fk.Name, c))
			}
		}
	}

	for _, ix := range t.Indexes {
		for _, c := range ix.Columns {
			if !seen[c.Name] {
				result = multierror.Append(result, fmt.Errorf("table %q: index %q references unknown column %q", t.Name, ix.Name, c.Name))
			}
		}
	}

	return result.ErrorOrNil()
}
