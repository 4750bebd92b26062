package introspect

import (
	"context"
	"sort"

	"github.com/koustreak/dbscribe/internal/catalog"
	"github.com/koustreak/dbscribe/internal/schema"
)

// ListTablesOrdered returns the tables of schemaName ordered by foreign key
// dependency. With independentFirst a referenced table precedes the tables
// that reference it (creation order); without it the order is reversed
// (drop order).
func (in *Introspector) ListTablesOrdered(ctx context.Context, schemaName string, independentFirst bool) ([]string, error) {
	names, err := in.ListTables(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	if schemaName == "" {
		schemaName = in.profile.Dialect.DefaultSchema
	}

	deps := make(map[string][]string, len(names))
	for _, table := range names {
		refs, err := in.referencedTables(ctx, schemaName, table)
		if err != nil {
			return nil, err
		}
		deps[table] = refs
	}
	return orderTables(names, deps, independentFirst), nil
}

// InspectSchema inspects every table of schemaName, referenced tables first.
func (in *Introspector) InspectSchema(ctx context.Context, schemaName string) ([]*schema.Table, error) {
	names, err := in.ListTables(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*schema.Table, len(names))
	deps := make(map[string][]string, len(names))
	for _, name := range names {
		t, err := in.InspectTable(ctx, schemaName, name)
		if err != nil {
			return nil, err
		}
		byName[name] = t
		for _, fk := range t.ForeignKeys {
			deps[name] = append(deps[name], fk.ReferencedTableName)
		}
	}

	ordered := orderTables(names, deps, true)
	tables := make([]*schema.Table, len(ordered))
	for i, name := range ordered {
		tables[i] = byName[name]
	}
	return tables, nil
}

// referencedTables lists the tables that table's foreign keys point at,
// limited to schemaName.
func (in *Introspector) referencedTables(ctx context.Context, schemaName, table string) ([]string, error) {
	params := tableParams(schemaName, table)
	fkNames, err := queryAll(ctx, in, "foreign_key_names", in.profile.Queries.ForeignKeyNames, params, scanName)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, name := range fkNames {
		p := tableParams(schemaName, table)
		p[catalog.ParamConstraint] = name
		targets, err := queryAll(ctx, in, "foreign_key_target", in.profile.Queries.ForeignKeyTarget, p, scanForeignKeyTarget)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			if t.Schema == schemaName {
				refs = append(refs, t.Table)
			}
		}
	}
	return refs, nil
}

// orderTables is Kahn's algorithm over "table depends on referenced table"
// edges. Ready tables are taken in name order. Self references and edges to
// tables outside names are ignored. Tables left on a cycle are appended in
// name order.
func orderTables(names []string, deps map[string][]string, independentFirst bool) []string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	known := make(map[string]bool, len(sorted))
	for _, n := range sorted {
		known[n] = true
	}

	pending := make(map[string]int, len(sorted))
	dependents := make(map[string][]string, len(sorted))
	for _, n := range sorted {
		seen := make(map[string]bool)
		for _, ref := range deps[n] {
			if ref == n || !known[ref] || seen[ref] {
				continue
			}
			seen[ref] = true
			pending[n]++
			dependents[ref] = append(dependents[ref], n)
		}
	}

	out := make([]string, 0, len(sorted))
	done := make(map[string]bool, len(sorted))
	for {
		var ready []string
		for _, n := range sorted {
			if !done[n] && pending[n] == 0 {
				ready = append(ready, n)
			}
		}
		if len(ready) == 0 {
			break
		}
		// one at a time so a newly freed table sorts against the rest
		n := ready[0]
		done[n] = true
		out = append(out, n)
		for _, d := range dependents[n] {
			pending[d]--
		}
	}

	for _, n := range sorted {
		if !done[n] {
			out = append(out, n)
		}
	}

	if !independentFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
