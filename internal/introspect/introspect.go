// Package introspect rebuilds schema.Table values from a live catalog.
//
// The algorithm is written once; everything backend-specific comes from the
// dialect.Profile picked by the connection's Backend(). Every call re-reads
// the catalog and returns a fresh object graph. An Introspector holds no lock:
// callers must not share one connection between concurrent calls.
package introspect

import (
	"context"
	"fmt"
	"sort"

	"github.com/koustreak/dbscribe/internal/catalog"
	"github.com/koustreak/dbscribe/internal/database"
	"github.com/koustreak/dbscribe/internal/dialect"
	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/indexdef"
	"github.com/koustreak/dbscribe/internal/logger"
	"github.com/koustreak/dbscribe/internal/schema"
)

// Introspector reads table structure through catalog queries.
type Introspector struct {
	db      database.DB
	profile *dialect.Profile
	log     *logger.Logger
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(in *Introspector) {
		if l != nil {
			in.log = l
		}
	}
}

// New returns an Introspector for db, using the profile registered for
// db.Backend().
func New(db database.DB, reg *dialect.Registry, opts ...Option) (*Introspector, error) {
	if db == nil {
		return nil, errs.InvalidArgument("db")
	}
	if reg == nil {
		return nil, errs.InvalidArgument("registry")
	}
	profile, err := reg.Lookup(db.Backend())
	if err != nil {
		return nil, err
	}

	in := &Introspector{db: db, profile: profile, log: logger.Nop()}
	for _, opt := range opts {
		opt(in)
	}
	in.log = in.log.With().Str("backend", profile.Name()).Logger()
	return in, nil
}

// Profile returns the backend profile in use.
func (in *Introspector) Profile() *dialect.Profile {
	return in.profile
}

// ListSchemas returns user schemas, sorted, without the dialect's system
// schemas.
func (in *Introspector) ListSchemas(ctx context.Context) ([]string, error) {
	if !in.db.IsOpen() {
		return nil, errs.ConnectionNotOpen()
	}
	names, err := queryAll(ctx, in, "list_schemas", in.profile.Queries.ListSchemas, catalog.Params{}, scanName)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		if !in.profile.Dialect.IsSystemSchema(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListTables returns the base tables of schemaName sorted by name. An
// existing empty schema yields an empty slice.
func (in *Introspector) ListTables(ctx context.Context, schemaName string) ([]string, error) {
	schemaName, err := in.checkSchema(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	names, err := queryAll(ctx, in, "list_tables", in.profile.Queries.ListTables,
		catalog.Params{catalog.ParamSchema: schemaName}, scanName)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// InspectTable assembles the full structure of one table. Nothing partial
// is returned: any failing step fails the call.
func (in *Introspector) InspectTable(ctx context.Context, schemaName, table string) (*schema.Table, error) {
	schemaName, err := in.checkTable(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}

	columns, err := in.columns(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	pk, err := in.primaryKey(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	fks, err := in.foreignKeys(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	indexes, err := in.indexes(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}

	in.log.InfoWith("table inspected", map[string]any{
		"schema":       schemaName,
		"table":        table,
		"columns":      len(columns),
		"foreign_keys": len(fks),
		"indexes":      len(indexes),
	})

	return &schema.Table{
		Name:        table,
		Columns:     columns,
		PrimaryKey:  pk,
		ForeignKeys: fks,
		Indexes:     indexes,
	}, nil
}

// Columns returns the table's columns in ordinal order, identities merged.
func (in *Introspector) Columns(ctx context.Context, schemaName, table string) ([]*schema.Column, error) {
	schemaName, err := in.checkTable(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	return in.columns(ctx, schemaName, table)
}

// PrimaryKey returns the table's primary key, or nil when it has none.
func (in *Introspector) PrimaryKey(ctx context.Context, schemaName, table string) (*schema.PrimaryKey, error) {
	schemaName, err := in.checkTable(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	return in.primaryKey(ctx, schemaName, table)
}

// ForeignKeys returns the table's foreign keys ordered by name.
func (in *Introspector) ForeignKeys(ctx context.Context, schemaName, table string) ([]*schema.ForeignKey, error) {
	schemaName, err := in.checkTable(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	return in.foreignKeys(ctx, schemaName, table)
}

// Indexes returns the table's indexes sorted by name.
func (in *Introspector) Indexes(ctx context.Context, schemaName, table string) ([]*schema.Index, error) {
	schemaName, err := in.checkTable(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}
	return in.indexes(ctx, schemaName, table)
}

// --- steps ---

func (in *Introspector) columns(ctx context.Context, schemaName, table string) ([]*schema.Column, error) {
	params := tableParams(schemaName, table)

	records, err := queryAll(ctx, in, "columns", in.profile.Queries.Columns, params, scanColumn)
	if err != nil {
		return nil, err
	}
	identities, err := queryAll(ctx, in, "identities", in.profile.Queries.Identities, params, scanIdentity)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]identityRecord, len(identities))
	for _, id := range identities {
		byName[id.Column] = id
	}

	columns := make([]*schema.Column, len(records))
	for i, r := range records {
		col := toColumn(in.profile.Dialect, r)
		if id, ok := byName[col.Name]; ok {
			col.Identity = &schema.Identity{Seed: deref(id.Seed), Increment: deref(id.Increment)}
		}
		columns[i] = col
	}
	return columns, nil
}

func (in *Introspector) primaryKey(ctx context.Context, schemaName, table string) (*schema.PrimaryKey, error) {
	records, err := queryAll(ctx, in, "primary_key", in.profile.Queries.PrimaryKey, tableParams(schemaName, table), scanKeyColumn)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	pk := &schema.PrimaryKey{Name: records[0].Constraint, Columns: make([]string, len(records))}
	for i, r := range records {
		pk.Columns[i] = r.Column
	}
	return pk, nil
}

// foreignKeys pairs each constrained column with the referenced primary key
// column at the same key position. Catalogs only expose the mapping through
// parallel ordinal sequences, so names are never matched. A foreign key the
// catalog reports against another unique key is rejected.
func (in *Introspector) foreignKeys(ctx context.Context, schemaName, table string) ([]*schema.ForeignKey, error) {
	names, err := queryAll(ctx, in, "foreign_key_names", in.profile.Queries.ForeignKeyNames, tableParams(schemaName, table), scanName)
	if err != nil {
		return nil, err
	}

	fks := make([]*schema.ForeignKey, 0, len(names))
	for _, name := range names {
		fk, err := in.foreignKey(ctx, schemaName, table, name)
		if err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, nil
}

func (in *Introspector) foreignKey(ctx context.Context, schemaName, table, name string) (*schema.ForeignKey, error) {
	params := tableParams(schemaName, table)
	params[catalog.ParamConstraint] = name

	targets, err := queryAll(ctx, in, "foreign_key_target", in.profile.Queries.ForeignKeyTarget, params, scanForeignKeyTarget)
	if err != nil {
		return nil, err
	}
	if len(targets) != 1 {
		return nil, errs.New(errs.ErrKindQueryFailed,
			fmt.Sprintf("foreign key %q on %q: expected one referenced table, catalog returned %d", name, table, len(targets)))
	}
	target := targets[0]

	refPK, err := in.primaryKey(ctx, target.Schema, target.Table)
	if err != nil {
		return nil, err
	}
	if refPK == nil {
		return nil, errs.New(errs.ErrKindQueryFailed,
			fmt.Sprintf("foreign key %q on %q: referenced table %q has no primary key", name, table, target.Table))
	}
	if target.ReferencedKey != nil && *target.ReferencedKey != refPK.Name {
		return nil, errs.New(errs.ErrKindQueryFailed,
			fmt.Sprintf("foreign key %q on %q: references key %q of %q, not its primary key %q",
				name, table, *target.ReferencedKey, target.Table, refPK.Name))
	}

	cols, err := queryAll(ctx, in, "foreign_key_columns", in.profile.Queries.ForeignKeyColumns, params, scanForeignKeyColumn)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(refPK.Columns) {
		return nil, errs.New(errs.ErrKindQueryFailed,
			fmt.Sprintf("foreign key %q on %q: %d columns but referenced key %q has %d",
				name, table, len(cols), refPK.Name, len(refPK.Columns)))
	}

	fk := &schema.ForeignKey{
		Name:                  name,
		ColumnNames:           make([]string, len(cols)),
		ReferencedTableName:   target.Table,
		ReferencedColumnNames: make([]string, len(cols)),
	}
	used := make([]bool, len(refPK.Columns))
	for i, c := range cols {
		pos := c.Ordinal
		if c.UniquePosition != nil {
			pos = *c.UniquePosition
		}
		if pos < 1 || int(pos) > len(refPK.Columns) || used[pos-1] {
			return nil, errs.New(errs.ErrKindQueryFailed,
				fmt.Sprintf("foreign key %q on %q: column %q has no matching referenced key position %d", name, table, c.Column, pos))
		}
		used[pos-1] = true
		fk.ColumnNames[i] = c.Column
		fk.ReferencedColumnNames[i] = refPK.Columns[pos-1]
	}
	return fk, nil
}

func (in *Introspector) indexes(ctx context.Context, schemaName, table string) ([]*schema.Index, error) {
	records, err := queryAll(ctx, in, "indexes", in.profile.Queries.Indexes, tableParams(schemaName, table), scanIndex)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	indexes := make([]*schema.Index, 0, len(records))
	for _, r := range records {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true

		def, err := indexdef.Parse(r.Definition)
		if err != nil {
			return nil, fmt.Errorf("index %q on %q: %w", r.Name, table, err)
		}
		indexes = append(indexes, &schema.Index{
			Name:      r.Name,
			TableName: table,
			Columns:   def.Columns,
			IsUnique:  def.Unique,
		})
	}

	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })
	return indexes, nil
}

// --- existence checks ---

// checkSchema resolves an empty name to the dialect default and fails with
// SchemaNotFound before any detail query runs.
func (in *Introspector) checkSchema(ctx context.Context, schemaName string) (string, error) {
	if !in.db.IsOpen() {
		return "", errs.ConnectionNotOpen()
	}
	if schemaName == "" {
		schemaName = in.profile.Dialect.DefaultSchema
	}

	n, err := in.count(ctx, "schema_exists", in.profile.Queries.SchemaExists, catalog.Params{catalog.ParamSchema: schemaName})
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", errs.SchemaNotFound(schemaName)
	}
	return schemaName, nil
}

// checkTable runs checkSchema, then fails with TableNotFound when the table
// is missing.
func (in *Introspector) checkTable(ctx context.Context, schemaName, table string) (string, error) {
	if table == "" {
		return "", errs.InvalidArgument("table")
	}
	schemaName, err := in.checkSchema(ctx, schemaName)
	if err != nil {
		return "", err
	}

	n, err := in.count(ctx, "table_exists", in.profile.Queries.TableExists, tableParams(schemaName, table))
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", errs.TableNotFound(schemaName, table)
	}
	return schemaName, nil
}

// --- query plumbing ---

func (in *Introspector) bind(name, query string, params catalog.Params) (string, []any, error) {
	in.log.DebugWith("catalog query", map[string]any{
		"query":  name,
		"schema": params[catalog.ParamSchema],
		"table":  params[catalog.ParamTable],
	})
	return catalog.Bind(query, in.profile.Dialect.Bind, params)
}

func (in *Introspector) count(ctx context.Context, name, query string, params catalog.Params) (int64, error) {
	sql, args, err := in.bind(name, query, params)
	if err != nil {
		return 0, err
	}
	row, err := in.db.QueryRow(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// queryAll runs one catalog query and maps every row with scan.
func queryAll[T any](ctx context.Context, in *Introspector, name, query string, params catalog.Params, scan func(database.Rows) (T, error)) ([]T, error) {
	sql, args, err := in.bind(name, query, params)
	if err != nil {
		return nil, err
	}

	rows, err := in.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func tableParams(schemaName, table string) catalog.Params {
	return catalog.Params{catalog.ParamSchema: schemaName, catalog.ParamTable: table}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
