package introspect

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbscribe/internal/catalog"
	"github.com/koustreak/dbscribe/internal/convert"
	"github.com/koustreak/dbscribe/internal/database"
	"github.com/koustreak/dbscribe/internal/dialect"
	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/schema"
)

// --- fake catalog ---

// Each fake query is "<name> @schema @table [@constraint]", so the bound
// arguments always arrive as schema, table, constraint.
func fakeQueries() *catalog.QuerySet {
	return &catalog.QuerySet{
		Backend:           dialect.NamePostgres,
		SchemaExists:      "schema_exists @schema",
		ListSchemas:       "list_schemas",
		ListTables:        "list_tables @schema",
		TableExists:       "table_exists @schema @table",
		Columns:           "columns @schema @table",
		Identities:        "identities @schema @table",
		PrimaryKey:        "primary_key @schema @table",
		ForeignKeyNames:   "foreign_key_names @schema @table",
		ForeignKeyTarget:  "foreign_key_target @schema @table @constraint",
		ForeignKeyColumns: "foreign_key_columns @schema @table @constraint",
		Indexes:           "indexes @schema @table",
	}
}

type handler func(args []any) [][]any

type fakeDB struct {
	closed   bool
	handlers map[string]handler
	calls    map[string]int
}

func newFakeDB() *fakeDB {
	return &fakeDB{handlers: map[string]handler{}, calls: map[string]int{}}
}

func (f *fakeDB) on(name string, h handler) *fakeDB {
	f.handlers[name] = h
	return f
}

func (f *fakeDB) run(sql string, args []any) ([][]any, error) {
	name := strings.Fields(sql)[0]
	f.calls[name]++
	h, ok := f.handlers[name]
	if !ok {
		return nil, nil
	}
	return h(args), nil
}

func (f *fakeDB) Backend() string                { return dialect.NamePostgres }
func (f *fakeDB) IsOpen() bool                   { return !f.closed }
func (f *fakeDB) Ping(ctx context.Context) error { return nil }
func (f *fakeDB) Close()                         { f.closed = true }

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	data, err := f.run(sql, args)
	if err != nil {
		return nil, err
	}
	return &fakeRows{data: data, pos: -1}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) (database.Row, error) {
	data, err := f.run(sql, args)
	if err != nil {
		return nil, err
	}
	return &fakeRows{data: data, pos: 0}, nil
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return 0, nil
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *fakeRows) Columns() ([]string, error) { return nil, nil }
func (r *fakeRows) Close()                     {}
func (r *fakeRows) Err() error                 { return nil }

func (r *fakeRows) Scan(dest ...any) error {
	if r.pos >= len(r.data) {
		return errs.New(errs.ErrKindNotFound, "no rows")
	}
	row := r.data[r.pos]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d values into %d destinations", len(row), len(dest))
	}
	for i, v := range row {
		if err := assign(dest[i], v); err != nil {
			return err
		}
	}
	return nil
}

func assign(dest, v any) error {
	switch d := dest.(type) {
	case *string:
		*d = v.(string)
	case *int64:
		*d = toInt(v)
	case **string:
		if v == nil {
			*d = nil
		} else {
			s := v.(string)
			*d = &s
		}
	case **int64:
		if v == nil {
			*d = nil
		} else {
			n := toInt(v)
			*d = &n
		}
	default:
		return fmt.Errorf("scan: unsupported destination %T", dest)
	}
	return nil
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	}
	panic(fmt.Sprintf("not an int: %T", v))
}

func rowsOf(rows ...[]any) handler {
	return func([]any) [][]any { return rows }
}

// byTable answers with the rows registered for the table argument.
func byTable(m map[string][][]any) handler {
	return func(args []any) [][]any { return m[args[1].(string)] }
}

func newTestIntrospector(t *testing.T, db *fakeDB) *Introspector {
	t.Helper()
	reg := dialect.NewRegistry(&dialect.Profile{
		Dialect:    dialect.Postgres(),
		Queries:    fakeQueries(),
		Converters: convert.Postgres(),
	})
	in, err := New(db, reg)
	require.NoError(t, err)
	return in
}

// shopDB models public.orders(id identity, customer_name, total, note) with
// an index pair and public.order_lines(p, q, r) referencing public.parts(a, b, c).
func shopDB() *fakeDB {
	return newFakeDB().
		on("schema_exists", func(args []any) [][]any {
			if args[0] == "public" {
				return [][]any{{1}}
			}
			return [][]any{{0}}
		}).
		on("table_exists", func(args []any) [][]any {
			switch args[1] {
			case "orders", "order_lines", "parts":
				return [][]any{{1}}
			}
			return [][]any{{0}}
		}).
		on("list_tables", rowsOf([]any{"order_lines"}, []any{"orders"}, []any{"parts"})).
		on("columns", byTable(map[string][][]any{
			"orders": {
				{"id", "integer", "NO", nil, 32, 0, nil},
				{"customer_name", "character varying", "NO", 100, nil, nil, nil},
				{"total", "numeric", "YES", nil, 10, 2, "0"},
				{"note", "text", "YES", nil, nil, nil, nil},
			},
			"order_lines": {
				{"p", "integer", "NO", nil, 32, 0, nil},
				{"q", "integer", "NO", nil, 32, 0, nil},
				{"r", "integer", "NO", nil, 32, 0, nil},
			},
			"parts": {
				{"a", "integer", "NO", nil, 32, 0, nil},
				{"b", "integer", "NO", nil, 32, 0, nil},
				{"c", "integer", "NO", nil, 32, 0, nil},
			},
		})).
		on("identities", byTable(map[string][][]any{
			"orders": {{"id", "1", "1"}},
		})).
		on("primary_key", byTable(map[string][][]any{
			"orders": {{"orders_pkey", "id"}},
			"parts":  {{"parts_pkey", "a"}, {"parts_pkey", "b"}, {"parts_pkey", "c"}},
		})).
		on("foreign_key_names", byTable(map[string][][]any{
			"order_lines": {{"fk_lines_parts"}},
		})).
		on("foreign_key_target", rowsOf([]any{"public", "parts", "parts_pkey"})).
		on("foreign_key_columns", rowsOf(
			[]any{"p", 1, 1},
			[]any{"q", 2, 2},
			[]any{"r", 3, 3},
		)).
		on("indexes", byTable(map[string][][]any{
			"orders": {
				{"ix_orders_customer", `CREATE INDEX ix_orders_customer ON public.orders USING btree (customer_name DESC, total)`},
				{"orders_pkey", `CREATE UNIQUE INDEX orders_pkey ON public.orders USING btree (id)`},
				{"ix_orders_customer", `CREATE INDEX ix_orders_customer ON public.orders USING btree (customer_name DESC, total)`},
			},
		}))
}

// --- tests ---

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, dialect.DefaultRegistry())
	assert.True(t, errs.IsInvalidInput(err))

	_, err = New(newFakeDB(), nil)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = New(newFakeDB(), dialect.NewRegistry())
	assert.True(t, errs.IsInvalidInput(err))
}

func TestInspectTable(t *testing.T) {
	in := newTestIntrospector(t, shopDB())

	table, err := in.InspectTable(context.Background(), "public", "orders")
	require.NoError(t, err)

	assert.Equal(t, "orders", table.Name)
	assert.Equal(t, []string{"id", "customer_name", "total", "note"}, table.ColumnNames())

	id := table.Column("id")
	assert.Equal(t, "integer", id.Type.Name)
	assert.Nil(t, id.Type.Precision, "integer precision is cleared")
	assert.Nil(t, id.Type.Scale)
	assert.False(t, id.IsNullable)
	require.NotNil(t, id.Identity)
	assert.Equal(t, schema.Identity{Seed: "1", Increment: "1"}, *id.Identity)

	name := table.Column("customer_name")
	assert.Equal(t, schema.IntPtr(100), name.Type.Size)
	assert.Nil(t, name.Identity)

	total := table.Column("total")
	assert.Equal(t, schema.IntPtr(10), total.Type.Precision)
	assert.Equal(t, schema.IntPtr(2), total.Type.Scale)
	assert.True(t, total.IsNullable)
	require.NotNil(t, total.Default)
	assert.Equal(t, "0", *total.Default)

	require.NotNil(t, table.PrimaryKey)
	assert.Equal(t, &schema.PrimaryKey{Name: "orders_pkey", Columns: []string{"id"}}, table.PrimaryKey)
	assert.Empty(t, table.ForeignKeys)

	require.Len(t, table.Indexes, 2, "duplicate index rows collapse")
	assert.Equal(t, "ix_orders_customer", table.Indexes[0].Name)
	assert.Equal(t, "orders", table.Indexes[0].TableName)
	assert.False(t, table.Indexes[0].IsUnique)
	assert.Equal(t, []schema.IndexColumn{
		{Name: "customer_name", SortDirection: schema.Descending},
		{Name: "total", SortDirection: schema.Ascending},
	}, table.Indexes[0].Columns)
	assert.Equal(t, "orders_pkey", table.Indexes[1].Name)
	assert.True(t, table.Indexes[1].IsUnique)
}

func TestInspectTable_NoPrimaryKey(t *testing.T) {
	in := newTestIntrospector(t, shopDB())

	pk, err := in.PrimaryKey(context.Background(), "public", "order_lines")
	require.NoError(t, err)
	assert.Nil(t, pk)
}

func TestForeignKeys_PairByPosition(t *testing.T) {
	in := newTestIntrospector(t, shopDB())

	fks, err := in.ForeignKeys(context.Background(), "public", "order_lines")
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Equal(t, &schema.ForeignKey{
		Name:                  "fk_lines_parts",
		ColumnNames:           []string{"p", "q", "r"},
		ReferencedTableName:   "parts",
		ReferencedColumnNames: []string{"a", "b", "c"},
	}, fks[0])
}

func TestForeignKeys_UniquePositionWins(t *testing.T) {
	db := shopDB().on("foreign_key_columns", rowsOf(
		[]any{"p", 1, 2},
		[]any{"q", 2, 3},
		[]any{"r", 3, 1},
	))
	in := newTestIntrospector(t, db)

	fks, err := in.ForeignKeys(context.Background(), "public", "order_lines")
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Equal(t, []string{"p", "q", "r"}, fks[0].ColumnNames)
	assert.Equal(t, []string{"b", "c", "a"}, fks[0].ReferencedColumnNames)
}

func TestForeignKeys_OrdinalFallback(t *testing.T) {
	db := shopDB().on("foreign_key_columns", rowsOf(
		[]any{"p", 1, nil},
		[]any{"q", 2, nil},
		[]any{"r", 3, nil},
	))
	in := newTestIntrospector(t, db)

	fks, err := in.ForeignKeys(context.Background(), "public", "order_lines")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, fks[0].ReferencedColumnNames)
}

func TestForeignKeys_Mismatch(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
	}{
		{name: "fewer columns", rows: [][]any{{"p", 1, 1}, {"q", 2, 2}}},
		{name: "position out of range", rows: [][]any{{"p", 1, 1}, {"q", 2, 2}, {"r", 3, 4}}},
		{name: "repeated position", rows: [][]any{{"p", 1, 1}, {"q", 2, 1}, {"r", 3, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := shopDB().on("foreign_key_columns", rowsOf(tt.rows...))
			in := newTestIntrospector(t, db)

			_, err := in.ForeignKeys(context.Background(), "public", "order_lines")
			require.Error(t, err)
			assert.True(t, errs.IsQueryFailed(err))
		})
	}
}

func TestForeignKeys_ReferencedTableWithoutKey(t *testing.T) {
	db := shopDB().on("foreign_key_target", rowsOf([]any{"public", "orders_archive", nil}))
	in := newTestIntrospector(t, db)

	_, err := in.ForeignKeys(context.Background(), "public", "order_lines")
	assert.True(t, errs.IsQueryFailed(err))
}

func TestForeignKeys_ReferencedKey(t *testing.T) {
	tests := []struct {
		name    string
		key     any
		wantErr bool
	}{
		{name: "primary key", key: "parts_pkey"},
		{name: "not reported", key: nil},
		{name: "other unique key", key: "parts_serial_key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := shopDB().on("foreign_key_target", rowsOf([]any{"public", "parts", tt.key}))
			in := newTestIntrospector(t, db)

			fks, err := in.ForeignKeys(context.Background(), "public", "order_lines")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.IsQueryFailed(err))
				assert.Contains(t, err.Error(), "parts_serial_key")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, fks[0].ReferencedColumnNames)
		})
	}
}

func TestInspectTable_MissingSchemaRunsNoDetailQueries(t *testing.T) {
	db := shopDB()
	in := newTestIntrospector(t, db)

	_, err := in.InspectTable(context.Background(), "sales", "orders")
	require.Error(t, err)
	assert.True(t, errs.IsSchemaNotFound(err))

	assert.Equal(t, 1, db.calls["schema_exists"])
	for _, q := range []string{"table_exists", "columns", "identities", "primary_key", "foreign_key_names", "indexes"} {
		assert.Zero(t, db.calls[q], q)
	}
}

func TestInspectTable_MissingTable(t *testing.T) {
	db := shopDB()
	in := newTestIntrospector(t, db)

	_, err := in.InspectTable(context.Background(), "public", "invoices")
	require.Error(t, err)
	assert.True(t, errs.IsTableNotFound(err))
	assert.Zero(t, db.calls["columns"])
}

func TestInspectTable_EmptyTableName(t *testing.T) {
	in := newTestIntrospector(t, shopDB())

	_, err := in.InspectTable(context.Background(), "public", "")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestInspectTable_DefaultSchema(t *testing.T) {
	in := newTestIntrospector(t, shopDB())

	table, err := in.InspectTable(context.Background(), "", "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders", table.Name)
}

func TestInspectTable_MalformedIndex(t *testing.T) {
	db := shopDB().on("indexes", rowsOf([]any{"ix_bad", "CREATE INDEX ix_bad ON t"}))
	in := newTestIntrospector(t, db)

	_, err := in.InspectTable(context.Background(), "public", "orders")
	require.Error(t, err)
	assert.True(t, errs.IsMalformedIndexDefinition(err))
}

func TestClosedConnection(t *testing.T) {
	db := shopDB()
	in := newTestIntrospector(t, db)
	db.Close()
	ctx := context.Background()

	_, err := in.ListSchemas(ctx)
	assert.True(t, errs.IsConnectionNotOpen(err))
	_, err = in.ListTables(ctx, "public")
	assert.True(t, errs.IsConnectionNotOpen(err))
	_, err = in.InspectTable(ctx, "public", "orders")
	assert.True(t, errs.IsConnectionNotOpen(err))
	assert.Empty(t, db.calls)
}

func TestListSchemas_HidesSystemSchemas(t *testing.T) {
	db := shopDB().on("list_schemas", rowsOf(
		[]any{"sales"}, []any{"pg_catalog"}, []any{"public"}, []any{"information_schema"},
	))
	in := newTestIntrospector(t, db)

	names, err := in.ListSchemas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"public", "sales"}, names)
}

func TestListTables(t *testing.T) {
	in := newTestIntrospector(t, shopDB())

	names, err := in.ListTables(context.Background(), "public")
	require.NoError(t, err)
	assert.Equal(t, []string{"order_lines", "orders", "parts"}, names)
}

func TestListTables_EmptySchema(t *testing.T) {
	db := shopDB().on("list_tables", rowsOf())
	in := newTestIntrospector(t, db)

	names, err := in.ListTables(context.Background(), "public")
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestListTablesOrdered(t *testing.T) {
	in := newTestIntrospector(t, shopDB())
	ctx := context.Background()

	names, err := in.ListTablesOrdered(ctx, "public", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "parts", "order_lines"}, names)

	names, err = in.ListTablesOrdered(ctx, "public", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"order_lines", "parts", "orders"}, names)
}

func TestInspectSchema(t *testing.T) {
	in := newTestIntrospector(t, shopDB())

	tables, err := in.InspectSchema(context.Background(), "public")
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, "orders", tables[0].Name)
	assert.Equal(t, "parts", tables[1].Name)
	assert.Equal(t, "order_lines", tables[2].Name)
}

func TestOrderTables(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		deps  map[string][]string
		want  []string
	}{
		{
			name:  "independent",
			names: []string{"c", "a", "b"},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "chain",
			names: []string{"a", "b", "c"},
			deps:  map[string][]string{"a": {"b"}, "b": {"c"}},
			want:  []string{"c", "b", "a"},
		},
		{
			name:  "freed table sorts with the rest",
			names: []string{"a", "b", "z"},
			deps:  map[string][]string{"b": {"z"}},
			want:  []string{"a", "z", "b"},
		},
		{
			name:  "self reference ignored",
			names: []string{"employee", "dept"},
			deps:  map[string][]string{"employee": {"employee", "dept"}},
			want:  []string{"dept", "employee"},
		},
		{
			name:  "cycle appended by name",
			names: []string{"x", "y", "root"},
			deps:  map[string][]string{"x": {"y"}, "y": {"x"}},
			want:  []string{"root", "x", "y"},
		},
		{
			name:  "unknown reference ignored",
			names: []string{"a"},
			deps:  map[string][]string{"a": {"elsewhere"}},
			want:  []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderTables(tt.names, tt.deps, true))
		})
	}
}

func TestToColumn_DeclaredTypes(t *testing.T) {
	d := dialect.SQLite()

	col := toColumn(d, columnRecord{Name: "code", DataType: "VARCHAR(12)", IsNullable: "NO"})
	assert.Equal(t, "VARCHAR", col.Type.Name)
	assert.Equal(t, schema.IntPtr(12), col.Type.Size)

	col = toColumn(d, columnRecord{Name: "amount", DataType: "DECIMAL(10, 2)", IsNullable: "YES"})
	assert.Equal(t, "DECIMAL", col.Type.Name)
	assert.Equal(t, schema.IntPtr(10), col.Type.Precision)
	assert.Equal(t, schema.IntPtr(2), col.Type.Scale)
	assert.True(t, col.IsNullable)

	col = toColumn(d, columnRecord{Name: "raw", DataType: "BLOB", IsNullable: "YES"})
	assert.Equal(t, "BLOB", col.Type.Name)
	assert.Nil(t, col.Type.Size)
}
