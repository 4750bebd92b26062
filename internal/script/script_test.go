package script

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koustreak/dbscribe/internal/dialect"
	"github.com/koustreak/dbscribe/internal/schema"
)

func col(name, typeName string, nullable bool) *schema.Column {
	return &schema.Column{Name: name, Type: schema.DbType{Name: typeName}, IsNullable: nullable}
}

func fragmentTable() *schema.Table {
	code := col("code", "character varying", true)
	code.Type.Size = schema.IntPtr(255)

	return &schema.Table{
		Name: "fragment",
		Columns: []*schema.Column{
			col("id", "uuid", false),
			col("note_translation_id", "uuid", false),
			col("sub_type_id", "uuid", false),
			code,
			col("order", "integer", false),
			col("content", "text", false),
		},
		PrimaryKey: &schema.PrimaryKey{Name: "PK_fragment", Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{
				Name:                  "FK_fragment_noteTranslation",
				ColumnNames:           []string{"note_translation_id"},
				ReferencedTableName:   "note_translation",
				ReferencedColumnNames: []string{"id"},
			},
			{
				Name:                  "FK_fragment_subType",
				ColumnNames:           []string{"sub_type_id"},
				ReferencedTableName:   "fragment_sub_type",
				ReferencedColumnNames: []string{"id"},
			},
		},
		Indexes: []*schema.Index{
			{
				Name:      "PK_fragment",
				TableName: "fragment",
				Columns:   []schema.IndexColumn{{Name: "id"}},
				IsUnique:  true,
			},
			{
				Name:      "UX_fragment_code",
				TableName: "fragment",
				Columns: []schema.IndexColumn{
					{Name: "code"},
					{Name: "order", SortDirection: schema.Descending},
				},
				IsUnique: true,
			},
		},
	}
}

func TestBuildCreateTable(t *testing.T) {
	b := New(dialect.Postgres())

	got := b.BuildCreateTable(fragmentTable(), true)

	want := `CREATE TABLE "fragment"(
    "id" uuid NOT NULL,
    "note_translation_id" uuid NOT NULL,
    "sub_type_id" uuid NOT NULL,
    "code" character varying(255) NULL,
    "order" integer NOT NULL,
    "content" text NOT NULL,
    CONSTRAINT "PK_fragment" PRIMARY KEY("id"),
    CONSTRAINT "FK_fragment_noteTranslation" FOREIGN KEY("note_translation_id") REFERENCES "note_translation"("id"),
    CONSTRAINT "FK_fragment_subType" FOREIGN KEY("sub_type_id") REFERENCES "fragment_sub_type"("id"))`
	assert.Equal(t, want, got)
	assert.Equal(t, got, b.BuildCreateTable(fragmentTable(), true))
}

func TestBuildCreateTable_WithoutConstraints(t *testing.T) {
	table := &schema.Table{
		Name:       "tag",
		Columns:    []*schema.Column{col("id", "integer", false), col("label", "text", true)},
		PrimaryKey: &schema.PrimaryKey{Name: "PK_tag", Columns: []string{"id"}},
	}

	got := New(dialect.Postgres()).BuildCreateTable(table, false)

	assert.Equal(t, "CREATE TABLE \"tag\"(\n    \"id\" integer NOT NULL,\n    \"label\" text NULL)", got)
}

func TestBuildCreateTable_IdentityAndDefaults(t *testing.T) {
	id := col("id", "bigint", false)
	id.Identity = &schema.Identity{Seed: "1", Increment: "1"}
	status := col("status", "character varying", false)
	status.Type.Size = schema.IntPtr(16)
	status.Default = strPtr("'new'::character varying")
	amount := col("amount", "numeric", true)
	amount.Type.Precision, amount.Type.Scale = schema.IntPtr(12), schema.IntPtr(2)

	table := &schema.Table{Name: "payment", Columns: []*schema.Column{id, status, amount}}

	got := New(dialect.Postgres(), WithSchema("billing"), WithDefaults()).BuildCreateTable(table, true)

	want := `CREATE TABLE "billing"."payment"(
    "id" bigint GENERATED BY DEFAULT AS IDENTITY (START WITH 1 INCREMENT BY 1) NOT NULL,
    "status" character varying(16) NOT NULL DEFAULT 'new'::character varying,
    "amount" numeric(12, 2) NULL)`
	assert.Equal(t, want, got)
}

func TestBuildCreateTable_MySQL(t *testing.T) {
	id := col("id", "int", false)
	id.Identity = &schema.Identity{Seed: "1", Increment: "1"}
	table := &schema.Table{
		Name:       "order",
		Columns:    []*schema.Column{id, col("email", "text", false)},
		PrimaryKey: &schema.PrimaryKey{Name: "PRIMARY", Columns: []string{"id"}},
	}

	got := New(dialect.MySQL(), WithSchema("shop"), WithMinimalQuoting()).BuildCreateTable(table, true)

	want := "CREATE TABLE shop.`order`(\n" +
		"    id int AUTO_INCREMENT NOT NULL,\n" +
		"    email text NOT NULL,\n" +
		"    CONSTRAINT `PRIMARY` PRIMARY KEY(id))"
	assert.Equal(t, want, got)
}

func TestBuildInsertDefaultValues(t *testing.T) {
	table := &schema.Table{Name: "audit"}

	tests := []struct {
		name    string
		dialect *dialect.Dialect
		schema  string
		want    string
	}{
		{name: "postgres unqualified", dialect: dialect.Postgres(), want: `INSERT INTO "audit" DEFAULT VALUES`},
		{name: "postgres public", dialect: dialect.Postgres(), schema: "public", want: `INSERT INTO "public"."audit" DEFAULT VALUES`},
		{name: "sqlite main omitted", dialect: dialect.SQLite(), schema: "main", want: `INSERT INTO "audit" DEFAULT VALUES`},
		{name: "mysql", dialect: dialect.MySQL(), schema: "shop", want: "INSERT INTO `shop`.`audit` () VALUES ()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.dialect, WithSchema(tt.schema)).BuildInsertDefaultValues(table))
		})
	}
}

func TestBuildCreateIndex(t *testing.T) {
	b := New(dialect.Postgres())
	table := fragmentTable()

	assert.Equal(t,
		`CREATE UNIQUE INDEX "UX_fragment_code" ON "fragment"("code", "order" DESC)`,
		b.BuildCreateIndex(table.Indexes[1]))

	plain := &schema.Index{Name: "ix_content", TableName: "fragment", Columns: []schema.IndexColumn{{Name: "content"}}}
	assert.Equal(t, `CREATE INDEX "ix_content" ON "fragment"("content")`, b.BuildCreateIndex(plain))
}

func TestBuildDropTable(t *testing.T) {
	assert.Equal(t, `DROP TABLE "fragment"`, New(dialect.Postgres()).BuildDropTable("fragment"))
	assert.Equal(t, "DROP TABLE `shop`.`fragment`", New(dialect.MySQL(), WithSchema("shop")).BuildDropTable("fragment"))
}

func TestBuildCreateSchemaScript(t *testing.T) {
	subType := &schema.Table{
		Name:       "fragment_sub_type",
		Columns:    []*schema.Column{col("id", "uuid", false)},
		PrimaryKey: &schema.PrimaryKey{Name: "PK_fragment_sub_type", Columns: []string{"id"}},
	}
	frag := &schema.Table{
		Name:    "fragment",
		Columns: []*schema.Column{col("id", "uuid", false), col("code", "text", true)},
		Indexes: []*schema.Index{
			{Name: "ix_code", TableName: "fragment", Columns: []schema.IndexColumn{{Name: "code"}}},
		},
	}

	got := New(dialect.Postgres()).BuildCreateSchemaScript([]*schema.Table{subType, frag}, true)

	want := "CREATE TABLE \"fragment_sub_type\"(\n" +
		"    \"id\" uuid NOT NULL,\n" +
		"    CONSTRAINT \"PK_fragment_sub_type\" PRIMARY KEY(\"id\"));\n\n" +
		"CREATE TABLE \"fragment\"(\n" +
		"    \"id\" uuid NOT NULL,\n" +
		"    \"code\" text NULL);\n\n" +
		"CREATE INDEX \"ix_code\" ON \"fragment\"(\"code\")"
	assert.Equal(t, want, got)
}

func TestBuildCreateSchemaScript_SkipsPrimaryKeyIndex(t *testing.T) {
	got := New(dialect.Postgres()).BuildCreateSchemaScript([]*schema.Table{fragmentTable()}, false)

	assert.NotContains(t, got, `INDEX "PK_fragment"`)
	assert.Contains(t, got, `CREATE UNIQUE INDEX "UX_fragment_code"`)
}

func TestBuildDropSchemaScript(t *testing.T) {
	tables := []*schema.Table{{Name: "parent"}, {Name: "child"}}

	got := New(dialect.Postgres()).BuildDropSchemaScript(tables)

	assert.Equal(t, "DROP TABLE \"child\";\n\nDROP TABLE \"parent\"", got)
}

func strPtr(s string) *string { return &s }
