package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/schema"
)

func TestNeedsQuoting(t *testing.T) {
	d := Postgres()
	tests := []struct {
		id   string
		want bool
	}{
		{"fragment", false},
		{"note_translation_id", false},
		{"_hidden", false},
		{"col2", false},
		{"order", true},
		{"ORDER", true},
		{"PersonId", true},
		{"2col", true},
		{"with space", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, d.NeedsQuoting(tt.id))
		})
	}
}

func TestQuoteAndIdent(t *testing.T) {
	pg, my := Postgres(), MySQL()

	assert.Equal(t, `"order"`, pg.Quote("order"))
	assert.Equal(t, `"we""ird"`, pg.Quote(`we"ird`))
	assert.Equal(t, "`we``ird`", my.Quote("we`ird"))

	assert.Equal(t, "fragment", pg.Ident("fragment"))
	assert.Equal(t, `"order"`, pg.Ident("order"))
	assert.Equal(t, "`key`", my.Ident("key"))
}

func TestQualify(t *testing.T) {
	assert.Equal(t, `"public"."t"`, Postgres().Qualify("public", "t"))
	assert.Equal(t, `"zeta"."t"`, Postgres().Qualify("zeta", "t"))
	assert.Equal(t, `"t"`, Postgres().Qualify("", "t"))
	assert.Equal(t, `"t"`, SQLite().Qualify("main", "t"))
	assert.Equal(t, `"aux"."t"`, SQLite().Qualify("aux", "t"))
	assert.Equal(t, "`shop`.`t`", MySQL().Qualify("shop", "t"))
	assert.False(t, MySQL().Qualifies(""))
	assert.True(t, Postgres().Qualifies("public"))
}

func TestRenderType(t *testing.T) {
	pg := Postgres()
	tests := []struct {
		name string
		in   schema.DbType
		want string
	}{
		{"varchar size", schema.DbType{Name: "character varying", Size: schema.IntPtr(255)}, "character varying(255)"},
		{"numeric precision scale", schema.DbType{Name: "numeric", Precision: schema.IntPtr(8), Scale: schema.IntPtr(2)}, "numeric(8, 2)"},
		{"numeric precision only", schema.DbType{Name: "numeric", Precision: schema.IntPtr(10)}, "numeric(10)"},
		{"integer never decorated", schema.DbType{Name: "integer", Precision: schema.IntPtr(32), Scale: schema.IntPtr(0)}, "integer"},
		{"text never decorated", schema.DbType{Name: "text", Size: schema.IntPtr(1)}, "text"},
		{"uuid", schema.DbType{Name: "uuid"}, "uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pg.RenderType(tt.in))
		})
	}

	assert.Equal(t, "VARCHAR(40)", SQLite().RenderType(schema.DbType{Name: "VARCHAR", Size: schema.IntPtr(40)}))
	assert.Equal(t, "INTEGER", SQLite().RenderType(schema.DbType{Name: "INTEGER", Size: schema.IntPtr(4)}))
}

func TestClearsPrecision(t *testing.T) {
	pg := Postgres()
	for _, name := range []string{"smallint", "integer", "bigint", "double precision", "real"} {
		assert.True(t, pg.ClearsPrecision(name), name)
	}
	assert.False(t, pg.ClearsPrecision("numeric"))
	assert.True(t, MySQL().ClearsPrecision("INT"))
}

func TestBindAndClauses(t *testing.T) {
	assert.Equal(t, "$3", Postgres().Bind(3))
	assert.Equal(t, "?", MySQL().Bind(3))
	assert.Equal(t, "?", SQLite().Bind(1))

	id := &schema.Identity{Seed: "1", Increment: "1"}
	assert.Equal(t, "GENERATED BY DEFAULT AS IDENTITY (START WITH 1 INCREMENT BY 1)", Postgres().IdentityClause(id))
	assert.Equal(t, "AUTO_INCREMENT", MySQL().IdentityClause(id))
	assert.Equal(t, "", SQLite().IdentityClause(id))
	assert.Equal(t, "", Postgres().IdentityClause(nil))

	assert.Equal(t, "DEFAULT VALUES", Postgres().DefaultValuesClause)
	assert.Equal(t, "() VALUES ()", MySQL().DefaultValuesClause)
}

func TestIsSystemSchema(t *testing.T) {
	pg := Postgres()
	assert.True(t, pg.IsSystemSchema("pg_catalog"))
	assert.True(t, pg.IsSystemSchema("information_schema"))
	assert.False(t, pg.IsSystemSchema("public"))
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, []string{NameMySQL, NamePostgres, NameSQLite}, reg.Names())

	p, err := reg.Lookup(NamePostgres)
	require.NoError(t, err)
	assert.Equal(t, "public", p.Dialect.DefaultSchema)
	assert.Equal(t, NamePostgres, p.Queries.Backend)
	assert.Equal(t, NamePostgres, p.Converters.Backend())

	_, err = reg.Lookup("oracle")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}
