package indexdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/schema"
)

func asc(name string) schema.IndexColumn { return schema.IndexColumn{Name: name} }

func desc(name string) schema.IndexColumn {
	return schema.IndexColumn{Name: name, SortDirection: schema.Descending}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		def    string
		unique bool
		cols   []schema.IndexColumn
	}{
		{
			name:   "unique with quoted columns",
			def:    `CREATE UNIQUE INDEX ix ON t ("a", "b" DESC)`,
			unique: true,
			cols:   []schema.IndexColumn{asc("a"), desc("b")},
		},
		{
			name: "plain single column",
			def:  "CREATE INDEX ix ON t (x)",
			cols: []schema.IndexColumn{asc("x")},
		},
		{
			name: "pg_indexes output",
			def:  `CREATE INDEX "IX_healthInfo_metricAmetricB" ON zeta."HealthInfo" USING btree ("MetricA", "MetricB" DESC)`,
			cols: []schema.IndexColumn{asc("MetricA"), desc("MetricB")},
		},
		{
			name:   "lowercase unique keyword",
			def:    "create unique index ux on t using btree (id)",
			unique: true,
			cols:   []schema.IndexColumn{asc("id")},
		},
		{
			name: "lowercase desc stays ascending",
			def:  "CREATE INDEX ix ON t (a desc)",
			cols: []schema.IndexColumn{asc("a desc")},
		},
		{
			name: "mysql backticks and explicit asc",
			def:  "CREATE INDEX `ix_name` ON `person` (`last_name` ASC, `first_name` DESC)",
			cols: []schema.IndexColumn{asc("last_name"), desc("first_name")},
		},
		{
			name: "brackets",
			def:  "CREATE INDEX [ix] ON [t] ([a] DESC, [b])",
			cols: []schema.IndexColumn{desc("a"), asc("b")},
		},
		{
			name: "nulls ordering",
			def:  `CREATE INDEX ix ON public.t USING btree (a DESC NULLS LAST, b NULLS FIRST)`,
			cols: []schema.IndexColumn{desc("a"), asc("b")},
		},
		{
			name:   "partial index predicate ignored",
			def:    `CREATE UNIQUE INDEX ix ON public.t USING btree (a) WHERE (deleted_at IS NULL)`,
			unique: true,
			cols:   []schema.IndexColumn{asc("a")},
		},
		{
			name: "expression column kept whole",
			def:  `CREATE INDEX ix ON public.t USING btree (lower((email)::text), id)`,
			cols: []schema.IndexColumn{asc("lower((email)::text)"), asc("id")},
		},
		{
			name: "unique in table name is not a token",
			def:  "CREATE INDEX ix ON unique_things (a)",
			cols: []schema.IndexColumn{asc("a")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.unique, got.Unique)
			assert.Equal(t, tt.cols, got.Columns)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"CREATE INDEX ix ON t",
		"",
		"CREATE INDEX ix ON t (a",
		"CREATE INDEX ix ON t ()",
		"CREATE INDEX ix ON t (a, )",
	}

	for _, def := range tests {
		t.Run(def, func(t *testing.T) {
			_, err := Parse(def)
			require.Error(t, err)
			assert.True(t, errs.IsMalformedIndexDefinition(err))
		})
	}
}
