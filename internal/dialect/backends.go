package dialect

import (
	"fmt"

	"github.com/koustreak/dbscribe/internal/schema"
)

// Postgres returns the PostgreSQL dialect.
func Postgres() *Dialect {
	return &Dialect{
		Name:                NamePostgres,
		OpenQuote:           `"`,
		CloseQuote:          `"`,
		DefaultSchema:       "public",
		OmitDefaultSchema:   false,
		SystemSchemas:       []string{"information_schema", "pg_catalog", "pg_toast"},
		DefaultValuesClause: "DEFAULT VALUES",
		reserved:            set(postgresReserved...),
		noPrecision:         set("smallint", "integer", "bigint", "double precision", "real"),
		undecorated: set(
			"smallint", "integer", "bigint", "real", "double precision", "money",
			"boolean", "uuid", "text", "bytea", "date", "json", "jsonb",
			"timestamp without time zone", "timestamp with time zone",
			"time without time zone", "time with time zone",
		),
		numbered: true,
		identity: func(id *schema.Identity) string {
			return fmt.Sprintf("GENERATED BY DEFAULT AS IDENTITY (START WITH %s INCREMENT BY %s)", id.Seed, id.Increment)
		},
	}
}

// MySQL returns the MySQL dialect. A MySQL schema is a database, so the
// default schema is empty and resolves to DATABASE() in catalog queries.
func MySQL() *Dialect {
	return &Dialect{
		Name:                NameMySQL,
		OpenQuote:           "`",
		CloseQuote:          "`",
		DefaultSchema:       "",
		OmitDefaultSchema:   true,
		SystemSchemas:       []string{"information_schema", "mysql", "performance_schema", "sys"},
		DefaultValuesClause: "() VALUES ()",
		reserved:            set(mysqlReserved...),
		noPrecision:         set("tinyint", "smallint", "mediumint", "int", "bigint", "float", "double"),
		undecorated: set(
			"tinyint", "smallint", "mediumint", "int", "bigint", "float", "double",
			"tinytext", "text", "mediumtext", "longtext",
			"tinyblob", "blob", "mediumblob", "longblob",
			"date", "datetime", "timestamp", "time", "year", "json",
		),
		identity: func(*schema.Identity) string { return "AUTO_INCREMENT" },
	}
}

// SQLite returns the SQLite dialect. SQLite has no standalone identity
// clause; AUTOINCREMENT only exists on an inline INTEGER PRIMARY KEY.
func SQLite() *Dialect {
	return &Dialect{
		Name:                NameSQLite,
		OpenQuote:           `"`,
		CloseQuote:          `"`,
		DefaultSchema:       "main",
		OmitDefaultSchema:   true,
		SystemSchemas:       []string{"temp"},
		DefaultValuesClause: "DEFAULT VALUES",
		reserved:            set(sqliteReserved...),
		noPrecision:         set("integer", "int", "bigint", "smallint", "tinyint", "real", "double", "float"),
		undecorated:         set("integer", "int", "bigint", "smallint", "tinyint", "real", "double", "float", "text", "blob"),
	}
}

var postgresReserved = []string{
	"all", "analyse", "analyze", "and", "any", "array", "as", "asc", "asymmetric",
	"authorization", "binary", "both", "case", "cast", "check", "collate", "column",
	"constraint", "create", "cross", "current_date", "current_role", "current_time",
	"current_timestamp", "current_user", "default", "deferrable", "desc", "distinct",
	"do", "else", "end", "except", "false", "fetch", "for", "foreign", "from", "full",
	"grant", "group", "having", "ilike", "in", "initially", "inner", "intersect", "into",
	"is", "isnull", "join", "lateral", "leading", "left", "like", "limit", "localtime",
	"localtimestamp", "natural", "not", "notnull", "null", "offset", "on", "only", "or",
	"order", "outer", "overlaps", "placing", "primary", "references", "returning",
	"right", "select", "session_user", "similar", "some", "symmetric", "table", "then",
	"to", "trailing", "true", "union", "unique", "user", "using", "variadic", "verbose",
	"when", "where", "window", "with",
}

var mysqlReserved = []string{
	"add", "all", "alter", "and", "as", "asc", "before", "between", "bigint", "binary",
	"blob", "both", "by", "call", "cascade", "case", "change", "char", "check", "column",
	"condition", "constraint", "create", "cross", "database", "default", "delete", "desc",
	"describe", "distinct", "drop", "else", "exists", "false", "for", "foreign", "from",
	"grant", "group", "having", "if", "in", "index", "inner", "insert", "int", "integer",
	"interval", "into", "is", "join", "key", "keys", "left", "like", "limit", "lock",
	"match", "not", "null", "on", "option", "or", "order", "outer", "primary", "range",
	"references", "rename", "replace", "right", "select", "set", "show", "table", "then",
	"to", "true", "union", "unique", "update", "usage", "use", "using", "values", "when",
	"where", "with",
}

var sqliteReserved = []string{
	"abort", "action", "add", "after", "all", "alter", "and", "as", "asc", "attach",
	"autoincrement", "before", "begin", "between", "by", "cascade", "case", "cast",
	"check", "collate", "column", "commit", "conflict", "constraint", "create", "cross",
	"default", "deferrable", "delete", "desc", "detach", "distinct", "drop", "each",
	"else", "end", "escape", "except", "exists", "foreign", "from", "full", "glob",
	"group", "having", "if", "in", "index", "inner", "insert", "intersect", "into", "is",
	"isnull", "join", "key", "left", "like", "limit", "match", "natural", "not",
	"notnull", "null", "of", "offset", "on", "or", "order", "outer", "plan", "pragma",
	"primary", "query", "raise", "references", "regexp", "reindex", "release", "rename",
	"replace", "restrict", "right", "rollback", "row", "savepoint", "select", "set",
	"table", "temp", "temporary", "then", "to", "transaction", "trigger", "union",
	"unique", "update", "using", "vacuum", "values", "view", "virtual", "when", "where",
}
