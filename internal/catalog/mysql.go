package catalog

import "strings"

// mysqlSchema resolves an empty schema to the connection's database.
const mysqlSchema = `COALESCE(NULLIF(@schema, ''), DATABASE())`

// MySQL returns the MySQL catalog queries. MySQL has no free-text index
// definition, so Indexes rebuilds one from information_schema.statistics.
func MySQL() *QuerySet {
	return &QuerySet{
		Backend: "mysql",

		SchemaExists: `
		SELECT COUNT(*)
		FROM information_schema.schemata
		WHERE schema_name = ` + mysqlSchema,

		ListSchemas: `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
		ORDER BY schema_name`,

		ListTables: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ` + mysqlSchema + `
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`,

		TableExists: `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = ` + mysqlSchema + `
		  AND table_name   = @table
		  AND table_type   = 'BASE TABLE'`,

		Columns: `
		SELECT column_name,
		       data_type,
		       is_nullable,
		       CAST(character_maximum_length AS SIGNED),
		       CAST(numeric_precision AS SIGNED),
		       CAST(numeric_scale AS SIGNED),
		       column_default
		FROM information_schema.columns
		WHERE table_schema = ` + mysqlSchema + `
		  AND table_name   = @table
		ORDER BY ordinal_position`,

		Identities: `
		SELECT column_name,
		       CAST(@@auto_increment_offset AS CHAR),
		       CAST(@@auto_increment_increment AS CHAR)
		FROM information_schema.columns
		WHERE table_schema = ` + mysqlSchema + `
		  AND table_name   = @table
		  AND extra LIKE '%auto_increment%'`,

		PrimaryKey: `
		SELECT tc.constraint_name,
		       kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_schema = tc.constraint_schema
		 AND kcu.constraint_name   = tc.constraint_name
		 AND kcu.table_name        = tc.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema    = ` + mysqlSchema + `
		  AND tc.table_name      = @table
		ORDER BY kcu.ordinal_position`,

		ForeignKeyNames: `
		SELECT DISTINCT constraint_name
		FROM information_schema.table_constraints
		WHERE constraint_type = 'FOREIGN KEY'
		  AND table_schema    = ` + mysqlSchema + `
		  AND table_name      = @table
		ORDER BY constraint_name`,

		ForeignKeyTarget: `
		SELECT DISTINCT kcu.referenced_table_schema,
		       kcu.referenced_table_name,
		       rc.unique_constraint_name
		FROM information_schema.key_column_usage kcu
		LEFT JOIN information_schema.referential_constraints rc
		  ON rc.constraint_schema = kcu.constraint_schema
		 AND rc.constraint_name   = kcu.constraint_name
		 AND rc.table_name        = kcu.table_name
		WHERE kcu.table_schema    = ` + mysqlSchema + `
		  AND kcu.table_name      = @table
		  AND kcu.constraint_name = @constraint
		  AND kcu.referenced_table_name IS NOT NULL`,

		ForeignKeyColumns: `
		SELECT column_name,
		       CAST(ordinal_position AS SIGNED),
		       CAST(position_in_unique_constraint AS SIGNED)
		FROM information_schema.key_column_usage
		WHERE table_schema    = ` + mysqlSchema + `
		  AND table_name      = @table
		  AND constraint_name = @constraint
		ORDER BY ordinal_position`,

		Indexes: mysqlIndexes,
	}
}

// mysqlIndexes writes backticks as "~" since they cannot appear in a raw
// string literal.
var mysqlIndexes = strings.ReplaceAll(`
		SELECT index_name,
		       CONCAT('CREATE ', IF(MAX(non_unique) = 0, 'UNIQUE ', ''),
		              'INDEX ~', index_name, '~ ON ~', table_name, '~ (',
		              GROUP_CONCAT(CONCAT('~', column_name, '~', IF(collation = 'D', ' DESC', ''))
		                           ORDER BY seq_in_index SEPARATOR ', '),
		              ')')
		FROM information_schema.statistics
		WHERE table_schema = ` + mysqlSchema + `
		  AND table_name   = @table
		  AND column_name IS NOT NULL
		GROUP BY index_name, table_name
		ORDER BY index_name`, "~", "`")
