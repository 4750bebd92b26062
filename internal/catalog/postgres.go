package catalog

// Postgres returns the PostgreSQL catalog queries. Integer columns are cast
// to int so every driver scans them the same way.
func Postgres() *QuerySet {
	return &QuerySet{
		Backend: "postgres",

		SchemaExists: `
		SELECT COUNT(*)
		FROM information_schema.schemata
		WHERE schema_name = @schema`,

		ListSchemas: `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
		  AND schema_name NOT LIKE 'pg_temp_%'
		  AND schema_name NOT LIKE 'pg_toast_temp_%'
		ORDER BY schema_name`,

		ListTables: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = @schema
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`,

		TableExists: `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = @schema
		  AND table_name   = @table
		  AND table_type   = 'BASE TABLE'`,

		Columns: `
		SELECT c.column_name,
		       c.data_type,
		       c.is_nullable,
		       c.character_maximum_length::int,
		       c.numeric_precision::int,
		       c.numeric_scale::int,
		       c.column_default
		FROM information_schema.columns c
		WHERE c.table_schema = @schema
		  AND c.table_name   = @table
		ORDER BY c.ordinal_position`,

		Identities: `
		SELECT c.column_name,
		       c.identity_start,
		       c.identity_increment
		FROM information_schema.columns c
		WHERE c.table_schema = @schema
		  AND c.table_name   = @table
		  AND c.is_identity  = 'YES'`,

		PrimaryKey: `
		SELECT tc.constraint_name,
		       kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_schema = tc.constraint_schema
		 AND kcu.constraint_name   = tc.constraint_name
		 AND kcu.table_name        = tc.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema    = @schema
		  AND tc.table_name      = @table
		ORDER BY kcu.ordinal_position`,

		ForeignKeyNames: `
		SELECT DISTINCT tc.constraint_name
		FROM information_schema.table_constraints tc
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema    = @schema
		  AND tc.table_name      = @table
		ORDER BY tc.constraint_name`,

		ForeignKeyTarget: `
		SELECT DISTINCT ccu.table_schema,
		       ccu.table_name,
		       rc.unique_constraint_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_schema = tc.constraint_schema
		 AND ccu.constraint_name   = tc.constraint_name
		LEFT JOIN information_schema.referential_constraints rc
		  ON rc.constraint_schema = tc.constraint_schema
		 AND rc.constraint_name   = tc.constraint_name
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema    = @schema
		  AND tc.table_name      = @table
		  AND tc.constraint_name = @constraint`,

		ForeignKeyColumns: `
		SELECT kcu.column_name,
		       kcu.ordinal_position::int,
		       kcu.position_in_unique_constraint::int
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema    = @schema
		  AND kcu.table_name      = @table
		  AND kcu.constraint_name = @constraint
		ORDER BY kcu.ordinal_position`,

		Indexes: `
		SELECT indexname,
		       indexdef
		FROM pg_indexes
		WHERE schemaname = @schema
		  AND tablename  = @table
		ORDER BY indexname`,
	}
}
