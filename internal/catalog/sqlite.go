package catalog

// SQLite returns the SQLite catalog queries, built on the table-valued
// pragma functions. SQLite does not name primary or foreign keys, so names
// are synthesized as PK_<table> and FK_<table>_<id>. The reserved
// sqlite_autoindex_* names behind PRIMARY KEY and UNIQUE constraints are
// reported as PK_<table> and UQ_<table>_<n> so generated DDL can recreate
// them. Declared types come back verbatim ("VARCHAR(255)") and are split
// by the introspector.
func SQLite() *QuerySet {
	return &QuerySet{
		Backend: "sqlite",

		SchemaExists: `
		SELECT COUNT(*)
		FROM pragma_database_list
		WHERE name = @schema`,

		ListSchemas: `
		SELECT name
		FROM pragma_database_list
		WHERE name <> 'temp'
		ORDER BY name`,

		ListTables: `
		SELECT name
		FROM pragma_table_list
		WHERE schema = @schema
		  AND type   = 'table'
		  AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`,

		TableExists: `
		SELECT COUNT(*)
		FROM pragma_table_list
		WHERE schema = @schema
		  AND name   = @table
		  AND type   = 'table'`,

		Columns: `
		SELECT name,
		       type,
		       CASE WHEN "notnull" = 0 THEN 'YES' ELSE 'NO' END,
		       CAST(NULL AS INTEGER),
		       CAST(NULL AS INTEGER),
		       CAST(NULL AS INTEGER),
		       dflt_value
		FROM pragma_table_info(@table, @schema)
		ORDER BY cid`,

		Identities: `
		SELECT ti.name,
		       '1',
		       '1'
		FROM pragma_table_info(@table, @schema) ti
		WHERE ti.pk = 1
		  AND lower(ti.type) = 'integer'
		  AND EXISTS (SELECT 1
		              FROM sqlite_master m
		              WHERE m.type = 'table'
		                AND m.name = @table
		                AND upper(m.sql) LIKE '%AUTOINCREMENT%')`,

		PrimaryKey: `
		SELECT 'PK_' || @table,
		       name
		FROM pragma_table_info(@table, @schema)
		WHERE pk > 0
		ORDER BY pk`,

		ForeignKeyNames: `
		SELECT DISTINCT 'FK_' || @table || '_' || id
		FROM pragma_foreign_key_list(@table, @schema)
		ORDER BY 1`,

		ForeignKeyTarget: `
		SELECT DISTINCT @schema,
		       fk."table",
		       CASE WHEN EXISTS (SELECT 1
		                         FROM pragma_foreign_key_list(@table, @schema) f
		                         WHERE 'FK_' || @table || '_' || f.id = @constraint
		                           AND f."to" IS NOT NULL
		                           AND COALESCE((SELECT ti.pk
		                                         FROM pragma_table_info(f."table", @schema) ti
		                                         WHERE ti.name = f."to" COLLATE NOCASE), 0) <> f.seq + 1)
		            THEN 'UNIQUE'
		            ELSE 'PK_' || fk."table"
		       END
		FROM pragma_foreign_key_list(@table, @schema) fk
		WHERE 'FK_' || @table || '_' || fk.id = @constraint`,

		ForeignKeyColumns: `
		SELECT "from",
		       seq + 1,
		       seq + 1
		FROM pragma_foreign_key_list(@table, @schema)
		WHERE 'FK_' || @table || '_' || id = @constraint
		ORDER BY seq`,

		Indexes: `
		SELECT ix.name,
		       'CREATE ' || CASE WHEN ix.is_unique THEN 'UNIQUE ' ELSE '' END ||
		       'INDEX "' || ix.name || '" ON "' || @table || '" (' ||
		       (SELECT group_concat('"' || COALESCE(xi.name, '<expression>') || '"' ||
		                            CASE WHEN xi."desc" THEN ' DESC' ELSE '' END, ', ')
		        FROM pragma_index_xinfo(ix.internal_name, @schema) xi
		        WHERE xi.key = 1) || ')'
		FROM (SELECT il.name AS internal_name,
		             il."unique" AS is_unique,
		             CASE il.origin
		                 WHEN 'pk' THEN 'PK_' || @table
		                 WHEN 'u'  THEN 'UQ_' || @table || '_' ||
		                                replace(il.name, 'sqlite_autoindex_' || @table || '_', '')
		                 ELSE il.name
		             END AS name
		      FROM pragma_index_list(@table, @schema) il) ix
		ORDER BY ix.name`,
	}
}
