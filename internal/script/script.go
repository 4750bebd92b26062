// Package script renders schema.Table values back into DDL text.
//
// Output is deterministic: the same table and options always give the same
// bytes, so scripts can be diffed and committed.
package script

import (
	"fmt"
	"strings"

	"github.com/koustreak/dbscribe/internal/dialect"
	"github.com/koustreak/dbscribe/internal/schema"
)

const (
	indent    = "    "
	separator = ";\n\n"
)

// Builder renders DDL for one dialect.
type Builder struct {
	dialect  *dialect.Dialect
	schema   string
	defaults bool
	minimal  bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithSchema qualifies table names with name, subject to the dialect's
// OmitDefaultSchema rule.
func WithSchema(name string) Option {
	return func(b *Builder) { b.schema = name }
}

// WithDefaults renders column default expressions.
func WithDefaults() Option {
	return func(b *Builder) { b.defaults = true }
}

// WithMinimalQuoting quotes identifiers only when the dialect requires it.
// The default quotes every identifier.
func WithMinimalQuoting() Option {
	return func(b *Builder) { b.minimal = true }
}

// New returns a Builder for d.
func New(d *dialect.Dialect, opts ...Option) *Builder {
	b := &Builder{dialect: d}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildCreateTable renders CREATE TABLE with one column per line. With
// includeConstraints the primary key and foreign keys follow the columns.
func (b *Builder) BuildCreateTable(t *schema.Table, includeConstraints bool) string {
	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	for _, col := range t.Columns {
		lines = append(lines, b.column(col))
	}

	if includeConstraints {
		if pk := t.PrimaryKey; pk != nil {
			lines = append(lines, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY(%s)",
				b.ident(pk.Name), b.identList(pk.Columns)))
		}
		for _, fk := range t.ForeignKeys {
			lines = append(lines, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY(%s) REFERENCES %s(%s)",
				b.ident(fk.Name),
				b.identList(fk.ColumnNames),
				b.table(fk.ReferencedTableName),
				b.identList(fk.ReferencedColumnNames)))
		}
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(b.table(t.Name))
	sb.WriteString("(\n")
	for i, line := range lines {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString(indent)
		sb.WriteString(line)
	}
	sb.WriteString(")")
	return sb.String()
}

// BuildInsertDefaultValues renders an insert that relies on every column
// default.
func (b *Builder) BuildInsertDefaultValues(t *schema.Table) string {
	return fmt.Sprintf("INSERT INTO %s %s", b.table(t.Name), b.dialect.DefaultValuesClause)
}

// BuildCreateIndex renders CREATE [UNIQUE] INDEX for ix.
func (b *Builder) BuildCreateIndex(ix *schema.Index) string {
	cols := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		cols[i] = b.ident(c.Name)
		if c.SortDirection == schema.Descending {
			cols[i] += " DESC"
		}
	}

	unique := ""
	if ix.IsUnique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s(%s)",
		unique, b.ident(ix.Name), b.table(ix.TableName), strings.Join(cols, ", "))
}

// BuildDropTable renders DROP TABLE for name.
func (b *Builder) BuildDropTable(name string) string {
	return "DROP TABLE " + b.table(name)
}

// BuildCreateSchemaScript renders every table in the given order, then the
// creatable indexes of each table. Statements are separated by ";\n\n" and
// the script ends without a separator.
func (b *Builder) BuildCreateSchemaScript(tables []*schema.Table, includeConstraints bool) string {
	var stmts []string
	for _, t := range tables {
		stmts = append(stmts, b.BuildCreateTable(t, includeConstraints))
	}
	for _, t := range tables {
		for _, ix := range t.CreatableIndexes() {
			stmts = append(stmts, b.BuildCreateIndex(ix))
		}
	}
	return strings.Join(stmts, separator)
}

// BuildDropSchemaScript renders DROP TABLE for every table in reverse order,
// so referencing tables go first when tables is in creation order.
func (b *Builder) BuildDropSchemaScript(tables []*schema.Table) string {
	stmts := make([]string, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		stmts = append(stmts, b.BuildDropTable(tables[i].Name))
	}
	return strings.Join(stmts, separator)
}

func (b *Builder) column(col *schema.Column) string {
	parts := []string{b.ident(col.Name), b.dialect.RenderType(col.Type)}
	if clause := b.dialect.IdentityClause(col.Identity); clause != "" {
		parts = append(parts, clause)
	}
	if col.IsNullable {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}
	if b.defaults && col.Default != nil && col.Identity == nil {
		parts = append(parts, "DEFAULT "+*col.Default)
	}
	return strings.Join(parts, " ")
}

func (b *Builder) ident(id string) string {
	if b.minimal {
		return b.dialect.Ident(id)
	}
	return b.dialect.Quote(id)
}

func (b *Builder) identList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = b.ident(id)
	}
	return strings.Join(quoted, ", ")
}

func (b *Builder) table(name string) string {
	if !b.dialect.Qualifies(b.schema) {
		return b.ident(name)
	}
	return b.ident(b.schema) + "." + b.ident(name)
}
