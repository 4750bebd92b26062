// Package catalog holds the SQL each backend needs to describe its own
// structure. Queries are data: the introspector binds and runs them, and
// every query returns its columns in the fixed order documented on QuerySet.
package catalog

import (
	"fmt"
	"strings"

	"github.com/koustreak/dbscribe/internal/errs"
)

// Named parameter markers used in catalog SQL.
const (
	ParamSchema     = "schema"
	ParamTable      = "table"
	ParamConstraint = "constraint"
)

// QuerySet is the catalog SQL for one backend. Markers @schema, @table and
// @constraint are rewritten by Bind.
type QuerySet struct {
	Backend string

	// SchemaExists returns one row: count.
	SchemaExists string
	// ListSchemas returns: schema_name.
	ListSchemas string
	// ListTables returns base tables only: table_name, ordered by name.
	ListTables string
	// TableExists returns one row: count.
	TableExists string
	// Columns returns: column_name, data_type, is_nullable ('YES'/'NO'),
	// max_length, numeric_precision, numeric_scale, column_default,
	// ordered by ordinal position.
	Columns string
	// Identities returns: column_name, seed, increment.
	Identities string
	// PrimaryKey returns: constraint_name, column_name, ordered by position
	// within the key.
	PrimaryKey string
	// ForeignKeyNames returns: constraint_name, distinct, ordered by name.
	ForeignKeyNames string
	// ForeignKeyTarget returns: referenced_schema, referenced_table,
	// referenced_key. referenced_key names the unique constraint the foreign
	// key points at, or is NULL when the catalog does not say.
	ForeignKeyTarget string
	// ForeignKeyColumns returns: column_name, ordinal_position,
	// position_in_unique_constraint, ordered by ordinal position.
	ForeignKeyColumns string
	// Indexes returns: index_name, index_definition, ordered by name.
	Indexes string
}

// Params maps marker names to values.
type Params map[string]any

// Bind rewrites @name markers in query into backend placeholders produced
// by placeholder(n) and returns the matching argument list. Numbered styles
// ($1) reuse one argument per name; positional styles (?) repeat it per
// occurrence. "@@" (MySQL system variables) and quoted literals are left
// alone.
func Bind(query string, placeholder func(int) string, params Params) (string, []any, error) {
	numbered := placeholder(1) != placeholder(2)

	var (
		sb      strings.Builder
		args    []any
		indexOf = map[string]int{}
		quoted  bool
	)
	sb.Grow(len(query))

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			sb.WriteByte(c)
			continue
		case quoted || c != '@':
			sb.WriteByte(c)
			continue
		}

		if i+1 < len(query) && query[i+1] == '@' {
			j := i + 2
			for j < len(query) && isIdentChar(query[j]) {
				j++
			}
			sb.WriteString(query[i:j])
			i = j - 1
			continue
		}

		j := i + 1
		for j < len(query) && isIdentChar(query[j]) {
			j++
		}
		name := query[i+1 : j]
		if name == "" {
			sb.WriteByte(c)
			continue
		}
		value, ok := params[name]
		if !ok {
			return "", nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("catalog query uses unbound parameter @%s", name))
		}

		if numbered {
			n, seen := indexOf[name]
			if !seen {
				args = append(args, value)
				n = len(args)
				indexOf[name] = n
			}
			sb.WriteString(placeholder(n))
		} else {
			args = append(args, value)
			sb.WriteString(placeholder(len(args)))
		}
		i = j - 1
	}

	return sb.String(), args, nil
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
