// Package dialect holds the per-backend rules for quoting identifiers and
// rendering types. A Dialect is read-only once built and safe to share.
package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koustreak/dbscribe/internal/schema"
)

// Backend names, matching database.Driver values.
const (
	NamePostgres = "postgres"
	NameMySQL    = "mysql"
	NameSQLite   = "sqlite"
)

// Dialect describes how one backend spells identifiers, types and a few
// statement fragments.
type Dialect struct {
	Name          string
	OpenQuote     string
	CloseQuote    string
	DefaultSchema string

	// OmitDefaultSchema leaves names in DefaultSchema unqualified.
	OmitDefaultSchema bool

	// SystemSchemas are hidden from schema listings.
	SystemSchemas []string

	// DefaultValuesClause follows "INSERT INTO t " when no values are given.
	DefaultValuesClause string

	reserved    map[string]struct{}
	noPrecision map[string]struct{}
	undecorated map[string]struct{}
	numbered    bool
	identity    func(*schema.Identity) string
}

// NeedsQuoting reports whether id must be quoted to survive as written.
func (d *Dialect) NeedsQuoting(id string) bool {
	if id == "" {
		return true
	}
	if _, ok := d.reserved[strings.ToLower(id)]; ok {
		return true
	}
	for i, r := range id {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return true
		}
	}
	return false
}

// Quote always quotes id, doubling any embedded closing quote.
func (d *Dialect) Quote(id string) string {
	return d.OpenQuote + strings.ReplaceAll(id, d.CloseQuote, d.CloseQuote+d.CloseQuote) + d.CloseQuote
}

// Ident quotes id only when NeedsQuoting says so.
func (d *Dialect) Ident(id string) string {
	if d.NeedsQuoting(id) {
		return d.Quote(id)
	}
	return id
}

// Qualify renders schema.name. An empty schema, or the default one when
// OmitDefaultSchema is set, yields just the quoted name.
func (d *Dialect) Qualify(schemaName, name string) string {
	if !d.Qualifies(schemaName) {
		return d.Quote(name)
	}
	return d.Quote(schemaName) + "." + d.Quote(name)
}

// Qualifies reports whether names in schemaName carry a schema prefix.
func (d *Dialect) Qualifies(schemaName string) bool {
	return schemaName != "" && !(d.OmitDefaultSchema && schemaName == d.DefaultSchema)
}

// IsSystemSchema reports whether name is one of SystemSchemas.
func (d *Dialect) IsSystemSchema(name string) bool {
	for _, s := range d.SystemSchemas {
		if s == name {
			return true
		}
	}
	return false
}

// ClearsPrecision reports whether typeName has no inherent precision, so
// catalog-reported precision and scale are dropped.
func (d *Dialect) ClearsPrecision(typeName string) bool {
	_, ok := d.noPrecision[strings.ToLower(typeName)]
	return ok
}

// CanDecorate reports whether typeName may carry a (size) or
// (precision, scale) suffix in generated text.
func (d *Dialect) CanDecorate(typeName string) bool {
	_, ok := d.undecorated[strings.ToLower(typeName)]
	return !ok
}

// RenderType renders t as it appears in a column definition.
func (d *Dialect) RenderType(t schema.DbType) string {
	if !d.CanDecorate(t.Name) {
		return t.Name
	}
	switch {
	case t.Size != nil:
		return fmt.Sprintf("%s(%d)", t.Name, *t.Size)
	case t.Precision != nil && t.Scale != nil:
		return fmt.Sprintf("%s(%d, %d)", t.Name, *t.Precision, *t.Scale)
	case t.Precision != nil:
		return fmt.Sprintf("%s(%d)", t.Name, *t.Precision)
	default:
		return t.Name
	}
}

// IdentityClause renders the column suffix for an identity column, or ""
// when the backend has none.
func (d *Dialect) IdentityClause(id *schema.Identity) string {
	if id == nil || d.identity == nil {
		return ""
	}
	return d.identity(id)
}

// Bind returns the placeholder for the n-th (1-based) parameter.
func (d *Dialect) Bind(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
