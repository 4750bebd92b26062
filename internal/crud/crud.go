// Package crud builds parameterized row statements for a schema.Table.
//
// Every referenced column is resolved through the backend's converter
// registry: the parameter type comes from the column's canonical type name
// and the value is converted to its backend-native form. A column type with
// no registry entry fails the whole call with UnsupportedColumnType.
package crud

import (
	"fmt"
	"strings"

	"github.com/koustreak/dbscribe/internal/convert"
	"github.com/koustreak/dbscribe/internal/dialect"
	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/schema"
)

// Param is one bound parameter.
type Param struct {
	Name   string
	Column string
	Type   convert.ParamType
	// Size is the length of a string or []byte value, nil otherwise.
	Size  *int
	Value any
}

// Statement is SQL text plus its parameters in placeholder order.
type Statement struct {
	SQL    string
	Params []Param
}

// Args returns the parameter values, ready for database.DB.Exec.
func (s *Statement) Args() []any {
	args := make([]any, len(s.Params))
	for i, p := range s.Params {
		args[i] = p.Value
	}
	return args
}

// Builder builds statements for one backend profile.
type Builder struct {
	dialect    *dialect.Dialect
	converters *convert.Registry
	schema     string
}

// Option configures a Builder.
type Option func(*Builder)

// WithSchema qualifies table names with name, subject to the dialect's
// OmitDefaultSchema rule.
func WithSchema(name string) Option {
	return func(b *Builder) { b.schema = name }
}

// New returns a Builder for p.
func New(p *dialect.Profile, opts ...Option) *Builder {
	b := &Builder{dialect: p.Dialect, converters: p.Converters}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildInsert inserts the columns present in row, in table order.
func (b *Builder) BuildInsert(t *schema.Table, row map[string]any) (*Statement, error) {
	if err := checkRow(t, row, "row"); err != nil {
		return nil, err
	}

	st := &Statement{}
	var cols, holders []string
	for _, col := range t.Columns {
		v, ok := row[col.Name]
		if !ok {
			continue
		}
		holder, err := b.bind(st, t, col, v)
		if err != nil {
			return nil, err
		}
		cols = append(cols, b.dialect.Quote(col.Name))
		holders = append(holders, holder)
	}

	st.SQL = fmt.Sprintf("INSERT INTO %s(%s) VALUES (%s)",
		b.table(t), strings.Join(cols, ", "), strings.Join(holders, ", "))
	return st, nil
}

// BuildUpdate sets the non-key columns present in row on the row matching
// the primary key. Every key column must be present in row.
func (b *Builder) BuildUpdate(t *schema.Table, row map[string]any) (*Statement, error) {
	if err := checkRow(t, row, "row"); err != nil {
		return nil, err
	}
	if err := checkKey(t, row); err != nil {
		return nil, err
	}

	st := &Statement{}
	var sets []string
	for _, col := range t.Columns {
		v, ok := row[col.Name]
		if !ok || t.IsKeyColumn(col.Name) {
			continue
		}
		holder, err := b.bind(st, t, col, v)
		if err != nil {
			return nil, err
		}
		sets = append(sets, b.dialect.Quote(col.Name)+" = "+holder)
	}
	if len(sets) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("update of table %q has no non-key columns", t.Name))
	}

	where, err := b.where(st, t, row)
	if err != nil {
		return nil, err
	}

	st.SQL = fmt.Sprintf("UPDATE %s SET %s WHERE %s", b.table(t), strings.Join(sets, ", "), where)
	return st, nil
}

// BuildDelete deletes the row matching key, which holds exactly the primary
// key columns.
func (b *Builder) BuildDelete(t *schema.Table, key map[string]any) (*Statement, error) {
	st, where, err := b.keyed(t, key)
	if err != nil {
		return nil, err
	}
	st.SQL = fmt.Sprintf("DELETE FROM %s WHERE %s", b.table(t), where)
	return st, nil
}

// BuildSelectByKey selects every column of the row matching key.
func (b *Builder) BuildSelectByKey(t *schema.Table, key map[string]any) (*Statement, error) {
	st, where, err := b.keyed(t, key)
	if err != nil {
		return nil, err
	}

	cols := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = b.dialect.Quote(col.Name)
	}
	st.SQL = fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(cols, ", "), b.table(t), where)
	return st, nil
}

// DecodeRow converts backend-native values, as scanned from the driver,
// back to canonical values.
func (b *Builder) DecodeRow(t *schema.Table, raw map[string]any) (map[string]any, error) {
	if t == nil {
		return nil, errs.InvalidArgument("table")
	}

	out := make(map[string]any, len(raw))
	for name, v := range raw {
		col := t.Column(name)
		if col == nil {
			return nil, unknownColumn(t, name)
		}
		entry, err := b.entry(t, col)
		if err != nil {
			return nil, err
		}
		decoded, err := entry.Converter.FromDB(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		out[name] = decoded
	}
	return out, nil
}

func (b *Builder) keyed(t *schema.Table, key map[string]any) (*Statement, string, error) {
	if err := checkRow(t, key, "key"); err != nil {
		return nil, "", err
	}
	if err := checkKey(t, key); err != nil {
		return nil, "", err
	}
	for name := range key {
		if !t.IsKeyColumn(name) {
			return nil, "", errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("column %q is not part of the primary key of %q", name, t.Name))
		}
	}

	st := &Statement{}
	where, err := b.where(st, t, key)
	if err != nil {
		return nil, "", err
	}
	return st, where, nil
}

// where binds the primary key columns in key order.
func (b *Builder) where(st *Statement, t *schema.Table, row map[string]any) (string, error) {
	conds := make([]string, len(t.PrimaryKey.Columns))
	for i, name := range t.PrimaryKey.Columns {
		col := t.Column(name)
		if col == nil {
			return "", unknownColumn(t, name)
		}
		holder, err := b.bind(st, t, col, row[name])
		if err != nil {
			return "", err
		}
		conds[i] = b.dialect.Quote(name) + " = " + holder
	}
	return strings.Join(conds, " AND "), nil
}

// bind converts v for col, appends the parameter and returns its placeholder.
func (b *Builder) bind(st *Statement, t *schema.Table, col *schema.Column, v any) (string, error) {
	entry, err := b.entry(t, col)
	if err != nil {
		return "", err
	}
	native, err := entry.Converter.ToDB(v)
	if err != nil {
		return "", fmt.Errorf("column %q: %w", col.Name, err)
	}

	p := Param{
		Name:   "p_" + col.Name,
		Column: col.Name,
		Type:   entry.ParamType,
		Value:  native,
	}
	if entry.Sized {
		p.Size = convert.Size(native)
	}
	st.Params = append(st.Params, p)
	return b.dialect.Bind(len(st.Params)), nil
}

func (b *Builder) entry(t *schema.Table, col *schema.Column) (convert.Entry, error) {
	entry, ok := b.converters.Lookup(col.Type.Name)
	if !ok || entry.Converter.ToDB == nil || entry.Converter.FromDB == nil {
		return convert.Entry{}, errs.UnsupportedColumnType(t.Name, col.Name, col.Type.Name)
	}
	return entry, nil
}

func (b *Builder) table(t *schema.Table) string {
	return b.dialect.Qualify(b.schema, t.Name)
}

func checkRow(t *schema.Table, row map[string]any, param string) error {
	if t == nil {
		return errs.InvalidArgument("table")
	}
	if len(row) == 0 {
		return errs.InvalidArgument(param)
	}
	for name := range row {
		if t.Column(name) == nil {
			return unknownColumn(t, name)
		}
	}
	return nil
}

func checkKey(t *schema.Table, row map[string]any) error {
	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) == 0 {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("table %q has no primary key", t.Name))
	}
	for _, name := range t.PrimaryKey.Columns {
		if _, ok := row[name]; !ok {
			return errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("key column %q of table %q is missing", name, t.Name))
		}
	}
	return nil
}

func unknownColumn(t *schema.Table, name string) error {
	return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("table %q has no column %q", t.Name, name))
}
