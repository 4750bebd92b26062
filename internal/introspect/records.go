package introspect

import (
	"strconv"
	"strings"

	"github.com/koustreak/dbscribe/internal/database"
	"github.com/koustreak/dbscribe/internal/dialect"
	"github.com/koustreak/dbscribe/internal/schema"
)

// Catalog rows are scanned into these records right away. Column order is
// fixed by catalog.QuerySet.

type columnRecord struct {
	Name       string
	DataType   string
	IsNullable string
	MaxLength  *int64
	Precision  *int64
	Scale      *int64
	Default    *string
}

func scanColumn(rows database.Rows) (columnRecord, error) {
	var r columnRecord
	err := rows.Scan(&r.Name, &r.DataType, &r.IsNullable, &r.MaxLength, &r.Precision, &r.Scale, &r.Default)
	return r, err
}

type identityRecord struct {
	Column    string
	Seed      *string
	Increment *string
}

func scanIdentity(rows database.Rows) (identityRecord, error) {
	var r identityRecord
	err := rows.Scan(&r.Column, &r.Seed, &r.Increment)
	return r, err
}

type keyColumnRecord struct {
	Constraint string
	Column     string
}

func scanKeyColumn(rows database.Rows) (keyColumnRecord, error) {
	var r keyColumnRecord
	err := rows.Scan(&r.Constraint, &r.Column)
	return r, err
}

type foreignKeyTargetRecord struct {
	Schema        string
	Table         string
	ReferencedKey *string
}

func scanForeignKeyTarget(rows database.Rows) (foreignKeyTargetRecord, error) {
	var r foreignKeyTargetRecord
	err := rows.Scan(&r.Schema, &r.Table, &r.ReferencedKey)
	return r, err
}

type foreignKeyColumnRecord struct {
	Column         string
	Ordinal        int64
	UniquePosition *int64
}

func scanForeignKeyColumn(rows database.Rows) (foreignKeyColumnRecord, error) {
	var r foreignKeyColumnRecord
	err := rows.Scan(&r.Column, &r.Ordinal, &r.UniquePosition)
	return r, err
}

type indexRecord struct {
	Name       string
	Definition string
}

func scanIndex(rows database.Rows) (indexRecord, error) {
	var r indexRecord
	err := rows.Scan(&r.Name, &r.Definition)
	return r, err
}

func scanName(rows database.Rows) (string, error) {
	var s string
	err := rows.Scan(&s)
	return s, err
}

// toColumn maps a column record onto the model, applying the dialect's
// precision rules.
func toColumn(d *dialect.Dialect, r columnRecord) *schema.Column {
	t := schema.DbType{Name: r.DataType}

	if name, args, ok := splitDeclaredType(r.DataType); ok {
		t.Name = name
		switch len(args) {
		case 1:
			t.Size = &args[0]
		case 2:
			t.Precision, t.Scale = &args[0], &args[1]
		}
	} else {
		switch {
		case r.MaxLength != nil:
			t.Size = intPtr(*r.MaxLength)
		default:
			t.Precision = intPtrOrNil(r.Precision)
			t.Scale = intPtrOrNil(r.Scale)
		}
	}

	if d.ClearsPrecision(t.Name) {
		t.Precision, t.Scale = nil, nil
	}

	return &schema.Column{
		Name:       r.Name,
		Type:       t,
		IsNullable: strings.EqualFold(r.IsNullable, "YES"),
		Default:    r.Default,
	}
}

// splitDeclaredType splits "VARCHAR(255)" or "DECIMAL(10, 2)" into the bare
// name and its numeric arguments. Catalogs that report bare names never
// match.
func splitDeclaredType(declared string) (string, []int, bool) {
	open := strings.IndexByte(declared, '(')
	closing := strings.LastIndexByte(declared, ')')
	if open <= 0 || closing < open {
		return "", nil, false
	}

	var args []int
	for _, part := range strings.Split(declared[open+1:closing], ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return "", nil, false
		}
		args = append(args, n)
	}
	if len(args) > 2 {
		return "", nil, false
	}
	return strings.TrimSpace(declared[:open]), args, true
}

func intPtr(v int64) *int {
	n := int(v)
	return &n
}

func intPtrOrNil(v *int64) *int {
	if v == nil {
		return nil
	}
	return intPtr(*v)
}
