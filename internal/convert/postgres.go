package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/koustreak/dbscribe/internal/errs"
)

// moneyOID is not exported by pgtype.
const moneyOID = 790

// Postgres returns the converter table for PostgreSQL canonical type names,
// as information_schema.columns.data_type reports them.
func Postgres() *Registry {
	pt := func(name string, oid uint32) ParamType { return ParamType{Name: name, OID: oid} }

	return NewRegistry("postgres", map[string]Entry{
		"uuid":                        {ParamType: pt("uuid", pgtype.UUIDOID), Converter: pgUUIDConverter},
		"boolean":                     {ParamType: pt("boolean", pgtype.BoolOID), Converter: boolConverter},
		"smallint":                    {ParamType: pt("smallint", pgtype.Int2OID), Converter: intConverter(16)},
		"integer":                     {ParamType: pt("integer", pgtype.Int4OID), Converter: intConverter(32)},
		"bigint":                      {ParamType: pt("bigint", pgtype.Int8OID), Converter: intConverter(64)},
		"numeric":                     {ParamType: pt("numeric", pgtype.NumericOID), Converter: pgNumericConverter},
		"money":                       {ParamType: pt("money", moneyOID), Converter: pgMoneyConverter},
		"real":                        {ParamType: pt("real", pgtype.Float4OID), Converter: float32Converter},
		"double precision":            {ParamType: pt("double precision", pgtype.Float8OID), Converter: float64Converter},
		"timestamp without time zone": {ParamType: pt("timestamp", pgtype.TimestampOID), Converter: timeConverter},
		"timestamp with time zone":    {ParamType: pt("timestamptz", pgtype.TimestamptzOID), Converter: timeConverter},
		"time without time zone":      {ParamType: pt("time", pgtype.TimeOID), Converter: pgTimeConverter},
		"character":                   {ParamType: pt("char", pgtype.BPCharOID), Converter: stringConverter, Sized: true},
		"character varying":           {ParamType: pt("varchar", pgtype.VarcharOID), Converter: stringConverter, Sized: true},
		"text":                        {ParamType: pt("text", pgtype.TextOID), Converter: stringConverter, Sized: true},
		"bytea":                       {ParamType: pt("bytea", pgtype.ByteaOID), Converter: bytesConverter, Sized: true},
	})
}

var pgUUIDConverter = Converter{
	ToDB: nilSafe(func(v any) (any, error) {
		u, err := toUUID(v)
		if err != nil {
			return nil, err
		}
		return pgtype.UUID{Bytes: u, Valid: true}, nil
	}),
	FromDB: nilSafe(func(v any) (any, error) {
		if x, ok := v.(pgtype.UUID); ok {
			if !x.Valid {
				return nil, nil
			}
			return toUUID(x.Bytes)
		}
		return toUUID(v)
	}),
}

// Canonical numeric values are decimal text so no precision is lost.
var pgNumericConverter = Converter{
	ToDB: nilSafe(func(v any) (any, error) {
		s, err := toDecimalText(v)
		if err != nil {
			return nil, err
		}
		var n pgtype.Numeric
		if err := n.Scan(s); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "numeric value", err)
		}
		return n, nil
	}),
	FromDB: nilSafe(func(v any) (any, error) {
		n, ok := v.(pgtype.Numeric)
		if !ok {
			return toDecimalText(v)
		}
		if !n.Valid {
			return nil, nil
		}
		return numericText(n), nil
	}),
}

// numericText renders n in plain positional notation, keeping trailing zeros.
func numericText(n pgtype.Numeric) string {
	switch {
	case n.NaN:
		return "NaN"
	case n.InfinityModifier == pgtype.Infinity:
		return "Infinity"
	case n.InfinityModifier == pgtype.NegativeInfinity:
		return "-Infinity"
	}

	digits := n.Int.String()
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if n.Exp >= 0 {
		return sign + digits + strings.Repeat("0", int(n.Exp))
	}
	frac := int(-n.Exp)
	if len(digits) <= frac {
		digits = strings.Repeat("0", frac-len(digits)+1) + digits
	}
	return sign + digits[:len(digits)-frac] + "." + digits[len(digits)-frac:]
}

// Canonical money values are float64. The server reads and writes money as
// locale-formatted text such as "$1,234.50".
var pgMoneyConverter = Converter{
	ToDB: nilSafe(func(v any) (any, error) {
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		return strconv.FormatFloat(f, 'f', 2, 64), nil
	}),
	FromDB: nilSafe(func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return toFloat64(v)
		}
		negative := strings.HasPrefix(s, "-") || strings.HasPrefix(s, "(")
		s = strings.NewReplacer("$", "", ",", "", "-", "", "(", "", ")", "").Replace(s)
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, conversionError("money", v)
		}
		if negative {
			f = -f
		}
		return f, nil
	}),
}

// Canonical time-of-day values are the duration since midnight.
var pgTimeConverter = Converter{
	ToDB: nilSafe(func(v any) (any, error) {
		var d time.Duration
		switch x := v.(type) {
		case time.Duration:
			d = x
		case time.Time:
			d = x.Sub(time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, x.Location()))
		case string:
			t, err := time.Parse("15:04:05.999999", x)
			if err != nil {
				return nil, conversionError("time", v)
			}
			d = t.Sub(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
		default:
			return nil, conversionError("time", v)
		}
		if d < 0 || d >= 24*time.Hour {
			return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("time of day %s out of range", d))
		}
		return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}, nil
	}),
	FromDB: nilSafe(func(v any) (any, error) {
		switch x := v.(type) {
		case pgtype.Time:
			if !x.Valid {
				return nil, nil
			}
			return time.Duration(x.Microseconds) * time.Microsecond, nil
		case time.Duration:
			return x, nil
		}
		return nil, conversionError("time", v)
	}),
}
