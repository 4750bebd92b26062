package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/dbscribe/internal/errs"
)

func conversionError(want string, v any) error {
	return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("cannot convert %T to %s", v, want))
}

// nilSafe wraps fn so that nil passes through untouched.
func nilSafe(fn func(any) (any, error)) func(any) (any, error) {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		return fn(v)
	}
}

func passthrough(v any) (any, error) { return v, nil }

// toInt64 accepts any Go integer, an integral float, or decimal text.
func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, conversionError("int64", v)
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, conversionError("int64", v)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || x >= math.MaxInt64 || x < math.MinInt64 {
			return 0, conversionError("int64", v)
		}
		return int64(x), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
	}
	return 0, conversionError("int64", v)
}

// intConverter range-checks values against a signed integer of the given
// bit width and yields int8, int16, int32 or int64 in both directions.
func intConverter(bits int) Converter {
	lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
	if bits == 64 {
		lo, hi = math.MinInt64, math.MaxInt64
	}
	conv := func(v any) (any, error) {
		n, err := toInt64(v)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("int%d value", bits), err)
		}
		if n < lo || n > hi {
			return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("value %d out of range for int%d", n, bits))
		}
		switch bits {
		case 8:
			return int8(n), nil
		case 16:
			return int16(n), nil
		case 32:
			return int32(n), nil
		}
		return n, nil
	}
	return Converter{ToDB: nilSafe(conv), FromDB: nilSafe(conv)}
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, conversionError("float64", v)
	}
	return float64(n), nil
}

var float64Converter = Converter{
	ToDB:   nilSafe(func(v any) (any, error) { return toFloat64(v) }),
	FromDB: nilSafe(func(v any) (any, error) { return toFloat64(v) }),
}

var float32Converter = Converter{
	ToDB: nilSafe(func(v any) (any, error) {
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		if math.Abs(f) > math.MaxFloat32 {
			return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("value %g out of range for float32", f))
		}
		return float32(f), nil
	}),
	FromDB: nilSafe(func(v any) (any, error) {
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	}),
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(x)
	case []byte:
		return strconv.ParseBool(string(x))
	}
	n, err := toInt64(v)
	if err != nil {
		return nil, conversionError("bool", v)
	}
	return n != 0, nil
}

var boolConverter = Converter{ToDB: nilSafe(toBool), FromDB: nilSafe(toBool)}

func toString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return nil, conversionError("string", v)
}

var stringConverter = Converter{ToDB: nilSafe(toString), FromDB: nilSafe(toString)}

func toBytes(v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	}
	return nil, conversionError("[]byte", v)
}

var bytesConverter = Converter{ToDB: nilSafe(toBytes), FromDB: nilSafe(toBytes)}

// toUUID accepts uuid.UUID, its text form, or 16 raw bytes.
func toUUID(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case string:
		return uuid.Parse(x)
	case []byte:
		if len(x) == 16 {
			return uuid.FromBytes(x)
		}
		return uuid.ParseBytes(x)
	}
	return uuid.Nil, conversionError("uuid", v)
}

// uuidTextConverter stores uuids as their canonical text form.
var uuidTextConverter = Converter{
	ToDB: nilSafe(func(v any) (any, error) {
		u, err := toUUID(v)
		if err != nil {
			return nil, err
		}
		return u.String(), nil
	}),
	FromDB: nilSafe(func(v any) (any, error) { return toUUID(v) }),
}

func toTime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return time.Parse(time.RFC3339Nano, x)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(x))
	}
	return nil, conversionError("time.Time", v)
}

var timeConverter = Converter{ToDB: nilSafe(toTime), FromDB: nilSafe(toTime)}

// toDecimalText renders v as a plain decimal literal.
func toDecimalText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", conversionError("decimal", v)
		}
		return s, nil
	case []byte:
		return toDecimalText(string(x))
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	}
	n, err := toInt64(v)
	if err != nil {
		return "", conversionError("decimal", v)
	}
	return strconv.FormatInt(n, 10), nil
}

// decimalTextConverter keeps decimals as text on both sides, which is how
// MySQL and SQLite drivers hand them back.
var decimalTextConverter = Converter{
	ToDB:   nilSafe(func(v any) (any, error) { return toDecimalText(v) }),
	FromDB: nilSafe(func(v any) (any, error) { return toDecimalText(v) }),
}
