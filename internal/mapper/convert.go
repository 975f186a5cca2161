package mapper

// convert.go holds the explicit conversion table from column values to field types.
//
// Raw values are first normalized to a small set of source kinds:
//   - bool, int64, uint64, float64, string, []byte, time.Time, uuid.UUID
//   - driver.Valuer values (pgtype.Numeric, pgtype.Text, ...) are replaced by Value()
//   - [16]byte (pgx uuid columns) and duckdb.UUID become uuid.UUID
//   - duckdb.Decimal becomes its exact decimal text, like pgtype.Numeric
//   - *big.Int (duckdb HUGEINT) becomes int64 when it fits, decimal text otherwise
//
// Every (source kind, field kind) pair is either handled explicitly below or
// fails with ErrConvert. Narrowing conversions are range-checked and floats only
// convert to integers when they are integral.

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
)

var uuidType = reflect.TypeFor[uuid.UUID]()

// timeLayouts are tried in order when a text value is assigned to a time.Time field.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// normalize reduces a driver value to one of the source kinds listed above.
// A nil result means SQL NULL.
func normalize(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	if v, ok := raw.(driver.Valuer); ok {
		if _, isUUID := raw.(uuid.UUID); !isUUID {
			if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil, nil
			}
			val, err := v.Value()
			if err != nil {
				return nil, fmt.Errorf("%w: read %T: %w", ErrConvert, raw, err)
			}
			raw = val
		}
	}

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		return uint64(v), nil
	case uint8:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case float32:
		return float64(v), nil
	case [16]byte:
		return uuid.UUID(v), nil
	case duckdb.UUID:
		return uuid.UUID(v), nil
	case duckdb.Decimal:
		if v.Value == nil {
			return nil, nil
		}
		return v.String(), nil
	case *big.Int:
		if v == nil {
			return nil, nil
		}
		if v.IsInt64() {
			return v.Int64(), nil
		}
		return v.String(), nil
	default:
		return raw, nil
	}
}

// assign converts a normalized, non-nil value into dst.
func assign(dst reflect.Value, val any) error {
	t := dst.Type()

	switch {
	case t.Kind() == reflect.Interface:
		rv := reflect.ValueOf(val)
		if !rv.Type().AssignableTo(t) {
			return convertError(val, t)
		}
		dst.Set(rv)
		return nil

	case t.Kind() == reflect.Pointer:
		elem := reflect.New(t.Elem())
		if err := assign(elem.Elem(), val); err != nil {
			return err
		}
		dst.Set(elem)
		return nil

	case isEnum(t):
		return setEnum(dst, val)

	case t == timeType:
		return setTime(dst, val)

	case t == uuidType:
		return setUUID(dst, val)

	case reflect.PointerTo(t).Implements(scannerType):
		if err := dst.Addr().Interface().(sql.Scanner).Scan(val); err != nil {
			return fmt.Errorf("%w: scan %T into %s: %w", ErrConvert, val, t, err)
		}
		return nil

	case reflect.PointerTo(t).Implements(textUnmarshalerType):
		text, err := toString(val)
		if err != nil {
			return convertError(val, t)
		}
		if err := dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return fmt.Errorf("%w: unmarshal %q into %s: %w", ErrConvert, text, t, err)
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		b, err := toBool(val)
		if err != nil {
			return err
		}
		dst.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(val)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("%w: %d overflows %s", ErrConvert, n, t)
		}
		dst.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := toUint64(val)
		if err != nil {
			return err
		}
		if dst.OverflowUint(n) {
			return fmt.Errorf("%w: %d overflows %s", ErrConvert, n, t)
		}
		dst.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(val)
		if err != nil {
			return err
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("%w: %g overflows %s", ErrConvert, f, t)
		}
		dst.SetFloat(f)

	case reflect.String:
		s, err := toString(val)
		if err != nil {
			return err
		}
		dst.SetString(s)

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			b, err := toBytes(val)
			if err != nil {
				return err
			}
			dst.SetBytes(b)
			return nil
		}
		return assignDirect(dst, val)

	default:
		return assignDirect(dst, val)
	}

	return nil
}

// assignDirect handles values whose type already fits the field, such as
// decoded json maps or driver-specific structs.
func assignDirect(dst reflect.Value, val any) error {
	rv := reflect.ValueOf(val)
	if !rv.Type().AssignableTo(dst.Type()) {
		return convertError(val, dst.Type())
	}
	dst.Set(rv)
	return nil
}

func convertError(val any, t reflect.Type) error {
	return fmt.Errorf("%w: unsupported conversion from %T to %s", ErrConvert, val, t)
}

func toBool(val any) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case int64:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return false, fmt.Errorf("%w: %d is not a boolean", ErrConvert, v)
	case uint64:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return false, fmt.Errorf("%w: %d is not a boolean", ErrConvert, v)
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", ErrConvert, v)
		}
		return b, nil
	case []byte:
		return toBool(string(v))
	default:
		return false, convertError(val, reflect.TypeFor[bool]())
	}
}

func toInt64(val any) (int64, error) {
	switch v := val.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrConvert, v)
		}
		return int64(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %g is not an integer", ErrConvert, v)
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %g overflows int64", ErrConvert, v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrConvert, v)
		}
		return n, nil
	case []byte:
		return toInt64(string(v))
	default:
		return 0, convertError(val, reflect.TypeFor[int64]())
	}
}

func toUint64(val any) (uint64, error) {
	switch v := val.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("%w: %d is negative", ErrConvert, v)
		}
		return uint64(v), nil
	case uint64:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %g is not an integer", ErrConvert, v)
		}
		if v < 0 || v >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %g out of range for uint64", ErrConvert, v)
		}
		return uint64(v), nil
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an unsigned integer", ErrConvert, v)
		}
		return n, nil
	case []byte:
		return toUint64(string(v))
	default:
		return 0, convertError(val, reflect.TypeFor[uint64]())
	}
}

func toFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrConvert, v)
		}
		return f, nil
	case []byte:
		return toFloat64(string(v))
	default:
		return 0, convertError(val, reflect.TypeFor[float64]())
	}
}

func toString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case uuid.UUID:
		return v.String(), nil
	default:
		return "", convertError(val, reflect.TypeFor[string]())
	}
}

func toBytes(val any) ([]byte, error) {
	switch v := val.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		return []byte(v), nil
	case uuid.UUID:
		return append([]byte(nil), v[:]...), nil
	default:
		return nil, convertError(val, reflect.TypeFor[[]byte]())
	}
}

func setTime(dst reflect.Value, val any) error {
	switch v := val.(type) {
	case time.Time:
		dst.Set(reflect.ValueOf(v))
		return nil
	case []byte:
		return setTime(dst, string(v))
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				dst.Set(reflect.ValueOf(t))
				return nil
			}
		}
		return fmt.Errorf("%w: %q is not a recognized time", ErrConvert, v)
	default:
		return convertError(val, timeType)
	}
}

func setUUID(dst reflect.Value, val any) error {
	var (
		u   uuid.UUID
		err error
	)

	switch v := val.(type) {
	case uuid.UUID:
		u = v
	case string:
		u, err = uuid.Parse(strings.TrimSpace(v))
	case []byte:
		if len(v) == 16 {
			u, err = uuid.FromBytes(v)
		} else {
			u, err = uuid.ParseBytes(v)
		}
	default:
		return convertError(val, uuidType)
	}

	if err != nil {
		return fmt.Errorf("%w: invalid uuid: %w", ErrConvert, err)
	}
	dst.Set(reflect.ValueOf(u))
	return nil
}
