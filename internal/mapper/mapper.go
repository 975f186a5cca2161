package mapper

import (
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"

	"github.com/JonMunkholm/rowmap/internal/table"
)

// MapInto populates the struct pointed to by dst from row.
//
// Fields tagged local keep whatever value dst already holds. Composite fields
// are always replaced by freshly mapped values. On error dst is left untouched.
func MapInto(row table.Row, dst any) error {
	rv := reflect.ValueOf(dst)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &MappingError{Type: fmt.Sprintf("%T", dst), Err: fmt.Errorf("%w: destination must be a non-nil pointer to a struct", ErrTarget)}
	}

	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return targetError(elem.Type())
	}

	scratch := reflect.New(elem.Type()).Elem()
	scratch.Set(elem)
	if err := mapStruct(row, scratch, "", nil); err != nil {
		return err
	}
	elem.Set(scratch)
	return nil
}

// MapRow maps row into a new T. T is a struct type or a pointer to one.
func MapRow[T any](row table.Row) (T, error) {
	fn, err := rowMapper[T]()
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(row)
}

// MapOne maps a result set that must hold exactly one row.
func MapOne[T any](rs *table.ResultSet) (T, error) {
	var zero T
	if err := checkSingleRow(reflect.TypeFor[T](), rs); err != nil {
		return zero, err
	}
	return MapRow[T](rs.Row(0))
}

// MapTableInto is MapInto for a result set that must hold exactly one row.
func MapTableInto(rs *table.ResultSet, dst any) error {
	if err := checkSingleRow(reflect.TypeOf(dst), rs); err != nil {
		return err
	}
	return MapInto(rs.Row(0), dst)
}

func checkSingleRow(t reflect.Type, rs *table.ResultSet) error {
	n := 0
	if rs != nil {
		n = rs.Len()
	}
	if n == 1 {
		return nil
	}

	name := "<nil>"
	if t != nil {
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		name = t.String()
	}
	cause := ErrRowCount
	if n == 0 {
		cause = ErrNoRows
	}
	return &MappingError{Type: name, Err: fmt.Errorf("%w: want exactly 1 row, got %d", cause, n)}
}

// rowMapper validates T once and returns a function mapping one row to a new T.
func rowMapper[T any]() (func(table.Row) (T, error), error) {
	t := reflect.TypeFor[T]()

	switch {
	case t.Kind() == reflect.Struct:
		if _, err := classify(t); err != nil {
			return nil, err
		}
		return func(row table.Row) (T, error) {
			var out T
			if err := mapStruct(row, reflect.ValueOf(&out).Elem(), "", nil); err != nil {
				var zero T
				return zero, err
			}
			return out, nil
		}, nil

	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		if _, err := classify(t.Elem()); err != nil {
			return nil, err
		}
		return func(row table.Row) (T, error) {
			p := reflect.New(t.Elem())
			if err := mapStruct(row, p.Elem(), "", nil); err != nil {
				var zero T
				return zero, err
			}
			return p.Interface().(T), nil
		}, nil

	default:
		return nil, targetError(t)
	}
}

func targetError(t reflect.Type) error {
	return &MappingError{Type: t.String(), Err: fmt.Errorf("%w: %s is not a struct or pointer to struct", ErrTarget, t)}
}

// columnName joins the ancestor prefix and a field name.
func columnName(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "_" + field
}

// mapStruct fills the struct value v from row. prefix is the flattened name of
// v's position in the field tree; stack holds the struct types currently being
// mapped, outermost first.
func mapStruct(row table.Row, v reflect.Value, prefix string, stack []reflect.Type) error {
	t := v.Type()
	for _, ancestor := range stack {
		if ancestor == t {
			return &MappingError{Type: t.String(), Column: prefix, Err: fmt.Errorf("%w: recursive type %s", ErrTarget, t)}
		}
	}

	info, err := classify(t)
	if err != nil {
		return err
	}
	stack = append(stack[:len(stack):len(stack)], t)

	for _, f := range info.Composite {
		childPrefix := prefix
		if !f.Anonymous {
			childPrefix = columnName(prefix, f.Name)
		}

		ft := f.Type
		isPtr := ft.Kind() == reflect.Pointer
		if isPtr {
			ft = ft.Elem()
		}

		child := reflect.New(ft)
		if err := mapStruct(row, child.Elem(), childPrefix, stack); err != nil {
			return err
		}

		switch {
		case f.Promoted:
			setExportedFields(v.Field(f.Index), child.Elem())
		case isPtr:
			v.Field(f.Index).Set(child)
		default:
			v.Field(f.Index).Set(child.Elem())
		}
	}

	for _, f := range info.Embedded {
		col := columnName(prefix, f.Name)
		raw, ok := row.Value(col)
		if !ok {
			return missingColumn(t, f, col)
		}
		if raw == nil {
			continue
		}

		doc := reflect.New(f.Type)
		if err := decodeDocument(raw, doc.Interface()); err != nil {
			return &MappingError{Type: t.String(), Field: f.Name, Column: col, Err: err}
		}
		v.Field(f.Index).Set(doc.Elem())
	}

	for _, f := range info.Scalar {
		col := columnName(prefix, f.Name)
		raw, ok := row.Value(col)
		if !ok {
			return missingColumn(t, f, col)
		}

		val, err := normalize(raw)
		if err != nil {
			return &MappingError{Type: t.String(), Field: f.Name, Column: col, Err: err}
		}
		if val == nil {
			continue
		}

		if err := assign(v.Field(f.Index), val); err != nil {
			return &MappingError{Type: t.String(), Field: f.Name, Column: col, Err: err}
		}
	}

	return nil
}

// setExportedFields copies the exported fields of src into dst, an embedded
// struct of an unexported type that cannot be set as a whole.
func setExportedFields(dst, src reflect.Value) {
	t := src.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			dst.Field(i).Set(src.Field(i))
		}
	}
}

func missingColumn(t reflect.Type, f fieldInfo, col string) error {
	return &MappingError{Type: t.String(), Field: f.Name, Column: col, Err: ErrMissingColumn}
}

// decodeDocument decodes an embedded JSON document into dst. Text values are
// decoded as is; values a driver already decoded (maps, slices) are re-encoded
// first.
func decodeDocument(raw any, dst any) error {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: encode %T: %w", ErrDecode, raw, err)
		}
		data = b
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}
