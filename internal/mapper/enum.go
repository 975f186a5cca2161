package mapper

import (
	"fmt"
	"reflect"
	"slices"
)

// Enum is implemented by named integer or string types whose column values are
// stored as symbolic names.
//
// For integer kinds the position of a name is its value: EnumNames()[2] parses
// to 2. For string kinds the name is the value itself. Matching is exact and
// case-sensitive.
//
//	type Status int
//
//	const (
//	    StatusActive Status = iota
//	    StatusOnHold
//	)
//
//	func (Status) EnumNames() []string { return []string{"Active", "OnHold"} }
type Enum interface {
	EnumNames() []string
}

var enumType = reflect.TypeFor[Enum]()

// isEnum reports whether t (or *t) implements Enum.
func isEnum(t reflect.Type) bool {
	return t.Implements(enumType) || reflect.PointerTo(t).Implements(enumType)
}

// enumNames returns the symbolic names declared by enum type t.
func enumNames(t reflect.Type) []string {
	if t.Implements(enumType) {
		return reflect.Zero(t).Interface().(Enum).EnumNames()
	}
	return reflect.New(t).Interface().(Enum).EnumNames()
}

// setEnum parses raw as a symbolic name of dst's enum type and stores it.
func setEnum(dst reflect.Value, raw any) error {
	text, ok := enumText(raw)
	if !ok {
		return fmt.Errorf("%w: %s expects a symbolic name, got %T", ErrEnum, dst.Type(), raw)
	}

	names := enumNames(dst.Type())
	i := slices.Index(names, text)
	if i < 0 {
		return fmt.Errorf("%w: %q is not a %s (want one of %v)", ErrEnum, text, dst.Type(), names)
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(text)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if dst.OverflowInt(int64(i)) {
			return fmt.Errorf("%w: %s cannot hold ordinal %d", ErrEnum, dst.Type(), i)
		}
		dst.SetInt(int64(i))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if dst.OverflowUint(uint64(i)) {
			return fmt.Errorf("%w: %s cannot hold ordinal %d", ErrEnum, dst.Type(), i)
		}
		dst.SetUint(uint64(i))
	default:
		return fmt.Errorf("%w: enum %s must have a string or integer kind", ErrTarget, dst.Type())
	}
	return nil
}

func enumText(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
