package mapper

import (
	"database/sql"
	"encoding"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// TagName is the struct tag read by the classifier.
//
//	Cache  []byte   `rowmap:"local"` // never read from or written to the row
//	Prefs  Settings `rowmap:"json"`  // single column holding a JSON document
const TagName = "rowmap"

const (
	tagLocal = "local"
	tagSkip  = "-"
	tagJSON  = "json"
)

type fieldKind int

const (
	kindScalar fieldKind = iota
	kindComposite
	kindEmbedded
	kindSkip
)

func (k fieldKind) String() string {
	switch k {
	case kindComposite:
		return "composite"
	case kindEmbedded:
		return "embedded"
	case kindSkip:
		return "skip"
	default:
		return "scalar"
	}
}

// fieldInfo describes one exported field of a target struct.
type fieldInfo struct {
	Name      string
	Index     int
	Type      reflect.Type
	Kind      fieldKind
	Anonymous bool // embedded struct: flattened without a prefix segment
	Promoted  bool // embedded struct of an unexported type: only its exported fields are set
}

// typeInfo is the classification of a struct type. Each slice keeps
// declaration order.
type typeInfo struct {
	Type      reflect.Type
	Skip      []fieldInfo
	Embedded  []fieldInfo
	Composite []fieldInfo
	Scalar    []fieldInfo
}

var (
	timeType            = reflect.TypeFor[time.Time]()
	scannerType         = reflect.TypeFor[sql.Scanner]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// typeCache holds *typeInfo per reflect.Type. Classification depends only on
// the type, so entries never go stale.
var typeCache sync.Map

// classify partitions the exported fields of struct type t.
func classify(t reflect.Type) (*typeInfo, error) {
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeInfo), nil
	}

	if t.Kind() != reflect.Struct {
		return nil, &MappingError{Type: t.String(), Err: fmt.Errorf("%w: %s is not a struct", ErrTarget, t)}
	}

	info := &typeInfo{Type: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		promoted := !sf.IsExported() && sf.Anonymous && sf.Type.Kind() == reflect.Struct
		if !sf.IsExported() && !promoted {
			continue
		}

		kind, err := fieldKindOf(sf)
		if err != nil {
			return nil, &MappingError{Type: t.String(), Field: sf.Name, Err: err}
		}
		// The embedded value itself cannot be set, so only a composite
		// with exported fields of its own is reachable.
		if promoted && kind != kindComposite {
			continue
		}

		fi := fieldInfo{
			Name:      sf.Name,
			Index:     i,
			Type:      sf.Type,
			Kind:      kind,
			Anonymous: sf.Anonymous && kind == kindComposite,
			Promoted:  promoted,
		}

		switch kind {
		case kindSkip:
			info.Skip = append(info.Skip, fi)
		case kindEmbedded:
			info.Embedded = append(info.Embedded, fi)
		case kindComposite:
			info.Composite = append(info.Composite, fi)
		default:
			info.Scalar = append(info.Scalar, fi)
		}
	}

	slog.Debug("rowmap: type classified",
		"type", t.String(),
		"scalar", len(info.Scalar),
		"composite", len(info.Composite),
		"embedded", len(info.Embedded),
		"skip", len(info.Skip),
	)

	actual, _ := typeCache.LoadOrStore(t, info)
	return actual.(*typeInfo), nil
}

// fieldKindOf applies the marker precedence: skip, then embedded document,
// then composite detection, otherwise scalar.
func fieldKindOf(sf reflect.StructField) (fieldKind, error) {
	switch tag := sf.Tag.Get(TagName); tag {
	case tagLocal, tagSkip:
		return kindSkip, nil
	case tagJSON:
		return kindEmbedded, nil
	case "":
	default:
		return kindScalar, fmt.Errorf("%w: unknown %s tag %q (want %q or %q)", ErrTarget, TagName, tag, tagLocal, tagJSON)
	}

	if isComposite(sf.Type) {
		return kindComposite, nil
	}
	return kindScalar, nil
}

// isComposite reports whether t is a user-defined struct (or pointer to one)
// that has to be mapped field by field. Structs that know how to read
// themselves from a single value (time.Time, sql.Scanner, TextUnmarshaler,
// Enum) are scalars.
func isComposite(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return false
	}

	pt := reflect.PointerTo(t)
	if pt.Implements(scannerType) || pt.Implements(textUnmarshalerType) || isEnum(t) {
		return false
	}
	return true
}
