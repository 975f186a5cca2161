// Package mapper converts tabular result sets into Go structs.
//
// A target type is described entirely by its shape and a small set of struct
// tags. Each exported field falls into exactly one category:
//
//   - Skip: tagged `rowmap:"local"` (or `rowmap:"-"`). Never read from the row.
//   - Embedded document: tagged `rowmap:"json"`. One column holding JSON text
//     that is decoded into the field.
//   - Composite: a struct (or pointer to struct) that is mapped field by field.
//     time.Time, uuid.UUID and types implementing sql.Scanner,
//     encoding.TextUnmarshaler or [Enum] are not composites.
//   - Scalar: everything else. One column per field.
//
// # Column Names
//
// Composite fields contribute their name as a prefix, so nested fields read
// flattened columns named after the full chain of field names joined by "_":
//
//	type Address struct{ City string }
//	type Customer struct {
//	    Name    string
//	    Billing Address
//	}
//
//	// columns: Name, Billing_City
//
// Anonymous struct fields add no prefix segment.
//
// # Entry Points
//
//   - [MapRow], [MapInto]: one row.
//   - [MapOne], [MapTableInto]: a result set holding exactly one row.
//   - [MapAll]: every row, in order.
//   - [MapGrouped]: every row, grouped by a field value in first-seen key order.
//
// # Errors
//
// Every failure is a [*MappingError] naming the struct type, field and column
// involved. Match the cause with errors.Is against [ErrMissingColumn],
// [ErrConvert], [ErrEnum], [ErrDecode], [ErrRowCount] (or the narrower
// [ErrNoRows]), [ErrKeyField] and [ErrTarget]. No partially mapped value is ever returned.
package mapper
