// Package table provides the in-memory tabular result set consumed by the mapper.
//
// A ResultSet is an ordered list of uniquely named, typed columns and an ordered
// list of rows. Each row holds one value per column; nil stands for SQL NULL.
// Result sets are built by hand with New and Append, or drained from a driver
// with FromPgxRows and FromSQLRows.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateColumn is returned when two columns share a name.
var ErrDuplicateColumn = errors.New("duplicate column")

// ColumnType is the declared data type of a column.
type ColumnType int

const (
	UnknownType ColumnType = iota
	StringType
	IntType
	FloatType
	NumericType
	BoolType
	DateType
	TimestampType
	JsonType
	UUIDType
	BytesType
)

var columnTypeNames = [...]string{
	UnknownType:   "UNKNOWN",
	StringType:    "STRING",
	IntType:       "INT",
	FloatType:     "FLOAT",
	NumericType:   "NUMERIC",
	BoolType:      "BOOL",
	DateType:      "DATE",
	TimestampType: "TIMESTAMP",
	JsonType:      "JSON",
	UUIDType:      "UUID",
	BytesType:     "BYTES",
}

func (t ColumnType) String() string {
	if t < 0 || int(t) >= len(columnTypeNames) {
		return columnTypeNames[UnknownType]
	}
	return columnTypeNames[t]
}

// MarshalText renders the type by name so JSON output stays readable.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseColumnType maps a database type name (as reported by a driver) to a ColumnType.
// Matching is case-insensitive and ignores length/precision suffixes such as
// VARCHAR(255) or NUMERIC(10,2). Unrecognized names yield UnknownType.
func ParseColumnType(name string) ColumnType {
	name = strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimPrefix(name, "_") // postgres array types are reported as _TEXT etc.

	switch name {
	case "TEXT", "VARCHAR", "CHAR", "BPCHAR", "NAME", "STRING", "CHARACTER", "CHARACTER VARYING", "NVARCHAR", "CLOB", "CITEXT":
		return StringType
	case "INT", "INT2", "INT4", "INT8", "INTEGER", "SMALLINT", "BIGINT", "TINYINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT", "SERIAL", "BIGSERIAL", "OID":
		return IntType
	case "FLOAT", "FLOAT4", "FLOAT8", "REAL", "DOUBLE", "DOUBLE PRECISION":
		return FloatType
	case "NUMERIC", "DECIMAL", "MONEY":
		return NumericType
	case "BOOL", "BOOLEAN":
		return BoolType
	case "DATE":
		return DateType
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME", "TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE", "TIMESTAMP_NS", "TIMESTAMP_MS", "TIMESTAMP_S":
		return TimestampType
	case "JSON", "JSONB":
		return JsonType
	case "UUID":
		return UUIDType
	case "BYTEA", "BLOB", "BINARY", "VARBINARY":
		return BytesType
	default:
		return UnknownType
	}
}

// Column is a named, typed column of a result set.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// ResultSet is an ordered, in-memory table of rows.
type ResultSet struct {
	columns []Column
	index   map[string]int
	rows    [][]any
}

// New creates an empty result set with the given schema.
// Column names must be non-empty and unique.
func New(columns ...Column) (*ResultSet, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, exists := index[c.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		index[c.Name] = i
	}

	cols := make([]Column, len(columns))
	copy(cols, columns)

	return &ResultSet{columns: cols, index: index}, nil
}

// MustNew is like New but panics on an invalid schema.
// Intended for fixtures and tests.
func MustNew(columns ...Column) *ResultSet {
	rs, err := New(columns...)
	if err != nil {
		panic(fmt.Sprintf("table.MustNew: %v", err))
	}
	return rs
}

// Append adds a row. The number of values must match the number of columns.
func (rs *ResultSet) Append(values ...any) error {
	if len(values) != len(rs.columns) {
		return fmt.Errorf("row has %d values, result set has %d columns", len(values), len(rs.columns))
	}
	row := make([]any, len(values))
	copy(row, values)
	rs.rows = append(rs.rows, row)
	return nil
}

// MustAppend is like Append but panics on a width mismatch.
func (rs *ResultSet) MustAppend(values ...any) *ResultSet {
	if err := rs.Append(values...); err != nil {
		panic(fmt.Sprintf("table.MustAppend: %v", err))
	}
	return rs
}

// Columns returns a copy of the schema in column order.
func (rs *ResultSet) Columns() []Column {
	cols := make([]Column, len(rs.columns))
	copy(cols, rs.columns)
	return cols
}

// ColumnNames returns the column names in order.
func (rs *ResultSet) ColumnNames() []string {
	names := make([]string, len(rs.columns))
	for i, c := range rs.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (rs *ResultSet) Column(name string) (Column, bool) {
	i, ok := rs.index[name]
	if !ok {
		return Column{}, false
	}
	return rs.columns[i], true
}

// HasColumn reports whether the schema contains name.
func (rs *ResultSet) HasColumn(name string) bool {
	_, ok := rs.index[name]
	return ok
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	return len(rs.rows)
}

// Row returns the i-th row. It panics if i is out of range, like a slice index.
func (rs *ResultSet) Row(i int) Row {
	return Row{rs: rs, values: rs.rows[i]}
}

// Rows returns every row in order.
func (rs *ResultSet) Rows() []Row {
	out := make([]Row, len(rs.rows))
	for i := range rs.rows {
		out[i] = rs.Row(i)
	}
	return out
}

// Row is a single row bound to the schema of its result set.
type Row struct {
	rs     *ResultSet
	values []any
}

// Columns returns the schema the row belongs to.
func (r Row) Columns() []Column {
	if r.rs == nil {
		return nil
	}
	return r.rs.Columns()
}

// Column looks up a column of the row's schema by name.
func (r Row) Column(name string) (Column, bool) {
	if r.rs == nil {
		return Column{}, false
	}
	return r.rs.Column(name)
}

// Value returns the value stored under column name.
// ok is false when the schema has no such column; a present NULL yields (nil, true).
func (r Row) Value(name string) (v any, ok bool) {
	if r.rs == nil {
		return nil, false
	}
	i, ok := r.rs.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Values returns a copy of the row's values in column order.
func (r Row) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// Single returns a one-row result set with the same schema that holds only this row.
func (r Row) Single() *ResultSet {
	if r.rs == nil {
		return &ResultSet{index: map[string]int{}}
	}
	return &ResultSet{
		columns: r.rs.columns,
		index:   r.rs.index,
		rows:    [][]any{r.values},
	}
}
