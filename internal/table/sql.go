package table

import (
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// FromSQLRows drains database/sql rows into a ResultSet and closes them.
//
// Column types come from the driver's DatabaseTypeName. Values are brought to
// the same shapes whatever the driver: text and json columns hold strings
// (duckdb decodes json, so it is re-encoded) and uuid columns holding raw
// 16-byte values (duckdb) hold uuid.UUID.
func FromSQLRows(rows *sql.Rows) (*ResultSet, error) {
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column types: %w", err)
	}

	cols := make([]Column, len(types))
	for i, ct := range types {
		cols[i] = Column{Name: ct.Name(), Type: ParseColumnType(ct.DatabaseTypeName())}
	}

	rs, err := New(cols...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		clear(values)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if values[i], err = columnValue(cols[i].Type, v); err != nil {
				return nil, fmt.Errorf("column %s: %w", cols[i].Name, err)
			}
		}
		if err := rs.Append(values...); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return rs, nil
}

// columnValue brings a driver value to the shape every source shares for its
// column type: text for text and json columns, uuid.UUID for uuid columns.
func columnValue(typ ColumnType, v any) (any, error) {
	switch typ {
	case StringType:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
	case JsonType:
		switch doc := v.(type) {
		case nil, string:
		case []byte:
			return string(doc), nil
		default:
			b, err := json.Marshal(doc)
			if err != nil {
				return nil, fmt.Errorf("encode json: %w", err)
			}
			return string(b), nil
		}
	case UUIDType:
		switch id := v.(type) {
		case [16]byte:
			return uuid.UUID(id), nil
		case []byte:
			if len(id) == 16 {
				return uuid.UUID(id), nil
			}
		}
	}
	return v, nil
}
