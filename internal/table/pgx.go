package table

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// pgTypes resolves OIDs of the built-in PostgreSQL types.
var pgTypes = pgtype.NewMap()

// FromPgxRows drains rows into a ResultSet and closes them.
//
// Values are taken from rows.Values(), so they carry pgx's native Go
// representation (int32, time.Time, pgtype.Numeric, ...) except that uuid
// columns hold uuid.UUID and json columns hold their text. NULL becomes nil.
func FromPgxRows(rows pgx.Rows) (*ResultSet, error) {
	defer rows.Close()

	rs, err := New(pgxColumns(rows.FieldDescriptions())...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	cols := rs.Columns()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
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

func pgxColumns(fields []pgconn.FieldDescription) []Column {
	cols := make([]Column, len(fields))
	for i, f := range fields {
		cols[i] = Column{Name: f.Name, Type: ColumnTypeForOID(f.DataTypeOID)}
	}
	return cols
}

// ColumnTypeForOID maps a PostgreSQL type OID to a ColumnType.
func ColumnTypeForOID(oid uint32) ColumnType {
	t, ok := pgTypes.TypeForOID(oid)
	if !ok {
		return UnknownType
	}
	return ParseColumnType(t.Name)
}
