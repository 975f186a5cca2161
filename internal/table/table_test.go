package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsDuplicateColumns(t *testing.T) {
	_, err := New(Column{Name: "id"}, Column{Name: "id"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateColumn))
}

func TestNew_RejectsEmptyName(t *testing.T) {
	_, err := New(Column{Name: "id"}, Column{Name: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestAppend_WidthMismatch(t *testing.T) {
	rs := MustNew(Column{Name: "a"}, Column{Name: "b"})

	err := rs.Append(1)
	require.Error(t, err)
	assert.Equal(t, 0, rs.Len())

	require.NoError(t, rs.Append(1, nil))
	assert.Equal(t, 1, rs.Len())
}

func TestAppend_CopiesValues(t *testing.T) {
	rs := MustNew(Column{Name: "a"})
	vals := []any{"first"}
	require.NoError(t, rs.Append(vals...))
	vals[0] = "changed"

	v, ok := rs.Row(0).Value("a")
	require.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestRow_Value(t *testing.T) {
	rs := MustNew(
		Column{Name: "id", Type: IntType},
		Column{Name: "name", Type: StringType},
	).MustAppend(int64(7), nil)

	row := rs.Row(0)

	v, ok := row.Value("id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)

	v, ok = row.Value("name")
	assert.True(t, ok, "NULL column is still present")
	assert.Nil(t, v)

	_, ok = row.Value("missing")
	assert.False(t, ok)

	col, ok := row.Column("name")
	require.True(t, ok)
	assert.Equal(t, StringType, col.Type)
}

func TestRow_Single(t *testing.T) {
	rs := MustNew(Column{Name: "k"}, Column{Name: "v"}).
		MustAppend("A", 1).
		MustAppend("B", 2).
		MustAppend("C", 3)

	single := rs.Row(1).Single()

	assert.Equal(t, 1, single.Len())
	assert.Equal(t, rs.ColumnNames(), single.ColumnNames())
	v, _ := single.Row(0).Value("k")
	assert.Equal(t, "B", v)
	assert.Equal(t, 3, rs.Len(), "source result set is untouched")
}

func TestRows_Order(t *testing.T) {
	rs := MustNew(Column{Name: "n"}).MustAppend(1).MustAppend(2).MustAppend(3)

	var got []any
	for _, row := range rs.Rows() {
		v, _ := row.Value("n")
		got = append(got, v)
	}
	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		input string
		want  ColumnType
	}{
		{"text", StringType},
		{"VARCHAR(255)", StringType},
		{"int4", IntType},
		{"BIGINT", IntType},
		{"double precision", FloatType},
		{"NUMERIC(10,2)", NumericType},
		{"bool", BoolType},
		{"date", DateType},
		{"timestamptz", TimestampType},
		{"DATETIME", TimestampType},
		{"jsonb", JsonType},
		{"uuid", UUIDType},
		{"BLOB", BytesType},
		{"_text", StringType},
		{"", UnknownType},
		{"geometry", UnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseColumnType(tt.input))
		})
	}
}

func TestColumnType_String(t *testing.T) {
	assert.Equal(t, "JSON", JsonType.String())
	assert.Equal(t, "UNKNOWN", ColumnType(99).String())

	b, err := UUIDType.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "UUID", string(b))
}

func TestColumnTypeForOID(t *testing.T) {
	// OIDs of built-in postgres types: int4, text, jsonb, uuid, numeric.
	assert.Equal(t, IntType, ColumnTypeForOID(23))
	assert.Equal(t, StringType, ColumnTypeForOID(25))
	assert.Equal(t, JsonType, ColumnTypeForOID(3802))
	assert.Equal(t, UUIDType, ColumnTypeForOID(2950))
	assert.Equal(t, NumericType, ColumnTypeForOID(1700))
	assert.Equal(t, UnknownType, ColumnTypeForOID(0))
}
