package mapper

import (
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/rowmap/internal/table"
)

// ----------------------------------------------------------------------------
// Fixtures
// ----------------------------------------------------------------------------

type status int

const (
	statusActive status = iota
	statusOnHold
	statusClosed
)

func (status) EnumNames() []string { return []string{"Active", "OnHold", "Closed"} }

type tier string

func (tier) EnumNames() []string { return []string{"gold", "silver"} }

type address struct {
	Street string
	City   string
	Zip    *string
}

type contact struct {
	Email   string
	Address address
}

type prefs struct {
	Theme string   `json:"theme"`
	Tags  []string `json:"tags"`
}

type customer struct {
	ID      int64
	Name    string
	Status  status
	Billing address
	Contact *contact
	Prefs   prefs  `rowmap:"json"`
	Cache   string `rowmap:"local"`
	Balance float64

	notMapped string
}

var customerColumns = []string{
	"ID", "Name", "Status",
	"Billing_Street", "Billing_City", "Billing_Zip",
	"Contact_Email", "Contact_Address_Street", "Contact_Address_City", "Contact_Address_Zip",
	"Prefs", "Balance",
}

// customerSet builds a result set with the customer columns, minus any listed in drop.
func customerSet(t *testing.T, rows []map[string]any, drop ...string) *table.ResultSet {
	t.Helper()

	var cols []table.Column
	for _, name := range customerColumns {
		if contains(drop, name) {
			continue
		}
		cols = append(cols, table.Column{Name: name})
	}

	rs, err := table.New(cols...)
	require.NoError(t, err)

	for _, r := range rows {
		values := make([]any, len(cols))
		for i, c := range cols {
			values[i] = r[c.Name]
		}
		require.NoError(t, rs.Append(values...))
	}
	return rs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func aliceRow() map[string]any {
	return map[string]any{
		"ID":                     int64(1),
		"Name":                   "Alice",
		"Status":                 "OnHold",
		"Billing_Street":         "1 Main St",
		"Billing_City":           "Springfield",
		"Billing_Zip":            "12345",
		"Contact_Email":          "alice@example.com",
		"Contact_Address_Street": "2 Side St",
		"Contact_Address_City":   "Shelbyville",
		"Contact_Address_Zip":    nil,
		"Prefs":                  `{"theme":"dark","tags":["vip"]}`,
		"Balance":                "120.50",
	}
}

func ptr[T any](v T) *T { return &v }

// ----------------------------------------------------------------------------
// Row Mapping
// ----------------------------------------------------------------------------

func TestMapRow_PopulatesFieldTree(t *testing.T) {
	rs := customerSet(t, []map[string]any{aliceRow()})

	got, err := MapRow[customer](rs.Row(0))
	require.NoError(t, err)

	want := customer{
		ID:      1,
		Name:    "Alice",
		Status:  statusOnHold,
		Billing: address{Street: "1 Main St", City: "Springfield", Zip: ptr("12345")},
		Contact: &contact{
			Email:   "alice@example.com",
			Address: address{Street: "2 Side St", City: "Shelbyville"},
		},
		Prefs:   prefs{Theme: "dark", Tags: []string{"vip"}},
		Balance: 120.5,
	}
	assert.Equal(t, want, got, spew.Sdump(got))
	assert.Empty(t, got.Cache, "local field is never written")
}

func TestMapRow_PointerTarget(t *testing.T) {
	rs := customerSet(t, []map[string]any{aliceRow()})

	got, err := MapRow[*customer](rs.Row(0))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "Shelbyville", got.Contact.Address.City)
}

func TestMapRow_NullScalarKeepsDefault(t *testing.T) {
	row := aliceRow()
	row["Name"] = nil
	row["Balance"] = nil
	row["Billing_Zip"] = nil
	row["Prefs"] = nil
	rs := customerSet(t, []map[string]any{row})

	got, err := MapRow[customer](rs.Row(0))
	require.NoError(t, err)
	assert.Equal(t, "", got.Name)
	assert.Zero(t, got.Balance)
	assert.Nil(t, got.Billing.Zip)
	assert.Equal(t, prefs{}, got.Prefs)
}

func TestMapInto_KeepsLocalAndNullFields(t *testing.T) {
	row := aliceRow()
	row["Name"] = nil
	rs := customerSet(t, []map[string]any{row})

	dst := customer{Name: "existing", Cache: "warm"}
	require.NoError(t, MapInto(rs.Row(0), &dst))

	assert.Equal(t, "existing", dst.Name, "NULL leaves the field untouched")
	assert.Equal(t, "warm", dst.Cache)
	assert.Equal(t, int64(1), dst.ID)
}

func TestMapInto_ErrorLeavesDestinationUntouched(t *testing.T) {
	row := aliceRow()
	row["Balance"] = "not a number"
	rs := customerSet(t, []map[string]any{row})

	dst := customer{ID: 99, Name: "before"}
	err := MapInto(rs.Row(0), &dst)
	require.Error(t, err)

	assert.Equal(t, customer{ID: 99, Name: "before"}, dst)
}

func TestMapInto_RejectsNonPointer(t *testing.T) {
	rs := customerSet(t, []map[string]any{aliceRow()})

	for _, dst := range []any{nil, customer{}, (*customer)(nil), new(int)} {
		err := MapInto(rs.Row(0), dst)
		require.Error(t, err, "%T", dst)
		assert.ErrorIs(t, err, ErrTarget)
	}
}

func TestMapRow_MissingNestedColumn(t *testing.T) {
	rs := customerSet(t, []map[string]any{aliceRow()}, "Contact_Address_City", "Name")

	_, err := MapRow[customer](rs.Row(0))
	require.Error(t, err)

	var me *MappingError
	require.True(t, errors.As(err, &me))
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Equal(t, "Contact_Address_City", me.Column, "composites are mapped before scalars")
	assert.Equal(t, "mapper.address", me.Type)
	assert.Equal(t, "City", me.Field)
	assert.Contains(t, err.Error(), `column "Contact_Address_City"`)
}

func TestMapRow_MissingEmbeddedColumn(t *testing.T) {
	rs := customerSet(t, []map[string]any{aliceRow()}, "Prefs")

	_, err := MapRow[customer](rs.Row(0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)

	var me *MappingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "Prefs", me.Column)
}

// ----------------------------------------------------------------------------
// Enumerations
// ----------------------------------------------------------------------------

type ticket struct {
	Status status
	Tier   tier
	Prev   *status
}

func ticketSet(s, tr, prev any) *table.ResultSet {
	return table.MustNew(
		table.Column{Name: "Status"},
		table.Column{Name: "Tier"},
		table.Column{Name: "Prev"},
	).MustAppend(s, tr, prev)
}

func TestEnum_ExactMatch(t *testing.T) {
	got, err := MapOne[ticket](ticketSet("Closed", "silver", []byte("Active")))
	require.NoError(t, err)

	assert.Equal(t, statusClosed, got.Status)
	assert.Equal(t, tier("silver"), got.Tier)
	require.NotNil(t, got.Prev)
	assert.Equal(t, statusActive, *got.Prev)
}

func TestEnum_Failures(t *testing.T) {
	tests := []struct {
		name   string
		rs     *table.ResultSet
		column string
	}{
		{"case mismatch", ticketSet("closed", "gold", nil), "Status"},
		{"unknown name", ticketSet("Active", "bronze", nil), "Tier"},
		{"numeric value", ticketSet(int64(1), "gold", nil), "Status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapOne[ticket](tt.rs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEnum)

			var me *MappingError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.column, me.Column)
		})
	}
}

// ----------------------------------------------------------------------------
// Embedded Documents
// ----------------------------------------------------------------------------

type settings struct {
	Doc   prefs          `rowmap:"json"`
	Extra map[string]any `rowmap:"json"`
	List  *[]int         `rowmap:"json"`
}

func TestEmbeddedDocument_RoundTrip(t *testing.T) {
	original := prefs{Theme: "light", Tags: []string{"a", "b"}}
	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	rs := table.MustNew(
		table.Column{Name: "Doc", Type: table.JsonType},
		table.Column{Name: "Extra", Type: table.JsonType},
		table.Column{Name: "List", Type: table.JsonType},
	).MustAppend(string(encoded), []byte(`{"k":1}`), "[1,2,3]")

	got, err := MapOne[settings](rs)
	require.NoError(t, err)
	assert.Equal(t, original, got.Doc)
	assert.Equal(t, map[string]any{"k": float64(1)}, got.Extra)
	require.NotNil(t, got.List)
	assert.Equal(t, []int{1, 2, 3}, *got.List)
}

func TestEmbeddedDocument_DecodedValue(t *testing.T) {
	// pgx hands json/jsonb columns over already decoded.
	rs := table.MustNew(
		table.Column{Name: "Doc"},
		table.Column{Name: "Extra"},
		table.Column{Name: "List"},
	).MustAppend(
		map[string]any{"theme": "dark", "tags": []any{"x"}},
		nil,
		[]any{float64(4)},
	)

	got, err := MapOne[settings](rs)
	require.NoError(t, err)
	assert.Equal(t, prefs{Theme: "dark", Tags: []string{"x"}}, got.Doc)
	assert.Nil(t, got.Extra)
	assert.Equal(t, []int{4}, *got.List)
}

func TestEmbeddedDocument_Invalid(t *testing.T) {
	rs := table.MustNew(
		table.Column{Name: "Doc"},
		table.Column{Name: "Extra"},
		table.Column{Name: "List"},
	).MustAppend(`{"theme":`, nil, nil)

	_, err := MapOne[settings](rs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)

	var me *MappingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "Doc", me.Column)
}

// ----------------------------------------------------------------------------
// Whole-Table Mapping
// ----------------------------------------------------------------------------

func TestMapOne_RowCount(t *testing.T) {
	empty := customerSet(t, nil)
	two := customerSet(t, []map[string]any{aliceRow(), aliceRow()})

	for name, rs := range map[string]*table.ResultSet{"zero rows": empty, "two rows": two, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			_, err := MapOne[customer](rs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRowCount)

			err = MapTableInto(rs, &customer{})
			assert.ErrorIs(t, err, ErrRowCount)
			assert.Equal(t, name != "two rows", errors.Is(err, ErrNoRows))
		})
	}

	one := customerSet(t, []map[string]any{aliceRow()})
	got, err := MapOne[customer](one)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	var dst customer
	require.NoError(t, MapTableInto(one, &dst))
	assert.Equal(t, got, dst)
}

// ----------------------------------------------------------------------------
// Target Shapes
// ----------------------------------------------------------------------------

type Audit struct {
	CreatedBy string
	Version   int
}

type note struct {
	Audit
	Text string
}

func TestMapRow_AnonymousFieldIsFlattened(t *testing.T) {
	rs := table.MustNew(
		table.Column{Name: "CreatedBy"},
		table.Column{Name: "Version"},
		table.Column{Name: "Text"},
	).MustAppend("bob", int64(3), "hello")

	got, err := MapOne[note](rs)
	require.NoError(t, err)
	assert.Equal(t, note{Audit: Audit{CreatedBy: "bob", Version: 3}, Text: "hello"}, got)
}

type stamps struct {
	CreatedBy string
	Version   int
	internal  string
}

type stampedTicket struct {
	stamps
	*hidden
	Text string
}

type hidden struct {
	Secret string
}

func TestMapRow_UnexportedEmbeddedStructPromotesFields(t *testing.T) {
	rs := table.MustNew(
		table.Column{Name: "CreatedBy"},
		table.Column{Name: "Version"},
		table.Column{Name: "Text"},
	).MustAppend("bob", int64(3), "hello")

	got, err := MapOne[stampedTicket](rs)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.CreatedBy)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, "hello", got.Text)
	assert.Nil(t, got.hidden, "embedded pointers to unexported types are not mapped")

	dst := stampedTicket{stamps: stamps{Version: 9, internal: "kept"}}
	require.NoError(t, MapTableInto(rs, &dst))
	assert.Equal(t, 3, dst.Version)
	assert.Equal(t, "kept", dst.internal)

	groups, err := MapGrouped[string, stampedTicket](rs, "CreatedBy")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, groups.Keys())

	_, err = MapOne[stampedTicket](table.MustNew(table.Column{Name: "Text"}).MustAppend("x"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

type order struct {
	Ref      string
	Customer struct {
		Name    string
		Address address
	}
}

func TestMapRow_PrefixChainsThroughLevels(t *testing.T) {
	rs := table.MustNew(
		table.Column{Name: "Ref"},
		table.Column{Name: "Customer_Name"},
		table.Column{Name: "Customer_Address_Street"},
		table.Column{Name: "Customer_Address_City"},
		table.Column{Name: "Customer_Address_Zip"},
	).MustAppend("SO-1", "Acme", "3 High St", "Capital City", nil)

	got, err := MapOne[order](rs)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Customer.Name)
	assert.Equal(t, "Capital City", got.Customer.Address.City)
}

type node struct {
	Value int
	Next  *node
}

func TestMapRow_RecursiveTypeFails(t *testing.T) {
	rs := table.MustNew(table.Column{Name: "Value"}, table.Column{Name: "Next_Value"}).MustAppend(1, 2)

	_, err := MapOne[node](rs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTarget)
}

type badTag struct {
	Name string `rowmap:"jsonb"`
}

func TestMapRow_InvalidTargets(t *testing.T) {
	rs := table.MustNew(table.Column{Name: "Name"}).MustAppend("x")

	_, err := MapRow[badTag](rs.Row(0))
	assert.ErrorIs(t, err, ErrTarget)

	_, err = MapRow[int](rs.Row(0))
	assert.ErrorIs(t, err, ErrTarget)

	_, err = MapRow[**customer](rs.Row(0))
	assert.ErrorIs(t, err, ErrTarget)
}

func TestClassify(t *testing.T) {
	info, err := classify(reflect.TypeFor[customer]())
	require.NoError(t, err)

	names := func(fields []fieldInfo) []string {
		var out []string
		for _, f := range fields {
			out = append(out, f.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Cache"}, names(info.Skip))
	assert.Equal(t, []string{"Prefs"}, names(info.Embedded))
	assert.Equal(t, []string{"Billing", "Contact"}, names(info.Composite))
	assert.Equal(t, []string{"ID", "Name", "Status", "Balance"}, names(info.Scalar))

	again, err := classify(reflect.TypeFor[customer]())
	require.NoError(t, err)
	assert.Same(t, info, again, "descriptors are cached per type")
}
