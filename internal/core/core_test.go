package core

import (
	"context"
	"testing"

	"github.com/JonMunkholm/rowmap/internal/mapper"
	"github.com/JonMunkholm/rowmap/internal/table"
)

// ----------------------------------------------------------------------------
// Fixtures shared by the core tests
// ----------------------------------------------------------------------------

type region string

func (region) EnumNames() []string { return []string{"EMEA", "AMER", "APAC"} }

type account struct {
	Name    string
	Region  region
	Balance float64
	Owner   struct {
		Email string
	}
}

var _ mapper.Enum = region("")

// fakeSource returns a fixed result set and records the last call.
type fakeSource struct {
	rs   *table.ResultSet
	err  error
	sql  string
	args []any
}

func (f *fakeSource) Query(ctx context.Context, sql string, args ...any) (*table.ResultSet, error) {
	f.sql = sql
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	return f.rs, nil
}

// blockingSource waits for the context to end.
type blockingSource struct{}

func (blockingSource) Query(ctx context.Context, _ string, _ ...any) (*table.ResultSet, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func accountRows() *table.ResultSet {
	return table.MustNew(
		table.Column{Name: "Name", Type: table.StringType},
		table.Column{Name: "Region", Type: table.StringType},
		table.Column{Name: "Balance", Type: table.NumericType},
		table.Column{Name: "Owner_Email", Type: table.StringType},
	).
		MustAppend("Acme", "EMEA", "1200.50", "ann@example.com").
		MustAppend("Globex", "AMER", 300.0, nil).
		MustAppend("Initech", "EMEA", int64(0), "bob@example.com")
}

// resetRegistry clears queries and targets for the duration of a test.
func resetRegistry(t *testing.T) {
	t.Helper()
	Clear()
	ClearTargets()
	t.Cleanup(func() {
		Clear()
		ClearTargets()
	})
}
