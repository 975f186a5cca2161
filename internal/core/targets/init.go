// Package targets registers the built-in result types and the queries that
// map onto them. Import this package to ensure they are registered.
package targets

import (
	_ "embed"

	"github.com/JonMunkholm/rowmap/internal/core"
)

// Schema is the DDL the built-in queries expect. It is portable across
// PostgreSQL, sqlite3 and duckdb.
//
//go:embed schema.sql
var Schema string

func init() {
	core.RegisterTarget(core.Bind[Customer]("customer"))
	core.RegisterTarget(core.Bind[InvoiceLine]("invoice_line"))

	registerCustomerQueries()
	registerInvoiceQueries()
}
