// Package core provides the query registry and the service that runs
// registered queries and maps their rows onto Go types.
//
// This package contains the domain logic independent of any UI or transport
// layer. It is used by the web server and the command line tool alike.
//
// # Query Registry
//
// Queries are registered at init time using [Register], or loaded from a YAML
// file with [RegisterFile]. Each [QueryDefinition] names the SQL to run, the Go
// type its rows map onto, and the shape of the result:
//
//	core.Register(core.QueryDefinition{
//	    Info:    core.QueryInfo{Key: "open_invoices", Group: "Billing", Label: "Open Invoices"},
//	    SQL:     openInvoicesSQL,
//	    Shape:   core.ShapeGrouped,
//	    GroupBy: "CustomerName",
//	    Target:  core.Bind[targets.InvoiceLine]("invoice_line"),
//	})
//
// # Running Queries
//
// [Service.Run] executes a query through a [Source] (PostgreSQL via pgx, or
// sqlite3/duckdb via database/sql), applies the configured timeout, and maps
// the drained rows with the mapper package.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - MAP001-MAP007: Mapping errors (columns, conversions, enums, documents)
//   - QRY001-QRY003: Query errors (unknown key, arguments, definitions)
//   - DB004-DB008: Database errors (connections, timeouts, SQL)
package core
