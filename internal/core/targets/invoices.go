package targets

import (
	"time"

	"github.com/JonMunkholm/rowmap/internal/core"
)

// Item is a sold product.
type Item struct {
	Code string
	Name string
}

// InvoiceLine is one line of an invoice, flattened with its customer name.
type InvoiceLine struct {
	InvoiceNumber string
	LineNo        int
	CustomerName  string
	InvoiceDate   time.Time
	Item          Item
	Quantity      int
	Amount        float64
	Void          bool
}

const invoiceLineSQL = `
	SELECT l.invoice_number AS "InvoiceNumber",
	       l.line_no        AS "LineNo",
	       c.name           AS "CustomerName",
	       l.invoice_date   AS "InvoiceDate",
	       i.code           AS "Item_Code",
	       i.name           AS "Item_Name",
	       l.quantity       AS "Quantity",
	       l.amount         AS "Amount",
	       l.void           AS "Void"
	FROM invoice_lines l
	JOIN customers c ON c.internal_id = l.customer_id
	JOIN items i ON i.code = l.item_code`

func registerInvoiceQueries() {
	line := core.Bind[InvoiceLine]("invoice_line")

	core.Register(core.QueryDefinition{
		Info: core.QueryInfo{
			Key:         "invoice_lines",
			Group:       "Billing",
			Label:       "Invoice Lines",
			Description: "Lines of one invoice",
			Params:      []core.ParamSpec{{Name: "invoice_number", Type: core.ParamText}},
		},
		SQL:    invoiceLineSQL + ` WHERE l.invoice_number = $1 ORDER BY l.line_no`,
		Target: line,
	})

	core.Register(core.QueryDefinition{
		Info: core.QueryInfo{
			Key:         "open_invoices",
			Group:       "Billing",
			Label:       "Open Invoices",
			Description: "Non-void invoice lines grouped by customer",
		},
		SQL: invoiceLineSQL + `
			WHERE NOT l.void
			ORDER BY c.name, l.invoice_date, l.invoice_number, l.line_no`,
		Shape:   core.ShapeGrouped,
		GroupBy: "CustomerName",
		Target:  line,
	})
}
