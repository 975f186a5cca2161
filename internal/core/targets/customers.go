package targets

import (
	"time"

	"github.com/JonMunkholm/rowmap/internal/core"
)

// CustomerStatus is stored as its name.
type CustomerStatus int

const (
	StatusActive CustomerStatus = iota
	StatusOnHold
	StatusClosed
)

var customerStatusNames = []string{"Active", "OnHold", "Closed"}

func (CustomerStatus) EnumNames() []string { return customerStatusNames }

func (s CustomerStatus) String() string {
	if int(s) < len(customerStatusNames) && s >= 0 {
		return customerStatusNames[s]
	}
	return "Unknown"
}

func (s CustomerStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Address is a postal address. Columns are prefixed with the name of the
// field holding it, e.g. Billing_City.
type Address struct {
	Line1      string
	City       string
	State      UsState
	PostalCode string
}

// Preferences is stored as a JSON document.
type Preferences struct {
	Currency    string   `json:"currency"`
	Paperless   bool     `json:"paperless"`
	Contacts    []string `json:"contacts,omitempty"`
	NetTermDays int      `json:"net_term_days"`
}

// Customer is a receivables customer with its billing address.
type Customer struct {
	InternalID     string
	Name           string
	Status         CustomerStatus
	Billing        Address
	Balance        float64
	OverdueBalance float64
	DaysOverdue    *int
	LastActivity   *time.Time
	Preferences    Preferences `rowmap:"json"`

	// Selected is UI state and never read from a row.
	Selected bool `rowmap:"local" json:"-"`
}

const customerColumns = `
	c.internal_id     AS "InternalID",
	c.name            AS "Name",
	c.status          AS "Status",
	c.billing_line1   AS "Billing_Line1",
	c.billing_city    AS "Billing_City",
	c.billing_state   AS "Billing_State",
	c.billing_postal  AS "Billing_PostalCode",
	c.balance         AS "Balance",
	c.overdue_balance AS "OverdueBalance",
	c.days_overdue    AS "DaysOverdue",
	c.last_activity   AS "LastActivity",
	c.preferences     AS "Preferences"`

func registerCustomerQueries() {
	customer := core.Bind[Customer]("customer")

	core.Register(core.QueryDefinition{
		Info: core.QueryInfo{
			Key:         "customers",
			Group:       "Customers",
			Label:       "Customers",
			Description: "All customers with balances",
		},
		SQL:    `SELECT` + customerColumns + ` FROM customers c ORDER BY c.name`,
		Target: customer,
	})

	core.Register(core.QueryDefinition{
		Info: core.QueryInfo{
			Key:         "customer",
			Group:       "Customers",
			Label:       "Customer",
			Description: "One customer by internal id",
			Params:      []core.ParamSpec{{Name: "internal_id", Type: core.ParamText}},
		},
		SQL:    `SELECT` + customerColumns + ` FROM customers c WHERE c.internal_id = $1`,
		Shape:  core.ShapeOne,
		Target: customer,
	})

	core.Register(core.QueryDefinition{
		Info: core.QueryInfo{
			Key:         "ar_aging",
			Group:       "Receivables",
			Label:       "AR Aging",
			Description: "Customers at least N days overdue, grouped by status",
			Params:      []core.ParamSpec{{Name: "min_days", Type: core.ParamInt}},
		},
		SQL: `SELECT` + customerColumns + `
			FROM customers c
			WHERE c.days_overdue >= $1
			ORDER BY c.status, c.days_overdue DESC`,
		Shape:   core.ShapeGrouped,
		GroupBy: "Status",
		Target:  customer,
	})
}
