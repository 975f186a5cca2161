// Package core provides the query registry and the service that runs registered
// queries and maps their results onto Go types.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/rowmap/internal/table"
)

// Source executes SQL and returns the fully drained result.
// Satisfied by *PgxSource and *SQLSource.
type Source interface {
	Query(ctx context.Context, sql string, args ...any) (*table.ResultSet, error)
}

// Shape selects how a query's rows are mapped.
type Shape string

const (
	ShapeList    Shape = "list"    // every row, in order
	ShapeOne     Shape = "one"     // exactly one row
	ShapeGrouped Shape = "grouped" // every row, grouped by a field
)

// ParseShape validates a shape name. An empty name means ShapeList.
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case "", ShapeList:
		return ShapeList, nil
	case ShapeOne, ShapeGrouped:
		return Shape(s), nil
	default:
		return "", fmt.Errorf("%w: unknown shape %q (want list, one or grouped)", ErrInvalidDefinition, s)
	}
}

// QueryInfo contains display information about a query.
type QueryInfo struct {
	Key         string      `json:"key"`                   // Unique identifier: "ar_aging"
	Group       string      `json:"group"`                 // Area: "Receivables", "Billing"
	Label       string      `json:"label"`                 // Display name: "AR Aging"
	Description string      `json:"description,omitempty"` // One line shown in listings
	Params      []ParamSpec `json:"params,omitempty"`      // Positional parameters, in order
}

// QueryDefinition contains everything needed to run a query and map its result.
type QueryDefinition struct {
	Info    QueryInfo
	SQL     string
	Shape   Shape
	GroupBy string // field of the target type, required for ShapeGrouped
	Target  Target
}

// RunResult is the outcome of running a registered query.
type RunResult struct {
	Key        string           `json:"key"`
	Shape      Shape            `json:"shape"`
	Target     string           `json:"target"`
	Columns    []table.Column   `json:"columns"`
	RowCount   int              `json:"rowCount"`
	DurationMS int64            `json:"durationMs"`
	Data       any              `json:"data"`
	Duration   time.Duration    `json:"-"`
	Table      *table.ResultSet `json:"-"` // raw rows, used by the HTML view
}
