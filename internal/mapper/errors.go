package mapper

import (
	"errors"
	"fmt"
	"strings"
)

// Causes carried by a MappingError. Match them with errors.Is.
var (
	ErrRowCount      = errors.New("invalid row count")
	ErrMissingColumn = errors.New("column not found")
	ErrEnum          = errors.New("invalid enum value")
	ErrConvert       = errors.New("cannot convert value")
	ErrDecode        = errors.New("invalid embedded document")
	ErrKeyField      = errors.New("invalid key field")
	ErrTarget        = errors.New("invalid target type")

	// ErrNoRows is the ErrRowCount case of an empty result set.
	ErrNoRows = fmt.Errorf("%w: no rows", ErrRowCount)
)

// MappingError is the single error type returned by this package.
// It names the owning struct type, the field and the column involved, and
// wraps the underlying cause.
//
// Example message:
//
//	rowmap: targets.Address.City column "Billing_City": column not found
type MappingError struct {
	Type   string // owning struct type
	Field  string // Go field name within Type
	Column string // flattened column name, empty when no column is involved
	Err    error
}

func (e *MappingError) Error() string {
	var parts []string
	if e.Type != "" {
		name := e.Type
		if e.Field != "" {
			name += "." + e.Field
		}
		parts = append(parts, name)
	}
	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column %q", e.Column))
	}

	msg := "rowmap"
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, " ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MappingError) Unwrap() error {
	return e.Err
}
