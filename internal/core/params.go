package core

// params.go converts textual query arguments (from the URL or the command line)
// into typed values for the database driver.
//
// User-typed arguments are messy in the same ways spreadsheet cells are:
//   - Multiple date formats (US, EU, ISO, etc.)
//   - Currency symbols and thousand separators in amounts
//   - Various boolean representations (yes/no, true/false, 1/0)
//
// An empty argument is passed as NULL.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ParamType is the declared type of a query parameter.
type ParamType string

const (
	ParamText    ParamType = "text"
	ParamInt     ParamType = "int"
	ParamNumeric ParamType = "numeric"
	ParamDate    ParamType = "date"
	ParamBool    ParamType = "bool"
	ParamUUID    ParamType = "uuid"
)

// ParamSpec describes one positional query parameter.
type ParamSpec struct {
	Name string    `json:"name" yaml:"name"`
	Type ParamType `json:"type" yaml:"type"`
}

// ParseParamType validates a parameter type name. An empty name means ParamText.
func ParseParamType(s string) (ParamType, error) {
	switch ParamType(strings.ToLower(s)) {
	case "", ParamText:
		return ParamText, nil
	case ParamInt, ParamNumeric, ParamDate, ParamBool, ParamUUID:
		return ParamType(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("%w: unknown parameter type %q", ErrInvalidDefinition, s)
	}
}

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// ParseArgs converts raw arguments according to specs.
// The number of arguments must match the number of specs.
func ParseArgs(specs []ParamSpec, raw []string) ([]any, error) {
	if len(raw) != len(specs) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrArgCount, len(raw), len(specs))
	}

	args := make([]any, len(raw))
	for i, spec := range specs {
		v, err := ParseArg(spec.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", spec.Name, err)
		}
		args[i] = v
	}
	return args, nil
}

// ParseArg converts a single raw argument to the Go value passed to the driver.
// Empty input yields nil.
func ParseArg(typ ParamType, s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	switch typ {
	case ParamInt:
		n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid integer %q", ErrInvalidArg, s)
		}
		return n, nil

	case ParamNumeric:
		n, ok := parseNumeric(s)
		if !ok {
			return nil, fmt.Errorf("%w: invalid number %q", ErrInvalidArg, s)
		}
		return n, nil

	case ParamDate:
		d, ok := parseDate(s)
		if !ok {
			return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidArg, s)
		}
		return d, nil

	case ParamBool:
		b, ok := parseBool(s)
		if !ok {
			return nil, fmt.Errorf("%w: invalid boolean %q", ErrInvalidArg, s)
		}
		return b, nil

	case ParamUUID:
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid uuid %q", ErrInvalidArg, s)
		}
		return u, nil

	default:
		return s, nil
	}
}

// parseDate supports multiple date formats and handles 2-digit years with pivot.
func parseDate(s string) (time.Time, bool) {
	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// parseNumeric handles currency symbols, thousands separators, and accounting
// format (parentheses for negative).
func parseNumeric(s string) (pgtype.Numeric, bool) {
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return pgtype.Numeric{}, false
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{}, false
	}
	return n, true
}

// parseBool accepts true/false, yes/no, t/f, y/n, 1/0.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}
