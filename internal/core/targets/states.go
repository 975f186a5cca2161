package targets

import (
	"database/sql"
	"fmt"
	"strings"
)

// UsStates maps US state full names to their abbreviations.
var UsStates = map[string]string{
	"alabama":        "AL",
	"alaska":         "AK",
	"arizona":        "AZ",
	"arkansas":       "AR",
	"california":     "CA",
	"colorado":       "CO",
	"connecticut":    "CT",
	"delaware":       "DE",
	"florida":        "FL",
	"georgia":        "GA",
	"hawaii":         "HI",
	"idaho":          "ID",
	"illinois":       "IL",
	"indiana":        "IN",
	"iowa":           "IA",
	"kansas":         "KS",
	"kentucky":       "KY",
	"louisiana":      "LA",
	"maine":          "ME",
	"maryland":       "MD",
	"massachusetts":  "MA",
	"michigan":       "MI",
	"minnesota":      "MN",
	"mississippi":    "MS",
	"missouri":       "MO",
	"montana":        "MT",
	"nebraska":       "NE",
	"nevada":         "NV",
	"new hampshire":  "NH",
	"new jersey":     "NJ",
	"new mexico":     "NM",
	"new york":       "NY",
	"north carolina": "NC",
	"north dakota":   "ND",
	"ohio":           "OH",
	"oklahoma":       "OK",
	"oregon":         "OR",
	"pennsylvania":   "PA",
	"rhode island":   "RI",
	"south carolina": "SC",
	"south dakota":   "SD",
	"tennessee":      "TN",
	"texas":          "TX",
	"utah":           "UT",
	"vermont":        "VT",
	"virginia":       "VA",
	"washington":     "WA",
	"west virginia":  "WV",
	"wisconsin":      "WI",
	"wyoming":        "WY",
}

// NormalizeUsState converts US state names to their 2-letter abbreviations.
// If the input is already an abbreviation or not recognized, returns it trimmed.
func NormalizeUsState(s string) string {
	s = strings.TrimSpace(s)

	if code, ok := UsStates[strings.ToLower(s)]; ok {
		return code
	}
	if code, ok := stateCodes[strings.ToUpper(s)]; ok {
		return code
	}
	return s
}

var stateCodes = func() map[string]string {
	m := make(map[string]string, len(UsStates))
	for _, code := range UsStates {
		m[code] = code
	}
	return m
}()

// UsState is a state column normalized to its 2-letter code on scan, so
// "new york", "NY" and " ny " all read as "NY".
type UsState string

var _ sql.Scanner = (*UsState)(nil)

// Scan implements sql.Scanner.
func (s *UsState) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = ""
	case string:
		*s = UsState(NormalizeUsState(v))
	case []byte:
		*s = UsState(NormalizeUsState(string(v)))
	default:
		return fmt.Errorf("cannot scan %T into UsState", src)
	}
	return nil
}
