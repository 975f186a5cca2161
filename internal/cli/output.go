package cli

import (
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"

	"github.com/JonMunkholm/rowmap/internal/table"
)

func validateOutputFormat(output string) error {
	switch output {
	case "table", "json", "go":
		return nil
	default:
		return fmt.Errorf("unsupported output format %q: use 'table', 'json' or 'go'", output)
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dumpConfig prints mapped values with their Go types.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func printGo(w io.Writer, v any) {
	dumpConfig.Fdump(w, v)
}

// printTable writes the raw rows of rs aligned in columns.
func printTable(w io.Writer, rs *table.ResultSet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(rs.ColumnNames(), "\t"))
	for _, row := range rs.Rows() {
		cells := make([]string, 0, len(row.Values()))
		for _, v := range row.Values() {
			cells = append(cells, cellText(v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		if val.Equal(val.Truncate(24 * time.Hour)) {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return "?"
		}
		return cellText(inner)
	default:
		s := fmt.Sprint(val)
		return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
	}
}
