package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/rowmap/internal/core"
)

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered queries by group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.output == "json" {
				byGroup := make(map[string][]core.QueryInfo)
				for _, group := range core.Groups() {
					for _, def := range core.ByGroup(group) {
						byGroup[group] = append(byGroup[group], def.Info)
					}
				}
				return printJSON(e.stdout, byGroup)
			}

			tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "GROUP\tKEY\tSHAPE\tPARAMS\tLABEL")
			for _, group := range core.Groups() {
				for _, def := range core.ByGroup(group) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						group, def.Info.Key, def.Shape, paramList(def.Info.Params), def.Info.Label)
				}
			}
			return tw.Flush()
		},
	}
}

func paramList(params []core.ParamSpec) string {
	if len(params) == 0 {
		return "-"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + ":" + string(p.Type)
	}
	return strings.Join(parts, ",")
}
