package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/rowmap/internal/core"
)

func newDescribeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <key>",
		Short: "Show a query's definition without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, ok := core.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", core.ErrQueryNotFound, args[0])
			}

			if e.output == "json" {
				return printJSON(e.stdout, map[string]any{
					"info":    def.Info,
					"sql":     def.SQL,
					"shape":   def.Shape,
					"groupBy": def.GroupBy,
					"target":  def.Target.Name,
					"type":    def.Target.Type().String(),
				})
			}

			w := e.stdout
			fmt.Fprintf(w, "Key:     %s\n", def.Info.Key)
			fmt.Fprintf(w, "Label:   %s\n", def.Info.Label)
			fmt.Fprintf(w, "Group:   %s\n", def.Info.Group)
			fmt.Fprintf(w, "Target:  %s (%s)\n", def.Target.Name, def.Target.Type())
			fmt.Fprintf(w, "Shape:   %s\n", def.Shape)
			if def.GroupBy != "" {
				fmt.Fprintf(w, "GroupBy: %s\n", def.GroupBy)
			}
			fmt.Fprintf(w, "Params:  %s\n", paramList(def.Info.Params))
			if def.Info.Description != "" {
				fmt.Fprintf(w, "\n%s\n", def.Info.Description)
			}
			fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(def.SQL))
			return nil
		},
	}
}
