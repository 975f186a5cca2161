package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newRunCmd(e *env) *cobra.Command {
	var flagArgs []string

	cmd := &cobra.Command{
		Use:   "run <key> [arg...]",
		Short: "Run a query and print the mapped result",
		Long: `Run a registered query. Positional arguments after the key, then any
--arg values, are parsed against the query's declared parameters.`,
		Example: `  rowmap run customers
  rowmap run ar_aging 30 -o json
  rowmap run customer --arg C-1 -o go`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			raw := slices.Concat(args[1:], flagArgs)

			svc, closeFn, err := e.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.RunText(cmd.Context(), key, raw)
			if err != nil {
				return err
			}

			switch e.output {
			case "json":
				return printJSON(e.stdout, res)
			case "go":
				printGo(e.stdout, res.Data)
				return nil
			}

			if err := printTable(e.stdout, res.Table); err != nil {
				return err
			}
			_, err = fmt.Fprintf(e.stderr, "\n%d rows mapped onto %s (%s) in %s\n",
				res.RowCount, res.Target, res.Shape, res.Duration)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&flagArgs, "arg", nil, "Query argument (repeatable)")
	return cmd
}
