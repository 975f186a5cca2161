package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/rowmap/internal/core/targets"
)

func newSchemaCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL the built-in queries expect",
		Args:  cobra.NoArgs,
		// Needs no configuration or database
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(e.stdout, targets.Schema)
			return err
		},
	}
}
