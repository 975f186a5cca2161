// Package cli implements the rowmap command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/rowmap/internal/config"
	"github.com/JonMunkholm/rowmap/internal/core"
	_ "github.com/JonMunkholm/rowmap/internal/core/targets" // Register built-in targets and queries
	"github.com/JonMunkholm/rowmap/internal/logging"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintf(os.Stderr, "  %s\n", core.FormatUserError(err))
		}
		return 1
	}
	return 0
}

// env is the state resolved by the root command before any subcommand runs.
type env struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	output string
}

// openService connects to the configured database.
func (e *env) openService(ctx context.Context) (*core.Service, func(), error) {
	src, closeFn, err := core.OpenSource(ctx, e.cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	svc, err := core.NewService(src, e.cfg.Database.QueryTimeout)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return svc, closeFn, nil
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		envFile     string
		queriesFile string
	)
	e := &env{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "rowmap",
		Short:         "Run registered queries and print the mapped rows",
		Long:          "Command-line interface for running registered SQL queries and mapping their rows onto Go types.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(e.output); err != nil {
				return err
			}

			// .env is optional unless named explicitly
			if cmd.Flags().Changed("env-file") {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load %s: %w", envFile, err)
				}
			} else {
				_ = godotenv.Load()
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg

			// Logs go to stderr so stdout stays parseable
			logging.SetupWriter(e.stderr, cfg.Logging.Level, cfg.Logging.Format)

			if queriesFile == "" {
				queriesFile = cfg.Queries.File
			}
			if queriesFile != "" {
				n, err := core.RegisterFile(queriesFile)
				if err != nil {
					return err
				}
				logging.FromContext(cmd.Context()).Debug("query definitions loaded", "file", queriesFile, "count", n)
			}
			return nil
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&e.output, "output", "o", "table", "Output format (table, json, go)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().StringVar(&queriesFile, "queries", "", "YAML query definitions file (overrides QUERIES_FILE)")

	rootCmd.AddCommand(newListCmd(e))
	rootCmd.AddCommand(newDescribeCmd(e))
	rootCmd.AddCommand(newRunCmd(e))
	rootCmd.AddCommand(newSchemaCmd(e))

	return rootCmd
}
