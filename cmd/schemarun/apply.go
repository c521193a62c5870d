package main

import (
	"fmt"
	"strings"

	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/introspect"
	"github.com/loykin/schemarun/internal/runner"
	"github.com/spf13/cobra"
)

var ApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply a SQL script to the configured database (exit 1 on failure)",
	Args:  cobra.ExactArgs(1),
	RunE: withPolicy(runner.Fatal, func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")
		res, err := current.newRunner(once).RunSchemaFile(cmd.Context(), current.db, args[0])
		if err != nil {
			return err
		}
		printResult(cmd, res)
		return nil
	}),
}

var RunCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a one-off SQL script; failures are logged and the exit status stays 0",
	Args:  cobra.ExactArgs(1),
	RunE: withPolicy(runner.LogOnly, func(cmd *cobra.Command, args []string) error {
		res, err := current.newRunner(false).RunSchemaFile(cmd.Context(), current.db, args[0])
		if err != nil {
			return err
		}
		printResult(cmd, res)
		return nil
	}),
}

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap the database from a schema file, connecting without a selected database",
	Args:  cobra.NoArgs,
	RunE: withPolicy(runner.Fatal, func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("schema")
		if strings.TrimSpace(path) == "" {
			path = current.doc.SchemaFile
		}
		if strings.TrimSpace(path) == "" {
			path = constants.DefaultSchemaFile
		}
		if _, err := current.newRunner(false).Bootstrap(cmd.Context(), current.db, path); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Database initialized successfully")
		return nil
	}),
}

var QueryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Execute ad hoc SQL and print any returned rows",
	Args:  cobra.MinimumNArgs(1),
	RunE: withPolicy(runner.LogOnly, func(cmd *cobra.Command, args []string) error {
		multi, _ := cmd.Flags().GetBool("multi")
		cfg := current.db
		cfg.MultiStatements = multi
		res, err := current.newRunner(false).RunSchemaQuery(cmd.Context(), cfg, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printResult(cmd, res)
		return nil
	}),
}

func printResult(cmd *cobra.Command, res *runner.Result) {
	out := cmd.OutOrStdout()
	if res.Skipped {
		_, _ = fmt.Fprintf(out, "%s already applied, skipped\n", res.Script)
		return
	}
	for _, set := range res.Sets {
		introspect.RenderRows(out, set.Columns, set.Rows)
	}
	if len(res.Sets) == 0 {
		_, _ = fmt.Fprintf(out, "%s applied (%d rows affected)\n", res.Script, res.RowsAffected)
	}
}

func init() {
	ApplyCmd.Flags().Bool("once", false, "skip the script when its checksum already has a successful recorded run")
	InitCmd.Flags().String("schema", "", "schema file to bootstrap from (default schema_file or ./schema.sql)")
	QueryCmd.Flags().Bool("multi", false, "allow several statements separated by semicolons")
}
