package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/runner"
	"github.com/spf13/cobra"
)

var CreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new timestamped SQL script in the migration directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if strings.TrimSpace(dir) == "" {
			dir = current.doc.MigrateDir
		}
		if strings.TrimSpace(dir) == "" {
			dir = constants.DefaultMigrationDir
		}
		p, err := runner.CreateScript(dir, args[0], time.Now())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	CreateCmd.Flags().String("dir", "", "directory for the new script (default migrate_dir or ./migrations)")
}
