package main

import (
	"context"
	"fmt"

	"github.com/loykin/schemarun/internal/database"
	"github.com/loykin/schemarun/internal/introspect"
	"github.com/loykin/schemarun/internal/ledger"
	"github.com/loykin/schemarun/internal/runner"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// withHandle opens a short-lived handle for one command and always closes it.
func withHandle(cmd *cobra.Command, cfg database.Config, fn func(h *database.Handle) error) error {
	h, err := database.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	return fn(h)
}

var ColumnsCmd = &cobra.Command{
	Use:   "columns <table> [field...]",
	Short: "Show the columns of a table, optionally limited to the named fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: withPolicy(runner.LogOnly, func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		return withHandle(cmd, current.db, func(h *database.Handle) error {
			cols, err := introspect.ShowColumns(cmd.Context(), h.DB, h.Dialect, args[0], args[1:]...)
			if err != nil {
				return err
			}
			return introspect.Render(cmd.OutOrStdout(), format, cols)
		})
	}),
}

var TenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List tenant databases matching the tenant pattern",
	Args:  cobra.NoArgs,
	RunE: withPolicy(runner.LogOnly, func(cmd *cobra.Command, _ []string) error {
		table, _ := cmd.Flags().GetString("count")
		return withHandle(cmd, current.db, func(h *database.Handle) error {
			names, err := introspect.ListTenantDatabases(cmd.Context(), h.DB, h.Dialect, current.tenantPattern(), current.db.Name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if table == "" {
				for _, n := range names {
					_, _ = fmt.Fprintln(out, n)
				}
				return nil
			}
			t := tablewriter.NewWriter(out)
			t.SetHeader([]string{"Database", "Rows", "Error"})
			t.SetAutoFormatHeaders(false)
			for _, c := range countTenants(cmd.Context(), database.Open, current.db, h, names, table) {
				t.Append([]string{c.Database, fmt.Sprint(c.Rows), c.Error})
			}
			t.Render()
			return nil
		})
	}),
}

// countTenants counts table in every tenant database. MySQL reaches all of
// them through h; other engines get one short-lived handle per tenant.
func countTenants(ctx context.Context, open runner.Opener, base database.Config, h *database.Handle, names []string, table string) []introspect.TenantCount {
	if h.Dialect.Name() == "mysql" {
		return introspect.CountTenantRows(ctx, h.DB, h.Dialect, names, table, base.Name)
	}
	out := make([]introspect.TenantCount, 0, len(names))
	for _, name := range names {
		if name == base.Name {
			out = append(out, introspect.CountTenantRows(ctx, h.DB, h.Dialect, []string{name}, table, name)...)
			continue
		}
		th, err := open(ctx, database.WithDatabase(base, name))
		if err != nil {
			out = append(out, introspect.TenantCount{Database: name, Error: err.Error()})
			continue
		}
		out = append(out, introspect.CountTenantRows(ctx, th.DB, th.Dialect, []string{name}, table, name)...)
		_ = th.Close()
	}
	return out
}

var EnsureColumnsCmd = &cobra.Command{
	Use:   "ensure-columns",
	Short: "Add the columns listed under ensure_columns that are missing, running their backfill",
	Args:  cobra.NoArgs,
	RunE: withPolicy(runner.LogOnly, func(cmd *cobra.Command, _ []string) error {
		if len(current.doc.EnsureColumns) == 0 {
			return fmt.Errorf("no ensure_columns entries in config")
		}
		return withHandle(cmd, current.db, func(h *database.Handle) error {
			for _, spec := range current.doc.EnsureColumns {
				added, err := introspect.EnsureColumns(cmd.Context(), h.DB, h.Dialect, spec.Table, spec.Columns)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d column(s) added %v\n", spec.Table, len(added), added)
			}
			return nil
		})
	}),
}

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs (requires --record or ledger.enabled)",
	Args:  cobra.NoArgs,
	RunE: withPolicy(runner.LogOnly, func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withHandle(cmd, current.db, func(h *database.Handle) error {
			l := ledger.New(h.DB, h.Dialect, current.doc.Ledger.Table)
			if err := l.Ensure(cmd.Context()); err != nil {
				return err
			}
			runs, err := l.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			t := tablewriter.NewWriter(cmd.OutOrStdout())
			t.SetHeader([]string{"ID", "Kind", "Script", "Success", "Ran At", "Error"})
			t.SetAutoFormatHeaders(false)
			for _, r := range runs {
				msg := ""
				if r.Error != nil {
					msg = *r.Error
				}
				t.Append([]string{fmt.Sprint(r.ID), string(r.Kind), r.Script, fmt.Sprint(r.Success), r.RanAt, msg})
			}
			t.Render()
			return nil
		})
	}),
}

func init() {
	ColumnsCmd.Flags().StringP("output", "o", introspect.FormatJSON, "output format: table, json, yaml")
	TenantsCmd.Flags().String("count", "", "also count rows of this table in every tenant database")
	HistoryCmd.Flags().Int("limit", 20, "number of runs to show (0 = all)")
}
