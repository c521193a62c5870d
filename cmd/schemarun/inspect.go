package main

import (
	"fmt"
	"strings"

	"github.com/loykin/schemarun/internal/introspect"
	"github.com/loykin/schemarun/pkg/client"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (s *session) newClient(cmd *cobra.Command) (*client.Client, error) {
	cfg := s.doc.Client
	if u, _ := cmd.Flags().GetString("url"); u != "" {
		cfg.BaseURL = u
	}
	if cfg.Token == "" {
		cfg.Token = strings.TrimSpace(s.env.GetString("client_token"))
	}
	return client.New(cmd.Context(), cfg)
}

var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Query a running inspector API",
}

var inspectHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check inspector health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := current.newClient(cmd)
		if err != nil {
			return err
		}
		status, driver, db, err := c.Health(cmd.Context())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s %s)\n", status, driver, db)
		return nil
	},
}

var inspectColumnsCmd = &cobra.Command{
	Use:   "columns <table> [field...]",
	Short: "Show table columns through the inspector",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := current.newClient(cmd)
		if err != nil {
			return err
		}
		cols, err := c.Columns(cmd.Context(), args[0], args[1:]...)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")
		out := make([]introspect.Column, 0, len(cols))
		for _, col := range cols {
			out = append(out, introspect.Column(col))
		}
		return introspect.Render(cmd.OutOrStdout(), format, out)
	},
}

var inspectTenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List tenant databases through the inspector (super admin token)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := current.newClient(cmd)
		if err != nil {
			return err
		}
		table, _ := cmd.Flags().GetString("count")
		names, counts, err := c.Tenants(cmd.Context(), table)
		if err != nil {
			return err
		}
		if table == "" {
			for _, n := range names {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		}
		t := tablewriter.NewWriter(cmd.OutOrStdout())
		t.SetHeader([]string{"Database", "Rows", "Error"})
		t.SetAutoFormatHeaders(false)
		for _, tc := range counts {
			t.Append([]string{tc.Database, fmt.Sprint(tc.Rows), tc.Error})
		}
		t.Render()
		return nil
	},
}

var inspectHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs through the inspector",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := current.newClient(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := c.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		t := tablewriter.NewWriter(cmd.OutOrStdout())
		t.SetHeader([]string{"ID", "Kind", "Script", "Success", "Ran At", "Error"})
		t.SetAutoFormatHeaders(false)
		for _, r := range runs {
			t.Append([]string{fmt.Sprint(r.ID), r.Kind, r.Script, fmt.Sprint(r.Success), r.RanAt, r.Error})
		}
		t.Render()
		return nil
	},
}

func init() {
	InspectCmd.PersistentFlags().String("url", "", "inspector base URL (default client.base_url)")
	inspectColumnsCmd.Flags().StringP("output", "o", introspect.FormatTable, "output format: table, json, yaml")
	inspectTenantsCmd.Flags().String("count", "", "also count rows of this table per tenant")
	inspectHistoryCmd.Flags().Int("limit", 20, "number of runs to show")
	InspectCmd.AddCommand(inspectHealthCmd, inspectColumnsCmd, inspectTenantsCmd, inspectHistoryCmd)
}
