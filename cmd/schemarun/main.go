package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "schemarun",
	Short:         "Apply SQL schema scripts to a configured database and inspect the result",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return prepare(cmd)
	},
}

func cmdRecord() bool { return viper.GetBool("record") }

func init() {
	v := viper.GetViper()
	v.SetDefault("config", "")
	v.SetDefault("env_file", "")
	v.SetDefault("strict", false)
	v.SetDefault("record", false)
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "")

	// Environment variables support: SCHEMARUN_CONFIG, SCHEMARUN_STRICT, ...
	v.SetEnvPrefix("SCHEMARUN")
	v.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.String("config", v.GetString("config"), "path to a config yaml (default ./schemarun.yaml when present)")
	pf.String("env-file", v.GetString("env_file"), "dotenv file with DB_* settings; process environment wins")
	pf.Bool("strict", v.GetBool("strict"), "reject defaulted DB_HOST, DB_USER and DB_NAME")
	pf.Bool("record", v.GetBool("record"), "record every run in the history table of the target database")
	pf.String("log-level", v.GetString("log_level"), "error, warn, info, debug")
	pf.String("log-format", v.GetString("log_format"), "text, json, color")

	_ = v.BindPFlag("config", pf.Lookup("config"))
	_ = v.BindPFlag("env_file", pf.Lookup("env-file"))
	_ = v.BindPFlag("strict", pf.Lookup("strict"))
	_ = v.BindPFlag("record", pf.Lookup("record"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log_format", pf.Lookup("log-format"))

	rootCmd.AddCommand(ApplyCmd, RunCmd, InitCmd, QueryCmd)
	rootCmd.AddCommand(ColumnsCmd, TenantsCmd, EnsureColumnsCmd, HistoryCmd)
	rootCmd.AddCommand(CreateCmd, ServeCmd, TokenCmd, InspectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	finish(err)
}
