package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/boardom/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every phase of the configured trainer",
	Long: `Builds the engine from the components listed in the config, runs its
phases and prints the final state as a YAML snapshot on stdout.
An interrupt stops the run at the next step and still prints the snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{Out: cmd.OutOrStdout()}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis")
		opts.Resume, _ = cmd.Flags().GetString("resume")
		opts.Session, _ = cmd.Flags().GetString("session")
		opts.MetricsFile, _ = cmd.Flags().GetString("metrics-file")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		return cli.RunSession(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("redis", "", "Redis address for snapshot persistence (overrides redis.address)")
	runCmd.Flags().String("resume", "", "Restore the snapshot stored under this engine id before running")
	runCmd.Flags().String("session", "", "Resume the named snapshot if it exists, seed it otherwise, and save the run under it")
	runCmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after the run")
	runCmd.Flags().String("log-level", "", "Log level: debug, info, warn or error (overrides log_level)")
}
