package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/boardom/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored snapshots over HTTP",
	Long: `Starts an HTTP server listing, fetching and deleting the snapshots kept in
redis. /metrics carries process and Go runtime metrics; the dispatch
metrics of a run are written by run --metrics-file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ServeOptions{}
		opts.Addr, _ = cmd.Flags().GetString("addr")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		return cli.Serve(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis", "localhost:6379", "Redis address holding the snapshots")
	serveCmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
}
