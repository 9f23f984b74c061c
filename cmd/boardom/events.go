package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/boardom/internal/cli"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the events of the configured trainer and the callables answering them",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		return cli.ListEvents(cli.RunOptions{ConfigPath: path, Out: cmd.OutOrStdout()})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
