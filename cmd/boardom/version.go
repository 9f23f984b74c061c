package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/boardom"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of boardom",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "boardom version %s\n", strings.TrimSpace(boardom.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
