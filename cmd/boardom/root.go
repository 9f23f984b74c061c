package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "boardom",
	Short: "Boardom runs event-driven training loops",
	Long: `Boardom wires components into an engine by the events they answer and
drives the engine through training phases described in a YAML file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "boardom.yaml", "YAML file describing components and phases")
}
