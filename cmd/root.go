package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clawdash",
	Short: "Local dashboard for the guided install wizard",
	Long: `clawdash serves a browser dashboard that walks an operator through a
guided installation: it runs the named install tasks one at a time,
streams their output live, and records each step's outcome.

Quick start:
  clawdash serve                 # start the dashboard on 127.0.0.1:8787
  clawdash reset-code            # forget the access code so a new one can be bootstrapped`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetCodeCmd)
	rootCmd.AddCommand(versionCmd)
}
