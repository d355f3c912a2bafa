package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridden at build time via -ldflags "-X ...cmd.version=v1.2.3".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the clawdash version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("clawdash", version)
	},
}
