package cmd

import (
	"fmt"

	"github.com/clawdash/clawdash/internal/auth"
	"github.com/clawdash/clawdash/internal/config"
	"github.com/spf13/cobra"
)

var (
	resetConfigFlag string
	resetStateFlag  string
)

var resetCodeCmd = &cobra.Command{
	Use:   "reset-code",
	Short: "Delete the stored access code so the dashboard can bootstrap a new one",
	RunE:  runResetCode,
}

func init() {
	resetCodeCmd.Flags().StringVarP(&resetConfigFlag, "config", "c", "", "Path to a YAML config file")
	resetCodeCmd.Flags().StringVar(&resetStateFlag, "state-dir", "", "State directory (default <root>/sh/state)")
}

func runResetCode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(resetConfigFlag)
	if err != nil {
		return err
	}
	if resetStateFlag != "" {
		cfg.StateDir = resetStateFlag
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	store := auth.NewStore(cfg.StateDir)
	if !store.Bootstrapped() {
		fmt.Println("No access code is set.")
		return nil
	}
	if err := store.Reset(); err != nil {
		return err
	}
	fmt.Println("Access code deleted. The next dashboard visitor can bootstrap a new one.")
	return nil
}
