package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clawdash/clawdash/internal/config"
	"github.com/clawdash/clawdash/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	serveConfigFlag string
	serveBindFlag   string
	servePortFlag   int
	serveRootFlag   string
	serveStateFlag  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigFlag, "config", "c", "", "Path to a YAML config file")
	serveCmd.Flags().StringVar(&serveBindFlag, "bind", "", "Bind address (default 127.0.0.1; non-loopback is an explicit opt-in)")
	serveCmd.Flags().IntVar(&servePortFlag, "port", 0, "Listen port (default 8787)")
	serveCmd.Flags().StringVar(&serveRootFlag, "root", "", "Installation root directory")
	serveCmd.Flags().StringVar(&serveStateFlag, "state-dir", "", "State directory (default <root>/sh/state)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigFlag)
	if err != nil {
		return err
	}
	if serveBindFlag != "" {
		cfg.Bind = serveBindFlag
	}
	if servePortFlag != 0 {
		cfg.Port = servePortFlag
	}
	if serveRootFlag != "" {
		cfg.Root = serveRootFlag
	}
	if serveStateFlag != "" {
		cfg.StateDir = serveStateFlag
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	srv, err := dashboard.New(cfg, logger)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("Shutting down dashboard...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	return srv.ListenAndServe()
}
