package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/llmcmd/internal/config"
	"github.com/iishyfishyy/llmcmd/internal/logging"
	"github.com/iishyfishyy/llmcmd/internal/ui"
)

var (
	// version is set by goreleaser at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// CLI flags
	debug bool
)

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.ShowError(err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "llmcmd",
		Short:   "Turn a plain-language request into a shell command",
		Long:    "llmcmd asks a language model for a shell command, lets you review and edit it, then runs it",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		// errors are reported once by main, without the usage block
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global debug flag
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(newCmdCmd())
	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newKeysCmd())
	rootCmd.AddCommand(newLogsCmd())

	return rootCmd
}

// loadConfig reads the configuration and builds the logger it describes.
// --debug forces debug level.
func loadConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	log, err := logging.New(logging.Config{Level: level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	log.WithField("path", configPath).Debug("configuration loaded")

	return cfg, log, nil
}
