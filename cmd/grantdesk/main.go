package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kalambet/grantdesk/internal/config"
)

var version = "dev"

var (
	noColor bool

	// cfg is loaded once before any subcommand runs.
	cfg config.Config

	// loadConfig is replaced in tests.
	loadConfig = config.Load
)

var rootCmd = &cobra.Command{
	Use:   "grantdesk",
	Short: "Fill in a housing grant application with a built-in assistant",
	Long: `grantdesk walks you through the five steps of a housing grant
application and answers questions about it with a rate-limited assistant.

Examples:
  grantdesk wizard --save application.json
  grantdesk ask --form application.json "Which documents prove enrollment?"
  grantdesk quota`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}

		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg.Log.Level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// setupLogging installs a text handler on stderr at the given level.
// Unknown levels fall back to info.
func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}
