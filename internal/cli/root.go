// Package cli holds the digitseg command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/digit-roi/internal/config"
)

var (
	configPath string

	// cfg is loaded once per invocation by RootCmd's PersistentPreRunE.
	cfg *config.Config
)

var RootCmd = &cobra.Command{
	Use:   "digitseg",
	Short: "Locate and segment the digits of a photographed sign",
	Long: `digitseg finds the region of an image that holds a run of printed digits,
such as a house-number plate, and cuts it into one image per digit.

Settings come from an optional YAML file (--config), a .env file and the
environment. Logs are written to stderr.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("log-level") {
			ll, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
			c.LogLevel = ll
		}

		level, err := config.ParseLevel(c.LogLevel)
		if err != nil {
			return err
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		// stdout carries MCP frames in serve mode
		handler := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(handler)

		cfg = c
		return nil
	},
}

func init() {
	ll := os.Getenv(config.EnvLogLevel)
	if ll == "" {
		ll = "INFO"
	}
	RootCmd.PersistentFlags().String("log-level", ll, "The logging level for the command")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
}
