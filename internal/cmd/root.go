/*
Package cmd provides the CLI commands for the invitation dispatcher.
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fair-invitations/internal/config"
)

var (
	cfgFile      string
	exhibitionID string
	debug        bool

	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "invitations",
	Short: "Bulk trade-fair invitation ingestion and dispatch",
	Long: `Invitations loads guest lists from CSV files, validates every row and
sends personalized invitations through the trade-fair portal, one guest at a time.

Example:
  invitations template lista-gosci.csv         # Download an empty guest list
  invitations parse lista.csv -e expo-2025      # Load and validate a guest list
  invitations send --template tpl-1             # Send to every pending guest
  invitations reset-failed                      # Retry failed sends on the next run`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		if debug {
			level = zerolog.DebugLevel
		}

		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&exhibitionID, "exhibition", "e", "", "exhibition id (defaults to the loaded guest list's)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(guestsCmd)
	rootCmd.AddCommand(resetFailedCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(recipientsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(interactiveCmd)
}
