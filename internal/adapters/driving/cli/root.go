// Package cli implements the contextpacket command line.
package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/config/file"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
	"github.com/custodia-labs/contextpacket/internal/core/services"
	"github.com/custodia-labs/contextpacket/internal/logger"
)

// version is set at build time via ldflags or SetVersion.
var version = "dev"

var (
	configPath string
	verbose    bool
	logFormat  string
)

// settingsService is built from --config before every command runs.
var settingsService driving.SettingsService

var rootCmd = &cobra.Command{
	Use:   "contextpacket",
	Short: "Chunk, score and evaluate a document corpus",
	Long: `contextpacket turns a directory of documents into deterministic,
citable chunks, scores them against a query and assembles token-bounded
context packets. Relevance annotations and threshold evaluation measure
how well the scorer separates relevant from irrelevant chunks.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", file.DefaultFileName,
		"configuration file (.toml, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(logger.FormatText),
		"log format (text, json)")
}

// setup loads .env, configures logging and opens the configuration file.
func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetVerbose(verbose)
	switch f := logger.Format(logFormat); f {
	case logger.FormatText, logger.FormatJSON:
		logger.SetFormat(f)
	default:
		return fmt.Errorf("unknown log format %q", logFormat)
	}

	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

// loadSettings returns the validated settings for the current command.
func loadSettings() (*domain.Settings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return settingsService.Get()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}
