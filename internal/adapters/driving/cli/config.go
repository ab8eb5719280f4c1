package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/config/file"
	"github.com/custodia-labs/contextpacket/internal/core/services"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Writes every setting with its default value. The format follows the file
extension: .yaml and .yml produce YAML, anything else TOML. Without a path
the --config location is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	store, err := file.NewConfigStore(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if err := services.NewSettingsService(store).WriteDefaults(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	cmd.Printf("Wrote default configuration to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	cmd.Printf("Configuration: %s\n\n", configPath)

	cmd.Println("Chunking")
	cmd.Printf("  chunk_size: %d\n", settings.Chunking.ChunkSize)
	cmd.Printf("  overlap:    %d\n", settings.Chunking.Overlap)
	cmd.Printf("  tokenizer:  %s\n", settings.Chunking.Tokenizer)

	cmd.Println("Ingest")
	cmd.Printf("  include_extensions: %s\n", strings.Join(settings.Ingest.IncludeExtensions, ", "))
	cmd.Printf("  recursive:          %t\n", settings.Ingest.Recursive)
	cmd.Printf("  workers:            %d\n", settings.Ingest.Workers)

	s := settings.Scoring
	cmd.Println("Scoring")
	cmd.Printf("  provider:   %s (%s)\n", s.Provider, s.Provider.Description())
	cmd.Printf("  model:      %s\n", s.Model)
	cmd.Printf("  base_url:   %s\n", s.BaseURL)
	cmd.Printf("  batch_size: %d\n", s.BatchSize)
	cmd.Printf("  threshold:  %s\n", formatThreshold(s.Threshold))

	cmd.Println("Limits")
	cmd.Printf("  large:  %d\n", settings.Limits.Large)
	cmd.Printf("  medium: %d\n", settings.Limits.Medium)
	cmd.Printf("  small:  %d\n", settings.Limits.Small)

	cmd.Printf("Output: %s\n", settings.OutputDir)
	if len(settings.Queries) > 0 {
		cmd.Println("Queries")
		for _, q := range settings.Queries {
			cmd.Printf("  %s: %s\n", q.ID, q.Text)
		}
	}
	return nil
}

func formatThreshold(t *float64) string {
	if t == nil {
		return "none"
	}
	return fmt.Sprintf("%.2f", *t)
}
