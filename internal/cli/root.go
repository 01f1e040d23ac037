package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/vgrid/internal/config"
	"github.com/rshade/vgrid/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger = zerolog.Nop() //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the vgrid CLI.
// It resolves the project directory, loads configuration, wires up logging
// and registers the view, layout and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		configFile string
		projectDir string
	)

	cmd := &cobra.Command{
		Use:           "vgrid",
		Short:         "Virtualized table viewer for JSON, YAML and Excel data",
		Long:          "vgrid: browse large row sets in a terminal table with frozen columns, sorting, tree rows and incremental loading",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd, projectDir, configFile); err != nil {
				return err
			}
			logResult = setupLogging(cmd)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&configFile, "config", "",
		"read an extra configuration file, merged over the global and project config")
	cmd.PersistentFlags().StringVar(&projectDir, "project-dir", "",
		"project directory holding .vgrid/config.yaml (default: discovered from the working directory)")
	cmd.AddCommand(NewViewCmd(), NewLayoutCmd(), newConfigCmd())

	return cmd
}

// loadConfig resolves the project directory and initializes the global config.
func loadConfig(cmd *cobra.Command, projectFlag, configFile string) error {
	ctx := cmd.Context()
	startDir, err := os.Getwd()
	if err != nil {
		startDir = "."
	}

	projectDir := config.ResolveProjectDir(ctx, projectFlag, startDir)
	config.SetResolvedProjectDir(projectDir)
	config.InitGlobalConfigWithProject(ctx, projectDir)

	if configFile == "" {
		return nil
	}
	cfg := config.GetGlobalConfig()
	if loadErr := cfg.Load(configFile); loadErr != nil {
		return fmt.Errorf("loading config %s: %w", configFile, loadErr)
	}
	if validateErr := cfg.Validate(); validateErr != nil {
		return fmt.Errorf("config %s: %w", configFile, validateErr)
	}
	return nil
}

const rootCmdExample = `  # Browse a JSON file interactively
  vgrid view rows.json

  # Freeze the id column and sort by team, then score descending
  vgrid view rows.json --fixed --frozen-left id --sort team --sort score:desc --multi-sort

  # Load an Excel sheet 200 rows at a time and reload when it changes
  vgrid view report.xlsx --sheet Q3 --page-size 200 --watch

  # Print the computed layout for a 120x40 terminal
  vgrid layout rows.json --width 120 --height 40 --output json

  # Initialize configuration
  vgrid config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigGetCmd(), NewConfigValidateCmd())
	return cmd
}
