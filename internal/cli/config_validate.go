package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/vgrid/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration (global file, project overlay and any
--config file) for syntax and semantic correctness.

This includes:
- Config version compatibility
- Output format and precision
- Table geometry: row heights, header heights, overscan and thresholds
- Cache TTL`,
		Example: `  # Validate current configuration
  vgrid config validate

  # Validate and show detailed information
  vgrid config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.ConfigPath())
	if projectDir := config.GetResolvedProjectDir(); projectDir != "" {
		cmd.Printf("  Project directory: %s\n", projectDir)
	}
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}

	t := cfg.Table
	mode := "flexible"
	if t.Fixed {
		mode = "fixed"
	}
	cmd.Printf("  Table mode: %s\n", mode)
	if t.EstimatedRowHeight > 0 {
		cmd.Printf("  Row height: dynamic (estimate %g)\n", t.EstimatedRowHeight)
	} else {
		cmd.Printf("  Row height: %g\n", t.RowHeight)
	}
	cmd.Printf("  Header rows: %d\n", len(t.HeaderHeight))
	cmd.Printf("  Overscan: %d\n", t.Overscan)
	cmd.Printf("  End reached threshold: %g\n", t.EndReachedThreshold)

	if cfg.Cache.Enabled {
		cmd.Printf("  Scroll state cache: enabled (ttl %ds)\n", cfg.Cache.TTLSeconds)
	} else {
		cmd.Println("  Scroll state cache: disabled")
	}
}
