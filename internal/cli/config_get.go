package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/vgrid/internal/config"
)

// NewConfigGetCmd creates the config get command. It prints one value by dotted
// path, or the whole effective configuration when no key is given.
func NewConfigGetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Print a configuration value",
		Long: `Prints a value from the effective configuration (global file, project overlay
and environment overrides combined). Keys are dotted paths such as table.row_height
or table.header_height.0. Without a key the whole configuration is printed.`,
		Example: `  # Show the overscan row count
  vgrid config get table.overscan

  # Show the effective configuration as JSON
  vgrid config get --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetGlobalConfig()
			if len(args) == 1 {
				v, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				return writeValue(cmd, output, v)
			}

			// Round-trip through yaml so JSON output uses the file's key names.
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshalling config: %w", err)
			}
			var tree map[string]any
			if err = yaml.Unmarshal(data, &tree); err != nil {
				return fmt.Errorf("re-reading config: %w", err)
			}
			return writeValue(cmd, output, tree)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.FormatYAML, "output format: yaml or json")

	return cmd
}

func writeValue(cmd *cobra.Command, output string, value any) error {
	w := cmd.OutOrStdout()
	switch output {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case config.FormatYAML:
		// Scalars print bare so the value can be used in scripts.
		switch v := value.(type) {
		case string, bool, int, float64:
			_, err := fmt.Fprintln(w, v)
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
}
