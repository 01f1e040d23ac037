package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/vgrid/internal/grid"
)

// CurrentVersion is the config file version written by Save.
const CurrentVersion = "1.0"

// supportedVersions is the range of config versions this build understands.
const supportedVersions = ">= 1.0, < 2.0"

const (
	outputTypeFile = "file"
	configFileName = "config.yaml"
)

// Output formats accepted by output.default_format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Environment overrides.
const (
	EnvLogLevel  = "VGRID_LOG_LEVEL"
	EnvLogFormat = "VGRID_LOG_FORMAT"
)

var (
	// ErrInvalidConfig is wrapped by every Validate failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownKey is returned by Get for a path that does not exist.
	ErrUnknownKey = errors.New("unknown configuration key")
)

// Config is the vgrid configuration file.
type Config struct {
	Version string        `yaml:"version"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Table   TableConfig   `yaml:"table"`
	Cache   CacheConfig   `yaml:"cache"`

	configPath string
}

// OutputConfig controls report output.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig controls the application logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// TableConfig holds table defaults applied before command-line flags.
type TableConfig struct {
	Fixed               bool      `yaml:"fixed"`
	RowHeight           float64   `yaml:"row_height"`
	EstimatedRowHeight  float64   `yaml:"estimated_row_height,omitempty"`
	HeaderHeight        []float64 `yaml:"header_height"`
	FooterHeight        float64   `yaml:"footer_height,omitempty"`
	Overscan            int       `yaml:"overscan"`
	EndReachedThreshold float64   `yaml:"end_reached_threshold"`
	ScrollbarSize       float64   `yaml:"scrollbar_size"`
	RowKey              string    `yaml:"row_key"`
	ChildrenField       string    `yaml:"children_field"`
	ResizeIntervalMS    int       `yaml:"resize_interval_ms"`
	WrapCells           bool      `yaml:"wrap_cells"`
	PageSize            int       `yaml:"page_size,omitempty"`
}

// CacheConfig controls the on-disk state store used for scroll persistence.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Directory  string `yaml:"directory,omitempty"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// Defaults returns a configuration with built-in defaults and no file or
// environment applied. Table heights are in terminal rows.
func Defaults() *Config {
	return &Config{
		Version: CurrentVersion,
		Output: OutputConfig{
			DefaultFormat: FormatTable,
			Precision:     2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Table: TableConfig{
			RowHeight:           1,
			HeaderHeight:        []float64{1},
			Overscan:            grid.DefaultOverscanRowCount,
			EndReachedThreshold: 5,
			ScrollbarSize:       1,
			RowKey:              grid.DefaultRowKey,
			ChildrenField:       grid.DefaultChildrenField,
			ResizeIntervalMS:    16,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 7 * 24 * 3600,
		},
	}
}

// New returns the defaults overlaid with the user config file, when one exists,
// and the environment overrides.
func New() *Config {
	cfg := Defaults()
	dir, err := GetConfigDir()
	if err == nil {
		cfg.configPath = filepath.Join(dir, configFileName)
		if _, statErr := os.Stat(cfg.configPath); statErr == nil {
			if loadErr := cfg.Load(cfg.configPath); loadErr != nil {
				logger := GetLogger()
				logger.Warn().
					Str("component", "config").
					Err(loadErr).
					Str("path", cfg.configPath).
					Msg("ignoring unreadable config file")
			}
		}
	}
	cfg.applyEnvOverrides()
	return cfg
}

// Load merges the file at path onto cfg. Sections present in the file replace
// the corresponding sections of cfg.
func (c *Config) Load(path string) error {
	if err := ShallowMergeYAML(c, path); err != nil {
		return err
	}
	c.configPath = path
	return nil
}

// Save writes cfg to its config path with 0600 permissions.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.configPath, err)
	}
	return nil
}

// SetConfigPath sets the path used by Save.
func (c *Config) SetConfigPath(path string) { c.configPath = path }

// ConfigPath returns the path used by Save.
func (c *Config) ConfigPath() string { return c.configPath }

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
}

// Validate checks the version range and the value ranges of every section.
func (c *Config) Validate() error {
	version, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("%w: version %q: %w", ErrInvalidConfig, c.Version, err)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	if !constraint.Check(version) {
		return fmt.Errorf("%w: version %s is outside %s", ErrInvalidConfig, c.Version, supportedVersions)
	}

	switch c.Output.DefaultFormat {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: output.default_format %q", ErrInvalidConfig, c.Output.DefaultFormat)
	}
	if c.Output.Precision < 0 {
		return fmt.Errorf("%w: output.precision must not be negative", ErrInvalidConfig)
	}

	t := c.Table
	switch {
	case t.RowHeight <= 0:
		return fmt.Errorf("%w: table.row_height must be positive", ErrInvalidConfig)
	case t.EstimatedRowHeight < 0:
		return fmt.Errorf("%w: table.estimated_row_height must not be negative", ErrInvalidConfig)
	case t.Overscan < 0:
		return fmt.Errorf("%w: table.overscan must not be negative", ErrInvalidConfig)
	case t.EndReachedThreshold < 0:
		return fmt.Errorf("%w: table.end_reached_threshold must not be negative", ErrInvalidConfig)
	case t.ResizeIntervalMS < 0:
		return fmt.Errorf("%w: table.resize_interval_ms must not be negative", ErrInvalidConfig)
	case t.PageSize < 0:
		return fmt.Errorf("%w: table.page_size must not be negative", ErrInvalidConfig)
	}
	for i, h := range t.HeaderHeight {
		if h < 0 {
			return fmt.Errorf("%w: table.header_height[%d] must not be negative", ErrInvalidConfig, i)
		}
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("%w: cache.ttl_seconds must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ToProps converts the table section into engine props. Columns, data and
// geometry are left for the caller.
func (c *Config) ToProps() grid.Props {
	t := c.Table
	return grid.Props{
		RowKey:              t.RowKey,
		ChildrenField:       t.ChildrenField,
		Fixed:               t.Fixed,
		RowHeight:           t.RowHeight,
		EstimatedRowHeight:  t.EstimatedRowHeight,
		HeaderHeights:       append([]float64(nil), t.HeaderHeight...),
		FooterHeight:        t.FooterHeight,
		OverscanRowCount:    t.Overscan,
		EndReachedThreshold: t.EndReachedThreshold,
		ScrollbarSize:       t.ScrollbarSize,
		ResizeInterval:      time.Duration(t.ResizeIntervalMS) * time.Millisecond,
	}
}

// Get returns the value at a dotted path such as "table.row_height".
func (c *Config) Get(key string) (any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	var tree map[string]any
	if err = yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("re-reading config: %w", err)
	}

	var cur any = tree
	for _, part := range strings.Split(key, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
			}
			cur = next
		case []any:
			i, convErr := strconv.Atoi(part)
			if convErr != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}
	return cur, nil
}
