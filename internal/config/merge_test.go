package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/vgrid/internal/config"
)

// newDefaultTarget returns a Config with known non-default values so tests can
// verify that absent overlay keys leave the original values intact.
func newDefaultTarget() *config.Config {
	return &config.Config{
		Version: "1.2",
		Output: config.OutputConfig{
			DefaultFormat: "yaml",
			Precision:     5,
		},
		Logging: config.LoggingConfig{
			Level:  "warn",
			Format: "json",
		},
		Table: config.TableConfig{
			Fixed:        true,
			RowHeight:    3,
			HeaderHeight: []float64{2, 1},
			Overscan:     7,
			RowKey:       "uid",
		},
		Cache: config.CacheConfig{
			Enabled:    false,
			TTLSeconds: 60,
		},
	}
}

// writeOverlay writes content to a temp file and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
output:
  default_format: json
  precision: 4
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "json", target.Output.DefaultFormat)
	assert.Equal(t, 4, target.Output.Precision)

	assert.Equal(t, "warn", target.Logging.Level)
	assert.True(t, target.Table.Fixed)
	assert.Equal(t, "1.2", target.Version)
}

func TestShallowMergeYAML_SectionReplacedWholesale(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
table:
  overscan: 2
  header_height: [1]
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	defaults := config.Defaults().Table
	assert.Equal(t, 2, target.Table.Overscan)
	assert.Equal(t, []float64{1}, target.Table.HeaderHeight)
	assert.False(t, target.Table.Fixed, "fields from the earlier layer are not kept")
	assert.Equal(t, defaults.RowKey, target.Table.RowKey)
	assert.InDelta(t, defaults.RowHeight, target.Table.RowHeight, 0)
}

func TestShallowMergeYAML_MultipleSections(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
version: "1.4"
logging:
  level: debug
  file: /tmp/vgrid.log
cache:
  enabled: true
  ttl_seconds: 600
  directory: /var/cache/vgrid
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "1.4", target.Version)
	assert.Equal(t, "debug", target.Logging.Level)
	assert.Equal(t, "/tmp/vgrid.log", target.Logging.File)
	assert.Equal(t, config.CacheConfig{Enabled: true, TTLSeconds: 600, Directory: "/var/cache/vgrid"}, target.Cache)
	assert.Equal(t, "yaml", target.Output.DefaultFormat)
}

func TestShallowMergeYAML_EmptyAndCommentOnly(t *testing.T) {
	for name, content := range map[string]string{
		"empty":        "",
		"comment only": "# nothing here\n",
	} {
		t.Run(name, func(t *testing.T) {
			target := newDefaultTarget()
			require.NoError(t, config.ShallowMergeYAML(target, writeOverlay(t, content)))
			assert.Equal(t, newDefaultTarget(), target)
		})
	}
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
plugins:
  aws: {}
output:
  default_format: table
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "table", target.Output.DefaultFormat)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		require.Error(t, config.ShallowMergeYAML(nil, "x.yaml"))
	})
	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(newDefaultTarget(), filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("corrupted yaml", func(t *testing.T) {
		err := config.ShallowMergeYAML(newDefaultTarget(), writeOverlay(t, "output: [unclosed\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing overlay YAML")
	})
	t.Run("wrong section type", func(t *testing.T) {
		err := config.ShallowMergeYAML(newDefaultTarget(), writeOverlay(t, "table:\n  overscan: lots\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `section "table"`)
	})
}
