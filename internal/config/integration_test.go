package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHome points the config directory at a fresh temp dir.
func stubHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("VGRID_HOME", "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	return home
}

func TestGlobalConfig(t *testing.T) {
	stubHome(t)
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := GetGlobalConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, FormatTable, cfg.Output.DefaultFormat)

	assert.Same(t, cfg, GetGlobalConfig())

	ResetGlobalConfigForTest()
	assert.NotSame(t, cfg, GetGlobalConfig())
}

func TestConfigGetters(t *testing.T) {
	stubHome(t)
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := GetGlobalConfig()
	cfg.Output.DefaultFormat = FormatJSON
	cfg.Output.Precision = 4
	cfg.Logging.Level = "debug"
	cfg.Logging.File = "/tmp/test.log"
	cfg.Table.Overscan = 9

	assert.Equal(t, FormatJSON, GetDefaultOutputFormat())
	assert.Equal(t, 4, GetOutputPrecision())
	assert.Equal(t, "debug", GetLogLevel())
	assert.Equal(t, "/tmp/test.log", GetLogFile())
	assert.Equal(t, 9, GetTableConfig().Overscan)
	assert.Equal(t, "debug", GetLoggingConfig().Level)
}

func TestEnsureConfigDir(t *testing.T) {
	home := stubHome(t)

	require.NoError(t, EnsureConfigDir())

	stat, err := os.Stat(filepath.Join(home, ".vgrid"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestEnsureLogDir(t *testing.T) {
	stubHome(t)
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	tmpDir := t.TempDir()
	GetGlobalConfig().Logging.File = filepath.Join(tmpDir, "logs", "subdir", "test.log")

	require.NoError(t, EnsureLogDir())

	stat, err := os.Stat(filepath.Join(tmpDir, "logs", "subdir"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestEnsureLogDirError(t *testing.T) {
	stubHome(t)
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	file := filepath.Join(t.TempDir(), "plain-file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	GetGlobalConfig().Logging.File = filepath.Join(file, "subdir", "test.log")

	assert.Error(t, EnsureLogDir())
}

func TestGetConfigDir(t *testing.T) {
	home := stubHome(t)

	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vgrid"), dir)

	t.Setenv("VGRID_HOME", "/opt/vgrid")
	dir, err = GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/opt/vgrid", dir)
}

func TestGetCacheDir(t *testing.T) {
	home := stubHome(t)
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	dir, err := GetCacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vgrid", "cache"), dir)

	GetGlobalConfig().Cache.Directory = "/var/cache/vgrid"
	dir, err = GetCacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/vgrid", dir)
}

func TestEnsureSubDirs(t *testing.T) {
	home := stubHome(t)
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)
	GetGlobalConfig().Logging.File = filepath.Join(home, "logs", "vgrid.log")

	require.NoError(t, EnsureSubDirs())

	for _, dir := range []string{
		filepath.Join(home, ".vgrid"),
		filepath.Join(home, ".vgrid", "cache"),
		filepath.Join(home, "logs"),
	} {
		stat, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, stat.IsDir(), dir)
	}
}

func TestInitGlobalConfigWithProject(t *testing.T) {
	ctx := context.Background()

	t.Run("project config overrides global table", func(t *testing.T) {
		home := stubHome(t)
		ResetGlobalConfigForTest()
		t.Cleanup(ResetGlobalConfigForTest)

		globalDir := filepath.Join(home, ".vgrid")
		require.NoError(t, os.MkdirAll(globalDir, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(globalDir, "config.yaml"),
			[]byte("table:\n  overscan: 3\noutput:\n  default_format: yaml\n"), 0o600))

		projectDir := filepath.Join(t.TempDir(), ".vgrid")
		require.NoError(t, os.MkdirAll(projectDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, "config.yaml"),
			[]byte("table:\n  overscan: 8\n"), 0o600))

		InitGlobalConfigWithProject(ctx, projectDir)
		cfg := GetGlobalConfig()

		assert.Equal(t, 8, cfg.Table.Overscan)
		assert.Equal(t, FormatYAML, cfg.Output.DefaultFormat, "inherited from global")
	})

	t.Run("empty project dir matches InitGlobalConfig", func(t *testing.T) {
		stubHome(t)
		ResetGlobalConfigForTest()
		t.Cleanup(ResetGlobalConfigForTest)

		InitGlobalConfigWithProject(ctx, "")
		withProject := *GetGlobalConfig()

		ResetGlobalConfigForTest()
		InitGlobalConfig()
		assert.Equal(t, *GetGlobalConfig(), withProject)
	})
}
