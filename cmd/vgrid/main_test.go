package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/vgrid/internal/config"
)

func TestRun(t *testing.T) {
	t.Setenv("VGRID_HOME", t.TempDir())
	t.Setenv(config.EnvLogLevel, "error")
	t.Chdir(t.TempDir())
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})

	t.Run("config validate", func(t *testing.T) {
		require.NoError(t, run(context.Background(), []string{"config", "validate"}))
	})

	t.Run("unknown command", func(t *testing.T) {
		assert.Error(t, run(context.Background(), []string{"nope"}))
	})

	t.Run("missing input", func(t *testing.T) {
		err := run(context.Background(), []string{"layout", filepath.Join(t.TempDir(), "rows.json")})
		assert.Error(t, err)
	})
}
