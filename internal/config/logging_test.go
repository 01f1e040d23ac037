package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/vgrid/internal/logging"
)

func TestToLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "json"}
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputStderr, got.Output)
	assert.Equal(t, "debug", got.Level)

	lc.File = "/tmp/x.log"
	got = lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, "/tmp/x.log", got.File)
}

func TestInitLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vgrid.log")
	result := InitLogger(LoggingConfig{Level: "warn", Format: "json", File: path})
	t.Cleanup(CloseLogFile)

	require.True(t, result.UsingFile)
	assert.Equal(t, zerolog.WarnLevel, GetLogger().GetLevel())

	logger := GetLogger()
	logger.Warn().Str("component", "test").Msg("written")
	CloseLogFile()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"message":"written"`))
	assert.Equal(t, zerolog.WarnLevel, GetLogger().GetLevel(), "level survives closing the file")
}

func TestSetLogLevel(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogLevel("error")
	assert.Equal(t, zerolog.ErrorLevel, GetLogger().GetLevel())
	SetLogLevel("bogus")
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
}
