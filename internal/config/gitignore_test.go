package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/vgrid/internal/config"
)

func readGitignore(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	return string(data)
}

func TestEnsureGitignore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		existing    *string
		nested      bool
		wantCreated bool
		want        string
	}{
		{
			name:        "new file",
			wantCreated: true,
			want:        config.GitignoreContent(),
		},
		{
			name:        "missing parent directories",
			nested:      true,
			wantCreated: true,
			want:        config.GitignoreContent(),
		},
		{
			name:     "complete file untouched",
			existing: ptr("# mine\ncache/\n*.log\n"),
			want:     "# mine\ncache/\n*.log\n",
		},
		{
			name:     "missing entries appended",
			existing: ptr("node_modules/\ncache/"),
			want:     "node_modules/\ncache/\n*.log\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			if tt.nested {
				dir = filepath.Join(dir, "sub", "deep", ".vgrid")
			}
			if tt.existing != nil {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(*tt.existing), 0o600))
			}

			created, err := config.EnsureGitignore(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, tt.want, readGitignore(t, dir))

			again, err := config.EnsureGitignore(dir)
			require.NoError(t, err)
			assert.False(t, again)
			assert.Equal(t, tt.want, readGitignore(t, dir))
		})
	}
}

func TestGitignoreContent_KeepsConfigTracked(t *testing.T) {
	t.Parallel()

	content := config.GitignoreContent()
	assert.Contains(t, content, "cache/")
	assert.Contains(t, content, "*.log")
	assert.NotContains(t, content, "config.yaml")
}

func TestEnsureGitignore_ReadOnlyDir(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced here")
	}

	dir := filepath.Join(t.TempDir(), "readonly")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	created, err := config.EnsureGitignore(dir)
	require.Error(t, err)
	assert.False(t, created)
}

func ptr(s string) *string { return &s }
