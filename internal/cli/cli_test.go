package cli_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/vgrid/internal/cli"
	"github.com/rshade/vgrid/internal/config"
)

// isolate points every config location at temporary directories and resets
// the global config afterwards.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("VGRID_HOME", home)
	t.Setenv("VGRID_PROJECT_DIR", "")
	t.Setenv(config.EnvLogLevel, "error")
	t.Chdir(t.TempDir())
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeRows(t *testing.T, n int) string {
	t.Helper()
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{
			"id":    fmt.Sprintf("r%03d", i),
			"name":  fmt.Sprintf("name-%03d", i),
			"score": float64(i) + 0.5,
		}
	}
	data, err := json.Marshal(rows)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRootCmd(t *testing.T) {
	isolate(t)
	cmd := cli.NewRootCmd("1.2.3")
	assert.Equal(t, "vgrid", cmd.Use)
	assert.Equal(t, "1.2.3", cmd.Version)

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"view", "layout", "config"})
	for _, flag := range []string{"debug", "config", "project-dir"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestConfigInit_Project(t *testing.T) {
	isolate(t)
	project := t.TempDir()

	out, err := execute(t, "--project-dir", project, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at")
	assert.Contains(t, out, "Created .gitignore")

	configPath := filepath.Join(project, ".vgrid", "config.yaml")
	require.FileExists(t, configPath)
	gitignore, err := os.ReadFile(filepath.Join(project, ".vgrid", ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, config.GitignoreContent(), string(gitignore))

	cfg := config.Defaults()
	require.NoError(t, cfg.Load(configPath))
	assert.Equal(t, config.Defaults().Table, cfg.Table)
}

func TestConfigInit_ExistingFile(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	vgridDir := filepath.Join(project, ".vgrid")
	require.NoError(t, os.MkdirAll(vgridDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(vgridDir, "config.yaml"), []byte("version: \"1.0\"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(vgridDir, ".gitignore"), []byte("custom\n"), 0o600))
	t.Setenv("VGRID_PROJECT_DIR", project)

	_, err := execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	config.ResetGlobalConfigForTest()
	out, err := execute(t, "config", "init", "--force")
	require.NoError(t, err)
	assert.NotContains(t, out, "Created .gitignore")

	gitignore, err := os.ReadFile(filepath.Join(vgridDir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(gitignore), "an existing .gitignore is kept")
}

func TestConfigInit_Global(t *testing.T) {
	home := isolate(t)

	out, err := execute(t, "config", "init", "--global")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")
	assert.FileExists(t, filepath.Join(home, "config.yaml"))
}

func TestConfigGet(t *testing.T) {
	isolate(t)

	out, err := execute(t, "config", "get", "table.overscan")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", config.Defaults().Table.Overscan), out)

	config.ResetGlobalConfigForTest()
	out, err = execute(t, "config", "get", "--output", "json")
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	assert.Contains(t, tree, "table")
	assert.Contains(t, tree, "cache")

	config.ResetGlobalConfigForTest()
	_, err = execute(t, "config", "get", "table.nope")
	require.ErrorIs(t, err, config.ErrUnknownKey)
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		isolate(t)
		out, err := execute(t, "config", "validate", "--verbose")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration is valid")
		assert.Contains(t, out, "Table mode: flexible")
	})

	t.Run("invalid project overlay", func(t *testing.T) {
		isolate(t)
		project := t.TempDir()
		vgridDir := filepath.Join(project, ".vgrid")
		require.NoError(t, os.MkdirAll(vgridDir, 0o750))
		overlay := "table:\n  row_height: -1\n"
		require.NoError(t, os.WriteFile(filepath.Join(vgridDir, "config.yaml"), []byte(overlay), 0o600))

		_, err := execute(t, "--project-dir", project, "config", "validate")
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("invalid --config file", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "extra.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: \"3.0\"\n"), 0o600))

		_, err := execute(t, "--config", path, "config", "validate")
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func layoutReport(t *testing.T, args ...string) cli.LayoutReport {
	t.Helper()
	out, err := execute(t, append([]string{"layout"}, args...)...)
	require.NoError(t, err)
	var report cli.LayoutReport
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	return report
}

func paneByKind(t *testing.T, r cli.LayoutReport, kind string) cli.PaneReport {
	t.Helper()
	for _, p := range r.Panes {
		if p.Kind == kind {
			return p
		}
	}
	require.Failf(t, "pane missing", "no %s pane in %+v", kind, r.Panes)
	return cli.PaneReport{}
}

func TestLayout_FrozenColumns(t *testing.T) {
	isolate(t)
	rows := writeRows(t, 100)

	r := layoutReport(t, rows, "--width", "40", "--height", "12", "--frozen-left", "id", "-o", "json")
	assert.Equal(t, "fixed", r.Mode)
	assert.Equal(t, 100, r.RowCount)
	assert.Equal(t, 11.0, r.ViewportHeight)
	assert.True(t, r.Scrollbar.Vertical)
	assert.False(t, r.Scrollbar.Horizontal)

	left := paneByKind(t, r, "left")
	assert.Equal(t, []string{"id"}, left.Columns)
	main := paneByKind(t, r, "main")
	assert.Equal(t, []string{"name", "score"}, main.Columns)
	assert.Equal(t, 0, main.VisibleStart)
	assert.Equal(t, 10, main.VisibleStop)
	assert.Equal(t, main.VisibleStop, left.VisibleStop, "frozen panes render the same rows")

	require.Len(t, r.Columns, 3)
	assert.Equal(t, "left", r.Columns[0].Frozen)
	assert.Equal(t, r.Columns[0].Width, r.Columns[1].Offset)
}

func TestLayout_ScrollTop(t *testing.T) {
	isolate(t)
	rows := writeRows(t, 100)

	r := layoutReport(t, rows, "--width", "40", "--height", "12", "--scroll-top", "50", "-o", "json")
	assert.Equal(t, "flexible", r.Mode)
	assert.Equal(t, 50.0, r.ScrollTop)
	main := paneByKind(t, r, "main")
	assert.Equal(t, 50, main.VisibleStart)
	assert.Equal(t, 60, main.VisibleStop)
	assert.LessOrEqual(t, main.OverscanStart, main.VisibleStart)
	assert.GreaterOrEqual(t, main.OverscanStop, main.VisibleStop)

	total := 0.0
	for _, c := range r.Columns {
		total += c.Width
	}
	assert.InDelta(t, 39.0, total, 1e-9, "flexible columns fill the width beside the vertical scrollbar")
}

func TestLayout_Pagination(t *testing.T) {
	isolate(t)
	rows := writeRows(t, 100)

	r := layoutReport(t, rows, "--page", "2", "--page-size", "10", "--sort", "score:desc", "-o", "json")
	assert.Equal(t, 10, r.RowCount)
	require.NotNil(t, r.Pagination)
	assert.Equal(t, 2, r.Pagination.CurrentPage)
	assert.Equal(t, 10, r.Pagination.TotalPages)
	assert.True(t, r.Pagination.HasNext)

	_, err := execute(t, "layout", rows, "--limit", "5", "--page", "1", "--page-size", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLayout_TableOutput(t *testing.T) {
	isolate(t)
	rows := writeRows(t, 1500)

	out, err := execute(t, "layout", rows)
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE (flexible)")
	assert.Contains(t, out, "Rows: 1,500")
	assert.Contains(t, out, "PANE")
	assert.Contains(t, out, "COLUMN")
	assert.True(t, strings.Contains(out, "main"))
}

func TestLayout_ConfigFileSelectsFormat(t *testing.T) {
	isolate(t)
	rows := writeRows(t, 5)
	extra := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(extra, []byte("output:\n  default_format: json\n"), 0o600))

	out, err := execute(t, "--config", extra, "layout", rows)
	require.NoError(t, err)
	var report cli.LayoutReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.RowCount)
}

func TestLayout_Errors(t *testing.T) {
	isolate(t)
	rows := writeRows(t, 5)

	_, err := execute(t, "layout", rows, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")

	_, err = execute(t, "layout", rows, "--width", "0")
	require.Error(t, err)

	_, err = execute(t, "layout", rows, "--sort", ":desc")
	require.Error(t, err)

	_, err = execute(t, "layout", filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestView_Errors(t *testing.T) {
	isolate(t)
	rows := writeRows(t, 5)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"two sorts without multi-sort", []string{rows, "--sort", "id", "--sort", "name"}, "--multi-sort"},
		{"bad page size", []string{rows, "--page-size", "20000"}, "page size"},
		{"unsupported format", []string{filepath.Join(t.TempDir(), "rows.csv")}, "unsupported dataset format"},
		{"not a terminal", []string{rows}, "interactive terminal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.ResetGlobalConfigForTest()
			_, err := execute(t, append([]string{"view"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
