package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ignoredEntries are the per-user paths under a project .vgrid/ directory.
// config.yaml is shared and stays tracked.
var ignoredEntries = []string{"cache/", "*.log"} //nolint:gochecknoglobals // read-only table

const gitignoreHeader = "# vgrid project-local data (auto-generated)\n"

// GitignoreContent returns the .gitignore written into a new project .vgrid/ directory.
func GitignoreContent() string {
	return gitignoreHeader + strings.Join(ignoredEntries, "\n") + "\n"
}

// EnsureGitignore makes dir/.gitignore ignore the scroll state and log files.
// A missing file is created and the result reports true. An existing file keeps
// its content and only gains the entries it lacks.
func EnsureGitignore(dir string) (bool, error) {
	path := filepath.Join(dir, ".gitignore")

	existing, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			return false, fmt.Errorf("creating directory %s: %w", dir, mkdirErr)
		}
		//nolint:gosec // .gitignore is meant to be world-readable.
		if writeErr := os.WriteFile(path, []byte(GitignoreContent()), 0o644); writeErr != nil {
			return false, fmt.Errorf("writing %s: %w", path, writeErr)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	missing := missingEntries(existing)
	if len(missing) == 0 {
		return false, nil
	}
	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	for _, entry := range missing {
		buf.WriteString(entry + "\n")
	}
	//nolint:gosec // see above
	if writeErr := os.WriteFile(path, buf.Bytes(), 0o644); writeErr != nil {
		return false, fmt.Errorf("updating %s: %w", path, writeErr)
	}
	return false, nil
}

func missingEntries(content []byte) []string {
	present := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		present[strings.TrimSpace(sc.Text())] = true
	}
	var missing []string
	for _, entry := range ignoredEntries {
		if !present[entry] {
			missing = append(missing, entry)
		}
	}
	return missing
}
