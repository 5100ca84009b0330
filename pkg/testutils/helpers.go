package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content.
// Names may contain slash-separated subdirectories.
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// CreateTestDirs creates empty directories below dir
func CreateTestDirs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, filepath.FromSlash(name)), 0755))
	}
}

// CreateBuildTree creates a small build output tree used across tests
func CreateBuildTree(t *testing.T, dir string) {
	t.Helper()
	CreateTestFilesWithContent(t, dir, map[string]string{
		"build/app.bin":       "binary content",
		"dist/release.zip":    "PK\x03\x04zip content",
		"dist/notes.txt":      "release notes",
		"dist/nested/lib.so":  "shared object",
		"docs/readme.md":      "# readme",
		"docs/guide/intro.md": "# intro",
	})
}

// Path joins slash-separated elements onto dir using the OS separator
func Path(dir string, elem string) string {
	return filepath.Join(dir, filepath.FromSlash(elem))
}
