package match

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Lokeren12/action-upload-webdav/internal/errors"
	"github.com/Lokeren12/action-upload-webdav/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatcher(t *testing.T) (*Matcher, string) {
	t.Helper()
	dir := t.TempDir()
	testutils.CreateBuildTree(t, dir)
	return New(WithWorkDir(dir)), dir
}

func TestUnmatchedPatterns(t *testing.T) {
	m, _ := newTestMatcher(t)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "all patterns match",
			patterns: []string{"build/*.bin", "dist/*.zip"},
			want:     nil,
		},
		{
			name:     "one unmatched pattern",
			patterns: []string{"dist/*.zip", "missing/*.txt"},
			want:     []string{"missing/*.txt"},
		},
		{
			name:     "keeps input order",
			patterns: []string{"z/*.none", "build/*.bin", "a/*.none", "*.exe"},
			want:     []string{"z/*.none", "a/*.none", "*.exe"},
		},
		{
			name:     "literal path",
			patterns: []string{"docs/readme.md", "docs/missing.md"},
			want:     []string{"docs/missing.md"},
		},
		{
			name:     "directory-only match counts as matched",
			patterns: []string{"dist/*", "docs"},
			want:     nil,
		},
		{
			name:     "star does not cross directories",
			patterns: []string{"*.md", "docs/*.md"},
			want:     []string{"*.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.UnmatchedPatterns(tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilePaths(t *testing.T) {
	m, dir := newTestMatcher(t)
	p := func(elem string) string { return testutils.Path(dir, elem) }

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "single match",
			patterns: []string{"build/*.bin"},
			want:     []string{p("build/app.bin")},
		},
		{
			name:     "unmatched patterns contribute nothing",
			patterns: []string{"dist/*.zip", "missing/*.txt"},
			want:     []string{p("dist/release.zip")},
		},
		{
			name:     "duplicates across patterns collapse",
			patterns: []string{"dist/*.zip", "dist/release.*", "./dist/release.zip"},
			want:     []string{p("dist/release.zip")},
		},
		{
			name:     "directories are excluded",
			patterns: []string{"dist/*"},
			want:     []string{p("dist/notes.txt"), p("dist/release.zip")},
		},
		{
			name:     "double star crosses directories",
			patterns: []string{"docs/**.md"},
			want:     []string{p("docs/guide/intro.md"), p("docs/readme.md")},
		},
		{
			name:     "alternatives",
			patterns: []string{"{build,dist}/*.{bin,zip}"},
			want:     []string{p("build/app.bin"), p("dist/release.zip")},
		},
		{
			name:     "literal directory yields no files",
			patterns: []string{"docs"},
			want:     []string{},
		},
		{
			name:     "nothing matches",
			patterns: []string{"missing/*.txt"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.FilePaths(tt.patterns)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestGlobstarMatchesZeroDirectories(t *testing.T) {
	m, dir := newTestMatcher(t)
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{
		"top.md":             "# top",
		"dist/sub/extra.zip": "PK\x03\x04",
	})
	p := func(elem string) string { return testutils.Path(dir, elem) }

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{
			name:    "leading globstar includes top level",
			pattern: "**/*.md",
			want:    []string{p("top.md"), p("docs/readme.md"), p("docs/guide/intro.md")},
		},
		{
			name:    "inner globstar includes the directory itself",
			pattern: "dist/**/*.zip",
			want:    []string{p("dist/release.zip"), p("dist/sub/extra.zip")},
		},
		{
			name:    "several globstars",
			pattern: "**/docs/**/*.md",
			want:    []string{p("docs/readme.md"), p("docs/guide/intro.md")},
		},
		{
			name:    "trailing globstar",
			pattern: "dist/nested/**",
			want:    []string{p("dist/nested/lib.so")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.FilePaths([]string{tt.pattern})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)

			unmatched, err := m.UnmatchedPatterns([]string{tt.pattern})
			require.NoError(t, err)
			assert.Empty(t, unmatched)
		})
	}
}

func TestGlobstarOnlyTopLevelFile(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{"main.go": "package main"})
	m := New(WithWorkDir(dir))

	unmatched, err := m.UnmatchedPatterns([]string{"**/*.go"})
	require.NoError(t, err)
	assert.Empty(t, unmatched)

	got, err := m.FilePaths([]string{"**/*.go"})
	require.NoError(t, err)
	assert.Equal(t, []string{testutils.Path(dir, "main.go")}, got)
}

func TestDotEntries(t *testing.T) {
	m, dir := newTestMatcher(t)
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{
		"dist/.DS_Store":   "junk",
		"dist/.gitkeep":    "",
		".cache/stale.bin": "old",
		"build/.env":       "SECRET=1",
		"build/.tmp/x.bin": "tmp",
	})
	p := func(elem string) string { return testutils.Path(dir, elem) }

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{
			name:    "star skips dotfiles",
			pattern: "dist/*",
			want:    []string{p("dist/notes.txt"), p("dist/release.zip")},
		},
		{
			name:    "globstar skips dot directories",
			pattern: "**/*.bin",
			want:    []string{p("build/app.bin")},
		},
		{
			name:    "explicit dot segment",
			pattern: "dist/.*",
			want:    []string{p("dist/.DS_Store"), p("dist/.gitkeep")},
		},
		{
			name:    "dot directory named in the base",
			pattern: ".cache/*.bin",
			want:    []string{p(".cache/stale.bin")},
		},
		{
			name:    "literal dotfile",
			pattern: "build/.env",
			want:    []string{p("build/.env")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.FilePaths([]string{tt.pattern})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}

	unmatched, err := m.UnmatchedPatterns([]string{"build/.tm*/none", "dist/.*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"build/.tm*/none"}, unmatched)
}

func TestGlobstarVariants(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"*.go", []string{"*.go"}},
		{"**", []string{"**"}},
		{"**/*.go", []string{"**/*.go", "*.go"}},
		{"dist/**/*.zip", []string{"dist/**/*.zip", "dist/*.zip"}},
		{"a/**/b/**/c", []string{"a/**/b/**/c", "a/b/**/c", "a/**/b/c", "a/b/c"}},
		{"a**/b", []string{"a**/b"}},
	}
	for _, tt := range tests {
		assert.ElementsMatch(t, tt.want, globstarVariants(tt.pattern), tt.pattern)
	}
}

func TestFilePathsFirstSeenOrder(t *testing.T) {
	m, dir := newTestMatcher(t)

	got, err := m.FilePaths([]string{"dist/*.zip", "build/*.bin", "dist/*.zip"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		testutils.Path(dir, "dist/release.zip"),
		testutils.Path(dir, "build/app.bin"),
	}, got)
}

func TestAbsolutePatterns(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateBuildTree(t, dir)
	m := New()

	pattern := filepath.ToSlash(filepath.Join(dir, "build")) + "/*.bin"
	got, err := m.FilePaths([]string{pattern})
	require.NoError(t, err)
	assert.Equal(t, []string{testutils.Path(dir, "build/app.bin")}, got)

	unmatched, err := m.UnmatchedPatterns([]string{pattern})
	require.NoError(t, err)
	assert.Empty(t, unmatched)
}

func TestRelativeToProcessWorkDir(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateBuildTree(t, dir)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	got, err := New().FilePaths([]string{"build/*.bin"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("build", "app.bin")}, got)
}

func TestSymlinkToFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}
	m, dir := newTestMatcher(t)
	require.NoError(t, os.Symlink(testutils.Path(dir, "build/app.bin"), testutils.Path(dir, "build/link.bin")))

	got, err := m.FilePaths([]string{"build/*.bin"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		testutils.Path(dir, "build/app.bin"),
		testutils.Path(dir, "build/link.bin"),
	}, got)
}

func TestInvalidPatterns(t *testing.T) {
	m, _ := newTestMatcher(t)

	for _, pattern := range []string{"", "   ", "dist/[a-"} {
		_, err := m.UnmatchedPatterns([]string{pattern})
		require.Error(t, err, "pattern %q", pattern)
		assert.True(t, errors.IsInvalidPattern(err))

		_, err = m.FilePaths([]string{pattern})
		assert.True(t, errors.IsInvalidPattern(err))
	}
}

func TestMissingBaseDirectory(t *testing.T) {
	m, _ := newTestMatcher(t)

	got, err := m.FilePaths([]string{"nowhere/deep/**"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSplitBase(t *testing.T) {
	tests := []struct {
		pattern string
		base    string
		rest    string
	}{
		{"build/*.bin", "build", "*.bin"},
		{"*.bin", ".", "*.bin"},
		{"/abs/dir/**", "/abs/dir", "**"},
		{"/*.bin", "/", "*.bin"},
		{"a/b/c.txt", "a/b/c.txt", ""},
		{"a/{b,c}/d", "a", "{b,c}/d"},
	}
	for _, tt := range tests {
		base, rest := splitBase(tt.pattern)
		assert.Equal(t, tt.base, base, tt.pattern)
		assert.Equal(t, tt.rest, rest, tt.pattern)
	}
}
