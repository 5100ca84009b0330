// Package match expands file glob patterns against the local filesystem.
//
// Patterns use forward slashes on every platform and are compiled with
// github.com/gobwas/glob using '/' as the separator, so '*' and '?' stay
// within one path segment while '**' spans any number of segments. A
// '**/' segment also matches zero directories: dist/**/*.zip matches
// dist/a.zip. Character classes ([a-z]) and alternatives ({zip,tar.gz})
// are supported.
//
// Entries whose name starts with a dot are only matched when the pattern
// itself has a segment starting with a dot.
package match

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Lokeren12/action-upload-webdav/internal/errors"
	"github.com/Lokeren12/action-upload-webdav/internal/log"

	"github.com/gobwas/glob"
)

const metaChars = "*?[{\\"

// Matcher resolves glob patterns relative to a working directory
type Matcher struct {
	workDir string
}

// Option configures a Matcher
type Option func(*Matcher)

// WithWorkDir resolves relative patterns against dir instead of the
// process working directory. Returned paths are prefixed with dir.
func WithWorkDir(dir string) Option {
	return func(m *Matcher) { m.workDir = dir }
}

// New creates a Matcher
func New(opts ...Option) *Matcher {
	m := &Matcher{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// match is a path produced by expanding a pattern
type match struct {
	path  string
	isDir bool
}

// UnmatchedPatterns returns, in input order, the patterns that expand to
// nothing at all. A pattern that only matches directories counts as matched.
func (m *Matcher) UnmatchedPatterns(patterns []string) ([]string, error) {
	var unmatched []string
	for _, p := range patterns {
		matches, err := m.expand(p)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			unmatched = append(unmatched, p)
		}
	}
	return unmatched, nil
}

// FilePaths expands every pattern and returns the unique regular files
// found, in first-seen order. Directories are dropped.
func (m *Matcher) FilePaths(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	files := []string{}
	for _, p := range patterns {
		matches, err := m.expand(p)
		if err != nil {
			return nil, err
		}
		for _, mt := range matches {
			if mt.isDir {
				continue
			}
			key := filepath.Clean(mt.path)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			files = append(files, mt.path)
		}
	}
	return files, nil
}

// expand returns every file and directory the pattern matches
func (m *Matcher) expand(pattern string) ([]match, error) {
	normalized := normalize(pattern)
	if normalized == "" {
		return nil, errors.NewPatternError("empty glob pattern", pattern, errors.InvalidPattern, nil)
	}

	base, rest := splitBase(normalized)
	if rest == "" {
		// No wildcards: the pattern names a single path.
		mt, ok := m.statPath(base)
		if !ok {
			return nil, nil
		}
		return []match{mt}, nil
	}

	globs := make([]glob.Glob, 0, 1)
	for _, variant := range globstarVariants(normalized) {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return nil, errors.NewPatternError("invalid glob pattern", pattern, errors.InvalidPattern, err)
		}
		globs = append(globs, g)
	}
	dotAllowed := matchesDotEntries(rest)

	maxDepth := -1
	if !strings.Contains(rest, "**") {
		maxDepth = strings.Count(rest, "/") + 1
	}

	root := m.osPath(base)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, nil
	}

	var matches []match
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			log.Debugf("skipping %s while expanding %q: %v", p, pattern, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}
		if !dotAllowed && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		candidate := rel
		if base != "." {
			candidate = path.Join(base, rel)
		}

		if matchAny(globs, candidate) {
			if mt, ok := m.statPath(candidate); ok {
				matches = append(matches, mt)
			}
		}

		if d.IsDir() && maxDepth > 0 && strings.Count(rel, "/")+1 >= maxDepth {
			return filepath.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		log.Debugf("cannot walk %s for %q: %v", root, pattern, walkErr)
		return nil, nil
	}
	return matches, nil
}

// globstarVariants expands every whole-segment '**/' into the pattern with
// and without it, since gobwas/glob requires '**/' to consume at least one
// directory.
func globstarVariants(pattern string) []string {
	i := strings.Index(pattern, "**/")
	if i < 0 {
		return []string{pattern}
	}
	head, tail := pattern[:i], pattern[i+3:]
	wholeSegment := i == 0 || pattern[i-1] == '/'

	var out []string
	for _, t := range globstarVariants(tail) {
		out = append(out, head+"**/"+t)
		if wholeSegment {
			out = append(out, head+t)
		}
	}
	return out
}

func matchAny(globs []glob.Glob, candidate string) bool {
	for _, g := range globs {
		if g.Match(candidate) {
			return true
		}
	}
	return false
}

// matchesDotEntries reports whether the wildcard part of a pattern names a
// segment starting with a dot, as in dist/.* or **/.env
func matchesDotEntries(rest string) bool {
	for _, seg := range strings.Split(rest, "/") {
		if strings.HasPrefix(seg, ".") && seg != ".." {
			return true
		}
	}
	return false
}

// statPath follows symlinks so a link to a regular file counts as a file
func (m *Matcher) statPath(slashPath string) (match, bool) {
	p := m.osPath(slashPath)
	info, err := os.Stat(p)
	if err != nil {
		return match{}, false
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return match{}, false
	}
	return match{path: p, isDir: info.IsDir()}, true
}

// osPath maps a slash path from pattern space onto the filesystem
func (m *Matcher) osPath(slashPath string) string {
	p := filepath.FromSlash(slashPath)
	if m.workDir == "" || filepath.IsAbs(p) || path.IsAbs(slashPath) {
		return p
	}
	return filepath.Join(m.workDir, p)
}

// normalize converts a pattern to clean slash form
func normalize(pattern string) string {
	p := strings.TrimSpace(pattern)
	if p == "" {
		return ""
	}
	if os.PathSeparator != '/' {
		p = strings.ReplaceAll(p, string(os.PathSeparator), "/")
	}
	return path.Clean(p)
}

// splitBase separates the leading segments without wildcards from the
// rest of the pattern. A pattern without wildcards has an empty rest.
func splitBase(pattern string) (base, rest string) {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if strings.ContainsAny(seg, metaChars) {
			base = strings.Join(segments[:i], "/")
			switch {
			case base == "" && strings.HasPrefix(pattern, "/"):
				base = "/"
			case base == "":
				base = "."
			}
			return base, strings.Join(segments[i:], "/")
		}
	}
	return pattern, ""
}
