// Package scanner discovers the files to index under a project root.
//
// Selection is glob-based: include patterns pick files, exclude patterns and
// the project's .gitignore drop them. Output is sorted, so the same tree
// always yields the same file list in the same order.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultExcludes are dropped from every scan.
var DefaultExcludes = []string{".git/**", ".scipdex_cache/**", "vendor/**"}

// Scanner walks one project root.
type Scanner struct {
	root         string
	includes     []string
	excludes     []string
	useGitignore bool
	gitignore    *ignore.GitIgnore
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithIncludes sets the include globs. Default is every file.
func WithIncludes(patterns ...string) Option {
	return func(s *Scanner) {
		if len(patterns) > 0 {
			s.includes = patterns
		}
	}
}

// WithExcludes appends exclude globs on top of the defaults.
func WithExcludes(patterns ...string) Option {
	return func(s *Scanner) {
		s.excludes = append(s.excludes, patterns...)
	}
}

// WithGitignore toggles .gitignore awareness. On by default.
func WithGitignore(enabled bool) Option {
	return func(s *Scanner) { s.useGitignore = enabled }
}

// New creates a scanner rooted at root. Include and exclude patterns are
// validated up front.
func New(root string, opts ...Option) (*Scanner, error) {
	s := &Scanner{
		root:         root,
		includes:     []string{"**/*"},
		excludes:     append([]string(nil), DefaultExcludes...),
		useGitignore: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, pattern := range append(append([]string(nil), s.includes...), s.excludes...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	if s.useGitignore {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
		if err == nil {
			s.gitignore = gi
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read .gitignore: %w", err)
		}
	}

	return s, nil
}

// Scan returns the selected files as sorted slash-separated paths relative to
// the root.
func (s *Scanner) Scan() ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if s.excluded(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.included(rel) || s.excluded(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.root, err)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Scanner) included(rel string) bool {
	for _, pattern := range s.includes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) excluded(rel string) bool {
	trimmed := strings.TrimSuffix(rel, "/")
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, trimmed); ok {
			return true
		}
		// A directory pattern like ".git/**" also prunes the directory
		// itself.
		if dir, found := strings.CutSuffix(pattern, "/**"); found && trimmed == dir {
			return true
		}
	}
	if s.gitignore != nil && s.gitignore.MatchesPath(rel) {
		return true
	}
	return false
}
