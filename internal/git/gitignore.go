package git

import (
	"bufio"
	"bytes"
	"log/slog"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// ParsePatterns extracts glob patterns from .gitignore content.
// Comments and blank lines are dropped, trailing slashes removed, negations skipped.
func ParsePatterns(content []byte) []string {
	patterns := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pattern := strings.TrimSuffix(line, "/")
		// negations are not supported by the glob matcher
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		patterns = append(patterns, pattern)
	}
	return patterns
}

// PatternSet holds the patterns of a single ignore file
type PatternSet struct {
	Directory string
	Patterns  []string
}

// IgnoreStack is the stack of pattern sets active for the directory being walked
type IgnoreStack struct {
	stack []PatternSet
}

// Push adds a pattern set; empty sets are ignored and Push reports whether it pushed
func (s *IgnoreStack) Push(directory string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	s.stack = append(s.stack, PatternSet{Directory: directory, Patterns: patterns})
	return true
}

// Pop removes the most recent pattern set
func (s *IgnoreStack) Pop() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Depth returns the number of active pattern sets
func (s *IgnoreStack) Depth() int {
	return len(s.stack)
}

// ShouldExclude matches every active pattern against the relative path and the base name
func (s *IgnoreStack) ShouldExclude(name, relativePath string) bool {
	for _, set := range s.stack {
		for _, pattern := range set.Patterns {
			if ok, err := doublestar.Match(pattern, relativePath); err == nil && ok {
				return true
			}
			if ok, err := doublestar.Match(pattern, name); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// IgnoreLoader pushes .gitignore files on directory entry and pops them on exit.
// It is not safe for concurrent use; each walk owns one loader.
type IgnoreLoader struct {
	provider types.Provider
	logger   *slog.Logger
	stack    IgnoreStack
	pushed   []bool
}

// NewIgnoreLoader creates a loader reading ignore files through the provider
func NewIgnoreLoader(p types.Provider, logger *slog.Logger) *IgnoreLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &IgnoreLoader{provider: p, logger: logger}
}

// Initialize pushes CLI/config excludes and .git/info/exclude as top-level sets
func (l *IgnoreLoader) Initialize(excludes ...[]string) {
	var all []string
	for _, set := range excludes {
		all = append(all, set...)
	}
	if l.stack.Push(".", all) {
		l.logger.Info("Added top-level excludes", "exclude_count", len(all), "patterns", all)
	}

	if data, err := l.provider.ReadFile(".git/info/exclude"); err == nil {
		if patterns := ParsePatterns(data); l.stack.Push(".", patterns) {
			l.logger.Debug("Loaded .git/info/exclude patterns", "count", len(patterns))
		}
	}
}

// Enter loads the .gitignore of dir, if any
func (l *IgnoreLoader) Enter(dir string) {
	file := path.Join(dir, ".gitignore")
	pushed := false
	if data, err := l.provider.ReadFile(file); err == nil {
		patterns := ParsePatterns(data)
		pushed = l.stack.Push(dir, patterns)
		l.logger.Debug("Loaded patterns from file", "path", file, "count", len(patterns))
	}
	l.pushed = append(l.pushed, pushed)
}

// Leave pops what the matching Enter pushed
func (l *IgnoreLoader) Leave() {
	if len(l.pushed) == 0 {
		return
	}
	last := l.pushed[len(l.pushed)-1]
	l.pushed = l.pushed[:len(l.pushed)-1]
	if last {
		l.stack.Pop()
	}
}

// ShouldExclude checks a path against the active stack
func (l *IgnoreLoader) ShouldExclude(name, relativePath string) bool {
	return l.stack.ShouldExclude(name, relativePath)
}

// Depth returns the number of active pattern sets
func (l *IgnoreLoader) Depth() int {
	return l.stack.Depth()
}
