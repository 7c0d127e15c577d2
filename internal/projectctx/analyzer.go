package projectctx

import (
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/go-enry/go-enry/v2"

	"github.com/petrarca/code-pattern-analyzer/internal/provider"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// MaxDependencies is the dependency count above which a file is flagged
const MaxDependencies = 10

// Suggestion types produced by the analyzer
const (
	SuggestionEntryPoint   = "entry_point"
	SuggestionDependencies = "dependencies"
	SuggestionCircular     = "circular_dependency"
)

const (
	entryPointMessage   = "This is an entry point file. Consider adding proper error handling and logging."
	dependenciesMessage = "High number of dependencies. Consider modularizing the code."
	circularMessage     = "Potential circular dependency detected."
)

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

var entryPointNames = map[string]bool{
	"main.py":   true,
	"index.js":  true,
	"app.py":    true,
	"server.py": true,
}

var entryPointContent = regexp.MustCompile(`(?m)if\s+__name__\s*==\s*['"]__main__['"]|^func\s+main\s*\(\s*\)|static\s+void\s+main\s*\(`)

// Structure is the project-wide view built from one walk
type Structure struct {
	Files        []string            `json:"files"`
	Dependencies map[string][]string `json:"dependencies"`
	Resolved     map[string][]string `json:"resolved"`
	EntryPoints  []string            `json:"entry_points"`
	Cycles       [][]string          `json:"cycles,omitempty"`
	GoModule     string              `json:"go_module,omitempty"`

	graph *importGraph
}

// FileContext describes one file within the project structure
type FileContext struct {
	FilePath       string   `json:"file_path"`
	FileType       string   `json:"file_type"`
	Dependencies   []string `json:"dependencies"`
	Resolved       []string `json:"resolved,omitempty"`
	DependentFiles []string `json:"dependent_files,omitempty"`
	IsEntryPoint   bool     `json:"is_entry_point"`
	Cycle          []string `json:"cycle,omitempty"`
}

// Analyzer derives project-level suggestions for individual files
type Analyzer struct {
	provider types.Provider
	logger   *slog.Logger
}

// NewAnalyzer creates an analyzer over a provider rooted at the project root
func NewAnalyzer(p types.Provider, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{provider: p, logger: logger}
}

// Structure walks the project once and builds its import graph
func (a *Analyzer) Structure() (*Structure, error) {
	var files []string
	err := provider.Walk(a.provider, ".", func(f types.File) error {
		if f.IsDir() {
			if skipDirs[f.Name] || enry.IsVendor(f.Path+"/") {
				return provider.SkipDir
			}
			return nil
		}
		if kindOf(f.Path) != kindUnknown {
			files = append(files, f.Path)
		}
		return nil
	}, func(dir string, err error) {
		a.logger.Warn("Failed to list directory", "dir", dir, "error", err)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk project: %w", err)
	}
	sort.Strings(files)

	s := &Structure{
		Files:        files,
		Dependencies: make(map[string][]string, len(files)),
		Resolved:     make(map[string][]string, len(files)),
		EntryPoints:  []string{},
		GoModule:     a.goModulePath(),
		graph:        newImportGraph(),
	}

	r := newResolver(files, s.GoModule)
	for _, f := range files {
		content, err := a.provider.Open(f)
		if err != nil {
			a.logger.Warn("Failed to read file", "file", f, "error", err)
			continue
		}
		s.add(r, f, content)
	}
	s.Cycles = findCycles(s.graph)
	return s, nil
}

func (s *Structure) add(r *resolver, filePath, content string) {
	deps := dedupe(extractImports(filePath, content))
	s.Dependencies[filePath] = deps

	var resolved []string
	seen := make(map[string]bool)
	for _, dep := range deps {
		for _, target := range r.resolve(filePath, dep) {
			if !seen[target] {
				seen[target] = true
				resolved = append(resolved, target)
				s.graph.addEdge(filePath, target)
			}
		}
	}
	sort.Strings(resolved)
	s.Resolved[filePath] = resolved

	if isEntryPoint(filePath, content) {
		s.EntryPoints = append(s.EntryPoints, filePath)
	}
}

func (a *Analyzer) goModulePath() string {
	data, err := a.provider.ReadFile("go.mod")
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

// Context returns the view of a single file.
// A file outside the walked set is analyzed standalone.
func (a *Analyzer) Context(filePath string) (*FileContext, error) {
	s, err := a.Structure()
	if err != nil {
		return nil, err
	}
	return a.contextIn(s, normalize(filePath))
}

func (a *Analyzer) contextIn(s *Structure, filePath string) (*FileContext, error) {
	fc := &FileContext{
		FilePath: filePath,
		FileType: strings.TrimPrefix(path.Ext(filePath), "."),
	}

	deps, known := s.Dependencies[filePath]
	if !known {
		content, err := a.provider.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
		}
		fc.Dependencies = dedupe(extractImports(filePath, content))
		fc.IsEntryPoint = isEntryPoint(filePath, content)
		return fc, nil
	}

	fc.Dependencies = deps
	fc.Resolved = s.Resolved[filePath]
	fc.DependentFiles = sortedKeys(s.graph.reverse[filePath])
	for _, ep := range s.EntryPoints {
		if ep == filePath {
			fc.IsEntryPoint = true
			break
		}
	}
	for _, cycle := range s.Cycles {
		for _, member := range cycle {
			if member == filePath {
				fc.Cycle = cycle
			}
		}
	}
	return fc, nil
}

// Suggest returns the project-level suggestions for a file
func (a *Analyzer) Suggest(filePath string) ([]types.Suggestion, error) {
	fc, err := a.Context(filePath)
	if err != nil {
		return nil, err
	}
	return fc.Suggestions(), nil
}

// Suggestions derives the suggestions implied by a file context
func (fc *FileContext) Suggestions() []types.Suggestion {
	suggestions := []types.Suggestion{}
	if fc.IsEntryPoint {
		suggestions = append(suggestions, types.Suggestion{
			Type:     SuggestionEntryPoint,
			Message:  entryPointMessage,
			Severity: types.SeverityInfo,
		})
	}
	if len(fc.Dependencies) > MaxDependencies {
		suggestions = append(suggestions, types.Suggestion{
			Type:     SuggestionDependencies,
			Message:  dependenciesMessage,
			Severity: types.SeverityLow,
		})
	}
	if len(fc.Cycle) > 0 {
		suggestions = append(suggestions, types.Suggestion{
			Type:     SuggestionCircular,
			Message:  circularMessage,
			Severity: types.SeverityHigh,
		})
	}
	return suggestions
}

func isEntryPoint(filePath, content string) bool {
	base := path.Base(filePath)
	if entryPointNames[base] {
		return true
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	switch {
	case strings.HasPrefix(base, "run"),
		strings.HasSuffix(base, "_main.py"),
		stem == "main", stem == "app", stem == "server":
		return true
	}
	return entryPointContent.MatchString(content)
}

func normalize(filePath string) string {
	p := path.Clean(strings.ReplaceAll(filePath, "\\", "/"))
	return strings.TrimPrefix(p, "./")
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
