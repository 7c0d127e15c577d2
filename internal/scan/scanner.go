// Package scan runs the matcher engine over directory trees and single files
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-enry/go-enry/v2"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/petrarca/code-pattern-analyzer/internal/codestats"
	"github.com/petrarca/code-pattern-analyzer/internal/git"
	"github.com/petrarca/code-pattern-analyzer/internal/language"
	"github.com/petrarca/code-pattern-analyzer/internal/license"
	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/metadata"
	"github.com/petrarca/code-pattern-analyzer/internal/progress"
	"github.com/petrarca/code-pattern-analyzer/internal/provider"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// MaxFileSize is the default size above which files are skipped
const MaxFileSize int64 = 1024 * 1024

// Skip reasons
const (
	ReasonTooLarge    = "too large"
	ReasonBinary      = "binary"
	ReasonUnreadable  = "unreadable"
	ReasonUnsupported = "unsupported extension"
)

// defaultExtensions are scanned unless all files are requested
var defaultExtensions = map[string]bool{
	".py": true, ".php": true, ".java": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".cpp": true, ".cc": true, ".c": true, ".h": true, ".hpp": true, ".cs": true, ".go": true,
	".kt": true, ".rb": true, ".rs": true, ".swift": true,
}

// skipDirs are never descended into
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Options configure a scan
type Options struct {
	Excludes       []string
	AllFiles       bool
	Workers        int
	MaxFileSize    int64
	RepoInfo       bool // inspect git and license data of the first scanned directory
	Properties     map[string]interface{}
	ToolVersion    string
	CatalogVersion string
	Logger         *slog.Logger
	Progress       *progress.Progress
}

// Scanner analyzes every eligible file below one or more roots
type Scanner struct {
	engine   *matcher.Engine
	opts     Options
	detector *language.Detector
	logger   *slog.Logger
	progress *progress.Progress
}

// New creates a scanner using the given engine
func New(engine *matcher.Engine, opts Options) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = MaxFileSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prog := opts.Progress
	if prog == nil {
		prog = progress.Disabled()
	}
	return &Scanner{
		engine:   engine,
		opts:     opts,
		detector: language.NewDetector(),
		logger:   logger,
		progress: prog,
	}
}

// job is one file selected for analysis
type job struct {
	display  string
	rel      string
	provider types.Provider
	language types.Language
}

type outcome struct {
	result  types.Result
	lang    types.Language
	skipped string
}

// walkState tracks one directory walk
type walkState struct {
	jobs    []job
	skipped []SkippedFile
	dirs    int
}

// Scan analyzes the given paths; directories are walked, files are analyzed directly
func (s *Scanner) Scan(ctx context.Context, paths ...string) (*Report, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths specified for analysis")
	}

	start := time.Now()
	s.progress.ScanStart(paths[0], s.opts.Excludes)
	state := &walkState{}
	firstDir := ""
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}
		if info.IsDir() {
			if firstDir == "" {
				firstDir = p
			}
			s.walk(provider.NewFSProvider(p), p, state)
			continue
		}
		dir, name := filepath.Split(p)
		if dir == "" {
			dir = "."
		}
		lang, _ := s.detector.ByFilename(name)
		state.jobs = append(state.jobs, job{
			display:  p,
			rel:      name,
			provider: provider.NewFSProvider(dir),
			language: lang,
		})
	}

	report, err := s.run(ctx, paths[0], start, state)
	if err != nil {
		return nil, err
	}
	if s.opts.RepoInfo && firstDir != "" {
		report.Metadata.Git = git.Inspect(firstDir)
		report.Metadata.Licenses = license.Detect(firstDir)
	}
	return report, nil
}

// ScanProvider walks the whole tree of a provider; label prefixes reported paths
func (s *Scanner) ScanProvider(ctx context.Context, p types.Provider, label string) (*Report, error) {
	start := time.Now()
	s.progress.ScanStart(label, s.opts.Excludes)
	state := &walkState{}
	s.walk(p, label, state)
	return s.run(ctx, label, start, state)
}

func (s *Scanner) run(ctx context.Context, scanPath string, start time.Time, state *walkState) (*Report, error) {
	meta := metadata.NewScanMetadata(ulid.Make().String(), scanPath)
	meta.ToolVersion = s.opts.ToolVersion
	meta.Strategy = s.engine.Strategy()
	meta.CatalogVersion = s.opts.CatalogVersion
	meta.SetProperties(s.opts.Properties)

	outcomes, stats, err := s.analyze(ctx, state.jobs)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Metadata:  meta,
		Issues:    []Issue{},
		Files:     []FileReport{},
		Skipped:   state.skipped,
		CodeStats: stats.Stats(),
	}
	languages := make(map[types.Language]bool)
	for i, out := range outcomes {
		j := state.jobs[i]
		if out.skipped != "" {
			report.Skipped = append(report.Skipped, SkippedFile{Path: j.display, Reason: out.skipped})
			continue
		}
		languages[out.lang] = true
		report.Files = append(report.Files, FileReport{
			Path:     j.display,
			Language: out.lang,
			Findings: out.result.Findings.Len(),
			Metrics:  out.result.Metrics,
		})
		report.Issues = append(report.Issues, issuesOf(j.display, out.result)...)
	}

	sortIssues(report.Issues)
	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })
	sort.Slice(report.Skipped, func(i, j int) bool { return report.Skipped[i].Path < report.Skipped[j].Path })

	duration := time.Since(start)
	meta.SetDuration(duration)
	meta.SetFileCounts(len(report.Files), len(report.Skipped))
	meta.LanguageCount = len(languages)

	s.progress.ScanComplete(len(report.Files), state.dirs, duration)
	s.logger.Info("Scan completed",
		"path", scanPath,
		"files", len(report.Files),
		"skipped", len(report.Skipped),
		"issues", len(report.Issues),
		"duration", duration)
	return report, nil
}

// analyze runs the engine on every job with a bounded number of workers.
// Outcomes are indexed like jobs so the caller sees a deterministic order.
func (s *Scanner) analyze(ctx context.Context, jobs []job) ([]outcome, *codestats.Collector, error) {
	outcomes := make([]outcome, len(jobs))
	stats := codestats.NewCollector()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i := range jobs {
		j := jobs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.analyzeFile(j, stats)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("scan interrupted: %w", err)
	}
	return outcomes, stats, nil
}

func (s *Scanner) analyzeFile(j job, stats *codestats.Collector) outcome {
	data, err := j.provider.ReadFile(j.rel)
	if err != nil {
		s.logger.Warn("Cannot read file", "path", j.display, "error", err)
		s.progress.Skipped(j.display, ReasonUnreadable)
		return outcome{skipped: ReasonUnreadable}
	}
	if int64(len(data)) > s.opts.MaxFileSize {
		s.progress.Skipped(j.display, ReasonTooLarge)
		return outcome{skipped: ReasonTooLarge}
	}
	if enry.IsBinary(data) {
		s.progress.Skipped(j.display, ReasonBinary)
		return outcome{skipped: ReasonBinary}
	}

	content := string(data)
	lang := j.language
	if lang == "" || lang == types.LanguageUnknown {
		lang = s.detector.Detect(j.rel, content)
	}
	result := s.engine.AnalyzeAs(content, j.display, lang)

	stats.Add(j.display, enry.GetLanguage(path.Base(j.rel), data), data)
	s.progress.FileAnalyzed(j.display, string(lang), result.Findings.Len())
	return outcome{result: result, lang: lang}
}

// walk collects the eligible files below the provider root
func (s *Scanner) walk(p types.Provider, label string, state *walkState) {
	ignore := git.NewIgnoreLoader(p, s.logger)
	ignore.Initialize(s.opts.Excludes)
	s.recurse(p, ignore, label, ".", state)
}

func (s *Scanner) recurse(p types.Provider, ignore *git.IgnoreLoader, label, dir string, state *walkState) {
	s.progress.EnterDirectory(dir)
	defer s.progress.LeaveDirectory(dir)
	state.dirs++

	depth := ignore.Depth()
	ignore.Enter(dir)
	defer ignore.Leave()
	if ignore.Depth() > depth {
		s.progress.GitIgnoreEnter(dir)
	}

	files, err := p.ListDir(dir)
	if err != nil {
		s.logger.Warn("Cannot list directory", "path", dir, "error", err)
		return
	}

	for _, file := range files {
		rel := file.Path
		if rel == "" {
			rel = path.Join(dir, file.Name)
		}
		if ignore.ShouldExclude(file.Name, rel) {
			continue
		}

		if file.IsDir() {
			if s.skipDirectory(file.Name, rel) {
				s.logger.Debug("Skipping directory", "path", rel)
				continue
			}
			s.recurse(p, ignore, label, rel, state)
			continue
		}

		display := displayPath(label, rel)
		lang, ok := s.eligible(file.Name, rel)
		if !ok {
			continue
		}
		if file.Size > s.opts.MaxFileSize {
			state.skipped = append(state.skipped, SkippedFile{Path: display, Reason: ReasonTooLarge})
			s.progress.Skipped(display, ReasonTooLarge)
			continue
		}
		state.jobs = append(state.jobs, job{display: display, rel: rel, provider: p, language: lang})
	}
}

func (s *Scanner) skipDirectory(name, rel string) bool {
	return skipDirs[name] || enry.IsVendor(rel+"/")
}

// eligible reports whether a walked file is analyzed and its extension-derived language
func (s *Scanner) eligible(name, rel string) (types.Language, bool) {
	if !s.opts.AllFiles {
		if !defaultExtensions[strings.ToLower(path.Ext(name))] {
			return "", false
		}
		lang, _ := s.detector.ByFilename(name)
		return lang, true
	}
	if !language.IsAnalyzable(rel) {
		return "", false
	}
	lang, ok := s.detector.ByFilename(name)
	return lang, ok
}

func displayPath(label, rel string) string {
	if label == "" || label == "." {
		return rel
	}
	return filepath.Join(label, filepath.FromSlash(rel))
}
