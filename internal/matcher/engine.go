package matcher

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/language"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// Options configure an engine
type Options struct {
	Strategy      string
	DisabledRules []string
	MinSeverity   types.Severity
	Logger        *slog.Logger
}

// Engine detects the language of a text and runs the selected strategy on it.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	detector *language.Detector
	registry *StrategyRegistry
	strategy Strategy
	disabled map[string]bool
	minSev   types.Severity
	logger   *slog.Logger
}

// NewEngine creates an engine; an unknown strategy name is an error
func NewEngine(registry *StrategyRegistry, opts Options) (*Engine, error) {
	name := opts.Strategy
	if name == "" {
		name = DefaultStrategy
	}
	strategy := registry.Get(name)
	if strategy == nil {
		return nil, fmt.Errorf("unknown strategy %q (available: %s)", name, strings.Join(registry.Names(), ", "))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	disabled := make(map[string]bool, len(opts.DisabledRules))
	for _, id := range opts.DisabledRules {
		disabled[id] = true
	}

	return &Engine{
		detector: language.NewDetector(),
		registry: registry,
		strategy: strategy,
		disabled: disabled,
		minSev:   opts.MinSeverity,
		logger:   logger,
	}, nil
}

// Strategy returns the name of the selected strategy
func (e *Engine) Strategy() string {
	return e.strategy.Name()
}

// Analyze detects the language and runs the selected strategy
func (e *Engine) Analyze(content, filename string) types.Result {
	return e.AnalyzeAs(content, filename, e.detector.Detect(filename, content))
}

// AnalyzeAs runs the selected strategy with a caller-provided language
func (e *Engine) AnalyzeAs(content, filename string, lang types.Language) types.Result {
	in := Input{
		Content:  content,
		Filename: filename,
		Language: lang,
		Lines:    strings.Split(content, "\n"),
		Keep:     e.keep,
		Logger:   e.logger,
	}

	result := e.strategy.Analyze(in)
	result.Source = types.SourcePattern
	e.logger.Debug("Analyzed content",
		"file", filename,
		"language", lang,
		"strategy", result.Strategy,
		"lines", len(in.Lines),
		"bugs", len(result.Findings.Bugs),
		"security", len(result.Findings.Security),
		"optimizations", len(result.Findings.Optimizations))
	return result
}

func (e *Engine) keep(f types.Finding) bool {
	if f.RuleID != "" && e.disabled[f.RuleID] {
		return false
	}
	if e.minSev != "" && !f.Severity.AtLeast(e.minSev) {
		return false
	}
	return true
}
