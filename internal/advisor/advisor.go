// Package advisor integrates an optional LLM review service as an alternate
// source of findings, falling back to the pattern engine whenever the model
// is unavailable or its output cannot be used.
package advisor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/petrarca/code-pattern-analyzer/internal/language"
	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// Options configure an advisor
type Options struct {
	Timeout         time.Duration
	MaxPromptLength int
	Logger          *slog.Logger
}

// Advisor asks a generator to review code
type Advisor struct {
	generator Generator
	timeout   time.Duration
	maxPrompt int
	logger    *slog.Logger
}

// Response is the outcome of one advisory call
type Response struct {
	Result types.Result `json:"result"`
	Usable bool         `json:"usable"`
	Raw    string       `json:"-"`
}

// New creates an advisor around a generator
func New(g Generator, opts Options) *Advisor {
	a := &Advisor{
		generator: g,
		timeout:   opts.Timeout,
		maxPrompt: opts.MaxPromptLength,
		logger:    opts.Logger,
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	if a.maxPrompt <= 0 {
		a.maxPrompt = DefaultMaxPromptLength
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Analyze sends the code to the generator and repairs its answer.
// Generator failures are returned as errors; unusable output is not an error
// and yields a neutral result with Usable set to false.
func (a *Advisor) Analyze(ctx context.Context, content string, lang types.Language) (Response, error) {
	prompt, truncated := BuildPrompt(content, lang, a.maxPrompt)
	if truncated {
		a.logger.Warn("Prompt truncated", "max_length", a.maxPrompt)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.generator.Generate(ctx, systemMessage, prompt)
	if err != nil {
		return Response{Result: NeutralResult(lang)}, err
	}
	a.logger.Debug("Advisory response received", "chars", len(raw), "elapsed", time.Since(start))

	result, err := ParseResponse(raw, content, lang)
	if errors.Is(err, ErrUnusableResponse) {
		a.logger.Warn("Advisory response not usable", "error", err)
		return Response{Result: result, Usable: false, Raw: raw}, nil
	}

	a.logger.Info("Advisory analysis complete",
		"bugs", len(result.Findings.Bugs),
		"security", len(result.Findings.Security),
		"optimizations", len(result.Findings.Optimizations))
	return Response{Result: result, Usable: true, Raw: raw}, nil
}

// AnalyzeWithFallback prefers the advisory result and falls back to the engine
// on timeout, generator error or unusable output. Result.Source names the producer.
func (a *Advisor) AnalyzeWithFallback(ctx context.Context, engine *matcher.Engine, content, filename string) types.Result {
	return a.AnalyzeAsWithFallback(ctx, engine, content, filename, language.Detect(filename, content))
}

// AnalyzeAsWithFallback is AnalyzeWithFallback with a caller-provided language
func (a *Advisor) AnalyzeAsWithFallback(ctx context.Context, engine *matcher.Engine, content, filename string, lang types.Language) types.Result {
	resp, err := a.Analyze(ctx, content, lang)
	if err == nil && resp.Usable {
		return resp.Result
	}
	if err != nil {
		a.logger.Warn("Advisory analysis failed, using pattern engine", "file", filename, "error", err)
	} else {
		a.logger.Warn("Advisory output unusable, using pattern engine", "file", filename)
	}

	return engine.AnalyzeAs(content, filename, lang)
}
