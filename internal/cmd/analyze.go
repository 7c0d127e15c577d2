package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/advisor"
	"github.com/petrarca/code-pattern-analyzer/internal/history"
	"github.com/petrarca/code-pattern-analyzer/internal/language"
	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/projectctx"
	"github.com/petrarca/code-pattern-analyzer/internal/provider"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/spf13/cobra"
)

var (
	analyzeFormat   string
	analyzeOutput   string
	analyzeLanguage string
	analyzeFilename string
	analyzeUser     string
	analyzeLLM      bool
	analyzeContext  string
	analyzeEngine   engineFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a single source file",
	Long: `Analyze runs the selected strategy over one file (or stdin) and reports
bugs, security risks, optimizations, metrics and suggestions.

Examples:
  pattern-analyzer analyze app.py
  pattern-analyzer analyze --strategy heuristics --format json app.py
  cat snippet.js | pattern-analyzer analyze --filename snippet.js -
  pattern-analyzer analyze --llm --user alice app.py
  pattern-analyzer analyze --context . src/service.py`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	setupOutputFlags(analyzeCmd, &analyzeFormat, &analyzeOutput, settings.OutputFormat)
	addEngineFlags(analyzeCmd, &analyzeEngine)
	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "Language override (skips detection)")
	analyzeCmd.Flags().StringVar(&analyzeFilename, "filename", "", "File name used for language detection when reading stdin")
	analyzeCmd.Flags().StringVarP(&analyzeUser, "user", "u", "", "User id; suggestions already shown to this user in the last 30 days are hidden")
	analyzeCmd.Flags().StringVar(&settings.HistoryDB, "history-db", settings.HistoryDB, "Suggestion history database (default: user cache dir)")
	analyzeCmd.Flags().BoolVar(&analyzeLLM, "llm", false, "Ask the Ollama model first and fall back to the pattern engine")
	analyzeCmd.Flags().StringVar(&settings.OllamaURL, "ollama-url", settings.OllamaURL, "Ollama server URL")
	analyzeCmd.Flags().StringVar(&settings.OllamaModel, "ollama-model", settings.OllamaModel, "Ollama model")
	analyzeCmd.Flags().DurationVar(&settings.OllamaTimeout, "ollama-timeout", settings.OllamaTimeout, "Timeout of the advisory call")
	analyzeCmd.Flags().StringVar(&analyzeContext, "context", "", "Project root; adds dependency and entry point suggestions for the file")
}

// AnalyzeOutput is the result of the analyze command
type AnalyzeOutput struct {
	File        string                  `json:"file" yaml:"file"`
	Result      types.Result            `json:"result" yaml:"result"`
	Suggestions []types.Suggestion      `json:"suggestions" yaml:"suggestions"`
	Context     *projectctx.FileContext `json:"context,omitempty" yaml:"context,omitempty"`
}

func (o *AnalyzeOutput) ToJSON() interface{} {
	return o
}

func (o *AnalyzeOutput) ToText(w io.Writer, s Styles) {
	r := o.Result
	fmt.Fprintf(w, "%s %s\n", s.Header("File:"), s.Path(o.File))
	fmt.Fprintf(w, "Language: %s  Strategy: %s  Source: %s\n", r.Language, r.Strategy, r.Source)

	sections := []struct {
		title    string
		findings []types.Finding
	}{
		{"Bugs", r.Findings.Bugs},
		{"Security", r.Findings.Security},
		{"Optimizations", r.Findings.Optimizations},
	}
	for _, section := range sections {
		fmt.Fprintf(w, "\n%s\n", s.Header(fmt.Sprintf("%s (%d)", section.title, len(section.findings))))
		for _, f := range section.findings {
			fmt.Fprintf(w, "  %s line %d: %s\n", s.Severity(f.Severity), f.Line, f.Message)
			if f.Fix != nil && f.Fix.After != "" {
				fmt.Fprintf(w, "      %s %s\n", s.Dim("fix:"), strings.ReplaceAll(f.Fix.After, "\n", "\n           "))
			}
		}
	}

	fmt.Fprintf(w, "\n%s complexity=%d maintainability=%.2f performance=%.2f\n",
		s.Header("Metrics:"), r.Metrics.Complexity, r.Metrics.Maintainability, r.Metrics.Performance)
	if r.Scores != nil {
		fmt.Fprintf(w, "%s reliability=%.2f security=%.2f performance=%.2f\n",
			s.Header("Scores:"), r.Scores.Reliability, r.Scores.Security, r.Scores.Performance)
	}
	if r.Complexity != nil {
		fmt.Fprintf(w, "%s cyclomatic=%d cognitive=%d maintainability_index=%.2f duplication=%.2f%%\n",
			s.Header("Complexity:"), r.Complexity.Cyclomatic, r.Complexity.Cognitive,
			r.Complexity.MaintainabilityIndex, r.Complexity.DuplicationPct)
	}

	if len(o.Suggestions) > 0 {
		fmt.Fprintf(w, "\n%s\n", s.Header(fmt.Sprintf("Suggestions (%d)", len(o.Suggestions))))
		for _, sg := range o.Suggestions {
			line := ""
			if sg.Line > 0 {
				line = fmt.Sprintf(" (line %d)", sg.Line)
			}
			fmt.Fprintf(w, "  %s %s: %s%s\n", s.Severity(sg.Severity), sg.Type, sg.Message, line)
		}
	}
}

// readSource returns the content and display name of the analyze input
func readSource(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), analyzeFilename, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	name := args[0]
	if analyzeFilename != "" {
		name = analyzeFilename
	}
	return string(data), name, nil
}

func runAnalyze(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)

	content, filename, err := readSource(args)
	exitOnError(logger, "Failed to read input", err)

	projectDir := "."
	if analyzeContext != "" {
		projectDir = analyzeContext
	}
	project, err := prepareSettings(cmd, &analyzeEngine, projectDir, logger)
	exitOnError(logger, "Invalid configuration", err)

	engine, _, err := buildEngine(project, &analyzeEngine, logger)
	exitOnError(logger, "Failed to initialize analyzer", err)

	lang := language.Detect(filename, content)
	if analyzeLanguage != "" {
		lang = types.Language(strings.ToLower(analyzeLanguage))
	}

	var result types.Result
	if analyzeLLM {
		result = analyzeWithAdvisor(cmd.Context(), engine, content, filename, lang, logger)
	} else {
		result = engine.AnalyzeAs(content, filename, lang)
	}

	out := &AnalyzeOutput{File: filename, Result: result}
	if out.File == "" {
		out.File = "<stdin>"
	}
	out.Suggestions = append(types.SuggestionsFromFindings(result.Findings), result.Suggestions...)

	if analyzeContext != "" && filename != "" {
		fc, err := fileContext(analyzeContext, filename)
		if err != nil {
			logger.Warn("Project context unavailable", "root", analyzeContext, "error", err)
		} else {
			out.Context = fc
			out.Suggestions = append(out.Suggestions, fc.Suggestions()...)
		}
	}

	if analyzeUser != "" {
		store, closeStore := openHistory(logger)
		fresh, err := history.Record(store, analyzeUser, out.Suggestions)
		closeStore()
		exitOnError(logger, "Failed to update suggestion history", err)
		logger.Debug("Filtered suggestions", "user", analyzeUser, "before", len(out.Suggestions), "after", len(fresh))
		out.Suggestions = fresh
	}
	if out.Suggestions == nil {
		out.Suggestions = []types.Suggestion{}
	}

	if analyzeOutput == "-" {
		analyzeOutput = ""
	}
	exitOnError(logger, "Failed to write output", OutputToFile(out, analyzeFormat, analyzeOutput))
}

func analyzeWithAdvisor(ctx context.Context, engine *matcher.Engine, content, filename string, lang types.Language, logger *slog.Logger) types.Result {
	if ctx == nil {
		ctx = context.Background()
	}
	generator, err := advisor.NewOllamaGenerator(settings.OllamaURL, settings.OllamaModel, settings.OllamaTimeout)
	if err != nil {
		logger.Warn("Advisory service misconfigured, using pattern engine", "error", err)
		return engine.AnalyzeAs(content, filename, lang)
	}
	a := advisor.New(generator, advisor.Options{Timeout: settings.OllamaTimeout, Logger: logger})
	return a.AnalyzeAsWithFallback(ctx, engine, content, filename, lang)
}

// fileContext resolves a file against the project rooted at root
func fileContext(root, filename string) (*projectctx.FileContext, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absFile, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(absRoot, absFile)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%s is outside of %s", filename, root)
	}
	analyzer := projectctx.NewAnalyzer(provider.NewFSProvider(absRoot), slog.Default())
	return analyzer.Context(filepath.ToSlash(rel))
}
