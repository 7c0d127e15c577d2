package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/petrarca/code-pattern-analyzer/internal/util"
)

// Settings holds all analyzer configuration
type Settings struct {
	// Output settings
	OutputFile   string
	OutputFormat string
	PrettyPrint  bool

	// Analysis behavior
	Strategy        string
	SeedCatalog     string // Optional: seed catalog file for the security strategy
	RulesDir        string // Optional: directory of extra rule files
	MinSeverity     types.Severity
	ExcludePatterns []string
	AllFiles        bool
	Workers         int
	Verbose         bool

	// Advisory
	OllamaURL     string
	OllamaModel   string
	OllamaTimeout time.Duration

	// Suggestion history
	HistoryDB string // Empty = history.db in the user cache dir

	// Logging
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	LogFile   string // Optional: write logs to file instead of stderr
}

// DefaultSettings returns default configuration
func DefaultSettings() *Settings {
	return &Settings{
		OutputFile:      "", // Empty = stdout
		OutputFormat:    "text",
		PrettyPrint:     true,
		Strategy:        "catalog",
		ExcludePatterns: []string{},
		Workers:         4,
		OllamaURL:       "http://localhost:11434",
		OllamaModel:     "codellama:7b",
		OllamaTimeout:   120 * time.Second,
		LogLevel:        slog.LevelError,
		LogFormat:       "text",
	}
}

// LoadSettings creates settings from defaults and applies environment variable overrides
func LoadSettings() *Settings {
	settings := DefaultSettings()

	if outputFile := os.Getenv("PATTERN_ANALYZER_OUTPUT"); outputFile != "" {
		settings.OutputFile = outputFile
	}

	if format := os.Getenv("PATTERN_ANALYZER_FORMAT"); format != "" {
		settings.OutputFormat = util.NormalizeFormat(format)
	}

	if pretty := os.Getenv("PATTERN_ANALYZER_PRETTY"); pretty != "" {
		settings.PrettyPrint = strings.ToLower(pretty) == "true"
	}

	if excludePatterns := os.Getenv("PATTERN_ANALYZER_EXCLUDE_DIRS"); excludePatterns != "" {
		settings.ExcludePatterns = splitList(excludePatterns)
	}

	if strategy := os.Getenv("PATTERN_ANALYZER_STRATEGY"); strategy != "" {
		settings.Strategy = strategy
	}

	if seeds := os.Getenv("PATTERN_ANALYZER_SEEDS"); seeds != "" {
		settings.SeedCatalog = seeds
	}

	if rulesDir := os.Getenv("PATTERN_ANALYZER_RULES_DIR"); rulesDir != "" {
		settings.RulesDir = rulesDir
	}

	if minSeverity := os.Getenv("PATTERN_ANALYZER_MIN_SEVERITY"); minSeverity != "" {
		if severity, err := types.ParseSeverity(minSeverity); err == nil && severity.IsRuleSeverity() {
			settings.MinSeverity = severity
		}
	}

	if allFiles := os.Getenv("PATTERN_ANALYZER_ALL_FILES"); allFiles != "" {
		settings.AllFiles = strings.ToLower(allFiles) == "true"
	}

	if workers := os.Getenv("PATTERN_ANALYZER_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			settings.Workers = n
		}
	}

	if verbose := os.Getenv("PATTERN_ANALYZER_VERBOSE"); verbose != "" {
		settings.Verbose = strings.ToLower(verbose) == "true"
	}

	// Advisory settings
	if url := os.Getenv("PATTERN_ANALYZER_OLLAMA_URL"); url != "" {
		settings.OllamaURL = url
	}

	if model := os.Getenv("PATTERN_ANALYZER_OLLAMA_MODEL"); model != "" {
		settings.OllamaModel = model
	}

	if timeout := os.Getenv("PATTERN_ANALYZER_OLLAMA_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			settings.OllamaTimeout = d
		}
	}

	if historyDB := os.Getenv("PATTERN_ANALYZER_HISTORY_DB"); historyDB != "" {
		settings.HistoryDB = historyDB
	}

	// Logging settings
	if logLevel := os.Getenv("PATTERN_ANALYZER_LOG_LEVEL"); logLevel != "" {
		if level, err := parseLogLevel(logLevel); err == nil {
			settings.LogLevel = level
		}
	}

	if logFormat := os.Getenv("PATTERN_ANALYZER_LOG_FORMAT"); logFormat != "" {
		settings.LogFormat = logFormat
	}

	if logFile := os.Getenv("PATTERN_ANALYZER_LOG_FILE"); logFile != "" {
		settings.LogFile = logFile
	}

	return settings
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// ParseLogLevel converts a string log level to slog.Level
func ParseLogLevel(level string) (slog.Level, error) {
	return parseLogLevel(level)
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "fatal":
		return slog.LevelError, nil // slog doesn't have fatal, use error
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// ConfigureLogger sets up the logger based on settings
func (s *Settings) ConfigureLogger() *slog.Logger {
	var handler slog.Handler

	var output io.Writer = os.Stderr
	if s.LogFile != "" {
		file, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			// Fallback to stderr if file can't be opened
			fmt.Fprintf(os.Stderr, "Warning: Cannot open log file %s: %v\n", s.LogFile, err)
		} else {
			output = file
		}
	}

	opts := &slog.HandlerOptions{
		Level: s.LogLevel,
	}

	if s.LogFormat == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

// ApplyProject fills settings the command line left at their defaults from the project file
func (s *Settings) ApplyProject(project *ProjectConfig, explicit func(name string) bool) {
	if project == nil {
		return
	}
	if project.Strategy != "" && !explicit("strategy") {
		s.Strategy = project.Strategy
	}
	if project.MinSeverity != "" && !explicit("min-severity") {
		s.MinSeverity = project.MinSeverity
	}
	if project.RulesDir != "" && !explicit("rules-dir") {
		s.RulesDir = project.RulesDir
	}
	if project.SeedCatalog != "" && !explicit("seeds") {
		s.SeedCatalog = project.SeedCatalog
	}
	s.ExcludePatterns = project.MergeExcludes(s.ExcludePatterns)
}

// Validate checks if settings are valid
func (s *Settings) Validate() error {
	if _, err := util.ParseFormat(s.OutputFormat); err != nil {
		return err
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s", s.LogFormat)
	}
	if s.Strategy == "" {
		return fmt.Errorf("strategy is required")
	}
	if s.MinSeverity != "" && !s.MinSeverity.IsRuleSeverity() {
		return fmt.Errorf("invalid minimum severity: %s", s.MinSeverity)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}
	if s.OllamaTimeout <= 0 {
		return fmt.Errorf("ollama timeout must be positive, got %s", s.OllamaTimeout)
	}
	return nil
}
