package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/progress"
	"github.com/petrarca/code-pattern-analyzer/internal/scan"
	"github.com/spf13/cobra"
)

var (
	scanFormat     string
	scanEngine     engineFlags
	scanNoRepoInfo bool
	scanTimings    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Scan directories and files for potential issues",
	Long: `Scan walks one or more directories (and analyzes individual files) with the
selected strategy. .git, node_modules, vendored directories, .gitignore matches,
binary files and files larger than 1 MiB are skipped. Results are sorted by file
and line.

Examples:
  pattern-analyzer scan /path/to/project
  pattern-analyzer scan --strategy security --seeds snippets.json src lib
  pattern-analyzer scan --all-files --format json -o report.json .
  pattern-analyzer scan --exclude "**/testdata/**" --exclude "*.min.js" .`,
	Run: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	setupOutputFlags(scanCmd, &scanFormat, &settings.OutputFile, settings.OutputFormat)
	scanCmd.Flags().BoolVar(&settings.PrettyPrint, "pretty", settings.PrettyPrint, "Pretty print JSON output")
	addEngineFlags(scanCmd, &scanEngine)

	// Exclude patterns - support multiple flags or comma-separated values
	scanCmd.Flags().StringSliceVar(&settings.ExcludePatterns, "exclude", settings.ExcludePatterns, "Patterns to exclude (supports glob patterns, can be specified multiple times)")
	scanCmd.Flags().BoolVar(&settings.AllFiles, "all-files", settings.AllFiles, "Scan every file with a detectable language, not only source extensions")
	scanCmd.Flags().IntVarP(&settings.Workers, "workers", "w", settings.Workers, "Number of files analyzed in parallel")
	scanCmd.Flags().BoolVarP(&settings.Verbose, "verbose", "v", settings.Verbose, "Show progress on stderr")
	scanCmd.Flags().BoolVar(&scanTimings, "trace-timings", false, "Show timing information for each directory (requires --verbose)")
	scanCmd.Flags().BoolVar(&scanNoRepoInfo, "no-repo-info", false, "Skip git and license inspection")
}

// ScanOutput wraps a scan report for output
type ScanOutput struct {
	Report *scan.Report
}

func (o *ScanOutput) ToJSON() interface{} {
	return o.Report
}

func (o *ScanOutput) ToText(w io.Writer, s Styles) {
	r := o.Report
	if len(r.Issues) == 0 {
		fmt.Fprintln(w, "No potential issues found.")
	} else {
		fmt.Fprintln(w, s.Header(fmt.Sprintf("Found %d potential issue(s):", len(r.Issues))))
		files, grouped := r.ByFile()
		for _, file := range files {
			fmt.Fprintf(w, "\n%s:\n", s.Path(file))
			for i, issue := range grouped[file] {
				fmt.Fprintf(w, "  %d. %s %s at line %d\n", i+1, s.Severity(issue.Severity), issue.Message, issue.Line)
				fmt.Fprintf(w, "     Code: %s\n", codeLine(issue.Code, issue.Line))
				if issue.Fix != "" {
					fmt.Fprintf(w, "     Fix: %s\n", issue.Fix)
				}
			}
		}
	}

	if m := r.Metadata; m != nil {
		fmt.Fprintf(w, "\n%s\n", s.Dim(fmt.Sprintf("Scanned %d file(s), skipped %d, %d language(s), strategy %s, %dms",
			m.FileCount, m.SkippedCount, m.LanguageCount, m.Strategy, m.DurationMs)))
	}
}

// codeLine picks the matched line out of a snippet window
func codeLine(snippet string, line int) string {
	lines := strings.Split(snippet, "\n")
	// windows start three lines before the match, clipped at the top of the file
	idx := 3
	if line <= 3 {
		idx = line - 1
	}
	if idx < 0 || idx >= len(lines) {
		return strings.TrimSpace(snippet)
	}
	return strings.TrimSpace(lines[idx])
}

func runScan(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for i, p := range paths {
		paths[i] = strings.TrimSpace(p)
		if _, err := os.Stat(paths[i]); err != nil {
			logger.Error("Path does not exist", "path", paths[i])
			os.Exit(1)
		}
	}

	// The project file is read from the first directory argument
	projectDir := paths[0]
	if info, err := os.Stat(projectDir); err == nil && !info.IsDir() {
		projectDir = filepath.Dir(projectDir)
	}
	project, err := prepareSettings(cmd, &scanEngine, projectDir, logger)
	exitOnError(logger, "Invalid configuration", err)

	engine, catalog, err := buildEngine(project, &scanEngine, logger)
	exitOnError(logger, "Failed to initialize analyzer", err)

	// Handle special case: -o - means stdout
	if settings.OutputFile == "-" {
		settings.OutputFile = ""
	}

	prog := progress.Disabled()
	if settings.Verbose {
		prog = progress.New(true, progress.NewSimpleHandler(os.Stderr))
		if scanTimings {
			prog.EnableTimings()
		}
	}

	fmt.Fprintf(os.Stderr, "Analyzing %d path(s)...\n", len(paths))
	scanner := scan.New(engine, scan.Options{
		Excludes:       settings.ExcludePatterns,
		AllFiles:       settings.AllFiles,
		Workers:        settings.Workers,
		RepoInfo:       !scanNoRepoInfo,
		Properties:     project.Properties,
		ToolVersion:    Version,
		CatalogVersion: catalog.Version(),
		Logger:         logger,
		Progress:       prog,
	})

	report, err := scanner.Scan(cmd.Context(), paths...)
	exitOnError(logger, "Failed to scan", err)
	fmt.Fprintf(os.Stderr, "Total findings: %d\n", len(report.Issues))

	exitOnError(logger, "Failed to write output", OutputToFile(&ScanOutput{Report: report}, scanFormat, settings.OutputFile))
}
