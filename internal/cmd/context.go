package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/projectctx"
	"github.com/petrarca/code-pattern-analyzer/internal/provider"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/spf13/cobra"
)

var (
	contextFormat string
	contextOutput string
	contextFile   string
)

var contextCmd = &cobra.Command{
	Use:   "context [root]",
	Short: "Show the project import graph, entry points and cycles",
	Long: `Context walks a project, extracts Python, JavaScript, Go and Terraform imports,
resolves them to project files and reports entry points and circular dependencies.
With --file only the view of that file and its suggestions are shown.

Examples:
  pattern-analyzer context .
  pattern-analyzer context --file src/app.py --format json .`,
	Args: cobra.MaximumNArgs(1),
	Run:  runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	setupOutputFlags(contextCmd, &contextFormat, &contextOutput, settings.OutputFormat)
	contextCmd.Flags().StringVar(&contextFile, "file", "", "File (relative to root) to describe")
}

// StructureOutput is the project-wide context view
type StructureOutput struct {
	Root      string                `json:"root" yaml:"root"`
	Structure *projectctx.Structure `json:"structure" yaml:"structure"`
}

func (o *StructureOutput) ToJSON() interface{} {
	return o
}

func (o *StructureOutput) ToText(w io.Writer, s Styles) {
	st := o.Structure
	fmt.Fprintf(w, "%s %s\n", s.Header("Project:"), s.Path(o.Root))
	if st.GoModule != "" {
		fmt.Fprintf(w, "Go module: %s\n", st.GoModule)
	}
	fmt.Fprintf(w, "Files: %d\n", len(st.Files))

	fmt.Fprintf(w, "\n%s\n", s.Header(fmt.Sprintf("Entry points (%d)", len(st.EntryPoints))))
	for _, ep := range st.EntryPoints {
		fmt.Fprintf(w, "  %s\n", ep)
	}

	fmt.Fprintf(w, "\n%s\n", s.Header("Resolved imports"))
	for _, file := range st.Files {
		resolved := st.Resolved[file]
		if len(resolved) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s -> %s\n", s.Path(file), strings.Join(resolved, ", "))
	}

	if len(st.Cycles) > 0 {
		fmt.Fprintf(w, "\n%s\n", s.Header(fmt.Sprintf("Circular dependencies (%d)", len(st.Cycles))))
		for _, cycle := range st.Cycles {
			fmt.Fprintf(w, "  %s %s\n", s.Severity(types.SeverityHigh), strings.Join(cycle, " -> "))
		}
	}
}

// FileContextOutput is the context of a single file
type FileContextOutput struct {
	Context     *projectctx.FileContext `json:"context" yaml:"context"`
	Suggestions []types.Suggestion      `json:"suggestions" yaml:"suggestions"`
}

func (o *FileContextOutput) ToJSON() interface{} {
	return o
}

func (o *FileContextOutput) ToText(w io.Writer, s Styles) {
	fc := o.Context
	fmt.Fprintf(w, "%s %s (%s)\n", s.Header("File:"), s.Path(fc.FilePath), fc.FileType)
	fmt.Fprintf(w, "Entry point: %t\n", fc.IsEntryPoint)
	fmt.Fprintf(w, "Dependencies (%d): %s\n", len(fc.Dependencies), strings.Join(fc.Dependencies, ", "))
	if len(fc.Resolved) > 0 {
		fmt.Fprintf(w, "Resolved: %s\n", strings.Join(fc.Resolved, ", "))
	}
	if len(fc.DependentFiles) > 0 {
		fmt.Fprintf(w, "Imported by: %s\n", strings.Join(fc.DependentFiles, ", "))
	}
	if len(fc.Cycle) > 0 {
		fmt.Fprintf(w, "Cycle: %s\n", strings.Join(fc.Cycle, " -> "))
	}
	if len(o.Suggestions) > 0 {
		fmt.Fprintf(w, "\n%s\n", s.Header("Suggestions"))
		for _, sg := range o.Suggestions {
			fmt.Fprintf(w, "  %s %s: %s\n", s.Severity(sg.Severity), sg.Type, sg.Message)
		}
	}
}

func runContext(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	exitOnError(logger, "Invalid path", err)
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		logger.Error("Project root is not a directory", "path", absRoot)
		os.Exit(1)
	}

	if contextOutput == "-" {
		contextOutput = ""
	}

	analyzer := projectctx.NewAnalyzer(provider.NewFSProvider(absRoot), logger)
	if contextFile != "" {
		fc, err := analyzer.Context(filepath.ToSlash(contextFile))
		exitOnError(logger, "Failed to analyze file context", err)
		out := &FileContextOutput{Context: fc, Suggestions: fc.Suggestions()}
		exitOnError(logger, "Failed to write output", OutputToFile(out, contextFormat, contextOutput))
		return
	}

	structure, err := analyzer.Structure()
	exitOnError(logger, "Failed to analyze project", err)
	exitOnError(logger, "Failed to write output", OutputToFile(&StructureOutput{Root: absRoot, Structure: structure}, contextFormat, contextOutput))
}
