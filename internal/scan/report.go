package scan

import (
	"sort"

	"github.com/petrarca/code-pattern-analyzer/internal/codestats"
	"github.com/petrarca/code-pattern-analyzer/internal/metadata"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// Issue is one finding flattened with the file it was found in
type Issue struct {
	ID       string         `json:"id" yaml:"id"`
	File     string         `json:"file" yaml:"file"`
	Line     int            `json:"line" yaml:"line"`
	Category types.Category `json:"category" yaml:"category"`
	Severity types.Severity `json:"severity" yaml:"severity"`
	Message  string         `json:"message" yaml:"message"`
	RuleID   string         `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
	Code     string         `json:"code" yaml:"code"`
	Fix      string         `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// FileReport summarizes the analysis of one file
type FileReport struct {
	Path     string         `json:"path" yaml:"path"`
	Language types.Language `json:"language" yaml:"language"`
	Findings int            `json:"findings" yaml:"findings"`
	Metrics  types.Metrics  `json:"metrics" yaml:"metrics"`
}

// SkippedFile is a file the scan did not analyze
type SkippedFile struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report is the outcome of a scan
type Report struct {
	Metadata  *metadata.ScanMetadata `json:"metadata" yaml:"metadata"`
	Issues    []Issue                `json:"issues" yaml:"issues"`
	Files     []FileReport           `json:"files" yaml:"files"`
	Skipped   []SkippedFile          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	CodeStats *codestats.CodeStats   `json:"code_stats,omitempty" yaml:"code_stats,omitempty"`
}

// Severities counts issues per severity
func (r *Report) Severities() map[types.Severity]int {
	counts := make(map[types.Severity]int)
	for _, issue := range r.Issues {
		counts[issue.Severity]++
	}
	return counts
}

// ByFile groups issues by file, keeping the (file, line) order
func (r *Report) ByFile() ([]string, map[string][]Issue) {
	var files []string
	grouped := make(map[string][]Issue)
	for _, issue := range r.Issues {
		if _, ok := grouped[issue.File]; !ok {
			files = append(files, issue.File)
		}
		grouped[issue.File] = append(grouped[issue.File], issue)
	}
	return files, grouped
}

func issuesOf(file string, result types.Result) []Issue {
	all := result.Findings.All()
	issues := make([]Issue, 0, len(all))
	for _, f := range all {
		issue := Issue{
			ID:       IssueID(file, f.RuleID, f.Message, f.Line),
			File:     file,
			Line:     f.Line,
			Category: f.Category,
			Severity: f.Severity,
			Message:  f.Message,
			RuleID:   f.RuleID,
			Code:     f.CodeSnippet,
		}
		if f.Fix != nil {
			issue.Fix = f.Fix.Explanation
		}
		issues = append(issues, issue)
	}
	return issues
}

// sortIssues orders issues by (file, line); ties keep category order
func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		return issues[i].Line < issues[j].Line
	})
}
