package matcher

import (
	"sort"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// Number of context lines around a match line
const (
	contextBefore = 3
	contextAfter  = 3
)

// lineAt returns the 1-based line of a byte offset
func lineAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}

// Snippet returns the lines around a 1-based line number joined by newlines
func Snippet(lines []string, line int) string {
	start := max(0, line-contextBefore-1)
	end := min(len(lines), line+contextAfter)
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}

func newFinding(rule types.CompiledRule, line int, snippet string) types.Finding {
	return types.Finding{
		Line:        line,
		Message:     rule.Message,
		Severity:    rule.Severity,
		Category:    rule.Category,
		CodeSnippet: snippet,
		Fix:         rule.Fix,
		RuleID:      rule.ID,
		Group:       rule.Group,
	}
}

// scanText reports every non-overlapping match of every rule over the whole text, in rule order
func scanText(in Input, rules []types.CompiledRule) []types.Finding {
	var findings []types.Finding
	for _, rule := range rules {
		for _, loc := range rule.Regex.FindAllStringIndex(in.Content, -1) {
			line := lineAt(in.Content, loc[0])
			f := newFinding(rule, line, Snippet(in.Lines, line))
			if in.keep(f) {
				findings = append(findings, f)
			}
		}
	}
	return findings
}

// scanLines reports at most one finding per (rule, line), sorted by line.
// The snippet is the trimmed matching line.
func scanLines(in Input, rules []types.CompiledRule) []types.Finding {
	var findings []types.Finding
	for _, rule := range rules {
		for i, l := range in.Lines {
			if !rule.Regex.MatchString(l) {
				continue
			}
			f := newFinding(rule, i+1, strings.TrimSpace(l))
			if in.keep(f) {
				findings = append(findings, f)
			}
		}
	}
	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Line < findings[j].Line })
	return findings
}
