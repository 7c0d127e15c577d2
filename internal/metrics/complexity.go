package metrics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

var (
	controlStructures = regexp.MustCompile(`\b(if|for|while|except|finally|with)\b`)
	functionDefs      = regexp.MustCompile(`\bdef\s+\w+\s*\(`)
	classDefs         = regexp.MustCompile(`\bclass\s+\w+\s*\(`)
	nestedIfs         = regexp.MustCompile(`if\s+.*?if\s+`)
	loopKeywords      = regexp.MustCompile(`\b(for|while)\b`)
	ifKeywords        = regexp.MustCompile(`\bif\b`)
	lineComments      = regexp.MustCompile(`(?m)#.*$`)
	docstrings        = regexp.MustCompile(`(?s)""".*?"""`)
)

// Thresholds for general suggestions
const (
	MaxCyclomatic           = 10
	MaxCognitive            = 15
	MinMaintainabilityIndex = 50
)

func count(re *regexp.Regexp, content string) int {
	return len(re.FindAllStringIndex(content, -1))
}

// Complexity computes the flat cross-language complexity report
func Complexity(content string) types.ComplexityReport {
	cyclomatic := count(controlStructures, content) + count(functionDefs, content) + count(classDefs, content) + 1
	cognitive := count(nestedIfs, content)*2 + count(loopKeywords, content) + count(ifKeywords, content)

	lines := strings.Split(content, "\n")
	loc := len(lines)
	documented := count(lineComments, content) + count(docstrings, content)*2
	index := float64(documented) / float64(max(1, loc)) * 100
	if index > 100 {
		index = 100
	}

	unique := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		unique[l] = struct{}{}
	}
	duplication := float64(len(lines)-len(unique)) / float64(max(1, len(lines))) * 100

	return types.ComplexityReport{
		Cyclomatic:           cyclomatic,
		Cognitive:            cognitive,
		MaintainabilityIndex: Round2(index),
		DuplicationPct:       Round2(duplication),
	}
}

// GeneralSuggestions turns a complexity report and the detected heuristic groups into advice
func GeneralSuggestions(report types.ComplexityReport, groups []string) []types.Suggestion {
	var suggestions []types.Suggestion

	if report.Cyclomatic > MaxCyclomatic {
		suggestions = append(suggestions, types.Suggestion{
			Type:     "complexity",
			Message:  "Consider breaking down complex functions into smaller, more manageable pieces",
			Severity: types.SeverityMedium,
		})
	}
	if report.Cognitive > MaxCognitive {
		suggestions = append(suggestions, types.Suggestion{
			Type:     "complexity",
			Message:  "Reduce nesting levels and simplify control flow",
			Severity: types.SeverityMedium,
		})
	}
	if report.MaintainabilityIndex < MinMaintainabilityIndex {
		suggestions = append(suggestions, types.Suggestion{
			Type:     "maintainability",
			Message:  "Add more documentation and comments to improve code maintainability",
			Severity: types.SeverityLow,
		})
	}

	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if seen[g] {
			continue
		}
		seen[g] = true
		suggestions = append(suggestions, types.Suggestion{
			Type:     "optimization",
			Message:  fmt.Sprintf("Review %s patterns and consider applying suggested optimizations", g),
			Severity: types.SeverityMedium,
		})
	}

	return suggestions
}

// WeightedPerformance scores optimization findings by severity weight times group weight
func WeightedPerformance(findings []types.Finding, groupWeights map[string]float64) float64 {
	if len(findings) == 0 {
		return 100
	}
	total := 0.0
	for _, f := range findings {
		total += float64(f.Severity.Weight()) * groupWeights[f.Group]
	}
	return Round2(Clamp(100 - total*10))
}
