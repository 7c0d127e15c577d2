package metrics

import (
	"math"
	"regexp"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

var (
	pythonComplexity = regexp.MustCompile(`\b(if|for|while|except|elif|else)\b`)
	braceComplexity  = regexp.MustCompile(`\b(if|for|while|catch|else)\b`)
	appendInLoop     = regexp.MustCompile(`\.append\([^)]*\)\s*in\s+loop`)
)

// complexityPatterns selects the keyword counter per language, python is the default
var complexityPatterns = map[types.Language]*regexp.Regexp{
	types.LanguagePython:     pythonComplexity,
	types.LanguageJavaScript: braceComplexity,
	types.LanguageJava:       braceComplexity,
}

// Findings-based score multipliers
const (
	reliabilityPenalty = 8
	securityPenalty    = 10
	performancePenalty = 5
)

// Compute derives the raw-text metrics of content
func Compute(content string, lang types.Language) types.Metrics {
	lines := strings.Split(content, "\n")
	codeLines := 0
	for _, l := range lines {
		// the comment check runs on the untrimmed line, indented comments still count
		if strings.TrimSpace(l) != "" && !strings.HasPrefix(l, "#") {
			codeLines++
		}
	}

	pattern, ok := complexityPatterns[lang]
	if !ok {
		pattern = pythonComplexity
	}
	complexity := len(pattern.FindAllStringIndex(content, -1))

	maintainability := Clamp(100 - float64(complexity*10) - float64(codeLines)/10)
	performance := Clamp(100 - float64(len(appendInLoop.FindAllStringIndex(content, -1))*10))

	return types.Metrics{
		Complexity:      complexity,
		Maintainability: Round2(maintainability),
		Performance:     Round2(performance),
	}
}

// FromFindings derives reliability, security and performance scores from findings
func FromFindings(f types.Findings) types.Scores {
	return types.Scores{
		Reliability: Clamp(100 - float64(reliabilityPenalty*totalWeight(f.Bugs))),
		Security:    Clamp(100 - float64(securityPenalty*totalWeight(f.Security))),
		Performance: Clamp(100 - float64(performancePenalty*totalWeight(f.Optimizations))),
	}
}

func totalWeight(findings []types.Finding) int {
	total := 0
	for _, f := range findings {
		total += f.Severity.Weight()
	}
	return total
}

// Clamp bounds a score to [0, 100]
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Round2 rounds to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
