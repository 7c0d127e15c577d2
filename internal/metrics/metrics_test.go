package metrics

import (
	"strings"
	"testing"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		lang     types.Language
		expected types.Metrics
	}{
		{
			name:     "empty content",
			content:  "",
			lang:     types.LanguagePython,
			expected: types.Metrics{Complexity: 0, Maintainability: 100, Performance: 100},
		},
		{
			name:     "python keywords",
			content:  "if x:\n    pass\nelse:\n    pass",
			lang:     types.LanguagePython,
			expected: types.Metrics{Complexity: 2, Maintainability: 79.6, Performance: 100},
		},
		{
			name:     "comment lines are not code",
			content:  "# comment\nx = 1\n",
			lang:     types.LanguagePython,
			expected: types.Metrics{Complexity: 0, Maintainability: 99.9, Performance: 100},
		},
		{
			name:     "javascript counts catch not except",
			content:  "try { f() } catch (e) { } // except",
			lang:     types.LanguageJavaScript,
			expected: types.Metrics{Complexity: 1, Maintainability: 89.9, Performance: 100},
		},
		{
			name:     "unknown language uses python keywords",
			content:  "elif",
			lang:     types.LanguageRust,
			expected: types.Metrics{Complexity: 1, Maintainability: 89.9, Performance: 100},
		},
		{
			name:     "append in loop lowers performance",
			content:  "x.append(1) in loop",
			lang:     types.LanguagePython,
			expected: types.Metrics{Complexity: 0, Maintainability: 99.9, Performance: 90},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compute(tt.content, tt.lang))
		})
	}
}

func TestCompute_Clamped(t *testing.T) {
	content := strings.Repeat("if x:\n", 50)
	m := Compute(content, types.LanguagePython)
	assert.Equal(t, 50, m.Complexity)
	assert.Equal(t, 0.0, m.Maintainability)

	loops := strings.Repeat("a.append(b) in loop\n", 20)
	assert.Equal(t, 0.0, Compute(loops, types.LanguagePython).Performance)
}

func TestFromFindings(t *testing.T) {
	f := types.NewFindings()
	f.Add(types.Finding{Category: types.CategoryBug, Severity: types.SeverityHigh})
	f.Add(types.Finding{Category: types.CategoryBug, Severity: types.SeverityLow})
	f.Add(types.Finding{Category: types.CategorySecurity, Severity: types.SeverityCritical})
	f.Add(types.Finding{Category: types.CategoryOptimization, Severity: types.SeverityMedium})

	scores := FromFindings(f)
	assert.Equal(t, 68.0, scores.Reliability)
	assert.Equal(t, 60.0, scores.Security)
	assert.Equal(t, 90.0, scores.Performance)

	assert.Equal(t, types.Scores{Reliability: 100, Security: 100, Performance: 100}, FromFindings(types.NewFindings()))

	many := types.NewFindings()
	for i := 0; i < 10; i++ {
		many.Add(types.Finding{Category: types.CategorySecurity, Severity: types.SeverityCritical})
	}
	assert.Equal(t, 0.0, FromFindings(many).Security)
}

func TestComplexity(t *testing.T) {
	content := "def f(x):\n    if x:\n        if y:\n            pass\n    for i in x:\n            pass"
	report := Complexity(content)

	// if, if, for + one def + 1
	assert.Equal(t, 5, report.Cyclomatic)
	// no same-line nested if, one loop, two ifs
	assert.Equal(t, 3, report.Cognitive)
	assert.Equal(t, 0.0, report.MaintainabilityIndex)
	// the pass line appears twice in six lines
	assert.InDelta(t, 16.67, report.DuplicationPct, 0.001)
}

func TestComplexity_Documentation(t *testing.T) {
	content := "\"\"\"Module doc.\"\"\"\n# comment\nx = 1\n"
	report := Complexity(content)
	// one comment + one docstring*2 over four lines
	assert.Equal(t, 75.0, report.MaintainabilityIndex)
	assert.Equal(t, 1, report.Cyclomatic)
}

func TestGeneralSuggestions(t *testing.T) {
	report := types.ComplexityReport{Cyclomatic: 11, Cognitive: 16, MaintainabilityIndex: 10}
	suggestions := GeneralSuggestions(report, []string{"memory", "memory", "algorithm"})

	assert.Len(t, suggestions, 5)
	assert.Equal(t, "Consider breaking down complex functions into smaller, more manageable pieces", suggestions[0].Message)
	assert.Equal(t, types.SeverityLow, suggestions[2].Severity)
	assert.Equal(t, "Review memory patterns and consider applying suggested optimizations", suggestions[3].Message)
	assert.Equal(t, "Review algorithm patterns and consider applying suggested optimizations", suggestions[4].Message)

	assert.Empty(t, GeneralSuggestions(types.ComplexityReport{Cyclomatic: 1, MaintainabilityIndex: 80}, nil))
}

func TestWeightedPerformance(t *testing.T) {
	weights := map[string]float64{"loop_optimization": 0.3, "memory": 0.15}
	findings := []types.Finding{
		{Group: "loop_optimization", Severity: types.SeverityHigh},
		{Group: "memory", Severity: types.SeverityLow},
	}
	// (3*0.3 + 1*0.15) * 10 = 10.5
	assert.Equal(t, 89.5, WeightedPerformance(findings, weights))
	assert.Equal(t, 100.0, WeightedPerformance(nil, weights))
}
