package matcher

import (
	"testing"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicsStrategy(t *testing.T) {
	engine := newTestEngine(t, Options{Strategy: StrategyHeuristics})
	content := "for i in range(len(xs)):\n    data = list(list(list(xs)))\n    eval(data)\n"
	result := engine.Analyze(content, "a.py")

	assert.Equal(t, StrategyHeuristics, result.Strategy)
	require.NotNil(t, result.Complexity)
	require.NotNil(t, result.Scores)

	var loop, memory *types.Finding
	for i := range result.Findings.Optimizations {
		f := &result.Findings.Optimizations[i]
		switch f.Group {
		case "loop_optimization":
			loop = f
		case "memory":
			memory = f
		}
	}
	require.NotNil(t, loop)
	assert.Equal(t, 1, loop.Line)
	assert.Equal(t, types.SeverityLow, loop.Severity)
	assert.Equal(t, "Potential loop_optimization optimization", loop.Message)
	assert.Equal(t, "for i in range(len(xs)):", loop.CodeSnippet)
	require.NotNil(t, loop.Fix)

	require.NotNil(t, memory)
	assert.Equal(t, 2, memory.Line)
	assert.Equal(t, types.SeverityHigh, memory.Severity)
	assert.Equal(t, "data = list(list(list(xs)))", memory.CodeSnippet)

	require.Len(t, result.Findings.Security, 1)
	assert.Equal(t, "heur-eval-call", result.Findings.Security[0].RuleID)

	messages := make([]string, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		messages = append(messages, s.Message)
	}
	assert.Contains(t, messages, "Review loop_optimization patterns and consider applying suggested optimizations")
	assert.Contains(t, messages, "Review memory patterns and consider applying suggested optimizations")
	assert.Less(t, result.Scores.Performance, 100.0)
}

func TestOccurrenceSeverity(t *testing.T) {
	assert.Equal(t, types.SeverityLow, occurrenceSeverity(1))
	assert.Equal(t, types.SeverityMedium, occurrenceSeverity(2))
	assert.Equal(t, types.SeverityHigh, occurrenceSeverity(3))
}

func TestSecurityStrategy(t *testing.T) {
	engine := newTestEngine(t, Options{Strategy: StrategySecurity})

	content := "import pickle\n\nobj = pickle.loads(data)\nresult = eval(user_input)\nh = hashlib.md5(b'x')\n"
	result := engine.Analyze(content, "svc.py")

	assert.Empty(t, result.Findings.Bugs)
	require.Len(t, result.Findings.Security, 3)
	assert.Equal(t, 3, result.Findings.Security[0].Line)
	assert.Equal(t, "Insecure Deserialization", result.Findings.Security[0].Message)
	assert.Equal(t, 4, result.Findings.Security[1].Line)
	assert.Equal(t, types.SeverityCritical, result.Findings.Security[1].Severity)
	assert.Equal(t, "result = eval(user_input)", result.Findings.Security[1].CodeSnippet)
	assert.Equal(t, 5, result.Findings.Security[2].Line)
	assert.Equal(t, "Weak Cryptography", result.Findings.Security[2].Message)
}

func TestSecurityStrategy_NoFallback(t *testing.T) {
	engine := newTestEngine(t, Options{Strategy: StrategySecurity})
	result := engine.Analyze("<div>eval(x)</div>", "index.html")
	assert.Empty(t, result.Findings.Security)
}

func TestSecurityStrategy_TypeScriptUsesJavaScriptSeeds(t *testing.T) {
	engine := newTestEngine(t, Options{Strategy: StrategySecurity})
	result := engine.Analyze("el.innerHTML = input;\ndocument.write(x);\n", "view.ts")
	require.Len(t, result.Findings.Security, 2)
	assert.Equal(t, "Cross-site Scripting (XSS)", result.Findings.Security[0].Message)
}

func TestStrategyRegistry(t *testing.T) {
	registry := NewStrategyRegistry()
	assert.Nil(t, registry.Get(StrategyCatalog))
	assert.Empty(t, registry.Names())
}
