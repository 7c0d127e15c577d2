package samples

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/rules"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

func TestFor(t *testing.T) {
	assert.Equal(t, Unavailable, For(types.LanguageRust))
	assert.Equal(t, []types.Language{types.LanguageJava, types.LanguageJavaScript, types.LanguagePython}, Languages())
}

func TestSamplesTriggerRules(t *testing.T) {
	catalog, err := rules.Default()
	require.NoError(t, err)
	registry, err := matcher.DefaultRegistry(catalog, nil)
	require.NoError(t, err)
	engine, err := matcher.NewEngine(registry, matcher.Options{})
	require.NoError(t, err)

	tests := []struct {
		lang          types.Language
		bugs          bool
		security      bool
		optimizations bool
	}{
		{lang: types.LanguagePython, bugs: true, security: true, optimizations: true},
		{lang: types.LanguageJavaScript, bugs: true, security: true, optimizations: true},
		// Runtime.getRuntime().exec is not the Runtime.exec form the rule matches
		{lang: types.LanguageJava, bugs: true, security: false, optimizations: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			result := engine.AnalyzeAs(For(tt.lang), "", tt.lang)
			assert.Equal(t, tt.bugs, len(result.Findings.Bugs) > 0)
			assert.Equal(t, tt.security, len(result.Findings.Security) > 0)
			assert.Equal(t, tt.optimizations, len(result.Findings.Optimizations) > 0)
		})
	}
}
