package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleSetOf(rules ...CompiledRule) RuleSet {
	set := RuleSet{Language: LanguagePython}
	for _, r := range rules {
		set.Append(r)
	}
	return set
}

func TestRuleSet_ReturnedByValue(t *testing.T) {
	bug := CompiledRule{Rule: Rule{ID: "b"}, Category: CategoryBug}
	opt := CompiledRule{Rule: Rule{ID: "o"}, Category: CategoryOptimization}

	assert.Equal(t, 2, ruleSetOf(bug, opt).Len())
	assert.Equal(t, 0, ruleSetOf().Len())
	require.Len(t, ruleSetOf(bug, opt).ByCategory(CategoryOptimization), 1)
	assert.Equal(t, "o", ruleSetOf(bug, opt).ByCategory(CategoryOptimization)[0].ID)
	assert.Empty(t, ruleSetOf(bug).ByCategory(CategorySecurity))
}

func TestRule_Compile(t *testing.T) {
	re, err := (&Rule{ID: "x", Pattern: `^\s*print\(`}).Compile()
	require.NoError(t, err)
	assert.True(t, re.MatchString("a = 1\n  print(a)"))

	_, err = (&Rule{ID: "empty"}).Compile()
	assert.Error(t, err)

	_, err = (&Rule{ID: "bad", Pattern: `(`}).Compile()
	assert.Error(t, err)
}
