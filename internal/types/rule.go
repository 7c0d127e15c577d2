package types

import (
	"fmt"
	"regexp"
)

// Fix is the optional before/after suggestion attached to a rule
type Fix struct {
	Before      string `yaml:"before" json:"before"`
	After       string `yaml:"after" json:"after"`
	Explanation string `yaml:"explanation" json:"explanation"`
}

// Rule represents a single pattern detection rule
type Rule struct {
	ID       string   `yaml:"id" json:"id"`
	Pattern  string   `yaml:"pattern" json:"pattern"`
	Message  string   `yaml:"message" json:"message"`
	Severity Severity `yaml:"severity" json:"severity"`
	Fix      *Fix     `yaml:"fix,omitempty" json:"fix,omitempty"`
}

// CompiledRule is a rule bound to its (language, category) with a pre-compiled pattern
type CompiledRule struct {
	Rule
	Language Language       `json:"language"`
	Category Category       `json:"category"`
	Group    string         `json:"group,omitempty"` // heuristic group, empty for catalog rules
	Regex    *regexp.Regexp `json:"-"`
}

// Compile compiles the rule pattern in multiline mode so ^ and $ refer to line boundaries
func (r *Rule) Compile() (*regexp.Regexp, error) {
	if r.Pattern == "" {
		return nil, fmt.Errorf("rule %s: pattern is required", r.ID)
	}
	re, err := regexp.Compile("(?m)" + r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", r.Pattern, err)
	}
	return re, nil
}

// RuleSet holds the ordered rules of one language, grouped by category
type RuleSet struct {
	Language     Language       `json:"language"`
	Bug          []CompiledRule `json:"bug"`
	Security     []CompiledRule `json:"security"`
	Optimization []CompiledRule `json:"optimization"`
}

// ByCategory returns the ordered rules of a category
func (rs RuleSet) ByCategory(c Category) []CompiledRule {
	switch c {
	case CategoryBug:
		return rs.Bug
	case CategorySecurity:
		return rs.Security
	case CategoryOptimization:
		return rs.Optimization
	}
	return nil
}

// Append adds a rule to the category list
func (rs *RuleSet) Append(rule CompiledRule) {
	switch rule.Category {
	case CategoryBug:
		rs.Bug = append(rs.Bug, rule)
	case CategorySecurity:
		rs.Security = append(rs.Security, rule)
	case CategoryOptimization:
		rs.Optimization = append(rs.Optimization, rule)
	}
}

// Len returns the total number of rules
func (rs RuleSet) Len() int {
	return len(rs.Bug) + len(rs.Security) + len(rs.Optimization)
}
