package rules

import (
	"fmt"
	"sync"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/petrarca/code-pattern-analyzer/internal/validation"
	"gopkg.in/yaml.v3"
)

// HeuristicGroup is a weighted family of optimization patterns
type HeuristicGroup struct {
	Name        string               `json:"name"`
	Weight      float64              `json:"weight"`
	Suggestions []string             `json:"suggestions"`
	Rules       []types.CompiledRule `json:"rules"`
}

// Heuristics is the flat cross-language pattern set
type Heuristics struct {
	Bug      []types.CompiledRule `json:"bug"`
	Security []types.CompiledRule `json:"security"`
	Groups   []HeuristicGroup     `json:"groups"`
}

type heuristicPattern struct {
	ID      string     `yaml:"id"`
	Pattern string     `yaml:"pattern"`
	Fix     *types.Fix `yaml:"fix,omitempty"`
}

type heuristicGroupFile struct {
	Name        string             `yaml:"name"`
	Weight      float64            `yaml:"weight"`
	Suggestions []string           `yaml:"suggestions"`
	Patterns    []heuristicPattern `yaml:"patterns"`
}

type heuristicsFile struct {
	Bug      []types.Rule         `yaml:"bug"`
	Security []types.Rule         `yaml:"security"`
	Groups   []heuristicGroupFile `yaml:"groups"`
}

// GroupMessage is the finding message of a group pattern match
func GroupMessage(group string) string {
	return fmt.Sprintf("Potential %s optimization", group)
}

// ParseHeuristics validates and compiles heuristics content
func ParseHeuristics(content []byte) (*Heuristics, error) {
	if err := validation.ValidateYAML(validation.HeuristicsSchema, content); err != nil {
		return nil, err
	}

	var file heuristicsFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse heuristics: %w", err)
	}

	h := &Heuristics{}
	ids := make(map[string]bool)
	compile := func(r types.Rule, cat types.Category, group string) (types.CompiledRule, error) {
		if ids[r.ID] {
			return types.CompiledRule{}, fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		ids[r.ID] = true
		compiled, err := compileRule(r, "", cat)
		if err != nil {
			return types.CompiledRule{}, err
		}
		compiled.Group = group
		return compiled, nil
	}

	for _, list := range []struct {
		rules  []types.Rule
		cat    types.Category
		target *[]types.CompiledRule
	}{
		{file.Bug, types.CategoryBug, &h.Bug},
		{file.Security, types.CategorySecurity, &h.Security},
	} {
		patterns := make(map[string]bool)
		for _, r := range list.rules {
			if patterns[r.Pattern] {
				return nil, fmt.Errorf("%w: %q in heuristics/%s", ErrDuplicatePattern, r.Pattern, list.cat)
			}
			patterns[r.Pattern] = true
			compiled, err := compile(r, list.cat, "")
			if err != nil {
				return nil, err
			}
			*list.target = append(*list.target, compiled)
		}
	}

	for _, g := range file.Groups {
		group := HeuristicGroup{Name: g.Name, Weight: g.Weight, Suggestions: g.Suggestions}
		patterns := make(map[string]bool)
		for _, p := range g.Patterns {
			if patterns[p.Pattern] {
				return nil, fmt.Errorf("%w: %q in group %s", ErrDuplicatePattern, p.Pattern, g.Name)
			}
			patterns[p.Pattern] = true
			compiled, err := compile(types.Rule{
				ID:       p.ID,
				Pattern:  p.Pattern,
				Message:  GroupMessage(g.Name),
				Severity: types.SeverityLow,
				Fix:      p.Fix,
			}, types.CategoryOptimization, g.Name)
			if err != nil {
				return nil, err
			}
			group.Rules = append(group.Rules, compiled)
		}
		h.Groups = append(h.Groups, group)
	}

	return h, nil
}

// Group returns a group by name
func (h *Heuristics) Group(name string) (HeuristicGroup, bool) {
	for _, g := range h.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return HeuristicGroup{}, false
}

var (
	heuristicsOnce sync.Once
	heuristics     *Heuristics
	heuristicsErr  error
)

// DefaultHeuristics returns the embedded heuristics, built once per process
func DefaultHeuristics() (*Heuristics, error) {
	heuristicsOnce.Do(func() {
		content, err := builtinFS.ReadFile("builtin/heuristics.yaml")
		if err != nil {
			heuristicsErr = fmt.Errorf("failed to read embedded heuristics: %w", err)
			return
		}
		heuristics, heuristicsErr = ParseHeuristics(content)
	})
	return heuristics, heuristicsErr
}
