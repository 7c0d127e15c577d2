package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

var (
	// ErrDuplicatePattern is returned when a pattern appears twice within one (language, category)
	ErrDuplicatePattern = errors.New("duplicate pattern")
	// ErrDuplicateID is returned when a rule id is defined twice by the same source
	ErrDuplicateID = errors.New("duplicate rule id")
)

// RuleFile is the on-disk form of one language's rules
type RuleFile struct {
	Language     types.Language `yaml:"language" json:"language"`
	Bug          []types.Rule   `yaml:"bug,omitempty" json:"bug,omitempty"`
	Security     []types.Rule   `yaml:"security,omitempty" json:"security,omitempty"`
	Optimization []types.Rule   `yaml:"optimization,omitempty" json:"optimization,omitempty"`
	Source       string         `yaml:"-" json:"-"`
}

// byCategory returns the rules declared for a category
func (f *RuleFile) byCategory(c types.Category) []types.Rule {
	switch c {
	case types.CategoryBug:
		return f.Bug
	case types.CategorySecurity:
		return f.Security
	case types.CategoryOptimization:
		return f.Optimization
	}
	return nil
}

// Catalog is the read-only collection of compiled rules keyed by language.
// Once built it is never mutated; Extend returns a new catalog.
type Catalog struct {
	version         string
	defaultLanguage types.Language
	sets            map[types.Language]*types.RuleSet
	byID            map[string]types.CompiledRule
}

// NewCatalog compiles rule files into a catalog. Files are applied in order.
func NewCatalog(version string, files ...RuleFile) (*Catalog, error) {
	c := &Catalog{
		version:         version,
		defaultLanguage: types.DefaultLanguage,
		sets:            make(map[types.Language]*types.RuleSet),
		byID:            make(map[string]types.CompiledRule),
	}
	for _, f := range files {
		if err := c.add(f, false); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Extend returns a copy of the catalog with additional rule files merged in.
// A rule whose id already exists in the base catalog replaces the base definition
// at its original position when language and category match; otherwise the base rule
// is dropped and the override is appended to its own category. Duplicates within the
// additional files are rejected.
func (c *Catalog) Extend(files ...RuleFile) (*Catalog, error) {
	next := &Catalog{
		version:         c.version,
		defaultLanguage: c.defaultLanguage,
		sets:            make(map[types.Language]*types.RuleSet, len(c.sets)),
		byID:            make(map[string]types.CompiledRule, len(c.byID)),
	}
	for lang, set := range c.sets {
		cp := &types.RuleSet{
			Language:     set.Language,
			Bug:          append([]types.CompiledRule(nil), set.Bug...),
			Security:     append([]types.CompiledRule(nil), set.Security...),
			Optimization: append([]types.CompiledRule(nil), set.Optimization...),
		}
		next.sets[lang] = cp
	}
	for id, r := range c.byID {
		next.byID[id] = r
	}

	seen := make(map[string]string)
	for _, f := range files {
		for _, cat := range types.Categories {
			for _, r := range f.byCategory(cat) {
				if prev, ok := seen[r.ID]; ok {
					return nil, fmt.Errorf("%w: %s defined in %s and %s", ErrDuplicateID, r.ID, prev, f.Source)
				}
				seen[r.ID] = f.Source
			}
		}
		if err := next.add(f, true); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// add compiles and appends the rules of a file
func (c *Catalog) add(f RuleFile, override bool) error {
	if f.Language == "" {
		return fmt.Errorf("rule file %s: language is required", f.Source)
	}
	set, ok := c.sets[f.Language]
	if !ok {
		set = &types.RuleSet{Language: f.Language}
		c.sets[f.Language] = set
	}

	for _, cat := range types.Categories {
		for _, r := range f.byCategory(cat) {
			compiled, err := compileRule(r, f.Language, cat)
			if err != nil {
				return fmt.Errorf("invalid rule in %s: %w", f.Source, err)
			}

			replaceAt := -1
			if prev, exists := c.byID[r.ID]; exists {
				if !override {
					return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
				}
				if prev.Language == f.Language && prev.Category == cat {
					replaceAt = indexOf(set.ByCategory(cat), r.ID)
				} else {
					c.remove(prev)
				}
			}

			for _, existing := range set.ByCategory(cat) {
				if existing.ID != r.ID && existing.Pattern == r.Pattern {
					return fmt.Errorf("%w: %q in %s/%s (rules %s and %s)",
						ErrDuplicatePattern, r.Pattern, f.Language, cat, existing.ID, r.ID)
				}
			}

			if replaceAt >= 0 {
				set.ByCategory(cat)[replaceAt] = compiled
			} else {
				set.Append(compiled)
			}
			c.byID[r.ID] = compiled
		}
	}
	return nil
}

func indexOf(list []types.CompiledRule, id string) int {
	for i, r := range list {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// remove drops a rule from its set, keeping the order of the remaining rules
func (c *Catalog) remove(rule types.CompiledRule) {
	set, ok := c.sets[rule.Language]
	if !ok {
		return
	}
	filter := func(list []types.CompiledRule) []types.CompiledRule {
		out := list[:0]
		for _, r := range list {
			if r.ID != rule.ID {
				out = append(out, r)
			}
		}
		return out
	}
	switch rule.Category {
	case types.CategoryBug:
		set.Bug = filter(set.Bug)
	case types.CategorySecurity:
		set.Security = filter(set.Security)
	case types.CategoryOptimization:
		set.Optimization = filter(set.Optimization)
	}
	delete(c.byID, rule.ID)
}

// compileRule validates a rule and binds it to its language and category
func compileRule(r types.Rule, lang types.Language, cat types.Category) (types.CompiledRule, error) {
	if r.ID == "" {
		return types.CompiledRule{}, fmt.Errorf("rule id is required (pattern %q)", r.Pattern)
	}
	if r.Message == "" {
		return types.CompiledRule{}, fmt.Errorf("rule %s: message is required", r.ID)
	}
	if !r.Severity.IsRuleSeverity() {
		return types.CompiledRule{}, fmt.Errorf("rule %s: invalid severity %q", r.ID, r.Severity)
	}
	re, err := r.Compile()
	if err != nil {
		return types.CompiledRule{}, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	return types.CompiledRule{Rule: r, Language: lang, Category: cat, Regex: re}, nil
}

// Version returns the catalog data version
func (c *Catalog) Version() string {
	return c.version
}

// HasRules reports whether the language has its own rules (no fallback needed)
func (c *Catalog) HasRules(lang types.Language) bool {
	set, ok := c.sets[lang]
	return ok && set.Len() > 0
}

// RulesFor returns the rules of a language, or of the default language when it has none
func (c *Catalog) RulesFor(lang types.Language) types.RuleSet {
	if c.HasRules(lang) {
		return *c.sets[lang]
	}
	if set, ok := c.sets[c.defaultLanguage]; ok {
		return *set
	}
	return types.RuleSet{Language: c.defaultLanguage}
}

// Rule looks a rule up by id
func (c *Catalog) Rule(id string) (types.CompiledRule, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Languages returns the languages that have rules, sorted
func (c *Catalog) Languages() []types.Language {
	langs := make([]types.Language, 0, len(c.sets))
	for lang, set := range c.sets {
		if set.Len() > 0 {
			langs = append(langs, lang)
		}
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Len returns the total number of rules
func (c *Catalog) Len() int {
	return len(c.byID)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, built once per process
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadEmbeddedCatalog()
	})
	return defaultCatalog, defaultErr
}
