package matcher

import (
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/metrics"
	"github.com/petrarca/code-pattern-analyzer/internal/rules"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// Strategy names
const (
	StrategyCatalog    = "catalog"
	StrategyHeuristics = "heuristics"
	StrategySecurity   = "security"
	DefaultStrategy    = StrategyCatalog
)

// CatalogStrategy matches the per-language rule catalog over the whole text
type CatalogStrategy struct {
	catalog *rules.Catalog
}

// NewCatalogStrategy creates a catalog strategy
func NewCatalogStrategy(catalog *rules.Catalog) *CatalogStrategy {
	return &CatalogStrategy{catalog: catalog}
}

func (s *CatalogStrategy) Name() string {
	return StrategyCatalog
}

func (s *CatalogStrategy) Analyze(in Input) types.Result {
	if !s.catalog.HasRules(in.Language) && in.Logger != nil {
		in.Logger.Debug("No specific rules for language, using default rules", "language", in.Language)
	}
	set := s.catalog.RulesFor(in.Language)

	findings := types.NewFindings()
	for _, cat := range types.Categories {
		for _, f := range scanText(in, set.ByCategory(cat)) {
			findings.Add(f)
		}
	}

	scores := metrics.FromFindings(findings)
	return types.Result{
		Language: in.Language,
		Strategy: s.Name(),
		Findings: findings,
		Metrics:  metrics.Compute(in.Content, in.Language),
		Scores:   &scores,
	}
}

// HeuristicsStrategy applies the flat cross-language heuristics line by line
type HeuristicsStrategy struct {
	heuristics *rules.Heuristics
	weights    map[string]float64
}

// NewHeuristicsStrategy creates a heuristics strategy
func NewHeuristicsStrategy(h *rules.Heuristics) *HeuristicsStrategy {
	weights := make(map[string]float64, len(h.Groups))
	for _, g := range h.Groups {
		weights[g.Name] = g.Weight
	}
	return &HeuristicsStrategy{heuristics: h, weights: weights}
}

func (s *HeuristicsStrategy) Name() string {
	return StrategyHeuristics
}

func (s *HeuristicsStrategy) Analyze(in Input) types.Result {
	findings := types.NewFindings()
	for _, f := range scanLines(in, s.heuristics.Bug) {
		findings.Add(f)
	}
	for _, f := range scanLines(in, s.heuristics.Security) {
		findings.Add(f)
	}

	var groups []string
	for i, l := range in.Lines {
		line := strings.TrimSpace(l)
		for _, g := range s.heuristics.Groups {
			for _, rule := range g.Rules {
				occurrences := len(rule.Regex.FindAllStringIndex(line, -1))
				if occurrences == 0 {
					continue
				}
				f := newFinding(rule, i+1, line)
				f.Severity = occurrenceSeverity(occurrences)
				if !in.keep(f) {
					continue
				}
				findings.Add(f)
				groups = append(groups, g.Name)
			}
		}
	}

	scores := metrics.FromFindings(findings)
	scores.Performance = metrics.WeightedPerformance(findings.Optimizations, s.weights)
	report := metrics.Complexity(in.Content)

	return types.Result{
		Language:    in.Language,
		Strategy:    s.Name(),
		Findings:    findings,
		Metrics:     metrics.Compute(in.Content, in.Language),
		Scores:      &scores,
		Complexity:  &report,
		Suggestions: metrics.GeneralSuggestions(report, groups),
	}
}

// occurrenceSeverity ranks a heuristic match by how often it occurs on its line
func occurrenceSeverity(n int) types.Severity {
	switch {
	case n > 2:
		return types.SeverityHigh
	case n > 1:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// SecurityStrategy runs seed-derived security rules line by line
type SecurityStrategy struct {
	catalog *rules.Catalog
}

// NewSecurityStrategy creates a security strategy over a seed-derived catalog
func NewSecurityStrategy(catalog *rules.Catalog) *SecurityStrategy {
	return &SecurityStrategy{catalog: catalog}
}

func (s *SecurityStrategy) Name() string {
	return StrategySecurity
}

func (s *SecurityStrategy) Analyze(in Input) types.Result {
	findings := types.NewFindings()
	// no fallback: languages without seed rules yield no findings
	if s.catalog.HasRules(in.Language) {
		set := s.catalog.RulesFor(in.Language)
		findings.Security = append(findings.Security, scanLines(in, set.Security)...)
	}

	scores := metrics.FromFindings(findings)
	return types.Result{
		Language: in.Language,
		Strategy: s.Name(),
		Findings: findings,
		Metrics:  metrics.Compute(in.Content, in.Language),
		Scores:   &scores,
	}
}

// DefaultRegistry registers the three built-in strategies.
// A nil seed catalog selects the embedded seed file.
func DefaultRegistry(catalog *rules.Catalog, seeds rules.SeedCatalog) (*StrategyRegistry, error) {
	h, err := rules.DefaultHeuristics()
	if err != nil {
		return nil, err
	}
	if seeds == nil {
		seeds, err = rules.DefaultSeedCatalog()
		if err != nil {
			return nil, err
		}
	}
	security, err := rules.NewSecurityCatalog(seeds)
	if err != nil {
		return nil, err
	}

	registry := NewStrategyRegistry()
	registry.Register(NewCatalogStrategy(catalog))
	registry.Register(NewHeuristicsStrategy(h))
	registry.Register(NewSecurityStrategy(security))
	return registry, nil
}
