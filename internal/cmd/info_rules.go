package cmd

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/rules"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	rulesFormat   string
	rulesOutput   string
	rulesLanguage string
	ruleFormat    string
	stratFormat   string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules of the catalog",
	Long:  `List every rule of the embedded catalog (plus --rules-dir) grouped by language and category.`,
	Run:   runRules,
}

var ruleCmd = &cobra.Command{
	Use:   "rule [rule-id]",
	Short: "Show the definition of a rule",
	Args:  cobra.ExactArgs(1),
	Run:   runRule,
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the analysis strategies",
	Run:   runStrategies,
}

func init() {
	setupOutputFlags(rulesCmd, &rulesFormat, &rulesOutput, "text")
	rulesCmd.Flags().StringVarP(&rulesLanguage, "language", "l", "", "Only list rules of this language")
	rulesCmd.Flags().StringVar(&settings.RulesDir, "rules-dir", settings.RulesDir, "Directory with additional rule files")
	setupFormatFlag(ruleCmd, &ruleFormat, "yaml")
	ruleCmd.Flags().StringVar(&settings.RulesDir, "rules-dir", settings.RulesDir, "Directory with additional rule files")
	setupFormatFlag(strategiesCmd, &stratFormat, "text")
}

// RuleInfo is a catalog rule for listing
type RuleInfo struct {
	ID       string         `json:"id" yaml:"id"`
	Language types.Language `json:"language" yaml:"language"`
	Category types.Category `json:"category" yaml:"category"`
	Severity types.Severity `json:"severity" yaml:"severity"`
	Pattern  string         `json:"pattern" yaml:"pattern"`
	Message  string         `json:"message" yaml:"message"`
	Fix      *types.Fix     `json:"fix,omitempty" yaml:"fix,omitempty"`
}

func ruleInfo(r types.CompiledRule) RuleInfo {
	return RuleInfo{
		ID:       r.ID,
		Language: r.Language,
		Category: r.Category,
		Severity: r.Severity,
		Pattern:  r.Pattern,
		Message:  r.Message,
		Fix:      r.Fix,
	}
}

// RulesResult is the output for the rules command
type RulesResult struct {
	Version string     `json:"version" yaml:"version"`
	Rules   []RuleInfo `json:"rules" yaml:"rules"`
}

func (r *RulesResult) ToJSON() interface{} {
	return r
}

func (r *RulesResult) ToText(w io.Writer, s Styles) {
	current := ""
	for _, rule := range r.Rules {
		if key := string(rule.Language) + "/" + string(rule.Category); key != current {
			current = key
			fmt.Fprintf(w, "\n%s\n", s.Header(key))
		}
		fmt.Fprintf(w, "  %-28s %s %s\n", rule.ID, s.Severity(rule.Severity), rule.Message)
	}
	fmt.Fprintf(w, "\nCatalog %s: %d rules\n", r.Version, len(r.Rules))
}

func buildRulesResult(catalog *rules.Catalog, lang types.Language) *RulesResult {
	result := &RulesResult{Version: catalog.Version(), Rules: []RuleInfo{}}
	for _, l := range catalog.Languages() {
		if lang != "" && l != lang {
			continue
		}
		set := catalog.RulesFor(l)
		for _, cat := range types.Categories {
			for _, rule := range set.ByCategory(cat) {
				result.Rules = append(result.Rules, ruleInfo(rule))
			}
		}
	}
	return result
}

func runRules(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)
	catalog, err := loadCatalog(logger)
	exitOnError(logger, "Failed to load rules", err)

	result := buildRulesResult(catalog, types.Language(strings.ToLower(rulesLanguage)))
	if rulesOutput == "-" {
		rulesOutput = ""
	}
	exitOnError(logger, "Failed to write output", OutputToFile(result, rulesFormat, rulesOutput))
}

// RuleResult wraps a rule for output
type RuleResult struct {
	Rule RuleInfo
}

func (r *RuleResult) ToJSON() interface{} {
	return r.Rule
}

func (r *RuleResult) ToText(w io.Writer, s Styles) {
	// For text, use YAML as it's more readable
	data, err := yaml.Marshal(r.Rule)
	if err != nil {
		log.Fatalf("Failed to marshal rule: %v", err)
	}
	fmt.Fprint(w, string(data))
}

func runRule(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)
	catalog, err := loadCatalog(logger)
	exitOnError(logger, "Failed to load rules", err)

	rule, ok := catalog.Rule(args[0])
	if !ok {
		exitOnError(logger, "Rule not found", fmt.Errorf("no rule with id %s", args[0]))
	}
	exitOnError(logger, "Failed to write output", Output(&RuleResult{Rule: ruleInfo(rule)}, ruleFormat))
}

// StrategiesResult lists the strategy names
type StrategiesResult struct {
	Strategies []string `json:"strategies" yaml:"strategies"`
	Default    string   `json:"default" yaml:"default"`
}

func (r *StrategiesResult) ToJSON() interface{} {
	return r
}

func (r *StrategiesResult) ToText(w io.Writer, s Styles) {
	descriptions := map[string]string{
		matcher.StrategyCatalog:    "per-language rule catalog with metrics and quality scores",
		matcher.StrategyHeuristics: "flat cross-language heuristics with optimization groups and complexity metrics",
		matcher.StrategySecurity:   "security audit driven by the seed catalog, one finding per matching line",
	}
	for _, name := range r.Strategies {
		marker := " "
		if name == r.Default {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-12s %s\n", marker, s.Header(name), descriptions[name])
	}
}

func runStrategies(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)
	catalog, err := rules.Default()
	exitOnError(logger, "Failed to load rules", err)
	registry, err := matcher.DefaultRegistry(catalog, nil)
	exitOnError(logger, "Failed to build strategies", err)

	exitOnError(logger, "Failed to write output", Output(&StrategiesResult{Strategies: registry.Names(), Default: matcher.DefaultStrategy}, stratFormat))
}
