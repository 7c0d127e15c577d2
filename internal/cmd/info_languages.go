package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-enry/go-enry/v2"
	"github.com/go-enry/go-enry/v2/data"
	"github.com/petrarca/code-pattern-analyzer/internal/language"
	"github.com/petrarca/code-pattern-analyzer/internal/rules"
	"github.com/petrarca/code-pattern-analyzer/internal/samples"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/spf13/cobra"
)

var (
	languagesFormat string
	languagesOutput string
	languagesAll    bool
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages the analyzer detects",
	Long: `List the language tags the detector resolves, their extensions and whether the
catalog carries rules for them. With --all every language known to go-enry
(GitHub Linguist) is listed instead.`,
	Run: runLanguages,
}

func init() {
	setupOutputFlags(languagesCmd, &languagesFormat, &languagesOutput, "text")
	languagesCmd.Flags().BoolVar(&languagesAll, "all", false, "List every go-enry language")
}

// LanguageInfo holds information about a detectable language
type LanguageInfo struct {
	Name       string   `json:"name" yaml:"name"`
	Type       string   `json:"type" yaml:"type"`
	Extensions []string `json:"extensions" yaml:"extensions"`
	Rules      bool     `json:"rules" yaml:"rules"`
	Sample     bool     `json:"sample" yaml:"sample"`
}

// LanguagesSummary holds summary statistics
type LanguagesSummary struct {
	Total     int            `json:"total" yaml:"total"`
	WithRules int            `json:"with_rules" yaml:"with_rules"`
	ByType    map[string]int `json:"by_type" yaml:"by_type"`
}

// LanguagesResult is the output for the languages command
type LanguagesResult struct {
	Languages []LanguageInfo   `json:"languages" yaml:"languages"`
	Summary   LanguagesSummary `json:"summary" yaml:"summary"`
}

func (r *LanguagesResult) ToJSON() interface{} {
	return r
}

func (r *LanguagesResult) ToText(w io.Writer, s Styles) {
	for _, lang := range r.Languages {
		rulesMark := ""
		if lang.Rules {
			rulesMark = "rules"
		}
		fmt.Fprintf(w, "%-30s %-12s %-6s %v\n", s.Header(lang.Name), lang.Type, rulesMark, lang.Extensions)
	}
	fmt.Fprintf(w, "\nTotal: %d languages (%d with rules)\n", r.Summary.Total, r.Summary.WithRules)
	fmt.Fprintf(w, "By type: programming=%d, data=%d, markup=%d, prose=%d\n",
		r.Summary.ByType["programming"], r.Summary.ByType["data"],
		r.Summary.ByType["markup"], r.Summary.ByType["prose"])
}

func runLanguages(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)

	var result *LanguagesResult
	if languagesAll {
		result = buildLinguistLanguages()
	} else {
		catalog, err := rules.Default()
		exitOnError(logger, "Failed to load rules", err)
		result = buildLanguagesResult(catalog)
	}
	if languagesOutput == "-" {
		languagesOutput = ""
	}
	exitOnError(logger, "Failed to write output", OutputToFile(result, languagesFormat, languagesOutput))
}

// buildLanguagesResult lists the tags of the fixed extension table
func buildLanguagesResult(catalog *rules.Catalog) *LanguagesResult {
	extensions := make(map[types.Language][]string)
	for ext, lang := range language.SupportedExtensions() {
		extensions[lang] = append(extensions[lang], "."+ext)
	}
	withSample := make(map[types.Language]bool)
	for _, lang := range samples.Languages() {
		withSample[lang] = true
	}

	result := &LanguagesResult{Summary: LanguagesSummary{ByType: make(map[string]int)}}
	for lang, exts := range extensions {
		sort.Strings(exts)
		info := LanguageInfo{
			Name:       string(lang),
			Type:       language.LanguageType(lang),
			Extensions: exts,
			Rules:      catalog.HasRules(lang),
			Sample:     withSample[lang],
		}
		result.Languages = append(result.Languages, info)
		result.Summary.ByType[info.Type]++
		if info.Rules {
			result.Summary.WithRules++
		}
	}
	sort.Slice(result.Languages, func(i, j int) bool {
		return result.Languages[i].Name < result.Languages[j].Name
	})
	result.Summary.Total = len(result.Languages)
	return result
}

// buildLinguistLanguages lists every language go-enry knows
func buildLinguistLanguages() *LanguagesResult {
	langSet := make(map[string]bool)
	for _, langs := range data.LanguagesByExtension {
		for _, lang := range langs {
			langSet[lang] = true
		}
	}

	languages := make([]LanguageInfo, 0, len(langSet))
	byType := make(map[string]int)
	for lang := range langSet {
		typeName := types.LanguageTypeToString(enry.GetLanguageType(lang))
		languages = append(languages, LanguageInfo{
			Name:       lang,
			Type:       typeName,
			Extensions: getExtensionsForLanguage(lang),
		})
		byType[typeName]++
	}

	sort.Slice(languages, func(i, j int) bool {
		return languages[i].Name < languages[j].Name
	})

	return &LanguagesResult{
		Languages: languages,
		Summary: LanguagesSummary{
			Total:  len(languages),
			ByType: byType,
		},
	}
}

// getExtensionsForLanguage returns file extensions for a language
func getExtensionsForLanguage(lang string) []string {
	var extensions []string
	for ext, langs := range data.LanguagesByExtension {
		for _, l := range langs {
			if l == lang {
				extensions = append(extensions, ext)
				break
			}
		}
	}
	sort.Strings(extensions)
	return extensions
}
