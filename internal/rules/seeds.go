package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/petrarca/code-pattern-analyzer/internal/validation"
	"gopkg.in/yaml.v3"
)

// SeedCode holds the example snippets of a seed entry
type SeedCode struct {
	Vulnerable string `yaml:"vulnerable" json:"vulnerable"`
	Secure     string `yaml:"secure,omitempty" json:"secure,omitempty"`
}

// SeedEntry describes one known vulnerability for a language
type SeedEntry struct {
	Vulnerability string   `yaml:"vulnerability" json:"vulnerability"`
	Code          SeedCode `yaml:"code" json:"code"`
	Explanation   string   `yaml:"explanation" json:"explanation"`
}

// SeedCatalog is keyed by human-readable language name (Python, C#, C++, ...)
type SeedCatalog map[string]SeedEntry

// seedVersion is reported as the version of seed-derived catalogs
const seedVersion = "seed-1"

type seedPattern struct {
	pattern     string
	explanation string // overrides the seed explanation when set
}

type seedKey struct {
	language      string
	vulnerability string
}

// seedTranslations maps (language, vulnerability) to detection patterns
var seedTranslations = map[seedKey][]seedPattern{
	{"Python", "Remote Code Execution (RCE)"}: {{pattern: `eval\s*\(.*\)`}},
	{"PHP", "Remote Code Execution (RCE)"}:    {{pattern: `eval\s*\(\s*\$.*\)`}},
	{"Java", "SQL Injection (SQLi)"}:          {{pattern: `executeQuery\s*\(["'].*\+`}},
	{"Java", "SQL Injection"}:                 {{pattern: `executeQuery\s*\(["'].*\+`}},
	{"C#", "SQL Injection (SQLi)"}:            {{pattern: `SELECT.*FROM.*WHERE.*=\s*['"]\s*\+`}},
	{"C#", "SQL Injection"}:                   {{pattern: `SELECT.*FROM.*WHERE.*=\s*['"]\s*\+`}},
	{"Python", "SQL Injection (SQLi)"}: {{
		pattern:     `SELECT.*FROM.*WHERE.*=\s*['"]?\{.*\}|f["']SELECT`,
		explanation: "Use parameterized queries with placeholders instead of string formatting in SQL queries.",
	}},
	{"Python", "SQL Injection"}: {{
		pattern:     `SELECT.*FROM.*WHERE.*=\s*['"]?\{.*\}|f["']SELECT`,
		explanation: "Use parameterized queries with placeholders instead of string formatting in SQL queries.",
	}},
	{"JavaScript", "Cross-site Scripting (XSS)"}: {{pattern: `(innerHTML|outerHTML)\s*=`}},
	{"C++", "Buffer Overflow"}:                   {{pattern: `strcpy\s*\(`}},
	{"Go", "Command Injection"}:                  {{pattern: `exec\.Command\s*\(\s*["']bash["']\s*,\s*["']-c["']\s*,`}},
	{"Ruby", "Command Injection"}:                {{pattern: `system\s*\(["'].*#\{`}},
	{"Kotlin", "Hardcoded Secrets"}:              {{pattern: `val\s+\w+\s*=\s*["'][\w\-]+["']`}},
	{"Rust", "Panic from unwrap"}:                {{pattern: `\.unwrap\(\)`}},
	{"Swift", "Force Unwrapping"}:                {{pattern: `try!`}},
}

type extraPattern struct {
	pattern       string
	vulnerability string
	explanation   string
}

// extraPatterns are always added on top of the seed file
var extraPatterns = map[string][]extraPattern{
	"JavaScript": {
		{`eval\s*\(.+\)`, "Remote Code Execution (RCE)", "Avoid using eval() with user input in JavaScript as it can lead to code execution vulnerabilities."},
		{`document\.write\s*\(`, "Cross-site Scripting (XSS)", "Avoid using document.write() with untrusted data as it can lead to XSS vulnerabilities."},
		{`setTimeout\s*\(\s*['"]`, "Code Injection", "Avoid passing strings to setTimeout() or setInterval() as they use eval() internally."},
		{`new\s+Function\s*\(`, "Code Injection", "Avoid using the Function constructor with user input as it creates functions from strings, similar to eval()."},
		{`localStorage\.(get|set)Item\s*\(\s*['"]password['"]`, "Insecure Storage", "Don't store sensitive data like passwords in localStorage as it's accessible to any script from the same origin."},
	},
	"Python": {
		{`subprocess\.(call|Popen|run)\s*\(\s*.*shell\s*=\s*True`, "Command Injection", "Avoid using shell=True with subprocess as it can lead to command injection vulnerabilities."},
		{`pickle\.(loads|load)`, "Insecure Deserialization", "Avoid using pickle with untrusted data as it can lead to remote code execution."},
		{`yaml\.load\s*\(.*Loader\s*=\s*None\)|yaml\.load\s*\([^,)]+\)`, "YAML Deserialization", "Use yaml.safe_load() instead of yaml.load() to prevent code execution from YAML."},
		{`hashlib\.md5\s*\(`, "Weak Cryptography", "MD5 is cryptographically broken. Use a stronger hash algorithm like SHA-256."},
	},
}

// seedLanguages maps seed language names to the tags they cover
var seedLanguages = map[string][]types.Language{
	"Python":     {types.LanguagePython},
	"PHP":        {types.LanguagePHP},
	"Java":       {types.LanguageJava},
	"C#":         {types.LanguageCSharp},
	"JavaScript": {types.LanguageJavaScript, types.LanguageTypeScript},
	"C++":        {types.LanguageCPP, types.LanguageC},
	"Go":         {types.LanguageGo},
	"Ruby":       {types.LanguageRuby},
	"Kotlin":     {types.LanguageKotlin},
	"Rust":       {types.LanguageRust},
	"Swift":      {types.LanguageSwift},
}

// vulnerabilitySeverity ranks a vulnerability class
func vulnerabilitySeverity(vulnerability string) types.Severity {
	v := strings.ToLower(vulnerability)
	switch {
	case strings.Contains(v, "code execution"), strings.Contains(v, "command injection"), strings.Contains(v, "code injection"):
		return types.SeverityCritical
	case strings.Contains(v, "sql injection"), strings.Contains(v, "xss"), strings.Contains(v, "buffer overflow"),
		strings.Contains(v, "hardcoded secrets"), strings.Contains(v, "deserialization"):
		return types.SeverityHigh
	default:
		return types.SeverityMedium
	}
}

// LoadSeedCatalog reads a seed file (JSON or YAML) and validates it
func LoadSeedCatalog(path string) (SeedCatalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed catalog %s: %w", path, err)
	}
	seeds, err := ParseSeedCatalog(content, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog %s: %w", path, err)
	}
	return seeds, nil
}

// DefaultSeedCatalog returns the seed entries compiled into the binary
func DefaultSeedCatalog() (SeedCatalog, error) {
	content, err := builtinFS.ReadFile("builtin/security_seeds.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded seed catalog: %w", err)
	}
	return ParseSeedCatalog(content, false)
}

// ParseSeedCatalog decodes and validates seed content
func ParseSeedCatalog(content []byte, isJSON bool) (SeedCatalog, error) {
	var raw interface{}
	var seeds SeedCatalog
	if isJSON {
		if err := json.Unmarshal(content, &raw); err != nil {
			return nil, err
		}
		if err := validation.ValidateJSON(validation.SeedCatalogSchema, raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(content, &seeds); err != nil {
			return nil, err
		}
		return seeds, nil
	}

	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	if err := validation.ValidateJSON(validation.SeedCatalogSchema, raw); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(content, &seeds); err != nil {
		return nil, err
	}
	return seeds, nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func hasPattern(rules []types.Rule, pattern string) bool {
	for _, r := range rules {
		if r.Pattern == pattern {
			return true
		}
	}
	return false
}

// SeedRuleFiles translates seed entries and the extra patterns into security rule files.
// Seed languages that have no tag mapping are skipped.
func SeedRuleFiles(seeds SeedCatalog) []RuleFile {
	byLang := make(map[types.Language]*RuleFile)
	var order []types.Language
	counter := make(map[string]int)

	add := func(seedLang string, rule types.Rule) {
		for _, tag := range seedLanguages[seedLang] {
			file, ok := byLang[tag]
			if !ok {
				file = &RuleFile{Language: tag, Source: "seed:" + seedLang}
				byLang[tag] = file
				order = append(order, tag)
			}
			if hasPattern(file.Security, rule.Pattern) {
				continue
			}
			r := rule
			base := fmt.Sprintf("seed-%s-%s", tag, slug(rule.Message))
			counter[base]++
			r.ID = fmt.Sprintf("%s-%d", base, counter[base])
			file.Security = append(file.Security, r)
		}
	}

	names := make([]string, 0, len(seeds))
	for name := range seeds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := seeds[name]
		for _, p := range seedTranslations[seedKey{name, entry.Vulnerability}] {
			explanation := entry.Explanation
			if p.explanation != "" {
				explanation = p.explanation
			}
			add(name, types.Rule{
				Pattern:  p.pattern,
				Message:  entry.Vulnerability,
				Severity: vulnerabilitySeverity(entry.Vulnerability),
				Fix: &types.Fix{
					Before:      entry.Code.Vulnerable,
					After:       entry.Code.Secure,
					Explanation: explanation,
				},
			})
		}
	}

	extraNames := make([]string, 0, len(extraPatterns))
	for name := range extraPatterns {
		extraNames = append(extraNames, name)
	}
	sort.Strings(extraNames)
	for _, name := range extraNames {
		for _, p := range extraPatterns[name] {
			add(name, types.Rule{
				Pattern:  p.pattern,
				Message:  p.vulnerability,
				Severity: vulnerabilitySeverity(p.vulnerability),
				Fix:      &types.Fix{Explanation: p.explanation},
			})
		}
	}

	files := make([]RuleFile, 0, len(order))
	for _, tag := range order {
		files = append(files, *byLang[tag])
	}
	return files
}

// NewSecurityCatalog builds a security-only catalog from seed entries
func NewSecurityCatalog(seeds SeedCatalog) (*Catalog, error) {
	return NewCatalog(seedVersion, SeedRuleFiles(seeds)...)
}
