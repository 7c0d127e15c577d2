package language

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// extensionTable is consulted before any other evidence
var extensionTable = map[string]types.Language{
	"py":    types.LanguagePython,
	"js":    types.LanguageJavaScript,
	"jsx":   types.LanguageJavaScript,
	"ts":    types.LanguageTypeScript,
	"tsx":   types.LanguageTypeScript,
	"html":  types.LanguageHTML,
	"css":   types.LanguageCSS,
	"java":  types.LanguageJava,
	"cpp":   types.LanguageCPP,
	"cc":    types.LanguageCPP,
	"hpp":   types.LanguageCPP,
	"c":     types.LanguageC,
	"h":     types.LanguageC,
	"go":    types.LanguageGo,
	"php":   types.LanguagePHP,
	"rb":    types.LanguageRuby,
	"rs":    types.LanguageRust,
	"swift": types.LanguageSwift,
	"kt":    types.LanguageKotlin,
	"cs":    types.LanguageCSharp,
	"sh":    types.LanguageBash,
	"json":  types.LanguageJSON,
	"xml":   types.LanguageXML,
	"md":    types.LanguageMarkdown,
	"yml":   types.LanguageYAML,
	"yaml":  types.LanguageYAML,
	"sql":   types.LanguageSQL,
}

// linguistNames maps go-enry (GitHub Linguist) language names to tags
var linguistNames = map[string]types.Language{
	"Python":     types.LanguagePython,
	"JavaScript": types.LanguageJavaScript,
	"TypeScript": types.LanguageTypeScript,
	"TSX":        types.LanguageTypeScript,
	"Java":       types.LanguageJava,
	"C++":        types.LanguageCPP,
	"C":          types.LanguageC,
	"C#":         types.LanguageCSharp,
	"Go":         types.LanguageGo,
	"Ruby":       types.LanguageRuby,
	"Rust":       types.LanguageRust,
	"PHP":        types.LanguagePHP,
	"Swift":      types.LanguageSwift,
	"Kotlin":     types.LanguageKotlin,
	"HTML":       types.LanguageHTML,
	"CSS":        types.LanguageCSS,
	"JSON":       types.LanguageJSON,
	"XML":        types.LanguageXML,
	"Markdown":   types.LanguageMarkdown,
	"YAML":       types.LanguageYAML,
	"SQL":        types.LanguageSQL,
	"Shell":      types.LanguageBash,
}

type contentSignature struct {
	language types.Language
	pattern  *regexp.Regexp
}

// signatures is the ordered content battery; ties are won by the earlier entry
var signatures = []contentSignature{
	{types.LanguagePython, regexp.MustCompile(`import\s+[a-zA-Z_]+|from\s+[a-zA-Z_]+\s+import|def\s+[a-zA-Z_]+\s*\(|class\s+[a-zA-Z_]+\s*\(?`)},
	{types.LanguageJavaScript, regexp.MustCompile(`const\s+[a-zA-Z_$]+|let\s+[a-zA-Z_$]+|var\s+[a-zA-Z_$]+|function\s+[a-zA-Z_$]+\s*\(|=>|async|await|document\.|window\.`)},
	{types.LanguageTypeScript, regexp.MustCompile(`interface\s+|type\s+\w+\s*=|:\s*\w+Type|<\w+>|export\s+class|implements\s+|namespace\s+`)},
	{types.LanguageHTML, regexp.MustCompile(`<!DOCTYPE\s+html>|<html>|<head>|<body>|<div>|<span>|<p>`)},
	{types.LanguageCSS, regexp.MustCompile(`(\.|#|\*)[a-zA-Z_-]+\s*\{|@media|@import|@keyframes`)},
	{types.LanguageJava, regexp.MustCompile(`public\s+(class|interface)|private\s+|protected\s+|class\s+\w+\s+\{|import\s+java\.|@Override`)},
	{types.LanguageCPP, regexp.MustCompile(`#include\s+<(\w+)\.h>|::\w+|namespace\s+\w+|std::|template|class\s+\w+|public:|private:`)},
	{types.LanguageC, regexp.MustCompile(`#include\s+<(\w+)\.h>|void\s+\w+\s*\(|int\s+main\s*\(|\bchar\s+\*|\bint\s+\w+\[|\bstruct\s+\w+\s*\{`)},
	{types.LanguageCSharp, regexp.MustCompile(`using\s+System;|namespace\s+\w+|public\s+class|private\s+|protected\s+|internal\s+|\bvar\s+\w+\s*=`)},
	{types.LanguageGo, regexp.MustCompile(`package\s+\w+|import\s+\(|func\s+\(|func\s+\w+\s*\(|type\s+\w+\s+struct`)},
	{types.LanguageRuby, regexp.MustCompile(`require\s+|def\s+\w+|class\s+\w+\s*<|module\s+\w+|attr_accessor|attr_reader`)},
	{types.LanguageRust, regexp.MustCompile(`fn\s+\w+|struct\s+\w+|impl\s+|let\s+mut|use\s+\w+::|enum\s+\w+`)},
	{types.LanguagePHP, regexp.MustCompile(`<\?php|\$\w+|function\s+\w+\s*\(|namespace\s+\w+|use\s+\w+`)},
	{types.LanguageSwift, regexp.MustCompile(`import\s+\w+|var\s+\w+\s*:|let\s+\w+\s*:|func\s+\w+\s*\(|class\s+\w+|struct\s+\w+`)},
	{types.LanguageKotlin, regexp.MustCompile(`fun\s+\w+|val\s+\w+|var\s+\w+|class\s+\w+|package\s+\w+|import\s+\w+`)},
}

// Detector resolves a language tag from a filename and content.
// It holds no state and is safe for concurrent use.
type Detector struct{}

// NewDetector creates a new language detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the language tag for a file. It never fails: without any
// evidence the default language is returned.
func (d *Detector) Detect(filename, content string) types.Language {
	if lang, ok := d.ByFilename(filename); ok {
		return lang
	}
	if content != "" {
		if lang, ok := d.ByContent(content); ok {
			return lang
		}
	}
	return types.DefaultLanguage
}

// ByFilename looks the extension up in the fixed table, then in the Linguist tables
func (d *Detector) ByFilename(filename string) (types.Language, bool) {
	if filename == "" {
		return "", false
	}
	base := filepath.Base(filename)
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		if lang, ok := extensionTable[strings.ToLower(base[idx+1:])]; ok {
			return lang, true
		}
	}

	name, _ := enry.GetLanguageByExtension(base)
	if name == "" {
		name, _ = enry.GetLanguageByFilename(base)
	}
	if lang, ok := linguistNames[name]; ok {
		return lang, true
	}
	return "", false
}

// ByContent runs the signature battery and returns the language with the
// strictly greatest match count
func (d *Detector) ByContent(content string) (types.Language, bool) {
	best := types.Language("")
	bestCount := 0
	for _, sig := range signatures {
		count := len(sig.pattern.FindAllStringIndex(content, -1))
		if count > bestCount {
			best = sig.language
			bestCount = count
		}
	}
	return best, bestCount > 0
}

// IsAnalyzable reports whether a path should be considered by a directory scan.
// Vendored, image and dot files are skipped; binary content is checked by the caller.
func IsAnalyzable(path string) bool {
	if enry.IsDotFile(path) || strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return !enry.IsVendor(path) && !enry.IsImage(path)
}

var defaultDetector = NewDetector()

// Detect resolves a language using the shared default detector
func Detect(filename, content string) types.Language {
	return defaultDetector.Detect(filename, content)
}

// SupportedExtensions returns the extensions of the fixed table
func SupportedExtensions() map[string]types.Language {
	out := make(map[string]types.Language, len(extensionTable))
	for ext, lang := range extensionTable {
		out[ext] = lang
	}
	return out
}

// LanguageType returns the Linguist type (programming, markup, data, prose) of a tag
func LanguageType(lang types.Language) string {
	for name, tag := range linguistNames {
		if tag == lang && name != "TSX" {
			return types.LanguageTypeToString(enry.GetLanguageType(name))
		}
	}
	return types.LanguageTypeToString(enry.Unknown)
}
