package types

import "github.com/go-enry/go-enry/v2"

// Language is a detected or declared language tag
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageC          Language = "c"
	LanguageCSharp     Language = "csharp"
	LanguageGo         Language = "go"
	LanguageRuby       Language = "ruby"
	LanguageRust       Language = "rust"
	LanguagePHP        Language = "php"
	LanguageSwift      Language = "swift"
	LanguageKotlin     Language = "kotlin"
	LanguageHTML       Language = "html"
	LanguageCSS        Language = "css"
	LanguageJSON       Language = "json"
	LanguageXML        Language = "xml"
	LanguageMarkdown   Language = "markdown"
	LanguageYAML       Language = "yaml"
	LanguageSQL        Language = "sql"
	LanguageBash       Language = "bash"
	LanguageUnknown    Language = "unknown"
)

// DefaultLanguage is used whenever no other evidence exists and as the rule fallback
const DefaultLanguage = LanguagePython

// IsProgramming reports whether the tag names a general-purpose programming language
func (l Language) IsProgramming() bool {
	switch l {
	case LanguagePython, LanguageJavaScript, LanguageTypeScript, LanguageJava,
		LanguageCPP, LanguageC, LanguageCSharp, LanguageGo, LanguageRuby,
		LanguageRust, LanguagePHP, LanguageSwift, LanguageKotlin:
		return true
	}
	return false
}

// LanguageTypeToString converts enry.Type to string (programming, data, markup, prose)
func LanguageTypeToString(t enry.Type) string {
	switch t {
	case enry.Programming:
		return "programming"
	case enry.Data:
		return "data"
	case enry.Markup:
		return "markup"
	case enry.Prose:
		return "prose"
	default:
		return "unknown"
	}
}
