package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/petrarca/code-pattern-analyzer/internal/language"
	"github.com/petrarca/code-pattern-analyzer/internal/metadata"
	"github.com/petrarca/code-pattern-analyzer/internal/rules"
	"github.com/petrarca/code-pattern-analyzer/internal/scan"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *scan.Report {
	meta := metadata.NewScanMetadata("01TEST", ".")
	meta.Strategy = "security"
	meta.SetFileCounts(2, 1)
	meta.LanguageCount = 2
	return &scan.Report{
		Metadata: meta,
		Issues: []scan.Issue{
			{File: "a.py", Line: 2, Severity: types.SeverityCritical, Message: "Command Injection", Code: "os.system(cmd)", Fix: "Use subprocess with a list"},
			{File: "a.py", Line: 7, Severity: types.SeverityHigh, Message: "Insecure Deserialization", Code: "pickle.loads(data)"},
			{File: "b.js", Line: 1, Severity: types.SeverityCritical, Message: "Code Injection", Code: "eval(input)"},
		},
	}
}

func TestScanOutput_Text(t *testing.T) {
	data, err := Render(&ScanOutput{Report: sampleReport()}, "text", false, true)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "Found 3 potential issue(s):\n"))
	assert.Contains(t, text, "\na.py:\n  1. [CRITICAL] Command Injection at line 2\n     Code: os.system(cmd)\n     Fix: Use subprocess with a list\n")
	assert.Contains(t, text, "  2. [HIGH] Insecure Deserialization at line 7\n")
	assert.Contains(t, text, "\nb.js:\n  1. [CRITICAL] Code Injection at line 1\n")
	assert.Contains(t, text, "Scanned 2 file(s), skipped 1, 2 language(s), strategy security")
}

func TestScanOutput_NoIssues(t *testing.T) {
	data, err := Render(&ScanOutput{Report: &scan.Report{}}, "text", false, true)
	require.NoError(t, err)
	assert.Equal(t, "No potential issues found.\n", string(data))
}

func TestRender_StructuredFormats(t *testing.T) {
	out := &ScanOutput{Report: sampleReport()}

	t.Run("json", func(t *testing.T) {
		data, err := Render(out, "JSON", false, false)
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Len(t, decoded["issues"], 3)
		assert.Contains(t, decoded, "metadata")
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := Render(out, "yaml", false, false)
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, yaml.Unmarshal(data, &decoded))
		assert.Len(t, decoded["issues"], 3)
	})
}

func TestCodeLine(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		line    int
		want    string
	}{
		{"single line snippet", "  eval(x)  ", 12, "eval(x)"},
		{"clipped at file start", "a = 1\neval(x)\nb = 2", 2, "eval(x)"},
		{"full window", "l1\nl2\nl3\nmatch\nl5\nl6\nl7", 4, "match"},
		{"window deep in file", "l7\nl8\nl9\nmatch\nl11", 10, "match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codeLine(tt.snippet, tt.line))
		})
	}
}

func TestAnalyzeOutput_Text(t *testing.T) {
	result := types.Result{
		Language: types.LanguagePython,
		Strategy: "catalog",
		Source:   types.SourcePattern,
		Findings: types.NewFindings(),
		Metrics:  types.Metrics{Complexity: 2, Maintainability: 90, Performance: 95},
		Scores:   &types.Scores{Reliability: 80, Security: 100, Performance: 100},
	}
	result.Findings.Add(types.Finding{
		Line: 1, Message: "Bare except clause detected.", Severity: types.SeverityHigh,
		Category: types.CategoryBug, Fix: &types.Fix{After: "except Exception as e:"},
	})
	out := &AnalyzeOutput{
		File:        "app.py",
		Result:      result,
		Suggestions: []types.Suggestion{{Type: "entry_point", Message: "Consider adding proper error handling", Severity: types.SeverityInfo}},
	}

	data, err := Render(out, "text", false, true)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "File: app.py\n")
	assert.Contains(t, text, "Bugs (1)\n  [HIGH] line 1: Bare except clause detected.\n      fix: except Exception as e:\n")
	assert.Contains(t, text, "Security (0)")
	assert.Contains(t, text, "Metrics: complexity=2 maintainability=90.00 performance=95.00")
	assert.Contains(t, text, "Scores: reliability=80.00 security=100.00 performance=100.00")
	assert.Contains(t, text, "[INFO] entry_point: Consider adding proper error handling")
	assert.NotContains(t, text, "Complexity:")
}

func TestDetectFile(t *testing.T) {
	detector := language.NewDetector()

	tests := []struct {
		file, content string
		lang          types.Language
		method        string
	}{
		{"main.go", "def f(): pass", types.LanguageGo, "extension"},
		{"script", "def main():\n    import os\n", types.LanguagePython, "content"},
		{"notes", "", types.DefaultLanguage, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			d := detectFile(detector, tt.file, tt.content)
			assert.Equal(t, tt.lang, d.Language)
			assert.Equal(t, tt.method, d.Method)
			assert.NotEmpty(t, d.Type)
		})
	}
}

func TestBuildRulesResult(t *testing.T) {
	catalog, err := rules.Default()
	require.NoError(t, err)

	all := buildRulesResult(catalog, "")
	assert.Equal(t, catalog.Len(), len(all.Rules))
	assert.Equal(t, catalog.Version(), all.Version)

	python := buildRulesResult(catalog, types.LanguagePython)
	require.NotEmpty(t, python.Rules)
	for _, r := range python.Rules {
		assert.Equal(t, types.LanguagePython, r.Language)
	}
	assert.Equal(t, "py-bare-except", python.Rules[0].ID)
}

func TestBuildLanguagesResult(t *testing.T) {
	catalog, err := rules.Default()
	require.NoError(t, err)

	result := buildLanguagesResult(catalog)
	byName := make(map[string]LanguageInfo)
	for _, l := range result.Languages {
		byName[l.Name] = l
	}

	require.Contains(t, byName, "python")
	assert.True(t, byName["python"].Rules)
	assert.True(t, byName["python"].Sample)
	assert.Contains(t, byName["python"].Extensions, ".py")
	assert.False(t, byName["rust"].Rules)
	assert.Equal(t, len(result.Languages), result.Summary.Total)
}

func TestStyles_Plain(t *testing.T) {
	s := NewStyles(false)
	assert.Equal(t, "[CRITICAL]", s.Severity(types.SeverityCritical))
	assert.Equal(t, "title", s.Header("title"))
	assert.Equal(t, "a.py", s.Path("a.py"))
	assert.Equal(t, "detail", s.Dim("detail"))

	colored := NewStyles(true)
	assert.Contains(t, colored.Severity(types.SeverityHigh), "[HIGH]")
}

func TestSetupOutputFlags_InfersFormat(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", nil, "text"},
		{"from extension", []string{"-o", "out/report.yml"}, "yaml"},
		{"explicit format wins", []string{"-o", "report.yaml", "-f", "JSON"}, "json"},
		{"unknown extension keeps default", []string{"-o", "report.out"}, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var format, output string
			cmd := &cobra.Command{Use: "test"}
			setupOutputFlags(cmd, &format, &output, "text")

			require.NoError(t, cmd.ParseFlags(tt.args))
			require.NoError(t, cmd.PreRunE(cmd, nil))
			assert.Equal(t, tt.want, format)
		})
	}

	t.Run("invalid format", func(t *testing.T) {
		var format, output string
		cmd := &cobra.Command{Use: "test"}
		setupOutputFlags(cmd, &format, &output, "text")

		require.NoError(t, cmd.ParseFlags([]string{"-f", "xml"}))
		assert.Error(t, cmd.PreRunE(cmd, nil))
	})
}
