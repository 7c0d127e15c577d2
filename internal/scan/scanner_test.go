package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/progress"
	"github.com/petrarca/code-pattern-analyzer/internal/provider"
	"github.com/petrarca/code-pattern-analyzer/internal/rules"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *matcher.Engine {
	t.Helper()
	catalog, err := rules.Default()
	require.NoError(t, err)
	registry, err := matcher.DefaultRegistry(catalog, nil)
	require.NoError(t, err)
	engine, err := matcher.NewEngine(registry, matcher.Options{})
	require.NoError(t, err)
	return engine
}

func newTestTree() *provider.FakeProvider {
	p := provider.NewFakeProvider()
	p.AddFile("app/main.py", "import os\nresult = eval(data)\n")
	p.AddFile("web/app.js", "if (a == null) {\n  run();\n}\n")
	p.AddFile("node_modules/lib/index.js", "eval(code)\n")
	p.AddFile(".gitignore", "build\n")
	p.AddFile("build/generated.py", "eval(x)\n")
	p.AddFile("README.md", "eval(x) in docs\n")
	p.AddFile("deploy.sh", "echo deploy\n")
	return p
}

type fileRule struct {
	file string
	rule string
}

func fileRules(issues []Issue) []fileRule {
	out := make([]fileRule, 0, len(issues))
	for _, issue := range issues {
		out = append(out, fileRule{issue.File, issue.RuleID})
	}
	return out
}

func filePaths(files []FileReport) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestScanProvider(t *testing.T) {
	scanner := New(newTestEngine(t), Options{Workers: 3})

	report, err := scanner.ScanProvider(context.Background(), newTestTree(), ".")
	require.NoError(t, err)

	assert.Equal(t, []string{"app/main.py", "web/app.js"}, filePaths(report.Files))
	found := fileRules(report.Issues)
	assert.Contains(t, found, fileRule{"app/main.py", "py-eval"})
	assert.Contains(t, found, fileRule{"web/app.js", "js-null-equality"})
	for _, issue := range report.Issues {
		assert.NotContains(t, issue.File, "node_modules")
		assert.NotContains(t, issue.File, "build")
	}

	require.NotNil(t, report.Metadata)
	assert.NotEmpty(t, report.Metadata.ScanID)
	assert.Equal(t, matcher.StrategyCatalog, report.Metadata.Strategy)
	assert.Equal(t, 2, report.Metadata.FileCount)
	assert.Equal(t, 2, report.Metadata.LanguageCount)
	require.NotNil(t, report.CodeStats)
	assert.Equal(t, 2, report.CodeStats.Total.Files)
}

func TestScanProvider_Options(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantFiles []string
	}{
		{
			name:      "excludes",
			opts:      Options{Excludes: []string{"web/**"}},
			wantFiles: []string{"app/main.py"},
		},
		{
			name:      "all files",
			opts:      Options{AllFiles: true},
			wantFiles: []string{"README.md", "app/main.py", "deploy.sh", "web/app.js"},
		},
		{
			name:      "size limit",
			opts:      Options{MaxFileSize: 29},
			wantFiles: []string{"web/app.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := New(newTestEngine(t), tt.opts)
			report, err := scanner.ScanProvider(context.Background(), newTestTree(), ".")
			require.NoError(t, err)
			assert.Equal(t, tt.wantFiles, filePaths(report.Files))
		})
	}
}

func TestScanProvider_SizeLimitReportsSkipped(t *testing.T) {
	scanner := New(newTestEngine(t), Options{MaxFileSize: 29})

	report, err := scanner.ScanProvider(context.Background(), newTestTree(), ".")
	require.NoError(t, err)

	assert.Equal(t, []SkippedFile{{Path: "app/main.py", Reason: ReasonTooLarge}}, report.Skipped)
	assert.Equal(t, 1, report.Metadata.SkippedCount)
}

func TestScanProvider_IssuesSortedByFileAndLine(t *testing.T) {
	p := provider.NewFakeProvider()
	p.AddFile("b.py", "x = 1\nexcept:\n    pass\nprint(eval(y))\n")
	p.AddFile("a.py", "print('start')\nexcept:\n")

	report, err := New(newTestEngine(t), Options{Workers: 2}).ScanProvider(context.Background(), p, ".")
	require.NoError(t, err)
	require.NotEmpty(t, report.Issues)

	for i := 1; i < len(report.Issues); i++ {
		prev, cur := report.Issues[i-1], report.Issues[i]
		if prev.File == cur.File {
			assert.LessOrEqual(t, prev.Line, cur.Line)
		} else {
			assert.Less(t, prev.File, cur.File)
		}
	}
	assert.Equal(t, "a.py", report.Issues[0].File)
}

func TestScanProvider_Deterministic(t *testing.T) {
	scanner := New(newTestEngine(t), Options{Workers: 4})

	first, err := scanner.ScanProvider(context.Background(), newTestTree(), ".")
	require.NoError(t, err)
	second, err := scanner.ScanProvider(context.Background(), newTestTree(), ".")
	require.NoError(t, err)

	assert.Equal(t, first.Issues, second.Issues)
	assert.Equal(t, first.Files, second.Files)
}

func TestScanProvider_ProgressEvents(t *testing.T) {
	handler := &recordingHandler{}
	scanner := New(newTestEngine(t), Options{Progress: progress.New(true, handler)})

	_, err := scanner.ScanProvider(context.Background(), newTestTree(), ".")
	require.NoError(t, err)

	assert.Contains(t, handler.types, progress.EventScanStart)
	assert.Contains(t, handler.types, progress.EventFileAnalyzed)
	assert.Contains(t, handler.types, progress.EventGitIgnoreEnter)
	assert.Equal(t, progress.EventScanComplete, handler.types[len(handler.types)-1])
}

func TestScanProvider_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(newTestEngine(t), Options{}).ScanProvider(ctx, newTestTree(), ".")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan_FileSystem(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "app.py"), []byte("except:\n    pass\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "blob.py"), []byte("eval(\x00\x01\x02)"), 0644))

	single := filepath.Join(t.TempDir(), "tool.js")
	require.NoError(t, os.WriteFile(single, []byte("var x = undefined;\n"), 0644))

	report, err := New(newTestEngine(t), Options{}).Scan(context.Background(), dir, single)
	require.NoError(t, err)

	appPath := filepath.Join(dir, "src", "app.py")
	assert.ElementsMatch(t, []string{appPath, single}, filePaths(report.Files))
	assert.Equal(t, []SkippedFile{{Path: filepath.Join(dir, "src", "blob.py"), Reason: ReasonBinary}}, report.Skipped)

	found := fileRules(report.Issues)
	assert.Contains(t, found, fileRule{appPath, "py-bare-except"})
	assert.Contains(t, found, fileRule{single, "js-undefined-assignment"})
}

func TestScan_Errors(t *testing.T) {
	scanner := New(newTestEngine(t), Options{})

	_, err := scanner.Scan(context.Background())
	assert.Error(t, err)

	_, err = scanner.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestReport_Grouping(t *testing.T) {
	report := &Report{Issues: []Issue{
		{File: "a.py", Line: 1, Severity: types.SeverityHigh},
		{File: "a.py", Line: 3, Severity: types.SeverityCritical},
		{File: "b.js", Line: 2, Severity: types.SeverityHigh},
	}}

	files, grouped := report.ByFile()
	assert.Equal(t, []string{"a.py", "b.js"}, files)
	assert.Len(t, grouped["a.py"], 2)
	assert.Equal(t, map[types.Severity]int{types.SeverityHigh: 2, types.SeverityCritical: 1}, report.Severities())
}

type recordingHandler struct {
	types []progress.EventType
}

func (h *recordingHandler) Handle(event progress.Event) {
	h.types = append(h.types, event.Type)
}
