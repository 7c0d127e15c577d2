package projectctx

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrarca/code-pattern-analyzer/internal/provider"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

func suggestionTypes(suggestions []types.Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Type)
	}
	return out
}

func TestSuggest(t *testing.T) {
	var many strings.Builder
	for i := 0; i < 11; i++ {
		fmt.Fprintf(&many, "import mod%d\n", i)
	}

	tests := []struct {
		name     string
		files    map[string]string
		target   string
		expected []string
	}{
		{
			name: "python cycle",
			files: map[string]string{
				"pkg/a.py": "from pkg.b import helper\n",
				"pkg/b.py": "import pkg.a\n",
			},
			target:   "pkg/a.py",
			expected: []string{SuggestionCircular},
		},
		{
			name:     "entry point by name",
			files:    map[string]string{"main.py": "x = 1\n"},
			target:   "main.py",
			expected: []string{SuggestionEntryPoint},
		},
		{
			name:     "entry point by content",
			files:    map[string]string{"tool.py": "if __name__ == \"__main__\":\n    run()\n"},
			target:   "tool.py",
			expected: []string{SuggestionEntryPoint},
		},
		{
			name:     "too many dependencies",
			files:    map[string]string{"lib.py": many.String()},
			target:   "lib.py",
			expected: []string{SuggestionDependencies},
		},
		{
			name: "no findings",
			files: map[string]string{
				"lib/util.js": "const fs = require('fs')\n",
			},
			target:   "lib/util.js",
			expected: []string{},
		},
		{
			name: "javascript cycle through index file",
			files: map[string]string{
				"src/a.js":         "import { b } from './b'\n",
				"src/b.js":         "import x from './lib'\n",
				"src/lib/index.js": "const a = require('../a')\n",
			},
			target:   "src/b.js",
			expected: []string{SuggestionCircular},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := provider.NewFakeProvider()
			for name, content := range tt.files {
				p.AddFile(name, content)
			}

			suggestions, err := NewAnalyzer(p, nil).Suggest(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, suggestionTypes(suggestions))
		})
	}
}

func TestSuggest_Severities(t *testing.T) {
	p := provider.NewFakeProvider()
	p.AddFile("main.py", "import helper\n")
	p.AddFile("helper.py", "import main\n")

	suggestions, err := NewAnalyzer(p, nil).Suggest("main.py")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, types.SeverityInfo, suggestions[0].Severity)
	assert.Equal(t, entryPointMessage, suggestions[0].Message)
	assert.Equal(t, types.SeverityHigh, suggestions[1].Severity)
	assert.Equal(t, circularMessage, suggestions[1].Message)
}

func TestStructure_GoModule(t *testing.T) {
	p := provider.NewFakeProvider()
	p.AddFile("go.mod", "module example.com/app\n\ngo 1.22\n")
	p.AddFile("cmd/app/main.go", "package main\n\nimport (\n\t\"fmt\"\n\t\"example.com/app/internal/store\"\n)\n\nfunc main() { fmt.Println(store.Name) }\n")
	p.AddFile("internal/store/store.go", "package store\n\nconst Name = \"x\"\n")
	p.AddFile("internal/store/store_test.go", "package store\n")

	s, err := NewAnalyzer(p, nil).Structure()
	require.NoError(t, err)

	assert.Equal(t, "example.com/app", s.GoModule)
	assert.Equal(t, []string{"fmt", "example.com/app/internal/store"}, s.Dependencies["cmd/app/main.go"])
	assert.Equal(t, []string{"internal/store/store.go"}, s.Resolved["cmd/app/main.go"])
	assert.Contains(t, s.EntryPoints, "cmd/app/main.go")
	assert.Empty(t, s.Cycles)
}

func TestStructure_TerraformModules(t *testing.T) {
	p := provider.NewFakeProvider()
	p.AddFile("main.tf", "module \"network\" {\n  source = \"./modules/network\"\n}\n\nmodule \"remote\" {\n  source = \"hashicorp/consul/aws\"\n}\n")
	p.AddFile("modules/network/vpc.tf", "resource \"aws_vpc\" \"main\" {}\n")

	a := NewAnalyzer(p, nil)
	fc, err := a.Context("main.tf")
	require.NoError(t, err)

	assert.Equal(t, []string{"./modules/network", "hashicorp/consul/aws"}, fc.Dependencies)
	assert.Equal(t, []string{"modules/network/vpc.tf"}, fc.Resolved)

	dep, err := a.Context("modules/network/vpc.tf")
	require.NoError(t, err)
	assert.Equal(t, []string{"main.tf"}, dep.DependentFiles)
}

func TestStructure_SkipsVendoredDirs(t *testing.T) {
	p := provider.NewFakeProvider()
	p.AddFile("app.js", "import x from './node_modules/x'\n")
	p.AddFile("node_modules/x/index.js", "module.exports = 1\n")
	p.AddFile(".git/hooks/run.py", "x = 1\n")

	s, err := NewAnalyzer(p, nil).Structure()
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js"}, s.Files)
	assert.Empty(t, s.Resolved["app.js"])
}

func TestContext_StandaloneFile(t *testing.T) {
	p := provider.NewFakeProvider()
	p.AddFile("notes/readme.txt", "import os\n")

	fc, err := NewAnalyzer(p, nil).Context("./notes/readme.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes/readme.txt", fc.FilePath)
	assert.Empty(t, fc.Dependencies)

	_, err = NewAnalyzer(p, nil).Context("missing.py")
	assert.Error(t, err)
}

func TestExtractImports(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		expected []string
	}{
		{
			name:     "python",
			file:     "a.py",
			content:  "import os, sys as system\nfrom .models import User\n",
			expected: []string{"os", "sys", ".models"},
		},
		{
			name:     "typescript",
			file:     "a.ts",
			content:  "import { x } from \"./x\"\nimport './side'\nconst y = require('y')\n",
			expected: []string{"./x", "./side", "y"},
		},
		{
			name:     "go fallback on parse error",
			file:     "a.go",
			content:  "package a\nimport \"fmt\"\nfunc {\n",
			expected: []string{"fmt"},
		},
		{
			name:     "unknown extension",
			file:     "a.rb",
			content:  "require 'x'\n",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractImports(tt.file, tt.content))
		})
	}
}

func TestFindCycles(t *testing.T) {
	g := newImportGraph()
	g.addEdge("a", "b")
	g.addEdge("b", "c")
	g.addEdge("c", "a")
	g.addEdge("c", "d")
	g.addEdge("e", "e")

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"e"}}, findCycles(g))
}
