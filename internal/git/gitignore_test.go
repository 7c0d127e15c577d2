package git

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petrarca/code-pattern-analyzer/internal/provider"
)

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"directories lose trailing slash", "__pycache__/\nnode_modules\ntarget/\n", []string{"__pycache__", "node_modules", "target"}},
		{"comments and blanks dropped", "# generated\n\n*.pyc\n\t# indented comment\n*.class\n", []string{"*.pyc", "*.class"}},
		{"negations skipped", "vendor/**\n!vendor/keep.go\n", []string{"vendor/**"}},
		{"surrounding whitespace trimmed", "  coverage.out  \n", []string{"coverage.out"}},
		{"empty", "", []string{}},
		{"comments only", "# one\n# two\n", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePatterns([]byte(tt.content)))
		})
	}
}

func TestIgnoreStack(t *testing.T) {
	var s IgnoreStack
	assert.False(t, s.Push(".", nil))
	assert.Equal(t, 0, s.Depth())

	assert.True(t, s.Push(".", []string{"**/*_pb2.py", "generated"}))
	assert.True(t, s.ShouldExclude("api_pb2.py", "proto/api_pb2.py"))
	assert.True(t, s.ShouldExclude("generated", "src/generated"))
	assert.False(t, s.ShouldExclude("api.py", "proto/api.py"))

	s.Pop()
	s.Pop()
	assert.Equal(t, 0, s.Depth())
	assert.False(t, s.ShouldExclude("generated", "generated"))
}

func TestIgnoreLoader(t *testing.T) {
	p := provider.NewFakeProvider()
	p.AddFile(".gitignore", "*.log\nbuild/\n")
	p.AddFile(".git/info/exclude", "secret.txt\n")
	p.AddFile("web/.gitignore", "dist\n")

	loader := NewIgnoreLoader(p, nil)
	loader.Initialize([]string{"**/*.min.js"}, nil)
	assert.Equal(t, 2, loader.Depth())

	loader.Enter(".")
	assert.True(t, loader.ShouldExclude("app.log", "app.log"))
	assert.True(t, loader.ShouldExclude("build", "build"))
	assert.True(t, loader.ShouldExclude("secret.txt", "secret.txt"))
	assert.True(t, loader.ShouldExclude("a.min.js", "web/a.min.js"))
	assert.False(t, loader.ShouldExclude("dist", "dist"))

	loader.Enter("web")
	assert.True(t, loader.ShouldExclude("dist", "web/dist"))

	loader.Enter("web/src") // no .gitignore here
	loader.Leave()
	assert.True(t, loader.ShouldExclude("dist", "web/dist"))

	loader.Leave()
	assert.False(t, loader.ShouldExclude("dist", "dist"))

	loader.Leave()
	loader.Leave() // unbalanced Leave is a no-op
	assert.Equal(t, 2, loader.Depth())
}
