package advisor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/rules"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

const sampleCode = "def f():\n    try:\n        x = 1\n    except:\n        pass\n    print(x)\n"

type fakeGenerator struct {
	response string
	err      error
	delay    time.Duration
	prompts  []string
}

func (g *fakeGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.delay):
		}
	}
	return g.response, g.err
}

func newEngine(t *testing.T) *matcher.Engine {
	t.Helper()
	catalog, err := rules.Default()
	require.NoError(t, err)
	registry, err := matcher.DefaultRegistry(catalog, nil)
	require.NoError(t, err)
	engine, err := matcher.NewEngine(registry, matcher.Options{})
	require.NoError(t, err)
	return engine
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantErr     bool
		bugs        int
		security    int
		complexity  int
		maintain    float64
		firstLine   int
		snippetFrom string
	}{
		{
			name:       "complete json",
			raw:        `{"bugs":[{"line":4,"message":"Bare except","severity":"high","code_snippet":"except:"}],"security":[],"optimizations":[],"metrics":{"complexity":20,"maintainability":80,"performance":90}}`,
			bugs:       1,
			complexity: 20,
			maintain:   80,
			firstLine:  4,
		},
		{
			name:        "json wrapped in prose with missing keys",
			raw:         "Here is my review:\n{\"bugs\":[{\"line\":\"4\",\"message\":\"Bare except\"}]}\nHope this helps.",
			bugs:        1,
			complexity:  NeutralMetric,
			maintain:    NeutralMetric,
			firstLine:   4,
			snippetFrom: sampleCode,
		},
		{
			name:       "metrics out of range are clamped",
			raw:        `{"bugs":[],"security":[{"line":1,"message":"eval"}],"optimizations":[],"metrics":{"complexity":250,"maintainability":-3,"performance":"70"}}`,
			security:   1,
			complexity: 100,
			maintain:   0,
			firstLine:  -1,
		},
		{
			name:       "items without message are dropped",
			raw:        `{"bugs":[{"line":2},"oops",{"line":3,"message":"Real"}]}`,
			bugs:       1,
			complexity: NeutralMetric,
			maintain:   NeutralMetric,
			firstLine:  3,
		},
		{
			name:    "no json",
			raw:     "I could not analyze this code.",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "invalid fix shape",
			raw:     `{"bugs":[{"line":1,"message":"x","fix":{"before":3}}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResponse(tt.raw, sampleCode, types.LanguagePython)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnusableResponse)
				assert.Equal(t, NeutralResult(types.LanguagePython), result)
				return
			}
			require.NoError(t, err)

			assert.Len(t, result.Findings.Bugs, tt.bugs)
			assert.Len(t, result.Findings.Security, tt.security)
			assert.Equal(t, tt.complexity, result.Metrics.Complexity)
			assert.Equal(t, tt.maintain, result.Metrics.Maintainability)
			assert.Equal(t, types.SourceLLM, result.Source)

			if tt.firstLine > 0 {
				first := result.Findings.Bugs[0]
				assert.Equal(t, tt.firstLine, first.Line)
				assert.Equal(t, types.CategoryBug, first.Category)
				if tt.snippetFrom != "" {
					assert.Equal(t, tt.snippetFrom, first.CodeSnippet)
					assert.Equal(t, types.SeverityMedium, first.Severity)
				}
			}
		})
	}
}

func TestAdvisor_Analyze(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n{\"bugs\":[{\"line\":4,\"message\":\"Bare except\",\"severity\":\"critical\"}]}\n```"}
	a := New(gen, Options{})

	resp, err := a.Analyze(context.Background(), sampleCode, types.LanguagePython)
	require.NoError(t, err)
	assert.True(t, resp.Usable)
	require.Len(t, resp.Result.Findings.Bugs, 1)
	assert.Equal(t, types.SeverityCritical, resp.Result.Findings.Bugs[0].Severity)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "expert python developer")
	assert.Contains(t, gen.prompts[0], "```python\n"+sampleCode)
}

func TestAdvisor_UnusableIsNotAnError(t *testing.T) {
	a := New(&fakeGenerator{response: "no idea"}, Options{})

	resp, err := a.Analyze(context.Background(), sampleCode, types.LanguagePython)
	require.NoError(t, err)
	assert.False(t, resp.Usable)
	assert.Equal(t, NeutralMetric, resp.Result.Metrics.Complexity)
	assert.Empty(t, resp.Result.Findings.All())
}

func TestAdvisor_AnalyzeWithFallback(t *testing.T) {
	engine := newEngine(t)

	tests := []struct {
		name   string
		gen    *fakeGenerator
		opts   Options
		source string
	}{
		{
			name:   "usable advisory",
			gen:    &fakeGenerator{response: `{"bugs":[],"security":[],"optimizations":[],"metrics":{"complexity":1,"maintainability":2,"performance":3}}`},
			source: types.SourceLLM,
		},
		{
			name:   "generator error",
			gen:    &fakeGenerator{err: errors.New("connection refused")},
			source: types.SourcePattern,
		},
		{
			name:   "timeout",
			gen:    &fakeGenerator{response: "{}", delay: time.Second},
			opts:   Options{Timeout: 10 * time.Millisecond},
			source: types.SourcePattern,
		},
		{
			name:   "unusable output",
			gen:    &fakeGenerator{response: "sorry"},
			source: types.SourcePattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(tt.gen, tt.opts).AnalyzeWithFallback(context.Background(), engine, sampleCode, "sample.py")
			assert.Equal(t, tt.source, result.Source)
			assert.Equal(t, types.LanguagePython, result.Language)
			if tt.source == types.SourcePattern {
				assert.NotEmpty(t, result.Findings.Bugs)
			}
		})
	}
}

func TestParseResponse_LinesStayInsideFile(t *testing.T) {
	lineCount := len(strings.Split(sampleCode, "\n"))

	tests := []struct {
		name string
		line string
		want int
	}{
		{"missing line", `"message":"no line"`, 1},
		{"text line", `"line":"near the top","message":"text line"`, 1},
		{"zero", `"line":0,"message":"zero"`, 1},
		{"negative", `"line":-4,"message":"negative"`, 1},
		{"past the end", `"line":500,"message":"too far"`, lineCount},
		{"inside", `"line":4,"message":"inside"`, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResponse(`{"bugs":[{`+tt.line+`}]}`, sampleCode, types.LanguagePython)
			require.NoError(t, err)
			require.Len(t, result.Findings.Bugs, 1)

			f := result.Findings.Bugs[0]
			assert.Equal(t, tt.want, f.Line)
			assert.GreaterOrEqual(t, f.Line, 1)
			assert.LessOrEqual(t, f.Line, lineCount)
			assert.NotEmpty(t, f.CodeSnippet)
		})
	}
}

func TestBuildPrompt_Truncates(t *testing.T) {
	prompt, truncated := BuildPrompt(strings.Repeat("x = 1\n", 100), types.LanguagePython, 50)
	assert.True(t, truncated)
	assert.Len(t, prompt, 50)

	_, truncated = BuildPrompt("x = 1", types.LanguagePython, 0)
	assert.False(t, truncated)
}

func TestOllamaGenerator_Available(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		model   string
		wantErr bool
	}{
		{name: "exact model", status: http.StatusOK, body: `{"models":[{"name":"codellama:7b"}]}`, model: "codellama:7b"},
		{name: "base model", status: http.StatusOK, body: `{"models":[{"name":"codellama:13b"}]}`, model: "codellama:7b"},
		{name: "missing model", status: http.StatusOK, body: `{"models":[{"name":"llama3"}]}`, model: "codellama:7b", wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, model: "codellama:7b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/tags", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := NewOllamaGenerator(srv.URL, tt.model, time.Second)
			require.NoError(t, err)

			err = g.Available(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewOllamaGenerator_Defaults(t *testing.T) {
	g, err := NewOllamaGenerator("", "", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, g.Model())
	assert.Equal(t, DefaultTimeout, g.client.Http.Timeout)
	assert.Equal(t, healthTimeout, g.health.Http.Timeout)
}

func TestOllamaGenerator_TimeoutEndsRequest(t *testing.T) {
	aborted := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			aborted <- struct{}{}
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	g, err := NewOllamaGenerator(srv.URL, "codellama:7b", 100*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = g.Generate(ctx, "system", "prompt")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-aborted:
	case <-time.After(5 * time.Second):
		t.Fatal("generate request still in flight after its timeout")
	}
}

func TestOllamaGenerator_AvailableHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	g, err := NewOllamaGenerator(srv.URL, "codellama:7b", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.Available(ctx), context.DeadlineExceeded)
}
