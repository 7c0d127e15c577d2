package advisor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JexSrs/go-ollama"
)

// Defaults for the local Ollama service
const (
	DefaultModel   = "codellama:7b"
	DefaultURL     = "http://localhost:11434"
	DefaultTimeout = 120 * time.Second
	healthTimeout  = 5 * time.Second
)

// Generator produces one completion for a system message and prompt
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// OllamaGenerator calls the Ollama generate API.
// Both clients carry an HTTP timeout so an abandoned request is torn down
// instead of outliving the caller's context.
type OllamaGenerator struct {
	client  *ollama.Ollama
	health  *ollama.Ollama
	baseURL string
	model   string
}

// NewOllamaGenerator creates a generator for the given server and model.
// timeout bounds each generate request; zero means DefaultTimeout.
func NewOllamaGenerator(host, model string, timeout time.Duration) (*OllamaGenerator, error) {
	if host == "" {
		host = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL %q: %w", host, err)
	}

	client := ollama.New(*u)
	client.Http = &http.Client{Timeout: timeout}
	health := ollama.New(*u)
	health.Http = &http.Client{Timeout: healthTimeout}

	return &OllamaGenerator{
		client:  client,
		health:  health,
		baseURL: strings.TrimRight(host, "/"),
		model:   model,
	}, nil
}

// Model returns the configured model name
func (g *OllamaGenerator) Model() string {
	return g.model
}

type generateResult struct {
	text string
	err  error
}

// Generate runs the non-streaming request in a goroutine so ctx bounds the wait
func (g *OllamaGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	done := make(chan generateResult, 1)
	go func() {
		res, err := g.client.Generate(
			g.client.Generate.WithModel(g.model),
			g.client.Generate.WithSystem(system),
			g.client.Generate.WithPrompt(prompt),
		)
		if err != nil {
			done <- generateResult{err: fmt.Errorf("ollama generate failed: %w", err)}
			return
		}
		if !res.Done {
			done <- generateResult{err: fmt.Errorf("ollama response is not complete")}
			return
		}
		done <- generateResult{text: strings.TrimSpace(strings.Trim(res.Response, "```"))}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("ollama generate: %w", ctx.Err())
	case r := <-done:
		return r.text, r.err
	}
}

type listResult struct {
	models *ollama.ListLocalModelsResponse
	err    error
}

// Available reports whether the server answers and lists the model.
// A model tag is also satisfied by any installed model sharing its base name.
func (g *OllamaGenerator) Available(ctx context.Context) error {
	done := make(chan listResult, 1)
	go func() {
		models, err := g.health.Models.List()
		done <- listResult{models: models, err: err}
	}()

	var r listResult
	select {
	case <-ctx.Done():
		return fmt.Errorf("ollama availability check: %w", ctx.Err())
	case r = <-done:
	}
	if r.err != nil {
		return fmt.Errorf("could not reach Ollama at %s: %w", g.baseURL, r.err)
	}

	base, _, _ := strings.Cut(g.model, ":")
	for _, m := range r.models.Models {
		if m.Name == g.model || strings.Contains(m.Name, base) {
			return nil
		}
	}
	return fmt.Errorf("model %s is not installed", g.model)
}
