package matcher

import (
	"log/slog"
	"sort"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// Input is what a strategy receives for one analysis
type Input struct {
	Content  string
	Filename string
	Language types.Language
	Lines    []string
	Keep     func(types.Finding) bool
	Logger   *slog.Logger
}

func (in Input) keep(f types.Finding) bool {
	return in.Keep == nil || in.Keep(f)
}

// Strategy is one way of turning content into findings
// Implement this interface to add new analysis variants
type Strategy interface {
	// Name returns the strategy identifier used on the command line (e.g., "catalog")
	Name() string

	// Analyze produces the result bundle for the input
	Analyze(in Input) types.Result
}

// StrategyRegistry manages registered strategies
type StrategyRegistry struct {
	strategies map[string]Strategy
}

// NewStrategyRegistry creates an empty registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{strategies: make(map[string]Strategy)}
}

// Register adds a strategy, replacing any previous one with the same name
func (r *StrategyRegistry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get returns the strategy for a name, or nil if not found
func (r *StrategyRegistry) Get(name string) Strategy {
	return r.strategies[name]
}

// Names returns all registered strategy names, sorted
func (r *StrategyRegistry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for n := range r.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
