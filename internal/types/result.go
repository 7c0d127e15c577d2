package types

// Metrics is the raw-text quality bundle recomputed on every analysis
type Metrics struct {
	Complexity      int     `json:"complexity" yaml:"complexity"`
	Maintainability float64 `json:"maintainability" yaml:"maintainability"`
	Performance     float64 `json:"performance" yaml:"performance"`
}

// Scores are the findings-derived quality scores
type Scores struct {
	Reliability float64 `json:"reliability" yaml:"reliability"`
	Security    float64 `json:"security" yaml:"security"`
	Performance float64 `json:"performance" yaml:"performance"`
}

// ComplexityReport holds the flat cross-language complexity metrics
type ComplexityReport struct {
	Cyclomatic           int     `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	Cognitive            int     `json:"cognitive_complexity" yaml:"cognitive_complexity"`
	MaintainabilityIndex float64 `json:"maintainability_index" yaml:"maintainability_index"`
	DuplicationPct       float64 `json:"duplication_percentage" yaml:"duplication_percentage"`
}

// Result is the bundle returned by a single analysis
type Result struct {
	Language    Language          `json:"language" yaml:"language"`
	Strategy    string            `json:"strategy" yaml:"strategy"`
	Findings    Findings          `json:"findings" yaml:"findings"`
	Metrics     Metrics           `json:"metrics" yaml:"metrics"`
	Scores      *Scores           `json:"scores,omitempty" yaml:"scores,omitempty"`
	Complexity  *ComplexityReport `json:"complexity_metrics,omitempty" yaml:"complexity_metrics,omitempty"`
	Suggestions []Suggestion      `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Source      string            `json:"source,omitempty" yaml:"source,omitempty"` // "pattern" or "llm"
}

// Result sources
const (
	SourcePattern = "pattern"
	SourceLLM     = "llm"
)
