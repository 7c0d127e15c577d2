package types

// Finding is one reported occurrence of a rule matching the analyzed text
type Finding struct {
	Line        int      `json:"line" yaml:"line"`
	Message     string   `json:"message" yaml:"message"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Category    Category `json:"category" yaml:"category"`
	CodeSnippet string   `json:"code_snippet" yaml:"code_snippet"`
	Fix         *Fix     `json:"fix,omitempty" yaml:"fix,omitempty"`
	RuleID      string   `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
	Group       string   `json:"group,omitempty" yaml:"group,omitempty"`
}

// Findings groups findings by category, each list in discovery order
type Findings struct {
	Bugs          []Finding `json:"bugs" yaml:"bugs"`
	Security      []Finding `json:"security" yaml:"security"`
	Optimizations []Finding `json:"optimizations" yaml:"optimizations"`
}

// NewFindings returns an empty grouping with non-nil lists
func NewFindings() Findings {
	return Findings{
		Bugs:          []Finding{},
		Security:      []Finding{},
		Optimizations: []Finding{},
	}
}

// Add appends a finding to the list of its category
func (f *Findings) Add(finding Finding) {
	switch finding.Category {
	case CategoryBug:
		f.Bugs = append(f.Bugs, finding)
	case CategorySecurity:
		f.Security = append(f.Security, finding)
	case CategoryOptimization:
		f.Optimizations = append(f.Optimizations, finding)
	}
}

// ByCategory returns the list of a category
func (f *Findings) ByCategory(c Category) []Finding {
	switch c {
	case CategoryBug:
		return f.Bugs
	case CategorySecurity:
		return f.Security
	case CategoryOptimization:
		return f.Optimizations
	}
	return nil
}

// All returns every finding in category order
func (f *Findings) All() []Finding {
	all := make([]Finding, 0, f.Len())
	all = append(all, f.Bugs...)
	all = append(all, f.Security...)
	all = append(all, f.Optimizations...)
	return all
}

// Len returns the total number of findings
func (f *Findings) Len() int {
	return len(f.Bugs) + len(f.Security) + len(f.Optimizations)
}

// Suggestion is an advisory note that is not tied to a rule match
type Suggestion struct {
	Type     string   `json:"type" yaml:"type"`
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
}

// SuggestionsFromFindings flattens findings into typed suggestions (type = category)
func SuggestionsFromFindings(f Findings) []Suggestion {
	suggestions := make([]Suggestion, 0, f.Len())
	for _, finding := range f.All() {
		suggestions = append(suggestions, Suggestion{
			Type:     string(finding.Category),
			Message:  finding.Message,
			Severity: finding.Severity,
			Line:     finding.Line,
		})
	}
	return suggestions
}
