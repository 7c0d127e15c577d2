package types

import (
	"fmt"
	"strings"
)

// Severity is the ordinal rank attached to a rule and copied onto its findings
type Severity string

const (
	SeverityInfo     Severity = "info" // advisory suggestions only, never on rules
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RuleSeverities lists the severities a rule may carry, lowest first
var RuleSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank returns the ordinal position of the severity (info=0 ... critical=4, unknown=-1)
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return -1
	}
}

// Weight returns the score penalty weight used by the findings-based scores
func (s Severity) Weight() int {
	if r := s.Rank(); r > 0 {
		return r
	}
	return 0
}

// AtLeast reports whether s ranks at or above min
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// IsRuleSeverity reports whether s is valid on a rule
func (s Severity) IsRuleSeverity() bool {
	return s.Rank() >= 1
}

// ParseSeverity converts a string to a Severity (case-insensitive)
func ParseSeverity(value string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if s.Rank() < 0 {
		return "", fmt.Errorf("invalid severity: %s", value)
	}
	return s, nil
}
