package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/metrics"
	"github.com/petrarca/code-pattern-analyzer/internal/types"
	"github.com/petrarca/code-pattern-analyzer/internal/validation"
)

// ErrUnusableResponse is returned when no JSON object can be recovered from the model output
var ErrUnusableResponse = errors.New("advisory response is not usable")

// NeutralMetric is substituted for any metric the model did not report
const NeutralMetric = 50

var categoryKeys = []struct {
	key      string
	category types.Category
}{
	{"bugs", types.CategoryBug},
	{"security", types.CategorySecurity},
	{"optimizations", types.CategoryOptimization},
}

var metricKeys = []string{"complexity", "maintainability", "performance"}

// NeutralResult is the result reported when the model output cannot be used
func NeutralResult(lang types.Language) types.Result {
	return types.Result{
		Language: lang,
		Strategy: "advisory",
		Findings: types.NewFindings(),
		Metrics: types.Metrics{
			Complexity:      NeutralMetric,
			Maintainability: NeutralMetric,
			Performance:     NeutralMetric,
		},
		Source: types.SourceLLM,
	}
}

// ParseResponse recovers a result from raw model output.
// On ErrUnusableResponse the neutral result is returned alongside the error.
func ParseResponse(raw, content string, lang types.Language) (types.Result, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return NeutralResult(lang), err
	}

	repair(obj, strings.Split(content, "\n"))
	if err := validation.ValidateJSON(validation.AdvisoryResponseSchema, obj); err != nil {
		return NeutralResult(lang), fmt.Errorf("%w: %v", ErrUnusableResponse, err)
	}

	result := NeutralResult(lang)
	for _, ck := range categoryKeys {
		for _, item := range obj[ck.key].([]any) {
			result.Findings.Add(toFinding(item.(map[string]any), ck.category))
		}
	}

	m := obj["metrics"].(map[string]any)
	result.Metrics = types.Metrics{
		Complexity:      int(math.Round(metrics.Clamp(m["complexity"].(float64)))),
		Maintainability: metrics.Round2(metrics.Clamp(m["maintainability"].(float64))),
		Performance:     metrics.Round2(metrics.Clamp(m["performance"].(float64))),
	}
	return result, nil
}

// extractObject parses the whole text, else the span from the first "{" to the last "}"
func extractObject(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", ErrUnusableResponse)
	}

	whole, wholeErr := decodeObject(raw)
	if wholeErr == nil && hasAnyCategory(whole) {
		return whole, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if obj, err := decodeObject(raw[start : end+1]); err == nil {
			return obj, nil
		}
	}
	if wholeErr == nil {
		return whole, nil
	}
	return nil, fmt.Errorf("%w: no JSON object found", ErrUnusableResponse)
}

func decodeObject(text string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("not an object")
	}
	return obj, nil
}

func hasAnyCategory(obj map[string]any) bool {
	for _, ck := range categoryKeys {
		if _, ok := obj[ck.key]; ok {
			return true
		}
	}
	return false
}

// repair fills in missing lists and metrics, coerces line numbers into the file and adds snippets
func repair(obj map[string]any, lines []string) {
	for _, ck := range categoryKeys {
		list, _ := obj[ck.key].([]any)
		items := make([]any, 0, len(list))
		for _, entry := range list {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			msg, _ := item["message"].(string)
			if strings.TrimSpace(msg) == "" {
				continue
			}
			line := clampLine(coerceLine(item["line"]), len(lines))
			item["line"] = line
			if s, _ := item["code_snippet"].(string); s == "" {
				item["code_snippet"] = matcher.Snippet(lines, int(line))
			}
			if _, ok := item["code_snippet"].(string); !ok {
				item["code_snippet"] = ""
			}
			if sev, ok := item["severity"].(string); !ok || sev == "" {
				item["severity"] = string(types.SeverityMedium)
			}
			if _, ok := item["fix"].(map[string]any); !ok {
				delete(item, "fix")
			}
			items = append(items, item)
		}
		obj[ck.key] = items
	}

	m, _ := obj["metrics"].(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	for _, key := range metricKeys {
		m[key] = coerceMetric(m[key])
	}
	obj["metrics"] = m
}

// clampLine keeps a reported line within [1, lineCount]
func clampLine(line float64, lineCount int) float64 {
	if line < 1 {
		return 1
	}
	if lineCount > 0 && line > float64(lineCount) {
		return float64(lineCount)
	}
	return line
}

// coerceLine accepts numbers and numeric strings; anything else becomes 0
func coerceLine(v any) float64 {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		n = float64(parsed)
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return math.Trunc(n)
}

func coerceMetric(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return NeutralMetric
}

func toFinding(item map[string]any, category types.Category) types.Finding {
	f := types.Finding{
		Line:     int(item["line"].(float64)),
		Category: category,
	}
	f.Message, _ = item["message"].(string)
	f.CodeSnippet, _ = item["code_snippet"].(string)

	sev, _ := item["severity"].(string)
	if s, err := types.ParseSeverity(sev); err == nil && s.IsRuleSeverity() {
		f.Severity = s
	} else {
		f.Severity = types.SeverityMedium
	}

	if fix, ok := item["fix"].(map[string]any); ok {
		f.Fix = &types.Fix{}
		f.Fix.Before, _ = fix["before"].(string)
		f.Fix.After, _ = fix["after"].(string)
		f.Fix.Explanation, _ = fix["explanation"].(string)
	}
	return f
}
