package advisor

import (
	"fmt"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// DefaultMaxPromptLength bounds the prompt sent to the model
const DefaultMaxPromptLength = 16000

const systemMessage = "You are an expert code reviewer specializing in identifying bugs, security issues, and performance optimizations. Focus on providing actionable, clear, and specific feedback."

const promptTemplate = `You are an expert %[1]s developer with years of experience in code review and static analysis.

Analyze the following code for:
1. Bugs and logical errors
2. Security vulnerabilities
3. Performance optimizations

For each issue you find:
- Include the line number
- Provide a clear explanation of the issue
- Rate the severity (low, medium, high, critical)
- Include a code snippet showing the issue
- Suggest a specific fix

Return ONLY a valid JSON object with the following structure:
{
  "bugs": [
    {
      "line": <line_number>,
      "message": "<issue_description>",
      "severity": "<severity_level>",
      "code_snippet": "<relevant_code>",
      "fix": {
        "before": "<problematic_code>",
        "after": "<fixed_code>",
        "explanation": "<explanation_of_fix>"
      }
    }
  ],
  "security": [],
  "optimizations": [],
  "metrics": {
    "complexity": <0-100>,
    "maintainability": <0-100>,
    "performance": <0-100>
  }
}

The "security" and "optimizations" lists use the same item structure as "bugs".

Here is the code to analyze:

` + "```%[1]s\n%[2]s\n```" + `

Respond with ONLY a valid, properly formatted JSON object following the specified structure.`

// BuildPrompt renders the review prompt, truncated to maxLen bytes when maxLen > 0
func BuildPrompt(content string, lang types.Language, maxLen int) (string, bool) {
	prompt := fmt.Sprintf(promptTemplate, lang, content)
	if maxLen > 0 && len(prompt) > maxLen {
		return prompt[:maxLen], true
	}
	return prompt, false
}
