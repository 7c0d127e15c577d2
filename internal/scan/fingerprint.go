package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// IssueID returns a deterministic 20-character ID for an issue.
// Rebuilding the same tree yields the same IDs, so reports can be diffed across runs.
// The message takes part because heuristic findings may carry no rule ID.
func IssueID(file, ruleID, message string, line int) string {
	content := fmt.Sprintf("%s:%d:%s:%s", file, line, ruleID, message)
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])[:20]
}
