package pipeline

import "strings"

// Phrase lists for the informational-query classifier. Action phrases are
// checked first: a query that both asks for information and demands action
// ("show me what to fix") is treated as action-oriented.
var (
	informationalPhrases = []string{
		"what is", "what are", "what was", "what will",
		"how is", "how are", "how was", "how will",
		"show me", "tell me", "explain", "describe",
		"list", "give me", "provide",
	}

	actionPhrases = []string{
		"optimize", "fix", "improve", "why is", "why are",
		"what's wrong", "what went wrong", "issue", "problem",
		"recommend", "suggest", "should", "need to",
	}
)

// isInformationalQuery reports whether a query merely asks for information
// rather than for action. Used by the diagnosis shortcut and the early-exit
// rule.
func isInformationalQuery(query string) bool {
	q := strings.ToLower(query)

	for _, phrase := range actionPhrases {
		if strings.Contains(q, phrase) {
			return false
		}
	}
	for _, phrase := range informationalPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}
