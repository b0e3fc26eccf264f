package shop

import "strings"

// AnswerChecker matches puzzle answer submissions against the configured
// answer set. Matching ignores case and surrounding whitespace.
type AnswerChecker struct {
	answers map[string]string
}

// NewAnswerChecker creates a checker from a questionID -> answer map.
func NewAnswerChecker(answers map[string]string) *AnswerChecker {
	normalized := make(map[string]string, len(answers))
	for id, answer := range answers {
		normalized[id] = normalize(answer)
	}

	return &AnswerChecker{answers: normalized}
}

// Check reports whether the submitted answer is correct. Unknown question
// IDs are never correct.
func (c *AnswerChecker) Check(questionID, answer string) bool {
	expected, ok := c.answers[questionID]
	if !ok {
		return false
	}

	return normalize(answer) == expected
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
