package llm

import "strings"

// MaxPromptChars caps the contract text sent to the model.
const MaxPromptChars = 12000

// BuildSystemPrompt tells the model which labels to produce and how to report offsets.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a named-entity tagger for service agreements. Return ONLY JSON that matches the provided JSON Schema.",
		"Tag the contracting party's personal names as PERSON and calendar dates as DATE.",
		"Copy each entity's text exactly as it appears in the input; do not normalize dates or names.",
		"start and end are character offsets into the input text, end exclusive.",
		"List entities in the order they appear. If none are present, return an empty list.",
		"Never output null.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt wraps the (possibly truncated) contract text.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Contract text:\n")
	b.WriteString(truncateRunes(text, MaxPromptChars))
	return b.String()
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
