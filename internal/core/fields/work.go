package fields

import "regexp"

var reWork = regexp.MustCompile(`(?i)your work (.*?), currently`)

// WorkClauses returns every shortest span between "your work " and ", currently",
// left to right. It never returns nil.
func WorkClauses(text string) []string {
	matches := reWork.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
