package fields

import (
	"regexp"
	"strings"
)

// A currency marker (\s is ASCII whitespace), then a comma-grouped amount; the two-digit decimal part is matched and dropped.
var reMoney = regexp.MustCompile(`(?:[$€]\s*|(?i:USD|EUR|dollars|euros)\s+)([0-9]+(?:,[0-9]{3})*)(?:\.\d{2})?`)

// ExtractAmount returns the first currency amount in window as symbol+digits, e.g. "$12500".
// The symbol is "€" whenever the window mentions € or EUR anywhere, otherwise "$".
func ExtractAmount(window string) (string, bool) {
	m := reMoney.FindStringSubmatch(window)
	if m == nil {
		return "", false
	}
	amount := strings.ReplaceAll(m[1], ",", "")
	symbol := "$"
	if strings.Contains(window, "€") || strings.Contains(strings.ToLower(window), "eur") {
		symbol = "€"
	}
	return symbol + amount, true
}

// SectionPayment anchors the section in text and extracts the amount from the
// windowSize characters following the anchor.
func SectionPayment(text string, section *Section, windowSize int) (string, bool) {
	anchor, ok := section.Locate(text)
	if !ok {
		return "", false
	}
	return ExtractAmount(Window(text, anchor.Offset, windowSize))
}
