package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate     = regexp.MustCompile(`\b(19|20)\d{2}\b|\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	reCurrency = regexp.MustCompile(`\b(usd|eur|dollars|euros)\b|[$€]`)
	reAnchor   = regexp.MustCompile(`\b(payment|installment|agreement|contract)\b`)
)

// heuristicConfidence scores how much the text looks like a readable agreement.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reCurrency.MatchString(txtL) {
		score += 0.2
	}
	if reAnchor.MatchString(txtL) {
		score += 0.2
	}
	if len(txt) > 200 {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
