// Package fields holds the deterministic text-mining steps applied to a converted
// contract: section anchoring, payment amounts and work clauses.
package fields

import (
	"fmt"
	"regexp"
	"strings"
)

// Anchor is the earliest match of a section's candidate phrases.
type Anchor struct {
	Offset int    // byte offset into the text
	Phrase string // the candidate that matched
}

// Section is a named section with its compiled candidate phrases, in priority order.
type Section struct {
	Name     string
	phrases  []string
	patterns []*regexp.Regexp
}

// NewSection compiles each phrase as a case-insensitive, word-bounded pattern.
func NewSection(name string, phrases []string) (*Section, error) {
	s := &Section{Name: name}
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// \b is ASCII-only: a phrase directly after an accented letter still anchors.
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("section %q phrase %q: %w", name, p, err)
		}
		s.phrases = append(s.phrases, p)
		s.patterns = append(s.patterns, re)
	}
	if len(s.patterns) == 0 {
		return nil, fmt.Errorf("section %q has no candidate phrases", name)
	}
	return s, nil
}

// MustSection is NewSection that panics on error; for package-level defaults.
func MustSection(name string, phrases []string) *Section {
	s, err := NewSection(name, phrases)
	if err != nil {
		panic(err)
	}
	return s
}

// Phrases returns the candidate phrases in priority order.
func (s *Section) Phrases() []string {
	return append([]string(nil), s.phrases...)
}

// Locate returns the earliest occurrence of any candidate phrase. Only a strictly
// smaller offset replaces the current best, so earlier candidates win ties.
func (s *Section) Locate(text string) (Anchor, bool) {
	best := Anchor{Offset: -1}
	for i, re := range s.patterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if best.Offset < 0 || loc[0] < best.Offset {
			best = Anchor{Offset: loc[0], Phrase: s.phrases[i]}
		}
	}
	if best.Offset < 0 {
		return Anchor{}, false
	}
	return best, true
}

// Window returns up to size characters of text starting at byte offset.
func Window(text string, offset, size int) string {
	if offset < 0 || offset >= len(text) || size <= 0 {
		return ""
	}
	rest := text[offset:]
	n := 0
	for i := range rest {
		if n == size {
			return rest[:i]
		}
		n++
	}
	return rest
}
