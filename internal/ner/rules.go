package ner

import (
	"context"
	"regexp"
	"sort"
)

const (
	nameWord  = `[A-Z][a-z]+(?:[-'’][A-Z]?[a-z]+)?`
	fullName  = nameWord + `(?:[ \t]+(?:[A-Z]\.[ \t]+)?` + nameWord + `){0,2}`
	honorific = `(?:Mr|Mrs|Ms|Miss|Mx|Dr|Prof)\.?[ \t]+`
	month     = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`
)

type rule struct {
	kind  Kind
	re    *regexp.Regexp
	group int // submatch holding the entity text
}

var defaultRules = []rule{
	{KindPerson, regexp.MustCompile(`\b` + honorific + `(` + fullName + `)`), 1},
	{KindPerson, regexp.MustCompile(`\b(?:Dear|Hi|Hello)[ \t]+(?:` + honorific + `)?(` + fullName + `)`), 1},
	{KindPerson, regexp.MustCompile(`(?i:\b(?:name|client|contractor|freelancer|artist|designer|signed by|prepared for|attention|attn))[ \t]*[:\-]?[ \t]*(` + nameWord + `(?:[ \t]+(?:[A-Z]\.[ \t]+)?` + nameWord + `){1,2})`), 1},
	{KindDate, regexp.MustCompile(`(?i)\b` + month + `\.?[ \t]+\d{1,2}(?:st|nd|rd|th)?,?[ \t]+\d{4}\b`), 0},
	{KindDate, regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?[ \t]+(?:of[ \t]+)?` + month + `\.?,?[ \t]+\d{4}\b`), 0},
	{KindDate, regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), 0},
	{KindDate, regexp.MustCompile(`\b\d{1,2}[/.]\d{1,2}[/.](?:\d{4}|\d{2})\b`), 0},
}

// RuleRecognizer is the offline default: anchored person names and common date
// shapes. It is deterministic and safe for concurrent use.
type RuleRecognizer struct {
	rules []rule
}

func NewRuleRecognizer() *RuleRecognizer {
	return &RuleRecognizer{rules: defaultRules}
}

func (r *RuleRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found []Entity
	for _, ru := range r.rules {
		for _, m := range ru.re.FindAllStringSubmatchIndex(text, -1) {
			s, e := m[2*ru.group], m[2*ru.group+1]
			if s < 0 {
				continue
			}
			found = append(found, Entity{Kind: ru.kind, Text: text[s:e], Start: s, End: e})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Start != found[j].Start {
			return found[i].Start < found[j].Start
		}
		return found[i].End > found[j].End
	})

	out := found[:0]
	end := -1
	for _, e := range found {
		if e.Start < end {
			continue
		}
		out = append(out, e)
		end = e.End
	}
	return out, nil
}
