// Package ner is the entity-recognition boundary. A Recognizer tags spans in
// contract text. The pipeline only consumes the first PERSON and the first DATE.
package ner

import (
	"context"
	"sort"
	"strings"

	"github.com/joseph-ayodele/contracts-parser/internal/llm"
)

type Kind string

const (
	KindPerson Kind = "PERSON"
	KindDate   Kind = "DATE"
)

// Entity is a tagged span. Start and End are byte offsets into the recognized
// text when the provider reports them, otherwise both are -1.
type Entity struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Recognizer returns entity spans in document order.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// RecognizerFunc adapts a plain function to Recognizer.
type RecognizerFunc func(ctx context.Context, text string) ([]Entity, error)

func (f RecognizerFunc) Recognize(ctx context.Context, text string) ([]Entity, error) {
	return f(ctx, text)
}

// First returns the text of the first entity of the given kind.
func First(entities []Entity, kind Kind) (string, bool) {
	for _, e := range entities {
		if e.Kind == kind {
			return e.Text, true
		}
	}
	return "", false
}

// fromSpans converts provider spans. Offsets are kept only when the span text is
// actually found at them; spans with offsets are then ordered by position.
func fromSpans(text string, spans []llm.EntitySpan) []Entity {
	out := make([]Entity, 0, len(spans))
	positioned := true
	for _, s := range spans {
		e := Entity{Kind: Kind(strings.ToUpper(strings.TrimSpace(s.Label))), Text: s.Text, Start: -1, End: -1}
		if s.Start >= 0 && s.End > s.Start && s.End <= len(text) && text[s.Start:s.End] == s.Text {
			e.Start, e.End = s.Start, s.End
		} else {
			positioned = false
		}
		out = append(out, e)
	}
	if positioned {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	}
	return out
}
