package llm

import "context"

// EntitySpan is one tagged span as returned by a recognizer service.
type EntitySpan struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// EntityResponse is the JSON body shared by the sidecar and the LLM path.
type EntityResponse struct {
	Entities []EntitySpan `json:"entities"`
}

// EntityExtractor tags PERSON and DATE spans in contract text.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]EntitySpan, []byte /*rawJSON*/, error)
}
