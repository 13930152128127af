package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkClauses(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single", "...your work Graphic Design, currently underway...", []string{"Graphic Design"}},
		{"no closing anchor", "your work Graphic Design is done", []string{}},
		{"case insensitive", "YOUR WORK Logo, Currently pending", []string{"Logo"}},
		{"shortest span", "your work A, currently and B, currently", []string{"A"}},
		{
			"several",
			"your work Copywriting, currently due. Later your work Editing, currently paused.",
			[]string{"Copywriting", "Editing"},
		},
		{"empty text", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorkClauses(tt.text)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}
