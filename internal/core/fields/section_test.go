package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateEarliestOffsetWins(t *testing.T) {
	s := MustSection("Second Payment", []string{"Second Payment", "Second Installment"})
	text := "The Second Installment of $500 follows. See Second Payment terms below."

	anchor, ok := s.Locate(text)
	require.True(t, ok)
	assert.Equal(t, "Second Installment", anchor.Phrase)
	assert.Equal(t, strings.Index(text, "Second Installment"), anchor.Offset)
}

func TestLocateTieKeepsListOrder(t *testing.T) {
	s := MustSection("x", []string{"Payment", "payment"})

	anchor, ok := s.Locate("payment due")
	require.True(t, ok)
	assert.Equal(t, 0, anchor.Offset)
	assert.Equal(t, "Payment", anchor.Phrase)
}

func TestLocateCaseInsensitiveWordBoundary(t *testing.T) {
	s := MustSection("Initial Payment", []string{"Initial Payment"})

	_, ok := s.Locate("noninitial paymentsless text")
	assert.False(t, ok)

	anchor, ok := s.Locate("see INITIAL PAYMENT: $10")
	require.True(t, ok)
	assert.Equal(t, 4, anchor.Offset)
}

func TestLocateNoCandidate(t *testing.T) {
	s := MustSection("Initial Payment", []string{"Initial Payment", "First Payment"})

	_, ok := s.Locate("nothing relevant here")
	assert.False(t, ok)
}

func TestNewSectionRejectsEmpty(t *testing.T) {
	_, err := NewSection("empty", []string{"", "  "})
	assert.Error(t, err)
}

func TestNewSectionQuotesPhrase(t *testing.T) {
	s, err := NewSection("odd", []string{"Pay (1)"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pay (1)"}, s.Phrases())

	_, ok := s.Locate("Pay 1")
	assert.False(t, ok)
}

func TestWindowClipsAtEnd(t *testing.T) {
	assert.Equal(t, "lo world", Window("hello world", 3, 1000))
	assert.Equal(t, "lo", Window("hello world", 3, 2))
	assert.Equal(t, "", Window("hello", 5, 10))
	assert.Equal(t, "", Window("hello", -1, 10))
}

func TestWindowCountsCharacters(t *testing.T) {
	text := "€€€abc"
	assert.Equal(t, "€€", Window(text, 0, 2))
	assert.Equal(t, "€ab", Window(text, len("€€"), 3))
}

func TestLocateBoundaryIsASCII(t *testing.T) {
	s := MustSection("Initial Payment", []string{"Initial Payment"})

	anchor, ok := s.Locate("éInitial Payment: $10")
	require.True(t, ok)
	assert.Equal(t, len("é"), anchor.Offset)
}
