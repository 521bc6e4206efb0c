package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func newTestParser(t *testing.T, stop string) *Parser {
	t.Helper()
	stopWords, err := NewStopWords(stop)
	require.NoError(t, err)
	return New(stopWords)
}

func TestParseWord(t *testing.T) {
	p := newTestParser(t, "in the")

	w, err := p.ParseWord("cat")
	require.NoError(t, err)
	require.Equal(t, Word{Text: "cat"}, w)

	w, err = p.ParseWord("-dog")
	require.NoError(t, err)
	require.Equal(t, Word{Text: "dog", Minus: true}, w)

	w, err = p.ParseWord("-the")
	require.NoError(t, err)
	require.True(t, w.Stop)
	require.True(t, w.Minus)
}

func TestParseWordMalformed(t *testing.T) {
	p := newTestParser(t, "")
	for _, token := range []string{"", "-", "--cat", "---", "ca\x01t", "-\x1fdog"} {
		_, err := p.ParseWord(token)
		require.Error(t, err, "token %q", token)
		require.True(t, errors.Is(err, apperrors.ErrMalformedQuery), "token %q", token)
	}

	_, err := p.ParseWord("ca\x01t")
	require.True(t, errors.Is(err, apperrors.ErrInvalidWord))
}

func TestParseDeduplicatesAndDropsStopWords(t *testing.T) {
	p := newTestParser(t, "in the")

	q, err := p.Parse("cat  -dog in the cat -dog hat -the")
	require.NoError(t, err)
	require.Equal(t, []string{"cat", "hat"}, q.PlusWords)
	require.Equal(t, []string{"dog"}, q.MinusWords)
	require.Equal(t, "cat  -dog in the cat -dog hat -the", q.RawQuery)
}

func TestParseAllKeepsDuplicates(t *testing.T) {
	p := newTestParser(t, "in")

	q, err := p.ParseAll("cat hat cat -dog in -dog")
	require.NoError(t, err)
	require.Equal(t, []string{"cat", "hat", "cat"}, q.PlusWords)
	require.Equal(t, []string{"dog", "dog"}, q.MinusWords)
}

func TestParseEmptyQuery(t *testing.T) {
	p := newTestParser(t, "")
	q, err := p.Parse("   ")
	require.NoError(t, err)
	require.Empty(t, q.PlusWords)
	require.Empty(t, q.MinusWords)
}

func TestParseRejectsMalformedToken(t *testing.T) {
	p := newTestParser(t, "")
	_, err := p.Parse("fluffy --cat")
	require.ErrorIs(t, err, apperrors.ErrMalformedQuery)
	_, err = p.Parse("fluffy - cat")
	require.ErrorIs(t, err, apperrors.ErrMalformedQuery)
}

func TestNewStopWords(t *testing.T) {
	stop, err := NewStopWords("and  with", "in", "")
	require.NoError(t, err)
	require.Len(t, stop, 3)
	require.True(t, stop.Contains("with"))
	require.False(t, stop.Contains("With"))

	_, err = NewStopWords("a\x02nd")
	require.ErrorIs(t, err, apperrors.ErrInvalidWord)
}
