// Package parser turns raw query text into plus-words and minus-words.
//
// A token prefixed with '-' is a minus-word: any document containing it is
// excluded from results. Every other token is a plus-word. Stop-words are
// recognised and dropped from both sets.
package parser

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

const minusPrefix = '-'

// StopWords is a case-sensitive set of words excluded from indexing and
// matching.
type StopWords map[string]struct{}

// NewStopWords builds a stop-word set. Each argument may hold several
// space-separated words; empty words are ignored.
func NewStopWords(texts ...string) (StopWords, error) {
	set := make(StopWords)
	for _, text := range texts {
		for word := range tokenizer.Words(text) {
			if !tokenizer.IsValidWord(word) {
				return nil, fmt.Errorf("stop word %q: %w", word, apperrors.ErrInvalidWord)
			}
			set[word] = struct{}{}
		}
	}
	return set, nil
}

func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Word is a single classified query token.
type Word struct {
	Text  string
	Minus bool
	Stop  bool
}

// Query is the parsed form of a raw query string.
type Query struct {
	RawQuery   string
	PlusWords  []string
	MinusWords []string
}

type Parser struct {
	stopWords StopWords
}

func New(stopWords StopWords) *Parser {
	return &Parser{stopWords: stopWords}
}

// ParseWord classifies token as a plus- or minus-word and strips the prefix.
func (p *Parser) ParseWord(token string) (Word, error) {
	if token == "" {
		return Word{}, apperrors.New(apperrors.ErrMalformedQuery, http.StatusBadRequest, "empty query word")
	}
	word := Word{Text: token}
	if token[0] == minusPrefix {
		word.Minus = true
		word.Text = token[1:]
	}
	if word.Text == "" {
		return Word{}, apperrors.New(apperrors.ErrMalformedQuery, http.StatusBadRequest, "no text after '-'")
	}
	if word.Text[0] == minusPrefix {
		return Word{}, apperrors.Newf(apperrors.ErrMalformedQuery, http.StatusBadRequest, "double minus in %q", token)
	}
	if !tokenizer.IsValidWord(word.Text) {
		return Word{}, fmt.Errorf("%w: %w: control character in %q",
			apperrors.ErrMalformedQuery, apperrors.ErrInvalidWord, word.Text)
	}
	word.Stop = p.stopWords.Contains(word.Text)
	return word, nil
}

// Parse splits text into sorted, de-duplicated plus- and minus-words.
func (p *Parser) Parse(text string) (*Query, error) {
	q, err := p.ParseAll(text)
	if err != nil {
		return nil, err
	}
	slices.Sort(q.PlusWords)
	q.PlusWords = slices.Compact(q.PlusWords)
	slices.Sort(q.MinusWords)
	q.MinusWords = slices.Compact(q.MinusWords)
	return q, nil
}

// ParseAll is Parse without de-duplication: words keep their query order
// and repeats. Callers that filter concurrently compact afterwards.
func (p *Parser) ParseAll(text string) (*Query, error) {
	q := &Query{
		RawQuery:   text,
		PlusWords:  make([]string, 0),
		MinusWords: make([]string, 0),
	}
	for token := range tokenizer.Words(text) {
		word, err := p.ParseWord(token)
		if err != nil {
			return nil, err
		}
		if word.Stop {
			continue
		}
		if word.Minus {
			q.MinusWords = append(q.MinusWords, word.Text)
		} else {
			q.PlusWords = append(q.PlusWords, word.Text)
		}
	}
	return q, nil
}
