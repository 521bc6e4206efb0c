// Package tokenizer splits raw text into space-delimited words. Words are
// substrings of the input, so they share its backing memory.
package tokenizer

import (
	"iter"
	"strings"
)

const separator = ' '

// Words returns a lazy sequence of the non-empty words in text. Runs of
// separators collapse and leading or trailing separators yield nothing. The
// sequence can be ranged over any number of times.
func Words(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i := 0; i < len(text); i++ {
			if text[i] == separator {
				if start >= 0 {
					if !yield(text[start:i]) {
						return
					}
					start = -1
				}
				continue
			}
			if start < 0 {
				start = i
			}
		}
		if start >= 0 {
			yield(text[start:])
		}
	}
}

// Split collects every word of text into a slice.
func Split(text string) []string {
	words := make([]string, 0, strings.Count(text, " ")+1)
	for word := range Words(text) {
		words = append(words, word)
	}
	return words
}

// IsValidWord reports whether word is free of control characters, that is
// bytes below the space character.
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < separator {
			return false
		}
	}
	return true
}
