// Package index holds the two-directional term-frequency index: word to
// per-document frequencies, and document to per-word frequencies. Both
// directions are updated together by Add and Remove.
//
// MemoryIndex has no internal locking. Concurrent readers are safe; writers
// must be serialised against readers and each other by the caller.
package index

import (
	"maps"
	"sort"
	"strings"
)

type termRow struct {
	term string
	docs map[int]float64
}

type MemoryIndex struct {
	wordToDocs map[string]*termRow
	docToWords map[int]map[string]float64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		wordToDocs: make(map[string]*termRow),
		docToWords: make(map[int]map[string]float64),
	}
}

// Add indexes words for docID. Every occurrence adds 1/len(words) to the
// word's frequency. An empty word list leaves the index untouched.
func (m *MemoryIndex) Add(docID int, words []string) {
	if len(words) == 0 {
		return
	}
	invWordCount := 1.0 / float64(len(words))
	forward, exists := m.docToWords[docID]
	if !exists {
		forward = make(map[string]float64)
		m.docToWords[docID] = forward
	}
	for _, word := range words {
		row, ok := m.wordToDocs[word]
		if !ok {
			// Keys are cloned so the index does not pin the text of the
			// document that introduced the word.
			term := strings.Clone(word)
			row = &termRow{term: term, docs: make(map[int]float64)}
			m.wordToDocs[term] = row
		}
		row.docs[docID] += invWordCount
		forward[row.term] += invWordCount
	}
}

// Remove erases docID from both directions, pruning rows that become
// empty. It reports whether docID had any indexed words.
func (m *MemoryIndex) Remove(docID int) bool {
	forward, exists := m.docToWords[docID]
	if !exists {
		return false
	}
	for word := range forward {
		row := m.wordToDocs[word]
		delete(row.docs, docID)
		if len(row.docs) == 0 {
			delete(m.wordToDocs, word)
		}
	}
	delete(m.docToWords, docID)
	return true
}

// WordFrequencies returns a copy of docID's forward row, or an empty map.
func (m *MemoryIndex) WordFrequencies(docID int) map[string]float64 {
	forward, exists := m.docToWords[docID]
	if !exists {
		return map[string]float64{}
	}
	return maps.Clone(forward)
}

// TermFrequency returns the frequency of word in docID.
func (m *MemoryIndex) TermFrequency(word string, docID int) (float64, bool) {
	tf, ok := m.docToWords[docID][word]
	return tf, ok
}

// Contains reports whether word occurs in docID.
func (m *MemoryIndex) Contains(word string, docID int) bool {
	_, ok := m.docToWords[docID][word]
	return ok
}

// Search returns word's postings ordered by document id.
func (m *MemoryIndex) Search(word string) PostingList {
	row, exists := m.wordToDocs[word]
	if !exists {
		return nil
	}
	result := make(PostingList, 0, len(row.docs))
	for docID, tf := range row.docs {
		result = append(result, Posting{DocID: docID, TermFreq: tf})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}

// DocumentWords returns docID's indexed words in sorted order.
func (m *MemoryIndex) DocumentWords(docID int) []string {
	forward := m.docToWords[docID]
	words := make([]string, 0, len(forward))
	for word := range forward {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Words returns the number of distinct indexed words.
func (m *MemoryIndex) Words() int {
	return len(m.wordToDocs)
}
