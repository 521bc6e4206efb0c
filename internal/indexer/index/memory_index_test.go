package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func requireConsistent(t *testing.T, m *MemoryIndex) {
	t.Helper()
	for docID, forward := range m.docToWords {
		var sum float64
		for word, tf := range forward {
			sum += tf
			row, ok := m.wordToDocs[word]
			require.True(t, ok, "word %q missing from inverted index", word)
			require.Equal(t, tf, row.docs[docID])
		}
		require.InDelta(t, 1.0, sum, epsilon)
	}
	for word, row := range m.wordToDocs {
		require.NotEmpty(t, row.docs, "empty row for %q", word)
		for docID, tf := range row.docs {
			require.Equal(t, tf, m.docToWords[docID][word])
		}
	}
}

func TestAddComputesTermFrequencies(t *testing.T) {
	m := NewMemoryIndex()
	m.Add(1, []string{"fluffy", "cat", "fluffy", "tail"})

	freqs := m.WordFrequencies(1)
	require.Len(t, freqs, 3)
	require.InDelta(t, 0.5, freqs["fluffy"], epsilon)
	require.InDelta(t, 0.25, freqs["cat"], epsilon)
	require.Len(t, m.Search("cat"), 1)
	requireConsistent(t, m)
}

func TestAddEmptyDocument(t *testing.T) {
	m := NewMemoryIndex()
	m.Add(1, nil)
	require.Empty(t, m.WordFrequencies(1))
	require.Zero(t, m.Words())
}

func TestRemovePrunesEmptyRows(t *testing.T) {
	m := NewMemoryIndex()
	m.Add(1, []string{"white", "cat"})
	m.Add(2, []string{"fluffy", "cat"})

	require.True(t, m.Remove(1))
	require.False(t, m.Remove(1))
	require.Empty(t, m.WordFrequencies(1))
	require.Empty(t, m.Search("white"))
	require.Len(t, m.Search("cat"), 1)
	require.Equal(t, 2, m.Words())
	requireConsistent(t, m)
}

func TestWordFrequenciesReturnsCopy(t *testing.T) {
	m := NewMemoryIndex()
	m.Add(1, []string{"cat"})
	freqs := m.WordFrequencies(1)
	freqs["dog"] = 1
	require.False(t, m.Contains("dog", 1))
}

func TestSearchIsOrdered(t *testing.T) {
	m := NewMemoryIndex()
	m.Add(3, []string{"cat"})
	m.Add(1, []string{"cat", "dog"})
	m.Add(2, []string{"ant"})

	postings := m.Search("cat")
	require.Equal(t, []int{1, 3}, []int{postings[0].DocID, postings[1].DocID})
	require.Nil(t, m.Search("bird"))

	require.Equal(t, 3, m.Words())
	require.Equal(t, []string{"cat", "dog"}, m.DocumentWords(1))
}

func TestTermFrequency(t *testing.T) {
	m := NewMemoryIndex()
	m.Add(7, []string{"good", "dog", "big", "eyes"})
	tf, ok := m.TermFrequency("dog", 7)
	require.True(t, ok)
	require.InDelta(t, 0.25, tf, epsilon)
	_, ok = m.TermFrequency("dog", 8)
	require.False(t, ok)
}
