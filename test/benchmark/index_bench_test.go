// Package benchmark measures the engine, the dual index and the query
// pipeline under both execution strategies.
package benchmark

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
)

var vocabulary = strings.Fields(`cat dog rat parrot fluffy curly nasty funny white black
	tail collar hair eyes ring big small good very new pet city garden house
	river stone cloud paper window yellow green quiet loud fast slow`)

func randomWords(r *rand.Rand, n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = vocabulary[r.IntN(len(vocabulary))]
	}
	return words
}

// buildEngine indexes numDocs generated documents of 5 to 35 words.
func buildEngine(b *testing.B, strategy config.Strategy, numDocs int) *indexer.Engine {
	b.Helper()
	cfg := config.Default().Search
	cfg.Strategy = strategy
	e, err := indexer.New(cfg, "very and with")
	if err != nil {
		b.Fatal(err)
	}
	r := rand.New(rand.NewPCG(42, 7))
	for id := range numDocs {
		text := strings.Join(randomWords(r, 5+r.IntN(30)), " ")
		status := indexer.Status(r.IntN(3))
		if err := e.AddDocument(id, text, status, []int{r.IntN(11) - 5}); err != nil {
			b.Fatal(err)
		}
	}
	return e
}

func BenchmarkMemoryIndexAdd(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	words := randomWords(r, 20)
	mi := index.NewMemoryIndex()
	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		mi.Add(i, words)
	}
}

// BenchmarkMemoryIndexSearch measures posting lookups over 10 000 documents.
func BenchmarkMemoryIndexSearch(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	mi := index.NewMemoryIndex()
	for id := range 10000 {
		mi.Add(id, randomWords(r, 20))
	}
	b.ReportAllocs()
	for b.Loop() {
		_ = mi.Search("cat")
	}
}

func BenchmarkMemoryIndexRemove(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	words := randomWords(r, 20)
	mi := index.NewMemoryIndex()
	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		mi.Add(i, words)
		mi.Remove(i)
	}
}

func BenchmarkRemoveDuplicates(b *testing.B) {
	for _, numDocs := range []int{1000, 10000} {
		b.Run(fmt.Sprintf("docs_%d", numDocs), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				e := buildEngine(b, config.StrategySequential, numDocs)
				b.StartTimer()
				e.RemoveDuplicates()
			}
		})
	}
}
