package benchmark

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/batch"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
)

var strategies = []config.Strategy{config.StrategySequential, config.StrategyParallel}

func randomQueries(n int) []string {
	r := rand.New(rand.NewPCG(3, 4))
	queries := make([]string, n)
	for i := range queries {
		q := strings.Join(randomWords(r, 3+r.IntN(5)), " ")
		if r.IntN(3) == 0 {
			q += " -" + vocabulary[r.IntN(len(vocabulary))]
		}
		queries[i] = q
	}
	return queries
}

func BenchmarkQueryParse(b *testing.B) {
	stop, err := parser.NewStopWords("and with very")
	if err != nil {
		b.Fatal(err)
	}
	p := parser.New(stop)
	queries := map[string]string{
		"simple":  "fluffy cat",
		"minus":   "curly dog -collar -rat",
		"stop":    "cat with and very fluffy tail",
		"long":    strings.Join(vocabulary, " "),
		"repeats": "cat cat cat dog dog -rat -rat",
	}
	for name, q := range queries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := p.Parse(q); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRank(b *testing.B) {
	for _, numDocs := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("docs_%d", numDocs), func(b *testing.B) {
			r := rand.New(rand.NewPCG(5, 6))
			docs := make([]ranker.ScoredDoc, numDocs)
			for i := range docs {
				docs[i] = ranker.ScoredDoc{DocID: i, Relevance: r.Float64(), Rating: r.IntN(10)}
			}
			scratch := make([]ranker.ScoredDoc, numDocs)
			b.ReportAllocs()
			for b.Loop() {
				copy(scratch, docs)
				_ = ranker.Rank(scratch, 5, ranker.DefaultEpsilon)
			}
		})
	}
}

// BenchmarkFindTopDocuments compares the execution strategies on one corpus.
func BenchmarkFindTopDocuments(b *testing.B) {
	queries := randomQueries(64)
	for _, strategy := range strategies {
		for _, numDocs := range []int{1000, 20000} {
			b.Run(fmt.Sprintf("%s/docs_%d", strategy, numDocs), func(b *testing.B) {
				e := buildEngine(b, strategy, numDocs)
				b.ReportAllocs()
				for i := 0; b.Loop(); i++ {
					if _, err := e.FindTopDocuments(queries[i%len(queries)]); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkMatchDocument(b *testing.B) {
	queries := randomQueries(64)
	for _, strategy := range strategies {
		b.Run(string(strategy), func(b *testing.B) {
			e := buildEngine(b, strategy, 5000)
			b.ReportAllocs()
			for i := 0; b.Loop(); i++ {
				if _, _, err := e.MatchDocument(queries[i%len(queries)], i%5000); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkProcessQueries(b *testing.B) {
	queries := randomQueries(256)
	for _, workers := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			svc := service.New(buildEngine(b, config.StrategySequential, 10000), nil, nil)
			p := batch.New(svc, workers, nil)
			ctx := context.Background()
			b.ReportAllocs()
			for b.Loop() {
				if _, err := p.ProcessQueries(ctx, queries); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
