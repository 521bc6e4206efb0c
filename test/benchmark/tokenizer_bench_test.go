package benchmark

import (
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
)

var sampleTexts = map[string]string{
	"short":  "the quick brown fox jumps over the lazy dog",
	"medium": strings.Repeat("fluffy cat with a long tail sits  in the  garden ", 20),
	"long":   strings.Repeat("curly dog and fancy collar near the river stone ", 500),
}

func BenchmarkSplit(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for b.Loop() {
				_ = tokenizer.Split(text)
			}
		})
	}
}

// BenchmarkWords iterates lazily without building a slice.
func BenchmarkWords(b *testing.B) {
	text := sampleTexts["long"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	for b.Loop() {
		n := 0
		for range tokenizer.Words(text) {
			n++
		}
	}
}

func BenchmarkIsValidWord(b *testing.B) {
	text := sampleTexts["long"]
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = tokenizer.IsValidWord(text)
		}
	})
}
