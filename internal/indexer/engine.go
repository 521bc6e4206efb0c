package indexer

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"net/http"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Engine owns the document collection and its term-frequency index, and
// answers ranked and per-document queries against them.
//
// Engine does no locking. Any number of goroutines may call its read
// methods concurrently, but AddDocument, RemoveDocument and
// RemoveDuplicates must not overlap with any other call.
type Engine struct {
	index     *index.MemoryIndex
	documents map[int]Document
	ids       []int
	stopWords parser.StopWords
	parser    *parser.Parser
	cfg       config.SearchConfig
	logger    *slog.Logger
}

// New creates an empty engine. Each stopWords argument may hold several
// space-separated words.
func New(cfg config.SearchConfig, stopWords ...string) (*Engine, error) {
	stop, err := parser.NewStopWords(stopWords...)
	if err != nil {
		return nil, fmt.Errorf("building stop words: %w", err)
	}
	if cfg.MaxResults < 1 {
		cfg.MaxResults = config.Default().Search.MaxResults
	}
	if cfg.RelevanceEpsilon <= 0 {
		cfg.RelevanceEpsilon = ranker.DefaultEpsilon
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Strategy == "" {
		cfg.Strategy = config.StrategySequential
	}
	return &Engine{
		index:     index.NewMemoryIndex(),
		documents: make(map[int]Document),
		stopWords: stop,
		parser:    parser.New(stop),
		cfg:       cfg,
		logger:    slog.Default().With("component", "indexer"),
	}, nil
}

// AddDocument indexes text under id. The rating stored is the truncated
// average of ratings. Nothing is modified when validation fails.
func (e *Engine) AddDocument(id int, text string, status Status, ratings []int) error {
	if id < 0 {
		return apperrors.Newf(apperrors.ErrInvalidID, http.StatusBadRequest, "document id %d is negative", id)
	}
	if _, exists := e.documents[id]; exists {
		return apperrors.Newf(apperrors.ErrInvalidID, http.StatusConflict, "document id %d already exists", id)
	}
	if !tokenizer.IsValidWord(text) {
		return apperrors.Newf(apperrors.ErrInvalidWord, http.StatusBadRequest,
			"document %d contains a control character", id)
	}

	doc := Document{
		ID:     id,
		Rating: averageRating(ratings),
		Status: status,
		Text:   strings.Clone(text),
	}
	words := e.splitNoStop(doc.Text)
	e.documents[id] = doc
	e.index.Add(id, words)
	e.insertID(id)

	e.logger.Debug("document indexed",
		"doc_id", id,
		"status", status,
		"rating", doc.Rating,
		"word_count", len(words),
	)
	return nil
}

// RemoveDocument deletes id from the engine. Unknown ids are ignored. It
// reports whether a document was removed.
func (e *Engine) RemoveDocument(id int) bool {
	if _, exists := e.documents[id]; !exists {
		return false
	}
	e.index.Remove(id)
	delete(e.documents, id)
	if pos, found := slices.BinarySearch(e.ids, id); found {
		e.ids = slices.Delete(e.ids, pos, pos+1)
	}
	e.logger.Debug("document removed", "doc_id", id)
	return true
}

// RemoveDuplicates removes every document whose set of indexed words equals
// that of a document with a smaller id. It returns the removed ids in
// ascending order.
func (e *Engine) RemoveDuplicates() []int {
	seen := make(map[string]struct{}, len(e.ids))
	var duplicates []int
	for _, id := range e.ids {
		key := strings.Join(e.index.DocumentWords(id), " ")
		if _, dup := seen[key]; dup {
			duplicates = append(duplicates, id)
			continue
		}
		seen[key] = struct{}{}
	}
	for _, id := range duplicates {
		e.RemoveDocument(id)
		e.logger.Info("found duplicate document", "doc_id", id)
	}
	return duplicates
}

// WordFrequencies returns a copy of id's word to term-frequency mapping. It
// is empty for unknown ids.
func (e *Engine) WordFrequencies(id int) map[string]float64 {
	return e.index.WordFrequencies(id)
}

// Document returns the stored document for id.
func (e *Engine) Document(id int) (Document, bool) {
	doc, ok := e.documents[id]
	return doc, ok
}

func (e *Engine) DocumentCount() int {
	return len(e.documents)
}

// WordCount returns the number of distinct indexed words.
func (e *Engine) WordCount() int {
	return e.index.Words()
}

// DocumentIDs yields live document ids in ascending order.
func (e *Engine) DocumentIDs() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, id := range e.ids {
			if !yield(id) {
				return
			}
		}
	}
}

// Strategy names the configured execution strategy.
func (e *Engine) Strategy() config.Strategy {
	return e.cfg.Strategy
}

// MaxResults is the number of results FindTopDocuments keeps.
func (e *Engine) MaxResults() int {
	return e.cfg.MaxResults
}

// FindTopDocuments ranks ACTUAL documents against rawQuery.
func (e *Engine) FindTopDocuments(rawQuery string) ([]ranker.ScoredDoc, error) {
	return e.FindTopDocumentsFunc(rawQuery, WithStatus(StatusActual))
}

// FindTopDocumentsByStatus ranks documents having exactly status.
func (e *Engine) FindTopDocumentsByStatus(rawQuery string, status Status) ([]ranker.ScoredDoc, error) {
	return e.FindTopDocumentsFunc(rawQuery, WithStatus(status))
}

// FindTopDocumentsFunc ranks the documents accepted by predicate that hold
// at least one plus-word and no minus-word of rawQuery. Results are ordered
// by relevance, then rating, and cut to the configured maximum.
func (e *Engine) FindTopDocumentsFunc(rawQuery string, predicate Predicate) ([]ranker.ScoredDoc, error) {
	query, err := e.parser.Parse(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}
	matched := e.findAllDocuments(query, predicate)
	return ranker.Rank(matched, e.cfg.MaxResults, e.cfg.RelevanceEpsilon), nil
}

func (e *Engine) findAllDocuments(query *parser.Query, predicate Predicate) []ranker.ScoredDoc {
	totalDocs := e.DocumentCount()
	idf := make(map[string]float64, len(query.PlusWords))
	candidates := make(map[int]struct{})
	for _, word := range query.PlusWords {
		postings := e.index.Search(word)
		if len(postings) == 0 {
			continue
		}
		idf[word] = ranker.IDF(totalDocs, len(postings))
		for _, p := range postings {
			candidates[p.DocID] = struct{}{}
		}
	}
	for _, word := range query.MinusWords {
		for _, p := range e.index.Search(word) {
			delete(candidates, p.DocID)
		}
	}

	ids := slices.Sorted(maps.Keys(candidates))
	scored := make([]ranker.ScoredDoc, len(ids))
	keep := make([]bool, len(ids))
	score := func(i int) {
		id := ids[i]
		doc := e.documents[id]
		if !predicate(id, doc.Status, doc.Rating) {
			return
		}
		// Plus-words are sorted, so every strategy sums in the same order.
		var relevance float64
		for _, word := range query.PlusWords {
			wordIDF, indexed := idf[word]
			if !indexed {
				continue
			}
			if tf, ok := e.index.TermFrequency(word, id); ok {
				relevance += tf * wordIDF
			}
		}
		scored[i] = ranker.ScoredDoc{DocID: id, Relevance: relevance, Rating: doc.Rating}
		keep[i] = true
	}
	e.run(len(ids), score)

	result := make([]ranker.ScoredDoc, 0, len(ids))
	for i, ok := range keep {
		if ok {
			result = append(result, scored[i])
		}
	}
	return result
}

// MatchDocument returns the sorted plus-words of rawQuery found in document
// id together with its status. The word list is empty when the document
// holds any minus-word.
func (e *Engine) MatchDocument(rawQuery string, id int) ([]string, Status, error) {
	doc, exists := e.documents[id]
	if !exists {
		return nil, 0, apperrors.Newf(apperrors.ErrUnknownDocument, http.StatusNotFound, "document %d", id)
	}
	var (
		matched []string
		err     error
	)
	if e.cfg.Parallel() {
		matched, err = e.matchConcurrent(rawQuery, id)
	} else {
		matched, err = e.matchSequential(rawQuery, id)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("parsing query: %w", err)
	}
	return matched, doc.Status, nil
}

func (e *Engine) matchSequential(rawQuery string, id int) ([]string, error) {
	query, err := e.parser.Parse(rawQuery)
	if err != nil {
		return nil, err
	}
	for _, word := range query.MinusWords {
		if e.index.Contains(word, id) {
			return []string{}, nil
		}
	}
	matched := make([]string, 0, len(query.PlusWords))
	for _, word := range query.PlusWords {
		if e.index.Contains(word, id) {
			matched = append(matched, word)
		}
	}
	return matched, nil
}

func (e *Engine) matchConcurrent(rawQuery string, id int) ([]string, error) {
	query, err := e.parser.ParseAll(rawQuery)
	if err != nil {
		return nil, err
	}
	minusHits := make([]bool, len(query.MinusWords))
	e.run(len(query.MinusWords), func(i int) {
		minusHits[i] = e.index.Contains(query.MinusWords[i], id)
	})
	if slices.Contains(minusHits, true) {
		return []string{}, nil
	}

	plusHits := make([]bool, len(query.PlusWords))
	e.run(len(query.PlusWords), func(i int) {
		plusHits[i] = e.index.Contains(query.PlusWords[i], id)
	})
	matched := make([]string, 0, len(query.PlusWords))
	for i, hit := range plusHits {
		if hit {
			matched = append(matched, query.PlusWords[i])
		}
	}
	slices.Sort(matched)
	return slices.Compact(matched), nil
}

// run calls fn for every index in [0, n). With the parallel strategy the
// range is split into contiguous chunks processed concurrently.
func (e *Engine) run(n int, fn func(i int)) {
	if !e.cfg.Parallel() || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	chunk := (n + e.cfg.Workers - 1) / e.cfg.Workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Go(func() {
			for i := lo; i < hi; i++ {
				fn(i)
			}
		})
	}
	wg.Wait()
}

func (e *Engine) splitNoStop(text string) []string {
	words := make([]string, 0, strings.Count(text, " ")+1)
	for word := range tokenizer.Words(text) {
		if !e.stopWords.Contains(word) {
			words = append(words, word)
		}
	}
	return words
}

func (e *Engine) insertID(id int) {
	pos, _ := slices.BinarySearch(e.ids, id)
	e.ids = slices.Insert(e.ids, pos, id)
}
