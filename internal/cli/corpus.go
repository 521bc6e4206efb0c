package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
)

// Corpus is the YAML file searchctl builds its index from.
type Corpus struct {
	StopWords []string         `yaml:"stopWords"`
	Documents []CorpusDocument `yaml:"documents"`
}

type CorpusDocument struct {
	ID      int    `yaml:"id"`
	Text    string `yaml:"text"`
	Status  string `yaml:"status"`
	Ratings []int  `yaml:"ratings"`
}

func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	var corpus Corpus
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}
	return &corpus, nil
}

// Build indexes every document of c. An empty status means ACTUAL. The
// first rejected document aborts the build.
func (c *Corpus) Build(cfg config.SearchConfig) (*indexer.Engine, error) {
	engine, err := indexer.New(cfg, c.StopWords...)
	if err != nil {
		return nil, err
	}
	for _, doc := range c.Documents {
		status := indexer.StatusActual
		if doc.Status != "" {
			if status, err = indexer.ParseStatus(doc.Status); err != nil {
				return nil, fmt.Errorf("document %d: %w", doc.ID, err)
			}
		}
		if err := engine.AddDocument(doc.ID, doc.Text, status, doc.Ratings); err != nil {
			return nil, fmt.Errorf("document %d: %w", doc.ID, err)
		}
	}
	return engine, nil
}
