// Package cli implements searchctl, which loads a YAML corpus into an
// in-process engine and runs queries against it.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

type options struct {
	corpusPath string
	configPath string
	strategy   string
	asJSON     bool
	verbose    bool
}

// NewRootCommand assembles searchctl and its subcommands.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "searchctl",
		Short: "Query a document corpus with the TF-IDF engine",
		Long: `searchctl indexes the documents of a YAML corpus in memory and runs
ranked searches, per-document matches or query batches against them.

Example usage:
  searchctl query -c corpus.yaml -q "fluffy cat -dog"
  searchctl match -c corpus.yaml -q "white cat" --id 3
  searchctl batch -c corpus.yaml "curly hair" "nasty rat" --joined`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			slog.SetDefault(logger.New(cmd.ErrOrStderr(), level, "text"))
		},
	}
	root.PersistentFlags().StringVarP(&opts.corpusPath, "corpus", "c", "corpus.yaml", "corpus file")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "server config file for search settings")
	root.PersistentFlags().StringVar(&opts.strategy, "strategy", "", "execution strategy: sequential or parallel")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(
		newQueryCommand(opts),
		newMatchCommand(opts),
		newBatchCommand(opts),
		newDedupeCommand(opts),
	)
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// engine loads the corpus under the configured search settings.
func (o *options) engine() (*indexer.Engine, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.strategy != "" {
		cfg.Search.Strategy = config.Strategy(o.strategy)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	corpus, err := LoadCorpus(o.corpusPath)
	if err != nil {
		return nil, err
	}
	return corpus.Build(cfg.Search)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
